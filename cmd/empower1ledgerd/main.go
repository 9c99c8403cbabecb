// Command empower1ledgerd is a thin CLI shell around the ledger kernel: it
// boots a fresh chain in memory, applies transaction batches read from a
// JSON file, and reports wallet/chain state. It does not persist state
// across invocations or talk to a network.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"

	"empower1.com/empower1ledger/internal/config"
	"empower1.com/empower1ledger/internal/kernel"
	"empower1.com/empower1ledger/internal/primitives"
)

var log = logrus.WithField("prefix", "main")

var transactionsFileFlag = &cli.StringFlag{
	Name:     "transactions",
	Aliases:  []string{"t"},
	Usage:    "path to a JSON file containing an array of transactions to apply as the next block",
	Required: true,
}

var userFlag = &cli.StringFlag{
	Name:     "user",
	Aliases:  []string{"u"},
	Usage:    "user id to look up",
	Required: true,
}

func loadTransactions(path string) ([]primitives.Transaction, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	var txs []primitives.Transaction
	if err := json.Unmarshal(raw, &txs); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return txs, nil
}

func newKernel(ctx context.Context) (*kernel.Kernel, error) {
	cfg := config.Default()
	return kernel.New(ctx, cfg, time.Now().Unix())
}

func produceBlockAction(cliCtx *cli.Context) error {
	txs, err := loadTransactions(cliCtx.String(transactionsFileFlag.Name))
	if err != nil {
		return err
	}

	k, err := newKernel(cliCtx.Context)
	if err != nil {
		return fmt.Errorf("starting kernel: %w", err)
	}
	defer func() {
		if err := k.Close(cliCtx.Context); err != nil {
			log.WithError(err).Warn("failed to close contract host")
		}
	}()

	block, err := k.ProduceBlock(cliCtx.Context, txs, time.Now().Unix())
	if err != nil {
		return fmt.Errorf("producing block: %w", err)
	}

	log.WithField("height", k.ChainLength()-1).WithField("hash", block.Hash).Info("block produced")
	encoded, err := json.MarshalIndent(block, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(encoded))
	return nil
}

func walletAction(cliCtx *cli.Context) error {
	k, err := newKernel(cliCtx.Context)
	if err != nil {
		return fmt.Errorf("starting kernel: %w", err)
	}
	defer func() {
		if err := k.Close(cliCtx.Context); err != nil {
			log.WithError(err).Warn("failed to close contract host")
		}
	}()

	user := cliCtx.String(userFlag.Name)
	w, err := k.Wallet(user)
	if err != nil {
		return fmt.Errorf("looking up wallet %s: %w", user, err)
	}
	encoded, err := json.MarshalIndent(w, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(encoded))
	return nil
}

func statusAction(cliCtx *cli.Context) error {
	k, err := newKernel(cliCtx.Context)
	if err != nil {
		return fmt.Errorf("starting kernel: %w", err)
	}
	defer func() {
		if err := k.Close(cliCtx.Context); err != nil {
			log.WithError(err).Warn("failed to close contract host")
		}
	}()

	valid, err := k.IsValid()
	if err != nil {
		return fmt.Errorf("checking chain validity: %w", err)
	}
	root, err := k.StateRoot()
	if err != nil {
		return fmt.Errorf("computing state root: %w", err)
	}

	log.WithField("height", k.ChainLength()).
		WithField("valid", valid).
		WithField("state_root", root).
		Info("chain status")
	return nil
}

func main() {
	app := &cli.App{
		Name:  "empower1ledgerd",
		Usage: "drive the EmPower1 proof-of-stake ledger kernel from the command line",
		Commands: []*cli.Command{
			{
				Name:   "produce-block",
				Usage:  "apply a batch of transactions as the next block",
				Flags:  []cli.Flag{transactionsFileFlag},
				Action: produceBlockAction,
			},
			{
				Name:   "wallet",
				Usage:  "print a user's wallet",
				Flags:  []cli.Flag{userFlag},
				Action: walletAction,
			},
			{
				Name:   "status",
				Usage:  "print chain height, validity, and state root",
				Action: statusAction,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.WithError(err).Error("command failed")
		os.Exit(1)
	}
}
