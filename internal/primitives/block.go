package primitives

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"strconv"
)

// Block is immutable once sealed. Hash commits to every other field in a
// fixed canonical order (see HashInput); StateRoot commits to the WalletSet
// as of after this block's transactions have been applied.
type Block struct {
	Timestamp    int64         `json:"timestamp"`
	Transactions []Transaction `json:"transactions"`
	PreviousHash string        `json:"previous_hash"`
	Validator    string        `json:"validator"`
	StateRoot    string        `json:"state_root"`
	TotalFees    float64       `json:"total_fees"`
	Hash         string        `json:"hash"`
}

// HashInput returns the exact byte sequence that is SHA-256 hashed to
// produce a block's Hash: the UTF-8 concatenation, in order, of the decimal
// timestamp, the canonical JSON of the transactions vector, the previous
// hash, the validator id, the state root, and the decimal total fees. No
// separators are inserted between fields.
func (b *Block) HashInput() ([]byte, error) {
	txJSON, err := json.Marshal(b.Transactions)
	if err != nil {
		return nil, err
	}
	var buf []byte
	buf = append(buf, strconv.FormatInt(b.Timestamp, 10)...)
	buf = append(buf, txJSON...)
	buf = append(buf, b.PreviousHash...)
	buf = append(buf, b.Validator...)
	buf = append(buf, b.StateRoot...)
	buf = append(buf, formatFloat(b.TotalFees)...)
	return buf, nil
}

// ComputeHash recomputes the block's hash from its current fields without
// mutating Hash, for validation against a claimed Hash.
func (b *Block) ComputeHash() (string, error) {
	input, err := b.HashInput()
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(input)
	return hex.EncodeToString(sum[:]), nil
}

// Seal computes and assigns Hash. Call once all other fields are final.
func (b *Block) Seal() error {
	h, err := b.ComputeHash()
	if err != nil {
		return err
	}
	b.Hash = h
	return nil
}

// formatFloat renders a float64 the way encoding/json would inside a
// number literal, kept as its own helper so the total_fees decimal
// representation used for hashing stays obviously in lockstep with the one
// used for wallet leaves (see hashing package).
func formatFloat(f float64) string {
	b, _ := json.Marshal(f)
	return string(b)
}
