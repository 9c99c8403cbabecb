package hashing

import (
	"encoding/json"
	"sort"

	"empower1.com/empower1ledger/internal/wallet"
)

// ProofStep is one sibling hash encountered walking from a leaf to the root.
// Left is true when the sibling sits to the right of the node being folded
// (i.e. the node being folded is the left operand of the pair hash).
type ProofStep struct {
	Sibling string
	Left    bool
}

// Tree is a complete binary Merkle tree over a WalletSet snapshot, built
// bottom-up from sorted user ids so the root is a deterministic function of
// wallet contents regardless of map iteration order.
type Tree struct {
	levels [][]string
	index  map[string]int // user id -> index into levels[0]
}

// leafHash hashes the canonical concatenation of a user id and the canonical
// JSON encoding of their wallet.
func leafHash(user string, w *wallet.Wallet) (string, error) {
	encoded, err := json.Marshal(w)
	if err != nil {
		return "", err
	}
	data := append([]byte(user), encoded...)
	return Hex(data), nil
}

// BuildTree computes the full Merkle tree for a wallet snapshot. An empty
// snapshot yields a single-level tree whose root is EmptyHash().
func BuildTree(wallets map[string]*wallet.Wallet) (*Tree, error) {
	if len(wallets) == 0 {
		return &Tree{levels: [][]string{{EmptyHash()}}, index: map[string]int{}}, nil
	}

	users := make([]string, 0, len(wallets))
	for user := range wallets {
		users = append(users, user)
	}
	sort.Strings(users)

	leaves := make([]string, len(users))
	index := make(map[string]int, len(users))
	for i, user := range users {
		h, err := leafHash(user, wallets[user])
		if err != nil {
			return nil, err
		}
		leaves[i] = h
		index[user] = i
	}

	levels := [][]string{leaves}
	current := leaves
	for len(current) > 1 {
		next := make([]string, 0, (len(current)+1)/2)
		for i := 0; i < len(current); i += 2 {
			if i+1 < len(current) {
				next = append(next, Hex([]byte(current[i]+current[i+1])))
			} else {
				next = append(next, current[i])
			}
		}
		levels = append(levels, next)
		current = next
	}

	return &Tree{levels: levels, index: index}, nil
}

// Root returns the tree's top hash, the state root committed into a Block.
func (t *Tree) Root() string {
	top := t.levels[len(t.levels)-1]
	return top[0]
}

// Proof returns the inclusion proof for user's leaf, or false if user was
// not part of the snapshot the tree was built from.
func (t *Tree) Proof(user string) ([]ProofStep, bool) {
	idx, ok := t.index[user]
	if !ok {
		return nil, false
	}

	var proof []ProofStep
	for _, level := range t.levels[:len(t.levels)-1] {
		isLeft := idx%2 == 0
		siblingIdx := idx + 1
		if !isLeft {
			siblingIdx = idx - 1
		}
		if siblingIdx < len(level) {
			proof = append(proof, ProofStep{Sibling: level[siblingIdx], Left: isLeft})
		}
		idx /= 2
	}
	return proof, true
}

// VerifyProof recomputes a root from user's wallet and a proof, and reports
// whether it matches the target block's state root.
func VerifyProof(w *wallet.Wallet, user, stateRoot string, proof []ProofStep) (bool, error) {
	current, err := leafHash(user, w)
	if err != nil {
		return false, err
	}
	for _, step := range proof {
		if step.Left {
			current = Hex([]byte(current + step.Sibling))
		} else {
			current = Hex([]byte(step.Sibling + current))
		}
	}
	return current == stateRoot, nil
}
