// Package prover composes the fetchers and the trie into one linear
// proof-generation run over a write-once pipeline state.
package prover

import (
	"fmt"

	"github.com/erigontech/receipt-prover/internal/eth"
	"github.com/erigontech/receipt-prover/internal/trie"
)

func errNotInState(what string) error {
	return fmt.Errorf("✘ No %s in state!", what)
}

func errNoOverwrite(what string) error {
	return fmt.Errorf("✘ Cannot overwrite %s in state!", what)
}

// State is the pipeline's shared record. Every slot is written exactly once;
// reading an unwritten slot or rewriting a written one is an error.
type State struct {
	txHash    *eth.Hash
	endpoint  *string
	block     *eth.Block
	receipts  []*eth.Receipt
	index     *uint64
	trie      *trie.Trie
	branch    []trie.Node
	hasBranch bool
}

// NewState returns a State with every slot empty.
func NewState() *State {
	return &State{}
}

func (s *State) SetTxHash(h eth.Hash) error {
	if s.txHash != nil {
		return errNoOverwrite("transaction hash")
	}
	s.txHash = &h
	return nil
}

func (s *State) TxHash() (eth.Hash, error) {
	if s.txHash == nil {
		return eth.Hash{}, errNotInState("transaction hash")
	}
	return *s.txHash, nil
}

func (s *State) SetEndpoint(endpoint string) error {
	if s.endpoint != nil {
		return errNoOverwrite("endpoint")
	}
	s.endpoint = &endpoint
	return nil
}

func (s *State) Endpoint() (string, error) {
	if s.endpoint == nil {
		return "", errNotInState("endpoint")
	}
	return *s.endpoint, nil
}

func (s *State) SetBlock(block *eth.Block) error {
	if s.block != nil {
		return errNoOverwrite("block")
	}
	s.block = block
	return nil
}

func (s *State) Block() (*eth.Block, error) {
	if s.block == nil {
		return nil, errNotInState("block")
	}
	return s.block, nil
}

func (s *State) SetReceipts(receipts []*eth.Receipt) error {
	if s.receipts != nil {
		return errNoOverwrite("receipts")
	}
	s.receipts = receipts
	return nil
}

func (s *State) Receipts() ([]*eth.Receipt, error) {
	if s.receipts == nil {
		return nil, errNotInState("receipts")
	}
	return s.receipts, nil
}

func (s *State) SetIndex(index uint64) error {
	if s.index != nil {
		return errNoOverwrite("transaction index")
	}
	s.index = &index
	return nil
}

func (s *State) Index() (uint64, error) {
	if s.index == nil {
		return 0, errNotInState("transaction index")
	}
	return *s.index, nil
}

func (s *State) SetReceiptsTrie(t *trie.Trie) error {
	if s.trie != nil {
		return errNoOverwrite("receipts trie")
	}
	s.trie = t
	return nil
}

func (s *State) ReceiptsTrie() (*trie.Trie, error) {
	if s.trie == nil {
		return nil, errNotInState("receipts trie")
	}
	return s.trie, nil
}

func (s *State) SetBranch(branch []trie.Node) error {
	if s.hasBranch {
		return errNoOverwrite("branch")
	}
	s.branch = branch
	s.hasBranch = true
	return nil
}

func (s *State) Branch() ([]trie.Node, error) {
	if !s.hasBranch {
		return nil, errNotInState("branch")
	}
	return s.branch, nil
}
