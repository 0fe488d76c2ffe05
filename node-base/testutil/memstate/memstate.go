// Package memstate is an in-memory StateAccess for tests and local tooling.
package memstate

import (
	"github.com/ethereum/go-ethereum/common"
)

type change struct {
	address common.Address
	key     common.Hash
	prev    common.Hash
}

// State keeps storage in maps and records every write in a journal so that
// snapshots can be reverted the way the EVM state does.
type State struct {
	storage map[common.Address]map[common.Hash]common.Hash
	journal []change
}

func New() *State {
	return &State{
		storage: make(map[common.Address]map[common.Hash]common.Hash),
	}
}

func (s *State) GetState(addr common.Address, key common.Hash) common.Hash {
	return s.storage[addr][key]
}

func (s *State) SetState(addr common.Address, key common.Hash, value common.Hash) common.Hash {
	prev := s.GetState(addr, key)
	s.journal = append(s.journal, change{address: addr, key: key, prev: prev})
	s.set(addr, key, value)
	return prev
}

func (s *State) set(addr common.Address, key common.Hash, value common.Hash) {
	if value == (common.Hash{}) {
		delete(s.storage[addr], key)
		if len(s.storage[addr]) == 0 {
			delete(s.storage, addr)
		}
		return
	}
	if s.storage[addr] == nil {
		s.storage[addr] = make(map[common.Hash]common.Hash)
	}
	s.storage[addr][key] = value
}

func (s *State) Snapshot() int {
	return len(s.journal)
}

func (s *State) RevertToSnapshot(id int) {
	for i := len(s.journal) - 1; i >= id; i-- {
		c := s.journal[i]
		s.set(c.address, c.key, c.prev)
	}
	s.journal = s.journal[:id]
}

// SlotCount returns the number of non-empty slots of addr.
func (s *State) SlotCount(addr common.Address) int {
	return len(s.storage[addr])
}

func (s *State) IsEmpty() bool {
	return len(s.storage) == 0
}
