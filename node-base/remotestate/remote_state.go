// Package remotestate reads node base storage from a ledger node over
// JSON-RPC, so the node operations can be evaluated outside the node.
package remotestate

import (
	"context"
	"errors"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/nodebase/nodebase/node-base/storageutil"
)

var ErrReadOnly = errors.New("remote state is read only")

// StorageReader is the subset of ethclient.Client used to read state.
type StorageReader interface {
	BlockNumber(ctx context.Context) (uint64, error)
	StorageAt(ctx context.Context, account common.Address, key common.Hash, blockNumber *big.Int) ([]byte, error)
}

// State is a StateAccess pinned to one block. Reads are cached. The first
// failed read or any write is kept in Err and every later read returns the
// empty hash.
type State struct {
	ctx    context.Context
	client StorageReader
	block  *big.Int
	cache  map[common.Hash]common.Hash
	err    error
}

var _ storageutil.StateAccess = (*State)(nil)

func At(ctx context.Context, client StorageReader, blockNumber uint64) *State {
	return &State{
		ctx:    ctx,
		client: client,
		block:  new(big.Int).SetUint64(blockNumber),
		cache:  make(map[common.Hash]common.Hash),
	}
}

// Latest pins the state to the current head of the ledger.
func Latest(ctx context.Context, client StorageReader) (*State, error) {
	head, err := client.BlockNumber(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get block number: %w", err)
	}
	return At(ctx, client, head), nil
}

func (s *State) BlockNumber() uint64 {
	return s.block.Uint64()
}

func (s *State) GetState(addr common.Address, key common.Hash) common.Hash {
	if s.err != nil {
		return common.Hash{}
	}
	if addr != storageutil.NodeBaseAddress {
		s.err = fmt.Errorf("unexpected read of account %s", addr)
		return common.Hash{}
	}
	if v, ok := s.cache[key]; ok {
		return v
	}

	raw, err := s.client.StorageAt(s.ctx, addr, key, s.block)
	if err != nil {
		s.err = fmt.Errorf("failed to read slot %s at block %d: %w", key, s.block, err)
		return common.Hash{}
	}

	v := common.BytesToHash(raw)
	s.cache[key] = v
	return v
}

func (s *State) SetState(common.Address, common.Hash, common.Hash) common.Hash {
	if s.err == nil {
		s.err = ErrReadOnly
	}
	return common.Hash{}
}

func (s *State) Err() error {
	return s.err
}

// Read runs fn against the latest state and reports a failed read in
// preference to whatever fn made of the empty hashes it saw.
func Read[T any](ctx context.Context, client StorageReader, fn func(storageutil.StateAccess) (T, error)) (T, error) {
	var zero T

	state, err := Latest(ctx, client)
	if err != nil {
		return zero, err
	}

	res, err := fn(state)
	if state.Err() != nil {
		return zero, state.Err()
	}
	if err != nil {
		return zero, err
	}
	return res, nil
}
