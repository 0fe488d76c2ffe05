// Package fakeledger serves the eth_ JSON-RPC methods that remotestate needs
// from an in-memory state, in process.
package fakeledger

import (
	"sync"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/ethereum/go-ethereum/rpc"
	"github.com/nodebase/nodebase/node-base/testutil/memstate"
)

// Ledger holds the node base storage. Every block sees the same storage.
type Ledger struct {
	mu    sync.Mutex
	state *memstate.State
	head  uint64
}

func New() *Ledger {
	return &Ledger{state: memstate.New()}
}

// Update runs fn with exclusive access to the state and advances the head.
func (l *Ledger) Update(fn func(state *memstate.State)) {
	l.mu.Lock()
	defer l.mu.Unlock()
	fn(l.state)
	l.head++
}

func (l *Ledger) Head() uint64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.head
}

type ethService struct {
	l *Ledger
}

func (s *ethService) BlockNumber() hexutil.Uint64 {
	return hexutil.Uint64(s.l.Head())
}

func (s *ethService) GetStorageAt(addr common.Address, key common.Hash, _ rpc.BlockNumber) (hexutil.Bytes, error) {
	s.l.mu.Lock()
	defer s.l.mu.Unlock()
	v := s.l.state.GetState(addr, key)
	return v[:], nil
}

// Server returns an RPC server with the eth namespace registered. Callers may
// register further services on it.
func (l *Ledger) Server() (*rpc.Server, error) {
	srv := rpc.NewServer()
	if err := srv.RegisterName("eth", &ethService{l: l}); err != nil {
		return nil, err
	}
	return srv, nil
}

// Dial returns an ethclient connected in process to a new server for l.
func (l *Ledger) Dial() (*ethclient.Client, func(), error) {
	srv, err := l.Server()
	if err != nil {
		return nil, nil, err
	}
	client := ethclient.NewClient(rpc.DialInProc(srv))
	return client, func() {
		client.Close()
		srv.Stop()
	}, nil
}
