package testutil

import (
	"context"
	"crypto/ecdsa"
	"encoding/json"
	"fmt"
	"math/big"
	"os"
	"path/filepath"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/state"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/nodebase/nodebase/node-base/housekeepingtx"
	"github.com/nodebase/nodebase/node-base/nodetx"
	"github.com/nodebase/nodebase/node-base/sqlstore"
	"github.com/nodebase/nodebase/node-base/storageutil/nodemeta"
	"github.com/nodebase/nodebase/node-base/tokenkey"
	"github.com/nodebase/nodebase/node-base/tokenlock"
)

const network = "1337"

type Account struct {
	Name    string
	Key     *ecdsa.PrivateKey
	Address common.Address
}

// World is the test world - it holds all the state that is shared between steps
type World struct {
	State    *state.StateDB
	Store    *sqlstore.SQLStore
	Executor *nodetx.Executor
	Block    uint64

	accounts map[string]*Account

	// SignedProposal is the last operator proposal signed in a scenario.
	SignedProposal []byte
	LastLogs       []*types.Log
	LastError      error
	LastMetadata   *nodemeta.NodeMetadata

	tempDir string
}

func NewWorld(ctx context.Context) (*World, error) {
	td, err := os.MkdirTemp("", "node-base")
	if err != nil {
		return nil, fmt.Errorf("failed to create temp dir: %w", err)
	}

	db, err := state.New(types.EmptyRootHash, state.NewDatabaseForTesting())
	if err != nil {
		os.RemoveAll(td)
		return nil, fmt.Errorf("failed to create state: %w", err)
	}

	store, err := sqlstore.NewStore(filepath.Join(td, "nodes.db"), 0)
	if err != nil {
		os.RemoveAll(td)
		return nil, fmt.Errorf("failed to open index: %w", err)
	}

	return &World{
		State:    db,
		Store:    store,
		Executor: nodetx.NewExecutor(nodetx.DefaultLimits),
		accounts: make(map[string]*Account),
		tempDir:  td,
	}, nil
}

// Account returns the account called name, creating it on first use.
func (w *World) Account(name string) (*Account, error) {
	if acc, ok := w.accounts[name]; ok {
		return acc, nil
	}

	key, err := crypto.GenerateKey()
	if err != nil {
		return nil, fmt.Errorf("failed to generate key for %s: %w", name, err)
	}

	acc := &Account{
		Name:    name,
		Key:     key,
		Address: crypto.PubkeyToAddress(key.PublicKey),
	}
	w.accounts[name] = acc
	return acc, nil
}

func NodeToken(instance int64) tokenkey.TokenInstanceKey {
	return tokenkey.NFTKey(tokenkey.TokenClassKey{
		Collection:    "GALA",
		Category:      "Node",
		Type:          "Founders",
		AdditionalKey: "none",
	}, big.NewInt(instance))
}

func (w *World) Mint(owner string, instance int64) error {
	acc, err := w.Account(owner)
	if err != nil {
		return err
	}
	return tokenlock.Mint(w.State, acc.Address, NodeToken(instance))
}

func blockHash(n uint64) common.Hash {
	return crypto.Keccak256Hash(new(big.Int).SetUint64(n).Bytes())
}

// Mine produces the next block: housekeeping first, then tx sent by sender
// when tx is not nil. The logs of the block are indexed. A failed node
// transaction is kept in LastError and does not fail the block.
func (w *World) Mine(ctx context.Context, sender *Account, tx *nodetx.NodeTransaction) error {
	w.Block++
	w.LastError = nil
	w.LastLogs = nil

	logs, err := housekeepingtx.ExecuteTransaction(w.Block, crypto.Keccak256Hash([]byte("housekeeping"), blockHash(w.Block).Bytes()), w.State)
	if err != nil {
		return fmt.Errorf("housekeeping failed at block %d: %w", w.Block, err)
	}

	if tx != nil {
		d, err := tx.Pack()
		if err != nil {
			return fmt.Errorf("failed to pack node transaction: %w", err)
		}
		txLogs, err := w.Executor.ExecuteTransaction(d, w.Block, crypto.Keccak256Hash(d), 1, sender.Address, w.State)
		if err != nil {
			w.LastError = err
		}
		w.LastLogs = txLogs
		logs = append(logs, txLogs...)
	}

	for i, l := range logs {
		l.Index = uint(i)
	}

	events, err := sqlstore.EventsFromLogs(logs)
	if err != nil {
		return fmt.Errorf("failed to decode logs: %w", err)
	}

	return w.Store.InsertBlock(ctx, sqlstore.BlockWal{
		BlockInfo: sqlstore.BlockInfo{
			Number:     w.Block,
			Hash:       blockHash(w.Block),
			ParentHash: blockHash(w.Block - 1),
		},
		Events: events,
	}, network)
}

func (w *World) Shutdown() {
	w.Store.Close()
	os.RemoveAll(w.tempDir)
}

// AddLogsToTestError appends the indexed history of the first token instances
// to a failing step's error.
func (w *World) AddLogsToTestError(err error) error {
	if err == nil {
		return nil
	}

	history := map[string][]sqlstore.HistoryEntry{}
	for i := range int64(3) {
		entries, herr := w.Store.History(context.Background(), NodeToken(i+1))
		if herr != nil || len(entries) == 0 {
			continue
		}
		history[NodeToken(i+1).String()] = entries
	}

	d, merr := json.MarshalIndent(history, "", "  ")
	if merr != nil {
		return err
	}

	return fmt.Errorf("%w\n\nNode History:\n%s", err, d)
}
