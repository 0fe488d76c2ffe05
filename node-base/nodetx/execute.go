package nodetx

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/log"
	"github.com/nodebase/nodebase/node-base/agreement"
	"github.com/nodebase/nodebase/node-base/storageaccounting"
	"github.com/nodebase/nodebase/node-base/storageutil"
)

// Limits bound what a single node transaction may carry.
type Limits struct {
	MaxFeePercent     uint64
	MaxCompressedSize int64
}

var DefaultLimits = Limits{
	MaxFeePercent:     agreement.DefaultMaxFeePercent,
	MaxCompressedSize: maxCompressedSize,
}

type Executor struct {
	Limits Limits
}

func NewExecutor(limits Limits) *Executor {
	return &Executor{Limits: limits}
}

// ExecuteTransaction unpacks and runs a node transaction. When access can
// take snapshots, every write of a failed transaction is reverted.
func (e *Executor) ExecuteTransaction(compressed []byte, blockNumber uint64, txHash common.Hash, txIx int, sender common.Address, access storageutil.StateAccess) ([]*types.Log, error) {

	tx, err := unpack(compressed, e.Limits.MaxCompressedSize)
	if err != nil {
		return nil, fmt.Errorf("failed to unpack node transaction: %w", err)
	}

	if err := tx.ValidateFees(e.Limits.MaxFeePercent); err != nil {
		return nil, fmt.Errorf("failed to validate node transaction: %w", err)
	}

	snapshotter, canRevert := access.(storageutil.Snapshotter)
	snapshot := 0
	if canRevert {
		snapshot = snapshotter.Snapshot()
	}

	st := storageaccounting.NewSlotUsageCounter(access)

	logs, err := tx.Run(blockNumber, txHash, txIx, sender, st)
	if err != nil {
		if canRevert {
			snapshotter.RevertToSnapshot(snapshot)
			log.Debug("reverted node transaction", "block", blockNumber, "tx", txHash)
		}
		return nil, fmt.Errorf("failed to run node transaction: %w", err)
	}

	st.UpdateUsedSlotsForNodeBase()

	return logs, nil
}

func ExecuteTransaction(compressed []byte, blockNumber uint64, txHash common.Hash, txIx int, sender common.Address, access storageutil.StateAccess) ([]*types.Log, error) {
	return NewExecutor(DefaultLimits).ExecuteTransaction(compressed, blockNumber, txHash, txIx, sender, access)
}
