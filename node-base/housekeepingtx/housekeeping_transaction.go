package housekeepingtx

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/tracing"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/core/vm"
	"github.com/ethereum/go-ethereum/log"
	"github.com/nodebase/nodebase/node-base/address"
	nodelogs "github.com/nodebase/nodebase/node-base/logs"
	"github.com/nodebase/nodebase/node-base/storageaccounting"
	"github.com/nodebase/nodebase/node-base/storageutil/nodemeta"
	"github.com/nodebase/nodebase/node-base/tokenlock"
)

// ExecuteTransaction releases the lock holds that expire at blockNumber. It
// runs once per block, before any node transaction of that block.
func ExecuteTransaction(blockNumber uint64, txHash common.Hash, db vm.StateDB) ([]*types.Log, error) {

	// the processor account has to exist for its storage to be kept
	if !db.Exist(address.NodeBaseProcessorAddress) {
		db.CreateAccount(address.NodeBaseProcessorAddress)
		db.CreateContract(address.NodeBaseProcessorAddress)
		db.SetNonce(address.NodeBaseProcessorAddress, 1, tracing.NonceChangeNewContract)
	}

	st := storageaccounting.NewSlotUsageCounter(db)

	expired, err := tokenlock.ReleaseExpired(st, blockNumber)
	if err != nil {
		return nil, fmt.Errorf("failed to release expired locks: %w", err)
	}

	logs := make([]*types.Log, 0, len(expired))
	for _, e := range expired {
		r, err := nodemeta.GetByKey(st, e.TokenInstanceKey)
		if err != nil {
			return nil, fmt.Errorf("failed to read node %s: %w", e.TokenInstanceKey, err)
		}

		data, err := nodelogs.EncodeEventData(e.TokenInstanceKey, r.Metadata())
		if err != nil {
			return nil, err
		}

		logs = append(logs, &types.Log{
			Address: address.NodeBaseProcessorAddress,
			Topics: []common.Hash{
				nodelogs.NodeLockExpired,
				e.TokenInstanceKey.CompositeKey(),
				nodelogs.AddressToHash(e.Hold.LockAuthority),
			},
			Data:        data,
			BlockNumber: blockNumber,
			TxHash:      txHash,
		})
	}

	st.UpdateUsedSlotsForNodeBase()

	if len(expired) > 0 {
		log.Info("released expired node locks", "block", blockNumber, "count", len(expired))
	}

	return logs, nil
}
