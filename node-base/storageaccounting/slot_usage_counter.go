package storageaccounting

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/holiman/uint256"
	"github.com/nodebase/nodebase/node-base/storageutil"
)

var UsedSlotsKey = crypto.Keccak256Hash([]byte("nodeBaseUsedSlots"))

// SlotUsageCounter tracks how many storage slots of each account a single
// transaction occupies or frees. It is discarded when the transaction fails.
type SlotUsageCounter struct {
	Delta       map[common.Address]int64
	stateAccess storageutil.StateAccess
}

func NewSlotUsageCounter(stateAccess storageutil.StateAccess) *SlotUsageCounter {
	return &SlotUsageCounter{
		Delta:       make(map[common.Address]int64),
		stateAccess: stateAccess,
	}
}

func (c *SlotUsageCounter) GetState(address common.Address, key common.Hash) common.Hash {
	return c.stateAccess.GetState(address, key)
}

func (c *SlotUsageCounter) SetState(address common.Address, key common.Hash, value common.Hash) common.Hash {
	prev := c.stateAccess.SetState(address, key, value)

	switch {
	case prev == value:
	case prev == (common.Hash{}):
		c.Delta[address]++
	case value == (common.Hash{}):
		c.Delta[address]--
	}

	return prev
}

// UpdateUsedSlotsForNodeBase folds the delta of the node base account into the
// persistent counter and resets it.
func (c *SlotUsageCounter) UpdateUsedSlotsForNodeBase() {
	stored := GetNumberOfUsedSlots(c.stateAccess)

	delta := c.Delta[storageutil.NodeBaseAddress]
	switch {
	case delta > 0:
		stored.AddUint64(stored, uint64(delta))
	case delta < 0:
		stored.SubUint64(stored, uint64(-delta))
	}

	c.stateAccess.SetState(storageutil.NodeBaseAddress, UsedSlotsKey, stored.Bytes32())
	delete(c.Delta, storageutil.NodeBaseAddress)
}

func GetNumberOfUsedSlots(db storageutil.StateAccess) *uint256.Int {
	return new(uint256.Int).SetBytes32(db.GetState(storageutil.NodeBaseAddress, UsedSlotsKey).Bytes())
}
