package storageaccounting

import (
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/nodebase/nodebase/node-base/storageutil"
	"github.com/nodebase/nodebase/node-base/testutil/memstate"
	"github.com/stretchr/testify/require"
)

func TestSlotUsageCounter_SetState(t *testing.T) {
	db := memstate.New()
	counter := NewSlotUsageCounter(db)
	addr := storageutil.NodeBaseAddress

	t.Run("new slot", func(t *testing.T) {
		prev := counter.SetState(addr, common.HexToHash("0x01"), common.HexToHash("0xaa"))
		require.Equal(t, common.Hash{}, prev)
		require.Equal(t, int64(1), counter.Delta[addr])
	})

	t.Run("overwrite keeps the count", func(t *testing.T) {
		counter.SetState(addr, common.HexToHash("0x01"), common.HexToHash("0xbb"))
		require.Equal(t, int64(1), counter.Delta[addr])
	})

	t.Run("same value keeps the count", func(t *testing.T) {
		counter.SetState(addr, common.HexToHash("0x01"), common.HexToHash("0xbb"))
		require.Equal(t, int64(1), counter.Delta[addr])
	})

	t.Run("clearing frees the slot", func(t *testing.T) {
		counter.SetState(addr, common.HexToHash("0x01"), common.Hash{})
		require.Equal(t, int64(0), counter.Delta[addr])
	})

	t.Run("clearing an empty slot is free", func(t *testing.T) {
		counter.SetState(addr, common.HexToHash("0x02"), common.Hash{})
		require.Equal(t, int64(0), counter.Delta[addr])
	})

	t.Run("other accounts are tracked separately", func(t *testing.T) {
		other := common.HexToAddress("0xbeef")
		counter.SetState(other, common.HexToHash("0x01"), common.HexToHash("0x01"))
		require.Equal(t, int64(1), counter.Delta[other])
		require.Equal(t, int64(0), counter.Delta[addr])
	})
}

func TestSlotUsageCounter_GetState(t *testing.T) {
	db := memstate.New()
	db.SetState(storageutil.NodeBaseAddress, common.HexToHash("0x05"), common.HexToHash("0x06"))

	counter := NewSlotUsageCounter(db)
	require.Equal(t, common.HexToHash("0x06"), counter.GetState(storageutil.NodeBaseAddress, common.HexToHash("0x05")))
	require.Empty(t, counter.Delta)
}

func slot(i int64) common.Hash {
	return common.BigToHash(big.NewInt(i))
}

func TestUpdateUsedSlotsForNodeBase(t *testing.T) {
	db := memstate.New()
	addr := storageutil.NodeBaseAddress

	counter := NewSlotUsageCounter(db)
	for i := int64(1); i <= 3; i++ {
		counter.SetState(addr, slot(i), common.HexToHash("0x01"))
	}
	counter.UpdateUsedSlotsForNodeBase()

	require.Equal(t, uint64(3), GetNumberOfUsedSlots(db).Uint64())
	require.NotContains(t, counter.Delta, addr)

	counter = NewSlotUsageCounter(db)
	counter.SetState(addr, slot(1), common.Hash{})
	counter.SetState(addr, slot(2), common.Hash{})
	counter.UpdateUsedSlotsForNodeBase()

	require.Equal(t, uint64(1), GetNumberOfUsedSlots(db).Uint64())
}
