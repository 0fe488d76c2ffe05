package array_test

import (
	"math/big"
	"slices"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
	"github.com/nodebase/nodebase/node-base/storageutil"
	"github.com/nodebase/nodebase/node-base/storageutil/keyset/array"
	"github.com/nodebase/nodebase/node-base/testutil/memstate"
	"github.com/stretchr/testify/require"
)

var base = common.HexToHash("0x1000")

func TestAppendAndGet(t *testing.T) {
	db := memstate.New()
	arr := array.NewArray(db, base)

	require.True(t, arr.Size().IsZero())

	size := arr.Append(common.HexToHash("0xa1"))
	require.Equal(t, uint64(1), size.Uint64())
	arr.Append(common.HexToHash("0xa2"))

	v, err := arr.Get(uint256.NewInt(1))
	require.NoError(t, err)
	require.Equal(t, common.HexToHash("0xa2"), v)

	_, err = arr.Get(uint256.NewInt(2))
	require.ErrorIs(t, err, array.ErrIndexOutOfBounds)
}

func TestSet(t *testing.T) {
	db := memstate.New()
	arr := array.NewArray(db, base)
	arr.Append(common.HexToHash("0xa1"))

	require.NoError(t, arr.Set(uint256.NewInt(0), common.HexToHash("0xb1")))
	v, err := arr.Get(uint256.NewInt(0))
	require.NoError(t, err)
	require.Equal(t, common.HexToHash("0xb1"), v)

	require.ErrorIs(t, arr.Set(uint256.NewInt(1), common.HexToHash("0xb2")), array.ErrIndexOutOfBounds)
}

func TestRemoveLast(t *testing.T) {
	db := memstate.New()
	arr := array.NewArray(db, base)

	require.ErrorIs(t, arr.RemoveLast(), array.ErrArrayEmpty)

	arr.Append(common.HexToHash("0xa1"))
	arr.Append(common.HexToHash("0xa2"))
	require.NoError(t, arr.RemoveLast())

	require.Equal(t, []common.Hash{common.HexToHash("0xa1")}, slices.Collect(arr.Iterate))

	require.NoError(t, arr.RemoveLast())
	require.True(t, db.IsEmpty())
}

func TestClear(t *testing.T) {
	db := memstate.New()
	arr := array.NewArray(db, base)
	for i := range 5 {
		arr.Append(common.BigToHash(big.NewInt(int64(i + 1))))
	}
	require.Equal(t, 6, db.SlotCount(storageutil.NodeBaseAddress))

	arr.Clear()
	require.True(t, arr.Size().IsZero())
	require.True(t, db.IsEmpty())
}
