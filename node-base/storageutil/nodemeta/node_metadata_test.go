package nodemeta_test

import (
	"math/big"
	"slices"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/nodebase/nodebase/node-base/agreement"
	"github.com/nodebase/nodebase/node-base/storageutil/nodemeta"
	"github.com/nodebase/nodebase/node-base/storageutil/nodemeta/allnodes"
	"github.com/nodebase/nodebase/node-base/storageutil/nodemeta/nodesofoperator"
	"github.com/nodebase/nodebase/node-base/testutil/memstate"
	"github.com/nodebase/nodebase/node-base/tokenkey"
	"github.com/stretchr/testify/require"
)

var (
	nodeA     = common.HexToAddress("0x00000000000000000000000000000000000000a1")
	nodeB     = common.HexToAddress("0x00000000000000000000000000000000000000b1")
	operatorX = common.HexToAddress("0x00000000000000000000000000000000000000c1")
	operatorY = common.HexToAddress("0x00000000000000000000000000000000000000c2")
)

func key(instance int64) tokenkey.TokenInstanceKey {
	return tokenkey.NFTKey(tokenkey.TokenClassKey{
		Collection:    "GALA",
		Category:      "Node",
		Type:          "Founders",
		AdditionalKey: "none",
	}, big.NewInt(instance))
}

func TestNewRecord(t *testing.T) {
	r, err := nodemeta.NewRecord(key(1), nodeA, nil)
	require.NoError(t, err)
	require.Equal(t, nodemeta.Direct{NodePublicKey: nodeA}, r.State)
	require.Nil(t, r.Agreement())

	r, err = nodemeta.NewRecord(key(1), nodeA, &agreement.OperatorAgreement{PublicKey: operatorX, Fee: 5})
	require.NoError(t, err)
	require.Equal(t, operatorX, r.Agreement().PublicKey)

	_, err = nodemeta.NewRecord(key(1), common.Address{}, nil)
	require.Error(t, err)

	_, err = nodemeta.NewRecord(key(1), nodeA, &agreement.OperatorAgreement{})
	require.Error(t, err)
}

func TestRecordTransitions(t *testing.T) {
	r, err := nodemeta.NewRecord(key(1), nodeA, &agreement.OperatorAgreement{PublicKey: operatorX, Fee: 5})
	require.NoError(t, err)

	require.NoError(t, r.SetNodePublicKey(nodeB))
	md := r.Metadata()
	require.Equal(t, nodeB, *md.NodePublicKey)
	require.Equal(t, &agreement.OperatorAgreement{PublicKey: operatorX, Fee: 5}, md.OperatorAgreement)

	r.Deactivate()
	require.Equal(t, nodemeta.NodeMetadata{}, r.Metadata())

	require.NoError(t, r.SetNodePublicKey(nodeA))
	require.Equal(t, nodemeta.Direct{NodePublicKey: nodeA}, r.State)

	require.Error(t, r.SetNodePublicKey(common.Address{}))
}

func TestStoreAndGet(t *testing.T) {
	db := memstate.New()

	_, err := nodemeta.Get(db, key(1).CompositeKey())
	require.ErrorIs(t, err, nodemeta.ErrNotFound)

	empty, err := nodemeta.GetByKey(db, key(1))
	require.NoError(t, err)
	require.Equal(t, nodemeta.Empty{}, empty.State)
	require.False(t, allnodes.Contains(db, key(1).CompositeKey()))

	r, err := nodemeta.NewRecord(key(1), nodeA, &agreement.OperatorAgreement{PublicKey: operatorX, Fee: 5})
	require.NoError(t, err)
	require.NoError(t, nodemeta.Store(db, r))

	got, err := nodemeta.GetByKey(db, key(1))
	require.NoError(t, err)
	require.True(t, got.Key.Equal(key(1)))
	require.Equal(t, r.State, got.State)
	require.True(t, allnodes.Contains(db, key(1).CompositeKey()))

	t.Run("cleared record stays registered", func(t *testing.T) {
		got.Deactivate()
		require.NoError(t, nodemeta.Store(db, got))

		cleared, err := nodemeta.GetByKey(db, key(1))
		require.NoError(t, err)
		require.Equal(t, nodemeta.Empty{}, cleared.State)
		require.True(t, allnodes.Contains(db, key(1).CompositeKey()))
		require.Equal(t, uint64(1), allnodes.Count(db))
	})
}

func TestOperatorIndex(t *testing.T) {
	db := memstate.New()

	store := func(instance int64, operator *common.Address) {
		var oa *agreement.OperatorAgreement
		if operator != nil {
			oa = &agreement.OperatorAgreement{PublicKey: *operator, Fee: 1}
		}
		r, err := nodemeta.NewRecord(key(instance), nodeA, oa)
		require.NoError(t, err)
		require.NoError(t, nodemeta.Store(db, r))
	}

	store(1, &operatorX)
	store(2, &operatorX)
	store(3, nil)

	require.ElementsMatch(t,
		[]common.Hash{key(1).CompositeKey(), key(2).CompositeKey()},
		slices.Collect(nodesofoperator.Iterate(db, operatorX)),
	)

	store(2, &operatorY)
	require.Equal(t, []common.Hash{key(1).CompositeKey()}, slices.Collect(nodesofoperator.Iterate(db, operatorX)))
	require.Equal(t, []common.Hash{key(2).CompositeKey()}, slices.Collect(nodesofoperator.Iterate(db, operatorY)))

	store(1, nil)
	require.Empty(t, slices.Collect(nodesofoperator.Iterate(db, operatorX)))
}
