package housekeepingtx_test

import (
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/state"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/nodebase/nodebase/node-base/address"
	"github.com/nodebase/nodebase/node-base/housekeepingtx"
	nodelogs "github.com/nodebase/nodebase/node-base/logs"
	"github.com/nodebase/nodebase/node-base/nodeops"
	"github.com/nodebase/nodebase/node-base/tokenkey"
	"github.com/nodebase/nodebase/node-base/tokenlock"
	"github.com/stretchr/testify/require"
)

func token(instance int64) tokenkey.TokenInstanceKey {
	return tokenkey.NFTKey(tokenkey.TokenClassKey{
		Collection:    "GALA",
		Category:      "Node",
		Type:          "Founders",
		AdditionalKey: "none",
	}, big.NewInt(instance))
}

func TestReleasesExpiredLocks(t *testing.T) {
	db, err := state.New(types.EmptyRootHash, state.NewDatabaseForTesting())
	require.NoError(t, err)

	owner := common.HexToAddress("0x00000000000000000000000000000000000a11ce")
	nodeKey := common.HexToAddress("0x00000000000000000000000000000000000000aa")

	require.NoError(t, tokenlock.Mint(db, owner, token(1)))
	_, err = nodeops.ActivateNode(db, owner, 1, nodeops.ActivateNodeParams{
		TokenInstanceKey: token(1),
		NodePublicKey:    nodeKey,
		Expires:          5,
	})
	require.NoError(t, err)

	logs, err := housekeepingtx.ExecuteTransaction(4, common.HexToHash("0x04"), db)
	require.NoError(t, err)
	require.Empty(t, logs)
	require.True(t, db.Exist(address.NodeBaseProcessorAddress))

	logs, err = housekeepingtx.ExecuteTransaction(5, common.HexToHash("0x05"), db)
	require.NoError(t, err)
	require.Len(t, logs, 1)
	require.Equal(t, []common.Hash{
		nodelogs.NodeLockExpired,
		token(1).CompositeKey(),
		nodelogs.AddressToHash(owner),
	}, logs[0].Topics)

	data, err := nodelogs.DecodeEventData(logs[0].Data)
	require.NoError(t, err)
	require.Equal(t, nodeKey, *data.Metadata.NodePublicKey, "the node record outlives the lock")

	balance, err := tokenlock.Balance(db, token(1))
	require.NoError(t, err)
	require.Empty(t, balance.LockedHolds)
}
