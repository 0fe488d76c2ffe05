package nodetx_test

import (
	"crypto/ecdsa"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/nodebase/nodebase/node-base/address"
	"github.com/nodebase/nodebase/node-base/agreement"
	nodelogs "github.com/nodebase/nodebase/node-base/logs"
	"github.com/nodebase/nodebase/node-base/nodeerr"
	"github.com/nodebase/nodebase/node-base/nodeops"
	"github.com/nodebase/nodebase/node-base/nodetx"
	"github.com/nodebase/nodebase/node-base/storageaccounting"
	"github.com/nodebase/nodebase/node-base/storageutil"
	"github.com/nodebase/nodebase/node-base/testutil/memstate"
	"github.com/nodebase/nodebase/node-base/tokenkey"
	"github.com/nodebase/nodebase/node-base/tokenlock"
	"github.com/stretchr/testify/require"
)

var nodeKey = common.HexToAddress("0x00000000000000000000000000000000000000aa")

func token(instance int64) tokenkey.TokenInstanceKey {
	return tokenkey.NFTKey(tokenkey.TokenClassKey{
		Collection:    "GALA",
		Category:      "Node",
		Type:          "Founders",
		AdditionalKey: "none",
	}, big.NewInt(instance))
}

func newKey(t *testing.T) (*ecdsa.PrivateKey, common.Address) {
	t.Helper()
	k, err := crypto.GenerateKey()
	require.NoError(t, err)
	return k, crypto.PubkeyToAddress(k.PublicKey)
}

func pack(t *testing.T, tx *nodetx.NodeTransaction) []byte {
	t.Helper()
	d, err := tx.Pack()
	require.NoError(t, err)
	return d
}

func TestPackUnpack(t *testing.T) {
	tx := &nodetx.NodeTransaction{
		Activate: []nodeops.ActivateNodeParams{{
			TokenInstanceKey:  token(1),
			NodePublicKey:     nodeKey,
			OperatorAgreement: &agreement.OperatorAgreement{PublicKey: common.HexToAddress("0xc1"), Fee: 10},
			OperatorSignature: []byte{1, 2, 3},
		}},
		Update: []nodeops.UpdateNodeParams{{TokenInstanceKey: token(2)}},
	}

	decoded, err := nodetx.UnpackNodeTransaction(pack(t, tx))
	require.NoError(t, err)
	require.Len(t, decoded.Activate, 1)
	require.True(t, decoded.Activate[0].TokenInstanceKey.Equal(token(1)))
	require.Equal(t, tx.Activate[0].OperatorAgreement, decoded.Activate[0].OperatorAgreement)
	require.Nil(t, decoded.Update[0].NodePublicKey)

	_, err = nodetx.UnpackNodeTransaction([]byte("garbage"))
	require.Error(t, err)
}

func TestValidate(t *testing.T) {
	require.ErrorIs(t, (&nodetx.NodeTransaction{}).Validate(), nodetx.ErrEmptyTransaction)

	zero := common.Address{}
	require.Error(t, (&nodetx.NodeTransaction{
		Update: []nodeops.UpdateNodeParams{{TokenInstanceKey: token(1), NodePublicKey: &zero}},
	}).Validate())

	require.Error(t, (&nodetx.NodeTransaction{
		Activate: []nodeops.ActivateNodeParams{{TokenInstanceKey: token(1)}},
	}).Validate())

	tx := &nodetx.NodeTransaction{
		Activate: []nodeops.ActivateNodeParams{{
			TokenInstanceKey:  token(1),
			NodePublicKey:     nodeKey,
			OperatorAgreement: &agreement.OperatorAgreement{PublicKey: common.HexToAddress("0xc1"), Fee: 30},
		}},
	}
	require.NoError(t, tx.Validate())
	require.NoError(t, tx.ValidateFees(30))
	require.Error(t, tx.ValidateFees(20))
}

func TestExecuteTransaction(t *testing.T) {
	_, owner := newKey(t)
	operatorKey, operator := newKey(t)

	db := memstate.New()
	require.NoError(t, tokenlock.Mint(db, owner, token(1)))
	minted := db.SlotCount(storageutil.NodeBaseAddress)

	oa := &agreement.OperatorAgreement{PublicKey: operator, Fee: 10}
	signed, err := agreement.Sign(agreement.OperatorProposal{TokenInstanceKey: token(1), NodePublicKey: nodeKey, OperatorAgreement: oa}, operatorKey)
	require.NoError(t, err)
	blob, err := signed.Encode()
	require.NoError(t, err)

	txHash := common.HexToHash("0x01")
	logs, err := nodetx.ExecuteTransaction(pack(t, &nodetx.NodeTransaction{
		Activate: []nodeops.ActivateNodeParams{{
			TokenInstanceKey:  token(1),
			NodePublicKey:     nodeKey,
			OperatorAgreement: oa,
			OperatorSignature: blob,
		}},
	}), 7, txHash, 0, owner, db)
	require.NoError(t, err)

	require.Len(t, logs, 1)
	l := logs[0]
	require.Equal(t, address.NodeBaseProcessorAddress, l.Address)
	require.Equal(t, []common.Hash{nodelogs.NodeActivated, token(1).CompositeKey(), nodelogs.AddressToHash(owner)}, l.Topics)
	require.Equal(t, uint64(7), l.BlockNumber)
	require.Equal(t, txHash, l.TxHash)

	data, err := nodelogs.DecodeEventData(l.Data)
	require.NoError(t, err)
	require.True(t, data.TokenInstanceKey.Equal(token(1)))
	require.Equal(t, nodeKey, *data.Metadata.NodePublicKey)
	require.Equal(t, oa, data.Metadata.OperatorAgreement)

	require.Equal(t,
		uint64(db.SlotCount(storageutil.NodeBaseAddress)-minted-1),
		storageaccounting.GetNumberOfUsedSlots(db).Uint64(),
		"every slot written by the transaction is accounted",
	)

	t.Run("operator updates, owner deactivates", func(t *testing.T) {
		newNodeKey := common.HexToAddress("0x00000000000000000000000000000000000000bb")
		logs, err := nodetx.ExecuteTransaction(pack(t, &nodetx.NodeTransaction{
			Update: []nodeops.UpdateNodeParams{{TokenInstanceKey: token(1), NodePublicKey: &newNodeKey}},
		}), 8, common.HexToHash("0x02"), 0, operator, db)
		require.NoError(t, err)
		require.Equal(t, nodelogs.NodeUpdated, logs[0].Topics[0])
		require.Equal(t, nodelogs.AddressToHash(operator), logs[0].Topics[2])

		logs, err = nodetx.ExecuteTransaction(pack(t, &nodetx.NodeTransaction{
			Deactivate: []nodeops.DeactivateNodeParams{{TokenInstanceKey: token(1)}},
			Unlock:     []nodeops.UnlockNodeParams{{TokenInstanceKey: token(1)}},
		}), 9, common.HexToHash("0x03"), 0, owner, db)
		require.NoError(t, err)
		require.Len(t, logs, 2)
		require.Equal(t, nodelogs.NodeDeactivated, logs[0].Topics[0])
		require.Equal(t, nodelogs.NodeUnlocked, logs[1].Topics[0])
	})
}

func TestExecuteTransactionIsAtomic(t *testing.T) {
	_, owner := newKey(t)
	_, stranger := newKey(t)

	db := memstate.New()
	require.NoError(t, tokenlock.Mint(db, owner, token(1)))
	require.NoError(t, tokenlock.Mint(db, owner, token(2)))
	before := db.SlotCount(storageutil.NodeBaseAddress)

	newNodeKey := common.HexToAddress("0x00000000000000000000000000000000000000bb")
	_, err := nodetx.ExecuteTransaction(pack(t, &nodetx.NodeTransaction{
		Activate: []nodeops.ActivateNodeParams{
			{TokenInstanceKey: token(1), NodePublicKey: nodeKey},
			{TokenInstanceKey: token(2), NodePublicKey: nodeKey},
		},
		Update: []nodeops.UpdateNodeParams{{TokenInstanceKey: token(1), NodePublicKey: &newNodeKey, Owner: stranger}},
	}), 1, common.HexToHash("0x01"), 0, owner, db)

	require.Error(t, err)
	require.True(t, nodeerr.IsKind(err, nodeerr.KindUnauthorized))

	require.Equal(t, before, db.SlotCount(storageutil.NodeBaseAddress))
	balance, err := tokenlock.Balance(db, token(1))
	require.NoError(t, err)
	require.Empty(t, balance.LockedHolds)

	_, err = nodeops.FetchNodeMetadata(db, token(1))
	require.True(t, nodeerr.IsKind(err, nodeerr.KindNotFound))
}

func TestExecutorLimits(t *testing.T) {
	_, owner := newKey(t)
	db := memstate.New()

	tx := &nodetx.NodeTransaction{
		Activate: []nodeops.ActivateNodeParams{{
			TokenInstanceKey:  token(1),
			NodePublicKey:     nodeKey,
			OperatorAgreement: &agreement.OperatorAgreement{PublicKey: common.HexToAddress("0xc1"), Fee: 50},
			OperatorSignature: []byte{1},
		}},
	}

	_, err := nodetx.NewExecutor(nodetx.Limits{MaxFeePercent: 20, MaxCompressedSize: 1 << 20}).
		ExecuteTransaction(pack(t, tx), 1, common.Hash{}, 0, owner, db)
	require.ErrorContains(t, err, "exceeds 20 percent")

	_, err = nodetx.NewExecutor(nodetx.Limits{MaxFeePercent: 100, MaxCompressedSize: 8}).
		ExecuteTransaction(pack(t, tx), 1, common.Hash{}, 0, owner, db)
	require.Error(t, err)
	require.True(t, db.IsEmpty())
}
