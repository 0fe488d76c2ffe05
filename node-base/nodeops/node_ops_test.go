package nodeops_test

import (
	"crypto/ecdsa"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/nodebase/nodebase/node-base/agreement"
	"github.com/nodebase/nodebase/node-base/nodeerr"
	"github.com/nodebase/nodebase/node-base/nodeops"
	"github.com/nodebase/nodebase/node-base/storageutil/nodemeta"
	"github.com/nodebase/nodebase/node-base/testutil/memstate"
	"github.com/nodebase/nodebase/node-base/tokenkey"
	"github.com/nodebase/nodebase/node-base/tokenlock"
	"github.com/stretchr/testify/require"
)

type party struct {
	key     *ecdsa.PrivateKey
	address common.Address
}

func newParty(t *testing.T) party {
	t.Helper()
	key, err := crypto.GenerateKey()
	require.NoError(t, err)
	return party{key: key, address: crypto.PubkeyToAddress(key.PublicKey)}
}

type fixture struct {
	db       *memstate.State
	owner    party
	operator party
	stranger party
	nodeKey  common.Address
}

func newFixture(t *testing.T) *fixture {
	f := &fixture{
		db:       memstate.New(),
		owner:    newParty(t),
		operator: newParty(t),
		stranger: newParty(t),
		nodeKey:  common.HexToAddress("0x00000000000000000000000000000000000000aa"),
	}
	require.NoError(t, tokenlock.Mint(f.db, f.owner.address, nodeToken(1)))
	require.NoError(t, tokenlock.Mint(f.db, f.owner.address, nodeToken(2)))
	return f
}

func nodeToken(instance int64) tokenkey.TokenInstanceKey {
	return tokenkey.NFTKey(tokenkey.TokenClassKey{
		Collection:    "GALA",
		Category:      "Node",
		Type:          "Founders",
		AdditionalKey: "none",
	}, big.NewInt(instance))
}

func (f *fixture) signedActivation(t *testing.T, instance int64, fee uint64) nodeops.ActivateNodeParams {
	t.Helper()
	oa := &agreement.OperatorAgreement{PublicKey: f.operator.address, Fee: fee}
	proposal, err := nodeops.SignNodeAgreement(nodeops.SignNodeAgreementParams{
		TokenInstanceKey:  nodeToken(instance),
		NodePublicKey:     f.nodeKey,
		OperatorAgreement: oa,
	})
	require.NoError(t, err)

	signed, err := agreement.Sign(*proposal, f.operator.key)
	require.NoError(t, err)
	blob, err := signed.Encode()
	require.NoError(t, err)

	return nodeops.ActivateNodeParams{
		TokenInstanceKey:  nodeToken(instance),
		NodePublicKey:     f.nodeKey,
		OperatorAgreement: oa.Copy(),
		OperatorSignature: blob,
	}
}

func (f *fixture) activateDirect(t *testing.T, instance int64) {
	t.Helper()
	_, err := nodeops.ActivateNode(f.db, f.owner.address, 1, nodeops.ActivateNodeParams{
		TokenInstanceKey: nodeToken(instance),
		NodePublicKey:    f.nodeKey,
	})
	require.NoError(t, err)
}

func requireKind(t *testing.T, err error, kind nodeerr.Kind, msg string) {
	t.Helper()
	require.Error(t, err)
	require.True(t, nodeerr.IsKind(err, kind), "expected %s, got %v", kind, err)
	if msg != "" {
		require.EqualError(t, err, msg)
	}
}

func TestActivateNode(t *testing.T) {

	t.Run("direct", func(t *testing.T) {
		f := newFixture(t)
		resp, err := nodeops.ActivateNode(f.db, f.owner.address, 5, nodeops.ActivateNodeParams{
			TokenInstanceKey: nodeToken(1),
			NodePublicKey:    f.nodeKey,
			Expires:          100,
		})
		require.NoError(t, err)
		require.Equal(t, f.nodeKey, *resp.Metadata.NodePublicKey)
		require.Nil(t, resp.Metadata.OperatorAgreement)
		require.Equal(t, []tokenlock.LockedHold{{
			LockAuthority:  f.owner.address,
			Quantity:       1,
			Expires:        100,
			CreatedAtBlock: 5,
		}}, resp.Balance.LockedHolds)
	})

	t.Run("delegated", func(t *testing.T) {
		f := newFixture(t)
		resp, err := nodeops.ActivateNode(f.db, f.owner.address, 1, f.signedActivation(t, 1, 10))
		require.NoError(t, err)
		require.Equal(t, &agreement.OperatorAgreement{PublicKey: f.operator.address, Fee: 10}, resp.Metadata.OperatorAgreement)

		nodes, err := nodeops.NodesOfOperator(f.db, f.operator.address)
		require.NoError(t, err)
		require.Len(t, nodes, 1)
		require.True(t, nodes[0].TokenInstanceKey.Equal(nodeToken(1)))
	})

	t.Run("non-owner", func(t *testing.T) {
		f := newFixture(t)
		params := f.signedActivation(t, 1, 10)
		params.Owner = f.owner.address
		_, err := nodeops.ActivateNode(f.db, f.stranger.address, 1, params)
		requireKind(t, err, nodeerr.KindUnauthorized, "need to be the owner!")
	})

	t.Run("non-owner with invalid fields", func(t *testing.T) {
		f := newFixture(t)
		_, err := nodeops.ActivateNode(f.db, f.stranger.address, 1, nodeops.ActivateNodeParams{Owner: f.owner.address})
		requireKind(t, err, nodeerr.KindUnauthorized, "need to be the owner!")
	})

	t.Run("caller holding no token", func(t *testing.T) {
		f := newFixture(t)
		_, err := nodeops.ActivateNode(f.db, f.stranger.address, 1, nodeops.ActivateNodeParams{
			TokenInstanceKey: nodeToken(1),
			NodePublicKey:    f.nodeKey,
		})
		requireKind(t, err, nodeerr.KindUnauthorized, "need to be the owner!")
		_, err = nodeops.FetchNodeMetadata(f.db, nodeToken(1))
		require.True(t, nodeerr.IsKind(err, nodeerr.KindNotFound))
	})

	t.Run("caller naming itself owner of a token it does not hold", func(t *testing.T) {
		f := newFixture(t)
		_, err := nodeops.ActivateNode(f.db, f.stranger.address, 1, nodeops.ActivateNodeParams{
			TokenInstanceKey: nodeToken(1),
			NodePublicKey:    f.nodeKey,
			Owner:            f.stranger.address,
		})
		requireKind(t, err, nodeerr.KindUnauthorized, "need to be the owner!")
	})

	t.Run("missing signature", func(t *testing.T) {
		f := newFixture(t)
		params := f.signedActivation(t, 1, 10)
		params.OperatorSignature = nil
		_, err := nodeops.ActivateNode(f.db, f.owner.address, 1, params)
		requireKind(t, err, nodeerr.KindMissingOperatorSignature, "missing operator signature!")
	})

	t.Run("fee differs from the signed one", func(t *testing.T) {
		f := newFixture(t)
		params := f.signedActivation(t, 1, 10)
		params.OperatorAgreement.Fee = 0
		_, err := nodeops.ActivateNode(f.db, f.owner.address, 1, params)
		requireKind(t, err, nodeerr.KindAgreementMismatch, "operator agreement mismatch!")
		require.Equal(t, nodeerr.ReasonAgreement, nodeerr.MismatchReason(err))
	})

	t.Run("signature of another token", func(t *testing.T) {
		f := newFixture(t)
		params := f.signedActivation(t, 2, 10)
		params.TokenInstanceKey = nodeToken(1)
		_, err := nodeops.ActivateNode(f.db, f.owner.address, 1, params)
		requireKind(t, err, nodeerr.KindAgreementMismatch, "token mismatch!")
	})

	t.Run("node key differs from the signed one", func(t *testing.T) {
		f := newFixture(t)
		params := f.signedActivation(t, 1, 10)
		params.NodePublicKey = common.HexToAddress("0xbb")
		_, err := nodeops.ActivateNode(f.db, f.owner.address, 1, params)
		requireKind(t, err, nodeerr.KindAgreementMismatch, "node key mismatch!")
	})

	t.Run("agreement naming another operator", func(t *testing.T) {
		f := newFixture(t)
		params := f.signedActivation(t, 1, 10)
		params.OperatorAgreement.PublicKey = f.stranger.address
		_, err := nodeops.ActivateNode(f.db, f.owner.address, 1, params)
		requireKind(t, err, nodeerr.KindForbidden, "")
	})

	t.Run("already locked", func(t *testing.T) {
		f := newFixture(t)
		f.activateDirect(t, 1)
		_, err := nodeops.ActivateNode(f.db, f.owner.address, 2, nodeops.ActivateNodeParams{
			TokenInstanceKey: nodeToken(1),
			NodePublicKey:    f.nodeKey,
		})
		require.ErrorIs(t, err, tokenlock.ErrTokenLocked)
	})

	t.Run("reactivation replaces the agreement", func(t *testing.T) {
		f := newFixture(t)
		_, err := nodeops.ActivateNode(f.db, f.owner.address, 1, f.signedActivation(t, 1, 10))
		require.NoError(t, err)

		_, err = nodeops.UnlockNode(f.db, f.owner.address, nodeops.UnlockNodeParams{TokenInstanceKey: nodeToken(1)})
		require.NoError(t, err)

		resp, err := nodeops.ActivateNode(f.db, f.owner.address, 2, f.signedActivation(t, 1, 25))
		require.NoError(t, err)
		require.Equal(t, uint64(25), resp.Metadata.OperatorAgreement.Fee)

		md, err := nodeops.FetchNodeMetadata(f.db, nodeToken(1))
		require.NoError(t, err)
		require.Equal(t, uint64(25), md.OperatorAgreement.Fee)
	})
}

func TestUpdateNode(t *testing.T) {
	newKey := common.HexToAddress("0x00000000000000000000000000000000000000cc")

	t.Run("never activated", func(t *testing.T) {
		f := newFixture(t)
		_, err := nodeops.UpdateNode(f.db, f.owner.address, nodeops.UpdateNodeParams{TokenInstanceKey: nodeToken(1), NodePublicKey: &newKey})
		requireKind(t, err, nodeerr.KindNotFound, "")
	})

	t.Run("direct node", func(t *testing.T) {
		f := newFixture(t)
		f.activateDirect(t, 1)

		_, err := nodeops.UpdateNode(f.db, f.stranger.address, nodeops.UpdateNodeParams{TokenInstanceKey: nodeToken(1), NodePublicKey: &newKey})
		requireKind(t, err, nodeerr.KindUnauthorized, "need to be owner to update!")

		_, err = nodeops.UpdateNode(f.db, f.stranger.address, nodeops.UpdateNodeParams{
			Owner:            f.owner.address,
			TokenInstanceKey: nodeToken(1),
			NodePublicKey:    &newKey,
		})
		requireKind(t, err, nodeerr.KindUnauthorized, "need to be owner to update!")

		md, err := nodeops.UpdateNode(f.db, f.owner.address, nodeops.UpdateNodeParams{TokenInstanceKey: nodeToken(1), NodePublicKey: &newKey})
		require.NoError(t, err)
		require.Equal(t, newKey, *md.NodePublicKey)
	})

	t.Run("absent key leaves the node key", func(t *testing.T) {
		f := newFixture(t)
		f.activateDirect(t, 1)

		md, err := nodeops.UpdateNode(f.db, f.owner.address, nodeops.UpdateNodeParams{TokenInstanceKey: nodeToken(1)})
		require.NoError(t, err)
		require.Equal(t, f.nodeKey, *md.NodePublicKey)
	})

	t.Run("role flips with delegation", func(t *testing.T) {
		f := newFixture(t)
		_, err := nodeops.ActivateNode(f.db, f.owner.address, 1, f.signedActivation(t, 1, 10))
		require.NoError(t, err)

		_, err = nodeops.UpdateNode(f.db, f.owner.address, nodeops.UpdateNodeParams{TokenInstanceKey: nodeToken(1), NodePublicKey: &newKey})
		requireKind(t, err, nodeerr.KindUnauthorized, "need to be operator to update!")

		md, err := nodeops.UpdateNode(f.db, f.operator.address, nodeops.UpdateNodeParams{TokenInstanceKey: nodeToken(1), NodePublicKey: &newKey})
		require.NoError(t, err)
		require.Equal(t, newKey, *md.NodePublicKey)
		require.Equal(t, uint64(10), md.OperatorAgreement.Fee, "update keeps the agreement")

		_, err = nodeops.DeactivateNode(f.db, f.owner.address, nodeops.DeactivateNodeParams{TokenInstanceKey: nodeToken(1)})
		require.NoError(t, err)

		_, err = nodeops.UpdateNode(f.db, f.operator.address, nodeops.UpdateNodeParams{TokenInstanceKey: nodeToken(1), NodePublicKey: &newKey})
		requireKind(t, err, nodeerr.KindUnauthorized, "need to be owner to update!")

		md, err = nodeops.UpdateNode(f.db, f.owner.address, nodeops.UpdateNodeParams{TokenInstanceKey: nodeToken(1), NodePublicKey: &newKey})
		require.NoError(t, err)
		require.Equal(t, newKey, *md.NodePublicKey)
		require.Nil(t, md.OperatorAgreement)
	})
}

func TestDeactivateNode(t *testing.T) {

	t.Run("operator cannot deactivate", func(t *testing.T) {
		f := newFixture(t)
		_, err := nodeops.ActivateNode(f.db, f.owner.address, 1, f.signedActivation(t, 1, 10))
		require.NoError(t, err)

		_, err = nodeops.DeactivateNode(f.db, f.operator.address, nodeops.DeactivateNodeParams{TokenInstanceKey: nodeToken(1)})
		requireKind(t, err, nodeerr.KindUnauthorized, "need to be the owner!")
	})

	t.Run("never activated", func(t *testing.T) {
		f := newFixture(t)
		_, err := nodeops.DeactivateNode(f.db, f.owner.address, nodeops.DeactivateNodeParams{TokenInstanceKey: nodeToken(1)})
		requireKind(t, err, nodeerr.KindNotFound, "")
	})

	t.Run("clears the record and keeps the lock", func(t *testing.T) {
		f := newFixture(t)
		_, err := nodeops.ActivateNode(f.db, f.owner.address, 1, f.signedActivation(t, 1, 10))
		require.NoError(t, err)

		md, err := nodeops.DeactivateNode(f.db, f.owner.address, nodeops.DeactivateNodeParams{
			Owner:            f.owner.address,
			TokenInstanceKey: nodeToken(1),
		})
		require.NoError(t, err)
		require.Equal(t, nodemeta.NodeMetadata{}, *md)

		fetched, err := nodeops.FetchNodeMetadata(f.db, nodeToken(1))
		require.NoError(t, err)
		require.Equal(t, nodemeta.NodeMetadata{}, *fetched)

		balance, err := tokenlock.Balance(f.db, nodeToken(1))
		require.NoError(t, err)
		require.Len(t, balance.LockedHolds, 1)

		nodes, err := nodeops.NodesOfOperator(f.db, f.operator.address)
		require.NoError(t, err)
		require.Empty(t, nodes)
	})
}

func TestFetchNodeMetadata(t *testing.T) {
	f := newFixture(t)

	_, err := nodeops.FetchNodeMetadata(f.db, nodeToken(1))
	requireKind(t, err, nodeerr.KindNotFound, "")

	f.activateDirect(t, 1)
	md, err := nodeops.FetchNodeMetadata(f.db, nodeToken(1))
	require.NoError(t, err)
	require.Equal(t, f.nodeKey, *md.NodePublicKey)

	all, err := nodeops.AllNodes(f.db)
	require.NoError(t, err)
	require.Len(t, all, 1)
}

func TestUnlockNode(t *testing.T) {
	f := newFixture(t)
	f.activateDirect(t, 1)

	_, err := nodeops.UnlockNode(f.db, f.stranger.address, nodeops.UnlockNodeParams{TokenInstanceKey: nodeToken(1)})
	require.ErrorIs(t, err, tokenlock.ErrNotLockAuthority)

	balance, err := nodeops.UnlockNode(f.db, f.owner.address, nodeops.UnlockNodeParams{TokenInstanceKey: nodeToken(1)})
	require.NoError(t, err)
	require.Empty(t, balance.LockedHolds)

	md, err := nodeops.FetchNodeMetadata(f.db, nodeToken(1))
	require.NoError(t, err)
	require.Equal(t, f.nodeKey, *md.NodePublicKey, "unlocking keeps the node record")
}

func TestAuthorityOf(t *testing.T) {
	r, err := nodemeta.NewRecord(nodeToken(1), common.HexToAddress("0xaa"), nil)
	require.NoError(t, err)
	require.Equal(t, nodeops.Authority{Role: nodeops.RoleOwner}, nodeops.AuthorityOf(r))

	operator := common.HexToAddress("0xc1")
	r, err = nodemeta.NewRecord(nodeToken(1), common.HexToAddress("0xaa"), &agreement.OperatorAgreement{PublicKey: operator})
	require.NoError(t, err)
	require.Equal(t, nodeops.Authority{Role: nodeops.RoleOperator, Operator: operator}, nodeops.AuthorityOf(r))

	r.Deactivate()
	require.Equal(t, nodeops.RoleOwner, nodeops.AuthorityOf(r).Role)
}
