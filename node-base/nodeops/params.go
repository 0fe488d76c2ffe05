// Package nodeops applies node delegation operations to ledger state.
//
// Every operation runs inside a single ledger transaction: callers are
// expected to discard all state writes when an operation returns an error.
package nodeops

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/nodebase/nodebase/node-base/agreement"
	"github.com/nodebase/nodebase/node-base/storageutil"
	"github.com/nodebase/nodebase/node-base/storageutil/nodemeta"
	"github.com/nodebase/nodebase/node-base/tokenkey"
	"github.com/nodebase/nodebase/node-base/tokenlock"
)

type StateAccess = storageutil.StateAccess

type SignNodeAgreementParams struct {
	TokenInstanceKey  tokenkey.TokenInstanceKey    `json:"tokenInstanceKey"`
	NodePublicKey     common.Address               `json:"nodePublicKey"`
	OperatorAgreement *agreement.OperatorAgreement `json:"operatorAgreement,omitempty" rlp:"nil"`
}

// ActivateNodeParams describes an activation. A zero Owner means the caller,
// a zero LockAuthority means the owner and a zero Expires never expires.
type ActivateNodeParams struct {
	Owner             common.Address               `json:"owner"`
	LockAuthority     common.Address               `json:"lockAuthority"`
	TokenInstanceKey  tokenkey.TokenInstanceKey    `json:"tokenInstanceKey"`
	Expires           uint64                       `json:"expires"`
	NodePublicKey     common.Address               `json:"nodePublicKey"`
	OperatorAgreement *agreement.OperatorAgreement `json:"operatorAgreement,omitempty" rlp:"nil"`
	OperatorSignature []byte                       `json:"operatorSignature"`
}

func (p *ActivateNodeParams) Terms() agreement.OperatorProposal {
	return agreement.OperatorProposal{
		TokenInstanceKey:  p.TokenInstanceKey,
		NodePublicKey:     p.NodePublicKey,
		OperatorAgreement: p.OperatorAgreement,
	}
}

type ActivateNodeResponse struct {
	Balance  *tokenlock.TokenBalance `json:"balance"`
	Metadata nodemeta.NodeMetadata   `json:"metadata"`
}

// UpdateNodeParams changes the node key. A nil NodePublicKey leaves it as it
// is.
type UpdateNodeParams struct {
	Owner            common.Address            `json:"owner"`
	TokenInstanceKey tokenkey.TokenInstanceKey `json:"tokenInstanceKey"`
	NodePublicKey    *common.Address           `json:"nodePublicKey,omitempty" rlp:"nil"`
}

type DeactivateNodeParams struct {
	Owner            common.Address            `json:"owner"`
	TokenInstanceKey tokenkey.TokenInstanceKey `json:"tokenInstanceKey"`
}

type UnlockNodeParams struct {
	TokenInstanceKey tokenkey.TokenInstanceKey `json:"tokenInstanceKey"`
}
