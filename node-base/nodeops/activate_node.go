package nodeops

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/nodebase/nodebase/node-base/agreement"
	"github.com/nodebase/nodebase/node-base/nodeerr"
	"github.com/nodebase/nodebase/node-base/storageutil/nodemeta"
	"github.com/nodebase/nodebase/node-base/tokenlock"
)

const msgNeedOwner = "need to be the owner!"

// ActivateNode locks one unit of the token and records the node that runs on
// it, replacing whatever record existed before.
func ActivateNode(access StateAccess, caller common.Address, blockNumber uint64, params ActivateNodeParams) (*ActivateNodeResponse, error) {
	owner := params.Owner
	if owner == (common.Address{}) {
		owner = caller
	}
	lockAuthority := params.LockAuthority
	if lockAuthority == (common.Address{}) {
		lockAuthority = owner
	}

	if caller != owner {
		return nil, nodeerr.Unauthorized(msgNeedOwner)
	}
	// an invalid key has no holder and is reported by the terms check below
	if params.TokenInstanceKey.Validate() == nil && !isOwner(access, caller, owner, params.TokenInstanceKey) {
		return nil, nodeerr.Unauthorized(msgNeedOwner)
	}

	terms := params.Terms()
	if err := terms.Validate(agreement.DefaultMaxFeePercent); err != nil {
		return nil, nodeerr.Wrap(nodeerr.KindValidation, err.Error(), err)
	}

	if terms.OperatorAgreement != nil {
		if err := agreement.VerifyOperatorProposal(terms, params.OperatorSignature); err != nil {
			return nil, err
		}
	}

	balance, err := tokenlock.Lock(access, tokenlock.LockParams{
		Owner:            owner,
		LockAuthority:    lockAuthority,
		TokenInstanceKey: params.TokenInstanceKey,
		Quantity:         1,
		Expires:          params.Expires,
		BlockNumber:      blockNumber,
	})
	if err != nil {
		return nil, err
	}

	record, err := nodemeta.NewRecord(params.TokenInstanceKey, params.NodePublicKey, params.OperatorAgreement.Copy())
	if err != nil {
		return nil, nodeerr.Wrap(nodeerr.KindValidation, err.Error(), err)
	}
	if err := nodemeta.Store(access, record); err != nil {
		return nil, fmt.Errorf("failed to store node metadata: %w", err)
	}

	return &ActivateNodeResponse{
		Balance:  balance,
		Metadata: record.Metadata(),
	}, nil
}
