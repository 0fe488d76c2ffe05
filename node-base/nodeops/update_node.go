package nodeops

import (
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/nodebase/nodebase/node-base/nodeerr"
	"github.com/nodebase/nodebase/node-base/storageutil/nodemeta"
	"github.com/nodebase/nodebase/node-base/tokenkey"
)

const (
	msgNeedOwnerToUpdate    = "need to be owner to update!"
	msgNeedOperatorToUpdate = "need to be operator to update!"
)

func loadRecord(access StateAccess, key tokenkey.TokenInstanceKey) (*nodemeta.Record, error) {
	if err := key.Validate(); err != nil {
		return nil, nodeerr.Wrap(nodeerr.KindValidation, err.Error(), err)
	}
	r, err := nodemeta.Get(access, key.CompositeKey())
	if errors.Is(err, nodemeta.ErrNotFound) {
		return nil, nodeerr.Wrap(nodeerr.KindNotFound, fmt.Sprintf("no node metadata for %s", key), err)
	}
	return r, err
}

func UpdateNode(access StateAccess, caller common.Address, params UpdateNodeParams) (*nodemeta.NodeMetadata, error) {
	r, err := loadRecord(access, params.TokenInstanceKey)
	if err != nil {
		return nil, err
	}

	auth := AuthorityOf(r)
	switch auth.Role {
	case RoleOperator:
		if caller != auth.Operator {
			return nil, nodeerr.Unauthorized(msgNeedOperatorToUpdate)
		}
	default:
		if !isOwner(access, caller, params.Owner, params.TokenInstanceKey) {
			return nil, nodeerr.Unauthorized(msgNeedOwnerToUpdate)
		}
	}

	if params.NodePublicKey != nil {
		if err := r.SetNodePublicKey(*params.NodePublicKey); err != nil {
			return nil, nodeerr.Wrap(nodeerr.KindValidation, err.Error(), err)
		}
	}

	if err := nodemeta.Store(access, r); err != nil {
		return nil, fmt.Errorf("failed to store node metadata: %w", err)
	}

	md := r.Metadata()
	return &md, nil
}
