package nodeops

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/nodebase/nodebase/node-base/nodeerr"
	"github.com/nodebase/nodebase/node-base/storageutil/nodemeta"
)

// DeactivateNode clears the node key and agreement of a record. Only the owner
// may do this, even while an operator holds the update right. The token stays
// locked.
func DeactivateNode(access StateAccess, caller common.Address, params DeactivateNodeParams) (*nodemeta.NodeMetadata, error) {
	if err := params.TokenInstanceKey.Validate(); err != nil {
		return nil, nodeerr.Wrap(nodeerr.KindValidation, err.Error(), err)
	}
	if !isOwner(access, caller, params.Owner, params.TokenInstanceKey) {
		return nil, nodeerr.Unauthorized(msgNeedOwner)
	}

	r, err := loadRecord(access, params.TokenInstanceKey)
	if err != nil {
		return nil, err
	}

	r.Deactivate()
	if err := nodemeta.Store(access, r); err != nil {
		return nil, fmt.Errorf("failed to store node metadata: %w", err)
	}

	md := r.Metadata()
	return &md, nil
}
