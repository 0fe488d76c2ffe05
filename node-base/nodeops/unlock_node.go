package nodeops

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/nodebase/nodebase/node-base/nodeerr"
	"github.com/nodebase/nodebase/node-base/tokenlock"
)

// UnlockNode releases the lock taken at activation so the token can be
// activated again. The node record is left as it is.
func UnlockNode(access StateAccess, caller common.Address, params UnlockNodeParams) (*tokenlock.TokenBalance, error) {
	if err := params.TokenInstanceKey.Validate(); err != nil {
		return nil, nodeerr.Wrap(nodeerr.KindValidation, err.Error(), err)
	}
	return tokenlock.Unlock(access, caller, params.TokenInstanceKey)
}
