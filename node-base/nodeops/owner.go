package nodeops

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/nodebase/nodebase/node-base/tokenkey"
	"github.com/nodebase/nodebase/node-base/tokenlock"
)

// isOwner reports whether caller holds key on the ledger. A supplied owner
// has to name the caller as well.
func isOwner(access StateAccess, caller, supplied common.Address, key tokenkey.TokenInstanceKey) bool {
	if supplied != (common.Address{}) && supplied != caller {
		return false
	}
	holder, ok := tokenlock.OwnerOf(access, key)
	return ok && holder == caller
}
