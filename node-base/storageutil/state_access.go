package storageutil

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/nodebase/nodebase/node-base/address"
)

// NodeBaseAddress is the account whose storage holds node records, token
// balances, lock holds and their indexes.
var NodeBaseAddress = address.NodeBaseProcessorAddress

type StateAccess interface {
	GetState(common.Address, common.Hash) common.Hash
	SetState(common.Address, common.Hash, common.Hash) common.Hash
}

// Snapshotter is implemented by state backends that can roll back writes.
// The transaction processor reverts to the snapshot taken before a
// transaction when any of its operations fails.
type Snapshotter interface {
	Snapshot() int
	RevertToSnapshot(int)
}
