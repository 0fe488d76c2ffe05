// Package allnodes is the registry of every token instance that has ever had
// a node activated. Deactivation does not remove an instance from it.
package allnodes

import (
	"iter"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/nodebase/nodebase/node-base/storageutil"
	"github.com/nodebase/nodebase/node-base/storageutil/keyset"
)

type StateAccess = storageutil.StateAccess

var AllNodesKey = crypto.Keccak256Hash([]byte("nodeBaseAllNodes"))

func AddNode(db StateAccess, compositeKey common.Hash) {
	keyset.AddValue(db, AllNodesKey, compositeKey)
}

func Contains(db StateAccess, compositeKey common.Hash) bool {
	return keyset.ContainsValue(db, AllNodesKey, compositeKey)
}

func Iterate(db StateAccess) iter.Seq[common.Hash] {
	return keyset.Iterate(db, AllNodesKey)
}

func Count(db StateAccess) uint64 {
	return keyset.Size(db, AllNodesKey).Uint64()
}
