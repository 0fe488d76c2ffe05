package nodemeta

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/nodebase/nodebase/node-base/compression"
	"github.com/nodebase/nodebase/node-base/storageutil"
	"github.com/nodebase/nodebase/node-base/storageutil/nodemeta/allnodes"
	"github.com/nodebase/nodebase/node-base/storageutil/nodemeta/nodesofoperator"
	"github.com/nodebase/nodebase/node-base/storageutil/stateblob"
)

type StateAccess = storageutil.StateAccess

var NodeMetaDataSalt = []byte("nodeBaseNodeMetaData")

func metaDataSlot(compositeKey common.Hash) common.Hash {
	return crypto.Keccak256Hash(NodeMetaDataSalt, compositeKey[:])
}

// Store persists r under the composite key of its token instance and keeps
// the all-nodes and per-operator indexes in step with it.
func Store(access StateAccess, r *Record) error {
	compositeKey := r.Key.CompositeKey()

	var previousOperator *common.Address
	if allnodes.Contains(access, compositeKey) {
		prev, err := Get(access, compositeKey)
		if err != nil {
			return fmt.Errorf("failed to read previous node metadata: %w", err)
		}
		if oa := prev.Agreement(); oa != nil {
			previousOperator = &oa.PublicKey
		}
	}

	enc, err := encodeRecord(r)
	if err != nil {
		return fmt.Errorf("failed to encode node metadata: %w", err)
	}

	stateblob.SetBlob(access, metaDataSlot(compositeKey), compression.ZstdCompress(enc))
	allnodes.AddNode(access, compositeKey)

	oa := r.Agreement()
	if previousOperator != nil && (oa == nil || oa.PublicKey != *previousOperator) {
		if err := nodesofoperator.RemoveNode(access, *previousOperator, compositeKey); err != nil {
			return fmt.Errorf("failed to remove node from operator index: %w", err)
		}
	}
	if oa != nil {
		nodesofoperator.AddNode(access, oa.PublicKey, compositeKey)
	}

	return nil
}
