// Package nodesofoperator indexes delegated nodes by the operator named in
// their agreement.
package nodesofoperator

import (
	"iter"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/nodebase/nodebase/node-base/storageutil"
	"github.com/nodebase/nodebase/node-base/storageutil/keyset"
)

type StateAccess = storageutil.StateAccess

var NodesOfOperatorSalt = []byte("nodeBaseNodesOfOperator")

func setKey(operator common.Address) common.Hash {
	return crypto.Keccak256Hash(NodesOfOperatorSalt, operator[:])
}

func AddNode(db StateAccess, operator common.Address, compositeKey common.Hash) {
	keyset.AddValue(db, setKey(operator), compositeKey)
}

func RemoveNode(db StateAccess, operator common.Address, compositeKey common.Hash) error {
	_, err := keyset.RemoveValue(db, setKey(operator), compositeKey)
	return err
}

func Iterate(db StateAccess, operator common.Address) iter.Seq[common.Hash] {
	return keyset.Iterate(db, setKey(operator))
}

func Contains(db StateAccess, operator common.Address, compositeKey common.Hash) bool {
	return keyset.ContainsValue(db, setKey(operator), compositeKey)
}
