// Package lockexpiration keeps, for every block number, the set of token
// instances whose lock hold expires at that block.
package lockexpiration

import (
	"fmt"
	"iter"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/holiman/uint256"
	"github.com/nodebase/nodebase/node-base/storageutil"
	"github.com/nodebase/nodebase/node-base/storageutil/keyset"
)

type StateAccess = storageutil.StateAccess

var BlockExpirationSalt = []byte("nodeBaseLockExpiration")

func setKey(blockNumber uint64) common.Hash {
	return crypto.Keccak256Hash(BlockExpirationSalt, uint256.NewInt(blockNumber).Bytes())
}

func AddToLocksExpiringAtBlock(access StateAccess, blockNumber uint64, compositeKey common.Hash) {
	keyset.AddValue(access, setKey(blockNumber), compositeKey)
}

func RemoveFromLocksExpiringAtBlock(access StateAccess, blockNumber uint64, compositeKey common.Hash) error {
	_, err := keyset.RemoveValue(access, setKey(blockNumber), compositeKey)
	if err != nil {
		return fmt.Errorf("failed to remove the token from the expiration list: %w", err)
	}
	return nil
}

func IteratorOfLocksExpiringAtBlock(access StateAccess, blockNumber uint64) iter.Seq[common.Hash] {
	return keyset.Iterate(access, setKey(blockNumber))
}

func ClearLocksExpiringAtBlock(access StateAccess, blockNumber uint64) {
	keyset.Clear(access, setKey(blockNumber))
}
