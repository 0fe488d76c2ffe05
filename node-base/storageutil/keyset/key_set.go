// Package keyset provides an enumerable set of hashes kept in account storage,
// following the layout of OpenZeppelin's EnumerableSet: an array of members plus
// a map from member to its 1-based position in the array. Add, remove and
// membership checks are O(1); members can be enumerated in insertion order
// until the first removal.
package keyset

import (
	"fmt"
	"iter"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
	"github.com/nodebase/nodebase/node-base/storageutil"
	"github.com/nodebase/nodebase/node-base/storageutil/keyset/array"
	"github.com/nodebase/nodebase/node-base/storageutil/keyset/hashmap"
)

type StateAccess = storageutil.StateAccess

var MapKeyPrefix = []byte("nodeBaseKeysetMap")

func positions(db StateAccess, setKey common.Hash) *hashmap.Map {
	return hashmap.NewMap(db, MapKeyPrefix, setKey[:])
}

// ContainsValue reports whether value is a member of the set at setKey.
func ContainsValue(db StateAccess, setKey common.Hash, value common.Hash) bool {
	return positions(db, setKey).Get(value) != (common.Hash{})
}

// AddValue adds value to the set at setKey. It returns false when the value
// was already a member.
func AddValue(db StateAccess, setKey common.Hash, value common.Hash) bool {
	m := positions(db, setKey)
	if m.Get(value) != (common.Hash{}) {
		return false
	}

	size := array.NewArray(db, setKey).Append(value)
	m.Set(value, size.Bytes32())
	return true
}

// RemoveValue removes value from the set at setKey, moving the last member into
// the freed position. It returns false when the value was not a member.
func RemoveValue(db StateAccess, setKey common.Hash, value common.Hash) (bool, error) {
	arr := array.NewArray(db, setKey)
	m := positions(db, setKey)

	position := m.Get(value)
	if position == (common.Hash{}) {
		return false, nil
	}

	index := new(uint256.Int).SetBytes32(position.Bytes())
	index.SubUint64(index, 1)

	lastIndex := arr.Size()
	lastIndex.SubUint64(lastIndex, 1)

	if !lastIndex.Eq(index) {
		last, err := arr.Get(lastIndex)
		if err != nil {
			return false, fmt.Errorf("failed to get last element: %w", err)
		}
		if err := arr.Set(index, last); err != nil {
			return false, fmt.Errorf("failed to move last element: %w", err)
		}
		m.Set(last, position)
	}

	m.Delete(value)

	if err := arr.RemoveLast(); err != nil {
		return false, fmt.Errorf("failed to remove last element: %w", err)
	}

	return true, nil
}

func Size(db StateAccess, setKey common.Hash) *uint256.Int {
	return array.NewArray(db, setKey).Size()
}

// Clear removes every member of the set in O(n).
func Clear(db StateAccess, setKey common.Hash) {
	arr := array.NewArray(db, setKey)
	m := positions(db, setKey)

	for v := range arr.Iterate {
		m.Delete(v)
	}
	arr.Clear()
}

func Iterate(db StateAccess, setKey common.Hash) iter.Seq[common.Hash] {
	return array.NewArray(db, setKey).Iterate
}
