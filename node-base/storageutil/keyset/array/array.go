package array

import (
	"errors"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
	"github.com/nodebase/nodebase/node-base/storageutil"
)

var (
	ErrIndexOutOfBounds = errors.New("index out of bounds")
	ErrArrayEmpty       = errors.New("array is empty")
)

// Array is a length-prefixed sequence of hashes. The length lives in the
// slot at base and element i lives in slot base+1+i.
type Array struct {
	db   storageutil.StateAccess
	base common.Hash
}

func NewArray(db storageutil.StateAccess, base common.Hash) *Array {
	return &Array{db: db, base: base}
}

func (a *Array) Size() *uint256.Int {
	return new(uint256.Int).SetBytes32(a.db.GetState(storageutil.NodeBaseAddress, a.base).Bytes())
}

func (a *Array) slot(index *uint256.Int) common.Hash {
	s := new(uint256.Int).SetBytes32(a.base.Bytes())
	s.Add(s, index)
	s.AddUint64(s, 1)
	return s.Bytes32()
}

func (a *Array) Get(index *uint256.Int) (common.Hash, error) {
	if index.Cmp(a.Size()) >= 0 {
		return common.Hash{}, ErrIndexOutOfBounds
	}
	return a.db.GetState(storageutil.NodeBaseAddress, a.slot(index)), nil
}

func (a *Array) Set(index *uint256.Int, value common.Hash) error {
	if index.Cmp(a.Size()) >= 0 {
		return ErrIndexOutOfBounds
	}
	a.db.SetState(storageutil.NodeBaseAddress, a.slot(index), value)
	return nil
}

// Append stores value at the end and returns the new size.
func (a *Array) Append(value common.Hash) *uint256.Int {
	size := a.Size()
	a.db.SetState(storageutil.NodeBaseAddress, a.slot(size), value)

	size.AddUint64(size, 1)
	a.db.SetState(storageutil.NodeBaseAddress, a.base, size.Bytes32())
	return size
}

func (a *Array) RemoveLast() error {
	size := a.Size()
	if size.IsZero() {
		return ErrArrayEmpty
	}

	size.SubUint64(size, 1)
	a.db.SetState(storageutil.NodeBaseAddress, a.slot(size), common.Hash{})
	a.db.SetState(storageutil.NodeBaseAddress, a.base, size.Bytes32())

	return nil
}

func (a *Array) Iterate(yield func(value common.Hash) bool) {
	size := a.Size()
	for i := new(uint256.Int); i.Cmp(size) < 0; i.AddUint64(i, 1) {
		if !yield(a.db.GetState(storageutil.NodeBaseAddress, a.slot(i))) {
			return
		}
	}
}

func (a *Array) Clear() {
	size := a.Size()
	for i := new(uint256.Int); i.Cmp(size) < 0; i.AddUint64(i, 1) {
		a.db.SetState(storageutil.NodeBaseAddress, a.slot(i), common.Hash{})
	}
	a.db.SetState(storageutil.NodeBaseAddress, a.base, common.Hash{})
}
