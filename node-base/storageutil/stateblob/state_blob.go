// Package stateblob stores variable length byte strings in 32 byte storage
// slots of the node base account.
//
// Values of up to 31 bytes share the head slot with their length, which is
// stored as 2*n in the last byte. Longer values keep 2*n+1 in the head slot
// and their content in the slots following it.
package stateblob

import (
	"encoding/binary"
	"iter"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
	"github.com/nodebase/nodebase/node-base/storageutil"
)

type StateAccess = storageutil.StateAccess

var emptyHash = common.Hash{}

// SetBlob writes value under key, clearing whatever was stored there before.
func SetBlob(db StateAccess, key common.Hash, value []byte) {
	DeleteBlob(db, key)

	slot := new(uint256.Int).SetBytes(key[:])
	for v := range BytesTo32ByteSequence(value) {
		db.SetState(storageutil.NodeBaseAddress, slot.Bytes32(), v)
		slot.AddUint64(slot, 1)
	}
}

// HasBlob reports whether a non-empty value is stored under key.
func HasBlob(db StateAccess, key common.Hash) bool {
	return db.GetState(storageutil.NodeBaseAddress, key) != emptyHash
}

func BytesTo32ByteSequence(value []byte) iter.Seq[common.Hash] {
	return func(yield func(common.Hash) bool) {
		if len(value) <= 31 {
			data := common.RightPadBytes(value, 32)
			data[31] = byte(len(value) * 2)
			yield(common.BytesToHash(data))
			return
		}

		length := uint256.NewInt(uint64(len(value)*2 + 1))
		if !yield(common.BytesToHash(length.Bytes())) {
			return
		}

		for start := 0; start < len(value); start += 32 {
			end := min(start+32, len(value))
			if !yield(common.BytesToHash(common.RightPadBytes(value[start:end], 32))) {
				return
			}
		}
	}
}

func GetBlob(db StateAccess, key common.Hash) []byte {
	head := db.GetState(storageutil.NodeBaseAddress, key)
	if head == emptyHash {
		return []byte{}
	}

	if head[31]&0x01 == 0 {
		length := head[31] / 2
		return common.CopyBytes(head[:length])
	}

	remaining := dataLength(head)
	value := make([]byte, 0, remaining)

	slot := new(uint256.Int).SetBytes(key[:])
	slot.AddUint64(slot, 1)

	for remaining > 0 {
		chunk := db.GetState(storageutil.NodeBaseAddress, slot.Bytes32())
		size := min(remaining, 32)
		value = append(value, chunk[:size]...)
		remaining -= size
		slot.AddUint64(slot, 1)
	}

	return value
}

func DeleteBlob(db StateAccess, key common.Hash) {
	head := db.GetState(storageutil.NodeBaseAddress, key)
	if head == emptyHash {
		return
	}

	db.SetState(storageutil.NodeBaseAddress, key, emptyHash)

	if head[31]&0x01 == 0 {
		return
	}

	slot := new(uint256.Int).SetBytes(key[:])
	slot.AddUint64(slot, 1)
	for range (dataLength(head) + 31) / 32 {
		db.SetState(storageutil.NodeBaseAddress, slot.Bytes32(), emptyHash)
		slot.AddUint64(slot, 1)
	}
}

// dataLength decodes the 2*n+1 length marker of a long value.
func dataLength(head common.Hash) uint64 {
	return (binary.BigEndian.Uint64(head[24:]) - 1) / 2
}
