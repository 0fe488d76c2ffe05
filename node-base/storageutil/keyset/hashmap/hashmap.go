package hashmap

import (
	"bytes"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/nodebase/nodebase/node-base/storageutil"
)

// Map is a hash to hash mapping whose entries live at keccak(salt, key).
type Map struct {
	db   storageutil.StateAccess
	salt []byte
}

func NewMap(db storageutil.StateAccess, salts ...[]byte) *Map {
	return &Map{db: db, salt: bytes.Join(salts, nil)}
}

func (m *Map) slot(key common.Hash) common.Hash {
	return crypto.Keccak256Hash(m.salt, key.Bytes())
}

func (m *Map) Get(key common.Hash) common.Hash {
	return m.db.GetState(storageutil.NodeBaseAddress, m.slot(key))
}

func (m *Map) Set(key common.Hash, value common.Hash) {
	m.db.SetState(storageutil.NodeBaseAddress, m.slot(key), value)
}

func (m *Map) Delete(key common.Hash) {
	m.Set(key, common.Hash{})
}
