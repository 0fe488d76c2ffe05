package logs

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/rlp"
	"github.com/nodebase/nodebase/node-base/storageutil/nodemeta"
	"github.com/nodebase/nodebase/node-base/tokenkey"
)

// Every node base log has the topics [signature, compositeKey, actor] and
// carries EventData in its data field.

// NodeActivated is emitted when the owner activates a node.
// Parameters: compositeKey (indexed), owner (indexed), data
var NodeActivated = crypto.Keccak256Hash([]byte("NodeActivated(bytes32,address,bytes)"))

// NodeUpdated is emitted when the owner or operator changes the node key.
// Parameters: compositeKey (indexed), updater (indexed), data
var NodeUpdated = crypto.Keccak256Hash([]byte("NodeUpdated(bytes32,address,bytes)"))

// NodeDeactivated is emitted when the owner clears a node record.
// Parameters: compositeKey (indexed), owner (indexed), data
var NodeDeactivated = crypto.Keccak256Hash([]byte("NodeDeactivated(bytes32,address,bytes)"))

// NodeUnlocked is emitted when the lock authority releases the lock hold.
// Parameters: compositeKey (indexed), lockAuthority (indexed), data
var NodeUnlocked = crypto.Keccak256Hash([]byte("NodeUnlocked(bytes32,address,bytes)"))

// NodeLockExpired is emitted by housekeeping when a lock hold reaches its
// expiry block.
// Parameters: compositeKey (indexed), lockAuthority (indexed), data
var NodeLockExpired = crypto.Keccak256Hash([]byte("NodeLockExpired(bytes32,address,bytes)"))

var names = map[common.Hash]string{
	NodeActivated:   "NodeActivated",
	NodeUpdated:     "NodeUpdated",
	NodeDeactivated: "NodeDeactivated",
	NodeUnlocked:    "NodeUnlocked",
	NodeLockExpired: "NodeLockExpired",
}

// EventName returns the name of a node base event signature, or "" for
// anything else.
func EventName(sig common.Hash) string {
	return names[sig]
}

type EventData struct {
	TokenInstanceKey tokenkey.TokenInstanceKey
	Metadata         nodemeta.NodeMetadata
}

func EncodeEventData(key tokenkey.TokenInstanceKey, md nodemeta.NodeMetadata) ([]byte, error) {
	d, err := rlp.EncodeToBytes(&EventData{TokenInstanceKey: key, Metadata: md})
	if err != nil {
		return nil, fmt.Errorf("failed to encode event data: %w", err)
	}
	return d, nil
}

func DecodeEventData(d []byte) (*EventData, error) {
	ed := &EventData{}
	if err := rlp.DecodeBytes(d, ed); err != nil {
		return nil, fmt.Errorf("failed to decode event data: %w", err)
	}
	return ed, nil
}

func AddressToHash(a common.Address) common.Hash {
	h := common.Hash{}
	copy(h[12:], a[:])
	return h
}
