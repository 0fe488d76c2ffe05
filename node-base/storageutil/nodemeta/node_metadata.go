// Package nodemeta persists the delegation state of the node attached to a
// token instance.
package nodemeta

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/nodebase/nodebase/node-base/agreement"
	"github.com/nodebase/nodebase/node-base/tokenkey"
)

// State is one of Empty, Direct or Delegated.
type State interface {
	isState()
}

// Empty is the state of a record after deactivation.
type Empty struct{}

// Direct is a node run by the token owner.
type Direct struct {
	NodePublicKey common.Address
}

// Delegated is a node run under an operator agreement. The operator named in
// Agreement, not the owner, may change NodePublicKey.
type Delegated struct {
	NodePublicKey common.Address
	Agreement     agreement.OperatorAgreement
}

func (Empty) isState()     {}
func (Direct) isState()    {}
func (Delegated) isState() {}

type Record struct {
	Key   tokenkey.TokenInstanceKey
	State State
}

// NewRecord builds an active record. A nil agreement yields a Direct node.
func NewRecord(key tokenkey.TokenInstanceKey, nodePublicKey common.Address, oa *agreement.OperatorAgreement) (*Record, error) {
	if nodePublicKey == (common.Address{}) {
		return nil, fmt.Errorf("node public key is empty")
	}
	if oa == nil {
		return &Record{Key: key, State: Direct{NodePublicKey: nodePublicKey}}, nil
	}
	if oa.PublicKey == (common.Address{}) {
		return nil, fmt.Errorf("operator agreement public key is empty")
	}
	return &Record{Key: key, State: Delegated{NodePublicKey: nodePublicKey, Agreement: *oa}}, nil
}

// Agreement returns the operator agreement, or nil when the owner operates
// the node or the record is cleared.
func (r *Record) Agreement() *agreement.OperatorAgreement {
	if d, ok := r.State.(Delegated); ok {
		oa := d.Agreement
		return &oa
	}
	return nil
}

func (r *Record) NodePublicKey() (common.Address, bool) {
	switch s := r.State.(type) {
	case Direct:
		return s.NodePublicKey, true
	case Delegated:
		return s.NodePublicKey, true
	default:
		return common.Address{}, false
	}
}

// SetNodePublicKey replaces the node key and keeps any agreement. A cleared
// record becomes a Direct one.
func (r *Record) SetNodePublicKey(nodePublicKey common.Address) error {
	if nodePublicKey == (common.Address{}) {
		return fmt.Errorf("node public key is empty")
	}
	switch s := r.State.(type) {
	case Delegated:
		s.NodePublicKey = nodePublicKey
		r.State = s
	default:
		r.State = Direct{NodePublicKey: nodePublicKey}
	}
	return nil
}

func (r *Record) Deactivate() {
	r.State = Empty{}
}

// NodeMetadata is the externally visible view of a record.
type NodeMetadata struct {
	NodePublicKey     *common.Address              `json:"nodePublicKey,omitempty" rlp:"nil"`
	OperatorAgreement *agreement.OperatorAgreement `json:"operatorAgreement,omitempty" rlp:"nil"`
}

func (r *Record) Metadata() NodeMetadata {
	md := NodeMetadata{OperatorAgreement: r.Agreement()}
	if key, ok := r.NodePublicKey(); ok {
		md.NodePublicKey = &key
	}
	return md
}
