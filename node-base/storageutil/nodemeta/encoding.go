package nodemeta

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/rlp"
	"github.com/nodebase/nodebase/node-base/agreement"
	"github.com/nodebase/nodebase/node-base/tokenkey"
)

const (
	kindEmpty uint8 = iota
	kindDirect
	kindDelegated
)

// storedRecord is the RLP layout of a record in state.
type storedRecord struct {
	Key           tokenkey.TokenInstanceKey
	Kind          uint8
	NodePublicKey common.Address
	Agreement     *agreement.OperatorAgreement `rlp:"nil"`
}

func encodeRecord(r *Record) ([]byte, error) {
	sr := storedRecord{Key: r.Key}
	switch s := r.State.(type) {
	case nil, Empty:
		sr.Kind = kindEmpty
	case Direct:
		sr.Kind = kindDirect
		sr.NodePublicKey = s.NodePublicKey
	case Delegated:
		sr.Kind = kindDelegated
		sr.NodePublicKey = s.NodePublicKey
		sr.Agreement = s.Agreement.Copy()
	default:
		return nil, fmt.Errorf("unknown node state %T", s)
	}
	return rlp.EncodeToBytes(&sr)
}

func decodeRecord(d []byte) (*Record, error) {
	sr := storedRecord{}
	if err := rlp.DecodeBytes(d, &sr); err != nil {
		return nil, err
	}

	zero := common.Address{}
	switch sr.Kind {
	case kindEmpty:
		if sr.NodePublicKey != zero || sr.Agreement != nil {
			return nil, fmt.Errorf("cleared node record carries data")
		}
		return &Record{Key: sr.Key, State: Empty{}}, nil
	case kindDirect:
		if sr.NodePublicKey == zero || sr.Agreement != nil {
			return nil, fmt.Errorf("malformed direct node record")
		}
		return &Record{Key: sr.Key, State: Direct{NodePublicKey: sr.NodePublicKey}}, nil
	case kindDelegated:
		if sr.NodePublicKey == zero || sr.Agreement == nil {
			return nil, fmt.Errorf("malformed delegated node record")
		}
		return &Record{Key: sr.Key, State: Delegated{NodePublicKey: sr.NodePublicKey, Agreement: *sr.Agreement}}, nil
	default:
		return nil, fmt.Errorf("unknown node record kind %d", sr.Kind)
	}
}
