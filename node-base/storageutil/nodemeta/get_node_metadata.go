package nodemeta

import (
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/nodebase/nodebase/node-base/compression"
	"github.com/nodebase/nodebase/node-base/storageutil/nodemeta/allnodes"
	"github.com/nodebase/nodebase/node-base/storageutil/stateblob"
	"github.com/nodebase/nodebase/node-base/tokenkey"
)

var ErrNotFound = errors.New("node metadata not found")

func Get(access StateAccess, compositeKey common.Hash) (*Record, error) {
	if !allnodes.Contains(access, compositeKey) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, compositeKey.Hex())
	}

	compressed := stateblob.GetBlob(access, metaDataSlot(compositeKey))
	d, err := compression.ZstdDecompress(compressed)
	if err != nil {
		return nil, err
	}

	r, err := decodeRecord(d)
	if err != nil {
		return nil, fmt.Errorf("failed to decode node metadata %s: %w", compositeKey.Hex(), err)
	}
	return r, nil
}

// GetByKey is Get for callers holding the token instance key. A token that
// never had a node yields an Empty record.
func GetByKey(access StateAccess, key tokenkey.TokenInstanceKey) (*Record, error) {
	r, err := Get(access, key.CompositeKey())
	if errors.Is(err, ErrNotFound) {
		return &Record{Key: key, State: Empty{}}, nil
	}
	return r, err
}
