package nodetx

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/log"
	"github.com/ethereum/go-ethereum/rlp"
	"github.com/nodebase/nodebase/node-base/address"
	"github.com/nodebase/nodebase/node-base/agreement"
	"github.com/nodebase/nodebase/node-base/compression"
	nodelogs "github.com/nodebase/nodebase/node-base/logs"
	"github.com/nodebase/nodebase/node-base/nodeops"
	"github.com/nodebase/nodebase/node-base/storageutil"
	"github.com/nodebase/nodebase/node-base/storageutil/nodemeta"
	"github.com/nodebase/nodebase/node-base/tokenkey"
)

// NodeTransaction is the payload of a transaction sent to the node base
// processor address.
//
// Operations are applied in the order Deactivate, Unlock, Activate, Update,
// each list in its own order, so that a single transaction can release a
// node and activate it again with new terms. The transaction is atomic:
// either every operation is applied or none is.
type NodeTransaction struct {
	Deactivate []nodeops.DeactivateNodeParams `json:"deactivate"`
	Unlock     []nodeops.UnlockNodeParams     `json:"unlock"`
	Activate   []nodeops.ActivateNodeParams   `json:"activate"`
	Update     []nodeops.UpdateNodeParams     `json:"update"`
}

var ErrEmptyTransaction = errors.New("node transaction has no operations")

func (tx *NodeTransaction) Validate() error {
	if len(tx.Deactivate)+len(tx.Unlock)+len(tx.Activate)+len(tx.Update) == 0 {
		return ErrEmptyTransaction
	}

	for i, d := range tx.Deactivate {
		if err := d.TokenInstanceKey.Validate(); err != nil {
			return fmt.Errorf("deactivate[%d]: %w", i, err)
		}
	}

	for i, u := range tx.Unlock {
		if err := u.TokenInstanceKey.Validate(); err != nil {
			return fmt.Errorf("unlock[%d]: %w", i, err)
		}
	}

	for i, a := range tx.Activate {
		terms := a.Terms()
		if err := terms.Validate(agreement.DefaultMaxFeePercent); err != nil {
			return fmt.Errorf("activate[%d]: %w", i, err)
		}
	}

	for i, u := range tx.Update {
		if err := u.TokenInstanceKey.Validate(); err != nil {
			return fmt.Errorf("update[%d]: %w", i, err)
		}
		if u.NodePublicKey != nil && *u.NodePublicKey == (common.Address{}) {
			return fmt.Errorf("update[%d]: node public key is empty", i)
		}
	}

	return nil
}

// ValidateFees rejects agreements whose fee exceeds maxFeePercent.
func (tx *NodeTransaction) ValidateFees(maxFeePercent uint64) error {
	for i, a := range tx.Activate {
		if a.OperatorAgreement == nil {
			continue
		}
		if err := a.OperatorAgreement.Validate(maxFeePercent); err != nil {
			return fmt.Errorf("activate[%d]: %w", i, err)
		}
	}
	return nil
}

func (tx *NodeTransaction) Run(blockNumber uint64, txHash common.Hash, txIx int, sender common.Address, access storageutil.StateAccess) (_ []*types.Log, err error) {

	defer func() {
		if err != nil {
			log.Error("failed to run node transaction", "error", err)
		}
	}()

	err = tx.Validate()
	if err != nil {
		return nil, fmt.Errorf("failed to validate node transaction: %w", err)
	}

	logs := []*types.Log{}

	emit := func(sig common.Hash, key tokenkey.TokenInstanceKey, actor common.Address, md nodemeta.NodeMetadata) error {
		data, err := nodelogs.EncodeEventData(key, md)
		if err != nil {
			return err
		}
		logs = append(logs, &types.Log{
			Address: address.NodeBaseProcessorAddress,
			Topics: []common.Hash{
				sig,
				key.CompositeKey(),
				nodelogs.AddressToHash(actor),
			},
			Data:        data,
			BlockNumber: blockNumber,
			TxHash:      txHash,
			TxIndex:     uint(txIx),
		})
		return nil
	}

	for i, d := range tx.Deactivate {
		md, err := nodeops.DeactivateNode(access, sender, d)
		if err != nil {
			return nil, fmt.Errorf("deactivate[%d] %s: %w", i, d.TokenInstanceKey, err)
		}
		if err := emit(nodelogs.NodeDeactivated, d.TokenInstanceKey, sender, *md); err != nil {
			return nil, err
		}
	}

	for i, u := range tx.Unlock {
		if _, err := nodeops.UnlockNode(access, sender, u); err != nil {
			return nil, fmt.Errorf("unlock[%d] %s: %w", i, u.TokenInstanceKey, err)
		}
		r, err := nodemeta.GetByKey(access, u.TokenInstanceKey)
		if err != nil {
			return nil, fmt.Errorf("unlock[%d] %s: %w", i, u.TokenInstanceKey, err)
		}
		if err := emit(nodelogs.NodeUnlocked, u.TokenInstanceKey, sender, r.Metadata()); err != nil {
			return nil, err
		}
	}

	for i, a := range tx.Activate {
		resp, err := nodeops.ActivateNode(access, sender, blockNumber, a)
		if err != nil {
			return nil, fmt.Errorf("activate[%d] %s: %w", i, a.TokenInstanceKey, err)
		}
		if err := emit(nodelogs.NodeActivated, a.TokenInstanceKey, resp.Balance.Owner, resp.Metadata); err != nil {
			return nil, err
		}
	}

	for i, u := range tx.Update {
		md, err := nodeops.UpdateNode(access, sender, u)
		if err != nil {
			return nil, fmt.Errorf("update[%d] %s: %w", i, u.TokenInstanceKey, err)
		}
		if err := emit(nodelogs.NodeUpdated, u.TokenInstanceKey, sender, *md); err != nil {
			return nil, err
		}
	}

	return logs, nil
}

// Pack is the inverse of UnpackNodeTransaction.
func (tx *NodeTransaction) Pack() ([]byte, error) {
	buf := new(bytes.Buffer)
	if err := rlp.Encode(buf, tx); err != nil {
		return nil, fmt.Errorf("failed to encode node transaction: %w", err)
	}
	return compression.BrotliCompress(buf.Bytes())
}

const maxCompressedSize = 1024 * 1024 * 20 // 20MB

func UnpackNodeTransaction(compressed []byte) (*NodeTransaction, error) {
	return unpack(compressed, maxCompressedSize)
}

func unpack(compressed []byte, limit int64) (*NodeTransaction, error) {
	d, err := compression.BrotliDecompress(compressed, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to read compressed node transaction: %w", err)
	}

	tx := &NodeTransaction{}
	err = rlp.DecodeBytes(d, tx)
	if err != nil {
		return nil, fmt.Errorf("failed to decode node transaction: %w", err)
	}

	return tx, nil
}
