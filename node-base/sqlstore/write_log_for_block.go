package sqlstore

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/log"
	"github.com/ethereum/go-ethereum/rpc"
	"github.com/nodebase/nodebase/node-base/address"
	nodelogs "github.com/nodebase/nodebase/node-base/logs"
)

// EventsFromLogs decodes the node base logs among logs and skips the rest.
func EventsFromLogs(logs []*types.Log) ([]Event, error) {
	events := []Event{}
	for _, l := range logs {
		if l.Address != address.NodeBaseProcessorAddress || len(l.Topics) != 3 {
			continue
		}
		name := nodelogs.EventName(l.Topics[0])
		if name == "" {
			continue
		}

		data, err := nodelogs.DecodeEventData(l.Data)
		if err != nil {
			return nil, fmt.Errorf("failed to decode %s log %d: %w", name, l.Index, err)
		}
		if data.TokenInstanceKey.CompositeKey() != l.Topics[1] {
			return nil, fmt.Errorf("%s log %d: data does not match the composite key topic", name, l.Index)
		}

		events = append(events, Event{
			Name:             name,
			TokenInstanceKey: data.TokenInstanceKey,
			Actor:            common.BytesToAddress(l.Topics[2][12:]),
			Metadata:         data.Metadata,
			TransactionIndex: uint64(l.TxIndex),
			LogIndex:         uint64(l.Index),
		})
	}
	return events, nil
}

func BlockWalFromReceipts(header *types.Header, receipts []*types.Receipt) (BlockWal, error) {
	logs := []*types.Log{}
	for _, r := range receipts {
		if r.Status != types.ReceiptStatusSuccessful {
			continue
		}
		logs = append(logs, r.Logs...)
	}

	events, err := EventsFromLogs(logs)
	if err != nil {
		return BlockWal{}, fmt.Errorf("block %d: %w", header.Number.Uint64(), err)
	}

	return BlockWal{
		BlockInfo: BlockInfo{
			Number:     header.Number.Uint64(),
			Hash:       header.Hash(),
			ParentHash: header.ParentHash,
		},
		Events: events,
	}, nil
}

// ChainReader is the part of ethclient.Client the follower uses.
type ChainReader interface {
	ChainID(ctx context.Context) (*big.Int, error)
	HeaderByNumber(ctx context.Context, number *big.Int) (*types.Header, error)
	BlockReceipts(ctx context.Context, blockNrOrHash rpc.BlockNumberOrHash) ([]*types.Receipt, error)
}

// Follow indexes blocks from the chain until ctx is done, polling for new
// heads every pollInterval.
func (e *SQLStore) Follow(ctx context.Context, client ChainReader, pollInterval time.Duration) error {
	chainID, err := client.ChainID(ctx)
	if err != nil {
		return fmt.Errorf("failed to get chain id: %w", err)
	}
	networkID := chainID.String()

	for ctx.Err() == nil {
		last, _, err := e.LastProcessedBlock(ctx, networkID)
		if err != nil {
			return err
		}

		next := last + 1
		header, err := client.HeaderByNumber(ctx, new(big.Int).SetUint64(next))
		switch {
		case errors.Is(err, ethereum.NotFound):
			select {
			case <-ctx.Done():
				return nil
			case <-time.After(pollInterval):
			}
			continue
		case err != nil:
			return fmt.Errorf("failed to get header %d: %w", next, err)
		}

		receipts, err := client.BlockReceipts(ctx, rpc.BlockNumberOrHashWithHash(header.Hash(), false))
		if err != nil {
			return fmt.Errorf("failed to get receipts of block %d: %w", next, err)
		}

		wal, err := BlockWalFromReceipts(header, receipts)
		if err != nil {
			return err
		}

		if err := e.InsertBlock(ctx, wal, networkID); err != nil {
			return fmt.Errorf("failed to insert block %d: %w", next, err)
		}

		if len(wal.Events) > 0 {
			log.Info("indexed node events", "block", next, "events", len(wal.Events))
		}
	}
	return nil
}
