// Package api exposes node metadata over JSON-RPC in the nodebase namespace.
package api

import (
	"context"
	"errors"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/rpc"
	"github.com/nodebase/nodebase/node-base/nodeops"
	"github.com/nodebase/nodebase/node-base/remotestate"
	"github.com/nodebase/nodebase/node-base/sqlstore"
	"github.com/nodebase/nodebase/node-base/storageaccounting"
	"github.com/nodebase/nodebase/node-base/storageutil"
	"github.com/nodebase/nodebase/node-base/storageutil/nodemeta"
	"github.com/nodebase/nodebase/node-base/tokenkey"
)

const Namespace = "nodebase"

var ErrNoIndex = errors.New("node history requires the sqlite index")

// nodeBaseAPI answers from ledger state, except for history and counts
// which come from the index.
type nodeBaseAPI struct {
	client remotestate.StorageReader
	store  *sqlstore.SQLStore
}

// NewNodeBaseAPI builds the service. store may be nil, in which case the
// index backed methods fail with ErrNoIndex.
func NewNodeBaseAPI(client remotestate.StorageReader, store *sqlstore.SQLStore) *nodeBaseAPI {
	return &nodeBaseAPI{
		client: client,
		store:  store,
	}
}

func APIs(client remotestate.StorageReader, store *sqlstore.SQLStore) []rpc.API {
	return []rpc.API{
		{
			Namespace: Namespace,
			Service:   NewNodeBaseAPI(client, store),
		},
	}
}

func (api *nodeBaseAPI) FetchNodeMetadata(ctx context.Context, key tokenkey.TokenInstanceKey) (*nodemeta.NodeMetadata, error) {
	if err := key.Validate(); err != nil {
		return nil, err
	}
	return remotestate.Read(ctx, api.client, func(access storageutil.StateAccess) (*nodemeta.NodeMetadata, error) {
		return nodeops.FetchNodeMetadata(access, key)
	})
}

func (api *nodeBaseAPI) GetNodesOfOperator(ctx context.Context, operator common.Address) ([]nodeops.NodeInfo, error) {
	return remotestate.Read(ctx, api.client, func(access storageutil.StateAccess) ([]nodeops.NodeInfo, error) {
		return nodeops.NodesOfOperator(access, operator)
	})
}

func (api *nodeBaseAPI) GetAllNodeKeys(ctx context.Context) ([]tokenkey.TokenInstanceKey, error) {
	nodes, err := remotestate.Read(ctx, api.client, nodeops.AllNodes)
	if err != nil {
		return nil, err
	}

	keys := make([]tokenkey.TokenInstanceKey, 0, len(nodes))
	for _, n := range nodes {
		keys = append(keys, n.TokenInstanceKey)
	}
	return keys, nil
}

func (api *nodeBaseAPI) GetNumberOfUsedSlots(ctx context.Context) (*hexutil.Big, error) {
	counter, err := remotestate.Read(ctx, api.client, func(access storageutil.StateAccess) (*big.Int, error) {
		return storageaccounting.GetNumberOfUsedSlots(access).ToBig(), nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get used slots: %w", err)
	}
	return (*hexutil.Big)(counter), nil
}

func (api *nodeBaseAPI) GetNodeHistory(ctx context.Context, key tokenkey.TokenInstanceKey) ([]sqlstore.HistoryEntry, error) {
	if api.store == nil {
		return nil, ErrNoIndex
	}
	if err := key.Validate(); err != nil {
		return nil, err
	}
	return api.store.History(ctx, key)
}

func (api *nodeBaseAPI) GetIndexedNode(ctx context.Context, key tokenkey.TokenInstanceKey) (*sqlstore.Node, error) {
	if api.store == nil {
		return nil, ErrNoIndex
	}
	if err := key.Validate(); err != nil {
		return nil, err
	}
	return api.store.GetNode(ctx, key)
}

func (api *nodeBaseAPI) GetActiveNodeCount(ctx context.Context) (uint64, error) {
	if api.store == nil {
		return 0, ErrNoIndex
	}
	return api.store.CountActiveNodes(ctx)
}
