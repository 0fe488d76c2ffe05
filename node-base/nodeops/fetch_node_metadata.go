package nodeops

import (
	"fmt"
	"slices"

	"github.com/ethereum/go-ethereum/common"
	"github.com/nodebase/nodebase/node-base/storageutil/nodemeta"
	"github.com/nodebase/nodebase/node-base/storageutil/nodemeta/allnodes"
	"github.com/nodebase/nodebase/node-base/storageutil/nodemeta/nodesofoperator"
	"github.com/nodebase/nodebase/node-base/tokenkey"
)

// FetchNodeMetadata is open to everyone.
func FetchNodeMetadata(access StateAccess, key tokenkey.TokenInstanceKey) (*nodemeta.NodeMetadata, error) {
	r, err := loadRecord(access, key)
	if err != nil {
		return nil, err
	}
	md := r.Metadata()
	return &md, nil
}

type NodeInfo struct {
	TokenInstanceKey tokenkey.TokenInstanceKey `json:"tokenInstanceKey"`
	Metadata         nodemeta.NodeMetadata     `json:"metadata"`
}

func nodeInfos(access StateAccess, compositeKeys []common.Hash) ([]NodeInfo, error) {
	infos := make([]NodeInfo, 0, len(compositeKeys))
	for _, ck := range compositeKeys {
		r, err := nodemeta.Get(access, ck)
		if err != nil {
			return nil, fmt.Errorf("failed to load node %s: %w", ck.Hex(), err)
		}
		infos = append(infos, NodeInfo{TokenInstanceKey: r.Key, Metadata: r.Metadata()})
	}
	return infos, nil
}

// NodesOfOperator lists the nodes currently delegated to operator.
func NodesOfOperator(access StateAccess, operator common.Address) ([]NodeInfo, error) {
	return nodeInfos(access, slices.Collect(nodesofoperator.Iterate(access, operator)))
}

// AllNodes lists every token instance that was ever activated, including
// deactivated ones.
func AllNodes(access StateAccess) ([]NodeInfo, error) {
	return nodeInfos(access, slices.Collect(allnodes.Iterate(access)))
}
