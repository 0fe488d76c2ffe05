package nodeops

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/nodebase/nodebase/node-base/storageutil/nodemeta"
	"github.com/nodebase/nodebase/node-base/storageutil/nodemeta/allnodes"
	"github.com/nodebase/nodebase/node-base/storageutil/nodemeta/nodesofoperator"
	"github.com/nodebase/nodebase/node-base/tokenlock"
)

// IntegrityProblem is an inconsistency between a node record and the state
// derived from it.
type IntegrityProblem struct {
	CompositeKey common.Hash `json:"compositeKey"`
	Problem      string      `json:"problem"`
}

// CheckIntegrity reads every node record and checks it against the token
// owner and the operator index. It only reads state.
func CheckIntegrity(access StateAccess) []IntegrityProblem {
	problems := []IntegrityProblem{}
	report := func(ck common.Hash, format string, args ...any) {
		problems = append(problems, IntegrityProblem{CompositeKey: ck, Problem: fmt.Sprintf(format, args...)})
	}

	operators := map[common.Address]struct{}{}

	for ck := range allnodes.Iterate(access) {
		r, err := nodemeta.Get(access, ck)
		if err != nil {
			report(ck, "record does not decode: %v", err)
			continue
		}

		if r.Key.CompositeKey() != ck {
			report(ck, "record is stored for %s", r.Key)
		}

		if _, ok := tokenlock.OwnerOf(access, r.Key); !ok {
			report(ck, "token instance %s has no owner", r.Key)
		}

		if oa := r.Agreement(); oa != nil {
			operators[oa.PublicKey] = struct{}{}
			if !nodesofoperator.Contains(access, oa.PublicKey, ck) {
				report(ck, "missing from the nodes of operator %s", oa.PublicKey)
			}
		}
	}

	for operator := range operators {
		for ck := range nodesofoperator.Iterate(access, operator) {
			r, err := nodemeta.Get(access, ck)
			if err != nil {
				report(ck, "listed for operator %s without a record", operator)
				continue
			}
			if oa := r.Agreement(); oa == nil || oa.PublicKey != operator {
				report(ck, "listed for operator %s but not delegated to it", operator)
			}
		}
	}

	return problems
}
