package nodeops

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/nodebase/nodebase/node-base/storageutil/nodemeta"
)

type Role int

const (
	RoleOwner Role = iota
	RoleOperator
)

func (r Role) String() string {
	switch r {
	case RoleOwner:
		return "owner"
	case RoleOperator:
		return "operator"
	default:
		return "unknown"
	}
}

// Authority names who may change the node key of a record.
type Authority struct {
	Role     Role
	Operator common.Address
}

// AuthorityOf derives update rights from the current record. It must be
// evaluated on every update, since activation and deactivation move the
// right between owner and operator.
func AuthorityOf(r *nodemeta.Record) Authority {
	if oa := r.Agreement(); oa != nil {
		return Authority{Role: RoleOperator, Operator: oa.PublicKey}
	}
	return Authority{Role: RoleOwner}
}
