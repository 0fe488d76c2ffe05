// Package agreement holds the operator agreement a node owner enters into with
// a third party operator, and the proposal the operator signs off-ledger to
// commit to its terms.
package agreement

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/nodebase/nodebase/node-base/tokenkey"
)

// DefaultMaxFeePercent bounds OperatorAgreement.Fee unless configured otherwise.
const DefaultMaxFeePercent = 100

// OperatorAgreement names the operator identity of a node and the percentage
// of distributions it receives.
type OperatorAgreement struct {
	PublicKey common.Address `json:"publicKey"`
	Fee       uint64         `json:"fee"`
}

func (a OperatorAgreement) Validate(maxFeePercent uint64) error {
	if a.PublicKey == (common.Address{}) {
		return fmt.Errorf("operator agreement public key is empty")
	}
	if a.Fee > maxFeePercent {
		return fmt.Errorf("operator agreement fee %d exceeds %d percent", a.Fee, maxFeePercent)
	}
	return nil
}

// Equal treats two absent agreements as equal.
func (a *OperatorAgreement) Equal(other *OperatorAgreement) bool {
	if a == nil || other == nil {
		return a == nil && other == nil
	}
	return *a == *other
}

func (a *OperatorAgreement) Copy() *OperatorAgreement {
	if a == nil {
		return nil
	}
	cp := *a
	return &cp
}

// OperatorProposal is the set of terms an operator signs before the owner
// activates the node. The activation request of the owner is expressed in the
// same shape so both sides can be compared field by field.
type OperatorProposal struct {
	TokenInstanceKey  tokenkey.TokenInstanceKey `json:"tokenInstanceKey"`
	NodePublicKey     common.Address            `json:"nodePublicKey"`
	OperatorAgreement *OperatorAgreement        `json:"operatorAgreement,omitempty" rlp:"nil"`
}

func (p *OperatorProposal) Validate(maxFeePercent uint64) error {
	if err := p.TokenInstanceKey.Validate(); err != nil {
		return err
	}
	if p.NodePublicKey == (common.Address{}) {
		return fmt.Errorf("node public key is empty")
	}
	if p.OperatorAgreement != nil {
		if err := p.OperatorAgreement.Validate(maxFeePercent); err != nil {
			return err
		}
	}
	return nil
}
