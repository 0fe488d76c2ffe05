package nodeops

import (
	"github.com/nodebase/nodebase/node-base/agreement"
	"github.com/nodebase/nodebase/node-base/nodeerr"
)

// SignNodeAgreement validates the terms and returns the proposal the operator
// signs off-ledger. It does not touch state.
func SignNodeAgreement(params SignNodeAgreementParams) (*agreement.OperatorProposal, error) {
	p := &agreement.OperatorProposal{
		TokenInstanceKey:  params.TokenInstanceKey,
		NodePublicKey:     params.NodePublicKey,
		OperatorAgreement: params.OperatorAgreement.Copy(),
	}
	if err := p.Validate(agreement.DefaultMaxFeePercent); err != nil {
		return nil, nodeerr.Wrap(nodeerr.KindValidation, err.Error(), err)
	}
	return p, nil
}
