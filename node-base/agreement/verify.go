package agreement

import (
	"github.com/nodebase/nodebase/node-base/nodeerr"
)

const (
	msgMissingSignature    = "missing operator signature!"
	msgTokenMismatch       = "token mismatch!"
	msgNodeKeyMismatch     = "node key mismatch!"
	msgAgreementMismatch   = "operator agreement mismatch!"
	msgUndecodableProposal = "operator signature is not a signed operator proposal"
)

// VerifyOperatorProposal checks that blob is a proposal signed by the operator
// named in terms.OperatorAgreement and that it carries exactly the terms the
// owner is activating. It has no side effects.
//
// Mismatches are reported per field, in the order token instance, node key,
// operator agreement, so either party can tell which value changed after the
// proposal was signed.
func VerifyOperatorProposal(terms OperatorProposal, blob []byte) error {
	if terms.OperatorAgreement == nil || len(blob) == 0 {
		return nodeerr.New(nodeerr.KindMissingOperatorSignature, msgMissingSignature)
	}

	signed, err := DecodeSignedProposal(blob)
	if err != nil {
		return nodeerr.Wrap(nodeerr.KindForbidden, msgUndecodableProposal, err)
	}

	if err := VerifySignedBy(signed, terms.OperatorAgreement.PublicKey); err != nil {
		return err
	}

	return Compare(terms, signed.Proposal)
}

// Compare reports the first field in which the proposal signed by the operator
// differs from the owner's terms.
func Compare(terms, signed OperatorProposal) error {
	if !terms.TokenInstanceKey.Equal(signed.TokenInstanceKey) {
		return nodeerr.Mismatch(nodeerr.ReasonToken, msgTokenMismatch)
	}
	if terms.NodePublicKey != signed.NodePublicKey {
		return nodeerr.Mismatch(nodeerr.ReasonNodeKey, msgNodeKeyMismatch)
	}
	if !terms.OperatorAgreement.Equal(signed.OperatorAgreement) {
		return nodeerr.Mismatch(nodeerr.ReasonAgreement, msgAgreementMismatch)
	}
	return nil
}
