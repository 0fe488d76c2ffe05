package agreement

import (
	"bytes"
	"crypto/ecdsa"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/rlp"
	"github.com/nodebase/nodebase/node-base/nodeerr"
)

// ProposalSigningSalt prefixes the digest an operator signs so that a proposal
// signature can never be replayed as a signature over another payload.
var ProposalSigningSalt = []byte("nodeBaseOperatorProposal")

// SigningHash is the digest of the canonical (RLP) form of the proposal.
func (p *OperatorProposal) SigningHash() (common.Hash, error) {
	enc, err := rlp.EncodeToBytes(p)
	if err != nil {
		return common.Hash{}, fmt.Errorf("failed to encode operator proposal: %w", err)
	}
	return crypto.Keccak256Hash(ProposalSigningSalt, enc), nil
}

// SignedProposal is the opaque blob an operator hands to the owner.
type SignedProposal struct {
	Proposal  OperatorProposal
	Signature []byte
}

func Sign(p OperatorProposal, key *ecdsa.PrivateKey) (*SignedProposal, error) {
	hash, err := p.SigningHash()
	if err != nil {
		return nil, err
	}
	sig, err := crypto.Sign(hash[:], key)
	if err != nil {
		return nil, fmt.Errorf("failed to sign operator proposal: %w", err)
	}
	return &SignedProposal{Proposal: p, Signature: sig}, nil
}

func (s *SignedProposal) Encode() ([]byte, error) {
	buf := new(bytes.Buffer)
	if err := rlp.Encode(buf, s); err != nil {
		return nil, fmt.Errorf("failed to encode signed proposal: %w", err)
	}
	return buf.Bytes(), nil
}

func DecodeSignedProposal(blob []byte) (*SignedProposal, error) {
	s := &SignedProposal{}
	if err := rlp.DecodeBytes(blob, s); err != nil {
		return nil, fmt.Errorf("failed to decode signed proposal: %w", err)
	}
	return s, nil
}

// Signer recovers the identity whose key produced the signature.
func (s *SignedProposal) Signer() (common.Address, error) {
	if len(s.Signature) != crypto.SignatureLength {
		return common.Address{}, fmt.Errorf("signature has %d bytes, expected %d", len(s.Signature), crypto.SignatureLength)
	}

	r := new(big.Int).SetBytes(s.Signature[:32])
	sv := new(big.Int).SetBytes(s.Signature[32:64])
	if !crypto.ValidateSignatureValues(s.Signature[64], r, sv, true) {
		return common.Address{}, fmt.Errorf("signature values are out of range")
	}

	hash, err := s.Proposal.SigningHash()
	if err != nil {
		return common.Address{}, err
	}
	pub, err := crypto.SigToPub(hash[:], s.Signature)
	if err != nil {
		return common.Address{}, fmt.Errorf("failed to recover signer: %w", err)
	}
	return crypto.PubkeyToAddress(*pub), nil
}

// VerifySignedBy fails with a FORBIDDEN error unless the proposal was signed by
// the key of claimed.
func VerifySignedBy(s *SignedProposal, claimed common.Address) error {
	signer, err := s.Signer()
	if err != nil {
		return nodeerr.Wrap(nodeerr.KindForbidden, "operator signature could not be verified", err)
	}
	if signer != claimed {
		return nodeerr.New(
			nodeerr.KindForbidden,
			fmt.Sprintf("operator proposal is signed by %s, not by %s", signer.Hex(), claimed.Hex()),
		)
	}
	return nil
}
