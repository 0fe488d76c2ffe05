// Package tokenkey identifies token instances on the ledger.
package tokenkey

import (
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/rlp"
)

// CompositeKeySalt separates token instance keys from every other keccak
// derived slot.
var CompositeKeySalt = []byte("nodeBaseTokenInstance")

const partSeparator = "|"

type TokenClassKey struct {
	Collection    string `json:"collection"`
	Category      string `json:"category"`
	Type          string `json:"type"`
	AdditionalKey string `json:"additionalKey"`
}

// TokenInstanceKey is the composite identity of a single token instance.
// Instance is an arbitrary precision, non-negative integer.
type TokenInstanceKey struct {
	Collection    string   `json:"collection"`
	Category      string   `json:"category"`
	Type          string   `json:"type"`
	AdditionalKey string   `json:"additionalKey"`
	Instance      *big.Int `json:"instance"`
}

func NFTKey(class TokenClassKey, instance *big.Int) TokenInstanceKey {
	return TokenInstanceKey{
		Collection:    class.Collection,
		Category:      class.Category,
		Type:          class.Type,
		AdditionalKey: class.AdditionalKey,
		Instance:      new(big.Int).Set(instance),
	}
}

func (k TokenInstanceKey) ClassKey() TokenClassKey {
	return TokenClassKey{
		Collection:    k.Collection,
		Category:      k.Category,
		Type:          k.Type,
		AdditionalKey: k.AdditionalKey,
	}
}

func (k TokenInstanceKey) Validate() error {
	parts := map[string]string{
		"collection":    k.Collection,
		"category":      k.Category,
		"type":          k.Type,
		"additionalKey": k.AdditionalKey,
	}
	for _, name := range []string{"collection", "category", "type", "additionalKey"} {
		v := parts[name]
		if v == "" {
			return fmt.Errorf("token instance key %s is empty", name)
		}
		if strings.Contains(v, partSeparator) {
			return fmt.Errorf("token instance key %s must not contain %q", name, partSeparator)
		}
	}
	if k.Instance == nil {
		return fmt.Errorf("token instance key instance is missing")
	}
	if k.Instance.Sign() < 0 {
		return fmt.Errorf("token instance key instance is negative: %s", k.Instance)
	}
	return nil
}

// Equal compares all five parts; instances are compared by value.
func (k TokenInstanceKey) Equal(other TokenInstanceKey) bool {
	if k.ClassKey() != other.ClassKey() {
		return false
	}
	if k.Instance == nil || other.Instance == nil {
		return k.Instance == nil && other.Instance == nil
	}
	return k.Instance.Cmp(other.Instance) == 0
}

// CompositeKey derives the state key of the instance from all five parts, so
// instances with equal numbers in different classes never collide. The key
// must have passed Validate; a negative instance panics.
func (k TokenInstanceKey) CompositeKey() common.Hash {
	enc, err := rlp.EncodeToBytes(&k)
	if err != nil {
		// only a negative instance fails to encode and Validate rejects it
		panic(fmt.Errorf("failed to encode token instance key: %w", err))
	}
	return crypto.Keccak256Hash(CompositeKeySalt, enc)
}

func (k TokenInstanceKey) String() string {
	instance := "<nil>"
	if k.Instance != nil {
		instance = k.Instance.String()
	}
	return strings.Join([]string{k.Collection, k.Category, k.Type, k.AdditionalKey, instance}, partSeparator)
}

// Parse reads the collection|category|type|additionalKey|instance form
// produced by String.
func Parse(s string) (TokenInstanceKey, error) {
	parts := strings.Split(s, partSeparator)
	if len(parts) != 5 {
		return TokenInstanceKey{}, fmt.Errorf("invalid token instance key %q: expected 5 parts separated by %q", s, partSeparator)
	}

	instance, ok := new(big.Int).SetString(parts[4], 10)
	if !ok {
		return TokenInstanceKey{}, fmt.Errorf("invalid token instance %q", parts[4])
	}

	k := TokenInstanceKey{
		Collection:    parts[0],
		Category:      parts[1],
		Type:          parts[2],
		AdditionalKey: parts[3],
		Instance:      instance,
	}
	if err := k.Validate(); err != nil {
		return TokenInstanceKey{}, err
	}
	return k, nil
}
