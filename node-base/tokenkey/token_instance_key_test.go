package tokenkey_test

import (
	"math/big"
	"testing"

	"github.com/nodebase/nodebase/node-base/tokenkey"
	"github.com/stretchr/testify/require"
)

func nodeKey(instance int64) tokenkey.TokenInstanceKey {
	return tokenkey.NFTKey(tokenkey.TokenClassKey{
		Collection:    "GALA",
		Category:      "Node",
		Type:          "Founders",
		AdditionalKey: "none",
	}, big.NewInt(instance))
}

func TestValidate(t *testing.T) {
	require.NoError(t, nodeKey(1).Validate())
	require.NoError(t, nodeKey(0).Validate())

	k := nodeKey(1)
	k.Category = ""
	require.ErrorContains(t, k.Validate(), "category is empty")

	k = nodeKey(1)
	k.Type = "a|b"
	require.ErrorContains(t, k.Validate(), "must not contain")

	k = nodeKey(1)
	k.Instance = nil
	require.Error(t, k.Validate())

	require.Error(t, nodeKey(-1).Validate())
}

func TestCompositeKey(t *testing.T) {
	require.Equal(t, nodeKey(7).CompositeKey(), nodeKey(7).CompositeKey())
	require.NotEqual(t, nodeKey(7).CompositeKey(), nodeKey(8).CompositeKey())

	other := nodeKey(7)
	other.Type = "Standard"
	require.NotEqual(t, nodeKey(7).CompositeKey(), other.CompositeKey(), "same instance in another class")
}

func TestEqual(t *testing.T) {
	a := nodeKey(5)
	b := nodeKey(5)
	b.Instance = new(big.Int).SetInt64(5)
	require.True(t, a.Equal(b))
	require.False(t, a.Equal(nodeKey(6)))
}

func TestStringAndParse(t *testing.T) {
	k := nodeKey(12345678901234)
	require.Equal(t, "GALA|Node|Founders|none|12345678901234", k.String())

	parsed, err := tokenkey.Parse(k.String())
	require.NoError(t, err)
	require.True(t, k.Equal(parsed))

	_, err = tokenkey.Parse("GALA|Node|Founders|1")
	require.Error(t, err)

	_, err = tokenkey.Parse("GALA|Node|Founders|none|x")
	require.Error(t, err)

	_, err = tokenkey.Parse("GALA||Founders|none|1")
	require.Error(t, err)
}

func TestCompositeKeyNeedsValidKey(t *testing.T) {
	k := tokenkey.TokenInstanceKey{
		Collection:    "GALA",
		Category:      "Node",
		Type:          "Founders",
		AdditionalKey: "none",
		Instance:      big.NewInt(-1),
	}
	require.Error(t, k.Validate())
	require.Panics(t, func() { k.CompositeKey() })
}
