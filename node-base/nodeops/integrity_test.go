package nodeops_test

import (
	"testing"

	"github.com/nodebase/nodebase/node-base/nodeops"
	"github.com/nodebase/nodebase/node-base/storageutil/nodemeta/nodesofoperator"
	"github.com/stretchr/testify/require"
)

func TestCheckIntegrity(t *testing.T) {
	f := newFixture(t)

	_, err := nodeops.ActivateNode(f.db, f.owner.address, 1, f.signedActivation(t, 1, 10))
	require.NoError(t, err)
	f.activateDirect(t, 2)

	require.Empty(t, nodeops.CheckIntegrity(f.db))

	t.Run("delegated node missing from the operator index", func(t *testing.T) {
		require.NoError(t, nodesofoperator.RemoveNode(f.db, f.operator.address, nodeToken(1).CompositeKey()))
		problems := nodeops.CheckIntegrity(f.db)
		require.Len(t, problems, 1)
		require.Equal(t, nodeToken(1).CompositeKey(), problems[0].CompositeKey)
		require.Contains(t, problems[0].Problem, "missing from the nodes of operator")
		nodesofoperator.AddNode(f.db, f.operator.address, nodeToken(1).CompositeKey())
	})

	t.Run("direct node listed for an operator", func(t *testing.T) {
		nodesofoperator.AddNode(f.db, f.operator.address, nodeToken(2).CompositeKey())
		problems := nodeops.CheckIntegrity(f.db)
		require.Len(t, problems, 1)
		require.Equal(t, nodeToken(2).CompositeKey(), problems[0].CompositeKey)
		require.Contains(t, problems[0].Problem, "not delegated to it")
	})
}
