package state

import (
	"github.com/nodebase/nodebase/cmd/nodebase/state/allnodes"
	"github.com/nodebase/nodebase/cmd/nodebase/state/integrity"
	"github.com/nodebase/nodebase/cmd/nodebase/state/nodesofoperator"
	"github.com/nodebase/nodebase/cmd/nodebase/state/usedslots"
	"github.com/urfave/cli/v2"
)

func State() *cli.Command {
	return &cli.Command{
		Name:  "state",
		Usage: "Read node base state from the ledger",
		Subcommands: []*cli.Command{
			usedslots.UsedSlots(),
			nodesofoperator.NodesOfOperator(),
			allnodes.AllNodes(),
			integrity.Integrity(),
		},
	}
}
