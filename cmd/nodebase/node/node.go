package node

import (
	"github.com/nodebase/nodebase/cmd/nodebase/node/activate"
	"github.com/nodebase/nodebase/cmd/nodebase/node/deactivate"
	"github.com/nodebase/nodebase/cmd/nodebase/node/fetch"
	"github.com/nodebase/nodebase/cmd/nodebase/node/history"
	"github.com/nodebase/nodebase/cmd/nodebase/node/sign"
	"github.com/nodebase/nodebase/cmd/nodebase/node/unlock"
	"github.com/nodebase/nodebase/cmd/nodebase/node/update"
	"github.com/urfave/cli/v2"
)

func Node() *cli.Command {
	return &cli.Command{
		Name:  "node",
		Usage: "Manage node delegation",
		Subcommands: []*cli.Command{
			sign.Sign(),
			activate.Activate(),
			update.Update(),
			deactivate.Deactivate(),
			unlock.Unlock(),
			fetch.Fetch(),
			history.History(),
		},
	}
}
