package main

import (
	"log"
	"os"

	"github.com/nodebase/nodebase/cmd/nodebase/account"
	"github.com/nodebase/nodebase/cmd/nodebase/index"
	"github.com/nodebase/nodebase/cmd/nodebase/node"
	"github.com/nodebase/nodebase/cmd/nodebase/pkg/logging"
	"github.com/nodebase/nodebase/cmd/nodebase/pkg/settings"
	"github.com/nodebase/nodebase/cmd/nodebase/state"
	"github.com/urfave/cli/v2"
)

func main() {

	app := &cli.App{
		Name:  "nodebase",
		Usage: "Node delegation for locked token instances",
		Flags: append([]cli.Flag{
			settings.ConfigFlag,
		}, logging.Flags...),
		Before: logging.Setup,
		Commands: []*cli.Command{
			account.Account(),
			node.Node(),
			state.State(),
			index.Index(),
		},
	}

	err := app.Run(os.Args)
	if err != nil {
		log.Fatal(err)
	}
}
