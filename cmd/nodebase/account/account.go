package account

import (
	"github.com/nodebase/nodebase/cmd/nodebase/account/address"
	"github.com/nodebase/nodebase/cmd/nodebase/account/balance"
	"github.com/nodebase/nodebase/cmd/nodebase/account/create"
	"github.com/nodebase/nodebase/cmd/nodebase/account/importkey"
	"github.com/urfave/cli/v2"
)

func Account() *cli.Command {
	return &cli.Command{
		Name:  "account",
		Usage: "Manage the wallet",
		Subcommands: []*cli.Command{
			create.Create(),
			importkey.ImportAccount(),
			address.Address(),
			balance.AccountBalance(),
		},
	}
}
