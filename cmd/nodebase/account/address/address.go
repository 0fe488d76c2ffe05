package address

import (
	"fmt"

	"github.com/nodebase/nodebase/cmd/nodebase/account/pkg/useraccount"
	"github.com/urfave/cli/v2"
)

func Address() *cli.Command {
	return &cli.Command{
		Name:  "address",
		Usage: "Print the address of the wallet",
		Action: func(c *cli.Context) error {
			userAccount, err := useraccount.Load()
			if err != nil {
				return fmt.Errorf("failed to load user account: %w", err)
			}
			fmt.Println(userAccount.Address.Hex())
			return nil
		},
	}
}
