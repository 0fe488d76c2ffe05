package activate

import (
	"fmt"
	"os"
	"os/signal"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/nodebase/nodebase/cmd/nodebase/pkg/settings"
	"github.com/nodebase/nodebase/cmd/nodebase/pkg/submit"
	"github.com/nodebase/nodebase/node-base/agreement"
	"github.com/nodebase/nodebase/node-base/nodeops"
	"github.com/nodebase/nodebase/node-base/nodetx"
	"github.com/urfave/cli/v2"
)

func Activate() *cli.Command {
	return &cli.Command{
		Name:  "activate",
		Usage: "Lock a token instance and activate its node",
		Flags: []cli.Flag{
			settings.NodeURLFlag(),
			settings.TokenFlag(),
			&cli.StringFlag{
				Name:     "node-key",
				Usage:    "Address of the node",
				Required: true,
			},
			&cli.StringFlag{
				Name:  "owner",
				Usage: "Owner of the token instance, defaults to the wallet",
			},
			&cli.StringFlag{
				Name:  "lock-authority",
				Usage: "Identity allowed to unlock, defaults to the owner",
			},
			&cli.Uint64Flag{
				Name:  "expires",
				Usage: "Block at which the lock is released, 0 never expires",
			},
			&cli.StringFlag{
				Name:  "operator",
				Usage: "Operator to delegate the node to",
			},
			&cli.Uint64Flag{
				Name:  "fee",
				Usage: "Operator fee in percent",
			},
			&cli.StringFlag{
				Name:  "signature",
				Usage: "Signed operator proposal as printed by node sign",
			},
			&cli.BoolFlag{
				Name:  "unlock",
				Usage: "Release the current lock in the same transaction, to activate with new terms",
			},
		},
		Action: func(c *cli.Context) error {
			ctx, cancel := signal.NotifyContext(c.Context, os.Interrupt)
			defer cancel()

			cfg, err := settings.Load(c)
			if err != nil {
				return err
			}

			params := nodeops.ActivateNodeParams{Expires: c.Uint64("expires")}

			if params.TokenInstanceKey, err = settings.Token(c); err != nil {
				return err
			}
			if params.NodePublicKey, err = settings.Address(c, "node-key"); err != nil {
				return err
			}
			if params.Owner, err = settings.Address(c, "owner"); err != nil {
				return err
			}
			if params.LockAuthority, err = settings.Address(c, "lock-authority"); err != nil {
				return err
			}

			if c.IsSet("operator") {
				operator, err := settings.Address(c, "operator")
				if err != nil {
					return err
				}
				params.OperatorAgreement = &agreement.OperatorAgreement{PublicKey: operator, Fee: c.Uint64("fee")}
			}

			if c.IsSet("signature") {
				params.OperatorSignature, err = hexutil.Decode(c.String("signature"))
				if err != nil {
					return fmt.Errorf("invalid signature: %w", err)
				}
			}

			tx := &nodetx.NodeTransaction{
				Activate: []nodeops.ActivateNodeParams{params},
			}
			if c.Bool("unlock") {
				tx.Unlock = []nodeops.UnlockNodeParams{{TokenInstanceKey: params.TokenInstanceKey}}
			}

			return submit.Submit(ctx, cfg, tx)
		},
	}
}
