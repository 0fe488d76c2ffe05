package sign

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/nodebase/nodebase/cmd/nodebase/account/pkg/useraccount"
	"github.com/nodebase/nodebase/cmd/nodebase/pkg/settings"
	"github.com/nodebase/nodebase/node-base/agreement"
	"github.com/nodebase/nodebase/node-base/nodeops"
	"github.com/urfave/cli/v2"
)

// Sign is run by the operator. The printed blob is handed to the owner, who
// passes it to activate with the same terms.
func Sign() *cli.Command {
	return &cli.Command{
		Name:  "sign",
		Usage: "Sign an operator proposal with the wallet as operator",
		Flags: []cli.Flag{
			settings.TokenFlag(),
			&cli.StringFlag{
				Name:     "node-key",
				Usage:    "Address of the node",
				Required: true,
			},
			&cli.Uint64Flag{
				Name:  "fee",
				Usage: "Operator fee in percent",
			},
		},
		Action: func(c *cli.Context) error {
			cfg, err := settings.Load(c)
			if err != nil {
				return err
			}

			key, err := settings.Token(c)
			if err != nil {
				return err
			}

			nodeKey, err := settings.Address(c, "node-key")
			if err != nil {
				return err
			}

			userAccount, err := useraccount.Load()
			if err != nil {
				return fmt.Errorf("failed to load user account: %w", err)
			}

			oa := &agreement.OperatorAgreement{PublicKey: userAccount.Address, Fee: c.Uint64("fee")}
			if err := oa.Validate(cfg.MaxFeePercent); err != nil {
				return err
			}

			proposal, err := nodeops.SignNodeAgreement(nodeops.SignNodeAgreementParams{
				TokenInstanceKey:  key,
				NodePublicKey:     nodeKey,
				OperatorAgreement: oa,
			})
			if err != nil {
				return err
			}

			signed, err := agreement.Sign(*proposal, userAccount.PrivateKey)
			if err != nil {
				return fmt.Errorf("failed to sign proposal: %w", err)
			}

			blob, err := signed.Encode()
			if err != nil {
				return fmt.Errorf("failed to encode proposal: %w", err)
			}

			hash, err := proposal.SigningHash()
			if err != nil {
				return err
			}

			fmt.Println("Operator:", userAccount.Address.Hex())
			fmt.Println("Signing hash:", hash.Hex())
			fmt.Println(hexutil.Encode(blob))

			return nil
		},
	}
}
