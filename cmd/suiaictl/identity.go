package main

import (
	"encoding/base64"
	"fmt"

	"SuiAI-SDK/sdk/go/suiai"

	"github.com/cosmos/go-bip39"
	"github.com/spf13/cobra"
)

func newIdentityCmd(flags *rootFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "identity",
		Short: "Inspect or create signing identities",
	}

	var exportSecret bool
	show := &cobra.Command{
		Use:   "show",
		Short: "Show the address of the configured identity",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(flags)
			if err != nil {
				return err
			}
			id, err := identityFromEnv(cfg.Identity)
			if err != nil {
				return err
			}
			if id == nil {
				return fmt.Errorf("%w: set %s or %s", suiai.ErrMissingIdentity, cfg.Identity.MnemonicEnv, cfg.Identity.SecretKeyEnv)
			}
			out := map[string]string{
				"address":    id.Address().String(),
				"public_key": base64.StdEncoding.EncodeToString(id.PublicKey()),
			}
			if exportSecret {
				out["secret_key"] = id.ExportSecretKey()
			}
			if flags.jsonOutput {
				return printJSON(out)
			}
			printField("Address", out["address"])
			printField("Public key", out["public_key"])
			if exportSecret {
				warnColor.Println("Keep the secret key private.")
				printField("Secret key", out["secret_key"])
			}
			return nil
		},
	}
	show.Flags().BoolVar(&exportSecret, "export-secret", false, "also print the base64 secret key")

	var words int
	create := &cobra.Command{
		Use:   "new",
		Short: "Generate a new mnemonic and print its address",
		RunE: func(cmd *cobra.Command, args []string) error {
			bits, ok := map[int]int{12: 128, 15: 160, 18: 192, 21: 224, 24: 256}[words]
			if !ok {
				return fmt.Errorf("不支持的助记词长度 %d", words)
			}
			entropy, err := bip39.NewEntropy(bits)
			if err != nil {
				return err
			}
			phrase, err := bip39.NewMnemonic(entropy)
			if err != nil {
				return err
			}
			id, err := suiai.IdentityFromMnemonic(phrase)
			if err != nil {
				return err
			}
			if flags.jsonOutput {
				return printJSON(map[string]string{"mnemonic": phrase, "address": id.Address().String()})
			}
			warnColor.Println("Write the mnemonic down; it cannot be recovered.")
			printField("Mnemonic", phrase)
			printField("Address", id.Address())
			return nil
		},
	}
	create.Flags().IntVar(&words, "words", 12, "mnemonic length: 12, 15, 18, 21 or 24")

	cmd.AddCommand(show, create)
	return cmd
}
