package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"cipherbox/internal/box"
	"cipherbox/internal/crypto"
	"cipherbox/internal/sealed"
)

// exportCmd writes the identity as base64, or as an age armored file when
// recipients are given.
func exportCmd() *cobra.Command {
	var recipients []string
	var out string
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export the identity for safekeeping",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withBox(func(b *box.Box) error {
				raw, err := b.ExportIdentity()
				if err != nil {
					return err
				}
				var data []byte
				if len(recipients) > 0 {
					if data, err = sealed.Encrypt(raw, recipients); err != nil {
						return err
					}
				} else {
					data = []byte(crypto.B64(raw) + "\n")
				}
				if out == "" {
					_, err = cmd.OutOrStdout().Write(data)
					return err
				}
				if err := os.WriteFile(out, data, 0o600); err != nil {
					return err
				}
				fmt.Fprintf(cmd.ErrOrStderr(), "identity written to %s\n", out)
				return nil
			})
		},
	}
	cmd.Flags().StringArrayVar(&recipients, "recipient", nil, "age recipient (age1...) to seal the export to; repeatable")
	cmd.Flags().StringVarP(&out, "out", "o", "", "write to file instead of stdout")
	return cmd
}

func openWithCmd() *cobra.Command {
	var identityPath, ageIdentityPath, mode string
	cmd := &cobra.Command{
		Use:   "open-with",
		Short: "Open the box with an exported identity",
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(identityPath)
			if err != nil {
				return err
			}
			var raw []byte
			if ageIdentityPath != "" {
				keys, err := os.ReadFile(ageIdentityPath)
				if err != nil {
					return err
				}
				if raw, err = sealed.Decrypt(data, keys); err != nil {
					return err
				}
			} else if raw, err = crypto.FromB64(string(data)); err != nil {
				return fmt.Errorf("identity file is not base64: %w", err)
			}

			if mode != "" {
				wire.Config.Identity.Mode = mode
			}
			b, err := wire.OpenWith(raw)
			if err != nil {
				return err
			}
			defer func() { _ = b.Close() }()

			fp, err := b.LocalFingerprint()
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Opened %s as %s (mode %s)\n", b.Dir(), fp, wire.Config.Identity.Mode)
			return nil
		},
	}
	cmd.Flags().StringVar(&identityPath, "identity", "", "exported identity file")
	cmd.Flags().StringVar(&ageIdentityPath, "age-identity", "", "age identity file to unseal the export with")
	cmd.Flags().StringVar(&mode, "mode", "", "complete or public (default from config)")
	_ = cmd.MarkFlagRequired("identity")
	return cmd
}
