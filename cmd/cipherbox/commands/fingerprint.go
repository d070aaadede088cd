package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"cipherbox/internal/box"
)

func fingerprintCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "fingerprint",
		Short: "Print identity fingerprint",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withBox(func(b *box.Box) error {
				fp, err := b.LocalFingerprint()
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Fingerprint: %s\n", fp)
				return nil
			})
		},
	}
	return cmd
}
