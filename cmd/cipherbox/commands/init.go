package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"cipherbox/internal/box"
)

func initCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Create the identity if needed and print its fingerprint",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withBox(func(b *box.Box) error {
				fp, err := b.LocalFingerprint()
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Identity ready in %s.\nFingerprint: %s\n", b.Dir(), fp)
				return nil
			})
		},
	}
}
