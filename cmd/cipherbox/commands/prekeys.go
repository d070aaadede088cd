package commands

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"cipherbox/internal/box"
	"cipherbox/internal/crypto"
	"cipherbox/internal/domain"
)

// prekeysCmd prints one "<id> <base64 bundle>" line per generated prekey.
func prekeysCmd() *cobra.Command {
	var start, count int
	cmd := &cobra.Command{
		Use:   "prekeys",
		Short: "Generate prekeys and print their bundles",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withBox(func(b *box.Box) error {
				pks, err := b.NewPreKeys(start, count)
				printPreKeys(cmd.OutOrStdout(), pks)
				if err != nil {
					return fmt.Errorf("generated %d of %d prekeys: %w", len(pks), count, err)
				}
				return nil
			})
		},
	}
	cmd.Flags().IntVar(&start, "start", 0, "first prekey id")
	cmd.Flags().IntVar(&count, "count", 1, "number of prekeys")
	return cmd
}

func lastPrekeyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "last-prekey",
		Short: "Generate the last resort prekey and print its bundle",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withBox(func(b *box.Box) error {
				pk, err := b.NewLastPreKey()
				if err != nil {
					return err
				}
				printPreKeys(cmd.OutOrStdout(), []domain.PreKey{pk})
				return nil
			})
		},
	}
}

func printPreKeys(w io.Writer, pks []domain.PreKey) {
	for _, pk := range pks {
		fmt.Fprintf(w, "%d %s\n", pk.ID, crypto.B64(pk.Data))
	}
}
