package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"cipherbox/internal/box"
	"cipherbox/internal/crypto"
)

func sessionCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "session",
		Short: "Work with sessions",
	}
	cmd.AddCommand(
		sessionInitPrekeyCmd(),
		sessionInitMessageCmd(),
		sessionEncryptCmd(),
		sessionDecryptCmd(),
		sessionDeleteCmd(),
		sessionFingerprintCmd(),
	)
	return cmd
}

// init-prekey <id> <bundle>: start a session from a peer's base64 bundle.
func sessionInitPrekeyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init-prekey <id> <bundle>",
		Short: "Start a session from a peer's prekey bundle",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			bundle, err := crypto.FromB64(args[1])
			if err != nil {
				return fmt.Errorf("bundle: %w", err)
			}
			return withBox(func(b *box.Box) error {
				s, err := b.InitSessionFromPreKey(args[0], bundle)
				if err != nil {
					return fmt.Errorf("starting session %q: %w", args[0], err)
				}
				if err := s.Save(); err != nil {
					return err
				}
				return printRemote(cmd, s)
			})
		},
	}
}

// init-message <id> <message>: accept a peer's first message.
func sessionInitMessageCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init-message <id> <message>",
		Short: "Accept a session from a peer's first message and print it",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			msg, err := crypto.FromB64(args[1])
			if err != nil {
				return fmt.Errorf("message: %w", err)
			}
			return withBox(func(b *box.Box) error {
				s, pt, err := b.InitSessionFromMessage(args[0], msg)
				if err != nil {
					return err
				}
				if err := s.Save(); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s\n", pt)
				return nil
			})
		},
	}
}

func sessionEncryptCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "encrypt <id> <plaintext>",
		Short: "Encrypt a message and print it as base64",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withBox(func(b *box.Box) error {
				s, err := b.GetSession(args[0])
				if err != nil {
					return err
				}
				ct, err := s.Encrypt([]byte(args[1]))
				if err != nil {
					return err
				}
				if err := s.Save(); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), crypto.B64(ct))
				return nil
			})
		},
	}
}

func sessionDecryptCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "decrypt <id> <message>",
		Short: "Decrypt a base64 message",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ct, err := crypto.FromB64(args[1])
			if err != nil {
				return fmt.Errorf("message: %w", err)
			}
			return withBox(func(b *box.Box) error {
				s, err := b.GetSession(args[0])
				if err != nil {
					return err
				}
				pt, err := s.Decrypt(ct)
				if err != nil {
					return err
				}
				if err := s.Save(); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s\n", pt)
				return nil
			})
		},
	}
}

func sessionDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Permanently delete a session",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withBox(func(b *box.Box) error {
				return b.DeleteSession(args[0])
			})
		},
	}
}

func sessionFingerprintCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "fingerprint <id>",
		Short: "Print the peer's fingerprint for a session",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withBox(func(b *box.Box) error {
				s, ok, err := b.TryGetSession(args[0])
				if err != nil {
					return err
				}
				if !ok {
					return fmt.Errorf("no session %q", args[0])
				}
				return printRemote(cmd, s)
			})
		},
	}
}

func printRemote(cmd *cobra.Command, s *box.Session) error {
	fp, err := s.RemoteFingerprint()
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Session %s with %s\n", s.ID(), fp)
	return nil
}
