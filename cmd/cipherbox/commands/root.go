package commands

import (
	"github.com/spf13/cobra"

	"cipherbox/internal/app"
	"cipherbox/internal/box"
)

var (
	home       string
	configPath string
	logLevel   string
	backend    string
	passphrase string

	wire *app.Wire
)

func Execute() error {
	return newRootCmd().Execute()
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "cipherbox",
		Short:         "Manage an encrypted session box",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			overrides := map[string]any{}
			if home != "" {
				overrides["home"] = home
			}
			if logLevel != "" {
				overrides["log.level"] = logLevel
			}
			if backend != "" {
				overrides["storage.backend"] = backend
			}
			if passphrase != "" {
				overrides["identity.passphrase"] = passphrase
			}
			cfg, err := app.Load(configPath, overrides)
			if err != nil {
				return err
			}
			wire, err = app.NewWire(cfg)
			return err
		},
	}

	root.PersistentFlags().StringVar(&home, "home", "", "box directory (default ~/.cipherbox)")
	root.PersistentFlags().StringVar(&configPath, "config", "", "YAML config file")
	root.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (debug, info, warning, error)")
	root.PersistentFlags().StringVar(&backend, "backend", "", "storage backend (file, badger)")
	root.PersistentFlags().StringVarP(&passphrase, "passphrase", "p", "", "passphrase sealing the identity at rest")

	root.AddCommand(
		initCmd(),
		fingerprintCmd(),
		prekeysCmd(),
		lastPrekeyCmd(),
		exportCmd(),
		openWithCmd(),
		sessionCmd(),
	)
	return root
}

// withBox opens the configured box, runs fn and closes the box.
func withBox(fn func(b *box.Box) error) (err error) {
	b, err := wire.Open()
	if err != nil {
		return err
	}
	defer func() {
		if cerr := b.Close(); err == nil {
			err = cerr
		}
	}()
	return fn(b)
}
