package main

import (
	"fmt"
	"log"
	"os"

	"github.com/spf13/cobra"

	"github.com/blynkgo/client/blynk"
	"github.com/blynkgo/client/internal/logging"
	"github.com/blynkgo/client/store/sqlite"
)

// globalFlags holds the connection parameters shared by every
// subcommand, set as persistent flags on the root command.
type globalFlags struct {
	host       string
	port       int
	configFile string
	email      string
	password   string
	shareToken string
	appName    string
	timeoutSec int
	storePath  string
}

func newGlobalFlags(root *cobra.Command) *globalFlags {
	f := &globalFlags{}
	root.PersistentFlags().StringVar(&f.host, "host", "", "server host (overrides --config/BLYNK_HOST)")
	root.PersistentFlags().IntVar(&f.port, "port", 0, "server port (overrides --config/BLYNK_PORT)")
	root.PersistentFlags().StringVar(&f.configFile, "config", "", "optional YAML config file")
	root.PersistentFlags().StringVar(&f.email, "email", "", "account email")
	root.PersistentFlags().StringVar(&f.password, "password", "", "account password")
	root.PersistentFlags().StringVar(&f.shareToken, "share-token", "", "share token, in place of email/password")
	root.PersistentFlags().StringVar(&f.appName, "app-name", "", "app name sent during login")
	root.PersistentFlags().IntVar(&f.timeoutSec, "timeout", 10, "per-request timeout, seconds")
	root.PersistentFlags().StringVar(&f.storePath, "store", "", "sqlite file to cache decompressed profile/event payloads in (disabled if empty)")
	return f
}

// config builds a blynk.Config from the layered viper config plus any
// flag overrides, mirroring cli/cli.go's own env-var-with-override
// pattern but routed through blynk.LoadConfig instead of os.Getenv.
func (f *globalFlags) config() (blynk.Config, error) {
	cfg, err := blynk.LoadConfig(f.configFile)
	if err != nil {
		return blynk.Config{}, err
	}
	if f.host != "" {
		cfg.Host = f.host
	}
	if f.port != 0 {
		cfg.Port = f.port
	}
	if f.appName != "" {
		cfg.AppName = f.appName
	}
	cfg.Log = logging.New(log.New(os.Stderr, "blynkctl: ", 0))

	if f.storePath != "" {
		st, err := sqlite.Open(f.storePath)
		if err != nil {
			return blynk.Config{}, fmt.Errorf("open store: %w", err)
		}
		cfg.Store = st
	}
	return cfg, nil
}
