package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/blynkgo/client/blynk"
)

// login dispatches to Connect or ConnectWithShareToken depending on
// which credential flag was supplied, and reports the resolved Config
// alongside the connected Connector.
func login(ctx context.Context, f *globalFlags) (*blynk.Connector, blynk.Config, error) {
	cfg, err := f.config()
	if err != nil {
		return nil, blynk.Config{}, err
	}
	conn := blynk.New(cfg, nil)

	var loginErr error
	if f.shareToken != "" {
		loginErr = conn.ConnectWithShareToken(ctx, f.shareToken, cfg.AppName)
	} else {
		loginErr = conn.Connect(ctx, f.email, f.password, cfg.AppName)
	}
	if loginErr != nil {
		return nil, blynk.Config{}, fmt.Errorf("connect: %w", loginErr)
	}
	return conn, cfg, nil
}

func connectCmd(f *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "connect",
		Short: "Dial the server, log in, and report success",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), time.Duration(f.timeoutSec)*time.Second)
			defer cancel()

			conn, cfg, err := login(ctx, f)
			if err != nil {
				return err
			}
			defer conn.Disconnect()

			fmt.Printf("connected to %s:%d, state=%s\n", cfg.Host, cfg.Port, conn.State())
			return nil
		},
	}
}
