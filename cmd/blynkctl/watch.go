package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
)

// watchCmd connects and streams domain events to stdout until
// interrupted, the cobra-shaped counterpart of cli/cli.go's
// signal.NotifyContext(... os.Interrupt, syscall.SIGTERM) shutdown.
func watchCmd(f *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Connect and print domain events until interrupted",
		RunE: func(cmd *cobra.Command, args []string) error {
			loginCtx, loginCancel := context.WithTimeout(cmd.Context(), time.Duration(f.timeoutSec)*time.Second)
			defer loginCancel()

			conn, cfg, err := login(loginCtx, f)
			if err != nil {
				return err
			}
			defer conn.Disconnect()

			sub := conn.Subscribe()
			defer sub.Close()

			fmt.Printf("watching %s:%d, Ctrl-C to stop\n", cfg.Host, cfg.Port)

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			for {
				select {
				case <-ctx.Done():
					return nil
				case ev, ok := <-sub.Events():
					if !ok {
						return nil
					}
					fmt.Printf("%#v\n", ev)
				}
			}
		},
	}
}
