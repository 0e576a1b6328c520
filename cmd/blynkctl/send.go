package main

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/blynkgo/client/action"
)

// buildAction maps a subcommand-friendly name and its positional args
// onto one of the concrete action.Action implementations. Only the
// handful a terminal user would plausibly want to poke at directly are
// supported; anything else belongs behind the library's Go API.
func buildAction(name string, args []string) (action.Action, error) {
	switch name {
	case "ping":
		return action.Ping{}, nil

	case "activate-dashboard":
		id, err := requireInt(args, 0, "dashboard id")
		if err != nil {
			return nil, err
		}
		return action.ActivateDashboard{DashID: id}, nil

	case "deactivate-dashboard":
		id, err := requireInt(args, 0, "dashboard id")
		if err != nil {
			return nil, err
		}
		return action.DeactivateDashboard{DashID: id}, nil

	case "hardware":
		if len(args) < 3 {
			return nil, fmt.Errorf("hardware needs: <dashId> <deviceId> <pin-command...>")
		}
		dashID, err := strconv.Atoi(args[0])
		if err != nil {
			return nil, fmt.Errorf("dashboard id: %w", err)
		}
		deviceID, err := strconv.Atoi(args[1])
		if err != nil {
			return nil, fmt.Errorf("device id: %w", err)
		}
		return action.Hardware{DashID: dashID, DeviceID: deviceID, Command: strings.Join(args[2:], " ")}, nil

	default:
		return nil, fmt.Errorf("unknown action %q (ping, activate-dashboard, deactivate-dashboard, hardware)", name)
	}
}

func requireInt(args []string, idx int, label string) (int, error) {
	if idx >= len(args) {
		return 0, fmt.Errorf("missing %s", label)
	}
	n, err := strconv.Atoi(args[idx])
	if err != nil {
		return 0, fmt.Errorf("%s: %w", label, err)
	}
	return n, nil
}

func sendCmd(f *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "send <action> [args...]",
		Short: "Connect, send one action, print the reply, disconnect",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := buildAction(args[0], args[1:])
			if err != nil {
				return err
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), time.Duration(f.timeoutSec)*time.Second)
			defer cancel()

			conn, _, err := login(ctx, f)
			if err != nil {
				return err
			}
			defer conn.Disconnect()

			sendCtx, sendCancel := context.WithTimeout(cmd.Context(), time.Duration(f.timeoutSec)*time.Second)
			defer sendCancel()

			ev, err := conn.Send(sendCtx, a)
			if err != nil {
				return fmt.Errorf("send: %w", err)
			}
			fmt.Printf("%#v\n", ev)
			return nil
		},
	}
}
