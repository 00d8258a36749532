// revctl is the control client for the reveilled daemon. Every command is a
// thin wrapper over one socket operation; all state lives in the daemon.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/reveille-app/reveille/internal/daemon"
	"github.com/reveille-app/reveille/internal/model"
)

var socketPath string

func main() {
	root := &cobra.Command{
		Use:           "revctl",
		Short:         "Control the reveille alarm daemon",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	defaultSocket := os.Getenv("SOCKET_PATH")
	if defaultSocket == "" {
		defaultSocket = filepath.Join("data", "reveilled.sock")
	}
	root.PersistentFlags().StringVar(&socketPath, "socket", defaultSocket, "path to the daemon socket")

	root.AddCommand(
		saveCmd(),
		listCmd(),
		toggleCmd(),
		deleteCmd(),
		previewCmd(),
		stateCmd(),
		stopCmd(),
		snoozeCmd(),
		recCmd(),
		statsCmd(),
		permissionsCmd(),
		migrateCmd(),
		pingCmd(),
	)

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

// withClient dials the daemon for the duration of one command.
func withClient(fn func(c *daemon.Client) error) error {
	c, err := daemon.Dial(socketPath)
	if err != nil {
		return err
	}
	defer c.Close()
	return fn(c)
}

func pingCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "ping",
		Short: "Check that the daemon is up",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withClient(func(c *daemon.Client) error {
				var pong string
				if err := c.DoInto(daemon.OpPing, nil, &pong); err != nil {
					return err
				}
				fmt.Println(pong)
				return nil
			})
		},
	}
}

func statsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show recording usage and armed triggers",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withClient(func(c *daemon.Client) error {
				var stats daemon.StatsResponse
				if err := c.DoInto(daemon.OpStats, nil, &stats); err != nil {
					return err
				}
				fmt.Printf("recordings: %d (%d bytes)\n", stats.Recordings.Count, stats.Recordings.TotalBytes)
				fmt.Printf("armed triggers: %d\n", len(stats.Armed))
				for _, id := range stats.Armed {
					fmt.Println("  " + id)
				}
				if stats.Ringing != "" {
					fmt.Println("ringing:", stats.Ringing)
				}
				return nil
			})
		},
	}
}

func permissionsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "permissions",
		Short: "Show the capabilities affecting alarm reliability",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withClient(func(c *daemon.Client) error {
				var perms model.PermissionStatus
				if err := c.DoInto(daemon.OpPermissions, nil, &perms); err != nil {
					return err
				}
				fmt.Println("exact alarms:  ", yesno(perms.ExactAlarm))
				fmt.Println("battery:       ", yesno(perms.BatteryUnrestricted))
				fmt.Println("notifications: ", yesno(perms.NotificationsEnabled))
				if !perms.AllGranted() {
					fmt.Println("warning: alarms may be delayed or silent")
				}
				return nil
			})
		},
	}
}

func migrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Legacy store migration",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "status",
		Short: "Show the one-time migration status",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withClient(func(c *daemon.Client) error {
				var resp daemon.MigrateStatusResponse
				if err := c.DoInto(daemon.OpMigrateStatus, nil, &resp); err != nil {
					return err
				}
				s := resp.Status
				switch {
				case s.Completed:
					fmt.Printf("completed: %d recordings, %d alarms\n", s.MigratedRecordings, s.MigratedAlarms)
				case s.Failed:
					fmt.Println("failed:", s.Error)
				default:
					fmt.Println("not run")
				}
				return nil
			})
		},
	})
	return cmd
}

func yesno(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

func splitDays(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.ToLower(strings.TrimSpace(p))
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
