package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/reveille-app/reveille/internal/daemon"
	"github.com/reveille-app/reveille/internal/model"
)

func recCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rec",
		Short: "Manage the recording library",
	}
	cmd.AddCommand(recAddCmd(), recListCmd(), recRemoveCmd(), recRenameCmd())
	return cmd
}

func recAddCmd() *cobra.Command {
	var (
		name     string
		duration time.Duration
	)

	cmd := &cobra.Command{
		Use:   "add <file>",
		Short: "Add a recording to the library",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]
			info, err := os.Stat(path)
			if err != nil {
				return err
			}

			req := daemon.AddRecordingRequest{
				Name:     name,
				Path:     path,
				Duration: duration.Milliseconds(),
				FileSize: info.Size(),
			}

			return withClient(func(c *daemon.Client) error {
				var rec model.Recording
				if err := c.DoInto(daemon.OpRecAdd, req, &rec); err != nil {
					return err
				}
				fmt.Printf("added %s (%s)\n", rec.ID, rec.Name)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "display name")
	cmd.Flags().DurationVar(&duration, "duration", 0, "recorded length, e.g. 12s")
	return cmd
}

func recListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List recordings, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withClient(func(c *daemon.Client) error {
				var recs []*model.Recording
				if err := c.DoInto(daemon.OpRecList, nil, &recs); err != nil {
					return err
				}
				for _, r := range recs {
					marker := " "
					if r.IsDefault() {
						marker = "*"
					}
					fmt.Printf("%s %s  %-24s %6.1fs  %d bytes\n",
						marker, r.ID, r.Name, float64(r.Duration)/1000, r.FileSize)
				}
				return nil
			})
		},
	}
}

func recRemoveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rm <recording-id>",
		Short: "Delete a recording and its dependent alarms",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withClient(func(c *daemon.Client) error {
				if _, err := c.Do(daemon.OpRecDelete, daemon.AlarmIDRequest{ID: args[0]}); err != nil {
					return err
				}
				fmt.Println("deleted")
				return nil
			})
		},
	}
}

func recRenameCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rename <recording-id> <name>",
		Short: "Rename a recording",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withClient(func(c *daemon.Client) error {
				req := daemon.RenameRecordingRequest{ID: args[0], Name: args[1]}
				if _, err := c.Do(daemon.OpRecRename, req); err != nil {
					return err
				}
				fmt.Println("renamed")
				return nil
			})
		},
	}
}
