package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/reveille-app/reveille/internal/daemon"
	"github.com/reveille-app/reveille/internal/model"
)

func saveCmd() *cobra.Command {
	var (
		id        string
		hour      int
		minute    int
		ampm      string
		days      string
		recording string
		audioURI  string
		disabled  bool
	)

	cmd := &cobra.Command{
		Use:   "save",
		Short: "Create or replace an alarm",
		Long:  "Create an alarm, or replace one by passing --id. Days default to every day.",
		RunE: func(cmd *cobra.Command, args []string) error {
			req := daemon.SaveAlarmRequest{
				ID:       id,
				Hour:     hour,
				Minute:   minute,
				AmPm:     strings.ToUpper(ampm),
				Days:     splitDays(days),
				Enabled:  !disabled,
				AudioURI: audioURI,
			}
			if recording != "" {
				req.RecordingID = &recording
			}

			return withClient(func(c *daemon.Client) error {
				var resp daemon.SaveAlarmResponse
				if err := c.DoInto(daemon.OpAlarmSave, req, &resp); err != nil {
					return err
				}
				fmt.Printf("saved %s (%s, %s)\n", resp.Alarm.ID, resp.Alarm.TimeLabel(), strings.Join(resp.Alarm.Days, ","))
				if resp.Degraded {
					fmt.Println("warning: saved but not fully scheduled; check permissions")
				}
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&id, "id", "", "alarm id to replace")
	cmd.Flags().IntVar(&hour, "hour", 7, "hour on the 12-hour clock (1-12)")
	cmd.Flags().IntVar(&minute, "minute", 0, "minute (0-59)")
	cmd.Flags().StringVar(&ampm, "ampm", "AM", "AM or PM")
	cmd.Flags().StringVar(&days, "days", "", "comma-separated weekdays (sun..sat), empty for every day")
	cmd.Flags().StringVar(&recording, "recording", "", "recording id to play")
	cmd.Flags().StringVar(&audioURI, "audio", "", "audio file to play, overrides --recording")
	cmd.Flags().BoolVar(&disabled, "disabled", false, "save without arming")
	return cmd
}

func listCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List alarms ordered by time of day",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withClient(func(c *daemon.Client) error {
				var alarms []*model.Alarm
				if err := c.DoInto(daemon.OpAlarmList, nil, &alarms); err != nil {
					return err
				}
				if len(alarms) == 0 {
					fmt.Println("no alarms")
					return nil
				}
				for _, a := range alarms {
					state := "off"
					if a.Enabled {
						state = "on"
					}
					fmt.Printf("%s  %-8s %-3s %s\n", a.ID, a.TimeLabel(), state, strings.Join(a.Days, ","))
				}
				return nil
			})
		},
	}
}

func toggleCmd() *cobra.Command {
	var off bool

	cmd := &cobra.Command{
		Use:   "toggle <alarm-id>",
		Short: "Enable or disable an alarm",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withClient(func(c *daemon.Client) error {
				var resp daemon.SaveAlarmResponse
				req := daemon.ToggleRequest{ID: args[0], Enabled: !off}
				if err := c.DoInto(daemon.OpAlarmToggle, req, &resp); err != nil {
					return err
				}
				if resp.Alarm.Enabled {
					fmt.Printf("enabled, %d triggers armed\n", len(resp.Armed))
				} else {
					fmt.Println("disabled")
				}
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&off, "off", false, "disable instead of enable")
	return cmd
}

func deleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <alarm-id>",
		Short: "Delete an alarm and its triggers",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withClient(func(c *daemon.Client) error {
				if _, err := c.Do(daemon.OpAlarmDelete, daemon.AlarmIDRequest{ID: args[0]}); err != nil {
					return err
				}
				fmt.Println("deleted")
				return nil
			})
		},
	}
}

func previewCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "preview <alarm-id>",
		Short: "Play an alarm's sound now",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withClient(func(c *daemon.Client) error {
				if _, err := c.Do(daemon.OpAlarmPreview, daemon.AlarmIDRequest{ID: args[0]}); err != nil {
					return err
				}
				fmt.Println("previewing; use 'revctl stop' to silence")
				return nil
			})
		},
	}
}

func stateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "state <alarm-id>",
		Short: "Show an alarm's lifecycle state",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withClient(func(c *daemon.Client) error {
				var resp daemon.StateResponse
				if err := c.DoInto(daemon.OpAlarmState, daemon.AlarmIDRequest{ID: args[0]}, &resp); err != nil {
					return err
				}
				fmt.Println(resp.State)
				return nil
			})
		},
	}
}

func stopCmd() *cobra.Command {
	return actionCmd("stop", "Stop the ringing alarm", model.ActionStop)
}

func snoozeCmd() *cobra.Command {
	return actionCmd("snooze", "Snooze the ringing alarm", model.ActionSnooze)
}

func actionCmd(use, short string, typ model.ActionType) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <alarm-id>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withClient(func(c *daemon.Client) error {
				var resp daemon.ActionResponse
				action := model.Action{Type: typ, AlarmID: args[0]}
				if err := c.DoInto(daemon.OpAction, action, &resp); err != nil {
					return err
				}
				if resp.Handled {
					fmt.Println("ok")
				} else {
					fmt.Println("alarm was not ringing")
				}
				return nil
			})
		},
	}
}
