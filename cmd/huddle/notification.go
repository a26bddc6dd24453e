package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

// Notification commands
var notificationCmd = &cobra.Command{
	Use:     "notification",
	Aliases: []string{"notif"},
	Short:   "Manage notifications",
}

var notificationListCmd = &cobra.Command{
	Use:   "list",
	Short: "List notifications visible to you",
	RunE: func(cmd *cobra.Command, args []string) error {
		workspaceID, _ := cmd.Flags().GetString("workspace")
		actor, _ := cmd.Flags().GetString("as")
		notifications, err := apiClient(cmd).ListNotifications(cmd.Context(), workspaceID)
		if err != nil {
			return err
		}
		w := table()
		fmt.Fprintln(w, "ID\tTYPE\tTITLE\tREAD\tCREATED")
		for _, n := range notifications {
			read := " "
			if n.IsReadBy(actor) {
				read = "✓"
			}
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
				n.ID, n.Type, n.Title, read, n.CreatedAt.Format("2006-01-02 15:04"))
		}
		return w.Flush()
	},
}

var notificationReadCmd = &cobra.Command{
	Use:   "read [ID]",
	Short: "Mark a notification (or all with --all) as read",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		workspaceID, _ := cmd.Flags().GetString("workspace")
		all, _ := cmd.Flags().GetBool("all")
		c := apiClient(cmd)
		switch {
		case all:
			if err := c.MarkAllNotificationsRead(cmd.Context(), workspaceID); err != nil {
				return err
			}
			fmt.Println("✓ All notifications marked read")
		case len(args) == 1:
			if err := c.MarkNotificationRead(cmd.Context(), workspaceID, args[0]); err != nil {
				return err
			}
			fmt.Printf("✓ Notification marked read: %s\n", args[0])
		default:
			return fmt.Errorf("pass a notification ID or --all")
		}
		return nil
	},
}

var notificationDeleteCmd = &cobra.Command{
	Use:   "delete [ID]",
	Short: "Delete a notification (or all with --all)",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		workspaceID, _ := cmd.Flags().GetString("workspace")
		all, _ := cmd.Flags().GetBool("all")
		c := apiClient(cmd)
		switch {
		case all:
			if err := c.ClearNotifications(cmd.Context(), workspaceID); err != nil {
				return err
			}
			fmt.Println("✓ All notifications cleared")
		case len(args) == 1:
			if err := c.DeleteNotification(cmd.Context(), workspaceID, args[0]); err != nil {
				return err
			}
			fmt.Printf("✓ Notification deleted: %s\n", args[0])
		default:
			return fmt.Errorf("pass a notification ID or --all")
		}
		return nil
	},
}

// watchCmd tails the workspace change feed
var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Watch a workspace's change feed",
	Long: `Watch blocks on the server's change feed and prints each committed
change as it happens. Useful for debugging sync behavior.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		workspaceID, _ := cmd.Flags().GetString("workspace")
		c := apiClient(cmd)
		fmt.Printf("Watching workspace %s (Ctrl+C to stop)...\n", workspaceID)
		for {
			changes, err := c.PollEvents(cmd.Context(), workspaceID, 30*time.Second)
			if err != nil {
				return err
			}
			for _, event := range changes {
				fmt.Printf("%s  %s %s/%s\n",
					event.Timestamp.Format("15:04:05"), event.Type, event.Collection, event.EntityID)
			}
		}
	},
}

// askCmd sends a natural-language request to the workspace assistant
var askCmd = &cobra.Command{
	Use:   "ask PROMPT",
	Short: "Ask the assistant to carry out workspace operations",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		workspaceID, _ := cmd.Flags().GetString("workspace")
		outcomes, err := apiClient(cmd).Ask(cmd.Context(), workspaceID, args[0])
		if err != nil {
			return err
		}
		for _, outcome := range outcomes {
			if outcome.Error != "" {
				fmt.Printf("✗ %s: %s\n", outcome.Intent.Action, outcome.Error)
			} else {
				fmt.Printf("✓ %s\n", outcome.Summary)
			}
		}
		return nil
	},
}

func init() {
	notificationCmd.PersistentFlags().StringP("workspace", "w", "", "Workspace ID (required)")
	_ = notificationCmd.MarkPersistentFlagRequired("workspace")

	notificationReadCmd.Flags().Bool("all", false, "Apply to every notification")
	notificationDeleteCmd.Flags().Bool("all", false, "Apply to every notification")

	notificationCmd.AddCommand(notificationListCmd)
	notificationCmd.AddCommand(notificationReadCmd)
	notificationCmd.AddCommand(notificationDeleteCmd)

	watchCmd.Flags().StringP("workspace", "w", "", "Workspace ID (required)")
	_ = watchCmd.MarkFlagRequired("workspace")
	rootCmd.AddCommand(watchCmd)

	askCmd.Flags().StringP("workspace", "w", "", "Workspace ID (required)")
	_ = askCmd.MarkFlagRequired("workspace")
	rootCmd.AddCommand(askCmd)
}
