package main

import (
	"fmt"

	"github.com/loftlab/huddle/pkg/types"
	"github.com/spf13/cobra"
)

// Member commands
var memberCmd = &cobra.Command{
	Use:   "member",
	Short: "Manage workspace members",
}

var memberListCmd = &cobra.Command{
	Use:   "list",
	Short: "List members of a workspace",
	RunE: func(cmd *cobra.Command, args []string) error {
		workspaceID, _ := cmd.Flags().GetString("workspace")
		members, err := apiClient(cmd).ListMembers(cmd.Context(), workspaceID)
		if err != nil {
			return err
		}
		w := table()
		fmt.Fprintln(w, "USER ID\tNAME\tEMAIL\tROLE\tSTATUS")
		for _, member := range members {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
				member.UserID, member.Name, member.Email, member.Role, member.Status)
		}
		return w.Flush()
	},
}

var memberAddCmd = &cobra.Command{
	Use:   "add USER_ID",
	Short: "Add or update a workspace member",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		workspaceID, _ := cmd.Flags().GetString("workspace")
		member := &types.Member{
			UserID:      args[0],
			WorkspaceID: workspaceID,
		}
		member.Name, _ = cmd.Flags().GetString("name")
		member.Email, _ = cmd.Flags().GetString("email")
		member.ChatID, _ = cmd.Flags().GetString("chat-id")
		if role, _ := cmd.Flags().GetString("role"); role != "" {
			member.Role = types.MemberRole(role)
		}

		saved, err := apiClient(cmd).PutMember(cmd.Context(), member)
		if err != nil {
			return err
		}
		fmt.Printf("✓ Member saved: %s (role=%s)\n", saved.UserID, saved.Role)
		return nil
	},
}

var memberRemoveCmd = &cobra.Command{
	Use:   "remove USER_ID",
	Short: "Remove a member from a workspace",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		workspaceID, _ := cmd.Flags().GetString("workspace")
		if err := apiClient(cmd).DeleteMember(cmd.Context(), workspaceID, args[0]); err != nil {
			return err
		}
		fmt.Printf("✓ Member removed: %s\n", args[0])
		return nil
	},
}

func init() {
	memberCmd.PersistentFlags().StringP("workspace", "w", "", "Workspace ID (required)")
	_ = memberCmd.MarkPersistentFlagRequired("workspace")

	memberAddCmd.Flags().String("name", "", "Display name")
	memberAddCmd.Flags().String("email", "", "Email address")
	memberAddCmd.Flags().String("role", "", "Role (OWNER|ADMIN|MEMBER|GUEST)")
	memberAddCmd.Flags().String("chat-id", "", "Chat channel address for notifications")

	memberCmd.AddCommand(memberListCmd)
	memberCmd.AddCommand(memberAddCmd)
	memberCmd.AddCommand(memberRemoveCmd)
}
