package main

import (
	"fmt"

	"github.com/loftlab/huddle/pkg/types"
	"github.com/spf13/cobra"
)

// Invite commands
var inviteCmd = &cobra.Command{
	Use:   "invite",
	Short: "Manage workspace invitations",
}

var inviteCreateCmd = &cobra.Command{
	Use:   "create EMAIL",
	Short: "Invite someone to a workspace",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		workspaceID, _ := cmd.Flags().GetString("workspace")
		role, _ := cmd.Flags().GetString("role")

		inv, err := apiClient(cmd).CreateInvite(cmd.Context(), workspaceID, args[0], types.MemberRole(role))
		if err != nil {
			return err
		}
		fmt.Printf("✓ Invite created for %s (role=%s)\n", inv.Email, inv.Role)
		fmt.Printf("  Token: %s\n", inv.Token)
		fmt.Printf("  Expires: %s\n", inv.ExpiresAt.Format("2006-01-02 15:04"))
		return nil
	},
}

var inviteListCmd = &cobra.Command{
	Use:   "list",
	Short: "List invitations for a workspace",
	RunE: func(cmd *cobra.Command, args []string) error {
		workspaceID, _ := cmd.Flags().GetString("workspace")
		invites, err := apiClient(cmd).ListInvites(cmd.Context(), workspaceID)
		if err != nil {
			return err
		}
		w := table()
		fmt.Fprintln(w, "TOKEN\tEMAIL\tROLE\tSTATUS\tEXPIRES")
		for _, inv := range invites {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
				inv.Token, inv.Email, inv.Role, inv.EffectiveStatus,
				inv.ExpiresAt.Format("2006-01-02 15:04"))
		}
		return w.Flush()
	},
}

var inviteAcceptCmd = &cobra.Command{
	Use:   "accept TOKEN",
	Short: "Accept an invitation",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		workspaceID, _ := cmd.Flags().GetString("workspace")
		userID, _ := cmd.Flags().GetString("user")
		email, _ := cmd.Flags().GetString("email")
		name, _ := cmd.Flags().GetString("name")

		member, err := apiClient(cmd).AcceptInvite(cmd.Context(), workspaceID, args[0], userID, email, name)
		if err != nil {
			return err
		}
		fmt.Printf("✓ Joined workspace %s as %s (role=%s)\n", workspaceID, member.UserID, member.Role)
		return nil
	},
}

var inviteRevokeCmd = &cobra.Command{
	Use:   "revoke TOKEN",
	Short: "Revoke a pending invitation",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		workspaceID, _ := cmd.Flags().GetString("workspace")
		if err := apiClient(cmd).RevokeInvite(cmd.Context(), workspaceID, args[0]); err != nil {
			return err
		}
		fmt.Printf("✓ Invite revoked: %s\n", args[0])
		return nil
	},
}

func init() {
	inviteCmd.PersistentFlags().StringP("workspace", "w", "", "Workspace ID (required)")
	_ = inviteCmd.MarkPersistentFlagRequired("workspace")

	inviteCreateCmd.Flags().String("role", "MEMBER", "Role granted on acceptance")

	inviteAcceptCmd.Flags().String("user", "", "Accepting user ID (required)")
	inviteAcceptCmd.Flags().String("email", "", "Accepting user email (required)")
	inviteAcceptCmd.Flags().String("name", "", "Accepting user display name")
	_ = inviteAcceptCmd.MarkFlagRequired("user")
	_ = inviteAcceptCmd.MarkFlagRequired("email")

	inviteCmd.AddCommand(inviteCreateCmd)
	inviteCmd.AddCommand(inviteListCmd)
	inviteCmd.AddCommand(inviteAcceptCmd)
	inviteCmd.AddCommand(inviteRevokeCmd)
}
