package main

import (
	"fmt"

	"github.com/loftlab/huddle/pkg/types"
	"github.com/spf13/cobra"
)

// Project commands
var projectCmd = &cobra.Command{
	Use:   "project",
	Short: "Manage projects",
}

var projectCreateCmd = &cobra.Command{
	Use:   "create TITLE",
	Short: "Create a new project",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		workspaceID, _ := cmd.Flags().GetString("workspace")
		project := &types.Project{Title: args[0]}
		project.Description, _ = cmd.Flags().GetString("description")
		project.AssigneeID, _ = cmd.Flags().GetString("lead")
		project.DueDate, _ = cmd.Flags().GetString("due")
		if status, _ := cmd.Flags().GetString("status"); status != "" {
			project.Status = types.ProjectStatus(status)
		}

		created, err := apiClient(cmd).CreateProject(cmd.Context(), workspaceID, project)
		if err != nil {
			return err
		}
		fmt.Printf("✓ Project created: %s (ID: %s)\n", created.Title, created.ID)
		return nil
	},
}

var projectListCmd = &cobra.Command{
	Use:   "list",
	Short: "List projects in a workspace",
	RunE: func(cmd *cobra.Command, args []string) error {
		workspaceID, _ := cmd.Flags().GetString("workspace")
		projects, err := apiClient(cmd).ListProjects(cmd.Context(), workspaceID)
		if err != nil {
			return err
		}
		w := table()
		fmt.Fprintln(w, "ID\tTITLE\tSTATUS\tLEAD\tDUE")
		for _, project := range projects {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
				project.ID, project.Title, project.Status, project.AssigneeID, project.DueDate)
		}
		return w.Flush()
	},
}

var projectUpdateCmd = &cobra.Command{
	Use:   "update ID",
	Short: "Update fields of a project",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		workspaceID, _ := cmd.Flags().GetString("workspace")
		patch := &types.ProjectPatch{}
		if cmd.Flags().Changed("title") {
			title, _ := cmd.Flags().GetString("title")
			patch.Title = &title
		}
		if cmd.Flags().Changed("description") {
			description, _ := cmd.Flags().GetString("description")
			patch.Description = &description
		}
		if cmd.Flags().Changed("status") {
			raw, _ := cmd.Flags().GetString("status")
			status := types.ProjectStatus(raw)
			patch.Status = &status
		}
		if cmd.Flags().Changed("lead") {
			lead, _ := cmd.Flags().GetString("lead")
			patch.AssigneeID = &lead
		}
		if cmd.Flags().Changed("due") {
			due, _ := cmd.Flags().GetString("due")
			patch.DueDate = &due
		}
		if patch.Empty() {
			return fmt.Errorf("nothing to update: pass at least one field flag")
		}

		updated, err := apiClient(cmd).UpdateProject(cmd.Context(), workspaceID, args[0], patch)
		if err != nil {
			return err
		}
		fmt.Printf("✓ Project updated: %s (status=%s)\n", updated.Title, updated.Status)
		return nil
	},
}

var projectDeleteCmd = &cobra.Command{
	Use:   "delete ID",
	Short: "Delete a project",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		workspaceID, _ := cmd.Flags().GetString("workspace")
		if err := apiClient(cmd).DeleteProject(cmd.Context(), workspaceID, args[0]); err != nil {
			return err
		}
		fmt.Printf("✓ Project deleted: %s\n", args[0])
		return nil
	},
}

func init() {
	projectCmd.PersistentFlags().StringP("workspace", "w", "", "Workspace ID (required)")
	_ = projectCmd.MarkPersistentFlagRequired("workspace")

	projectCreateCmd.Flags().String("description", "", "Project description")
	projectCreateCmd.Flags().String("lead", "", "Project lead user ID")
	projectCreateCmd.Flags().String("status", "", "Initial status (default planning)")
	projectCreateCmd.Flags().String("due", "", "Due date (YYYY-MM-DD)")

	projectUpdateCmd.Flags().String("title", "", "New title")
	projectUpdateCmd.Flags().String("description", "", "New description")
	projectUpdateCmd.Flags().String("status", "", "New status")
	projectUpdateCmd.Flags().String("lead", "", "New project lead user ID")
	projectUpdateCmd.Flags().String("due", "", "New due date (YYYY-MM-DD)")

	projectCmd.AddCommand(projectCreateCmd)
	projectCmd.AddCommand(projectListCmd)
	projectCmd.AddCommand(projectUpdateCmd)
	projectCmd.AddCommand(projectDeleteCmd)
}
