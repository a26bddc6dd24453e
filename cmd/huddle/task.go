package main

import (
	"fmt"
	"strings"

	"github.com/loftlab/huddle/pkg/types"
	"github.com/spf13/cobra"
)

// Task commands
var taskCmd = &cobra.Command{
	Use:   "task",
	Short: "Manage tasks",
}

var taskCreateCmd = &cobra.Command{
	Use:   "create TITLE",
	Short: "Create a new task",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		workspaceID, _ := cmd.Flags().GetString("workspace")
		task := &types.Task{Title: args[0]}
		task.Description, _ = cmd.Flags().GetString("description")
		task.ProjectID, _ = cmd.Flags().GetString("project")
		task.DueDate, _ = cmd.Flags().GetString("due")
		if status, _ := cmd.Flags().GetString("status"); status != "" {
			task.Status = types.TaskStatus(status)
		}
		if priority, _ := cmd.Flags().GetString("priority"); priority != "" {
			task.Priority = types.Priority(priority)
		}
		if assignees, _ := cmd.Flags().GetStringSlice("assignee"); len(assignees) > 0 {
			task.AssigneeIDs = assignees
		}

		created, err := apiClient(cmd).CreateTask(cmd.Context(), workspaceID, task)
		if err != nil {
			return err
		}
		fmt.Printf("✓ Task created: %s (ID: %s)\n", created.Title, created.ID)
		return nil
	},
}

var taskListCmd = &cobra.Command{
	Use:   "list",
	Short: "List tasks in a workspace",
	RunE: func(cmd *cobra.Command, args []string) error {
		workspaceID, _ := cmd.Flags().GetString("workspace")
		tasks, err := apiClient(cmd).ListTasks(cmd.Context(), workspaceID)
		if err != nil {
			return err
		}
		w := table()
		fmt.Fprintln(w, "ID\tTITLE\tSTATUS\tPRIORITY\tDUE\tASSIGNEES")
		for _, task := range tasks {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
				task.ID, task.Title, task.Status, task.Priority,
				task.DueDate, strings.Join(task.AssigneeIDs, ","))
		}
		return w.Flush()
	},
}

var taskUpdateCmd = &cobra.Command{
	Use:   "update ID",
	Short: "Update fields of a task",
	Long: `Update a task. Only the flags you pass are sent; everything else is
left untouched. Pass --assignee "" to clear all assignees.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		workspaceID, _ := cmd.Flags().GetString("workspace")
		patch := &types.TaskPatch{}
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
			status := types.TaskStatus(raw)
			patch.Status = &status
		}
		if cmd.Flags().Changed("priority") {
			raw, _ := cmd.Flags().GetString("priority")
			priority := types.Priority(raw)
			patch.Priority = &priority
		}
		if cmd.Flags().Changed("due") {
			due, _ := cmd.Flags().GetString("due")
			patch.DueDate = &due
		}
		if cmd.Flags().Changed("project") {
			project, _ := cmd.Flags().GetString("project")
			patch.ProjectID = &project
		}
		if cmd.Flags().Changed("assignee") {
			assignees, _ := cmd.Flags().GetStringSlice("assignee")
			if len(assignees) == 1 && assignees[0] == "" {
				assignees = []string{}
			}
			patch.AssigneeIDs = &assignees
		}
		if patch.Empty() {
			return fmt.Errorf("nothing to update: pass at least one field flag")
		}

		updated, err := apiClient(cmd).UpdateTask(cmd.Context(), workspaceID, args[0], patch)
		if err != nil {
			return err
		}
		fmt.Printf("✓ Task updated: %s (status=%s)\n", updated.Title, updated.Status)
		return nil
	},
}

var taskDeleteCmd = &cobra.Command{
	Use:   "delete ID",
	Short: "Delete a task",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		workspaceID, _ := cmd.Flags().GetString("workspace")
		if err := apiClient(cmd).DeleteTask(cmd.Context(), workspaceID, args[0]); err != nil {
			return err
		}
		fmt.Printf("✓ Task deleted: %s\n", args[0])
		return nil
	},
}

func init() {
	taskCmd.PersistentFlags().StringP("workspace", "w", "", "Workspace ID (required)")
	_ = taskCmd.MarkPersistentFlagRequired("workspace")

	taskCreateCmd.Flags().String("description", "", "Task description")
	taskCreateCmd.Flags().String("project", "", "Project ID")
	taskCreateCmd.Flags().String("status", "", "Initial status (default todo)")
	taskCreateCmd.Flags().String("priority", "", "Priority (low|medium|high|urgent)")
	taskCreateCmd.Flags().String("due", "", "Due date (YYYY-MM-DD)")
	taskCreateCmd.Flags().StringSlice("assignee", nil, "Assignee user ID (repeatable)")

	taskUpdateCmd.Flags().String("title", "", "New title")
	taskUpdateCmd.Flags().String("description", "", "New description")
	taskUpdateCmd.Flags().String("project", "", "New project ID")
	taskUpdateCmd.Flags().String("status", "", "New status")
	taskUpdateCmd.Flags().String("priority", "", "New priority")
	taskUpdateCmd.Flags().String("due", "", "New due date (YYYY-MM-DD)")
	taskUpdateCmd.Flags().StringSlice("assignee", nil, "Replacement assignee list")

	taskCmd.AddCommand(taskCreateCmd)
	taskCmd.AddCommand(taskListCmd)
	taskCmd.AddCommand(taskUpdateCmd)
	taskCmd.AddCommand(taskDeleteCmd)
}
