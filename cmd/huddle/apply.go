package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/loftlab/huddle/pkg/client"
	"github.com/loftlab/huddle/pkg/types"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var applyCmd = &cobra.Command{
	Use:   "apply",
	Short: "Apply a configuration file",
	Long: `Apply huddle resources from a YAML file. The file may contain
multiple documents separated by ---.

Examples:
  # Seed a workspace with projects and tasks
  huddle apply -w ws-123 -f sprint.yaml

  # Send a batch of invites
  huddle apply -w ws-123 -f team.yaml`,
	RunE: runApply,
}

func init() {
	applyCmd.Flags().StringP("file", "f", "", "YAML file to apply (required)")
	applyCmd.Flags().StringP("workspace", "w", "", "Workspace ID (required)")
	_ = applyCmd.MarkFlagRequired("file")
	_ = applyCmd.MarkFlagRequired("workspace")

	rootCmd.AddCommand(applyCmd)
}

// Resource represents a generic huddle resource document
type Resource struct {
	Kind     string           `yaml:"kind"`
	Metadata ResourceMetadata `yaml:"metadata"`
	Spec     map[string]any   `yaml:"spec"`
}

type ResourceMetadata struct {
	Name string `yaml:"name"`
}

func runApply(cmd *cobra.Command, args []string) error {
	filename, _ := cmd.Flags().GetString("file")
	workspaceID, _ := cmd.Flags().GetString("workspace")

	file, err := os.Open(filename)
	if err != nil {
		return fmt.Errorf("failed to read file: %v", err)
	}
	defer func() { _ = file.Close() }()

	c := apiClient(cmd)
	dec := yaml.NewDecoder(file)
	for {
		var resource Resource
		if err := dec.Decode(&resource); err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return fmt.Errorf("failed to parse YAML: %v", err)
		}

		switch resource.Kind {
		case "Task":
			err = applyTask(cmd.Context(), c, workspaceID, &resource)
		case "Project":
			err = applyProject(cmd.Context(), c, workspaceID, &resource)
		case "Member":
			err = applyMember(cmd.Context(), c, workspaceID, &resource)
		case "Invite":
			err = applyInvite(cmd.Context(), c, workspaceID, &resource)
		default:
			err = fmt.Errorf("unsupported resource kind: %s", resource.Kind)
		}
		if err != nil {
			return err
		}
	}
}

func applyTask(ctx context.Context, c *client.Client, workspaceID string, resource *Resource) error {
	task := &types.Task{
		Title:       resource.Metadata.Name,
		Description: getString(resource.Spec, "description", ""),
		ProjectID:   getString(resource.Spec, "project", ""),
		Status:      types.TaskStatus(getString(resource.Spec, "status", "")),
		Priority:    types.Priority(getString(resource.Spec, "priority", "")),
		StartDate:   getString(resource.Spec, "startDate", ""),
		DueDate:     getString(resource.Spec, "dueDate", ""),
		AssigneeIDs: getStringSlice(resource.Spec, "assignees"),
	}

	created, err := c.CreateTask(ctx, workspaceID, task)
	if err != nil {
		return fmt.Errorf("failed to create task %q: %v", task.Title, err)
	}
	fmt.Printf("✓ Task created: %s (ID: %s)\n", created.Title, created.ID)
	return nil
}

func applyProject(ctx context.Context, c *client.Client, workspaceID string, resource *Resource) error {
	project := &types.Project{
		Title:       resource.Metadata.Name,
		Description: getString(resource.Spec, "description", ""),
		Status:      types.ProjectStatus(getString(resource.Spec, "status", "")),
		AssigneeID:  getString(resource.Spec, "lead", ""),
		StartDate:   getString(resource.Spec, "startDate", ""),
		DueDate:     getString(resource.Spec, "dueDate", ""),
	}

	created, err := c.CreateProject(ctx, workspaceID, project)
	if err != nil {
		return fmt.Errorf("failed to create project %q: %v", project.Title, err)
	}
	fmt.Printf("✓ Project created: %s (ID: %s)\n", created.Title, created.ID)
	return nil
}

func applyMember(ctx context.Context, c *client.Client, workspaceID string, resource *Resource) error {
	member := &types.Member{
		UserID:      resource.Metadata.Name,
		WorkspaceID: workspaceID,
		Name:        getString(resource.Spec, "name", ""),
		Email:       getString(resource.Spec, "email", ""),
		Role:        types.MemberRole(getString(resource.Spec, "role", "")),
		ChatID:      getString(resource.Spec, "chatId", ""),
	}

	saved, err := c.PutMember(ctx, member)
	if err != nil {
		return fmt.Errorf("failed to save member %q: %v", member.UserID, err)
	}
	fmt.Printf("✓ Member saved: %s (role=%s)\n", saved.UserID, saved.Role)
	return nil
}

func applyInvite(ctx context.Context, c *client.Client, workspaceID string, resource *Resource) error {
	email := getString(resource.Spec, "email", resource.Metadata.Name)
	role := types.MemberRole(getString(resource.Spec, "role", ""))

	inv, err := c.CreateInvite(ctx, workspaceID, email, role)
	if err != nil {
		return fmt.Errorf("failed to create invite for %q: %v", email, err)
	}
	fmt.Printf("✓ Invite created: %s (token: %s)\n", inv.Email, inv.Token)
	return nil
}

// Helper functions
func getString(m map[string]any, key, defaultValue string) string {
	if v, ok := m[key]; ok {
		return fmt.Sprintf("%v", v)
	}
	return defaultValue
}

func getStringSlice(m map[string]any, key string) []string {
	raw, ok := m[key].([]any)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(raw))
	for _, v := range raw {
		out = append(out, fmt.Sprintf("%v", v))
	}
	return out
}
