package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/loftlab/huddle/pkg/client"
	"github.com/spf13/cobra"
)

var (
	// Version information (set via ldflags during build)
	Version   = "dev"
	Commit    = "unknown"
	BuildTime = "unknown"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "huddle",
	Short: "Huddle - collaborative task tracking for small teams",
	Long: `Huddle keeps a team's tasks, projects, and membership in a single
embedded store, pushes every change to connected clients, and routes
notifications to the people a change actually concerns.

The serve command runs the API server; the other commands talk to it.`,
	Version: Version,
}

func init() {
	rootCmd.SetVersionTemplate(fmt.Sprintf(
		"Huddle version %s\nCommit: %s\nBuilt: %s\n",
		Version, Commit, BuildTime,
	))

	rootCmd.PersistentFlags().String("server", "http://127.0.0.1:8420", "API server address")
	rootCmd.PersistentFlags().String("as", "", "User ID to act as")

	rootCmd.AddCommand(workspaceCmd)
	rootCmd.AddCommand(taskCmd)
	rootCmd.AddCommand(projectCmd)
	rootCmd.AddCommand(memberCmd)
	rootCmd.AddCommand(inviteCmd)
	rootCmd.AddCommand(notificationCmd)
}

// apiClient builds a client from the root flags
func apiClient(cmd *cobra.Command) *client.Client {
	server, _ := cmd.Flags().GetString("server")
	actor, _ := cmd.Flags().GetString("as")
	return client.NewClient(server, actor)
}

// table returns a tabwriter for aligned list output
func table() *tabwriter.Writer {
	return tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
}

// Workspace commands
var workspaceCmd = &cobra.Command{
	Use:     "workspace",
	Aliases: []string{"ws"},
	Short:   "Manage workspaces",
}

var workspaceCreateCmd = &cobra.Command{
	Use:   "create NAME",
	Short: "Create a new workspace",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ws, err := apiClient(cmd).CreateWorkspace(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		fmt.Printf("✓ Workspace created: %s (ID: %s)\n", ws.Name, ws.ID)
		return nil
	},
}

var workspaceListCmd = &cobra.Command{
	Use:   "list",
	Short: "List workspaces",
	RunE: func(cmd *cobra.Command, args []string) error {
		workspaces, err := apiClient(cmd).ListWorkspaces(cmd.Context())
		if err != nil {
			return err
		}
		w := table()
		fmt.Fprintln(w, "ID\tNAME\tCREATED")
		for _, ws := range workspaces {
			fmt.Fprintf(w, "%s\t%s\t%s\n", ws.ID, ws.Name, ws.CreatedAt.Format("2006-01-02 15:04"))
		}
		return w.Flush()
	},
}

var workspaceDeleteCmd = &cobra.Command{
	Use:   "delete ID",
	Short: "Delete a workspace and everything in it",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := apiClient(cmd).DeleteWorkspace(cmd.Context(), args[0]); err != nil {
			return err
		}
		fmt.Printf("✓ Workspace deleted: %s\n", args[0])
		return nil
	},
}

func init() {
	workspaceCmd.AddCommand(workspaceCreateCmd)
	workspaceCmd.AddCommand(workspaceListCmd)
	workspaceCmd.AddCommand(workspaceDeleteCmd)
}
