/*
Package client provides a Go client library for the huddle HTTP API.

The client package wraps the JSON API with a convenient, idiomatic Go
interface used by the huddle CLI and any external automation. It covers
every server operation: workspaces, tasks, projects, members,
notifications, invites, the assistant, and the long-poll change feed.

# Usage

	c := client.NewClient("http://127.0.0.1:8420", "user-42")

	ws, err := c.CreateWorkspace(ctx, "platform team")
	if err != nil {
		return err
	}

	task, err := c.CreateTask(ctx, ws.ID, &types.Task{Title: "Ship it"})

The second argument to NewClient is the acting user's ID; it rides along
as the X-Huddle-User header and attributes mutations and notification
routing to that user.

# Errors

Non-2xx responses decode into *APIError carrying the HTTP status, the
server's error code, and for validation failures the full list of
violations:

	var apiErr *client.APIError
	if errors.As(err, &apiErr) && apiErr.Status == http.StatusUnprocessableEntity {
		for _, violation := range apiErr.Errors {
			fmt.Println(violation)
		}
	}

# Watching Changes

PollEvents long-polls the server's change feed and returns when at least
one event arrives or the timeout passes. Callers loop:

	for {
		changes, err := c.PollEvents(ctx, ws.ID, 30*time.Second)
		if err != nil {
			return err
		}
		handle(changes)
	}
*/
package client
