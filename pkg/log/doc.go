/*
Package log provides structured logging for huddle using zerolog.

The log package wraps the zerolog library to provide JSON-structured
logging with component-specific child loggers, configurable levels, and
helpers for the fields that recur across the codebase (workspace, user,
entity).

# Usage

Initialize once at startup, then derive component loggers:

	log.Init(log.Config{Level: log.InfoLevel, JSONOutput: true, Output: os.Stderr})

	logger := log.WithComponent("pipeline")
	logger.Info().
		Str("workspace_id", workspaceID).
		Str("entity_id", task.ID).
		Msg("task updated")

JSONOutput false switches to zerolog's console writer for development.

# Conventions

Component names match package names. Field names are snake_case. Errors
attach with .Err(err), never formatted into the message. Log at Error
only for conditions someone should look at; degraded-but-handled paths
(a failed chat delivery, a stale cache read) log at Warn and carry on.
*/
package log
