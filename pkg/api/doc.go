/*
Package api implements the huddle HTTP JSON API server.

The server is the gateway to everything: workspace CRUD, task and project
mutations through the optimistic pipeline, the notification inbox, the
invite lifecycle, the assistant, and a long-poll change feed. Each
workspace gets its own lazily built runtime holding a live session over
the store, so list endpoints serve from synced caches and mutations flow
through pkg/pipeline rather than hitting the store directly.

# Routes

	GET  /healthz, /readyz, /metrics

	GET/POST       /v1/workspaces
	GET/DELETE     /v1/workspaces/{ws}
	GET/POST       /v1/workspaces/{ws}/tasks
	GET/PATCH/DELETE /v1/workspaces/{ws}/tasks/{id}
	                 ... projects mirror tasks
	GET            /v1/workspaces/{ws}/members
	PUT/DELETE     /v1/workspaces/{ws}/members/{userId}
	GET/POST/...   /v1/workspaces/{ws}/notifications
	GET/POST       /v1/workspaces/{ws}/invites
	POST           /v1/workspaces/{ws}/invites/{token}/accept | /revoke
	POST           /v1/workspaces/{ws}/assistant
	GET            /v1/workspaces/{ws}/events    (long-poll)

The X-Huddle-User header identifies the acting user for attribution,
notification routing, and read marks.

# Error Mapping

Domain errors map to statuses a client can branch on: validation failures
are 422 with the full violation list, missing entities 404, consumed
invites 409, expired invites 410, identity mismatches 403. Anything else
is a logged 500 with no internals leaked.

# See Also

  - pkg/client for the Go client over this API
  - pkg/pipeline for the mutation semantics behind the write routes
*/
package api
