/*
Package metrics provides Prometheus metrics collection and exposition for huddle.

The metrics package defines and registers all huddle metrics using the
Prometheus client library. Two kinds of signal live here: counters and
histograms incremented inline by the packages doing the work (mutations,
rollbacks, notification dispatches, invite accepts, API requests), and
inventory gauges sampled periodically from the store by the Collector.

# Metric Catalog

Inventory (sampled every 15s by Collector):

	huddle_workspaces_total
	huddle_tasks_total{workspace,status}
	huddle_projects_total{workspace,status}
	huddle_members_total{workspace,status}
	huddle_invites_total{workspace,status}

Mutation pipeline:

	huddle_mutations_total{entity,op,outcome}
	huddle_rollbacks_total{entity}

Sync and notifications:

	huddle_snapshots_delivered_total{collection}
	huddle_notifications_persisted_total
	huddle_channel_dispatches_total{outcome}
	huddle_invite_accepts_total{outcome}

API:

	huddle_api_requests_total{method,status}
	huddle_api_request_duration_seconds{method}

# Usage

Everything registers in init(); the HTTP handler mounts at /metrics:

	mux.Handle("/metrics", metrics.Handler())

	collector := metrics.NewCollector(store)
	collector.Start()
	defer collector.Stop()

The Collector resets the inventory vectors on each sample so a deleted
workspace stops reporting instead of freezing at its last value.
*/
package metrics
