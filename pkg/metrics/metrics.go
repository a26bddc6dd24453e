package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Workspace inventory metrics
	WorkspacesTotal = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "huddle_workspaces_total",
			Help: "Total number of workspaces",
		},
	)

	TasksTotal = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "huddle_tasks_total",
			Help: "Total number of tasks by workspace and status",
		},
		[]string{"workspace", "status"},
	)

	ProjectsTotal = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "huddle_projects_total",
			Help: "Total number of projects by workspace and status",
		},
		[]string{"workspace", "status"},
	)

	MembersTotal = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "huddle_members_total",
			Help: "Total number of members by workspace and status",
		},
		[]string{"workspace", "status"},
	)

	InvitesTotal = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "huddle_invites_total",
			Help: "Total number of invites by workspace and status",
		},
		[]string{"workspace", "status"},
	)

	// Mutation pipeline metrics
	MutationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "huddle_mutations_total",
			Help: "Total entity mutations by entity, operation and outcome",
		},
		[]string{"entity", "op", "outcome"},
	)

	RollbacksTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "huddle_rollbacks_total",
			Help: "Total optimistic updates rolled back after a failed persist",
		},
		[]string{"entity"},
	)

	// Sync metrics
	SnapshotsDelivered = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "huddle_snapshots_delivered_total",
			Help: "Total collection snapshots delivered to subscribers",
		},
		[]string{"collection"},
	)

	// Notification metrics
	NotificationsPersisted = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "huddle_notifications_persisted_total",
			Help: "Total in-app notification records persisted",
		},
	)

	ChannelDispatchesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "huddle_channel_dispatches_total",
			Help: "Total external channel dispatch attempts by outcome",
		},
		[]string{"outcome"},
	)

	// Invite metrics
	InviteAcceptsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "huddle_invite_accepts_total",
			Help: "Total invite acceptance attempts by outcome",
		},
		[]string{"outcome"},
	)

	// API metrics
	APIRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "huddle_api_requests_total",
			Help: "Total number of API requests by method and status",
		},
		[]string{"method", "status"},
	)

	APIRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "huddle_api_request_duration_seconds",
			Help:    "API request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method"},
	)
)

func init() {
	// Register all metrics
	prometheus.MustRegister(WorkspacesTotal)
	prometheus.MustRegister(TasksTotal)
	prometheus.MustRegister(ProjectsTotal)
	prometheus.MustRegister(MembersTotal)
	prometheus.MustRegister(InvitesTotal)
	prometheus.MustRegister(MutationsTotal)
	prometheus.MustRegister(RollbacksTotal)
	prometheus.MustRegister(SnapshotsDelivered)
	prometheus.MustRegister(NotificationsPersisted)
	prometheus.MustRegister(ChannelDispatchesTotal)
	prometheus.MustRegister(InviteAcceptsTotal)
	prometheus.MustRegister(APIRequestsTotal)
	prometheus.MustRegister(APIRequestDuration)
}

// Handler returns the Prometheus HTTP handler
func Handler() http.Handler {
	return promhttp.Handler()
}
