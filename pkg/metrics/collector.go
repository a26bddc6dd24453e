package metrics

import (
	"time"

	"github.com/loftlab/huddle/pkg/storage"
	"github.com/loftlab/huddle/pkg/types"
)

// Collector periodically samples inventory gauges from the store
type Collector struct {
	store  storage.Store
	stopCh chan struct{}
}

// NewCollector creates a new metrics collector
func NewCollector(store storage.Store) *Collector {
	return &Collector{
		store:  store,
		stopCh: make(chan struct{}),
	}
}

// Start begins collecting metrics
func (c *Collector) Start() {
	ticker := time.NewTicker(15 * time.Second)
	go func() {
		// Collect immediately on start
		c.collect()

		for {
			select {
			case <-ticker.C:
				c.collect()
			case <-c.stopCh:
				ticker.Stop()
				return
			}
		}
	}()
}

// Stop stops the collector
func (c *Collector) Stop() {
	close(c.stopCh)
}

func (c *Collector) collect() {
	workspaces, err := c.store.ListWorkspaces()
	if err != nil {
		return
	}
	WorkspacesTotal.Set(float64(len(workspaces)))

	// Reset the vectors so workspaces or statuses that vanished do not
	// keep reporting their last value
	TasksTotal.Reset()
	ProjectsTotal.Reset()
	MembersTotal.Reset()
	InvitesTotal.Reset()

	for _, ws := range workspaces {
		c.collectTasks(ws.ID)
		c.collectProjects(ws.ID)
		c.collectMembers(ws.ID)
		c.collectInvites(ws.ID)
	}
}

func (c *Collector) collectTasks(workspaceID string) {
	tasks, err := c.store.ListTasks(workspaceID)
	if err != nil {
		return
	}
	counts := make(map[types.TaskStatus]int)
	for _, task := range tasks {
		counts[task.Status]++
	}
	for status, count := range counts {
		TasksTotal.WithLabelValues(workspaceID, string(status)).Set(float64(count))
	}
}

func (c *Collector) collectProjects(workspaceID string) {
	projects, err := c.store.ListProjects(workspaceID)
	if err != nil {
		return
	}
	counts := make(map[types.ProjectStatus]int)
	for _, project := range projects {
		counts[project.Status]++
	}
	for status, count := range counts {
		ProjectsTotal.WithLabelValues(workspaceID, string(status)).Set(float64(count))
	}
}

func (c *Collector) collectMembers(workspaceID string) {
	members, err := c.store.ListMembers(workspaceID)
	if err != nil {
		return
	}
	counts := make(map[types.MemberStatus]int)
	for _, member := range members {
		counts[member.Status]++
	}
	for status, count := range counts {
		MembersTotal.WithLabelValues(workspaceID, string(status)).Set(float64(count))
	}
}

func (c *Collector) collectInvites(workspaceID string) {
	invites, err := c.store.ListInvites(workspaceID)
	if err != nil {
		return
	}
	counts := make(map[types.InviteStatus]int)
	for _, invite := range invites {
		counts[invite.Status]++
	}
	for status, count := range counts {
		InvitesTotal.WithLabelValues(workspaceID, string(status)).Set(float64(count))
	}
}
