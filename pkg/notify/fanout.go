package notify

import (
	"context"
	"time"

	"github.com/loftlab/huddle/pkg/log"
	"github.com/loftlab/huddle/pkg/messenger"
	"github.com/loftlab/huddle/pkg/metrics"
	"github.com/loftlab/huddle/pkg/storage"
	"github.com/loftlab/huddle/pkg/types"
	"github.com/rs/zerolog"
)

// DispatchResult reports what happened to one logical notification. It is
// informational only: no part of it feeds back into the mutation that
// triggered the dispatch.
type DispatchResult struct {
	Persisted        bool
	ChannelAttempted bool
	ChannelDelivered bool
}

// Fanout persists in-app notification records and dispatches best-effort
// external channel messages. The two paths are independent failure domains:
// a provider outage is logged and counted, never propagated, and a failed
// external dispatch never removes the persisted record.
type Fanout struct {
	store     storage.Store
	messenger messenger.Messenger
	timeout   time.Duration
	logger    zerolog.Logger
}

// NewFanout creates a fanout over the store and messenger. messenger may be
// nil when no external channel is configured.
func NewFanout(store storage.Store, m messenger.Messenger) *Fanout {
	if m == nil {
		m = messenger.Nop{}
	}
	return &Fanout{
		store:     store,
		messenger: m,
		timeout:   10 * time.Second,
		logger:    log.WithComponent("notify"),
	}
}

// Dispatch persists the notification and then attempts one batched external
// send to the given addresses. Either step failing is contained here.
func (f *Fanout) Dispatch(workspaceID string, n *types.Notification, addresses []string, channelMessage string) DispatchResult {
	result := DispatchResult{}
	n.WorkspaceID = workspaceID

	if err := f.store.CreateNotification(n); err != nil {
		f.logger.Error().Err(err).
			Str("workspace_id", workspaceID).
			Str("type", string(n.Type)).
			Msg("failed to persist notification")
	} else {
		result.Persisted = true
		metrics.NotificationsPersisted.Inc()
	}

	if len(addresses) == 0 || channelMessage == "" {
		return result
	}

	result.ChannelAttempted = true
	ctx, cancel := context.WithTimeout(context.Background(), f.timeout)
	defer cancel()

	sendResult, err := f.messenger.Send(ctx, addresses, channelMessage)
	if err != nil {
		metrics.ChannelDispatchesTotal.WithLabelValues("error").Inc()
		f.logger.Warn().Err(err).
			Str("workspace_id", workspaceID).
			Int("addresses", len(addresses)).
			Msg("external channel dispatch failed")
		return result
	}
	if !sendResult.AllDelivered() {
		metrics.ChannelDispatchesTotal.WithLabelValues("partial").Inc()
		f.logger.Warn().
			Str("workspace_id", workspaceID).
			Int("delivered", len(sendResult.Delivered)).
			Int("failed", len(sendResult.Failed)).
			Msg("external channel dispatch partially failed")
		return result
	}

	result.ChannelDelivered = true
	metrics.ChannelDispatchesTotal.WithLabelValues("ok").Inc()
	return result
}
