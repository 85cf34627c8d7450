package ledger

import (
	"context"
	"sync"

	"shortearn/model"
	"shortearn/store"

	"github.com/rs/zerolog/log"
)

// Watcher keeps a derived dashboard view current for one user. It subscribes
// to the user's event channel and rebuilds the whole view from the store on
// every message. Views replace each other wholesale.
type Watcher struct {
	store    *store.Store
	emailKey string

	tableWindow int
	chartWindow int
	pageSize    int

	mu   sync.RWMutex
	view *DashboardView

	updates chan *DashboardView
}

func NewWatcher(st *store.Store, emailKey string, tableWindow, chartWindow, pageSize int) *Watcher {
	return &Watcher{
		store:       st,
		emailKey:    emailKey,
		tableWindow: tableWindow,
		chartWindow: chartWindow,
		pageSize:    pageSize,
		updates:     make(chan *DashboardView, 1),
	}
}

// Updates delivers each rebuilt view. The channel holds one pending view;
// a slow consumer only ever sees the newest state.
func (w *Watcher) Updates() <-chan *DashboardView {
	return w.updates
}

// View returns the most recently built view, or nil before the first rebuild.
func (w *Watcher) View() *DashboardView {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.view
}

// Run builds the initial view, then rebuilds on every published event until
// the context is cancelled.
func (w *Watcher) Run(ctx context.Context) error {
	sub := w.store.Client().Subscribe(ctx, model.UserEventsChannel(w.emailKey))
	defer sub.Close()

	// Confirm the subscription before the initial build so no event between
	// build and subscribe is lost.
	if _, err := sub.Receive(ctx); err != nil {
		return err
	}

	w.rebuild(ctx)

	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case _, ok := <-ch:
			if !ok {
				return nil
			}
			w.rebuild(ctx)
		}
	}
}

func (w *Watcher) rebuild(ctx context.Context) {
	dashboard, err := w.store.GetDashboard(ctx, w.emailKey)
	if err != nil {
		log.Warn().Err(err).Str("email_key", w.emailKey).Msg("Failed to rebuild dashboard view")
		return
	}

	view := BuildDashboardView(dashboard, w.tableWindow, w.chartWindow, w.pageSize)

	w.mu.Lock()
	w.view = view
	w.mu.Unlock()

	// Drop the stale pending view, if any.
	select {
	case <-w.updates:
	default:
	}
	w.updates <- view
}
