package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/bornholm/go-x/slogx"
	"github.com/osiro/laudo/internal/core/model"
	"github.com/osiro/laudo/internal/core/port"
	"github.com/osiro/laudo/internal/log"
	"github.com/osiro/laudo/internal/metrics"
	"github.com/pkg/errors"
)

type warmKey struct {
	kind       model.DocumentKind
	documentID int64
}

// ScheduleWarm debounces "this document changed" signals into a single
// background re-render per key. Each call resets the pending timer: a burst
// of N mutations within the window produces exactly one trailing render,
// computed from the last of the N states. Mutation endpoints never block on
// it and never see its failures.
func (m *RenderManager) ScheduleWarm(kind model.DocumentKind, documentID int64, force bool) {
	key := warmKey{kind: kind, documentID: documentID}

	metrics.WarmSchedules.WithLabelValues(string(kind)).Inc()

	m.timersMutex.Lock()
	defer m.timersMutex.Unlock()

	if existing, exists := m.timers[key]; exists {
		existing.Stop()
	}

	var timer *time.Timer
	timer = time.AfterFunc(m.warmDebounce, func() {
		m.timersMutex.Lock()

		// A newer schedule may have superseded this timer between firing
		// and acquiring the lock. Only the most recent one runs.
		if m.timers[key] != timer {
			m.timersMutex.Unlock()
			return
		}

		delete(m.timers, key)
		m.timersMutex.Unlock()

		m.warm(kind, documentID, force)
	})

	m.timers[key] = timer
}

// PendingWarms returns the number of debounce timers currently armed.
func (m *RenderManager) PendingWarms() int {
	m.timersMutex.Lock()
	defer m.timersMutex.Unlock()

	return len(m.timers)
}

func (m *RenderManager) warm(kind model.DocumentKind, documentID int64, force bool) {
	ctx := log.WithAttrs(context.Background(),
		slog.String("kind", string(kind)),
		slog.Int64("documentID", documentID),
	)

	metrics.WarmFires.WithLabelValues(string(kind)).Inc()

	if _, err := m.GetOrRender(ctx, kind, documentID, force); err != nil {
		if errors.Is(err, port.ErrNotFound) {
			slog.DebugContext(ctx, "document vanished before warm fired")
			return
		}

		slog.ErrorContext(ctx, "could not warm render cache", slogx.Error(errors.WithStack(err)))
	}
}
