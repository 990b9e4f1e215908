// Package session owns the current map selection. It fetches record sets from
// a Source, discards responses overtaken by a newer selection, and publishes
// immutable view snapshots.
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"github.com/couchcryptid/health-equity-map/internal/domain"
	"github.com/couchcryptid/health-equity-map/internal/observability"
)

var (
	// ErrSuperseded is returned when a newer selection was made while this
	// one was fetching. The response has been discarded.
	ErrSuperseded = errors.New("selection superseded by a newer request")

	// ErrNoSelection is returned by Snapshot before any selection completed.
	ErrNoSelection = errors.New("no selection has been made")
)

// Source serves measure lists and record sets.
type Source interface {
	ListMeasures(ctx context.Context, kind domain.MeasureKind) ([]domain.Measure, error)
	FetchRecords(ctx context.Context, q domain.Query) ([]domain.MeasureRecord, error)
}

// Publisher receives every snapshot the session computes.
type Publisher interface {
	Publish(ctx context.Context, snap domain.Snapshot) error
}

// Option configures a Session.
type Option func(*Session)

// WithPublisher sends computed snapshots to p.
func WithPublisher(p Publisher) Option {
	return func(s *Session) { s.publisher = p }
}

// Session tracks the active selection and its latest snapshot.
//
// The generation advances only when a selection needs different record sets.
// Zoom and view-mode changes keep the generation, so they never supersede an
// in-flight fetch for the same measures.
type Session struct {
	source    Source
	publisher Publisher
	policy    domain.ViewPolicy
	logger    *slog.Logger
	metrics   *observability.Metrics

	generation atomic.Uint64
	snapshot   atomic.Pointer[domain.Snapshot]
	ready      atomic.Bool
	flights    singleflight.Group

	// mu guards everything below and every change to generation.
	mu        sync.Mutex
	requested *domain.Selection
	data      domain.Dataset
	dataSel   *domain.Selection
	gate      *domain.MarkerGate
}

// New creates a Session reading from src.
func New(src Source, policy domain.ViewPolicy, logger *slog.Logger, metrics *observability.Metrics, opts ...Option) *Session {
	s := &Session{
		source:  src,
		policy:  policy,
		logger:  logger,
		metrics: metrics,
		gate:    domain.NewMarkerGate(policy),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CheckReadiness returns nil once the data source has answered at least one
// request, or an error describing why the service is not yet ready.
func (s *Session) CheckReadiness(_ context.Context) error {
	if !s.ready.Load() {
		return errors.New("data source has not answered any request yet")
	}
	return nil
}

// Measures lists the selectable measures of a kind.
func (s *Session) Measures(ctx context.Context, kind domain.MeasureKind) ([]domain.Measure, error) {
	measures, err := s.source.ListMeasures(ctx, kind)
	if err != nil {
		return nil, fmt.Errorf("list %s measures: %w", kind, err)
	}
	s.markReady()
	return measures, nil
}

// Select makes sel the active selection and returns its snapshot. Record sets
// are reused when sel differs from the retained selection only in zoom or view
// mode, and concurrent selections of the same measures share one fetch. If a
// selection of different measures starts before this one finishes,
// ErrSuperseded is returned and nothing is stored.
//
// A response for the active measures that was overtaken by a later zoom or
// mode change is returned to its caller but not stored.
func (s *Session) Select(ctx context.Context, sel domain.Selection) (domain.Snapshot, error) {
	if err := sel.Validate(); err != nil {
		return domain.Snapshot{}, err
	}
	gen, data, reused := s.begin(sel)
	if !reused {
		fetched, err := s.fetchShared(ctx, sel)
		if err != nil {
			if s.generation.Load() != gen {
				s.discard(sel, gen)
				return domain.Snapshot{}, ErrSuperseded
			}
			return domain.Snapshot{}, err
		}
		data = fetched
	}

	snap := domain.NewSnapshot(gen, sel, s.policy, data)

	s.mu.Lock()
	if s.generation.Load() != gen {
		s.mu.Unlock()
		s.discard(sel, gen)
		return domain.Snapshot{}, ErrSuperseded
	}
	s.data = data
	s.dataSel = &sel
	latest := *s.requested == sel
	if latest {
		snap.Transition = s.gate.Update(sel.Mode, sel.Zoom)
		s.snapshot.Store(&snap)
	} else {
		snap.Transition = s.gate.Preview(sel.Mode, sel.Zoom)
	}
	s.mu.Unlock()

	s.metrics.RecordsClassified.Add(float64(len(data.Primary)))
	s.metrics.AggregatesEmitted.Add(float64(len(snap.View.States)))
	s.logger.Info("snapshot computed",
		"measure", sel.MeasureID,
		"companion", sel.CompanionID,
		"mode", sel.Mode,
		"zoom", sel.Zoom,
		"visibility", snap.View.Visibility,
		"dispose", snap.Transition.Dispose,
		"generation", gen,
		"refetched", !reused,
		"stored", latest,
	)

	if latest {
		s.publish(ctx, snap)
	}
	return snap, nil
}

// Snapshot returns the latest stored snapshot.
func (s *Session) Snapshot() (domain.Snapshot, error) {
	snap := s.snapshot.Load()
	if snap == nil {
		return domain.Snapshot{}, ErrNoSelection
	}
	return *snap, nil
}

// Zoom recomputes the most recently requested selection at a new zoom level.
func (s *Session) Zoom(ctx context.Context, zoom int) (domain.Snapshot, error) {
	cur, err := s.current()
	if err != nil {
		return domain.Snapshot{}, err
	}
	return s.Select(ctx, cur.WithZoom(zoom))
}

// SetMode recomputes the most recently requested selection in a new view mode.
func (s *Session) SetMode(ctx context.Context, mode domain.ViewMode) (domain.Snapshot, error) {
	cur, err := s.current()
	if err != nil {
		return domain.Snapshot{}, err
	}
	return s.Select(ctx, cur.WithMode(mode))
}

func (s *Session) current() (domain.Selection, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.requested == nil {
		return domain.Selection{}, ErrNoSelection
	}
	return *s.requested, nil
}

// begin records sel as the latest request and returns its generation, along
// with the retained record sets when they can be reused.
func (s *Session) begin(sel domain.Selection) (uint64, domain.Dataset, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var gen uint64
	if s.requested != nil && s.requested.SameData(sel) {
		gen = s.generation.Load()
	} else {
		gen = s.generation.Add(1)
	}
	s.requested = &sel

	if s.dataSel == nil || !s.dataSel.SameData(sel) {
		return gen, domain.Dataset{}, false
	}
	return gen, s.data, true
}

func (s *Session) discard(sel domain.Selection, gen uint64) {
	s.metrics.StaleResponses.Inc()
	s.logger.Debug("discarding superseded response",
		"measure", sel.MeasureID, "generation", gen)
}

// fetchShared joins an in-flight fetch of the same record sets or starts one.
// The caller stops waiting when ctx is done.
func (s *Session) fetchShared(ctx context.Context, sel domain.Selection) (domain.Dataset, error) {
	key := string(sel.Kind) + "/" + sel.MeasureID + "/" + sel.CompanionID
	ch := s.flights.DoChan(key, func() (any, error) {
		return s.fetch(ctx, sel)
	})
	select {
	case res := <-ch:
		if res.Err != nil {
			return domain.Dataset{}, res.Err
		}
		return res.Val.(domain.Dataset), nil
	case <-ctx.Done():
		return domain.Dataset{}, ctx.Err()
	}
}

// fetch loads the primary and, in overlay mode, companion record sets
// concurrently.
func (s *Session) fetch(ctx context.Context, sel domain.Selection) (domain.Dataset, error) {
	var data domain.Dataset
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		records, err := s.fetchOne(gctx, sel.PrimaryQuery())
		if err != nil {
			return err
		}
		data.Primary = records
		return nil
	})

	if q, ok := sel.CompanionQuery(); ok {
		g.Go(func() error {
			records, err := s.fetchOne(gctx, q)
			if err != nil {
				return err
			}
			// Non-nil marks overlay mode even when nothing matched.
			if records == nil {
				records = []domain.MeasureRecord{}
			}
			data.Companion = records
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return domain.Dataset{}, err
	}
	return data, nil
}

func (s *Session) fetchOne(ctx context.Context, q domain.Query) ([]domain.MeasureRecord, error) {
	start := time.Now()
	records, err := s.source.FetchRecords(ctx, q)
	s.metrics.FetchDuration.WithLabelValues(string(q.Kind)).Observe(time.Since(start).Seconds())
	if err != nil {
		s.metrics.FetchRequests.WithLabelValues(string(q.Kind), "error").Inc()
		s.logger.Warn("fetch failed", "measure", q.MeasureID, "kind", q.Kind, "error", err)
		return nil, fmt.Errorf("fetch %s %s: %w", q.Kind, q.MeasureID, err)
	}
	s.metrics.FetchRequests.WithLabelValues(string(q.Kind), "success").Inc()
	s.markReady()
	return records, nil
}

func (s *Session) markReady() {
	if s.ready.CompareAndSwap(false, true) {
		s.metrics.SessionReady.Set(1)
	}
}

func (s *Session) publish(ctx context.Context, snap domain.Snapshot) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(ctx, snap); err != nil {
		s.metrics.SnapshotsPublished.WithLabelValues("error").Inc()
		s.logger.Error("publish snapshot failed", "measure", snap.View.Selection.MeasureID, "error", err)
		return
	}
	s.metrics.SnapshotsPublished.WithLabelValues("success").Inc()
}
