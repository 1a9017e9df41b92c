package walk

import (
	"context"
	"errors"

	"github.com/specialistvlad/gridwalk/internal/ctxlog"
	"github.com/specialistvlad/gridwalk/internal/grid"
)

// EventKind names what happened during a walk.
type EventKind string

const (
	EventPlaced  EventKind = "placed"
	EventStep    EventKind = "step"
	EventArrived EventKind = "arrived"
	EventNoPath  EventKind = "no_path"
)

// Event is a single observable change of a walk.
//
// Index and Total are only meaningful for step events: Index is the position
// of Pos on the path (0 is the start cell) and Total is the path length in
// cells. Payload is the cell's payload at Pos.
type Event struct {
	Walk    string
	Kind    EventKind
	Start   grid.Coord
	Goal    grid.Coord
	Index   int
	Total   int
	Pos     grid.Coord
	Payload any
}

// Sink receives walk events. Emit is called from the walker's goroutine; an
// error aborts the walk.
type Sink interface {
	Emit(ctx context.Context, ev Event) error
}

// SinkFunc adapts a function to the Sink interface.
type SinkFunc func(ctx context.Context, ev Event) error

// Emit calls f(ctx, ev).
func (f SinkFunc) Emit(ctx context.Context, ev Event) error {
	return f(ctx, ev)
}

// LogSink writes every event to the logger carried by the context.
type LogSink struct{}

// Emit logs the event at info level.
func (LogSink) Emit(ctx context.Context, ev Event) error {
	logger := ctxlog.FromContext(ctx)
	switch ev.Kind {
	case EventStep:
		logger.Info("Walk step.",
			"walk", ev.Walk,
			"index", ev.Index,
			"total", ev.Total,
			"pos", ev.Pos.String(),
			"payload", ev.Payload,
		)
	default:
		logger.Info("Walk event.",
			"walk", ev.Walk,
			"kind", string(ev.Kind),
			"start", ev.Start.String(),
			"goal", ev.Goal.String(),
		)
	}
	return nil
}

type multiSink []Sink

func (m multiSink) Emit(ctx context.Context, ev Event) error {
	var errs []error
	for _, s := range m {
		if err := s.Emit(ctx, ev); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Sinks fans every event out to all the given sinks in order. Nil sinks are
// skipped. All sinks see the event even if an earlier one fails.
func Sinks(sinks ...Sink) Sink {
	var m multiSink
	for _, s := range sinks {
		if s != nil {
			m = append(m, s)
		}
	}
	if len(m) == 1 {
		return m[0]
	}
	return m
}
