package store

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	"github.com/phishgraph/phishgraph/internal/eventbus"
	"github.com/phishgraph/phishgraph/internal/events"
	"github.com/phishgraph/phishgraph/internal/model"
)

var fetchSeq atomic.Uint64

type instrumented struct {
	next Store
}

// Instrument wraps s so that every read publishes FetchStart and FetchFinish
// events. Failures of s are returned as *FetchError.
func Instrument(s Store) Store {
	if s == nil {
		return nil
	}
	return instrumented{next: s}
}

func (i instrumented) Get(ctx context.Context, kind model.Kind, filter Filter) (model.Entity, error) {
	id, start := i.begin(ctx, kind, "get")
	e, err := i.next.Get(ctx, kind, filter)
	rows := 0
	if e != nil {
		rows = 1
	}
	err = fetchError(kind, err)
	i.end(ctx, id, kind, "get", rows, err, start)
	return e, err
}

func (i instrumented) List(ctx context.Context, kind model.Kind, filter Filter) ([]model.Entity, error) {
	id, start := i.begin(ctx, kind, "list")
	out, err := i.next.List(ctx, kind, filter)
	err = fetchError(kind, err)
	i.end(ctx, id, kind, "list", len(out), err, start)
	return out, err
}

func fetchError(kind model.Kind, err error) error {
	var fe *FetchError
	if err == nil || errors.As(err, &fe) {
		return err
	}
	return &FetchError{Kind: kind, Err: err}
}

func (instrumented) begin(ctx context.Context, kind model.Kind, method string) (uint64, time.Time) {
	id := fetchSeq.Add(1)
	eventbus.Publish(ctx, events.FetchStart{ID: id, Kind: string(kind), Method: method})
	return id, time.Now()
}

func (instrumented) end(ctx context.Context, id uint64, kind model.Kind, method string, rows int, err error, start time.Time) {
	eventbus.Publish(ctx, events.FetchFinish{
		ID:       id,
		Kind:     string(kind),
		Method:   method,
		Rows:     rows,
		Err:      err,
		Duration: time.Since(start),
	})
}
