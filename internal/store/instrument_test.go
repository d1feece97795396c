package store

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phishgraph/phishgraph/internal/eventbus"
	"github.com/phishgraph/phishgraph/internal/events"
	"github.com/phishgraph/phishgraph/internal/model"
)

func TestInstrumentPublishesFetchEvents(t *testing.T) {
	eventbus.Use(eventbus.New())
	t.Cleanup(func() { eventbus.Use(nil) })

	var (
		mu       sync.Mutex
		started  []events.FetchStart
		finished []events.FetchFinish
	)
	eventbus.Subscribe(func(_ context.Context, e events.FetchStart) {
		mu.Lock()
		defer mu.Unlock()
		started = append(started, e)
	})
	eventbus.Subscribe(func(_ context.Context, e events.FetchFinish) {
		mu.Lock()
		defer mu.Unlock()
		finished = append(finished, e)
	})

	m, err := LoadFixture("testdata/fixture.yaml")
	require.NoError(t, err)
	s := Instrument(m)

	list, err := s.List(context.Background(), model.KindCredential, nil)
	require.NoError(t, err)
	require.Len(t, list, 2)
	e, err := s.Get(context.Background(), model.KindCampaign, Filter{"id": 99})
	require.NoError(t, err)
	assert.Nil(t, e)

	require.Len(t, started, 2)
	require.Len(t, finished, 2)
	assert.Equal(t, started[0].ID, finished[0].ID)
	assert.Equal(t, "list", finished[0].Method)
	assert.Equal(t, "credentials", finished[0].Kind)
	assert.Equal(t, 2, finished[0].Rows)
	assert.Equal(t, "get", finished[1].Method)
	assert.Equal(t, 0, finished[1].Rows)
}

func TestInstrumentNil(t *testing.T) {
	assert.Nil(t, Instrument(nil))
}

type failingStore struct{ err error }

func (f failingStore) Get(context.Context, model.Kind, Filter) (model.Entity, error) {
	return nil, f.err
}

func (f failingStore) List(context.Context, model.Kind, Filter) ([]model.Entity, error) {
	return nil, f.err
}

func TestInstrumentWrapsFailures(t *testing.T) {
	reset := errors.New("connection reset")
	s := Instrument(failingStore{err: reset})

	_, err := s.List(context.Background(), model.KindVisit, nil)
	var fe *FetchError
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, model.KindVisit, fe.Kind)
	assert.ErrorIs(t, err, reset)
	assert.EqualError(t, err, "fetch visits: connection reset")

	_, err = s.Get(context.Background(), model.KindCampaign, Filter{"id": 1})
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, model.KindCampaign, fe.Kind)

	// already classified errors pass through unchanged
	inner := &FetchError{Kind: model.KindUser, Err: reset}
	_, err = Instrument(failingStore{err: inner}).List(context.Background(), model.KindVisit, nil)
	assert.Same(t, inner, err)
}
