package store

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phishgraph/phishgraph/internal/model"
)

func TestLoadFixtureOrdersByIdentity(t *testing.T) {
	m, err := LoadFixture("testdata/fixture.yaml")
	require.NoError(t, err)

	campaigns, err := m.List(context.Background(), model.KindCampaign, nil)
	require.NoError(t, err)
	require.Len(t, campaigns, 2)
	assert.Equal(t, int64(1), campaigns[0].Identity())
	assert.Equal(t, "First", campaigns[0].(*model.Campaign).Name)
	assert.Equal(t, int64(2), campaigns[1].Identity())
}

func TestGetAndListFilter(t *testing.T) {
	m, err := LoadFixture("testdata/fixture.yaml")
	require.NoError(t, err)
	ctx := context.Background()

	e, err := m.Get(ctx, model.KindCredential, Filter{"campaign_id": 2})
	require.NoError(t, err)
	require.NotNil(t, e)
	assert.Equal(t, int64(11), e.Identity())

	e, err = m.Get(ctx, model.KindCampaign, Filter{"id": 99})
	require.NoError(t, err)
	assert.Nil(t, e)

	list, err := m.List(ctx, model.KindCredential, Filter{"campaign_id": 1})
	require.NoError(t, err)
	require.Len(t, list, 1)

	list, err = m.List(ctx, model.KindVisit, nil)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestInsertRejectsDuplicates(t *testing.T) {
	m := NewMemory()
	require.NoError(t, m.Insert(&model.Visit{ID: "a"}, &model.Visit{ID: "b"}))
	assert.Error(t, m.Insert(&model.Visit{ID: "a"}))
}

func TestCancelledContext(t *testing.T) {
	m := NewMemory()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := m.List(ctx, model.KindCampaign, nil)
	var fe *FetchError
	require.ErrorAs(t, err, &fe)
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestLoadYAMLUnknownKind(t *testing.T) {
	m := NewMemory()
	err := m.LoadYAML([]byte("spaceships:\n  - id: 1\n"))
	assert.Error(t, err)
}
