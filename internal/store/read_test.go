package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/strata/internal/match"
	"github.com/roach88/strata/internal/model"
	"github.com/roach88/strata/internal/query"
	"github.com/roach88/strata/internal/testutil"
)

func seedPosts(t *testing.T, s *Store) {
	t.Helper()
	ctx := context.Background()
	posts := []struct {
		id     string
		score  float64
		status string
	}{
		{"p1", 3, "active"},
		{"p2", 5, "active"},
		{"p3", 1, "draft"},
		{"p4", 5, "active"},
	}
	for _, p := range posts {
		_, err := s.Put(ctx, &model.Item{
			Key: model.NewKey("post", p.id),
			Fields: map[string]model.Value{
				"score":  model.Number(p.score),
				"status": model.String(p.status),
			},
		})
		require.NoError(t, err)
	}
}

func keyIDs(items []*model.Item) []string {
	ids := make([]string, len(items))
	for i, it := range items {
		ids[i] = it.Key.ID
	}
	return ids
}

func TestGet_NotFound(t *testing.T) {
	s := openTestStore(t)
	_, err := s.Get(context.Background(), model.NewKey("post", "nope"))
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestQuery_FiltersAndOrders(t *testing.T) {
	s := openTestStore(t, WithClock(testutil.NewFixedClock(testEpoch)))
	seedPosts(t, s)

	got, err := s.Query(context.Background(), "post", &query.ItemQuery{
		Condition: query.NewCondition("status", model.String("active"), query.OpEqual),
		OrderBy:   []query.OrderBy{{Field: "score", Direction: query.Desc}},
	})
	require.NoError(t, err)

	// Equal scores keep the key-text scan order, so results are stable.
	assert.Equal(t, []string{"p2", "p4", "p1"}, keyIDs(got))
}

func TestQuery_NilQueryReturnsEverything(t *testing.T) {
	s := openTestStore(t, WithClock(testutil.NewFixedClock(testEpoch)))
	seedPosts(t, s)

	got, err := s.Query(context.Background(), "post", nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"p1", "p2", "p3", "p4"}, keyIDs(got))
}

func TestQuery_OffsetAndLimit(t *testing.T) {
	s := openTestStore(t, WithClock(testutil.NewFixedClock(testEpoch)))
	seedPosts(t, s)
	ctx := context.Background()

	one := 1
	two := 2
	got, err := s.Query(ctx, "post", &query.ItemQuery{Offset: &one, Limit: &two})
	require.NoError(t, err)
	assert.Equal(t, []string{"p2", "p3"}, keyIDs(got))

	// An offset past the end is empty, not an error.
	ninety := 90
	got, err = s.Query(ctx, "post", &query.ItemQuery{Offset: &ninety})
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestQuery_TypeScoped(t *testing.T) {
	s := openTestStore(t, WithClock(testutil.NewFixedClock(testEpoch)))
	seedPosts(t, s)
	ctx := context.Background()

	_, err := s.Put(ctx, &model.Item{Key: model.NewKey("user", "u1")})
	require.NoError(t, err)

	got, err := s.Query(ctx, "user", nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"u1"}, keyIDs(got))
}

func TestQuery_SoftDeletedStaysVisible(t *testing.T) {
	s := openTestStore(t, WithClock(testutil.NewFixedClock(testEpoch)))
	seedPosts(t, s)
	ctx := context.Background()

	require.NoError(t, s.Delete(ctx, model.NewKey("post", "p2")))

	got, err := s.Query(ctx, "post", nil)
	require.NoError(t, err)
	assert.Len(t, got, 4, "soft-deleted items are not filtered implicitly")

	deletedCount := 0
	for _, it := range got {
		if it.Deleted() {
			deletedCount++
		}
	}
	assert.Equal(t, 1, deletedCount)
}

func TestQuery_PropagatesEvalErrors(t *testing.T) {
	s := openTestStore(t, WithClock(testutil.NewFixedClock(testEpoch)))
	seedPosts(t, s)

	_, err := s.Query(context.Background(), "post", &query.ItemQuery{
		Condition: query.NewCondition("score", model.Null{}, query.OpGreater),
	})
	require.Error(t, err)
	assert.True(t, match.IsNullComparisonError(err))
}

func TestQuery_AbsentFieldsSortLast(t *testing.T) {
	s := openTestStore(t, WithClock(testutil.NewFixedClock(testEpoch)))
	ctx := context.Background()

	_, err := s.Put(ctx, &model.Item{Key: model.NewKey("post", "a"),
		Fields: map[string]model.Value{"rank": model.Number(2)}})
	require.NoError(t, err)
	_, err = s.Put(ctx, &model.Item{Key: model.NewKey("post", "b")})
	require.NoError(t, err)
	_, err = s.Put(ctx, &model.Item{Key: model.NewKey("post", "c"),
		Fields: map[string]model.Value{"rank": model.Number(1)}})
	require.NoError(t, err)

	got, err := s.Query(ctx, "post", &query.ItemQuery{
		OrderBy: []query.OrderBy{{Field: "rank", Direction: query.Asc}},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"c", "a", "b"}, keyIDs(got))
}
