package store

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"controlly/internal/core"
	"controlly/internal/storage"
)

func tx(id string, cents int64) core.Transaction {
	return core.Transaction{
		ID:          id,
		Type:        core.Expense,
		Amount:      core.Money{Cents: cents},
		Description: "coffee " + id,
		Category:    "Food",
		Date:        core.NewDate(2024, 3, 15),
		UserID:      core.DefaultUserID,
		CreatedAt:   time.Date(2024, 3, 15, 9, 30, 0, 0, time.UTC),
	}
}

// flakySlot fails loads or saves on demand.
type flakySlot struct {
	storage.Slot
	failLoad bool
	failSave bool
}

func (s *flakySlot) Load(ctx context.Context, key string) ([]byte, error) {
	if s.failLoad {
		return nil, errors.New("disk on fire")
	}
	return s.Slot.Load(ctx, key)
}

func (s *flakySlot) Save(ctx context.Context, key string, payload []byte) error {
	if s.failSave {
		return errors.New("disk full")
	}
	return s.Slot.Save(ctx, key, payload)
}

func TestCollectionRoundTrip(t *testing.T) {
	ctx := context.Background()
	slot := storage.NewMemorySlot()
	c := NewCollection[core.Transaction](slot, TransactionsKey, nil)

	want := []core.Transaction{tx("trans_b", 500), tx("trans_a", 1200), tx("trans_c", 1)}
	require.NoError(t, c.Replace(ctx, want))

	// A fresh collection over the same slot rehydrates the same list in order.
	again := NewCollection[core.Transaction](slot, TransactionsKey, nil)
	got := again.List(ctx)
	require.Len(t, got, 3)
	for i := range want {
		assert.Equal(t, want[i].ID, got[i].ID)
		assert.Equal(t, want[i].Amount, got[i].Amount)
		assert.True(t, want[i].Date.Equal(got[i].Date.Time))
		assert.True(t, want[i].CreatedAt.Equal(got[i].CreatedAt))
	}
}

func TestCollectionEmptyAndMalformed(t *testing.T) {
	ctx := context.Background()
	slot := storage.NewMemorySlot()
	c := NewCollection[core.Card](slot, CardsKey, nil)

	assert.Empty(t, c.List(ctx))
	assert.NotNil(t, c.List(ctx))

	require.NoError(t, slot.Save(ctx, CardsKey, []byte("{not json")))
	assert.Empty(t, c.List(ctx))

	require.NoError(t, slot.Save(ctx, CardsKey, []byte("null")))
	assert.Empty(t, c.List(ctx))

	// Writing over a corrupt slot starts from an empty list.
	require.NoError(t, c.Add(ctx, core.Card{ID: "card_1", Name: "Visa"}))
	assert.Len(t, c.List(ctx), 1)
}

func TestCollectionAddPreservesOrder(t *testing.T) {
	ctx := context.Background()
	c := NewCollection[core.Transaction](storage.NewMemorySlot(), TransactionsKey, nil)

	for _, id := range []string{"trans_3", "trans_1", "trans_2"} {
		require.NoError(t, c.Add(ctx, tx(id, 100)))
	}
	var ids []string
	for _, item := range c.List(ctx) {
		ids = append(ids, item.ID)
	}
	assert.Equal(t, []string{"trans_3", "trans_1", "trans_2"}, ids)

	assert.Error(t, c.Add(ctx, tx("trans_1", 1)), "duplicate ids are rejected")
	assert.Len(t, c.List(ctx), 3)
}

func TestCollectionUpdate(t *testing.T) {
	ctx := context.Background()
	c := NewCollection[core.Transaction](storage.NewMemorySlot(), TransactionsKey, nil)
	require.NoError(t, c.Add(ctx, tx("trans_1", 100)))
	require.NoError(t, c.Add(ctx, tx("trans_2", 200)))

	updated, err := c.Update(ctx, "trans_1", func(t core.Transaction) (core.Transaction, error) {
		t.Amount = core.Money{Cents: 999}
		return t, nil
	})
	require.NoError(t, err)
	assert.Equal(t, int64(999), updated.Amount.Cents)

	list := c.List(ctx)
	assert.Equal(t, "trans_1", list[0].ID, "position is kept")
	assert.Equal(t, int64(999), list[0].Amount.Cents)

	t.Run("missing id leaves list unchanged", func(t *testing.T) {
		before := c.Version()
		_, err := c.Update(ctx, "trans_404", func(t core.Transaction) (core.Transaction, error) {
			return t, nil
		})
		assert.ErrorIs(t, err, core.ErrNotFound)
		assert.Equal(t, before, c.Version())
		assert.Equal(t, list, c.List(ctx))
	})

	t.Run("rejected change is not written", func(t *testing.T) {
		boom := errors.New("nope")
		_, err := c.Update(ctx, "trans_2", func(t core.Transaction) (core.Transaction, error) {
			t.Amount = core.Money{}
			return t, boom
		})
		assert.ErrorIs(t, err, boom)
		got, err := c.Get(ctx, "trans_2")
		require.NoError(t, err)
		assert.Equal(t, int64(200), got.Amount.Cents)
	})
}

func TestCollectionDeleteIdempotent(t *testing.T) {
	ctx := context.Background()
	c := NewCollection[core.Goal](storage.NewMemorySlot(), GoalsKey, nil)
	require.NoError(t, c.Add(ctx, core.Goal{ID: "goal_1"}))
	require.NoError(t, c.Add(ctx, core.Goal{ID: "goal_2"}))

	removed, err := c.Delete(ctx, "goal_1")
	require.NoError(t, err)
	assert.True(t, removed)

	v := c.Version()
	removed, err = c.Delete(ctx, "goal_1")
	require.NoError(t, err)
	assert.False(t, removed)
	assert.Equal(t, v, c.Version(), "second delete does not write")

	list := c.List(ctx)
	require.Len(t, list, 1)
	assert.Equal(t, "goal_2", list[0].ID)

	_, err = c.Get(ctx, "goal_1")
	assert.ErrorIs(t, err, core.ErrNotFound)
}

func TestCollectionSlotFailures(t *testing.T) {
	ctx := context.Background()
	slot := &flakySlot{Slot: storage.NewMemorySlot()}
	c := NewCollection[core.Transaction](slot, TransactionsKey, nil)
	require.NoError(t, c.Add(ctx, tx("trans_1", 100)))

	slot.failLoad = true
	assert.Empty(t, c.List(ctx), "read errors degrade to an empty list")
	slot.failLoad = false

	slot.failSave = true
	err := c.Add(ctx, tx("trans_2", 100))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk full")
	slot.failSave = false

	assert.Len(t, c.List(ctx), 1)
}

func TestCollectionMutatorsKeepRecordsWhenSlotUnreadable(t *testing.T) {
	ctx := context.Background()
	slot := &flakySlot{Slot: storage.NewMemorySlot()}
	c := NewCollection[core.Transaction](slot, TransactionsKey, nil)
	for _, id := range []string{"trans_a", "trans_b", "trans_c"} {
		require.NoError(t, c.Add(ctx, tx(id, 100)))
	}
	v := c.Version()

	slot.failLoad = true
	err := c.Add(ctx, tx("trans_d", 100))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk on fire")

	_, err = c.Update(ctx, "trans_a", func(cur core.Transaction) (core.Transaction, error) { return cur, nil })
	require.Error(t, err)
	assert.NotErrorIs(t, err, core.ErrNotFound)

	removed, err := c.Delete(ctx, "trans_b")
	require.Error(t, err)
	assert.False(t, removed)
	slot.failLoad = false

	assert.Equal(t, v, c.Version(), "nothing written while the slot was unreadable")
	list := c.List(ctx)
	require.Len(t, list, 3)
	assert.Equal(t, "trans_a", list[0].ID)
	assert.Equal(t, "trans_c", list[2].ID)
}

func TestCollectionConcurrentAdds(t *testing.T) {
	ctx := context.Background()
	c := NewCollection[core.Transaction](storage.NewMemorySlot(), TransactionsKey, nil)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			id := "trans_" + string(rune('A'+i%26)) + string(rune('a'+i/26))
			assert.NoError(t, c.Add(ctx, tx(id, int64(i+1))))
		}(i)
	}
	wg.Wait()

	assert.Len(t, c.List(ctx), 50, "no write is lost")
	assert.Equal(t, uint64(50), c.Version())
}
