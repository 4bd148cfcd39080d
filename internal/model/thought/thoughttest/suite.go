// Package thoughttest provides a conformance suite shared by every
// thought.Store backend.
package thoughttest

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zhouzirui/happy-thoughts/backend/internal/model/thought"
)

// Factory returns an empty store. It is called once per subtest.
type Factory func(t *testing.T) thought.Store

func sample(message string, createdAt int64) thought.Thought {
	return thought.Thought{ID: thought.NewID(), Message: message, CreatedAt: createdAt}
}

// RunStoreTests exercises the Store contract against the given backend.
func RunStoreTests(t *testing.T, newStore Factory) {
	t.Helper()
	ctx := context.Background()

	t.Run("List empty", func(t *testing.T) {
		s := newStore(t)
		got, err := s.List(ctx, thought.ListLimit)
		require.NoError(t, err)
		assert.Empty(t, got)
	})

	t.Run("List newest first with limit", func(t *testing.T) {
		s := newStore(t)
		for i := 0; i < 25; i++ {
			require.NoError(t, s.Insert(ctx, sample(fmt.Sprintf("thought number %02d", i), int64(1000+i))))
		}
		got, err := s.List(ctx, thought.ListLimit)
		require.NoError(t, err)
		require.Len(t, got, thought.ListLimit)
		assert.Equal(t, "thought number 24", got[0].Message)
		assert.Equal(t, "thought number 05", got[len(got)-1].Message)
		for i := 1; i < len(got); i++ {
			assert.GreaterOrEqual(t, got[i-1].CreatedAt, got[i].CreatedAt)
		}
	})

	t.Run("List breaks createdAt ties by insertion", func(t *testing.T) {
		s := newStore(t)
		first := sample("first of the same millisecond", 5000)
		second := sample("second of the same millisecond", 5000)
		require.NoError(t, s.Insert(ctx, first))
		require.NoError(t, s.Insert(ctx, second))

		got, err := s.List(ctx, thought.ListLimit)
		require.NoError(t, err)
		require.Len(t, got, 2)
		assert.Equal(t, second.ID, got[0].ID)
		assert.Equal(t, first.ID, got[1].ID)
	})

	t.Run("Insert round trips every field", func(t *testing.T) {
		s := newStore(t)
		in := sample("round trip message", 1700000000123)
		require.NoError(t, s.Insert(ctx, in))

		got, err := s.List(ctx, thought.ListLimit)
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, in, got[0])
	})

	t.Run("Insert rejects duplicate message", func(t *testing.T) {
		s := newStore(t)
		require.NoError(t, s.Insert(ctx, sample("only once please", 1)))
		err := s.Insert(ctx, sample("only once please", 2))
		assert.ErrorIs(t, err, thought.ErrDuplicateMessage)
	})

	t.Run("IncrementHearts", func(t *testing.T) {
		s := newStore(t)
		in := sample("give me a heart", 42)
		require.NoError(t, s.Insert(ctx, in))

		got, err := s.IncrementHearts(ctx, in.ID)
		require.NoError(t, err)
		assert.Equal(t, 1, got.Hearts)
		assert.Equal(t, in.Message, got.Message)
		assert.Equal(t, in.CreatedAt, got.CreatedAt)

		got, err = s.IncrementHearts(ctx, in.ID)
		require.NoError(t, err)
		assert.Equal(t, 2, got.Hearts)
	})

	t.Run("IncrementHearts missing", func(t *testing.T) {
		s := newStore(t)
		_, err := s.IncrementHearts(ctx, thought.NewID())
		assert.ErrorIs(t, err, thought.ErrNotFound)
	})

	t.Run("IncrementHearts concurrently", func(t *testing.T) {
		s := newStore(t)
		in := sample("popular thought", 7)
		require.NoError(t, s.Insert(ctx, in))

		const likes = 40
		var wg sync.WaitGroup
		errs := make(chan error, likes)
		for i := 0; i < likes; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				if _, err := s.IncrementHearts(ctx, in.ID); err != nil {
					errs <- err
				}
			}()
		}
		wg.Wait()
		close(errs)
		for err := range errs {
			require.NoError(t, err)
		}

		got, err := s.List(ctx, thought.ListLimit)
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, likes, got[0].Hearts)
	})

	t.Run("List while liking and editing", func(t *testing.T) {
		s := newStore(t)
		in := sample("read me while i change", 3)
		require.NoError(t, s.Insert(ctx, in))

		const rounds = 200
		var wg sync.WaitGroup
		wg.Add(2)
		go func() {
			defer wg.Done()
			for i := 0; i < rounds; i++ {
				_, _ = s.IncrementHearts(ctx, in.ID)
			}
		}()
		go func() {
			defer wg.Done()
			for i := 0; i < rounds; i++ {
				_, _ = s.UpdateMessage(ctx, in.ID, fmt.Sprintf("edited version %03d", i))
			}
		}()

		last := 0
		for i := 0; i < rounds; i++ {
			got, err := s.List(ctx, thought.ListLimit)
			require.NoError(t, err)
			require.Len(t, got, 1)
			require.GreaterOrEqual(t, got[0].Hearts, last)
			last = got[0].Hearts
			require.Equal(t, in.ID, got[0].ID)
		}
		wg.Wait()

		got, err := s.List(ctx, thought.ListLimit)
		require.NoError(t, err)
		assert.Equal(t, rounds, got[0].Hearts)
		assert.Equal(t, "edited version 199", got[0].Message)
	})

	t.Run("Delete", func(t *testing.T) {
		s := newStore(t)
		keep := sample("this one stays", 1)
		gone := sample("this one goes away", 2)
		require.NoError(t, s.Insert(ctx, keep))
		require.NoError(t, s.Insert(ctx, gone))

		removed, err := s.Delete(ctx, gone.ID)
		require.NoError(t, err)
		assert.Equal(t, gone, removed)

		got, err := s.List(ctx, thought.ListLimit)
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, keep.ID, got[0].ID)

		_, err = s.Delete(ctx, gone.ID)
		assert.ErrorIs(t, err, thought.ErrNotFound)
	})

	t.Run("Delete frees the message", func(t *testing.T) {
		s := newStore(t)
		in := sample("reusable message", 1)
		require.NoError(t, s.Insert(ctx, in))
		_, err := s.Delete(ctx, in.ID)
		require.NoError(t, err)
		assert.NoError(t, s.Insert(ctx, sample("reusable message", 2)))
	})

	t.Run("UpdateMessage", func(t *testing.T) {
		s := newStore(t)
		in := sample("before the edit", 99)
		require.NoError(t, s.Insert(ctx, in))
		_, err := s.IncrementHearts(ctx, in.ID)
		require.NoError(t, err)

		got, err := s.UpdateMessage(ctx, in.ID, "after the edit")
		require.NoError(t, err)
		assert.Equal(t, in.ID, got.ID)
		assert.Equal(t, "after the edit", got.Message)
		assert.Equal(t, 1, got.Hearts)
		assert.Equal(t, in.CreatedAt, got.CreatedAt)

		// the old message is free again
		assert.NoError(t, s.Insert(ctx, sample("before the edit", 100)))
	})

	t.Run("UpdateMessage keeps own message", func(t *testing.T) {
		s := newStore(t)
		in := sample("unchanged message", 1)
		require.NoError(t, s.Insert(ctx, in))
		got, err := s.UpdateMessage(ctx, in.ID, in.Message)
		require.NoError(t, err)
		assert.Equal(t, in.Message, got.Message)
	})

	t.Run("UpdateMessage duplicate", func(t *testing.T) {
		s := newStore(t)
		a := sample("first message here", 1)
		b := sample("second message here", 2)
		require.NoError(t, s.Insert(ctx, a))
		require.NoError(t, s.Insert(ctx, b))
		_, err := s.UpdateMessage(ctx, b.ID, a.Message)
		assert.ErrorIs(t, err, thought.ErrDuplicateMessage)
	})

	t.Run("UpdateMessage missing", func(t *testing.T) {
		s := newStore(t)
		_, err := s.UpdateMessage(ctx, thought.NewID(), "nobody home here")
		assert.ErrorIs(t, err, thought.ErrNotFound)
	})

	t.Run("Ping", func(t *testing.T) {
		s := newStore(t)
		assert.NoError(t, s.Ping(ctx))
	})
}
