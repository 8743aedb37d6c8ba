package slot_test

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/husca/internal/slot"
)

// marker returns a slot appending before/after markers around next.
func marker(sb *strings.Builder, before, after string) *slot.Slot {
	return slot.Either(func(_ context.Context, next slot.Next) (any, error) {
		sb.WriteString(before)
		res, err := next()
		sb.WriteString(after)
		return res, err
	})
}

func TestCompose_Ordering(t *testing.T) {
	t.Parallel()

	t.Run("two slots and a terminal", func(t *testing.T) {
		t.Parallel()

		var sb strings.Builder
		run := slot.Compose([]*slot.Slot{
			marker(&sb, "a", "b"),
			marker(&sb, "c", "d"),
		})

		_, err := run(context.Background(), func() (any, error) {
			sb.WriteString("e")
			return nil, nil
		})
		require.NoError(t, err)
		require.Equal(t, "acedb", sb.String())
	})

	t.Run("n slots nest in pre-order then post-order", func(t *testing.T) {
		t.Parallel()

		for _, n := range []int{1, 3, 9} {
			var sb strings.Builder
			slots := make([]*slot.Slot, 0, n)
			var want strings.Builder
			for i := 1; i <= n; i++ {
				slots = append(slots, marker(&sb, strconv.Itoa(i), strconv.Itoa(i)))
				want.WriteString(strconv.Itoa(i))
			}
			for i := n; i >= 1; i-- {
				want.WriteString(strconv.Itoa(i))
			}

			_, err := slot.Compose(slots)(context.Background(), nil)
			require.NoError(t, err)
			require.Equal(t, want.String(), sb.String(), "n=%d", n)
		}
	})

	t.Run("manager chain runs every unit once and returns terminal result", func(t *testing.T) {
		t.Parallel()

		var calls []string
		fn1 := slot.Web(func(_ context.Context, next slot.Next) (any, error) {
			calls = append(calls, "fn1")
			return next()
		})
		fn2 := slot.Web(func(_ context.Context, next slot.Next) (any, error) {
			calls = append(calls, "fn2")
			return next()
		})

		set := slot.NewManager(slot.TargetWeb).Load(fn1).Load(fn2)
		res, err := slot.Compose(set.Slots())(context.Background(), func() (any, error) {
			calls = append(calls, "fn3")
			return "succeed", nil
		})

		require.NoError(t, err)
		require.Equal(t, "succeed", res)
		require.Equal(t, []string{"fn1", "fn2", "fn3"}, calls)
	})
}

func TestCompose_Continuation(t *testing.T) {
	t.Parallel()

	t.Run("calling next twice fails the dispatch", func(t *testing.T) {
		t.Parallel()

		downstream := 0
		run := slot.Compose([]*slot.Slot{
			slot.Either(func(_ context.Context, next slot.Next) (any, error) {
				if _, err := next(); err != nil {
					return nil, err
				}
				return next()
			}),
			slot.Either(func(_ context.Context, next slot.Next) (any, error) {
				downstream++
				return next()
			}),
		})

		_, err := run(context.Background(), nil)
		require.ErrorIs(t, err, slot.ErrNextCalledMultipleTimes)
		require.Equal(t, 1, downstream)
	})

	t.Run("error stays visible when the caller swallows it", func(t *testing.T) {
		t.Parallel()

		run := slot.Compose([]*slot.Slot{
			slot.Either(func(_ context.Context, next slot.Next) (any, error) {
				_, _ = next()
				_, _ = next()
				return "ignored", nil
			}),
		})

		res, err := run(context.Background(), nil)
		require.ErrorIs(t, err, slot.ErrNextCalledMultipleTimes)
		require.Nil(t, res)
	})

	t.Run("terminal cannot be reached twice", func(t *testing.T) {
		t.Parallel()

		terminal := 0
		run := slot.Compose([]*slot.Slot{
			slot.Either(func(_ context.Context, next slot.Next) (any, error) {
				_, _ = next()
				return next()
			}),
		})

		_, err := run(context.Background(), func() (any, error) {
			terminal++
			return nil, nil
		})
		require.ErrorIs(t, err, slot.ErrNextCalledMultipleTimes)
		require.Equal(t, 1, terminal)
	})

	t.Run("slot that never calls next stops the chain", func(t *testing.T) {
		t.Parallel()

		reached := false
		run := slot.Compose([]*slot.Slot{
			slot.Either(func(context.Context, slot.Next) (any, error) {
				return "early", nil
			}),
			slot.Either(func(_ context.Context, next slot.Next) (any, error) {
				reached = true
				return next()
			}),
		})

		res, err := run(context.Background(), func() (any, error) {
			reached = true
			return nil, nil
		})
		require.NoError(t, err)
		require.Equal(t, "early", res)
		require.False(t, reached)
	})

	t.Run("nil terminal returns nil result", func(t *testing.T) {
		t.Parallel()

		res, err := slot.Compose([]*slot.Slot{marker(&strings.Builder{}, "", "")})(context.Background(), nil)
		require.NoError(t, err)
		require.Nil(t, res)
	})

	t.Run("empty chain runs terminal directly", func(t *testing.T) {
		t.Parallel()

		res, err := slot.Compose(nil)(context.Background(), func() (any, error) {
			return 7, nil
		})
		require.NoError(t, err)
		require.Equal(t, 7, res)
	})

	t.Run("composed chain can be reused across dispatches", func(t *testing.T) {
		t.Parallel()

		var sb strings.Builder
		run := slot.Compose([]*slot.Slot{marker(&sb, "a", "b")})

		for range 3 {
			_, err := run(context.Background(), nil)
			require.NoError(t, err)
		}
		require.Equal(t, "ababab", sb.String())
	})
}

func TestCompose_Errors(t *testing.T) {
	t.Parallel()

	t.Run("errors propagate unchanged", func(t *testing.T) {
		t.Parallel()

		boom := errors.New("boom")
		var seen error
		run := slot.Compose([]*slot.Slot{
			slot.Either(func(_ context.Context, next slot.Next) (any, error) {
				_, seen = next()
				return nil, seen
			}),
			slot.Either(func(context.Context, slot.Next) (any, error) {
				return nil, boom
			}),
		})

		_, err := run(context.Background(), nil)
		require.Same(t, boom, err)
		require.Same(t, boom, seen)
	})

	t.Run("panic becomes PanicError", func(t *testing.T) {
		t.Parallel()

		run := slot.Compose([]*slot.Slot{
			slot.Either(func(context.Context, slot.Next) (any, error) {
				panic("kaboom")
			}),
		})

		_, err := run(context.Background(), nil)
		require.Error(t, err)

		pe, ok := slot.AsPanicError(err)
		require.True(t, ok)
		assert.Equal(t, "kaboom", pe.Value)
		assert.NotEmpty(t, pe.Stack)
		assert.Equal(t, "panic: kaboom", err.Error())
	})

	t.Run("panic reaches upstream slots as an error", func(t *testing.T) {
		t.Parallel()

		sentinel := errors.New("sentinel")
		var upstream error
		run := slot.Compose([]*slot.Slot{
			slot.Either(func(_ context.Context, next slot.Next) (any, error) {
				_, upstream = next()
				return "recovered", nil
			}),
			slot.Either(func(context.Context, slot.Next) (any, error) {
				panic(sentinel)
			}),
		})

		res, err := run(context.Background(), nil)
		require.NoError(t, err)
		require.Equal(t, "recovered", res)
		require.ErrorIs(t, upstream, sentinel)
	})

	t.Run("panic in terminal is converted", func(t *testing.T) {
		t.Parallel()

		_, err := slot.Compose(nil)(context.Background(), func() (any, error) {
			panic("terminal")
		})
		_, ok := slot.AsPanicError(err)
		require.True(t, ok)
	})
}

func TestComposeToSlot(t *testing.T) {
	t.Parallel()

	var sb strings.Builder
	inner := slot.ComposeToSlot([]*slot.Slot{
		marker(&sb, "b", "c"),
		marker(&sb, "d", "e"),
	})
	require.Equal(t, slot.TargetEither, inner.Target())

	set := slot.NewManager(slot.TargetCommand).
		Load(marker(&sb, "a", "g")).
		Load(inner)

	res, err := slot.Compose(set.Slots())(context.Background(), func() (any, error) {
		sb.WriteString("f")
		return "done", nil
	})
	require.NoError(t, err)
	require.Equal(t, "done", res)
	require.Equal(t, "abdfecg", sb.String())
}
