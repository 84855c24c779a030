package session

import (
	"sync"
	"testing"

	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/paveg/plotdeck/internal/errors"
	"github.com/paveg/plotdeck/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistryReplace(t *testing.T) {
	mem := memory.NewCheckedAllocator(memory.NewGoAllocator())
	defer mem.AssertSize(t, 0)

	reg := NewRegistry()
	first := reg.Replace("a.csv", testutil.SalesFrame(mem))

	err := reg.Use(first.ID, func(got *Session) error {
		assert.Same(t, first, got)
		assert.Equal(t, "a.csv", got.Filename)
		return nil
	})
	require.NoError(t, err)

	second := reg.Replace("b.csv", testutil.SalesFrame(mem))
	assert.NotEqual(t, first.ID, second.ID)

	err = reg.Use(first.ID, func(*Session) error { return nil })
	assert.Equal(t, errors.SessionNotFound, errors.KindOf(err))

	current, ok := reg.Current()
	require.True(t, ok)
	assert.Same(t, second, current)

	reg.Close()
	_, ok = reg.Current()
	assert.False(t, ok)
}

func TestRegistryUnknownID(t *testing.T) {
	err := NewRegistry().Use("missing", func(*Session) error { return nil })
	require.Error(t, err)
	assert.ErrorIs(t, err, errors.ErrSessionNotFound)
}

func TestRegistryConcurrentAccess(t *testing.T) {
	mem := memory.NewGoAllocator()
	reg := NewRegistry()
	defer reg.Close()

	var wg sync.WaitGroup
	for range 8 {
		wg.Add(2)
		go func() {
			defer wg.Done()
			reg.Replace("x.csv", testutil.SalesFrame(mem))
		}()
		go func() {
			defer wg.Done()
			if s, ok := reg.Current(); ok {
				_ = reg.Use(s.ID, func(cur *Session) error {
					_ = cur.Frame.Len()
					return nil
				})
			}
		}()
	}
	wg.Wait()

	_, ok := reg.Current()
	assert.True(t, ok)
}

func TestRegistryUse(t *testing.T) {
	mem := memory.NewGoAllocator()
	reg := NewRegistry()
	defer reg.Close()

	s := reg.Replace("a.csv", testutil.SalesFrame(mem))

	var rows int
	require.NoError(t, reg.Use(s.ID, func(s *Session) error {
		rows = s.Frame.Len()
		return nil
	}))
	assert.Equal(t, 4, rows)

	err := reg.Use("stale", func(*Session) error {
		t.Fatal("fn must not run for an unknown session")
		return nil
	})
	assert.Equal(t, errors.SessionNotFound, errors.KindOf(err))
}
