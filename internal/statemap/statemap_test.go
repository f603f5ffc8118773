package statemap

import (
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAbsentKeyIsIdle(t *testing.T) {
	s := New[string]()
	_, ok := s.Pending("a")
	assert.False(t, ok)
	assert.False(t, s.InFlight("a"))
	assert.NoError(t, s.Err("a"))
	assert.Equal(t, "persisted", s.Value("a", "persisted"))
	assert.Zero(t, s.Len())
}

func TestPendingValueOverridesPersisted(t *testing.T) {
	s := New[string]()
	s.SetPending("a", "Completed")
	assert.Equal(t, "Completed", s.Value("a", "Pending"))

	s.ClearPending("a")
	assert.Equal(t, "Pending", s.Value("a", "Pending"))
	assert.Zero(t, s.Len(), "clearing the last piece of state should drop the key")
}

func TestBeginIsExclusivePerKey(t *testing.T) {
	s := New[int]()
	require.True(t, s.Begin("a"))
	assert.False(t, s.Begin("a"))
	assert.True(t, s.Begin("b"), "sibling keys are independent")

	s.End("a")
	assert.False(t, s.InFlight("a"))
	assert.True(t, s.InFlight("b"))
}

func TestFailKeepsPendingAndRecordsError(t *testing.T) {
	s := New[string]()
	s.SetPending("a", "draft")
	require.True(t, s.Begin("a"))

	boom := errors.New("boom")
	s.Fail("a", boom)

	v, ok := s.Pending("a")
	assert.True(t, ok)
	assert.Equal(t, "draft", v)
	assert.False(t, s.InFlight("a"))
	assert.ErrorIs(t, s.Err("a"), boom)

	require.True(t, s.Begin("a"))
	assert.NoError(t, s.Err("a"), "a new attempt clears the previous error")
}

func TestRetainEvictsAbsentIdleRecords(t *testing.T) {
	s := New[string]()
	s.SetPending("keep", "x")
	s.SetPending("gone", "y")
	s.SetPending("busy", "z")
	require.True(t, s.Begin("busy"))

	n := s.Retain(map[string]struct{}{"keep": {}})
	assert.Equal(t, 1, n)
	assert.Equal(t, 2, s.Len())
	_, ok := s.Pending("gone")
	assert.False(t, ok)
	assert.True(t, s.InFlight("busy"))
}

func TestEvictAndReset(t *testing.T) {
	s := New[string]()
	s.SetPending("a", "1")
	s.SetPending("b", "2")
	s.Evict("a")
	assert.Equal(t, 1, s.Len())
	s.Reset()
	assert.Zero(t, s.Len())
}

func TestConcurrentKeys(t *testing.T) {
	s := New[int]()
	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			id := string(rune('a' + i%8))
			s.SetPending(id, i)
			if s.Begin(id) {
				s.End(id)
			}
		}(i)
	}
	wg.Wait()
	assert.Equal(t, 8, s.Len())
}

func TestRejectLeavesInFlightAlone(t *testing.T) {
	s := New[string]()
	require.True(t, s.Begin("a"))
	s.Reject("a", errors.New("invalid"))
	assert.True(t, s.InFlight("a"))
	assert.EqualError(t, s.Err("a"), "invalid")

	s.Reject("b", errors.New("invalid"))
	assert.False(t, s.InFlight("b"))
	assert.Equal(t, 2, s.Len())
}

func TestClearErrMatchesOnly(t *testing.T) {
	s := New[string]()
	invalid := errors.New("invalid")
	s.Reject("a", invalid)
	s.Fail("b", errors.New("remote"))

	isInvalid := func(err error) bool { return errors.Is(err, invalid) }
	s.ClearErr("a", isInvalid)
	s.ClearErr("b", isInvalid)
	assert.NoError(t, s.Err("a"))
	assert.EqualError(t, s.Err("b"), "remote")
	assert.Equal(t, 1, s.Len(), "cleared entry with no other state is dropped")

	s.ClearErr("b", nil)
	assert.NoError(t, s.Err("b"))
	assert.Zero(t, s.Len())
}
