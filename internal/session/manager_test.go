package session

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	cfgpkg "github.com/taoyao-code/midi-parser/internal/config"
	"github.com/taoyao-code/midi-parser/internal/metrics"
	"github.com/taoyao-code/midi-parser/internal/protocol/midi"
	"github.com/taoyao-code/midi-parser/internal/protocol/midi/event"
)

// memStore 内存快照存储
type memStore struct {
	mu      sync.Mutex
	data    map[string]midi.State
	saveErr error
}

func newMemStore() *memStore { return &memStore{data: make(map[string]midi.State)} }

func (s *memStore) Save(_ context.Context, id string, st midi.State) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.saveErr != nil {
		return s.saveErr
	}
	s.data[id] = st
	return nil
}

func (s *memStore) Load(_ context.Context, id string) (midi.State, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	st, ok := s.data[id]
	return st, ok, nil
}

func (s *memStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, id)
	return nil
}

func TestManager_CreateParse(t *testing.T) {
	ctx := context.Background()
	m := NewManager(cfgpkg.SessionConfig{MaxSessions: 4})

	id, s, err := m.Create(ctx)
	require.NoError(t, err)
	require.NotNil(t, s)
	assert.NotEmpty(t, id)
	assert.Equal(t, 1, m.Len())

	res, err := m.Parse(ctx, id, "9040")
	require.NoError(t, err)
	assert.Empty(t, res.Messages)
	assert.Equal(t, "9040", res.Buffer)

	res, err = m.Parse(ctx, id, 0x40)
	require.NoError(t, err)
	require.Len(t, res.Messages, 1)
	assert.Equal(t, event.NoteOn{Channel: 0, Note: 0x40, Velocity: 0x40}, res.Messages[0])
	assert.Equal(t, "", res.Buffer)
}

func TestManager_NotFound(t *testing.T) {
	ctx := context.Background()
	m := NewManager(cfgpkg.SessionConfig{})
	_, err := m.Parse(ctx, "missing", "90")
	assert.ErrorIs(t, err, ErrSessionNotFound)
	assert.ErrorIs(t, m.ClearBuffer(ctx, "missing"), ErrSessionNotFound)
	assert.ErrorIs(t, m.Delete(ctx, "missing"), ErrSessionNotFound)
}

func TestManager_Capacity(t *testing.T) {
	ctx := context.Background()
	m := NewManager(cfgpkg.SessionConfig{MaxSessions: 1})
	_, _, err := m.Create(ctx)
	require.NoError(t, err)
	_, _, err = m.Create(ctx)
	assert.ErrorIs(t, err, ErrTooManySessions)
}

func TestManager_ClearAndDelete(t *testing.T) {
	ctx := context.Background()
	m := NewManager(cfgpkg.SessionConfig{})
	id, s, err := m.Create(ctx)
	require.NoError(t, err)

	_, err = m.Parse(ctx, id, "F00102")
	require.NoError(t, err)
	require.NoError(t, m.ClearBuffer(ctx, id))
	assert.Equal(t, "", s.BufferString())

	require.NoError(t, m.Delete(ctx, id))
	assert.Equal(t, 0, m.Len())
	_, err = m.Get(ctx, id)
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestManager_Sweep(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	clock := func() time.Time { return now }
	m := NewManager(cfgpkg.SessionConfig{IdleTimeout: time.Minute}, WithClock(clock))

	idle, _, err := m.Create(ctx)
	require.NoError(t, err)
	now = now.Add(50 * time.Second)
	active, _, err := m.Create(ctx)
	require.NoError(t, err)

	now = now.Add(20 * time.Second)
	_, err = m.Get(ctx, active)
	require.NoError(t, err)

	assert.Equal(t, 1, m.Sweep(now))
	_, err = m.Get(ctx, idle)
	assert.ErrorIs(t, err, ErrSessionNotFound)
	_, err = m.Get(ctx, active)
	assert.NoError(t, err)
}

func TestManager_RestoreFromStore(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	m := NewManager(cfgpkg.SessionConfig{IdleTimeout: time.Minute}, WithStore(store))

	id, _, err := m.Create(ctx)
	require.NoError(t, err)
	_, err = m.Parse(ctx, id, "904040", "40")
	require.NoError(t, err)

	// 内存淘汰后由快照恢复，运行状态一并恢复
	assert.Equal(t, 1, m.Sweep(time.Now().Add(time.Hour)))
	res, err := m.Parse(ctx, id, "7F")
	require.NoError(t, err)
	require.Len(t, res.Messages, 1)
	assert.Equal(t, event.NoteOn{Channel: 0, Note: 0x40, Velocity: 0x7F}, res.Messages[0])

	require.NoError(t, m.Delete(ctx, id))
	_, ok, _ := store.Load(ctx, id)
	assert.False(t, ok)
}

func TestManager_StoreErrorsAreNotFatal(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	store.saveErr = errors.New("boom")
	reg := prometheus.NewRegistry()
	dm := metrics.NewDecoderMetrics(reg)
	m := NewManager(cfgpkg.SessionConfig{}, WithStore(store), WithMetrics(dm))

	id, _, err := m.Create(ctx)
	require.NoError(t, err)
	res, err := m.Parse(ctx, id, "C001")
	require.NoError(t, err)
	assert.Len(t, res.Messages, 1)

	assert.Equal(t, 2.0, testutil.ToFloat64(dm.SnapshotErrors.WithLabelValues("save")))
	assert.Equal(t, 1.0, testutil.ToFloat64(dm.MessagesTotal.WithLabelValues("program_change")))
}

func TestManager_Run(t *testing.T) {
	m := NewManager(cfgpkg.SessionConfig{SweepInterval: 10 * time.Millisecond})
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		m.Run(ctx)
		close(done)
	}()
	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run did not stop after cancel")
	}
}
