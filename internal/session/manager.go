package session

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	cfgpkg "github.com/taoyao-code/midi-parser/internal/config"
	"github.com/taoyao-code/midi-parser/internal/metrics"
	"github.com/taoyao-code/midi-parser/internal/protocol/midi"
	"github.com/taoyao-code/midi-parser/internal/protocol/midi/event"
)

var (
	ErrSessionNotFound = errors.New("session not found")
	ErrTooManySessions = errors.New("too many sessions")
)

// SnapshotStore 会话快照存储（内存之外的持久化，可选）
type SnapshotStore interface {
	Save(ctx context.Context, id string, st midi.State) error
	Load(ctx context.Context, id string) (midi.State, bool, error)
	Delete(ctx context.Context, id string) error
}

// Result 一次解析的结果
type Result struct {
	Messages []midi.Message
	Buffer   string
	Dropped  int64
}

type entry struct {
	sess     *Session
	lastSeen time.Time
}

// Manager 会话管理：按 id 保存会话，空闲超时淘汰
type Manager struct {
	mu       sync.RWMutex
	sessions map[string]*entry
	max      int
	timeout  time.Duration
	interval time.Duration

	store   SnapshotStore
	metrics *metrics.DecoderMetrics
	logger  *zap.Logger
	now     func() time.Time
}

// ManagerOption 管理器选项
type ManagerOption func(*Manager)

// WithStore 启用快照存储
func WithStore(s SnapshotStore) ManagerOption { return func(m *Manager) { m.store = s } }

// WithMetrics 启用指标
func WithMetrics(dm *metrics.DecoderMetrics) ManagerOption { return func(m *Manager) { m.metrics = dm } }

// WithManagerLogger 设置日志器
func WithManagerLogger(l *zap.Logger) ManagerOption {
	return func(m *Manager) {
		if l != nil {
			m.logger = l
		}
	}
}

// WithClock 替换时钟（测试用）
func WithClock(now func() time.Time) ManagerOption { return func(m *Manager) { m.now = now } }

// NewManager 创建会话管理器
func NewManager(cfg cfgpkg.SessionConfig, opts ...ManagerOption) *Manager {
	m := &Manager{
		sessions: make(map[string]*entry),
		max:      cfg.MaxSessions,
		timeout:  cfg.IdleTimeout,
		interval: cfg.SweepInterval,
		logger:   zap.NewNop(),
		now:      time.Now,
	}
	if m.timeout <= 0 {
		m.timeout = 10 * time.Minute
	}
	if m.interval <= 0 {
		m.interval = time.Minute
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

func (m *Manager) newSession() *Session {
	return New(midi.WithLogger(m.logger))
}

// Create 新建会话
func (m *Manager) Create(ctx context.Context) (string, *Session, error) {
	id := uuid.NewString()
	s := m.newSession()

	m.mu.Lock()
	if m.max > 0 && len(m.sessions) >= m.max {
		m.mu.Unlock()
		return "", nil, ErrTooManySessions
	}
	m.sessions[id] = &entry{sess: s, lastSeen: m.now()}
	n := len(m.sessions)
	m.mu.Unlock()

	m.metrics.SetSessions(n)
	m.logger.Debug("session created", zap.String("id", id))
	m.save(ctx, id, s.Snapshot())
	return id, s, nil
}

// Get 获取会话；内存未命中时尝试从快照恢复
func (m *Manager) Get(ctx context.Context, id string) (*Session, error) {
	m.mu.Lock()
	if e, ok := m.sessions[id]; ok {
		e.lastSeen = m.now()
		m.mu.Unlock()
		return e.sess, nil
	}
	m.mu.Unlock()

	if m.store == nil {
		return nil, ErrSessionNotFound
	}
	st, ok, err := m.store.Load(ctx, id)
	if err != nil {
		m.metrics.SnapshotError("load")
		m.logger.Warn("session snapshot load failed", zap.String("id", id), zap.Error(err))
		return nil, ErrSessionNotFound
	}
	if !ok {
		return nil, ErrSessionNotFound
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if e, ok := m.sessions[id]; ok {
		// 并发恢复时以先到者为准
		return e.sess, nil
	}
	if m.max > 0 && len(m.sessions) >= m.max {
		return nil, ErrTooManySessions
	}
	s := m.newSession()
	s.Restore(st)
	m.sessions[id] = &entry{sess: s, lastSeen: m.now()}
	m.metrics.SetSessions(len(m.sessions))
	m.logger.Info("session restored from snapshot", zap.String("id", id), zap.Int("pending", len(st.Buffer)))
	return s, nil
}

// Parse 向指定会话输入数据
func (m *Manager) Parse(ctx context.Context, id string, args ...any) (Result, error) {
	s, err := m.Get(ctx, id)
	if err != nil {
		return Result{}, err
	}
	msgs, dropped, st := s.parse(args...)
	m.metrics.ObserveParse("session", event.Kinds(msgs), dropped, len(st.Buffer))
	m.save(ctx, id, st)
	return Result{Messages: msgs, Buffer: st.Buffer, Dropped: dropped}, nil
}

// ClearBuffer 清空指定会话缓冲
func (m *Manager) ClearBuffer(ctx context.Context, id string) error {
	s, err := m.Get(ctx, id)
	if err != nil {
		return err
	}
	s.ClearBuffer()
	m.save(ctx, id, s.Snapshot())
	return nil
}

// Delete 删除会话
func (m *Manager) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	_, ok := m.sessions[id]
	delete(m.sessions, id)
	n := len(m.sessions)
	m.mu.Unlock()

	if m.store != nil {
		found, err := m.deleteStored(ctx, id)
		ok = ok || found
		if err != nil {
			m.metrics.SnapshotError("delete")
			m.logger.Warn("session snapshot delete failed", zap.String("id", id), zap.Error(err))
		}
	}
	if !ok {
		return ErrSessionNotFound
	}
	m.metrics.SetSessions(n)
	return nil
}

func (m *Manager) deleteStored(ctx context.Context, id string) (bool, error) {
	_, found, err := m.store.Load(ctx, id)
	if err != nil {
		return false, err
	}
	return found, m.store.Delete(ctx, id)
}

// Len 当前内存中的会话数
func (m *Manager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// Sweep 淘汰空闲超时的会话（快照由存储 TTL 自行过期），返回淘汰数量
func (m *Manager) Sweep(now time.Time) int {
	m.mu.Lock()
	evicted := 0
	for id, e := range m.sessions {
		if now.Sub(e.lastSeen) > m.timeout {
			delete(m.sessions, id)
			evicted++
		}
	}
	n := len(m.sessions)
	m.mu.Unlock()

	if evicted > 0 {
		m.metrics.Evicted(evicted)
		m.metrics.SetSessions(n)
		m.logger.Info("idle sessions evicted", zap.Int("count", evicted), zap.Int("remaining", n))
	}
	return evicted
}

// Run 周期性淘汰，直到 ctx 取消
func (m *Manager) Run(ctx context.Context) {
	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.Sweep(m.now())
		}
	}
}

func (m *Manager) save(ctx context.Context, id string, st midi.State) {
	if m.store == nil {
		return
	}
	if err := m.store.Save(ctx, id, st); err != nil {
		m.metrics.SnapshotError("save")
		m.logger.Warn("session snapshot save failed", zap.String("id", id), zap.Error(err))
	}
}

