// Package session 包装解码器，提供面向调用方的解析会话与多会话管理
package session

import (
	"sync"

	"github.com/taoyao-code/midi-parser/internal/protocol/midi"
	"github.com/taoyao-code/midi-parser/internal/protocol/midi/event"
)

// Session 单个解析会话：归一化输入后交给解码器
// 内部加锁串行化调用，可在多个 goroutine 间共享
type Session struct {
	mu  sync.Mutex
	dec *midi.Decoder
}

// New 创建使用默认消息工厂的会话
func New(opts ...midi.Option) *Session {
	return &Session{dec: midi.NewDecoder(event.Factory{}, opts...)}
}

// Parse 接收整数/十六进制字符串/嵌套切片的任意组合，返回已完成的消息
func (s *Session) Parse(args ...any) []midi.Message {
	return s.Process(midi.Normalize(args...))
}

// Process 直接追加半字节
func (s *Session) Process(nibbles []midi.Nibble) []midi.Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dec.Process(nibbles)
}

// Buffer 待处理半字节
func (s *Session) Buffer() []midi.Nibble {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dec.Buffer()
}

// BufferString 待处理半字节的十六进制字符串
func (s *Session) BufferString() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dec.BufferString()
}

// ClearBuffer 清空缓冲（运行状态同时失效）
func (s *Session) ClearBuffer() {
	s.mu.Lock()
	s.dec.ClearBuffer()
	s.mu.Unlock()
}

// Stats 累计统计
func (s *Session) Stats() midi.Stats {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dec.Stats()
}

// Snapshot 导出解码器状态
func (s *Session) Snapshot() midi.State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dec.Snapshot()
}

// Restore 恢复解码器状态
func (s *Session) Restore(st midi.State) {
	s.mu.Lock()
	s.dec.Restore(st)
	s.mu.Unlock()
}

// parse 解析并返回本次新增的丢弃半字节数与剩余缓冲长度
func (s *Session) parse(args ...any) (msgs []midi.Message, dropped int64, st midi.State) {
	s.mu.Lock()
	defer s.mu.Unlock()
	before := s.dec.Stats().Dropped
	msgs = s.dec.Process(midi.Normalize(args...))
	return msgs, s.dec.Stats().Dropped - before, s.dec.Snapshot()
}
