// Package midi 增量解码 MIDI 字节流。
//
// 输入以半字节为单位追加到内部缓冲，可跨多次调用拼出完整消息；
// 支持运行状态（省略重复状态字节）与以 0xF7 结束的 System Exclusive。
package midi

import (
	"go.uber.org/zap"
)

// Message 由 Factory 构造的消息值，解码器不关心其具体结构
type Message = any

// Factory 消息工厂：按消息族、状态字节与数据字节构造消息
// SysEx 的 data 包含结束符 0xF7
type Factory interface {
	Build(kind Kind, status byte, data []byte) Message
}

// FactoryFunc 函数适配器
type FactoryFunc func(kind Kind, status byte, data []byte) Message

func (f FactoryFunc) Build(kind Kind, status byte, data []byte) Message { return f(kind, status, data) }

// Stats 累计统计
type Stats struct {
	Messages int64 `json:"messages"`
	Dropped  int64 `json:"dropped"` // 因无法识别而丢弃的半字节
}

// Option 解码器选项
type Option func(*Decoder)

// WithLogger 设置日志器（默认 zap.NewNop）
func WithLogger(l *zap.Logger) Option {
	return func(d *Decoder) {
		if l != nil {
			d.logger = l
		}
	}
}

// Decoder 流式解码器，非并发安全；不同实例之间无共享状态
type Decoder struct {
	buf     []Nibble
	running runningStatusSlot
	factory Factory
	logger  *zap.Logger
	stats   Stats
}

// NewDecoder 创建解码器
func NewDecoder(factory Factory, opts ...Option) *Decoder {
	d := &Decoder{factory: factory, logger: zap.NewNop()}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Process 追加半字节并尽可能解出多条消息，按完成顺序返回
func (d *Decoder) Process(nibbles []Nibble) []Message {
	d.buf = append(d.buf, nibbles...)
	messages := make([]Message, 0, 1)

	pointer := 0
	for pointer <= len(d.buf)-1 {
		fragment := d.buf[pointer:]
		res := d.decodeFrame(fragment)
		switch res.outcome {
		case frameOK:
			if pointer > 0 {
				d.stats.Dropped += int64(pointer)
				d.logger.Debug("midi nibbles dropped",
					zap.Int("count", pointer),
					zap.String("nibbles", NibblesToString(d.buf[:pointer])))
			}
			messages = append(messages, res.message)
			d.stats.Messages++
			// 丢弃已消耗部分（含指针之前无法识别的半字节），剩余部分从头重扫
			d.buf = append(d.buf[:0], fragment[res.consumed:]...)
			pointer = 0
		case frameNoMatch:
			d.running.cancel()
			pointer++
		default:
			if len(fragment) >= 2 && fragment[0] == 0xF && fragment[1] == 0x0 {
				d.logger.Debug("midi sysex pending", zap.Int("nibbles", len(fragment)))
			}
			return messages
		}
	}
	return messages
}

// Buffer 待处理半字节的只读快照
func (d *Decoder) Buffer() []Nibble {
	out := make([]Nibble, len(d.buf))
	copy(out, d.buf)
	return out
}

// BufferString 待处理半字节拼接为字符串
func (d *Decoder) BufferString() string { return NibblesToString(d.buf) }

// ClearBuffer 清空缓冲，同时使运行状态失效
func (d *Decoder) ClearBuffer() {
	d.buf = d.buf[:0]
	d.running.cancel()
}

// RunningStatus 当前运行状态
func (d *Decoder) RunningStatus() (RunningStatus, bool) { return d.running.current() }

// Stats 返回累计统计
func (d *Decoder) Stats() Stats { return d.stats }

// State 可序列化的解码器状态
type State struct {
	Buffer  string         `json:"buffer"`
	Running *RunningStatus `json:"running,omitempty"`
}

// Snapshot 导出当前状态
func (d *Decoder) Snapshot() State {
	st := State{Buffer: d.BufferString()}
	if rs, ok := d.running.current(); ok {
		st.Running = &rs
	}
	return st
}

// Restore 用快照覆盖当前缓冲与运行状态
func (d *Decoder) Restore(st State) {
	d.buf = append(d.buf[:0], HexStringToNibbles(st.Buffer)...)
	d.running.cancel()
	if st.Running != nil && st.Running.Residual > 0 {
		rs := *st.Running
		d.running.state = &rs
	}
}
