// Package event 提供默认的 MIDI 消息类型与工厂
package event

import (
	"github.com/taoyao-code/midi-parser/internal/protocol/midi"
)

// Message 默认工厂产出的消息
type Message interface {
	Kind() midi.Kind
	// Bytes 还原消息的原始字节（含状态字节）
	Bytes() []byte
}

// NoteOff 0x8n
type NoteOff struct {
	Channel  uint8 `json:"channel"`
	Note     uint8 `json:"note"`
	Velocity uint8 `json:"velocity"`
}

func (NoteOff) Kind() midi.Kind { return midi.KindNoteOff }
func (m NoteOff) Bytes() []byte { return []byte{0x80 | m.Channel, m.Note, m.Velocity} }

// NoteOn 0x9n
type NoteOn struct {
	Channel  uint8 `json:"channel"`
	Note     uint8 `json:"note"`
	Velocity uint8 `json:"velocity"`
}

func (NoteOn) Kind() midi.Kind { return midi.KindNoteOn }
func (m NoteOn) Bytes() []byte { return []byte{0x90 | m.Channel, m.Note, m.Velocity} }

// PolyphonicAftertouch 0xAn
type PolyphonicAftertouch struct {
	Channel uint8 `json:"channel"`
	Note    uint8 `json:"note"`
	Value   uint8 `json:"value"`
}

func (PolyphonicAftertouch) Kind() midi.Kind { return midi.KindPolyphonicAftertouch }
func (m PolyphonicAftertouch) Bytes() []byte { return []byte{0xA0 | m.Channel, m.Note, m.Value} }

// ControlChange 0xBn
type ControlChange struct {
	Channel uint8 `json:"channel"`
	Index   uint8 `json:"index"`
	Value   uint8 `json:"value"`
}

func (ControlChange) Kind() midi.Kind { return midi.KindControlChange }
func (m ControlChange) Bytes() []byte { return []byte{0xB0 | m.Channel, m.Index, m.Value} }

// ProgramChange 0xCn
type ProgramChange struct {
	Channel uint8 `json:"channel"`
	Program uint8 `json:"program"`
}

func (ProgramChange) Kind() midi.Kind { return midi.KindProgramChange }
func (m ProgramChange) Bytes() []byte { return []byte{0xC0 | m.Channel, m.Program} }

// ChannelAftertouch 0xDn
type ChannelAftertouch struct {
	Channel uint8 `json:"channel"`
	Value   uint8 `json:"value"`
}

func (ChannelAftertouch) Kind() midi.Kind { return midi.KindChannelAftertouch }
func (m ChannelAftertouch) Bytes() []byte { return []byte{0xD0 | m.Channel, m.Value} }

// PitchBend 0xEn，Low/High 为 7 位
type PitchBend struct {
	Channel uint8 `json:"channel"`
	Low     uint8 `json:"low"`
	High    uint8 `json:"high"`
}

func (PitchBend) Kind() midi.Kind { return midi.KindPitchBend }
func (m PitchBend) Bytes() []byte { return []byte{0xE0 | m.Channel, m.Low, m.High} }

// Value 14 位弯音值，0x2000 为中心
func (m PitchBend) Value() int { return int(m.High&0x7F)<<7 | int(m.Low&0x7F) }

// SystemCommon 0xF1~0xF6，数据字节 0~2 个
type SystemCommon struct {
	Status uint8   `json:"status"`
	Data   []uint8 `json:"data"`
}

func (SystemCommon) Kind() midi.Kind { return midi.KindSystemCommon }
func (m SystemCommon) Bytes() []byte { return append([]byte{m.Status}, m.Data...) }

// SystemRealtime 0xF8~0xFF，ID 为低四位
type SystemRealtime struct {
	ID uint8 `json:"id"`
}

func (SystemRealtime) Kind() midi.Kind { return midi.KindSystemRealtime }
func (m SystemRealtime) Bytes() []byte { return []byte{0xF0 | m.ID} }

var realtimeNames = map[uint8]string{
	0x8: "clock",
	0xA: "start",
	0xB: "continue",
	0xC: "stop",
	0xE: "active_sensing",
	0xF: "reset",
}

// Name 实时消息名称，未定义的返回 undefined
func (m SystemRealtime) Name() string {
	if s, ok := realtimeNames[m.ID]; ok {
		return s
	}
	return "undefined"
}

// SystemExclusive 0xF0 ... 0xF7，Data 含首尾
type SystemExclusive struct {
	Data []uint8 `json:"data"`
}

func (SystemExclusive) Kind() midi.Kind { return midi.KindSystemExclusive }
func (m SystemExclusive) Bytes() []byte { return append([]byte(nil), m.Data...) }

// Payload 去掉 0xF0 与 0xF7 后的内容
func (m SystemExclusive) Payload() []byte {
	if len(m.Data) < 2 {
		return nil
	}
	return append([]byte(nil), m.Data[1:len(m.Data)-1]...)
}
