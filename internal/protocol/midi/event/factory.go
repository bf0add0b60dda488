package event

import "github.com/taoyao-code/midi-parser/internal/protocol/midi"

// Factory 默认消息工厂
type Factory struct{}

var _ midi.Factory = Factory{}

// Build 实现 midi.Factory；缺失的数据字节按 0 处理
func (Factory) Build(kind midi.Kind, status byte, data []byte) midi.Message {
	ch := status & 0x0F
	switch kind {
	case midi.KindNoteOff:
		return NoteOff{Channel: ch, Note: at(data, 0), Velocity: at(data, 1)}
	case midi.KindNoteOn:
		return NoteOn{Channel: ch, Note: at(data, 0), Velocity: at(data, 1)}
	case midi.KindPolyphonicAftertouch:
		return PolyphonicAftertouch{Channel: ch, Note: at(data, 0), Value: at(data, 1)}
	case midi.KindControlChange:
		return ControlChange{Channel: ch, Index: at(data, 0), Value: at(data, 1)}
	case midi.KindProgramChange:
		return ProgramChange{Channel: ch, Program: at(data, 0)}
	case midi.KindChannelAftertouch:
		return ChannelAftertouch{Channel: ch, Value: at(data, 0)}
	case midi.KindPitchBend:
		return PitchBend{Channel: ch, Low: at(data, 0), High: at(data, 1)}
	case midi.KindSystemCommon:
		return SystemCommon{Status: status, Data: append([]byte{}, data...)}
	case midi.KindSystemRealtime:
		return SystemRealtime{ID: ch}
	case midi.KindSystemExclusive:
		return SystemExclusive{Data: append([]byte{status}, data...)}
	}
	return nil
}

func at(data []byte, i int) byte {
	if i < len(data) {
		return data[i]
	}
	return 0
}
