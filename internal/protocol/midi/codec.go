package midi

// Kind 消息族
type Kind uint8

const (
	KindUnknown Kind = iota
	KindNoteOff
	KindNoteOn
	KindPolyphonicAftertouch
	KindControlChange
	KindProgramChange
	KindChannelAftertouch
	KindPitchBend
	KindSystemCommon
	KindSystemRealtime
	KindSystemExclusive
)

var kindNames = map[Kind]string{
	KindNoteOff:              "note_off",
	KindNoteOn:               "note_on",
	KindPolyphonicAftertouch: "polyphonic_aftertouch",
	KindControlChange:        "control_change",
	KindProgramChange:        "program_change",
	KindChannelAftertouch:    "channel_aftertouch",
	KindPitchBend:            "pitch_bend",
	KindSystemCommon:         "system_common",
	KindSystemRealtime:       "system_realtime",
	KindSystemExclusive:      "system_exclusive",
}

func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return "unknown"
}

// IsChannel 是否为通道消息
func (k Kind) IsChannel() bool { return k >= KindNoteOff && k <= KindPitchBend }

// CodecEntry 消息族的帧描述：帧长(半字节数，含状态字节)与处理器
type CodecEntry struct {
	Kind    Kind `json:"kind"`
	Nibbles int  `json:"nibbles"`
}

// channelTable 通道消息，按状态字节高四位精确匹配
var channelTable = map[Nibble]CodecEntry{
	0x8: {Kind: KindNoteOff, Nibbles: 6},
	0x9: {Kind: KindNoteOn, Nibbles: 6},
	0xA: {Kind: KindPolyphonicAftertouch, Nibbles: 6},
	0xB: {Kind: KindControlChange, Nibbles: 6},
	0xC: {Kind: KindProgramChange, Nibbles: 4},
	0xD: {Kind: KindChannelAftertouch, Nibbles: 4},
	0xE: {Kind: KindPitchBend, Nibbles: 6},
}

// systemRange 系统消息按状态字节低四位的区间匹配
type systemRange struct {
	lo, hi Nibble
	entry  CodecEntry
}

// systemTable 顺序有意义：先 common(0x1~0x6) 后 realtime(0x8~0xF)
var systemTable = []systemRange{
	{lo: 0x1, hi: 0x6, entry: CodecEntry{Kind: KindSystemCommon, Nibbles: 6}},
	{lo: 0x8, hi: 0xF, entry: CodecEntry{Kind: KindSystemRealtime, Nibbles: 2}},
}

// systemCommonLengths System Common 可能携带 2/1/0 个数据字节，从长到短依次尝试
var systemCommonLengths = []int{6, 4, 2}

const (
	sysexStart byte = 0xF0
	sysexEnd   byte = 0xF7
)

// ChannelEntry 按高四位查通道消息
func ChannelEntry(n Nibble) (CodecEntry, bool) {
	e, ok := channelTable[n]
	return e, ok
}

// SystemEntry 按低四位查系统消息（0x0 为 SysEx，不走此表；0x7 无匹配）
func SystemEntry(n Nibble) (CodecEntry, bool) {
	for _, r := range systemTable {
		if n >= r.lo && n <= r.hi {
			return r.entry, true
		}
	}
	return CodecEntry{}, false
}
