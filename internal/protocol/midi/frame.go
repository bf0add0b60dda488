package midi

// frameOutcome 帧判定结果
type frameOutcome int

const (
	frameIncomplete frameOutcome = iota // 数据不足，等待更多
	frameNoMatch                        // 当前位置不可能是消息起点
	frameOK
)

// frameResult 一次判定的输出；consumed 为消耗的半字节数
type frameResult struct {
	outcome  frameOutcome
	message  Message
	consumed int
}

// decodeFrame 判断 fragment 头部是否有完整消息
func (d *Decoder) decodeFrame(fragment []Nibble) frameResult {
	if len(fragment) < 2 {
		return frameResult{outcome: frameIncomplete}
	}
	hi, lo := fragment[0], fragment[1]

	switch {
	case hi >= 0x8 && hi <= 0xE:
		entry, _ := ChannelEntry(hi)
		return d.commit(fragment, entry, entry.Nibbles)
	case hi == 0xF && lo == 0x0:
		return d.lookaheadSysex(fragment)
	case hi == 0xF:
		entry, ok := SystemEntry(lo)
		if !ok {
			return frameResult{outcome: frameNoMatch}
		}
		if entry.Kind != KindSystemCommon {
			return d.commit(fragment, entry, entry.Nibbles)
		}
		for _, n := range systemCommonLengths {
			if len(fragment) >= n {
				return d.commit(fragment, entry, n)
			}
		}
		return frameResult{outcome: frameIncomplete}
	}

	rs, ok := d.running.current()
	if !ok {
		return frameResult{outcome: frameNoMatch}
	}
	return d.commitRunning(fragment, rs)
}

// commit 带状态字节的帧：消耗 n 个半字节，并刷新运行状态
func (d *Decoder) commit(fragment []Nibble, entry CodecEntry, n int) frameResult {
	if len(fragment) < n {
		return frameResult{outcome: frameIncomplete}
	}
	bytes := NibblesToBytes(fragment[:n])
	status := bytes[0]
	d.running.set(entry, n, status)
	return frameResult{
		outcome:  frameOK,
		message:  d.factory.Build(entry.Kind, status, bytes[1:]),
		consumed: n,
	}
}

// commitRunning 省略状态字节的帧：仅含数据字节，状态取自缓存，缓存保持不变
func (d *Decoder) commitRunning(fragment []Nibble, rs RunningStatus) frameResult {
	if len(fragment) < rs.Residual {
		return frameResult{outcome: frameIncomplete}
	}
	data := NibblesToBytes(fragment[:rs.Residual])
	return frameResult{
		outcome:  frameOK,
		message:  d.factory.Build(rs.Entry.Kind, rs.Status, data),
		consumed: rs.Residual,
	}
}

// lookaheadSysex 在整字节中查找 0xF7 结束符；未找到则整段留在缓冲中
func (d *Decoder) lookaheadSysex(fragment []Nibble) frameResult {
	d.running.cancel()
	bytes := NibblesToBytes(fragment)
	for i, b := range bytes {
		if b == sysexEnd {
			return frameResult{
				outcome:  frameOK,
				message:  d.factory.Build(KindSystemExclusive, sysexStart, bytes[1:i+1]),
				consumed: (i + 1) * 2,
			}
		}
	}
	return frameResult{outcome: frameIncomplete}
}
