package midi

// RunningStatus 运行状态缓存：上一帧的状态字节与剩余帧长
// 下一帧若省略状态字节，则按 Residual 个半字节取数据并复用 Status
type RunningStatus struct {
	Residual int        `json:"residual"`
	Entry    CodecEntry `json:"entry"`
	Status   byte       `json:"status"`
}

// runningStatusSlot 单槽位，nil 表示无运行状态
type runningStatusSlot struct {
	state *RunningStatus
}

func (s *runningStatusSlot) set(entry CodecEntry, frameNibbles int, status byte) {
	residual := frameNibbles - 2
	if residual <= 0 {
		// 零长度数据帧无法推进扫描指针
		s.state = nil
		return
	}
	s.state = &RunningStatus{Residual: residual, Entry: entry, Status: status}
}

func (s *runningStatusSlot) cancel() { s.state = nil }

func (s *runningStatusSlot) current() (RunningStatus, bool) {
	if s.state == nil {
		return RunningStatus{}, false
	}
	return *s.state, true
}
