// Package gateway 将 TCP 连接绑定到解码会话
package gateway

import (
	"encoding/json"

	"go.uber.org/zap"

	"github.com/taoyao-code/midi-parser/internal/metrics"
	"github.com/taoyao-code/midi-parser/internal/protocol/midi"
	"github.com/taoyao-code/midi-parser/internal/protocol/midi/event"
	"github.com/taoyao-code/midi-parser/internal/session"
	"github.com/taoyao-code/midi-parser/internal/tcpserver"
)

// NewConnHandler 构建 TCP 连接处理器：每个连接一个独立会话，
// 上行为原始 MIDI 字节，解出的消息以 JSON 行写回
func NewConnHandler(dm *metrics.DecoderMetrics, logger *zap.Logger) func(*tcpserver.ConnContext) {
	if logger == nil {
		logger = zap.NewNop()
	}
	return func(cc *tcpserver.ConnContext) {
		log := logger.With(zap.Uint64("conn", cc.ID()), zap.String("remote", cc.RemoteAddr().String()))
		s := session.New(midi.WithLogger(log))
		log.Debug("tcp stream opened")

		cc.SetOnRead(func(b []byte) {
			before := s.Stats().Dropped
			msgs := s.Process(midi.BytesToNibbles(b))
			dm.ObserveParse("tcp", event.Kinds(msgs), s.Stats().Dropped-before, len(s.Buffer()))

			for _, m := range msgs {
				line, err := json.Marshal(event.Describe(m))
				if err != nil {
					log.Warn("encode message failed", zap.Error(err))
					continue
				}
				if err := cc.Write(append(line, '\n')); err != nil {
					log.Debug("write back failed", zap.Error(err))
					return
				}
			}
		})
		cc.SetOnClose(func() {
			st := s.Stats()
			log.Info("tcp stream closed",
				zap.Int64("messages", st.Messages),
				zap.Int64("dropped", st.Dropped),
				zap.String("pending", s.BufferString()))
		})
	}
}

