package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/taoyao-code/midi-parser/internal/metrics"
	"github.com/taoyao-code/midi-parser/internal/protocol/midi"
	"github.com/taoyao-code/midi-parser/internal/protocol/midi/event"
	"github.com/taoyao-code/midi-parser/internal/session"
)

// ParseRequest 解析请求：data 可以是整数、十六进制字符串或它们的任意嵌套数组
type ParseRequest struct {
	Data any `json:"data"`
}

// ParseResponse 解析结果
type ParseResponse struct {
	Messages []event.View `json:"messages"`
	Buffer   string       `json:"buffer"`
	Dropped  int64        `json:"dropped"`
}

// ParseHandler 解析API处理器
type ParseHandler struct {
	sessions *session.Manager
	metrics  *metrics.DecoderMetrics
	logger   *zap.Logger
}

// NewParseHandler 创建解析API处理器
func NewParseHandler(sessions *session.Manager, dm *metrics.DecoderMetrics, logger *zap.Logger) *ParseHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ParseHandler{sessions: sessions, metrics: dm, logger: logger}
}

// ParseOnce 一次性解析，不保留状态
// @Router /api/parse [post]
func (h *ParseHandler) ParseOnce(c *gin.Context) {
	var req ParseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body", "message": err.Error()})
		return
	}

	s := session.New(midi.WithLogger(h.logger))
	msgs := s.Parse(req.Data)
	st := s.Stats()
	h.metrics.ObserveParse("oneshot", event.Kinds(msgs), st.Dropped, len(s.Buffer()))

	c.JSON(http.StatusOK, ParseResponse{Messages: views(msgs), Buffer: s.BufferString(), Dropped: st.Dropped})
}

// CreateSession 新建解析会话
// @Router /api/sessions [post]
func (h *ParseHandler) CreateSession(c *gin.Context) {
	id, _, err := h.sessions.Create(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"id": id})
}

// ParseSession 向会话输入数据
// @Router /api/sessions/{id}/parse [post]
func (h *ParseHandler) ParseSession(c *gin.Context) {
	var req ParseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body", "message": err.Error()})
		return
	}

	res, err := h.sessions.Parse(c.Request.Context(), c.Param("id"), req.Data)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, ParseResponse{Messages: views(res.Messages), Buffer: res.Buffer, Dropped: res.Dropped})
}

// GetBuffer 查询会话待处理缓冲
// @Router /api/sessions/{id}/buffer [get]
func (h *ParseHandler) GetBuffer(c *gin.Context) {
	s, err := h.sessions.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return
	}
	buf := s.Buffer()
	nibbles := make([]string, len(buf))
	for i, n := range buf {
		nibbles[i] = n.String()
	}
	c.JSON(http.StatusOK, gin.H{"buffer": midi.NibblesToString(buf), "nibbles": nibbles, "stats": s.Stats()})
}

// ClearBuffer 清空会话缓冲
// @Router /api/sessions/{id}/buffer [delete]
func (h *ParseHandler) ClearBuffer(c *gin.Context) {
	if err := h.sessions.ClearBuffer(c.Request.Context(), c.Param("id")); err != nil {
		h.fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// DeleteSession 删除会话
// @Router /api/sessions/{id} [delete]
func (h *ParseHandler) DeleteSession(c *gin.Context) {
	if err := h.sessions.Delete(c.Request.Context(), c.Param("id")); err != nil {
		h.fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *ParseHandler) fail(c *gin.Context, err error) {
	switch {
	case errors.Is(err, session.ErrSessionNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "session not found"})
	case errors.Is(err, session.ErrTooManySessions):
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "too many sessions"})
	default:
		h.logger.Error("parse api failed", zap.String("path", c.FullPath()), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}

func views(msgs []midi.Message) []event.View {
	out := make([]event.View, 0, len(msgs))
	for _, m := range msgs {
		out = append(out, event.Describe(m))
	}
	return out
}

