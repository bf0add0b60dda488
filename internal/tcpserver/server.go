package tcpserver

import (
	"context"
	"errors"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	cfgpkg "github.com/taoyao-code/midi-parser/internal/config"
)

// Server 原始字节流 TCP 接入
type Server struct {
	cfg        cfgpkg.TCPConfig
	ln         net.Listener
	wg         sync.WaitGroup
	stopC      chan struct{}
	stopOnce   sync.Once
	limiter    *ConnectionLimiter
	onConnect  func(*ConnContext)
	logger     *zap.Logger
	nextConnID atomic.Uint64
	// 可选指标回调
	onAccept    func()
	onRecvBytes func(n int)
}

// New 创建 TCP 接入服务
func New(cfg cfgpkg.TCPConfig, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Server{
		cfg:     cfg,
		stopC:   make(chan struct{}),
		limiter: NewConnectionLimiter(cfg.MaxConnections),
		logger:  logger,
	}
}

// SetConnHandler 设置新连接回调；回调内通过 SetOnRead 安装读取处理
func (s *Server) SetConnHandler(h func(*ConnContext)) { s.onConnect = h }

// SetMetricsCallbacks 设置指标回调
func (s *Server) SetMetricsCallbacks(onAccept func(), onRecvBytes func(int)) {
	s.onAccept, s.onRecvBytes = onAccept, onRecvBytes
}

// Limiter 连接限流器
func (s *Server) Limiter() *ConnectionLimiter { return s.limiter }

// Addr 实际监听地址（Start 之后有效）
func (s *Server) Addr() net.Addr {
	if s.ln == nil {
		return nil
	}
	return s.ln.Addr()
}

// Start 监听并接受连接（非阻塞，内部 goroutine）
func (s *Server) Start() error {
	ln, err := net.Listen("tcp", s.cfg.Addr)
	if err != nil {
		return err
	}
	s.ln = ln

	s.wg.Add(1)
	go s.acceptLoop()
	return nil
}

func (s *Server) acceptLoop() {
	defer s.wg.Done()
	for {
		conn, err := s.ln.Accept()
		if err != nil {
			select {
			case <-s.stopC:
				return
			default:
			}
			if errors.Is(err, net.ErrClosed) {
				return
			}
			// 短暂错误等待后重试
			time.Sleep(50 * time.Millisecond)
			continue
		}
		if !s.limiter.TryAcquire() {
			s.logger.Warn("tcp connection rejected", zap.String("remote", conn.RemoteAddr().String()),
				zap.Int("max", s.limiter.MaxConnections()))
			_ = conn.Close()
			continue
		}
		if s.onAccept != nil {
			s.onAccept()
		}

		cc := newConnContext(s, conn)
		if s.onConnect != nil {
			s.onConnect(cc)
		}
		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			defer s.limiter.Release()
			cc.run()
		}()
	}
}

// Shutdown 关闭监听与所有连接，并等待连接协程退出
func (s *Server) Shutdown(ctx context.Context) error {
	s.stopOnce.Do(func() { close(s.stopC) })
	if s.ln != nil {
		_ = s.ln.Close()
	}
	ch := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(ch)
	}()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-ch:
		return nil
	}
}
