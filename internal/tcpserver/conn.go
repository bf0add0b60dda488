package tcpserver

import (
	"errors"
	"net"
	"sync"
	"sync/atomic"
	"time"
)

// ErrConnClosed 连接已关闭
var ErrConnClosed = errors.New("connection closed")

// ConnContext 为每个 TCP 连接提供读/写循环与回调能力
type ConnContext struct {
	s       *Server
	c       net.Conn
	id      uint64
	writeC  chan []byte
	closed  atomic.Bool
	closeMu sync.Mutex
	onRead  func([]byte)
	onClose func()
}

func newConnContext(s *Server, c net.Conn) *ConnContext {
	return &ConnContext{
		s:      s,
		c:      c,
		id:     s.nextConnID.Add(1),
		writeC: make(chan []byte, 128),
	}
}

// ID 返回连接ID（单进程唯一递增）
func (cc *ConnContext) ID() uint64 { return cc.id }

// RemoteAddr 返回远端地址
func (cc *ConnContext) RemoteAddr() net.Addr { return cc.c.RemoteAddr() }

// SetOnRead 安装读取回调；回调在读循环中串行执行
func (cc *ConnContext) SetOnRead(h func([]byte)) { cc.onRead = h }

// SetOnClose 连接结束回调
func (cc *ConnContext) SetOnClose(h func()) { cc.onClose = h }

// Write 异步写入，受写队列与写超时影响
func (cc *ConnContext) Write(b []byte) error {
	dup := make([]byte, len(b))
	copy(dup, b)
	to := cc.s.cfg.WriteTimeout
	if to <= 0 {
		to = 5 * time.Second
	}

	cc.closeMu.Lock()
	defer cc.closeMu.Unlock()
	if cc.closed.Load() {
		return ErrConnClosed
	}
	select {
	case cc.writeC <- dup:
		return nil
	case <-time.After(to):
		return errors.New("write queue timeout")
	}
}

// Close 关闭连接与写队列
func (cc *ConnContext) Close() error {
	cc.closeMu.Lock()
	defer cc.closeMu.Unlock()
	if !cc.closed.CompareAndSwap(false, true) {
		return nil
	}
	close(cc.writeC)
	return cc.c.Close()
}

// run 启动读/写循环，阻塞直至连接结束
func (cc *ConnContext) run() {
	doneW := make(chan struct{})
	go func() {
		defer close(doneW)
		for msg := range cc.writeC {
			if cc.s.cfg.WriteTimeout > 0 {
				_ = cc.c.SetWriteDeadline(time.Now().Add(cc.s.cfg.WriteTimeout))
			}
			_, _ = cc.c.Write(msg)
		}
	}()

	// 停机时关闭连接以打断阻塞的 Read
	stopW := make(chan struct{})
	go func() {
		select {
		case <-cc.s.stopC:
			_ = cc.c.Close()
		case <-stopW:
		}
	}()

	buf := make([]byte, 4096)
	for {
		if cc.s.cfg.ReadTimeout > 0 {
			_ = cc.c.SetReadDeadline(time.Now().Add(cc.s.cfg.ReadTimeout))
		}
		n, err := cc.c.Read(buf)
		if n > 0 {
			if cc.s.onRecvBytes != nil {
				cc.s.onRecvBytes(n)
			}
			if cc.onRead != nil {
				cc.onRead(buf[:n])
			}
		}
		if err != nil {
			// 空闲超时即断开
			break
		}
	}
	close(stopW)
	if cc.onClose != nil {
		cc.onClose()
	}
	_ = cc.Close()
	<-doneW
}
