package gateway

import (
	"bufio"
	"context"
	"encoding/json"
	"net"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	cfgpkg "github.com/taoyao-code/midi-parser/internal/config"
	"github.com/taoyao-code/midi-parser/internal/metrics"
	"github.com/taoyao-code/midi-parser/internal/tcpserver"
)

func startServer(t *testing.T, dm *metrics.DecoderMetrics) *tcpserver.Server {
	t.Helper()
	srv := tcpserver.New(cfgpkg.TCPConfig{Addr: "127.0.0.1:0", ReadTimeout: 5 * time.Second, WriteTimeout: time.Second}, nil)
	srv.SetConnHandler(NewConnHandler(dm, nil))
	srv.SetMetricsCallbacks(dm.OnAccept, dm.OnRecvBytes)
	require.NoError(t, srv.Start())
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctx)
	})
	return srv
}

func TestConnHandler_StreamAcrossWrites(t *testing.T) {
	dm := metrics.NewDecoderMetrics(prometheus.NewRegistry())
	srv := startServer(t, dm)

	conn, err := net.Dial("tcp", srv.Addr().String())
	require.NoError(t, err)
	defer conn.Close()

	// 音符开被拆成两次写入，随后是运行状态帧
	_, err = conn.Write([]byte{0x90, 0x40})
	require.NoError(t, err)
	time.Sleep(20 * time.Millisecond)
	_, err = conn.Write([]byte{0x7F, 0x41, 0x00})
	require.NoError(t, err)

	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	r := bufio.NewReader(conn)
	var kinds, hexes []string
	for i := 0; i < 2; i++ {
		line, err := r.ReadBytes('\n')
		require.NoError(t, err)
		var v struct {
			Kind string `json:"kind"`
			Hex  string `json:"hex"`
		}
		require.NoError(t, json.Unmarshal(line, &v))
		kinds = append(kinds, v.Kind)
		hexes = append(hexes, v.Hex)
	}
	assert.Equal(t, []string{"note_on", "note_on"}, kinds)
	assert.Equal(t, []string{"90407f", "904100"}, hexes)
	assert.Equal(t, 2.0, testutil.ToFloat64(dm.MessagesTotal.WithLabelValues("note_on")))
	assert.Equal(t, 1.0, testutil.ToFloat64(dm.TCPAccepted))
	assert.Equal(t, 5.0, testutil.ToFloat64(dm.TCPBytes))
}

func TestConnHandler_ConnectionsIsolated(t *testing.T) {
	srv := startServer(t, nil)

	a, err := net.Dial("tcp", srv.Addr().String())
	require.NoError(t, err)
	defer a.Close()
	b, err := net.Dial("tcp", srv.Addr().String())
	require.NoError(t, err)
	defer b.Close()

	// a 只发状态字节，b 只发数据字节；两者的缓冲互不影响
	_, _ = a.Write([]byte{0xC0})
	time.Sleep(20 * time.Millisecond)
	_, _ = b.Write([]byte{0x05})

	_ = b.SetReadDeadline(time.Now().Add(200 * time.Millisecond))
	buf := make([]byte, 64)
	n, _ := b.Read(buf)
	assert.Zero(t, n)

	_, _ = a.Write([]byte{0x05})
	_ = a.SetReadDeadline(time.Now().Add(2 * time.Second))
	line, err := bufio.NewReader(a).ReadBytes('\n')
	require.NoError(t, err)
	assert.Contains(t, string(line), `"program_change"`)
}
