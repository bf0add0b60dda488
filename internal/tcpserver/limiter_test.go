package tcpserver

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConnectionLimiter(t *testing.T) {
	t.Run("满额拒绝", func(t *testing.T) {
		l := NewConnectionLimiter(2)
		assert.True(t, l.TryAcquire())
		assert.True(t, l.TryAcquire())
		assert.False(t, l.TryAcquire())

		l.Release()
		assert.True(t, l.TryAcquire())
	})

	t.Run("统计", func(t *testing.T) {
		l := NewConnectionLimiter(3)
		l.TryAcquire()
		l.TryAcquire()
		l.TryAcquire()
		l.TryAcquire()

		st := l.Stats()
		assert.Equal(t, 3, st.MaxConnections)
		assert.Equal(t, 3, st.ActiveConnections)
		assert.EqualValues(t, 1, st.RejectedTotal)
	})

	t.Run("多余释放无副作用", func(t *testing.T) {
		l := NewConnectionLimiter(0)
		l.Release()
		assert.Equal(t, 0, l.Current())
		assert.Equal(t, 256, l.MaxConnections())
	})
}
