package monitor

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestMetrics(t *testing.T) {
	t.Run("Records into its own registry", func(t *testing.T) {
		// Given: metrics on an isolated registry
		m := New("tictactoe", prometheus.NewRegistry())

		// When: events are recorded
		m.SetWorlds(3)
		m.PlayerConnected()
		m.PlayerConnected()
		m.PlayerDisconnected()
		m.MessageReceived("Mark")
		m.MessageDropped(DropClosed)
		m.ObserveDispatch(time.Millisecond)

		// Then: the collectors hold them
		assert.InDelta(t, 3, testutil.ToFloat64(m.Worlds), 0)
		assert.InDelta(t, 1, testutil.ToFloat64(m.Players), 0)
		assert.InDelta(t, 1, testutil.ToFloat64(m.MessagesReceived.WithLabelValues("Mark")), 0)
		assert.InDelta(t, 1, testutil.ToFloat64(m.MessagesDropped.WithLabelValues(DropClosed)), 0)
		assert.Equal(t, 1, testutil.CollectAndCount(m.DispatchLatency))
	})

	t.Run("Nil metrics record nothing", func(t *testing.T) {
		var m *Metrics

		assert.NotPanics(t, func() {
			m.SetWorlds(1)
			m.PlayerConnected()
			m.PlayerDisconnected()
			m.MessageReceived("Mark")
			m.MessageDropped(DropOverflow)
			m.ObserveDispatch(time.Second)
		})
	})
}
