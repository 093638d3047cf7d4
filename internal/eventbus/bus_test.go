package eventbus

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Rorical/Ausmalbar/internal/models"
)

func TestProgressSinkForwardsToUI(t *testing.T) {
	eb := NewEventBus()
	state := models.ProgressState{Percent: 5, Message: "Regenerating image...", Phase: models.PhaseInfo, Visible: true}

	ProgressSink{Bus: eb}.Render(state)

	select {
	case ev := <-eb.CoreToUI():
		assert.Equal(t, ProgressEvent{State: state}, ev)
	default:
		t.Fatal("no progress event")
	}
}

func TestCircuitBreakerOpensAfterFailures(t *testing.T) {
	cb := NewCircuitBreaker(2, time.Hour)
	assert.False(t, cb.IsOpen())

	cb.RecordFailure()
	assert.False(t, cb.IsOpen())
	cb.RecordFailure()
	assert.True(t, cb.IsOpen())

	cb.RecordSuccess()
	assert.Equal(t, CircuitClosed, cb.State())
}

func TestCircuitBreakerHalfOpensAfterTimeout(t *testing.T) {
	cb := NewCircuitBreaker(1, time.Millisecond)
	cb.RecordFailure()
	time.Sleep(5 * time.Millisecond)

	assert.False(t, cb.IsOpen())
	assert.Equal(t, CircuitHalfOpen, cb.State())
}

func TestSendToCoreReportsFullChannel(t *testing.T) {
	eb := NewEventBus()
	var reported []EventBusError
	eb.SetErrorCallback(func(e EventBusError) { reported = append(reported, e) })

	for i := 0; i < cap(eb.uiToCore); i++ {
		require.NoError(t, eb.SendToCore(ReloadEvent{}))
	}
	assert.Error(t, eb.SendToCore(ReloadEvent{}))
	require.Len(t, reported, 1)
	assert.Equal(t, "SendToCore", reported[0].Operation)
}

func TestSendAfterClose(t *testing.T) {
	eb := NewEventBus()
	eb.Close()
	eb.Close()

	assert.ErrorIs(t, eb.SendToCore(ReloadEvent{}), ErrClosed)
	assert.ErrorIs(t, eb.SendToUI(PageEvent{}), ErrClosed)
}
