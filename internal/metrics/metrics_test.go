package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestRegisterIsIdempotent(t *testing.T) {
	assert.NotPanics(t, func() {
		Register()
		Register()
	})
}

func TestFallback(t *testing.T) {
	before := testutil.ToFloat64(FallbacksTotal.WithLabelValues("test-stage"))

	Fallback("test-stage")
	Fallback("test-stage")

	assert.Equal(t, before+2, testutil.ToFloat64(FallbacksTotal.WithLabelValues("test-stage")))
}

func TestObserveCall(t *testing.T) {
	before := testutil.ToFloat64(UpstreamCallsTotal.WithLabelValues("test-svc", "ok"))

	ObserveCall("test-svc", "ok", time.Now().Add(-150*time.Millisecond))

	assert.Equal(t, before+1, testutil.ToFloat64(UpstreamCallsTotal.WithLabelValues("test-svc", "ok")))
	assert.GreaterOrEqual(t, testutil.CollectAndCount(UpstreamCallDurationSeconds), 1)
}
