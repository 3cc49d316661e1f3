package slo

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestUpdateDeliverySuccess(t *testing.T) {
	UpdateDeliverySuccess(0.998)
	assert.Equal(t, 0.998, testutil.ToFloat64(SLODeliverySuccess))

	UpdateDeliverySuccess(1.0)
	assert.Equal(t, 1.0, testutil.ToFloat64(SLODeliverySuccess))
}

func TestUpdateDispatchLatencyP95(t *testing.T) {
	UpdateDispatchLatencyP95(0.150)
	assert.Equal(t, 0.150, testutil.ToFloat64(SLODispatchLatencyP95))
}

func TestUpdateErrorRate(t *testing.T) {
	UpdateErrorRate(0.0005)
	assert.Equal(t, 0.0005, testutil.ToFloat64(SLOErrorRate))
}

func TestTargetsAreSane(t *testing.T) {
	assert.Greater(t, DeliverySuccessSLO, 99.0)
	assert.Less(t, DispatchLatencyP95SLO, 1.0)
	assert.Greater(t, FirstAttemptLatencySLO, 0.0)
}
