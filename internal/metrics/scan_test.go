// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordTransition(t *testing.T) {
	c := ScanTransitionsTotal.WithLabelValues("IDLE", "REQUESTING", "start_requested")
	before := testutil.ToFloat64(c)
	RecordTransition("IDLE", "REQUESTING", "start_requested")
	assert.Equal(t, before+1, testutil.ToFloat64(c))
}

func TestRecordDetection_Outcomes(t *testing.T) {
	acc := ScanDetectionsTotal.WithLabelValues("accepted")
	drop := ScanDetectionsTotal.WithLabelValues("dropped")
	accBefore, dropBefore := testutil.ToFloat64(acc), testutil.ToFloat64(drop)

	RecordDetection(true)
	RecordDetection(false)
	RecordDetection(false)

	assert.Equal(t, accBefore+1, testutil.ToFloat64(acc))
	assert.Equal(t, dropBefore+2, testutil.ToFloat64(drop))
}

func TestSessionGaugeBalances(t *testing.T) {
	before := testutil.ToFloat64(ScanSessionsActive)
	RecordSessionOpened()
	RecordSessionOpened()
	RecordSessionClosed("R_CLIENT_CLOSE")
	RecordSessionClosed("R_PERMISSION_DENIED")
	assert.Equal(t, before, testutil.ToFloat64(ScanSessionsActive))

	m := &dto.Metric{}
	require.NoError(t, ScanSessionsClosedTotal.WithLabelValues("R_PERMISSION_DENIED").Write(m))
	assert.GreaterOrEqual(t, m.GetCounter().GetValue(), 1.0)
}

func TestRecordPermission_PromptedLabel(t *testing.T) {
	c := PermissionRequestsTotal.WithLabelValues("GRANTED", "true")
	before := testutil.ToFloat64(c)
	RecordPermission("GRANTED", true)
	assert.Equal(t, before+1, testutil.ToFloat64(c))
}
