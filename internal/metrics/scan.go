// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

// Package metrics provides Prometheus metrics for QRCodeHelper.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// No session ids or payloads in labels.

var (
	// ScanTransitionsTotal counts applied lifecycle transitions.
	ScanTransitionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "qrhelper_scan_transitions_total",
		Help: "Total number of applied scan-session transitions, by from/to state and event.",
	}, []string{"from", "to", "event"})

	// ScanRejectedEventsTotal counts events rejected by the decision table.
	ScanRejectedEventsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "qrhelper_scan_rejected_events_total",
		Help: "Total number of scan-session events rejected by the decision table, by event and reason.",
	}, []string{"event", "reason"})

	// ScanDetectionsTotal counts detection callbacks by outcome (accepted/dropped).
	ScanDetectionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "qrhelper_scan_detections_total",
		Help: "Total number of code detections delivered to scan sessions, by outcome.",
	}, []string{"outcome"})

	// ScanSessionsClosedTotal counts sessions reaching CLOSED by reason.
	ScanSessionsClosedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "qrhelper_scan_sessions_closed_total",
		Help: "Total number of scan sessions closed, by reason.",
	}, []string{"reason"})

	// ScanSessionsActive tracks sessions that have not reached CLOSED.
	ScanSessionsActive = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "qrhelper_scan_sessions_active",
		Help: "Current number of scan sessions that are not closed.",
	})

	// PermissionRequestsTotal counts camera permission requests.
	PermissionRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "qrhelper_permission_requests_total",
		Help: "Total number of camera permission requests, by result and whether a prompt was shown.",
	}, []string{"result", "prompted"})

	// CaptureFramesTotal counts frames seen by capture pipelines.
	CaptureFramesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "qrhelper_capture_frames_total",
		Help: "Total number of capture frames processed, by result (decoded/empty/error/throttled/skipped).",
	}, []string{"result"})

	// GeneratorRequestsTotal counts QR generation requests.
	GeneratorRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "qrhelper_generator_requests_total",
		Help: "Total number of QR generation requests, by result.",
	}, []string{"result"})
)

// RecordTransition increments the transition counter.
func RecordTransition(from, to, event string) {
	ScanTransitionsTotal.WithLabelValues(from, to, event).Inc()
}

// RecordRejectedEvent increments the rejected-event counter.
func RecordRejectedEvent(event, reason string) {
	ScanRejectedEventsTotal.WithLabelValues(event, reason).Inc()
}

// RecordDetection increments the detection counter.
func RecordDetection(accepted bool) {
	outcome := "dropped"
	if accepted {
		outcome = "accepted"
	}
	ScanDetectionsTotal.WithLabelValues(outcome).Inc()
}

// RecordSessionOpened bumps the active-session gauge.
func RecordSessionOpened() {
	ScanSessionsActive.Inc()
}

// RecordSessionClosed decrements the active gauge and counts the close reason.
func RecordSessionClosed(reason string) {
	ScanSessionsActive.Dec()
	ScanSessionsClosedTotal.WithLabelValues(reason).Inc()
}

// RecordPermission increments the permission counter.
func RecordPermission(result string, prompted bool) {
	p := "false"
	if prompted {
		p = "true"
	}
	PermissionRequestsTotal.WithLabelValues(result, p).Inc()
}

// RecordFrame increments the frame counter.
func RecordFrame(result string) {
	CaptureFramesTotal.WithLabelValues(result).Inc()
}

// RecordGenerate increments the generator counter.
func RecordGenerate(result string) {
	GeneratorRequestsTotal.WithLabelValues(result).Inc()
}
