// Package metrics exposes the service's Prometheus instrumentation.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// BatchesCreated counts successful CreateBatch operations.
	BatchesCreated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "sibat_protocol_batches_created_total",
		Help: "Number of protocol batches created.",
	})

	// ProtocolsCreated counts individual protocol rows minted.
	ProtocolsCreated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "sibat_protocols_created_total",
		Help: "Number of protocol records created.",
	})

	// StatusTransitions counts status writes by resulting status.
	StatusTransitions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "sibat_status_transitions_total",
		Help: "Number of protocol status transitions.",
	}, []string{"status"})

	// ScanConfirmations counts scanner confirmations by action.
	ScanConfirmations = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "sibat_scan_confirmations_total",
		Help: "Number of scanner status confirmations.",
	}, []string{"action"})
)
