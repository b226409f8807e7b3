// Package telemetry holds the prometheus instruments exposed on /metrics.
package telemetry

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Mutations counts store mutations by operation
	// (create/update/delete/duplicate/toggle/post/clear/archive).
	Mutations = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "consoled_mutations_total",
		Help: "Console pool mutations by operation.",
	}, []string{"op"})

	// Broadcasts counts emitted broadcast events by event name.
	Broadcasts = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "consoled_broadcasts_total",
		Help: "Broadcast events emitted by event name.",
	}, []string{"event"})

	// DroppedEvents counts received events with an unknown name; they are
	// logged and ignored, never a crash.
	DroppedEvents = promauto.NewCounter(prometheus.CounterOpts{
		Name: "consoled_dropped_events_total",
		Help: "Received broadcast events ignored as unknown.",
	})

	// MigrationBackfills counts records repaired by the migration engine.
	MigrationBackfills = promauto.NewCounter(prometheus.CounterOpts{
		Name: "consoled_migration_backfills_total",
		Help: "Records repaired during schema migration.",
	})

	// Warnings counts refused mutations by reason.
	Warnings = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "consoled_warnings_total",
		Help: "Refused mutations by reason.",
	}, []string{"reason"})
)
