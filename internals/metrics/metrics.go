package metrics

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// ConflictsDetected counts detector hits by kind (teacher, location, classGroup, substitute).
	ConflictsDetected = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "timetable",
		Name:      "conflicts_detected_total",
		Help:      "Double-bookings detected before a write.",
	}, []string{"kind"})

	// BulkCandidates counts bulk placement candidates by outcome (placed, skipped).
	BulkCandidates = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "timetable",
		Name:      "bulk_candidates_total",
		Help:      "Bulk activity candidates by outcome.",
	}, []string{"outcome"})

	SubstitutionsAssigned = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "timetable",
		Name:      "substitutions_assigned_total",
		Help:      "Substitutions written.",
	})

	AttendanceLogsSaved = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "timetable",
		Name:      "attendance_logs_saved_total",
		Help:      "Attendance logs written by stamping a day.",
	})
)

// Handler exposes the default registry on a fiber route.
func Handler() fiber.Handler {
	return adaptor.HTTPHandler(promhttp.Handler())
}
