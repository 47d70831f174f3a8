package handler

import (
	"time"

	"cardeval/internal/application"
)

// ApplicationResponse is the HTTP response for an evaluated application.
type ApplicationResponse struct {
	ID          string              `json:"id"`
	Decision    string              `json:"decision"`
	Path        string              `json:"path"`
	LookupCount int64               `json:"lookup_count"`
	EvaluatedAt time.Time           `json:"evaluated_at"`
	RequestID   string              `json:"request_id,omitempty"`
	Channel     string              `json:"channel,omitempty"`
	Application ApplicationSnapshot `json:"application"`
}

// ApplicationSnapshot echoes the evaluated input.
type ApplicationSnapshot struct {
	GrossAnnualIncome   float64 `json:"gross_annual_income"`
	Age                 int     `json:"age"`
	FrequentFlyerNumber string  `json:"frequent_flyer_number"`
}

// StatsResponse is the HTTP response for GET /applications/stats.
type StatsResponse struct {
	LookupCount int64 `json:"lookup_count"`
	Evaluated   int64 `json:"evaluated"`
}

// FromRecord converts a domain Record to an HTTP response.
func FromRecord(record *application.Record) *ApplicationResponse {
	return &ApplicationResponse{
		ID:          record.ID.String(),
		Decision:    record.Decision.String(),
		Path:        string(record.Path),
		LookupCount: record.LookupCount,
		EvaluatedAt: record.EvaluatedAt,
		RequestID:   record.RequestID,
		Channel:     record.Channel,
		Application: ApplicationSnapshot{
			GrossAnnualIncome:   record.Application.GrossAnnualIncome,
			Age:                 record.Application.Age,
			FrequentFlyerNumber: record.Application.FrequentFlyerNumber,
		},
	}
}

// FromStats converts service stats to an HTTP response.
func FromStats(stats application.Stats) *StatsResponse {
	return &StatsResponse{
		LookupCount: stats.LookupCount,
		Evaluated:   stats.Evaluated,
	}
}
