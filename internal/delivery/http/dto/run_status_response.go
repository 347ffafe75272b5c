package dto

import (
	"time"

	"jobfinder/internal/scheduler"
)

type RunStatusResponse struct {
	Running bool           `json:"running"`
	LastRun *RunSummaryDTO `json:"last_run"`
}

type RunSummaryDTO struct {
	StartedAt  time.Time `json:"started_at"`
	DurationMS int64     `json:"duration_ms"`
	Seekers    int       `json:"seekers"`
	Succeeded  int       `json:"succeeded"`
	Failed     int       `json:"failed"`
	Skipped    bool      `json:"skipped"`
}

func NewRunStatusResponse(running bool, last scheduler.RunSummary, ok bool) RunStatusResponse {
	out := RunStatusResponse{Running: running}
	if !ok {
		return out
	}
	out.LastRun = &RunSummaryDTO{
		StartedAt:  last.StartedAt,
		DurationMS: last.Duration.Milliseconds(),
		Seekers:    last.Seekers,
		Succeeded:  last.Succeeded,
		Failed:     last.Failed,
		Skipped:    last.Skipped,
	}
	return out
}
