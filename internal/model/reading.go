package model

import "time"

// Reading summarizes one check cycle for metrics.
type Reading struct {
	Distance          float64   `json:"distance"`
	RemainingCapacity float64   `json:"remaining_capacity"`
	Threshold         float64   `json:"threshold"`
	Unit              string    `json:"unit"`
	Quality           string    `json:"quality"`
	Alert             bool      `json:"alert"`
	Delivered         bool      `json:"delivered"`
	Timestamp         time.Time `json:"timestamp"`
}

const (
	QualityGood = "good"
	QualityBad  = "bad"
)
