package model

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

const alertTemplate = "Heads up! It looks like your salt level has dropped below %.2f %s"

// Alert is one low-salt notification. Channel is filled in by the dispatcher.
type Alert struct {
	ID                string    `json:"id"`
	To                string    `json:"to"`
	From              string    `json:"from,omitempty"`
	Body              string    `json:"body"`
	RemainingCapacity float64   `json:"remaining_capacity"`
	Notation          string    `json:"notation"`
	Channel           string    `json:"channel,omitempty"`
	Timestamp         time.Time `json:"timestamp"`
}

func NewAlert(to, from string, remaining float64, notation string) *Alert {
	return &Alert{
		ID:                uuid.New().String(),
		To:                to,
		From:              from,
		Body:              FormatAlertBody(remaining, notation),
		RemainingCapacity: remaining,
		Notation:          notation,
		Timestamp:         time.Now().UTC(),
	}
}

func FormatAlertBody(remaining float64, notation string) string {
	return fmt.Sprintf(alertTemplate, remaining, notation)
}

func (a *Alert) ToJSON() ([]byte, error) {
	return json.Marshal(a)
}

func AlertFromJSON(data []byte) (*Alert, error) {
	var a Alert
	if err := json.Unmarshal(data, &a); err != nil {
		return nil, err
	}
	return &a, nil
}
