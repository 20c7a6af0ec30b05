package model

import (
	"encoding/json"
	"fmt"
	"time"
)

// naiveLayouts are zone-less ISO-8601 forms written by older versions of the
// users file. They are interpreted in local time.
var naiveLayouts = []string{
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02 15:04:05",
}

// ParseTimestamp parses an ISO-8601 timestamp with or without zone offset.
func ParseTimestamp(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t, nil
	}
	for _, layout := range naiveLayouts {
		if t, err := time.ParseInLocation(layout, s, time.Local); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unsupported timestamp %q", s)
}

func (u *UserRecord) UnmarshalJSON(data []byte) error {
	type alias UserRecord
	aux := struct {
		*alias
		CreatedAt string `json:"created_at"`
	}{alias: (*alias)(u)}

	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}

	createdAt, err := ParseTimestamp(aux.CreatedAt)
	if err != nil {
		return fmt.Errorf("created_at: %w", err)
	}
	u.CreatedAt = createdAt
	if u.History == nil {
		u.History = []HistoryEntry{}
	}

	return nil
}

func (e *HistoryEntry) UnmarshalJSON(data []byte) error {
	type alias HistoryEntry
	aux := struct {
		*alias
		Timestamp string `json:"timestamp"`
	}{alias: (*alias)(e)}

	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}

	ts, err := ParseTimestamp(aux.Timestamp)
	if err != nil {
		return fmt.Errorf("timestamp: %w", err)
	}
	e.Timestamp = ts

	return nil
}
