package model

import "time"

// SubmissionEvent is the payload published to Kafka when notifications are queued.
type SubmissionEvent struct {
	ID          string     `json:"id"` // submission id
	Kind        Kind       `json:"kind"`
	Submission  Submission `json:"submission"`
	PublishedAt time.Time  `json:"published_at"`
}
