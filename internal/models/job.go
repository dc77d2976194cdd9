package models

import "time"

type JobStatus string

const (
	JobStatusQueued     JobStatus = "queued"
	JobStatusProcessing JobStatus = "processing"
	JobStatusCompleted  JobStatus = "completed"
	JobStatusFailed     JobStatus = "failed"
)

// Terminal reports whether the status ends the job lifecycle.
func (s JobStatus) Terminal() bool {
	return s == JobStatusCompleted || s == JobStatusFailed
}

type JobPriority string

const (
	JobPriorityHigh   JobPriority = "high"
	JobPriorityMedium JobPriority = "medium"
	JobPriorityLow    JobPriority = "low"
)

func (p JobPriority) Valid() bool {
	switch p {
	case JobPriorityHigh, JobPriorityMedium, JobPriorityLow:
		return true
	}
	return false
}

type JobType string

const (
	JobTypeImage JobType = "image"
	JobTypeVideo JobType = "video"
	JobTypeAudio JobType = "audio"
)

func (t JobType) Valid() bool {
	switch t {
	case JobTypeImage, JobTypeVideo, JobTypeAudio:
		return true
	}
	return false
}

// Job is the unit of work for one compression request. The record persisted
// in Redis is the single source of truth for its lifecycle; the priority
// lists are only a visibility index over jobs still in status queued.
type Job struct {
	ID          string      `json:"id" redis:"id"`
	Type        JobType     `json:"type" redis:"type"`
	Payload     JobPayload  `json:"payload" redis:"payload"`
	Status      JobStatus   `json:"status" redis:"status"`
	Priority    JobPriority `json:"priority" redis:"priority"`
	CreatedAt   time.Time   `json:"created_at" redis:"created_at"`
	CompletedAt *time.Time  `json:"completed_at,omitempty" redis:"completed_at"`
	// Attempts and MaxAttempts are recorded but never consulted: retries are
	// delegated entirely to the broker's redelivery. Reserved until that
	// changes.
	Attempts    int        `json:"attempts" redis:"attempts"`
	MaxAttempts int        `json:"max_attempts" redis:"max_attempts"`
	Progress    int        `json:"progress" redis:"progress"`
	Error       *string    `json:"error" redis:"error"`
	Results     *JobResult `json:"results,omitempty" redis:"results"`
	// TriggerMessageID is the id the broker assigned to the processing
	// trigger published at enqueue time.
	TriggerMessageID string `json:"trigger_message_id,omitempty" redis:"trigger_message_id"`
	// Version increments on every write so concurrent status updates can be
	// detected instead of silently racing last-write-wins.
	Version int64 `json:"version" redis:"version"`
}

// JobPayload carries everything the processor needs to run the job without
// touching the original HTTP request again. Data round-trips through JSON as
// base64.
type JobPayload struct {
	File      PayloadFile        `json:"file"`
	Options   CompressionOptions `json:"options"`
	APIKey    string             `json:"api_key,omitempty"`
	Extension string             `json:"extension"`
}

type PayloadFile struct {
	Data []byte `json:"data"`
	Name string `json:"name"`
	Type string `json:"type"`
	Size int64  `json:"size"`
}

// JobProjection is the polling view of a job returned by the status
// endpoint.
type JobProjection struct {
	JobID       string     `json:"jobId"`
	Status      JobStatus  `json:"status"`
	Type        JobType    `json:"type"`
	CreatedAt   time.Time  `json:"createdAt"`
	CompletedAt *time.Time `json:"completedAt,omitempty"`
	Progress    int        `json:"progress"`
	Error       *string    `json:"error"`
	Results     *JobResult `json:"results,omitempty"`
}

func (j *Job) Projection() *JobProjection {
	return &JobProjection{
		JobID:       j.ID,
		Status:      j.Status,
		Type:        j.Type,
		CreatedAt:   j.CreatedAt,
		CompletedAt: j.CompletedAt,
		Progress:    j.Progress,
		Error:       j.Error,
		Results:     j.Results,
	}
}

type JobList struct {
	Jobs   []*Job `json:"jobs"`
	Total  int    `json:"total"`
	Limit  int    `json:"limit"`
	Offset int    `json:"offset"`
}
