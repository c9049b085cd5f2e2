package queue

import (
	"time"

	"github.com/google/uuid"
)

// JobType represents the type of job
type JobType string

const (
	// JobTypeDigestRun asks the worker to execute one pipeline run
	JobTypeDigestRun JobType = "digest_run"
	// JobTypeSourceTest asks the worker to test-fetch one source without
	// persisting anything
	JobTypeSourceTest JobType = "source_test"
)

// Job is one unit of work on the queue
type Job struct {
	ID        uuid.UUID  `json:"id"`
	Type      JobType    `json:"type"`
	SourceID  *uuid.UUID `json:"source_id,omitempty"` // for source test jobs
	CreatedAt time.Time  `json:"created_at"`
}

// NewJob creates a new job
func NewJob(jobType JobType) *Job {
	return &Job{
		ID:        uuid.New(),
		Type:      jobType,
		CreatedAt: time.Now(),
	}
}

// NewSourceTestJob creates a source test job
func NewSourceTestJob(sourceID uuid.UUID) *Job {
	job := NewJob(JobTypeSourceTest)
	job.SourceID = &sourceID
	return job
}
