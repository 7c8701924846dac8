// Package jobs defines the async work model for statement parsing. Uploads
// return immediately; a queued job carries the statement through the parsing
// pipeline in the background.
package jobs

import (
	"context"
	"time"
)

// JobType represents the type of job to be executed.
type JobType string

const (
	// JobTypeParseStatement represents a statement parsing job.
	JobTypeParseStatement JobType = "parse_statement"
)

// JobStatus represents the current status of a job.
type JobStatus string

const (
	JobStatusPending   JobStatus = "pending"
	JobStatusRunning   JobStatus = "running"
	JobStatusCompleted JobStatus = "completed"
	JobStatusFailed    JobStatus = "failed"
	JobStatusRetrying  JobStatus = "retrying"
)

// ParseStatementJob carries one uploaded statement through the parsing
// pipeline.
type ParseStatementJob struct {
	JobID string `json:"job_id"`

	// DocumentID is the statement's row in the documents table.
	DocumentID string `json:"document_id"`

	// GCSURI points at the uploaded PDF.
	GCSURI string `json:"gcs_uri"`

	// SourceFilename is the name the statement was uploaded under.
	SourceFilename string `json:"source_filename,omitempty"`

	// ParsingRunID is set once the pipeline has started a run for this job.
	ParsingRunID string `json:"parsing_run_id,omitempty"`

	Status JobStatus `json:"status"`

	CreatedAt   time.Time  `json:"created_at"`
	StartedAt   *time.Time `json:"started_at,omitempty"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`

	// Error holds the last failure message, kept across retries until a
	// run succeeds.
	Error string `json:"error,omitempty"`

	RetryCount int `json:"retry_count"`
	MaxRetries int `json:"max_retries"`
}

// Job is a generic interface for all job types.
type Job interface {
	GetID() string
	GetType() JobType
	GetStatus() JobStatus
}

func (j *ParseStatementJob) GetID() string        { return j.JobID }
func (j *ParseStatementJob) GetType() JobType     { return JobTypeParseStatement }
func (j *ParseStatementJob) GetStatus() JobStatus { return j.Status }

// Publisher enqueues jobs. The abstraction keeps the API handlers unaware of
// the queue implementation behind them.
type Publisher interface {
	PublishParseStatement(ctx context.Context, job *ParseStatementJob) error
	Close() error
}

// Consumer pulls jobs off the queue and hands them to a handler.
type Consumer interface {
	// Start begins consuming jobs. The handler is called for each job;
	// a returned error marks the job failed and eligible for retry.
	Start(ctx context.Context, handler JobHandler) error

	// Stop stops consuming and waits for in-flight jobs to complete.
	Stop(ctx context.Context) error
}

// JobHandler processes a single job.
type JobHandler func(ctx context.Context, job Job) error

// JobStore tracks job state so the API can answer status queries.
type JobStore interface {
	SaveJob(ctx context.Context, job *ParseStatementJob) error
	GetJob(ctx context.Context, jobID string) (*ParseStatementJob, error)
	ListJobs(ctx context.Context, filter JobFilter) ([]*ParseStatementJob, error)
	UpdateJobStatus(ctx context.Context, jobID string, status JobStatus, errorMsg string) error
}

// JobFilter narrows ListJobs results.
type JobFilter struct {
	DocumentID string
	Status     JobStatus
	Limit      int
	Offset     int
}
