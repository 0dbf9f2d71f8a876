// Package queue defines the durable upload-job queue contract between the
// gateway (producer) and worker processes (consumers). Delivery is
// at-least-once: a claim abandoned by a crashed worker is returned to pending
// and redelivered, so consumers must tolerate duplicates. There is no
// ordering guarantee across distinct jobs.
package queue

import (
	"context"
	"errors"
	"time"

	"invproc/internal/model"
)

// ErrEmpty is returned by Dequeue when no job is ready.
var ErrEmpty = errors.New("no pending jobs available")

// Delivery is one delivery attempt of a queued job.
type Delivery struct {
	ID       string
	Attempts int
	Job      model.UploadJob
}

// DeadJob is a job that exhausted its retry budget and was parked.
type DeadJob struct {
	ID        string
	Job       model.UploadJob
	Attempts  int
	LastError string
	UpdatedAt time.Time
}

// Producer is the gateway-side surface: persist a job and return without
// waiting for processing.
type Producer interface {
	Enqueue(ctx context.Context, job model.UploadJob) (string, error)
}

// Consumer is the worker-side surface.
type Consumer interface {
	// Dequeue claims one pending job for workerID, or returns ErrEmpty.
	// Each claim delivers the job to exactly one worker at a time.
	Dequeue(ctx context.Context, workerID string) (*Delivery, error)
	// Complete marks the job done.
	Complete(ctx context.Context, jobID string) error
	// Fail records the error and either schedules a retry or, once the
	// attempt budget is spent, dead-letters the job. Returns true when the
	// job was dead-lettered.
	Fail(ctx context.Context, jobID, reason string) (bool, error)
}

// Maintainer covers the out-of-band operations run by the worker supervisor.
type Maintainer interface {
	// RequeueStale returns claims older than olderThan to pending (or dead
	// when their budget is already spent) and reports how many were moved.
	RequeueStale(ctx context.Context, olderThan time.Duration) (int64, error)
	// DeadLettered lists parked jobs for operator inspection.
	DeadLettered(ctx context.Context) ([]DeadJob, error)
}
