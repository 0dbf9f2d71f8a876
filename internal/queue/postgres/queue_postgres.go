// Package postgres implements the upload-job queue on PostgreSQL.
// Claims use FOR UPDATE SKIP LOCKED so concurrent workers never block each
// other or double-claim a job; durability and crash redelivery come from the
// upload_jobs table itself.
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"invproc/internal/model"
	"invproc/internal/queue"
)

// retryBackoffSec is the base delay before a failed job becomes visible
// again; it grows linearly with the attempt count.
const retryBackoffSec = 5

// JobQueue is a PostgreSQL implementation of queue.Producer, queue.Consumer
// and queue.Maintainer.
type JobQueue struct {
	db          *sql.DB
	maxAttempts int
}

// NewJobQueue creates a queue over db. maxAttempts bounds redeliveries
// before a job is dead-lettered; values below one are raised to one.
func NewJobQueue(db *sql.DB, maxAttempts int) *JobQueue {
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	return &JobQueue{db: db, maxAttempts: maxAttempts}
}

var (
	_ queue.Producer   = (*JobQueue)(nil)
	_ queue.Consumer   = (*JobQueue)(nil)
	_ queue.Maintainer = (*JobQueue)(nil)
)

// Enqueue durably persists the job as pending and returns its queue id.
func (q *JobQueue) Enqueue(ctx context.Context, job model.UploadJob) (string, error) {
	const stmt = `
		INSERT INTO upload_jobs
			(id, upload_id, document_id, object_key, owner_id, status, attempts, max_attempts, created_at, updated_at, next_attempt_at)
		VALUES ($1, $2, $3, $4, $5, 'pending', 0, $6, now(), now(), now())
	`
	id := uuid.New().String()
	if _, err := q.db.ExecContext(ctx, stmt,
		id, job.UploadID, job.DocumentID, job.ObjectKey, job.OwnerID, q.maxAttempts,
	); err != nil {
		return "", fmt.Errorf("enqueue job: %w", err)
	}
	return id, nil
}

// Dequeue claims the oldest ready job for workerID. SKIP LOCKED keeps
// concurrent claimers from contending on the same row.
func (q *JobQueue) Dequeue(ctx context.Context, workerID string) (*queue.Delivery, error) {
	const stmt = `
		UPDATE upload_jobs
		SET status = 'processing', attempts = attempts + 1, claimed_by = $1, updated_at = now()
		WHERE id = (
			SELECT id FROM upload_jobs
			WHERE status = 'pending' AND next_attempt_at <= now()
			ORDER BY created_at
			LIMIT 1
			FOR UPDATE SKIP LOCKED
		)
		RETURNING id, upload_id, document_id, object_key, owner_id, attempts
	`
	var d queue.Delivery
	err := q.db.QueryRowContext(ctx, stmt, workerID).Scan(
		&d.ID,
		&d.Job.UploadID,
		&d.Job.DocumentID,
		&d.Job.ObjectKey,
		&d.Job.OwnerID,
		&d.Attempts,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, queue.ErrEmpty
	}
	if err != nil {
		return nil, fmt.Errorf("dequeue job: %w", err)
	}
	return &d, nil
}

// Complete marks the job done.
func (q *JobQueue) Complete(ctx context.Context, jobID string) error {
	const stmt = `UPDATE upload_jobs SET status = 'completed', updated_at = now() WHERE id = $1`
	if _, err := q.db.ExecContext(ctx, stmt, jobID); err != nil {
		return fmt.Errorf("complete job: %w", err)
	}
	return nil
}

// Fail records the failure reason and schedules a retry with a linear
// backoff, or parks the job as dead once its attempt budget is spent. Jobs
// are never dropped silently.
func (q *JobQueue) Fail(ctx context.Context, jobID, reason string) (bool, error) {
	const stmt = `
		UPDATE upload_jobs
		SET status = CASE WHEN attempts >= max_attempts THEN 'dead' ELSE 'pending' END,
		    last_error = $2,
		    next_attempt_at = now() + (interval '1 second' * $3 * attempts),
		    updated_at = now()
		WHERE id = $1
		RETURNING status
	`
	var status string
	err := q.db.QueryRowContext(ctx, stmt, jobID, reason, retryBackoffSec).Scan(&status)
	if errors.Is(err, sql.ErrNoRows) {
		return false, fmt.Errorf("fail job: %s not found", jobID)
	}
	if err != nil {
		return false, fmt.Errorf("fail job: %w", err)
	}
	return status == "dead", nil
}

// RequeueStale returns abandoned processing claims to pending so crashed
// workers' jobs are redelivered. Claims whose attempt budget is already
// spent go straight to the dead letter state instead of looping forever.
func (q *JobQueue) RequeueStale(ctx context.Context, olderThan time.Duration) (int64, error) {
	const stmt = `
		UPDATE upload_jobs
		SET status = CASE WHEN attempts >= max_attempts THEN 'dead' ELSE 'pending' END,
		    next_attempt_at = now(),
		    updated_at = now()
		WHERE status = 'processing' AND updated_at < now() - (interval '1 second' * $1)
	`
	res, err := q.db.ExecContext(ctx, stmt, int64(olderThan.Seconds()))
	if err != nil {
		return 0, fmt.Errorf("requeue stale jobs: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}
	return n, nil
}

// DeadLettered lists jobs that exhausted their retry budget.
func (q *JobQueue) DeadLettered(ctx context.Context) ([]queue.DeadJob, error) {
	const stmt = `
		SELECT id, upload_id, document_id, object_key, owner_id, attempts, COALESCE(last_error, ''), updated_at
		FROM upload_jobs
		WHERE status = 'dead'
		ORDER BY updated_at DESC
	`
	rows, err := q.db.QueryContext(ctx, stmt)
	if err != nil {
		return nil, fmt.Errorf("list dead letters: %w", err)
	}
	defer rows.Close()

	out := make([]queue.DeadJob, 0)
	for rows.Next() {
		var dj queue.DeadJob
		if err := rows.Scan(
			&dj.ID,
			&dj.Job.UploadID,
			&dj.Job.DocumentID,
			&dj.Job.ObjectKey,
			&dj.Job.OwnerID,
			&dj.Attempts,
			&dj.LastError,
			&dj.UpdatedAt,
		); err != nil {
			return nil, err
		}
		out = append(out, dj)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
