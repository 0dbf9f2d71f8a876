// Package worker consumes upload jobs from the durable queue, runs the
// extraction for each, and notifies the gateway's event ingress. Per job the
// state machine is dequeued -> emitting progress -> exactly one terminal
// event (completed or error). There is no cancellation transition: once
// dequeued a job runs to a terminal outcome or is abandoned on crash and
// redelivered by the queue.
package worker

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"invproc/internal/event"
	"invproc/internal/queue"
)

// Worker is one logical consumer. Several workers may run concurrently over
// the same queue; the queue guarantees a job is claimed by one of them at a
// time.
type Worker struct {
	id        string
	queue     queue.Consumer
	extractor Extractor
	poster    Poster
	poll      time.Duration
}

// New constructs a worker. poll is how long to sleep when the queue is empty.
func New(id string, q queue.Consumer, ex Extractor, p Poster, poll time.Duration) *Worker {
	return &Worker{id: id, queue: q, extractor: ex, poster: p, poll: poll}
}

// Run pulls and processes jobs until ctx is cancelled.
func (w *Worker) Run(ctx context.Context) {
	logJSON(map[string]any{
		"component": "worker",
		"event":     "worker_started",
		"worker_id": w.id,
	})
	for {
		if ctx.Err() != nil {
			return
		}
		d, err := w.queue.Dequeue(ctx, w.id)
		if err != nil {
			if err != queue.ErrEmpty {
				logJSON(map[string]any{
					"component": "worker",
					"event":     "dequeue_failed",
					"status":    "error",
					"worker_id": w.id,
					"error":     err.Error(),
				})
			}
			select {
			case <-time.After(w.poll):
			case <-ctx.Done():
				return
			}
			continue
		}
		w.handle(ctx, d)
	}
}

// handle processes one delivery. The progress posts and the terminal post
// are independent best-effort requests; only the queue transition is
// authoritative for retry bookkeeping.
func (w *Worker) handle(ctx context.Context, d *queue.Delivery) {
	job := d.Job
	logJSON(map[string]any{
		"component":   "worker",
		"event":       "job_started",
		"worker_id":   w.id,
		"job_id":      d.ID,
		"upload_id":   job.UploadID,
		"document_id": job.DocumentID,
		"attempt":     d.Attempts,
	})

	res, err := w.extractor.Extract(ctx, job, func(percent int) {
		w.poster.Post(ctx, event.Progress(job.OwnerID, job.UploadID, job.DocumentID, percent))
	})
	if err != nil {
		w.poster.Post(ctx, event.Error(job.OwnerID, job.UploadID, job.DocumentID, err.Error()))
		dead, failErr := w.queue.Fail(ctx, d.ID, err.Error())
		entry := map[string]any{
			"component":   "worker",
			"event":       "job_failed",
			"status":      "error",
			"worker_id":   w.id,
			"job_id":      d.ID,
			"document_id": job.DocumentID,
			"attempt":     d.Attempts,
			"dead_letter": dead,
			"error":       err.Error(),
		}
		if failErr != nil {
			entry["queue_error"] = failErr.Error()
		}
		logJSON(entry)
		return
	}

	w.poster.Post(ctx, event.Completed(job.OwnerID, job.UploadID, job.DocumentID, job.ObjectKey, res.ProcessingMs, res.Total))
	if err := w.queue.Complete(ctx, d.ID); err != nil {
		logJSON(map[string]any{
			"component": "worker",
			"event":     "complete_failed",
			"status":    "error",
			"worker_id": w.id,
			"job_id":    d.ID,
			"error":     err.Error(),
		})
		return
	}
	logJSON(map[string]any{
		"component":     "worker",
		"event":         "job_completed",
		"worker_id":     w.id,
		"job_id":        d.ID,
		"document_id":   job.DocumentID,
		"processing_ms": res.ProcessingMs,
	})
}

func logJSON(data map[string]any) {
	data["ts"] = time.Now().UTC().Format(time.RFC3339Nano)
	if _, ok := data["level"]; !ok {
		if data["status"] == "error" {
			data["level"] = "error"
		} else {
			data["level"] = "info"
		}
	}
	b, err := json.Marshal(data)
	if err != nil {
		return
	}
	log.SetFlags(0)
	log.Println(string(b))
}
