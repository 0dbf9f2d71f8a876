package service

import (
	"context"
	"sort"
	"time"

	"invproc/internal/model"
	"invproc/internal/store"
)

// AnalyticsOverview summarizes document states across all owners.
type AnalyticsOverview struct {
	Processed int `json:"processed"`
	Pending   int `json:"pending"`
	Errors    int `json:"errors"`
	Today     int `json:"today"`
}

// DayBucket aggregates documents touched on one calendar day (UTC).
type DayBucket struct {
	Date   string `json:"date"`
	Total  int    `json:"total"`
	Errors int    `json:"errors"`
}

// AnalyticsService aggregates over the document store. It only reads; the
// store stays the single owner of document state.
type AnalyticsService interface {
	Overview(ctx context.Context) (*AnalyticsOverview, error)
	// DocumentsPerDay buckets documents by UpdatedAt day, optionally
	// restricted to [from, to], sorted by date ascending.
	DocumentsPerDay(ctx context.Context, from, to *time.Time) ([]DayBucket, error)
}

type analyticsService struct {
	docs *store.DocumentStore
	now  func() time.Time
}

// NewAnalyticsService constructs an AnalyticsService.
func NewAnalyticsService(docs *store.DocumentStore) AnalyticsService {
	return &analyticsService{docs: docs, now: time.Now}
}

func (s *analyticsService) Overview(_ context.Context) (*AnalyticsOverview, error) {
	today := s.now().UTC().Format("2006-01-02")
	var out AnalyticsOverview
	for _, d := range s.docs.All() {
		switch d.Status {
		case model.StatusProcessed:
			out.Processed++
		case model.StatusPending:
			out.Pending++
		case model.StatusError:
			out.Errors++
		}
		if d.UpdatedAt.UTC().Format("2006-01-02") == today {
			out.Today++
		}
	}
	return &out, nil
}

func (s *analyticsService) DocumentsPerDay(_ context.Context, from, to *time.Time) ([]DayBucket, error) {
	buckets := make(map[string]*DayBucket)
	for _, d := range s.docs.All() {
		day := d.UpdatedAt.UTC().Truncate(24 * time.Hour)
		if from != nil && day.Before(*from) {
			continue
		}
		if to != nil && day.After(*to) {
			continue
		}
		key := day.Format("2006-01-02")
		b, ok := buckets[key]
		if !ok {
			b = &DayBucket{Date: key}
			buckets[key] = b
		}
		b.Total++
		if d.Status == model.StatusError {
			b.Errors++
		}
	}

	out := make([]DayBucket, 0, len(buckets))
	for _, b := range buckets {
		out = append(out, *b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date < out[j].Date })
	return out, nil
}
