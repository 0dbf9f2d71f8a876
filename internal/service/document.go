package service

import (
	"context"
	"errors"
	"sort"

	"invproc/internal/model"
	"invproc/internal/store"
)

var (
	ErrIDRequired = errors.New("id is required")
	ErrNotFound   = errors.New("document not found")
)

// DocumentListResult is the service-level DTO for owner document listings.
type DocumentListResult struct {
	Items []model.Document `json:"items"`
	Total int              `json:"total"`
}

// PatchFields carries the reviewable extracted fields of a document. Nil
// pointers mean "leave unchanged".
type PatchFields struct {
	Vendor    *string           `json:"vendor"`
	InvoiceID *string           `json:"invoiceId"`
	Date      *string           `json:"date"`
	Total     *float64          `json:"total"`
	LineItems *[]model.LineItem `json:"lineItems"`
}

// DocumentService exposes the read/review surface over the document store.
// Every mutation goes through the store so its UpdatedAt invariant holds.
type DocumentService interface {
	// List returns the owner's documents, optionally filtered by status,
	// newest first.
	List(ctx context.Context, ownerID string, status model.DocStatus) (*DocumentListResult, error)

	// Get returns a single document by its ID.
	Get(ctx context.Context, id string) (*model.Document, error)

	// Patch updates the extracted fields present in fields.
	Patch(ctx context.Context, id string, fields PatchFields) (*model.Document, error)

	// Approve marks the document Processed and clears any error reason,
	// regardless of its prior status.
	Approve(ctx context.Context, id string) (*model.Document, error)

	// Reject marks the document Error with the given reason, or a default
	// when none is given.
	Reject(ctx context.Context, id string, reason string) (*model.Document, error)
}

type documentService struct {
	docs *store.DocumentStore
}

// NewDocumentService constructs a DocumentService over the store.
func NewDocumentService(docs *store.DocumentStore) DocumentService {
	return &documentService{docs: docs}
}

func (s *documentService) List(_ context.Context, ownerID string, status model.DocStatus) (*DocumentListResult, error) {
	items := s.docs.ListByOwner(ownerID)
	if status != "" {
		filtered := items[:0]
		for _, d := range items {
			if d.Status == status {
				filtered = append(filtered, d)
			}
		}
		items = filtered
	}
	sort.Slice(items, func(i, j int) bool {
		return items[i].UpdatedAt.After(items[j].UpdatedAt)
	})
	return &DocumentListResult{Items: items, Total: len(items)}, nil
}

func (s *documentService) Get(_ context.Context, id string) (*model.Document, error) {
	if id == "" {
		return nil, ErrIDRequired
	}
	doc, err := s.docs.Get(id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return doc, nil
}

func (s *documentService) Patch(_ context.Context, id string, fields PatchFields) (*model.Document, error) {
	if id == "" {
		return nil, ErrIDRequired
	}
	doc, err := s.docs.Update(id, func(d *model.Document) {
		if fields.Vendor != nil {
			d.Vendor = *fields.Vendor
		}
		if fields.InvoiceID != nil {
			d.InvoiceID = *fields.InvoiceID
		}
		if fields.Date != nil {
			d.Date = *fields.Date
		}
		if fields.Total != nil {
			t := *fields.Total
			d.Total = &t
		}
		if fields.LineItems != nil {
			d.LineItems = append([]model.LineItem(nil), (*fields.LineItems)...)
		}
	})
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrNotFound
	}
	return doc, err
}

func (s *documentService) Approve(_ context.Context, id string) (*model.Document, error) {
	if id == "" {
		return nil, ErrIDRequired
	}
	doc, err := s.docs.Update(id, func(d *model.Document) {
		d.Status = model.StatusProcessed
		d.ErrorReason = ""
	})
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrNotFound
	}
	return doc, err
}

func (s *documentService) Reject(_ context.Context, id string, reason string) (*model.Document, error) {
	if id == "" {
		return nil, ErrIDRequired
	}
	if reason == "" {
		reason = "Rejected"
	}
	doc, err := s.docs.Update(id, func(d *model.Document) {
		d.Status = model.StatusError
		d.ErrorReason = reason
	})
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrNotFound
	}
	return doc, err
}
