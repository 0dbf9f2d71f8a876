package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"invproc/internal/model"
	"invproc/internal/store"
)

func TestDocumentList(t *testing.T) {
	ctx := context.Background()
	docs := store.NewDocumentStore()
	svc := NewDocumentService(docs)

	docs.Mutate("u1", "doc_a", func(d *model.Document) { d.Status = model.StatusProcessed })
	docs.Mutate("u1", "doc_b", func(d *model.Document) { d.Status = model.StatusError })
	docs.Mutate("u2", "doc_c", func(d *model.Document) {})

	t.Run("all owner documents", func(t *testing.T) {
		res, err := svc.List(ctx, "u1", "")
		require.NoError(t, err)
		assert.Equal(t, 2, res.Total)
	})

	t.Run("status filter", func(t *testing.T) {
		res, err := svc.List(ctx, "u1", model.StatusError)
		require.NoError(t, err)
		require.Equal(t, 1, res.Total)
		assert.Equal(t, "doc_b", res.Items[0].ID)
	})

	t.Run("newest first", func(t *testing.T) {
		docs.Mutate("u1", "doc_a", func(d *model.Document) {})

		res, err := svc.List(ctx, "u1", "")
		require.NoError(t, err)
		require.Equal(t, 2, res.Total)
		assert.False(t, res.Items[0].UpdatedAt.Before(res.Items[1].UpdatedAt))
	})

	t.Run("unknown owner is empty", func(t *testing.T) {
		res, err := svc.List(ctx, "nobody", "")
		require.NoError(t, err)
		assert.Equal(t, 0, res.Total)
		assert.Empty(t, res.Items)
	})
}

func TestDocumentGet(t *testing.T) {
	ctx := context.Background()
	docs := store.NewDocumentStore()
	svc := NewDocumentService(docs)
	docs.EnsureOrCreate("u1", "doc_a")

	t.Run("found", func(t *testing.T) {
		doc, err := svc.Get(ctx, "doc_a")
		require.NoError(t, err)
		assert.Equal(t, "doc_a", doc.ID)
	})

	t.Run("missing id", func(t *testing.T) {
		_, err := svc.Get(ctx, "")
		assert.ErrorIs(t, err, ErrIDRequired)
	})

	t.Run("not found", func(t *testing.T) {
		_, err := svc.Get(ctx, "doc_missing")
		assert.ErrorIs(t, err, ErrNotFound)
	})
}

func TestDocumentPatch(t *testing.T) {
	ctx := context.Background()
	docs := store.NewDocumentStore()
	svc := NewDocumentService(docs)
	docs.EnsureOrCreate("u1", "doc_a")

	vendor := "ACME GmbH"
	total := 99.9
	items := []model.LineItem{{Item: "widget", Qty: 3, Price: 33.3}}

	doc, err := svc.Patch(ctx, "doc_a", PatchFields{
		Vendor:    &vendor,
		Total:     &total,
		LineItems: &items,
	})
	require.NoError(t, err)

	assert.Equal(t, "ACME GmbH", doc.Vendor)
	require.NotNil(t, doc.Total)
	assert.Equal(t, 99.9, *doc.Total)
	assert.Equal(t, items, doc.LineItems)
	// Untouched fields keep their values.
	assert.Equal(t, "", doc.InvoiceID)

	t.Run("not found", func(t *testing.T) {
		_, err := svc.Patch(ctx, "doc_missing", PatchFields{Vendor: &vendor})
		assert.ErrorIs(t, err, ErrNotFound)
	})
}

func TestDocumentApproveReject(t *testing.T) {
	ctx := context.Background()
	docs := store.NewDocumentStore()
	svc := NewDocumentService(docs)

	docs.Mutate("u1", "doc_a", func(d *model.Document) {
		d.Status = model.StatusError
		d.ErrorReason = "unreadable scan"
	})

	t.Run("approve clears the error", func(t *testing.T) {
		doc, err := svc.Approve(ctx, "doc_a")
		require.NoError(t, err)
		assert.Equal(t, model.StatusProcessed, doc.Status)
		assert.Empty(t, doc.ErrorReason)
	})

	t.Run("reject with reason", func(t *testing.T) {
		doc, err := svc.Reject(ctx, "doc_a", "wrong vendor")
		require.NoError(t, err)
		assert.Equal(t, model.StatusError, doc.Status)
		assert.Equal(t, "wrong vendor", doc.ErrorReason)
	})

	t.Run("reject default reason", func(t *testing.T) {
		doc, err := svc.Reject(ctx, "doc_a", "")
		require.NoError(t, err)
		assert.Equal(t, "Rejected", doc.ErrorReason)
	})

	t.Run("not found", func(t *testing.T) {
		_, err := svc.Approve(ctx, "doc_missing")
		assert.ErrorIs(t, err, ErrNotFound)

		_, err = svc.Reject(ctx, "doc_missing", "x")
		assert.ErrorIs(t, err, ErrNotFound)
	})
}
