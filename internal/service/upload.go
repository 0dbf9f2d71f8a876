package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"

	"github.com/google/uuid"

	"invproc/internal/model"
	"invproc/internal/queue"
	"invproc/internal/storage"
)

var ErrReaderNil = errors.New("reader is nil")

// UploadReceipt is returned to the client immediately after enqueueing; the
// document itself is created lazily by the first processing event.
type UploadReceipt struct {
	UploadID   string          `json:"uploadId"`
	DocumentID string          `json:"documentId"`
	Status     model.DocStatus `json:"status"`
}

// UploadService accepts an invoice file, stores it in object storage, and
// hands it to the processing pipeline.
type UploadService interface {
	// Upload streams the file to object storage under
	// {owner}/{documentId}/{filename} and durably enqueues an UploadJob.
	// The object is deleted again if enqueueing fails.
	Upload(ctx context.Context, ownerID string, r io.Reader, originalFilename, contentType string, size int64) (*UploadReceipt, error)
}

type uploadService struct {
	store    storage.Storage
	producer queue.Producer
}

// NewUploadService constructs an UploadService.
func NewUploadService(store storage.Storage, producer queue.Producer) UploadService {
	return &uploadService{store: store, producer: producer}
}

func (s *uploadService) Upload(ctx context.Context, ownerID string, r io.Reader, originalFilename, contentType string, size int64) (*UploadReceipt, error) {
	if r == nil {
		return nil, ErrReaderNil
	}

	documentID := "doc_" + uuid.New().String()
	uploadID := "up_" + uuid.New().String()
	objectKey := path.Join(ownerID, documentID, originalFilename)

	if _, err := s.store.Put(ctx, objectKey, r, storage.PutObjectOptions{
		Size:        size,
		ContentType: contentType,
		Metadata: map[string]string{
			"original-filename": originalFilename,
		},
	}); err != nil {
		return nil, fmt.Errorf("upload to storage: %w", err)
	}

	job := model.UploadJob{
		UploadID:   uploadID,
		DocumentID: documentID,
		ObjectKey:  objectKey,
		OwnerID:    ownerID,
	}
	if _, err := s.producer.Enqueue(ctx, job); err != nil {
		// Rollback: delete the object from storage
		if delErr := s.store.Delete(ctx, objectKey); delErr != nil {
			return nil, fmt.Errorf("enqueue failed: %v; rollback delete failed: %v", err, delErr)
		}
		return nil, fmt.Errorf("enqueue failed: %w", err)
	}

	return &UploadReceipt{
		UploadID:   uploadID,
		DocumentID: documentID,
		Status:     model.StatusPending,
	}, nil
}
