package mocks

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"invproc/internal/model"
	"invproc/internal/queue"
)

type MockProducer struct {
	mock.Mock
}

func (m *MockProducer) Enqueue(ctx context.Context, job model.UploadJob) (string, error) {
	args := m.Called(ctx, job)
	return args.String(0), args.Error(1)
}

type MockConsumer struct {
	mock.Mock
}

func (m *MockConsumer) Dequeue(ctx context.Context, workerID string) (*queue.Delivery, error) {
	args := m.Called(ctx, workerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*queue.Delivery), args.Error(1)
}

func (m *MockConsumer) Complete(ctx context.Context, jobID string) error {
	args := m.Called(ctx, jobID)
	return args.Error(0)
}

func (m *MockConsumer) Fail(ctx context.Context, jobID, reason string) (bool, error) {
	args := m.Called(ctx, jobID, reason)
	return args.Bool(0), args.Error(1)
}

type MockMaintainer struct {
	mock.Mock
}

func (m *MockMaintainer) RequeueStale(ctx context.Context, olderThan time.Duration) (int64, error) {
	args := m.Called(ctx, olderThan)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockMaintainer) DeadLettered(ctx context.Context) ([]queue.DeadJob, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]queue.DeadJob), args.Error(1)
}
