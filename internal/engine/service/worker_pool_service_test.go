package service

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/vendor-ops-ledger/internal/domain/shared"
)

type MockIntentProcessor struct {
	mock.Mock
}

func (m *MockIntentProcessor) Process(ctx context.Context, request *shared.IntentRequest) error {
	args := m.Called(ctx, request)
	return args.Error(0)
}

func newPoolLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestWorkerPoolIntentProcessor_Process(t *testing.T) {
	request := &shared.IntentRequest{
		IntentID:      uuid.New(),
		Type:          shared.IntentRecordClientPayment,
		CorrelationID: "corr-1",
	}

	tests := []struct {
		name          string
		setupMocks    func(base *MockIntentProcessor)
		expectedError error
	}{
		{
			name: "successful processing",
			setupMocks: func(base *MockIntentProcessor) {
				base.On("Process", mock.Anything, mock.MatchedBy(func(r *shared.IntentRequest) bool {
					return r.IntentID == request.IntentID
				})).Return(nil).Once()
			},
		},
		{
			name: "processing error",
			setupMocks: func(base *MockIntentProcessor) {
				base.On("Process", mock.Anything, mock.Anything).Return(errors.New("processing error")).Once()
			},
			expectedError: errors.New("processing error"),
		},
		{
			name: "panic becomes an error",
			setupMocks: func(base *MockIntentProcessor) {
				base.On("Process", mock.Anything, mock.Anything).Run(func(mock.Arguments) {
					panic("nil map")
				}).Return(nil).Once()
			},
			expectedError: errors.New("panicked: nil map"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			base := &MockIntentProcessor{}
			recorder := &MockRecorder{}
			recorder.On("RecordWorkerPool", mock.Anything, 2).Maybe()

			pool, err := NewWorkerPoolIntentProcessor(base, WorkerPoolConfig{Size: 2}, recorder, newPoolLogger())
			require.NoError(t, err)
			defer pool.Shutdown()

			tt.setupMocks(base)

			err = pool.Process(context.Background(), request)
			if tt.expectedError != nil {
				assert.Error(t, err)
				assert.Contains(t, err.Error(), tt.expectedError.Error())
			} else {
				assert.NoError(t, err)
			}
			base.AssertExpectations(t)
		})
	}
}

func TestWorkerPoolIntentProcessor_Concurrency(t *testing.T) {
	base := &MockIntentProcessor{}
	pool, err := NewWorkerPoolIntentProcessor(base, WorkerPoolConfig{Size: 3}, nil, newPoolLogger())
	require.NoError(t, err)
	defer pool.Shutdown()

	var inFlight, peak, done int32
	base.On("Process", mock.Anything, mock.Anything).Run(func(mock.Arguments) {
		current := atomic.AddInt32(&inFlight, 1)
		for {
			seen := atomic.LoadInt32(&peak)
			if current <= seen || atomic.CompareAndSwapInt32(&peak, seen, current) {
				break
			}
		}
		time.Sleep(10 * time.Millisecond)
		atomic.AddInt32(&inFlight, -1)
		atomic.AddInt32(&done, 1)
	}).Return(nil)

	const requests = 12
	var wg sync.WaitGroup
	for i := 0; i < requests; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, pool.Process(context.Background(), &shared.IntentRequest{IntentID: uuid.New()}))
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(requests), atomic.LoadInt32(&done))
	assert.LessOrEqual(t, atomic.LoadInt32(&peak), int32(3))
	assert.Equal(t, 3, pool.Capacity())
}

func TestWorkerPoolIntentProcessor_ContextCancelled(t *testing.T) {
	base := &MockIntentProcessor{}
	pool, err := NewWorkerPoolIntentProcessor(base, WorkerPoolConfig{Size: 1}, nil, newPoolLogger())
	require.NoError(t, err)
	defer pool.Shutdown()

	release := make(chan struct{})
	base.On("Process", mock.Anything, mock.Anything).Run(func(mock.Arguments) {
		<-release
	}).Return(nil)
	defer close(release)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	err = pool.Process(ctx, &shared.IntentRequest{IntentID: uuid.New()})
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
