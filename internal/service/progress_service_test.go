package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/windfall/kidvocab_service/internal/errors"
	"github.com/windfall/kidvocab_service/internal/logger"
	"github.com/windfall/kidvocab_service/internal/model"
	"github.com/windfall/kidvocab_service/internal/repository"
)

func TestProgressService_RecordAndList(t *testing.T) {
	ctx := context.Background()
	events := &eventPublisherMock{
		PublishWithAttributesFunc: func(ctx context.Context, data interface{}, attrs map[string]string) error {
			event, ok := data.(AttemptEvent)
			require.True(t, ok)
			assert.Equal(t, "attempt.recorded", event.Type)
			return nil
		},
	}
	svc := NewProgressService(repository.NewInMemoryAttemptRepository(50, time.Hour), 2, logger.NewNop()).WithPublisher(events)

	for _, word := range []string{"cat", "dog", "bird"} {
		require.NoError(t, svc.Record(ctx, &model.Attempt{
			SessionID: "s-1",
			Word:      word,
			Mode:      model.ModeSpeaking,
			Score:     120,
		}))
	}

	attempts, err := svc.ListBySession(ctx, "s-1", 0)
	require.NoError(t, err)
	assert.Len(t, attempts, 2, "history limit applies")
	for _, a := range attempts {
		assert.Equal(t, 100, a.Score)
	}

	require.Len(t, events.attrs, 3)
	assert.Equal(t, "s-1", events.attrs[0]["session_id"])
	assert.Equal(t, "SPEAKING", events.attrs[0]["mode"])
}

func TestProgressService_PublishFailureIsNotFatal(t *testing.T) {
	events := &eventPublisherMock{
		PublishWithAttributesFunc: func(ctx context.Context, data interface{}, attrs map[string]string) error {
			return fmt.Errorf("pubsub unavailable")
		},
	}
	svc := NewProgressService(repository.NewInMemoryAttemptRepository(50, time.Hour), 10, logger.NewNop()).WithPublisher(events)

	err := svc.Record(context.Background(), &model.Attempt{SessionID: "s-1", Word: "cat", Mode: model.ModeSpelling})
	assert.NoError(t, err)
}

func TestProgressService_Validation(t *testing.T) {
	svc := NewProgressService(repository.NewInMemoryAttemptRepository(50, time.Hour), 10, logger.NewNop())

	assert.True(t, errors.Is(svc.Record(context.Background(), nil), errors.ErrValidation))
	assert.True(t, errors.Is(svc.Record(context.Background(), &model.Attempt{Word: "cat"}), errors.ErrValidation))

	_, err := svc.ListBySession(context.Background(), " ", 5)
	assert.True(t, errors.Is(err, errors.ErrValidation))
}

func TestProgressService_EmptyHistory(t *testing.T) {
	svc := NewProgressService(repository.NewInMemoryAttemptRepository(50, time.Hour), 10, logger.NewNop())

	attempts, err := svc.ListBySession(context.Background(), "nobody", 5)
	require.NoError(t, err)
	assert.NotNil(t, attempts)
	assert.Empty(t, attempts)
}
