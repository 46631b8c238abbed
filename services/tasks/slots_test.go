package tasks

import (
	"context"
	"errors"
	"testing"
	"time"

	"calendo/testfixtures"

	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestTargetMonth(t *testing.T) {
	now := time.Date(2030, 12, 31, 23, 0, 0, 0, time.UTC)

	y, m := GenerateSlotsPayload{MonthsAhead: 1}.TargetMonth(now)
	assert.Equal(t, 2031, y)
	assert.Equal(t, 1, m)

	y, m = GenerateSlotsPayload{}.TargetMonth(now)
	assert.Equal(t, 2030, y)
	assert.Equal(t, 12, m)

	y, m = GenerateSlotsPayload{Year: 2030, Month: 3, MonthsAhead: 5}.TargetMonth(now)
	assert.Equal(t, 2030, y)
	assert.Equal(t, 3, m)
}

func TestHandleGenerateSlotsTask(t *testing.T) {
	fx := testfixtures.NewScheduling(testfixtures.Worker("w1", "Ann"))
	handler := HandleGenerateSlotsTask(fx.Engine, zap.NewNop())

	task, err := NewGenerateSlotsTask(GenerateSlotsPayload{Year: 2030, Month: 1})
	require.NoError(t, err)
	assert.Equal(t, TypeGenerateSlots, task.Type())

	require.NoError(t, handler(context.Background(), task))
	assert.Len(t, fx.Slots.All(), 200)

	// a second run leaves the month untouched
	require.NoError(t, handler(context.Background(), task))
	assert.Len(t, fx.Slots.All(), 200)
}

func TestHandleGenerateSlotsTaskSkipsRetryOnBadInput(t *testing.T) {
	fx := testfixtures.NewScheduling()
	handler := HandleGenerateSlotsTask(fx.Engine, zap.NewNop())

	err := handler(context.Background(), asynq.NewTask(TypeGenerateSlots, []byte("{not json")))
	assert.True(t, errors.Is(err, asynq.SkipRetry))

	task, err := NewGenerateSlotsTask(GenerateSlotsPayload{Year: 2030, Month: 13})
	require.NoError(t, err)
	err = handler(context.Background(), task)
	assert.True(t, errors.Is(err, asynq.SkipRetry))
}
