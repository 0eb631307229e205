package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appoutbox "staybook/internal/app/outbox"
)

func TestOutboxClaimLifecycle(t *testing.T) {
	box := NewOutbox()
	ctx := context.Background()
	require.NoError(t, box.Add(ctx, appoutbox.EventRecord{ID: "e1", Name: "booking.submitted"}))
	require.NoError(t, box.Add(ctx, appoutbox.EventRecord{ID: "e2", Name: "calendar.overbooking_prevented"}))

	first, err := box.Claim(ctx, "w")
	require.NoError(t, err)
	require.NotNil(t, first)
	assert.Equal(t, "e1", first.Record.ID)

	second, err := box.Claim(ctx, "w")
	require.NoError(t, err)
	require.NotNil(t, second)
	assert.Equal(t, "e2", second.Record.ID)

	none, err := box.Claim(ctx, "w")
	require.NoError(t, err)
	assert.Nil(t, none)

	require.NoError(t, box.MarkSent(ctx, "e1"))
	require.NoError(t, box.MarkFailed(ctx, "e2", time.Now().Add(-time.Second), "boom"))
	require.Len(t, box.Pending(), 1)

	retry, err := box.Claim(ctx, "w")
	require.NoError(t, err)
	require.NotNil(t, retry)
	assert.Equal(t, 1, retry.Attempts)
}
