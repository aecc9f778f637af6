package mq

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/shandysiswandi/registra/internal/pkg/instrument"
	"github.com/shandysiswandi/registra/internal/pkg/messaging"
	"github.com/shandysiswandi/registra/internal/registration/usecase"
	"github.com/shandysiswandi/registra/internal/shared/event"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMessaging_PublishUserRegistered(t *testing.T) {
	pub := messaging.NewNoop(0)
	m := NewMessaging(pub, instrument.NewNoop())

	at := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	ctx := instrument.SetCorrelationID(context.Background(), "cid-1")

	require.NoError(t, m.PublishUserRegistered(ctx, usecase.UserRegisteredEvent{
		UserID:       42,
		Name:         "Andi",
		Email:        "andi@example.com",
		PhoneNumber:  "+62 812-3456",
		RegisteredAt: at,
	}))

	msgs := pub.Messages()
	require.Len(t, msgs, 1)
	assert.Equal(t, event.UserRegisteredDestination, msgs[0].Destination)
	assert.Equal(t, []byte("42"), msgs[0].Message.Key)
	assert.Equal(t, []messaging.Header{{Key: keyOfCorrelationID, Value: []byte("cid-1")}}, msgs[0].Message.Headers)

	var got map[string]any
	require.NoError(t, json.Unmarshal(msgs[0].Message.Body, &got))
	assert.Equal(t, "andi@example.com", got["email"])
	assert.NotContains(t, got, "nik")
	assert.NotContains(t, got, "password")
}

func TestMessaging_PublishCancelled(t *testing.T) {
	m := NewMessaging(messaging.NewNoop(0), instrument.NewNoop())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.ErrorIs(t, m.PublishUserRegistered(ctx, usecase.UserRegisteredEvent{UserID: 1}), context.Canceled)
}
