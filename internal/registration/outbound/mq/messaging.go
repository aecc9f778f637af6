package mq

import (
	"context"
	"encoding/json"
	"strconv"

	"github.com/shandysiswandi/registra/internal/pkg/instrument"
	"github.com/shandysiswandi/registra/internal/pkg/messaging"
	"github.com/shandysiswandi/registra/internal/registration/usecase"
	"github.com/shandysiswandi/registra/internal/shared/event"
	"go.opentelemetry.io/otel/codes"
)

const keyOfCorrelationID string = "cID"

type Messaging struct {
	client messaging.Publisher
	ins    instrument.Instrumentation
}

func NewMessaging(client messaging.Publisher, ins instrument.Instrumentation) *Messaging {
	return &Messaging{client: client, ins: ins}
}

func (m *Messaging) PublishUserRegistered(ctx context.Context, msg usecase.UserRegisteredEvent) error {
	ctx, span := m.ins.Tracer("registration.outbound.mq").Start(ctx, "PublishUserRegistered")
	defer span.End()

	body, err := json.Marshal(event.UserRegisteredMessage{
		UserID:       msg.UserID,
		Name:         msg.Name,
		Email:        msg.Email,
		PhoneNumber:  msg.PhoneNumber,
		RegisteredAt: msg.RegisteredAt,
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	cID := instrument.GetCorrelationID(ctx)
	if _, err := m.client.Publish(ctx, event.UserRegisteredDestination, messaging.OutgoingMessage{
		Body:       body,
		Key:        []byte(strconv.FormatInt(msg.UserID, 10)),
		Headers:    []messaging.Header{{Key: keyOfCorrelationID, Value: []byte(cID)}},
		Attributes: map[string]string{"event": event.UserRegisteredDestination},
	}); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	return nil
}
