package service

import (
	"context"
	"encoding/json"
	"time"

	"mini-shop-be/internal/dto"
	"mini-shop-be/internal/pkg/logger"
	"mini-shop-be/pkg/events"
	pktNats "mini-shop-be/pkg/nats"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
)

// RealtimeBroadcaster defines how to push realtime updates.
// Typically implemented by the WebSocket Hub.
type RealtimeBroadcaster interface {
	Broadcast(event string, data interface{})
	ToPlayer(playerId, event string, data interface{})
}

type IEmitterService interface {
	Consume(ctx context.Context) error
}

// emitterService is the notification emitter: it turns completed store
// mutations into websocket events for the admin dashboard and player
// rooms, and mirrors each one onto NATS for external consumers.
type emitterService struct {
	pubSub    *gochannel.GoChannel
	topic     string
	delivery  RealtimeBroadcaster
	publisher *pktNats.Publisher
	logger    logger.ILogger
}

func NewEmitterService(
	pubSub *gochannel.GoChannel,
	topic string,
	delivery RealtimeBroadcaster,
	publisher *pktNats.Publisher,
	log logger.ILogger,
) IEmitterService {
	return &emitterService{
		pubSub:    pubSub,
		topic:     topic,
		delivery:  delivery,
		publisher: publisher,
		logger:    log,
	}
}

func (s *emitterService) Consume(ctx context.Context) error {
	messages, err := s.pubSub.Subscribe(ctx, s.topic)
	if err != nil {
		return err
	}

	go func() {
		for msg := range messages {
			s.processMessage(ctx, msg)
		}
	}()

	return nil
}

func (s *emitterService) processMessage(ctx context.Context, msg *message.Message) {
	var evt dto.PaymentEventMessage
	if err := json.Unmarshal(msg.Payload, &evt); err != nil {
		s.logger.Error("Emitter", "Failed to unmarshal payment event", map[string]interface{}{"error": err.Error()})
		msg.Ack() // invalid message, retrying won't help
		return
	}

	s.Emit(evt)
	msg.Ack()
}

// Emit fans one payment event out to its audiences. Delivery problems
// are logged, never propagated: the triggering request already returned.
func (s *emitterService) Emit(evt dto.PaymentEventMessage) {
	if evt.Payment == nil {
		s.logger.Warn("Emitter", "Payment event without payment", map[string]interface{}{"kind": evt.Kind})
		return
	}

	switch evt.Kind {
	case dto.PaymentEventCreated:
		s.delivery.Broadcast("new_payment", evt.Payment)
		s.notifyCustomer(evt)
		s.delivery.Broadcast("topup_count", dto.TopupCount{Pending: evt.Pending})

	case dto.PaymentEventApproved, dto.PaymentEventRejected:
		s.delivery.Broadcast("payment_update", evt.Payment)
		s.notifyCustomer(evt)
		s.delivery.Broadcast("topup_count", dto.TopupCount{Pending: evt.Pending})

	case dto.PaymentEventNotify:
		s.notifyCustomer(evt)

	default:
		s.logger.Warn("Emitter", "Unknown payment event kind", map[string]interface{}{"kind": evt.Kind})
		return
	}

	s.mirrorToNats(evt)
}

func (s *emitterService) notifyCustomer(evt dto.PaymentEventMessage) {
	s.delivery.ToPlayer(evt.Payment.PlayerId, "customer_notification", dto.CustomerNotification{
		Id:       evt.Payment.Id,
		PlayerId: evt.Payment.PlayerId,
		Message:  evt.Message,
	})
}

// mirrorToNats is fire-and-forget; the bus being down must not matter.
func (s *emitterService) mirrorToNats(evt dto.PaymentEventMessage) {
	if s.publisher == nil {
		return
	}

	natsEvt := events.BaseEvent{
		Type: evt.Kind,
		Data: map[string]interface{}{
			"id":        evt.Payment.Id,
			"player_id": evt.Payment.PlayerId,
			"status":    evt.Payment.Status,
			"amount":    evt.Payment.AmountLAK,
			"coin":      evt.Payment.CoinAmount,
			"message":   evt.Message,
			"pending":   evt.Pending,
		},
		OccurredAt: time.Now(),
	}

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := s.publisher.Publish(ctx, natsEvt); err != nil {
		s.logger.Warn("Emitter", "NATS mirror failed", map[string]interface{}{"error": err.Error(), "kind": evt.Kind})
	}
}
