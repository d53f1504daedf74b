package service

import (
	"context"
	"encoding/json"

	"mini-shop-be/internal/dto"
	"mini-shop-be/internal/entity"
	"mini-shop-be/internal/pkg/logger"
	"mini-shop-be/internal/repository/paymentstore"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
)

type IPaymentService interface {
	CreateTopup(ctx context.Context, input paymentstore.CreateInput) *entity.Payment
	ListPayments() []*entity.Payment
	GetPayment(id int64) (*entity.Payment, error)
	Approve(ctx context.Context, id int64, message string) (*paymentstore.TransitionResult, error)
	Reject(ctx context.Context, id int64, message string) (*paymentstore.TransitionResult, error)
	Notify(ctx context.Context, id int64, message string) (*entity.Payment, error)
}

// paymentService wraps the store and publishes one event per mutation.
// The store itself has no transport dependency; everything realtime
// hangs off the bus so the emitter can be swapped or tested alone.
type paymentService struct {
	store  *paymentstore.Store
	pubSub *gochannel.GoChannel
	topic  string
	logger logger.ILogger
}

func NewPaymentService(store *paymentstore.Store, pubSub *gochannel.GoChannel, topic string, log logger.ILogger) IPaymentService {
	return &paymentService{
		store:  store,
		pubSub: pubSub,
		topic:  topic,
		logger: log,
	}
}

func (s *paymentService) CreateTopup(ctx context.Context, input paymentstore.CreateInput) *entity.Payment {
	p := s.store.Create(input)
	s.publish(dto.PaymentEventCreated, p, p.Notifications[0].Message)
	return p
}

func (s *paymentService) ListPayments() []*entity.Payment {
	return s.store.List()
}

func (s *paymentService) GetPayment(id int64) (*entity.Payment, error) {
	return s.store.FindById(id)
}

func (s *paymentService) Approve(ctx context.Context, id int64, message string) (*paymentstore.TransitionResult, error) {
	res, err := s.store.Transition(id, entity.PaymentStatusApproved, message)
	if err != nil {
		return nil, err
	}
	s.publish(dto.PaymentEventApproved, res.Payment, lastMessage(res.Payment))
	return res, nil
}

func (s *paymentService) Reject(ctx context.Context, id int64, message string) (*paymentstore.TransitionResult, error) {
	res, err := s.store.Transition(id, entity.PaymentStatusRejected, message)
	if err != nil {
		return nil, err
	}
	s.publish(dto.PaymentEventRejected, res.Payment, lastMessage(res.Payment))
	return res, nil
}

func (s *paymentService) Notify(ctx context.Context, id int64, message string) (*entity.Payment, error) {
	p, err := s.store.AppendNotification(id, message)
	if err != nil {
		return nil, err
	}
	s.publish(dto.PaymentEventNotify, p, message)
	return p, nil
}

// publish runs after the persist attempt, never before. Failures are
// logged and swallowed: emission must not fail the HTTP response.
func (s *paymentService) publish(kind string, p *entity.Payment, notifyMessage string) {
	evt := dto.PaymentEventMessage{
		Kind:    kind,
		Payment: p,
		Message: notifyMessage,
		Pending: s.store.PendingCount(),
	}

	payload, err := json.Marshal(evt)
	if err != nil {
		s.logger.Error("PaymentService", "Failed to marshal payment event", map[string]interface{}{"error": err.Error()})
		return
	}

	msg := message.NewMessage(watermill.NewUUID(), payload)
	if err := s.pubSub.Publish(s.topic, msg); err != nil {
		s.logger.Error("PaymentService", "Failed to publish payment event", map[string]interface{}{"error": err.Error(), "kind": kind, "id": p.Id})
	}
}

func lastMessage(p *entity.Payment) string {
	if len(p.Notifications) == 0 {
		return ""
	}
	return p.Notifications[len(p.Notifications)-1].Message
}
