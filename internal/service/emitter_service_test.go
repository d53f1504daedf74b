package service

import (
	"testing"

	"mini-shop-be/internal/dto"
	"mini-shop-be/internal/entity"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordedEvent struct {
	Room  string // empty for broadcasts
	Event string
	Data  interface{}
}

type fakeBroadcaster struct {
	events []recordedEvent
}

func (f *fakeBroadcaster) Broadcast(event string, data interface{}) {
	f.events = append(f.events, recordedEvent{Event: event, Data: data})
}

func (f *fakeBroadcaster) ToPlayer(playerId, event string, data interface{}) {
	f.events = append(f.events, recordedEvent{Room: playerId, Event: event, Data: data})
}

func newTestEmitter() (*emitterService, *fakeBroadcaster) {
	fb := &fakeBroadcaster{}
	return &emitterService{
		delivery: fb,
		logger:   nopLogger{},
	}, fb
}

func testPayment() *entity.Payment {
	return &entity.Payment{Id: 7, PlayerId: "p1", Status: entity.PaymentStatusPending}
}

func eventNames(events []recordedEvent) []string {
	names := make([]string, 0, len(events))
	for _, e := range events {
		names = append(names, e.Event)
	}
	return names
}

func TestEmitCreated(t *testing.T) {
	em, fb := newTestEmitter()

	em.Emit(dto.PaymentEventMessage{Kind: dto.PaymentEventCreated, Payment: testPayment(), Message: "received", Pending: 3})

	assert.Equal(t, []string{"new_payment", "customer_notification", "topup_count"}, eventNames(fb.events))

	notif := fb.events[1]
	assert.Equal(t, "p1", notif.Room)
	assert.Equal(t, dto.CustomerNotification{Id: 7, PlayerId: "p1", Message: "received"}, notif.Data)

	count := fb.events[2]
	assert.Empty(t, count.Room)
	assert.Equal(t, dto.TopupCount{Pending: 3}, count.Data)
}

func TestEmitTransitions(t *testing.T) {
	for _, kind := range []string{dto.PaymentEventApproved, dto.PaymentEventRejected} {
		em, fb := newTestEmitter()

		em.Emit(dto.PaymentEventMessage{Kind: kind, Payment: testPayment(), Message: "done", Pending: 0})

		assert.Equal(t, []string{"payment_update", "customer_notification", "topup_count"}, eventNames(fb.events), kind)
	}
}

func TestEmitNotifyOnlyTargetsPlayerRoom(t *testing.T) {
	em, fb := newTestEmitter()

	em.Emit(dto.PaymentEventMessage{Kind: dto.PaymentEventNotify, Payment: testPayment(), Message: "check your slip"})

	require.Len(t, fb.events, 1)
	assert.Equal(t, "customer_notification", fb.events[0].Event)
	assert.Equal(t, "p1", fb.events[0].Room)
}

func TestEmitUnknownKindDoesNothing(t *testing.T) {
	em, fb := newTestEmitter()

	em.Emit(dto.PaymentEventMessage{Kind: "weird", Payment: testPayment()})
	em.Emit(dto.PaymentEventMessage{Kind: dto.PaymentEventCreated, Payment: nil})

	assert.Empty(t, fb.events)
}
