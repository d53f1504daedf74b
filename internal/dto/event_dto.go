package dto

import "mini-shop-be/internal/entity"

// Payment event kinds carried over the in-process bus.
const (
	PaymentEventCreated  = "created"
	PaymentEventApproved = "approved"
	PaymentEventRejected = "rejected"
	PaymentEventNotify   = "notify"
)

// PaymentEventMessage is published after every successful store
// mutation and consumed by the emitter. Pending is recomputed from the
// full collection at publish time, never tracked incrementally.
type PaymentEventMessage struct {
	Kind    string          `json:"kind"`
	Payment *entity.Payment `json:"payment"`
	Message string          `json:"message"`
	Pending int             `json:"pending"`
}
