package dto

import (
	"time"

	"mini-shop-be/internal/entity"
)

// --- Player-facing Payment DTOs ---

type TopupRequest struct {
	PlayerId  string  `form:"playerId" json:"playerId" validate:"required"`
	Coin      float64 `form:"coin" json:"coin" validate:"required,gt=0"`
	AmountLAK float64 `form:"amountLAK" json:"amountLAK" validate:"required,gt=0"`
}

type TopupResponse struct {
	Message string          `json:"message"`
	Data    *entity.Payment `json:"data"`
}

type TransitionRequest struct {
	Message string `json:"message"`
}

type TransitionResponse struct {
	Message        string          `json:"message"`
	Data           *entity.Payment `json:"data"`
	Retransitioned bool            `json:"retransitioned"`
}

type PaymentNotificationsResponse struct {
	Id            int64                      `json:"id"`
	PlayerId      string                     `json:"playerId"`
	Notifications []entity.NotificationEntry `json:"notifications"`
}

type NotifyRequest struct {
	Message string `json:"message"`
}

type NotifyResponse struct {
	Message string           `json:"message"`
	Data    NotifyResultData `json:"data"`
}

type NotifyResultData struct {
	Id      int64  `json:"id"`
	Message string `json:"message"`
}

// --- Realtime payload DTOs ---

// CustomerNotification is the room-scoped payload pushed to one player.
type CustomerNotification struct {
	Id       int64  `json:"id"`
	PlayerId string `json:"playerId"`
	Message  string `json:"message"`
}

// TopupCount is the global pending-badge payload.
type TopupCount struct {
	Pending int `json:"pending"`
}

// --- Health ---

type HealthResponse struct {
	Status    string    `json:"status"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
}
