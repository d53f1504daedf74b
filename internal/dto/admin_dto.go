package dto

import (
	"time"

	"mini-shop-be/internal/entity"
)

// --- Admin Auth DTOs ---

type AdminLoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type AdminLoginResponse struct {
	Ok       bool   `json:"ok"`
	Token    string `json:"token"`
	Username string `json:"username"`
}

// --- Admin Payment DTOs ---

// AdminPaymentResponse is the legacy dashboard shape: the admin client
// predates the current field names, so `coinAmount` becomes `coin`,
// `slipUrl` is stripped to a bare filename and `createdAt` is `time`.
type AdminPaymentResponse struct {
	Id            int64                      `json:"id"`
	PlayerId      string                     `json:"playerId"`
	Coin          float64                    `json:"coin"`
	AmountLAK     float64                    `json:"amountLAK"`
	Slip          string                     `json:"slip,omitempty"`
	Status        entity.PaymentStatus       `json:"status"`
	Time          *time.Time                 `json:"time"`
	Notifications []entity.NotificationEntry `json:"notifications"`
}

type DailySummaryEntry struct {
	Date      string  `json:"date"`
	TotalLAK  float64 `json:"totalLAK"`
	TotalCoin float64 `json:"totalCoin"`
	Count     int     `json:"count"`
}
