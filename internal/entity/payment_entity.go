package entity

import "time"

type PaymentStatus string

const (
	PaymentStatusPending  PaymentStatus = "pending"
	PaymentStatusApproved PaymentStatus = "approved"
	PaymentStatusRejected PaymentStatus = "rejected"
)

type NotificationType string

const (
	NotificationTypeCreated  NotificationType = "created"
	NotificationTypeApproved NotificationType = "approved"
	NotificationTypeRejected NotificationType = "rejected"
	NotificationTypeNotify   NotificationType = "notify"
)

// NotificationEntry is one line of a payment's append-only audit log.
type NotificationEntry struct {
	Message string           `json:"message"`
	At      time.Time        `json:"at"`
	Type    NotificationType `json:"type"`
}

// Payment is the canonical top-up record. The durable representation is
// the JSON form of this struct inside the payments file.
type Payment struct {
	Id            int64               `json:"id"`
	PlayerId      string              `json:"playerId"`
	CoinAmount    float64             `json:"coinAmount"`
	AmountLAK     float64             `json:"amountLAK"`
	SlipURL       string              `json:"slipUrl,omitempty"`
	Status        PaymentStatus       `json:"status"`
	CreatedAt     time.Time           `json:"createdAt"`
	ApprovedAt    *time.Time          `json:"approvedAt,omitempty"`
	RejectedAt    *time.Time          `json:"rejectedAt,omitempty"`
	Notifications []NotificationEntry `json:"notifications"`
}

// Clone returns a deep copy so callers can never reach into store-owned state.
func (p *Payment) Clone() *Payment {
	cp := *p
	cp.Notifications = make([]NotificationEntry, len(p.Notifications))
	copy(cp.Notifications, p.Notifications)
	return &cp
}
