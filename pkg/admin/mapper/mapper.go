package mapper

import (
	"strings"
	"time"

	"mini-shop-be/internal/dto"
	"mini-shop-be/internal/entity"
)

// PaymentToAdminResponse converts a payment to the legacy dashboard
// shape: coinAmount becomes coin, slipUrl is reduced to a filename and
// createdAt is exposed as time.
func PaymentToAdminResponse(p *entity.Payment) *dto.AdminPaymentResponse {
	if p == nil {
		return nil
	}

	slip := p.SlipURL
	if strings.HasPrefix(slip, "/uploads/") {
		slip = strings.TrimPrefix(slip, "/uploads/")
	}

	var created *time.Time
	if !p.CreatedAt.IsZero() {
		t := p.CreatedAt
		created = &t
	}

	return &dto.AdminPaymentResponse{
		Id:            p.Id,
		PlayerId:      p.PlayerId,
		Coin:          p.CoinAmount,
		AmountLAK:     p.AmountLAK,
		Slip:          slip,
		Status:        p.Status,
		Time:          created,
		Notifications: p.Notifications,
	}
}

// PaymentsToAdminResponse converts multiple payments to the legacy shape.
func PaymentsToAdminResponse(payments []*entity.Payment) []*dto.AdminPaymentResponse {
	res := make([]*dto.AdminPaymentResponse, 0, len(payments))
	for _, p := range payments {
		res = append(res, PaymentToAdminResponse(p))
	}
	return res
}
