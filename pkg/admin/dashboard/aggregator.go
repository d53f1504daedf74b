package dashboard

import (
	"sort"

	"mini-shop-be/internal/dto"
	"mini-shop-be/internal/entity"
	"mini-shop-be/internal/pkg/logger"
)

// Aggregator derives dashboard statistics from the payment collection.
type Aggregator struct {
	logger logger.ILogger
}

// NewAggregator creates a new dashboard aggregator
func NewAggregator(logger logger.ILogger) *Aggregator {
	return &Aggregator{
		logger: logger,
	}
}

// DailySummary groups payments by the UTC calendar date of creation and
// sums currency amount, coin volume and count per day, newest first.
// Records without a creation time are excluded. Pure function of the
// input; nothing is cached.
func (a *Aggregator) DailySummary(records []*entity.Payment) []dto.DailySummaryEntry {
	byDate := make(map[string]*dto.DailySummaryEntry)

	for _, p := range records {
		if p.CreatedAt.IsZero() {
			continue
		}
		key := p.CreatedAt.UTC().Format("2006-01-02")
		entry, ok := byDate[key]
		if !ok {
			entry = &dto.DailySummaryEntry{Date: key}
			byDate[key] = entry
		}
		entry.TotalLAK += p.AmountLAK
		entry.TotalCoin += p.CoinAmount
		entry.Count++
	}

	result := make([]dto.DailySummaryEntry, 0, len(byDate))
	for _, entry := range byDate {
		result = append(result, *entry)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].Date > result[j].Date
	})
	return result
}
