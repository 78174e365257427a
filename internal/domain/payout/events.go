package payout

import (
	"time"

	"staymarket/internal/domain/property"
	"staymarket/internal/domain/shared/money"
)

type PayoutRequested struct {
	PayoutID  PayoutID        `json:"payout_id"`
	Reference string          `json:"reference"`
	Host      property.HostID `json:"host_id"`
	Amount    money.Money     `json:"amount"`
	Method    Method          `json:"method"`
	At        time.Time       `json:"at"`
}

func (e PayoutRequested) EventName() string     { return "payout.requested" }
func (e PayoutRequested) AggregateID() string   { return string(e.PayoutID) }
func (e PayoutRequested) OccurredAt() time.Time { return e.At }
