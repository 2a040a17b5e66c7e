package model

import "voyage/shared"

// Pricing is the breakdown of a corporate quote. Every amount is in cents precision.
type Pricing struct {
	RateID         *string
	DiscountType   *string
	DiscountValue  float64
	BaseAmount     float64
	DiscountAmount float64
	Subtotal       float64
	TaxPercent     float64
	TaxAmount      float64
	ServiceFee     float64
	Total          float64
}

// Price applies rate (nil for list price) to unitPrice*travelers. The discount
// never exceeds the base, tax is charged on the discounted subtotal and the
// service fee is flat.
func Price(rate *Rate, unitPrice float64, travelers int, taxPercent, serviceFee float64) Pricing {
	pricing := Pricing{
		BaseAmount: shared.RoundMoney(unitPrice * float64(travelers)),
		TaxPercent: taxPercent,
		ServiceFee: shared.RoundMoney(serviceFee),
	}

	if rate != nil {
		id, kind := rate.ID, rate.DiscountType
		pricing.RateID, pricing.DiscountType, pricing.DiscountValue = &id, &kind, rate.DiscountValue

		switch rate.DiscountType {
		case DiscountPercentage:
			pricing.DiscountAmount = pricing.BaseAmount * rate.DiscountValue / 100
		case DiscountFixed:
			pricing.DiscountAmount = rate.DiscountValue * float64(travelers)
		}

		pricing.DiscountAmount = shared.RoundMoney(min(pricing.DiscountAmount, pricing.BaseAmount))
	}

	pricing.Subtotal = shared.RoundMoney(pricing.BaseAmount - pricing.DiscountAmount)
	pricing.TaxAmount = shared.RoundMoney(pricing.Subtotal * taxPercent / 100)
	pricing.Total = shared.RoundMoney(pricing.Subtotal + pricing.TaxAmount + pricing.ServiceFee)

	return pricing
}
