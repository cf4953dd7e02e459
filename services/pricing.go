package services

import "github.com/shopspring/decimal"

var (
	freeShippingAbove = decimal.NewFromInt(1000)
	flatShippingFee   = decimal.NewFromInt(50)
)

type Totals struct {
	Subtotal float64
	Shipping float64
	Total    float64
}

type pricedLine struct {
	Price    float64
	Quantity int
}

// computeTotals sums price x quantity and applies free shipping strictly above 1000.
func computeTotals(lines []pricedLine) Totals {
	subtotal := decimal.Zero
	for _, l := range lines {
		subtotal = subtotal.Add(decimal.NewFromFloat(l.Price).Mul(decimal.NewFromInt(int64(l.Quantity))))
	}
	subtotal = subtotal.Round(2)

	shipping := flatShippingFee
	if subtotal.GreaterThan(freeShippingAbove) {
		shipping = decimal.Zero
	}

	return Totals{
		Subtotal: subtotal.InexactFloat64(),
		Shipping: shipping.InexactFloat64(),
		Total:    subtotal.Add(shipping).InexactFloat64(),
	}
}

// averageRating returns the mean of ratings rounded to one decimal place.
func averageRating(ratings []int) float64 {
	if len(ratings) == 0 {
		return 0
	}
	sum := decimal.Zero
	for _, r := range ratings {
		sum = sum.Add(decimal.NewFromInt(int64(r)))
	}
	return sum.Div(decimal.NewFromInt(int64(len(ratings)))).Round(1).InexactFloat64()
}
