package services

import (
	"github.com/shopspring/decimal"
)

// PricingConfig carries the externally-configured pricing rules. Values come
// from viper at startup; the calculator itself never reads configuration.
type PricingConfig struct {
	TaxRate               decimal.Decimal
	FreeShippingThreshold decimal.Decimal
	ShippingFee           decimal.Decimal
}

// DefaultPricingConfig returns the rates used when nothing is configured.
func DefaultPricingConfig() PricingConfig {
	return PricingConfig{
		TaxRate:               decimal.NewFromFloat(0.08),
		FreeShippingThreshold: decimal.NewFromInt(50),
		ShippingFee:           decimal.NewFromFloat(5.99),
	}
}

// PriceLine is one order line as the calculator sees it.
type PriceLine struct {
	Quantity  int
	UnitPrice decimal.Decimal
	Discount  decimal.Decimal
}

// PriceSummary is the derived monetary breakdown of an order.
type PriceSummary struct {
	Subtotal     decimal.Decimal
	Discount     decimal.Decimal
	Tax          decimal.Decimal
	ShippingCost decimal.Decimal
	Total        decimal.Decimal
}

// PricingCalculator derives order totals from line items. It is pure: same
// input, same output, no side effects.
type PricingCalculator struct {
	cfg PricingConfig
}

// NewPricingCalculator creates a new PricingCalculator.
func NewPricingCalculator(cfg PricingConfig) *PricingCalculator {
	return &PricingCalculator{
		cfg: cfg,
	}
}

// LineTotal computes quantity * unitPrice - discount for one line.
func (c *PricingCalculator) LineTotal(line PriceLine) decimal.Decimal {
	return line.UnitPrice.Mul(decimal.NewFromInt(int64(line.Quantity))).Sub(line.Discount)
}

// Calculate sums the lines left to right and applies tax and the
// free-shipping threshold: shipping is waived once the subtotal reaches the
// threshold, otherwise the flat fee applies. Tax is rounded to 2 decimal
// places.
func (c *PricingCalculator) Calculate(lines []PriceLine, orderDiscount decimal.Decimal) PriceSummary {
	subtotal := decimal.Zero
	for _, line := range lines {
		subtotal = subtotal.Add(c.LineTotal(line))
	}

	tax := subtotal.Mul(c.cfg.TaxRate).Round(2)

	shipping := c.cfg.ShippingFee
	if subtotal.GreaterThanOrEqual(c.cfg.FreeShippingThreshold) {
		shipping = decimal.Zero
	}

	total := subtotal.Sub(orderDiscount).Add(tax).Add(shipping)

	return PriceSummary{
		Subtotal:     subtotal,
		Discount:     orderDiscount,
		Tax:          tax,
		ShippingCost: shipping,
		Total:        total,
	}
}
