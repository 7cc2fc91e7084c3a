package estimate

import (
	"github.com/shopspring/decimal"

	"github.com/nandy235/wine-shop-inventory-sub001/internal/catalog"
)

var (
	retailTurnoverRate = decimal.NewFromFloat(0.10)
	tcsRate            = decimal.NewFromFloat(0.01)
)

// priceLines joins line inputs against the catalog and prices each row.
func priceLines(inputs []LineInput, brands map[int64]catalog.Brand) ([]Line, error) {
	lines := make([]Line, 0, len(inputs))
	for _, input := range inputs {
		brand, ok := brands[input.BrandID]
		if !ok {
			return nil, catalog.ErrBrandNotFound
		}
		qty := input.Quantity.Normalize(brand.PackQuantity)
		bottles := qty.TotalBottles(brand.PackQuantity)
		line := Line{
			BrandID:       brand.ID,
			BrandNumber:   brand.BrandNumber,
			Name:          brand.Name,
			SizeML:        brand.SizeML,
			PackQuantity:  brand.PackQuantity,
			Quantity:      qty,
			TotalBottles:  bottles,
			InvoicePrice:  brand.InvoicePrice,
			InvoiceAmount: brand.InvoicePrice.Mul(decimal.NewFromInt(int64(bottles))),
		}
		lines = append(lines, line)
	}
	return lines, nil
}

// computeTotals applies the excise tax cascade over priced lines.
func computeTotals(lines []Line, brands map[int64]catalog.Brand, tenTimesLifted bool) Totals {
	var totals Totals
	for _, line := range lines {
		bottles := decimal.NewFromInt(int64(line.TotalBottles))
		brand := brands[line.BrandID]
		totals.InvoiceValue = totals.InvoiceValue.Add(line.InvoiceAmount)
		totals.MRPRoundingOff = totals.MRPRoundingOff.Add(brand.SpecialMargin.Mul(bottles))
		totals.SpecialExciseCess = totals.SpecialExciseCess.Add(brand.SpecialExciseCess.Mul(bottles))
	}
	totals.NetInvoiceValue = totals.InvoiceValue.Add(totals.MRPRoundingOff)
	if tenTimesLifted {
		totals.RetailExciseTurnoverTax = totals.InvoiceValue.Mul(retailTurnoverRate).Round(2)
	} else {
		totals.RetailExciseTurnoverTax = decimal.Zero
	}
	totals.TCS = totals.NetInvoiceValue.Add(totals.RetailExciseTurnoverTax).Mul(tcsRate).Round(2)
	totals.GrandTotal = totals.NetInvoiceValue.
		Add(totals.RetailExciseTurnoverTax).
		Add(totals.SpecialExciseCess).
		Add(totals.TCS)
	return totals
}
