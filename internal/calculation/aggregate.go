package calculation

// Totals holds the report-level sums over a set of computed sources plus the
// global tax applied once to the summed receivable.
type Totals struct {
	TotalGross           float64 `json:"totalGross" gorm:"column:total_gross;not null;default:0"`
	TotalMiscFee         float64 `json:"totalMiscFee" gorm:"column:total_misc_fee;not null;default:0"`
	TotalTax             float64 `json:"totalTax" gorm:"column:total_tax;not null;default:0"`
	TotalNet             float64 `json:"totalNet" gorm:"column:total_net;not null;default:0"`
	SubtotalReceivable   float64 `json:"subtotalReceivable" gorm:"column:subtotal_receivable;not null;default:0"`
	GlobalTaxAmount      float64 `json:"globalTaxAmount" gorm:"column:global_tax_amount;not null;default:0"`
	GrandTotalReceivable float64 `json:"grandTotalReceivable" gorm:"column:grand_total_receivable;not null;default:0"`
}

// Aggregate sums a set of computed sources and applies the global tax rate to
// the receivable subtotal. Per-source tax has already been applied inside
// Compute; the global tax is applied exactly once, after summing.
func Aggregate(sources []Computed, globalTaxRate float64) Totals {
	var t Totals
	for _, s := range sources {
		t.TotalGross += s.GrossInPKR
		t.TotalMiscFee += s.MiscFee
		t.TotalTax += s.TaxAmount
		t.TotalNet += s.Net
		t.SubtotalReceivable += s.Receivable
	}
	t.GlobalTaxAmount = t.SubtotalReceivable * globalTaxRate / 100
	t.GrandTotalReceivable = t.SubtotalReceivable - t.GlobalTaxAmount
	return t
}
