package calculation

import (
	"math"
	"testing"
)

func mustCompute(t *testing.T, inputs []Input) []Computed {
	t.Helper()
	computed, rejections := ComputeAll(inputs, 2.0)
	if len(rejections) != 0 {
		t.Fatalf("unexpected rejections: %+v", rejections)
	}
	return computed
}

func sampleInputs() []Input {
	fee := 2.0
	return []Input{
		{Type: TypeDirect, GrossAmount: 10000, MiscFee: 500, TaxRate: 5},
		{Type: TypeFiverr, GrossAmount: 100, PayoneerFee: &fee, ConversionRate: 280, MiscFee: 1000, TaxRate: 10},
	}
}

func TestAggregate(t *testing.T) {
	computed := mustCompute(t, sampleInputs())
	totals := Aggregate(computed, 1.0)

	// 5415.00 from the Direct source + 11253.60 from the Fiverr source.
	approx(t, "subtotalReceivable", totals.SubtotalReceivable, 16668.6)
	approx(t, "globalTaxAmount", totals.GlobalTaxAmount, 166.686)
	approx(t, "grandTotalReceivable", totals.GrandTotalReceivable, 16501.914)

	approx(t, "totalGross", totals.TotalGross, 10000+28000)
	approx(t, "totalMiscFee", totals.TotalMiscFee, 1500)
	approx(t, "totalTax", totals.TotalTax, 475+2084)
	approx(t, "totalNet", totals.TotalNet, 9500+20840)
}

func TestAggregateEmpty(t *testing.T) {
	totals := Aggregate(nil, 5)
	if totals != (Totals{}) {
		t.Fatalf("empty aggregation must be all zeros, got %+v", totals)
	}
}

func TestAggregateOrderIndependent(t *testing.T) {
	fee := 3.5
	inputs := []Input{
		{Type: TypeDirect, GrossAmount: 500, MiscFee: 20, TaxRate: 2},
		{Type: TypeFiverr, GrossAmount: 250, PayoneerFee: &fee, ConversionRate: 278.5, MiscFee: 10, TaxRate: 7},
		{Type: TypeDirect, GrossAmount: 12345.67, TaxRate: 15},
		{Type: TypeFiverr, GrossAmount: 42, ConversionRate: 281},
	}
	forward := Aggregate(mustCompute(t, inputs), 1.5)

	reversed := make([]Input, len(inputs))
	for i, in := range inputs {
		reversed[len(inputs)-1-i] = in
	}
	backward := Aggregate(mustCompute(t, reversed), 1.5)

	if math.Abs(forward.GrandTotalReceivable-backward.GrandTotalReceivable) > eps ||
		math.Abs(forward.SubtotalReceivable-backward.SubtotalReceivable) > eps ||
		math.Abs(forward.TotalGross-backward.TotalGross) > eps {
		t.Fatalf("aggregation depends on input order: %+v vs %+v", forward, backward)
	}
}

func TestAggregateIdempotent(t *testing.T) {
	computed := mustCompute(t, sampleInputs())
	a := Aggregate(computed, 1.0)
	b := Aggregate(computed, 1.0)
	if a != b {
		t.Fatalf("aggregate is not idempotent: %+v vs %+v", a, b)
	}
}

// The per-source tax is applied before the retention step; the global tax is
// applied once, after summing. Conflating the two would change the result.
func TestGlobalTaxAppliedOnceAfterSum(t *testing.T) {
	computed := mustCompute(t, sampleInputs())
	totals := Aggregate(computed, 10)

	var subtotal float64
	for _, c := range computed {
		subtotal += c.Receivable
	}
	approx(t, "globalTaxAmount", totals.GlobalTaxAmount, subtotal*0.1)
	approx(t, "grandTotalReceivable", totals.GrandTotalReceivable, subtotal*0.9)
}
