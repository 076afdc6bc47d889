package calculation

import (
	"errors"
	"fmt"
)

// Domain constants shared by both source types. The retention ratio and the
// Fiverr platform fee are fixed business rules, not user settings.
const (
	RetentionRatio = 0.6
	FiverrFeeRatio = 0.2
)

// SourceType selects the calculation branch for a source.
type SourceType string

const (
	TypeDirect SourceType = "Direct"
	TypeFiverr SourceType = "Fiverr"
)

var (
	ErrInvalidGross          = errors.New("gross amount must be greater than zero")
	ErrInvalidConversionRate = errors.New("conversion rate must be greater than zero for Fiverr sources")
	ErrUnknownSourceType     = errors.New("unknown source type")
)

// Input is one raw income event. GrossAmount is PKR for Direct sources and
// USD for Fiverr sources. PayoneerFee is nil when the caller left it out,
// in which case the report-level default applies.
type Input struct {
	Type           SourceType
	Date           string
	GrossAmount    float64
	MiscFee        float64
	TaxRate        float64
	PayoneerFee    *float64
	ConversionRate float64
}

// Computed is an Input plus every derived field of its pipeline. All derived
// values are functions of the input alone; nothing here is stored that cannot
// be recomputed.
type Computed struct {
	Type           SourceType `json:"sourceType"`
	Date           string     `json:"sourceDate"`
	GrossAmount    float64    `json:"grossAmount"`
	MiscFee        float64    `json:"miscFee"`
	TaxRate        float64    `json:"taxRate"`
	PayoneerFee    float64    `json:"payoneerFee"`
	ConversionRate float64    `json:"conversionRate"`

	FiverrFee      float64 `json:"fiverrFee"`
	RemainingUSD   float64 `json:"remainingUSD"`
	ConvertedPKR   float64 `json:"convertedPKR"`
	Net            float64 `json:"net"`
	TaxAmount      float64 `json:"taxAmount"`
	FinalAmount    float64 `json:"finalAmount"`
	Receivable     float64 `json:"receivable"`
	PercentOfGross float64 `json:"percentOfGross"`
	GrossInPKR     float64 `json:"grossInPKR"`
}

// Rejection reports why one input was excluded from a calculation run.
type Rejection struct {
	Index  int    `json:"index"`
	Reason string `json:"reason"`
}

// Compute runs the fee/tax pipeline for a single source. It is pure and
// deterministic; the only failures are the two rejection cases (non-positive
// gross, and a Fiverr source without a positive conversion rate).
func Compute(in Input, defaultPayoneerFee float64) (Computed, error) {
	if in.GrossAmount <= 0 {
		return Computed{}, ErrInvalidGross
	}

	out := Computed{
		Type:           in.Type,
		Date:           in.Date,
		GrossAmount:    in.GrossAmount,
		MiscFee:        in.MiscFee,
		TaxRate:        in.TaxRate,
		ConversionRate: in.ConversionRate,
	}

	switch in.Type {
	case TypeDirect:
		out.Net = in.GrossAmount - in.MiscFee
		out.TaxAmount = out.Net * in.TaxRate / 100
		out.FinalAmount = out.Net - out.TaxAmount
		out.Receivable = out.FinalAmount * RetentionRatio
		out.PercentOfGross = safePercent(out.Receivable, in.GrossAmount)
		out.GrossInPKR = in.GrossAmount

	case TypeFiverr:
		if in.ConversionRate <= 0 {
			return Computed{}, ErrInvalidConversionRate
		}
		fee := defaultPayoneerFee
		if in.PayoneerFee != nil {
			fee = *in.PayoneerFee
		}
		out.PayoneerFee = fee
		out.FiverrFee = in.GrossAmount * FiverrFeeRatio
		out.RemainingUSD = in.GrossAmount - out.FiverrFee - fee
		out.ConvertedPKR = out.RemainingUSD * in.ConversionRate
		out.Net = out.ConvertedPKR - in.MiscFee
		out.TaxAmount = out.Net * in.TaxRate / 100
		out.FinalAmount = out.Net - out.TaxAmount
		out.Receivable = out.FinalAmount * RetentionRatio
		// Denominator is the converted remaining amount, not the raw gross.
		out.PercentOfGross = safePercent(out.Receivable, out.ConvertedPKR)
		out.GrossInPKR = in.GrossAmount * in.ConversionRate

	default:
		return Computed{}, fmt.Errorf("%w: %q", ErrUnknownSourceType, in.Type)
	}

	return out, nil
}

// ComputeAll computes every input, collecting valid results and per-index
// rejections. Rejected inputs never reach aggregation.
func ComputeAll(inputs []Input, defaultPayoneerFee float64) ([]Computed, []Rejection) {
	computed := make([]Computed, 0, len(inputs))
	var rejections []Rejection
	for i, in := range inputs {
		c, err := Compute(in, defaultPayoneerFee)
		if err != nil {
			rejections = append(rejections, Rejection{Index: i, Reason: err.Error()})
			continue
		}
		computed = append(computed, c)
	}
	return computed, rejections
}

// safePercent returns part/whole*100, with 0 as the sentinel when the
// denominator is zero (fees can consume the whole gross).
func safePercent(part, whole float64) float64 {
	if whole == 0 {
		return 0
	}
	return part / whole * 100
}
