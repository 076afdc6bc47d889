package source

import "github.com/earnings-tracker/api/internal/calculation"

// CreateSourceDTO is the wire shape of one raw source. Missing numeric fields
// unmarshal to zero, matching the coercion rule; PayoneerFee is a pointer so
// an omitted fee can fall back to the report default.
type CreateSourceDTO struct {
	SourceType     string   `json:"sourceType"`
	SourceDate     string   `json:"sourceDate"`
	GrossAmount    float64  `json:"grossAmount"`
	MiscFee        float64  `json:"miscFee"`
	TaxRate        float64  `json:"taxRate"`
	PayoneerFee    *float64 `json:"payoneerFee"`
	ConversionRate float64  `json:"conversionRate"`
}

// AsInput maps the DTO onto a calculation input.
func (d CreateSourceDTO) AsInput() calculation.Input {
	return calculation.Input{
		Type:           calculation.SourceType(d.SourceType),
		Date:           d.SourceDate,
		GrossAmount:    d.GrossAmount,
		MiscFee:        d.MiscFee,
		TaxRate:        d.TaxRate,
		PayoneerFee:    d.PayoneerFee,
		ConversionRate: d.ConversionRate,
	}
}

// AsModel resolves the DTO into a persistable row; the payoneer fee default
// is applied here so stored rows always carry the effective value.
func (d CreateSourceDTO) AsModel(defaultPayoneerFee float64) Source {
	fee := defaultPayoneerFee
	if d.PayoneerFee != nil {
		fee = *d.PayoneerFee
	}
	return Source{
		Type:           d.SourceType,
		Date:           d.SourceDate,
		GrossAmount:    d.GrossAmount,
		MiscFee:        d.MiscFee,
		TaxRate:        d.TaxRate,
		PayoneerFee:    fee,
		ConversionRate: d.ConversionRate,
	}
}
