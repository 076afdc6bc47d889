package source

import (
	"time"

	"github.com/earnings-tracker/api/internal/calculation"
	"gorm.io/gorm"
)

// Source is one income event belonging to a report. Only the raw inputs are
// persisted; every derived figure is recomputed from these columns.
type Source struct {
	ID       uint   `gorm:"primaryKey" json:"id"`
	ReportID uint   `gorm:"not null;index" json:"reportId"`
	Type     string `gorm:"size:50;not null" json:"sourceType"`
	Date     string `gorm:"size:10;not null" json:"sourceDate"`

	GrossAmount    float64 `gorm:"not null;check:gross_amount > 0" json:"grossAmount"`
	MiscFee        float64 `gorm:"not null;default:0" json:"miscFee"`
	TaxRate        float64 `gorm:"not null;default:0" json:"taxRate"`
	PayoneerFee    float64 `gorm:"not null;default:0" json:"payoneerFee"`
	ConversionRate float64 `gorm:"not null;default:0" json:"conversionRate"`

	CreatedAt time.Time      `json:"createdAt"`
	UpdatedAt time.Time      `json:"updatedAt"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deletedAt,omitempty"`
}

// Migrate creates the table and its constraints.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(&Source{})
}

// AsInput converts the persisted row back into a calculation input. The
// persisted payoneer fee is always the resolved value, so it is passed
// explicitly rather than left to the report default.
func (s Source) AsInput() calculation.Input {
	fee := s.PayoneerFee
	return calculation.Input{
		Type:           calculation.SourceType(s.Type),
		Date:           s.Date,
		GrossAmount:    s.GrossAmount,
		MiscFee:        s.MiscFee,
		TaxRate:        s.TaxRate,
		PayoneerFee:    &fee,
		ConversionRate: s.ConversionRate,
	}
}
