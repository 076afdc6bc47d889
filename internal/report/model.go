package report

import (
	"time"

	"github.com/earnings-tracker/api/internal/calculation"
	"github.com/earnings-tracker/api/internal/source"
	"gorm.io/gorm"
)

// Report is the aggregate root: a named, dated snapshot of income sources
// owned by exactly one user. Totals are a write-time cache; reads recompute
// them from the child sources.
type Report struct {
	ID     uint `gorm:"primaryKey" json:"id"`
	UserID uint `gorm:"not null;index" json:"userId"`

	Title              string  `gorm:"size:255;not null" json:"title"`
	ReportDate         string  `gorm:"size:10;not null" json:"reportDate"`
	// No column defaults here: a zero tax rate is a legal value and must not
	// be coerced, so the API persists exactly what the caller sent.
	GlobalTaxRate      float64 `gorm:"not null" json:"globalTaxRate"`
	DefaultPayoneerFee float64 `gorm:"not null" json:"defaultPayoneerFee"`

	Totals calculation.Totals `gorm:"embedded" json:"totals"`

	Sources []source.Source `gorm:"foreignKey:ReportID;constraint:OnDelete:CASCADE" json:"sources"`

	CreatedAt time.Time      `json:"createdAt"`
	UpdatedAt time.Time      `json:"updatedAt"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deletedAt,omitempty"`
}

// Migrate creates the report table and its relationships.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(&Report{})
}

// Recompute re-runs the calculation pipeline over the persisted sources and
// returns the fresh per-source figures and totals. Stored rows have already
// passed validation, so rejections here indicate drift and are surfaced to
// the caller rather than hidden in zeroed totals.
func (r *Report) Recompute() ([]calculation.Computed, []calculation.Rejection, calculation.Totals) {
	inputs := make([]calculation.Input, len(r.Sources))
	for i, s := range r.Sources {
		inputs[i] = s.AsInput()
	}
	computed, rejections := calculation.ComputeAll(inputs, r.DefaultPayoneerFee)
	return computed, rejections, calculation.Aggregate(computed, r.GlobalTaxRate)
}
