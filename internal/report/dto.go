package report

import (
	"github.com/earnings-tracker/api/internal/calculation"
	"github.com/earnings-tracker/api/internal/source"
)

// SaveReportDTO is the payload for creating or fully replacing a report. The
// caller always sends the complete desired source list; updates are a
// replace, never a merge.
type SaveReportDTO struct {
	Title              string                   `json:"title"`
	ReportDate         string                   `json:"reportDate"`
	GlobalTaxRate      float64                  `json:"globalTaxRate"`
	DefaultPayoneerFee float64                  `json:"defaultPayoneerFee"`
	Sources            []source.CreateSourceDTO `json:"sources"`
}

// CalculateDTO is the payload for the stateless calculation endpoint.
type CalculateDTO struct {
	GlobalTaxRate      float64                  `json:"globalTaxRate"`
	DefaultPayoneerFee float64                  `json:"defaultPayoneerFee"`
	Sources            []source.CreateSourceDTO `json:"sources"`
}

// CalculationResultDTO carries computed sources, totals and the indices of
// any rejected inputs back to the caller.
type CalculationResultDTO struct {
	Sources    []calculation.Computed  `json:"sources"`
	Totals     calculation.Totals      `json:"totals"`
	Rejections []calculation.Rejection `json:"rejections,omitempty"`
}

// ReportDetailDTO is the full fetch shape: the persisted report plus the
// derived figures recomputed from its sources at read time.
type ReportDetailDTO struct {
	Report   Report                 `json:"report"`
	Computed []calculation.Computed `json:"computedSources"`
	Totals   calculation.Totals     `json:"totals"`
}

// ReportSummaryDTO is one row of the list view.
type ReportSummaryDTO struct {
	ID                   uint    `json:"id"`
	Title                string  `json:"title"`
	ReportDate           string  `json:"reportDate"`
	GrandTotalReceivable float64 `json:"grandTotalReceivable"`
}

// RejectionErrorDTO is the structured 422 body for a strict save whose
// sources failed validation.
type RejectionErrorDTO struct {
	Error      string                  `json:"error"`
	Rejections []calculation.Rejection `json:"rejections"`
}
