package report

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/earnings-tracker/api/internal/auth"
	"github.com/earnings-tracker/api/internal/calculation"
	"github.com/earnings-tracker/api/internal/source"
	"github.com/gorilla/mux"
	"gorm.io/gorm"
)

// storeTimeout bounds every persistence call. A timeout aborts the
// transaction; it never leaves a partial write behind.
const storeTimeout = 5 * time.Second

type Handler struct {
	Repository Repository
}

func NewHandler(db *gorm.DB) *Handler {
	return &Handler{Repository: NewRepository(db)}
}

// POST /calculate
// Stateless: computes every source, excludes the invalid ones and reports
// them per index alongside the totals over the rest.
func (h *Handler) Calculate(w http.ResponseWriter, r *http.Request) {
	var in CalculateDTO
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		http.Error(w, "Invalid JSON", http.StatusBadRequest)
		return
	}

	inputs := make([]calculation.Input, len(in.Sources))
	for i, s := range in.Sources {
		inputs[i] = s.AsInput()
	}
	computed, rejections := calculation.ComputeAll(inputs, in.DefaultPayoneerFee)
	totals := calculation.Aggregate(computed, in.GlobalTaxRate)

	writeJSON(w, http.StatusOK, CalculationResultDTO{
		Sources:    computed,
		Totals:     totals,
		Rejections: rejections,
	})
}

// POST /reports
// Saving is strict: any invalid source fails the whole request before the
// store is touched, so persisted reports only hold sources the calculator
// accepts.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		http.Error(w, "Not authenticated", http.StatusUnauthorized)
		return
	}

	var in SaveReportDTO
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		http.Error(w, "Invalid JSON", http.StatusBadRequest)
		return
	}

	rep, rejections := buildReport(userID, in)
	if len(rejections) > 0 {
		writeJSON(w, http.StatusUnprocessableEntity, RejectionErrorDTO{
			Error:      "One or more sources are invalid",
			Rejections: rejections,
		})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), storeTimeout)
	defer cancel()
	if err := h.Repository.Create(ctx, rep); err != nil {
		http.Error(w, "Failed to save report", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"success":  true,
		"reportId": rep.ID,
	})
}

// GET /reports
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		http.Error(w, "Not authenticated", http.StatusUnauthorized)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), storeTimeout)
	defer cancel()
	reports, err := h.Repository.ListByUser(ctx, userID)
	if err != nil {
		http.Error(w, "Failed to list reports", http.StatusInternalServerError)
		return
	}

	summaries := make([]ReportSummaryDTO, len(reports))
	for i, rep := range reports {
		summaries[i] = ReportSummaryDTO{
			ID:                   rep.ID,
			Title:                rep.Title,
			ReportDate:           rep.ReportDate,
			GrandTotalReceivable: rep.Totals.GrandTotalReceivable,
		}
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"reports": summaries})
}

// GET /reports/{id}
// Derived figures are recomputed from the stored raw sources on every read;
// the persisted totals are only a write-time snapshot.
func (h *Handler) GetByID(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		http.Error(w, "Not authenticated", http.StatusUnauthorized)
		return
	}
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "Invalid report ID", http.StatusBadRequest)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), storeTimeout)
	defer cancel()
	rep, err := h.Repository.GetByID(ctx, uint(id), userID)
	if errors.Is(err, ErrNotFound) {
		http.Error(w, "Report not found", http.StatusNotFound)
		return
	}
	if err != nil {
		http.Error(w, "Failed to load report", http.StatusInternalServerError)
		return
	}

	computed, _, totals := rep.Recompute()
	writeJSON(w, http.StatusOK, ReportDetailDTO{
		Report:   *rep,
		Computed: computed,
		Totals:   totals,
	})
}

// PUT /reports/{id}
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		http.Error(w, "Not authenticated", http.StatusUnauthorized)
		return
	}
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "Invalid report ID", http.StatusBadRequest)
		return
	}

	var in SaveReportDTO
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		http.Error(w, "Invalid JSON", http.StatusBadRequest)
		return
	}

	rep, rejections := buildReport(userID, in)
	if len(rejections) > 0 {
		writeJSON(w, http.StatusUnprocessableEntity, RejectionErrorDTO{
			Error:      "One or more sources are invalid",
			Rejections: rejections,
		})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), storeTimeout)
	defer cancel()
	err = h.Repository.Update(ctx, uint(id), userID, rep)
	if errors.Is(err, ErrNotFound) {
		http.Error(w, "Report not found", http.StatusNotFound)
		return
	}
	if err != nil {
		http.Error(w, "Failed to update report", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

// DELETE /reports/{id}
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		http.Error(w, "Not authenticated", http.StatusUnauthorized)
		return
	}
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "Invalid report ID", http.StatusBadRequest)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), storeTimeout)
	defer cancel()
	err = h.Repository.Delete(ctx, uint(id), userID)
	if errors.Is(err, ErrNotFound) {
		http.Error(w, "Report not found", http.StatusNotFound)
		return
	}
	if err != nil {
		http.Error(w, "Failed to delete report", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

// buildReport validates the sources with the calculator, aggregates the
// totals snapshot and assembles the persistable aggregate. A non-empty
// rejection list means the report must not be saved.
func buildReport(userID uint, in SaveReportDTO) (*Report, []calculation.Rejection) {
	inputs := make([]calculation.Input, len(in.Sources))
	for i, s := range in.Sources {
		inputs[i] = s.AsInput()
	}
	computed, rejections := calculation.ComputeAll(inputs, in.DefaultPayoneerFee)
	if len(rejections) > 0 {
		return nil, rejections
	}

	sources := make([]source.Source, len(in.Sources))
	for i, s := range in.Sources {
		sources[i] = s.AsModel(in.DefaultPayoneerFee)
	}

	return &Report{
		UserID:             userID,
		Title:              in.Title,
		ReportDate:         in.ReportDate,
		GlobalTaxRate:      in.GlobalTaxRate,
		DefaultPayoneerFee: in.DefaultPayoneerFee,
		Totals:             calculation.Aggregate(computed, in.GlobalTaxRate),
		Sources:            sources,
	}, nil
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}
