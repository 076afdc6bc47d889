package report

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/earnings-tracker/api/internal/calculation"
	"github.com/earnings-tracker/api/internal/source"
	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func testDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(&Report{}, &source.Source{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func sampleReport(userID uint) *Report {
	sources := []source.Source{
		{Type: "Direct", Date: "2024-03-01", GrossAmount: 10000, MiscFee: 500, TaxRate: 5},
		{Type: "Fiverr", Date: "2024-03-02", GrossAmount: 100, MiscFee: 1000, TaxRate: 10, PayoneerFee: 2, ConversionRate: 280},
	}
	rep := &Report{
		UserID:             userID,
		Title:              "March earnings",
		ReportDate:         "2024-03-31",
		GlobalTaxRate:      1.0,
		DefaultPayoneerFee: 2.0,
		Sources:            sources,
	}
	inputs := make([]calculation.Input, len(sources))
	for i, s := range sources {
		inputs[i] = s.AsInput()
	}
	computed, _ := calculation.ComputeAll(inputs, rep.DefaultPayoneerFee)
	rep.Totals = calculation.Aggregate(computed, rep.GlobalTaxRate)
	return rep
}

func TestCreateAndGetRoundTrip(t *testing.T) {
	db := testDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	rep := sampleReport(1)
	if err := repo.Create(ctx, rep); err != nil {
		t.Fatalf("create: %v", err)
	}
	if rep.ID == 0 {
		t.Fatal("create did not assign an id")
	}

	got, err := repo.GetByID(ctx, rep.ID, 1)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if len(got.Sources) != 2 {
		t.Fatalf("expected 2 sources, got %d", len(got.Sources))
	}
	if got.Title != "March earnings" || got.GlobalTaxRate != 1.0 {
		t.Fatalf("report columns did not round-trip: %+v", got)
	}

	// Recomputing over the persisted sources must reproduce the snapshot.
	_, rejections, totals := got.Recompute()
	if len(rejections) != 0 {
		t.Fatalf("persisted sources must compute cleanly: %+v", rejections)
	}
	if math.Abs(totals.GrandTotalReceivable-got.Totals.GrandTotalReceivable) > 1e-6 {
		t.Fatalf("stored totals %v drifted from recomputed %v",
			got.Totals.GrandTotalReceivable, totals.GrandTotalReceivable)
	}
	if math.Abs(totals.GrandTotalReceivable-16501.914) > 1e-6 {
		t.Fatalf("grand total: got %v, want 16501.914", totals.GrandTotalReceivable)
	}
}

func TestGetOwnershipIsolation(t *testing.T) {
	db := testDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	rep := sampleReport(1)
	if err := repo.Create(ctx, rep); err != nil {
		t.Fatalf("create: %v", err)
	}

	// Another user asking for the same id gets not-found, not forbidden.
	if _, err := repo.GetByID(ctx, rep.ID, 2); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for foreign owner, got %v", err)
	}
	if err := repo.Update(ctx, rep.ID, 2, sampleReport(2)); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound on foreign update, got %v", err)
	}
	if err := repo.Delete(ctx, rep.ID, 2); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound on foreign delete, got %v", err)
	}

	// The owner still sees it untouched.
	got, err := repo.GetByID(ctx, rep.ID, 1)
	if err != nil {
		t.Fatalf("owner get: %v", err)
	}
	if len(got.Sources) != 2 {
		t.Fatalf("report was modified by a foreign user: %d sources", len(got.Sources))
	}
}

func TestUpdateFullReplace(t *testing.T) {
	db := testDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	rep := sampleReport(1)
	if err := repo.Create(ctx, rep); err != nil {
		t.Fatalf("create: %v", err)
	}

	updated := sampleReport(1)
	updated.Title = "March earnings (fixed)"
	updated.GlobalTaxRate = 2.0
	updated.Sources = []source.Source{
		{Type: "Direct", Date: "2024-03-05", GrossAmount: 7500, MiscFee: 0, TaxRate: 0},
	}
	computed, _ := calculation.ComputeAll([]calculation.Input{updated.Sources[0].AsInput()}, updated.DefaultPayoneerFee)
	updated.Totals = calculation.Aggregate(computed, updated.GlobalTaxRate)

	if err := repo.Update(ctx, rep.ID, 1, updated); err != nil {
		t.Fatalf("update: %v", err)
	}

	got, err := repo.GetByID(ctx, rep.ID, 1)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Title != "March earnings (fixed)" || got.GlobalTaxRate != 2.0 {
		t.Fatalf("report columns not updated: %+v", got)
	}
	if len(got.Sources) != 1 || got.Sources[0].GrossAmount != 7500 {
		t.Fatalf("sources were not fully replaced: %+v", got.Sources)
	}

	var count int64
	if err := db.Model(&source.Source{}).Where("report_id = ?", rep.ID).Count(&count).Error; err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 1 {
		t.Fatalf("old source rows survived the replace: %d live rows", count)
	}
}

// A failure after the old sources are deleted must roll the whole unit back:
// the report stays retrievable with its pre-update source set, never empty.
func TestUpdateAtomicRollback(t *testing.T) {
	db := testDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	rep := sampleReport(1)
	if err := repo.Create(ctx, rep); err != nil {
		t.Fatalf("create: %v", err)
	}

	// The second replacement row violates the gross_amount check constraint,
	// failing the insert phase after the delete phase already ran.
	bad := sampleReport(1)
	bad.Title = "should never land"
	bad.Sources = []source.Source{
		{Type: "Direct", Date: "2024-03-05", GrossAmount: 100},
		{Type: "Direct", Date: "2024-03-06", GrossAmount: -1},
	}
	if err := repo.Update(ctx, rep.ID, 1, bad); err == nil {
		t.Fatal("expected update to fail on the invalid source row")
	}

	got, err := repo.GetByID(ctx, rep.ID, 1)
	if err != nil {
		t.Fatalf("get after failed update: %v", err)
	}
	if got.Title != "March earnings" {
		t.Fatalf("report columns leaked from the failed update: %q", got.Title)
	}
	if len(got.Sources) != 2 {
		t.Fatalf("expected the pre-update source set, got %d sources", len(got.Sources))
	}
}

func TestDeleteCascades(t *testing.T) {
	db := testDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	rep := sampleReport(1)
	if err := repo.Create(ctx, rep); err != nil {
		t.Fatalf("create: %v", err)
	}

	if err := repo.Delete(ctx, rep.ID, 1); err != nil {
		t.Fatalf("delete: %v", err)
	}

	if _, err := repo.GetByID(ctx, rep.ID, 1); !errors.Is(err, ErrNotFound) {
		t.Fatalf("deleted report still retrievable: %v", err)
	}

	var count int64
	if err := db.Model(&source.Source{}).Where("report_id = ?", rep.ID).Count(&count).Error; err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 0 {
		t.Fatalf("orphan source rows after delete: %d", count)
	}

	if err := repo.Delete(ctx, rep.ID, 1); !errors.Is(err, ErrNotFound) {
		t.Fatalf("second delete should be not-found, got %v", err)
	}
}

func TestListByUser(t *testing.T) {
	db := testDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	first := sampleReport(1)
	if err := repo.Create(ctx, first); err != nil {
		t.Fatalf("create: %v", err)
	}
	second := sampleReport(1)
	second.Title = "April earnings"
	if err := repo.Create(ctx, second); err != nil {
		t.Fatalf("create: %v", err)
	}
	foreign := sampleReport(2)
	if err := repo.Create(ctx, foreign); err != nil {
		t.Fatalf("create: %v", err)
	}

	list, err := repo.ListByUser(ctx, 1)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("expected 2 reports for user 1, got %d", len(list))
	}
	for _, rep := range list {
		if rep.UserID != 1 {
			t.Fatalf("list leaked a foreign report: %+v", rep)
		}
		if math.Abs(rep.Totals.GrandTotalReceivable-16501.914) > 1e-6 {
			t.Fatalf("summary totals snapshot wrong: %v", rep.Totals.GrandTotalReceivable)
		}
	}
}
