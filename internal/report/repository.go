package report

import (
	"context"
	"errors"

	"github.com/earnings-tracker/api/internal/source"
	"gorm.io/gorm"
)

// ErrNotFound covers both a missing report and a report owned by another
// user. The two cases are indistinguishable to callers on purpose.
var ErrNotFound = errors.New("report not found")

type Repository interface {
	Create(ctx context.Context, r *Report) error
	GetByID(ctx context.Context, id, userID uint) (*Report, error)
	ListByUser(ctx context.Context, userID uint) ([]Report, error)
	Update(ctx context.Context, id, userID uint, updated *Report) error
	Delete(ctx context.Context, id, userID uint) error
}

type repositoryImpl struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repositoryImpl{db: db}
}

// Create inserts the report row and all of its source rows in one
// transaction. GORM inserts the Sources association together with the parent.
func (r *repositoryImpl) Create(ctx context.Context, rep *Report) error {
	tx := r.db.WithContext(ctx).Begin()
	if tx.Error != nil {
		return tx.Error
	}
	if err := tx.Create(rep).Error; err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit().Error
}

func (r *repositoryImpl) GetByID(ctx context.Context, id, userID uint) (*Report, error) {
	var rep Report
	err := r.db.WithContext(ctx).
		Preload("Sources", func(db *gorm.DB) *gorm.DB {
			return db.Order("id ASC")
		}).
		Where("id = ? AND user_id = ?", id, userID).
		First(&rep).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &rep, nil
}

func (r *repositoryImpl) ListByUser(ctx context.Context, userID uint) ([]Report, error) {
	var reports []Report
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&reports).Error
	return reports, err
}

// Update is a full replace: the report columns and totals snapshot are
// rewritten and the child set is deleted and reinserted, all in one
// transaction. A failure anywhere rolls the whole unit back.
func (r *repositoryImpl) Update(ctx context.Context, id, userID uint, updated *Report) error {
	tx := r.db.WithContext(ctx).Begin()
	if tx.Error != nil {
		return tx.Error
	}

	var existing Report
	if err := tx.Where("id = ? AND user_id = ?", id, userID).First(&existing).Error; err != nil {
		_ = tx.Rollback()
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return err
	}

	existing.Title = updated.Title
	existing.ReportDate = updated.ReportDate
	existing.GlobalTaxRate = updated.GlobalTaxRate
	existing.DefaultPayoneerFee = updated.DefaultPayoneerFee
	existing.Totals = updated.Totals

	if err := tx.Save(&existing).Error; err != nil {
		_ = tx.Rollback()
		return err
	}

	if err := tx.Where("report_id = ?", id).Delete(&source.Source{}).Error; err != nil {
		_ = tx.Rollback()
		return err
	}

	for i := range updated.Sources {
		s := updated.Sources[i]
		s.ID = 0
		s.ReportID = id
		if err := tx.Create(&s).Error; err != nil {
			_ = tx.Rollback()
			return err
		}
	}

	return tx.Commit().Error
}

// Delete removes the report and its sources as one unit.
func (r *repositoryImpl) Delete(ctx context.Context, id, userID uint) error {
	tx := r.db.WithContext(ctx).Begin()
	if tx.Error != nil {
		return tx.Error
	}

	var existing Report
	if err := tx.Where("id = ? AND user_id = ?", id, userID).First(&existing).Error; err != nil {
		_ = tx.Rollback()
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return err
	}

	if err := tx.Where("report_id = ?", id).Delete(&source.Source{}).Error; err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.Delete(&existing).Error; err != nil {
		_ = tx.Rollback()
		return err
	}

	return tx.Commit().Error
}
