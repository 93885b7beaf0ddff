package repositories

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/you/accountsvc/domain"
)

// OTPRepositoryImpl implements domain.OTPRepository using GORM. Codes are
// append-only rows; expired rows are simply never selected.
type OTPRepositoryImpl struct {
	db *gorm.DB
}

// DBOneTimeCode represents the database model for OneTimeCode
type DBOneTimeCode struct {
	ID          uint   `gorm:"primaryKey"`
	Identifier  string `gorm:"index:idx_identifier_purpose;size:255"`
	Purpose     string `gorm:"index:idx_identifier_purpose;size:32"`
	Code        string `gorm:"size:16"`
	Attempts    int    `gorm:"not null;default:0"`
	MaxAttempts int
	ExpiresAt   time.Time
	VerifiedAt  *time.Time
	CreatedAt   time.Time `gorm:"index"`
}

// TableName returns the table name for GORM
func (DBOneTimeCode) TableName() string {
	return "one_time_codes"
}

// NewOTPRepository creates a new OTP repository
func NewOTPRepository(db *gorm.DB) domain.OTPRepository {
	return &OTPRepositoryImpl{db: db}
}

// Create implements domain.OTPRepository
func (r *OTPRepositoryImpl) Create(ctx context.Context, code *domain.OneTimeCode) error {
	row := r.domainToDB(code)
	if err := r.db.WithContext(ctx).Create(row).Error; err != nil {
		return err
	}
	code.ID = row.ID
	code.CreatedAt = row.CreatedAt
	return nil
}

// FindLatest implements domain.OTPRepository. Only unconsumed rows are
// considered; the caller decides what an expired row means.
func (r *OTPRepositoryImpl) FindLatest(ctx context.Context, identifier string, purpose domain.OTPPurpose) (*domain.OneTimeCode, error) {
	var row DBOneTimeCode
	err := r.db.WithContext(ctx).
		Where("identifier = ? AND purpose = ? AND verified_at IS NULL", identifier, string(purpose)).
		Order("created_at DESC").
		First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrOTPExpired
		}
		return nil, err
	}
	return r.dbToDomain(&row), nil
}

// IncrementAttempts implements domain.OTPRepository. The increment runs
// under a row lock so concurrent wrong guesses each consume one attempt.
func (r *OTPRepositoryImpl) IncrementAttempts(ctx context.Context, id uint) (int, error) {
	var attempts int
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var row DBOneTimeCode
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("id = ?", id).
			First(&row).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return domain.ErrOTPExpired
			}
			return err
		}
		attempts = row.Attempts + 1
		return tx.Model(&DBOneTimeCode{}).Where("id = ?", id).
			Update("attempts", attempts).Error
	})
	if err != nil {
		return 0, err
	}
	return attempts, nil
}

// MarkVerified implements domain.OTPRepository. The verified_at predicate
// guarantees only one of two concurrent verifications can consume the code.
func (r *OTPRepositoryImpl) MarkVerified(ctx context.Context, id uint, at time.Time) error {
	result := r.db.WithContext(ctx).Model(&DBOneTimeCode{}).
		Where("id = ? AND verified_at IS NULL", id).
		Update("verified_at", at)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domain.ErrOTPExpired
	}
	return nil
}

// CountSince implements domain.OTPRepository
func (r *OTPRepositoryImpl) CountSince(ctx context.Context, identifier string, since time.Time) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&DBOneTimeCode{}).
		Where("identifier = ? AND created_at > ?", identifier, since).
		Count(&count).Error
	return count, err
}

func (r *OTPRepositoryImpl) domainToDB(code *domain.OneTimeCode) *DBOneTimeCode {
	return &DBOneTimeCode{
		ID:          code.ID,
		Identifier:  code.Identifier,
		Purpose:     string(code.Purpose),
		Code:        code.Code,
		Attempts:    code.Attempts,
		MaxAttempts: code.MaxAttempts,
		ExpiresAt:   code.ExpiresAt,
		VerifiedAt:  code.VerifiedAt,
	}
}

func (r *OTPRepositoryImpl) dbToDomain(row *DBOneTimeCode) *domain.OneTimeCode {
	return &domain.OneTimeCode{
		ID:          row.ID,
		Identifier:  row.Identifier,
		Purpose:     domain.OTPPurpose(row.Purpose),
		Code:        row.Code,
		Attempts:    row.Attempts,
		MaxAttempts: row.MaxAttempts,
		ExpiresAt:   row.ExpiresAt,
		VerifiedAt:  row.VerifiedAt,
		CreatedAt:   row.CreatedAt,
	}
}
