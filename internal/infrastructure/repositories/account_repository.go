package repositories

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/you/accountsvc/domain"
)

// AccountRepositoryImpl implements domain.AccountRepository using GORM
type AccountRepositoryImpl struct {
	db *gorm.DB
}

// DBAccount represents the database model for Account. Email and phone are
// nullable so the unique indexes only bind when a value is present. The
// role-specific profile columns are flattened here and reassembled into the
// RoleProfile variant on read.
type DBAccount struct {
	ID           uint       `gorm:"primaryKey"`
	Email        *string    `gorm:"uniqueIndex;size:255"`
	Phone        *string    `gorm:"uniqueIndex;size:32"`
	PasswordHash string     `gorm:"column:password"`
	Name         string     `gorm:"size:255"`
	AvatarURL    string     `gorm:"size:512"`
	Role         string     `gorm:"index;size:32"`
	Status       string     `gorm:"index;size:32"`
	FailedLogins int        `gorm:"not null;default:0"`
	LockedUntil  *time.Time
	BusinessName string `gorm:"size:255"`
	TaxID        string `gorm:"size:64"`
	VehicleType  string `gorm:"size:64"`
	PlateNumber  string `gorm:"size:32"`
	CreatedAt    time.Time `gorm:"index"`
	UpdatedAt    time.Time
	DeletedAt    gorm.DeletedAt `gorm:"index"`
}

// TableName returns the table name for GORM
func (DBAccount) TableName() string {
	return "accounts"
}

// DBLinkedIdentity represents one external identity binding. The compound
// unique index guarantees a provider id is bound to at most one account.
type DBLinkedIdentity struct {
	ID         uint   `gorm:"primaryKey"`
	AccountID  uint   `gorm:"index"`
	Provider   string `gorm:"size:32;uniqueIndex:idx_provider_identity"`
	ProviderID string `gorm:"size:255;uniqueIndex:idx_provider_identity"`
	CreatedAt  time.Time
}

// TableName returns the table name for GORM
func (DBLinkedIdentity) TableName() string {
	return "linked_identities"
}

// NewAccountRepository creates a new account repository
func NewAccountRepository(db *gorm.DB) domain.AccountRepository {
	return &AccountRepositoryImpl{db: db}
}

// Create implements domain.AccountRepository
func (r *AccountRepositoryImpl) Create(ctx context.Context, account *domain.Account) error {
	dbAccount := r.domainToDB(account)
	if err := r.db.WithContext(ctx).Create(dbAccount).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return domain.ErrDuplicateIdentifier
		}
		return err
	}
	account.ID = dbAccount.ID
	account.CreatedAt = dbAccount.CreatedAt
	account.UpdatedAt = dbAccount.UpdatedAt
	return nil
}

// FindByID implements domain.AccountRepository
func (r *AccountRepositoryImpl) FindByID(ctx context.Context, id uint) (*domain.Account, error) {
	var dbAccount DBAccount
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&dbAccount).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrAccountNotFound
		}
		return nil, err
	}
	return r.loadWithIdentities(ctx, &dbAccount)
}

// FindByEmail implements domain.AccountRepository
func (r *AccountRepositoryImpl) FindByEmail(ctx context.Context, email string) (*domain.Account, error) {
	var dbAccount DBAccount
	err := r.db.WithContext(ctx).Where("email = ?", email).First(&dbAccount).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrAccountNotFound
		}
		return nil, err
	}
	return r.loadWithIdentities(ctx, &dbAccount)
}

// FindByPhone implements domain.AccountRepository
func (r *AccountRepositoryImpl) FindByPhone(ctx context.Context, phone string) (*domain.Account, error) {
	var dbAccount DBAccount
	err := r.db.WithContext(ctx).Where("phone = ?", phone).First(&dbAccount).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrAccountNotFound
		}
		return nil, err
	}
	return r.loadWithIdentities(ctx, &dbAccount)
}

// FindByIdentity implements domain.AccountRepository
func (r *AccountRepositoryImpl) FindByIdentity(ctx context.Context, provider, providerID string) (*domain.Account, error) {
	var identity DBLinkedIdentity
	err := r.db.WithContext(ctx).
		Where("provider = ? AND provider_id = ?", provider, providerID).
		First(&identity).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrAccountNotFound
		}
		return nil, err
	}
	return r.FindByID(ctx, identity.AccountID)
}

// Update implements domain.AccountRepository
func (r *AccountRepositoryImpl) Update(ctx context.Context, account *domain.Account) error {
	dbAccount := r.domainToDB(account)
	return r.db.WithContext(ctx).Save(dbAccount).Error
}

// UpdateStatus implements domain.AccountRepository
func (r *AccountRepositoryImpl) UpdateStatus(ctx context.Context, id uint, status domain.Status) error {
	return r.db.WithContext(ctx).Model(&DBAccount{}).
		Where("id = ?", id).
		Update("status", string(status)).Error
}

// UpdatePassword implements domain.AccountRepository
func (r *AccountRepositoryImpl) UpdatePassword(ctx context.Context, id uint, passwordHash string) error {
	return r.db.WithContext(ctx).Model(&DBAccount{}).
		Where("id = ?", id).
		Update("password", passwordHash).Error
}

// LinkIdentity implements domain.AccountRepository
func (r *AccountRepositoryImpl) LinkIdentity(ctx context.Context, identity *domain.LinkedIdentity) error {
	row := &DBLinkedIdentity{
		AccountID:  identity.AccountID,
		Provider:   identity.Provider,
		ProviderID: identity.ProviderID,
	}
	if err := r.db.WithContext(ctx).Create(row).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return domain.ErrAlreadyLinked
		}
		return err
	}
	identity.CreatedAt = row.CreatedAt
	return nil
}

// ListByStatus implements domain.AccountRepository
func (r *AccountRepositoryImpl) ListByStatus(ctx context.Context, status domain.Status) ([]*domain.Account, error) {
	var rows []DBAccount
	err := r.db.WithContext(ctx).
		Where("status = ?", string(status)).
		Order("created_at ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	accounts := make([]*domain.Account, 0, len(rows))
	for i := range rows {
		accounts = append(accounts, r.dbToDomain(&rows[i]))
	}
	return accounts, nil
}

// RecordFailedLogin implements domain.AccountRepository. The read, the
// increment and the lock transition happen under a row lock so concurrent
// failed attempts cannot under- or over-count the ceiling.
func (r *AccountRepositoryImpl) RecordFailedLogin(ctx context.Context, id uint, maxAttempts int, lockFor time.Duration, now time.Time) (int, *time.Time, error) {
	var attempts int
	var lockedUntil *time.Time

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var dbAccount DBAccount
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("id = ?", id).
			First(&dbAccount).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return domain.ErrAccountNotFound
			}
			return err
		}

		attempts = dbAccount.FailedLogins + 1
		updates := map[string]interface{}{"failed_logins": attempts}

		if attempts >= maxAttempts {
			until := now.Add(lockFor)
			lockedUntil = &until
			updates["status"] = string(domain.StatusLocked)
			updates["locked_until"] = until
			updates["failed_logins"] = 0
		}

		return tx.Model(&DBAccount{}).Where("id = ?", id).Updates(updates).Error
	})
	if err != nil {
		return 0, nil, err
	}
	return attempts, lockedUntil, nil
}

// ResetFailedLogins implements domain.AccountRepository
func (r *AccountRepositoryImpl) ResetFailedLogins(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Model(&DBAccount{}).
		Where("id = ?", id).
		Update("failed_logins", 0).Error
}

// Unlock implements domain.AccountRepository. The status predicate makes
// the transition conditional, so a concurrent unlock is harmless.
func (r *AccountRepositoryImpl) Unlock(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Model(&DBAccount{}).
		Where("id = ? AND status = ?", id, string(domain.StatusLocked)).
		Updates(map[string]interface{}{
			"status":        string(domain.StatusActive),
			"locked_until":  nil,
			"failed_logins": 0,
		}).Error
}

func (r *AccountRepositoryImpl) loadWithIdentities(ctx context.Context, dbAccount *DBAccount) (*domain.Account, error) {
	account := r.dbToDomain(dbAccount)

	var identities []DBLinkedIdentity
	if err := r.db.WithContext(ctx).Where("account_id = ?", dbAccount.ID).Find(&identities).Error; err != nil {
		return nil, err
	}
	for _, id := range identities {
		account.Identities = append(account.Identities, domain.LinkedIdentity{
			AccountID:  id.AccountID,
			Provider:   id.Provider,
			ProviderID: id.ProviderID,
			CreatedAt:  id.CreatedAt,
		})
	}
	return account, nil
}

// domainToDB converts a domain account to the database model
func (r *AccountRepositoryImpl) domainToDB(account *domain.Account) *DBAccount {
	dbAccount := &DBAccount{
		ID:           account.ID,
		PasswordHash: account.PasswordHash,
		Name:         account.Name,
		AvatarURL:    account.AvatarURL,
		Role:         string(account.Role),
		Status:       string(account.Status),
		FailedLogins: account.FailedLogins,
		LockedUntil:  account.LockedUntil,
	}
	if account.Email != "" {
		email := account.Email
		dbAccount.Email = &email
	}
	if account.Phone != "" {
		phone := account.Phone
		dbAccount.Phone = &phone
	}
	switch p := account.Profile.(type) {
	case domain.PartnerProfile:
		dbAccount.BusinessName = p.BusinessName
		dbAccount.TaxID = p.TaxID
	case domain.ShipperProfile:
		dbAccount.VehicleType = p.VehicleType
		dbAccount.PlateNumber = p.PlateNumber
	}
	return dbAccount
}

// dbToDomain converts a database account to the domain model
func (r *AccountRepositoryImpl) dbToDomain(dbAccount *DBAccount) *domain.Account {
	account := &domain.Account{
		ID:           dbAccount.ID,
		PasswordHash: dbAccount.PasswordHash,
		Name:         dbAccount.Name,
		AvatarURL:    dbAccount.AvatarURL,
		Role:         domain.Role(dbAccount.Role),
		Status:       domain.Status(dbAccount.Status),
		FailedLogins: dbAccount.FailedLogins,
		LockedUntil:  dbAccount.LockedUntil,
		CreatedAt:    dbAccount.CreatedAt,
		UpdatedAt:    dbAccount.UpdatedAt,
	}
	if dbAccount.Email != nil {
		account.Email = *dbAccount.Email
	}
	if dbAccount.Phone != nil {
		account.Phone = *dbAccount.Phone
	}
	switch account.Role {
	case domain.RolePartner:
		account.Profile = domain.PartnerProfile{
			BusinessName: dbAccount.BusinessName,
			TaxID:        dbAccount.TaxID,
		}
	case domain.RoleShipper:
		account.Profile = domain.ShipperProfile{
			VehicleType: dbAccount.VehicleType,
			PlateNumber: dbAccount.PlateNumber,
		}
	}
	return account
}
