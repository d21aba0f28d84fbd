package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"
)

// Repositories hands out repositories bound to one *gorm.DB, either the
// connection pool or a single transaction.
type Repositories interface {
	Businesses() BusinessRepository
	Categories() CategoryRepository
	Features() FeatureRepository
	Locations() LocationRepository
	OpeningHours() OpeningHoursRepository
	SocialLinks() SocialLinksRepository
	Images() ImageRepository
}

type repositories struct {
	db *gorm.DB
}

func NewRepositories(db *gorm.DB) Repositories {
	return &repositories{db: db}
}

func (r *repositories) Businesses() BusinessRepository       { return NewBusinessRepository(r.db) }
func (r *repositories) Categories() CategoryRepository       { return NewCategoryRepository(r.db) }
func (r *repositories) Features() FeatureRepository          { return NewFeatureRepository(r.db) }
func (r *repositories) Locations() LocationRepository        { return NewLocationRepository(r.db) }
func (r *repositories) OpeningHours() OpeningHoursRepository { return NewOpeningHoursRepository(r.db) }
func (r *repositories) SocialLinks() SocialLinksRepository   { return NewSocialLinksRepository(r.db) }
func (r *repositories) Images() ImageRepository              { return NewImageRepository(r.db) }

// TransactionManager runs a unit of work in one database transaction.
type TransactionManager interface {
	// Execute commits when fn returns nil and rolls back on an error or panic.
	// Every repository obtained from repos uses the same transaction.
	Execute(ctx context.Context, fn func(repos Repositories) error) error
}

type gormTransactionManager struct {
	db *gorm.DB
}

func NewTransactionManager(db *gorm.DB) TransactionManager {
	return &gormTransactionManager{db: db}
}

func (tm *gormTransactionManager) Execute(ctx context.Context, fn func(repos Repositories) error) error {
	tx := tm.db.WithContext(ctx).Begin()
	if tx.Error != nil {
		return fmt.Errorf("failed to begin transaction: %w", tx.Error)
	}

	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
			panic(r)
		}
	}()

	if err := fn(NewRepositories(tx)); err != nil {
		if rbErr := tx.Rollback().Error; rbErr != nil {
			return fmt.Errorf("transaction rollback failed: %v (original error: %w)", rbErr, err)
		}
		return err
	}

	if err := tx.Commit().Error; err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}
