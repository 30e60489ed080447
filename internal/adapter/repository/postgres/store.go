package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Abdurahmanit/GroupProject/listing-query-service/internal/listing/domain"
	"github.com/Abdurahmanit/GroupProject/listing-query-service/internal/platform/logger"
	"go.uber.org/zap"
	gormpg "gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// Store is the PostgreSQL implementation of domain.Store.
type Store struct {
	db         *gorm.DB
	listings   *ListingRepository
	categories *CategoryRepository
	locations  *LocationRepository
}

// Open connects to dsn and pings the server.
func Open(ctx context.Context, dsn string, log *logger.Logger) (*Store, error) {
	db, err := gorm.Open(gormpg.Open(dsn), &gorm.Config{
		Logger:                 newGormLogger(log, 200*time.Millisecond),
		SkipDefaultTransaction: true,
		PrepareStmt:            true,
	})
	if err != nil {
		return nil, domain.StoreError("open postgres", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, domain.StoreError("postgres sql.DB", err)
	}
	sqlDB.SetMaxOpenConns(50)
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetConnMaxLifetime(60 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := sqlDB.PingContext(pingCtx); err != nil {
		_ = sqlDB.Close()
		return nil, domain.StoreError("ping postgres", err)
	}
	log.Info("Successfully connected to PostgreSQL")
	return NewStore(db, log), nil
}

// NewStore builds a store over an existing gorm handle.
func NewStore(db *gorm.DB, log *logger.Logger) *Store {
	return &Store{
		db:         db,
		listings:   &ListingRepository{db: db, logger: log.Named("PostgresListingRepository")},
		categories: &CategoryRepository{db: db, logger: log.Named("PostgresCategoryRepository")},
		locations:  &LocationRepository{db: db, logger: log.Named("PostgresLocationRepository")},
	}
}

func (s *Store) Listings() domain.ListingRepository { return s.listings }
func (s *Store) Categories() domain.CategoryRepository { return s.categories }
func (s *Store) Locations() domain.LocationRepository { return s.locations }

func (s *Store) Close(context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return fmt.Errorf("postgres sql.DB: %w", err)
	}
	return sqlDB.Close()
}

type ListingRepository struct {
	db     *gorm.DB
	logger *logger.Logger
}

func (r *ListingRepository) Count(ctx context.Context, where domain.Predicate) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&listingModel{}).Scopes(wherePredicate(where)).Count(&n).Error
	if err != nil {
		r.logger.Error("Failed to count listings", zap.Error(err))
		return 0, domain.StoreError("count listings", err)
	}
	return n, nil
}

func (r *ListingRepository) Find(ctx context.Context, q domain.ListingQuery) ([]*domain.ListingRecord, error) {
	var models []listingModel
	err := r.db.WithContext(ctx).
		Scopes(wherePredicate(q.Where), orderBy(q.Order), window(q.Offset, q.Limit), withRelations).
		Find(&models).Error
	if err != nil {
		r.logger.Error("Failed to find listings", zap.Error(err))
		return nil, domain.StoreError("find listings", err)
	}

	records := make([]*domain.ListingRecord, 0, len(models))
	for i := range models {
		records = append(records, models[i].toRecord())
	}
	return records, nil
}

func (r *ListingRepository) FindByID(ctx context.Context, id int64) (*domain.ListingRecord, error) {
	var m listingModel
	err := r.db.WithContext(ctx).Scopes(withRelations).Where("id = ?", id).Take(&m).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrListingNotFound
		}
		r.logger.Error("Failed to get listing", zap.Int64("listing_id", id), zap.Error(err))
		return nil, domain.StoreError("find listing", err)
	}
	return m.toRecord(), nil
}

type CategoryRepository struct {
	db     *gorm.DB
	logger *logger.Logger
}

func (r *CategoryRepository) FindByID(ctx context.Context, id int64) (*domain.Category, error) {
	var m categoryModel
	err := r.db.WithContext(ctx).Where("id = ?", id).Take(&m).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrCategoryNotFound
		}
		r.logger.Error("Failed to get category", zap.Int64("category_id", id), zap.Error(err))
		return nil, domain.StoreError("find category", err)
	}
	return m.toDomain(), nil
}

func (r *CategoryRepository) FindChildren(ctx context.Context, parentID int64) ([]*domain.Category, error) {
	return r.find(r.db.WithContext(ctx).Where("parent_id = ?", parentID))
}

func (r *CategoryRepository) FindTopLevel(ctx context.Context, limit int) ([]*domain.Category, error) {
	return r.find(r.db.WithContext(ctx).Where("parent_id IS NULL").Scopes(window(0, limit)))
}

func (r *CategoryRepository) find(tx *gorm.DB) ([]*domain.Category, error) {
	var models []categoryModel
	if err := tx.Order("name").Order("id").Find(&models).Error; err != nil {
		r.logger.Error("Failed to find categories", zap.Error(err))
		return nil, domain.StoreError("find categories", err)
	}
	out := make([]*domain.Category, 0, len(models))
	for i := range models {
		out = append(out, models[i].toDomain())
	}
	return out, nil
}

type LocationRepository struct {
	db     *gorm.DB
	logger *logger.Logger
}

func (r *LocationRepository) FindAll(ctx context.Context) ([]*domain.Location, error) {
	var models []locationModel
	if err := r.db.WithContext(ctx).Order("name").Find(&models).Error; err != nil {
		r.logger.Error("Failed to find locations", zap.Error(err))
		return nil, domain.StoreError("find locations", err)
	}
	out := make([]*domain.Location, 0, len(models))
	for _, m := range models {
		out = append(out, &domain.Location{ID: m.ID, Name: m.Name, ParentID: m.ParentID})
	}
	return out, nil
}
