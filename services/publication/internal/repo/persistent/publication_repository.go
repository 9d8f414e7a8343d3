package persistent

import (
	"context"
	"errors"
	"fmt"
	"time"

	"socialnet/pkg/models"
	"socialnet/services/publication/internal/entity"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type publicationRepository struct {
	db *gorm.DB
}

func NewPublicationRepository(db *gorm.DB) PublicationRepository {
	return &publicationRepository{db: db}
}

func preloadPublicUser(db *gorm.DB) *gorm.DB {
	return db.Select(models.PublicUserColumns)
}

func (r *publicationRepository) Create(ctx context.Context, publication *entity.Publication) error {
	publicationModel := ToPublicationModel(publication)
	publicationModel.ID = ""
	// postgres keeps microseconds; truncate so the returned value matches what is read back
	now := time.Now().UTC().Truncate(time.Microsecond)
	publicationModel.CreatedAt = now
	publicationModel.UpdatedAt = now
	if err := r.db.WithContext(ctx).Create(publicationModel).Error; err != nil {
		return fmt.Errorf("failed to insert publication: %w", err)
	}
	*publication = *ToPublicationEntity(publicationModel)
	return nil
}

func (r *publicationRepository) GetByID(ctx context.Context, id string) (*entity.Publication, error) {
	var publicationModel models.Publication
	err := r.db.WithContext(ctx).
		Preload("User", preloadPublicUser).
		Where("id = ?", id).
		First(&publicationModel).Error
	if err != nil {
		return nil, translateError(err)
	}
	return ToPublicationEntity(&publicationModel), nil
}

func (r *publicationRepository) DeleteByOwner(ctx context.Context, id, ownerID string) (*entity.Publication, error) {
	var publicationModel models.Publication

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// The row lock makes a concurrent delete wait and then miss the row.
		if err := ownedForUpdate(tx, id, ownerID).First(&publicationModel).Error; err != nil {
			return err
		}

		if err := tx.Delete(&publicationModel).Error; err != nil {
			return err
		}

		var owner models.User
		if err := tx.Select(models.PublicUserColumns).Where("id = ?", ownerID).Take(&owner).Error; err == nil {
			publicationModel.User = &owner
		}
		return nil
	})
	if err != nil {
		return nil, translateError(err)
	}

	return ToPublicationEntity(&publicationModel), nil
}

func (r *publicationRepository) UpdateFile(ctx context.Context, id, file string) (*entity.Publication, error) {
	result := r.db.WithContext(ctx).
		Model(&models.Publication{}).
		Where("id = ?", id).
		Update("file", file)
	if result.Error != nil {
		return nil, fmt.Errorf("failed to update publication file: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return nil, entity.ErrNotFound
	}
	return r.GetByID(ctx, id)
}

func (r *publicationRepository) Paginate(ctx context.Context, ownerIDs []string, opts PageOptions) ([]*entity.Publication, int64, error) {
	if len(ownerIDs) == 0 {
		return []*entity.Publication{}, 0, nil
	}

	var total int64
	if err := r.db.WithContext(ctx).
		Model(&models.Publication{}).
		Where("user_id IN ?", ownerIDs).
		Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count publications: %w", err)
	}

	if total == 0 || int64(opts.Offset()) >= total {
		return []*entity.Publication{}, total, nil
	}

	var publicationModels []models.Publication
	if err := listQuery(r.db.WithContext(ctx), ownerIDs, opts).
		Preload("User", preloadPublicUser).
		Find(&publicationModels).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list publications: %w", err)
	}

	publications := make([]*entity.Publication, len(publicationModels))
	for i := range publicationModels {
		publications[i] = ToPublicationEntity(&publicationModels[i])
	}
	return publications, total, nil
}

// ownedForUpdate locks the row only when it belongs to ownerID.
func ownedForUpdate(tx *gorm.DB, id, ownerID string) *gorm.DB {
	return tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ? AND user_id = ?", id, ownerID)
}

func listQuery(db *gorm.DB, ownerIDs []string, opts PageOptions) *gorm.DB {
	return db.Model(&models.Publication{}).
		Where("user_id IN ?", ownerIDs).
		Order("created_at DESC").
		Order("id DESC").
		Limit(opts.Limit).
		Offset(opts.Offset())
}

func translateError(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return entity.ErrNotFound
	}
	return err
}
