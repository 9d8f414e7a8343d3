package usecase

import (
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"path/filepath"
	"strings"
	"time"

	"socialnet/pkg/logger"
	"socialnet/pkg/queue"
	"socialnet/services/publication/internal/entity"
	"socialnet/services/publication/internal/repo/persistent"

	"github.com/google/uuid"
)

const (
	eventPublishTimeout = 2 * time.Second
	mediaCleanupTimeout = 5 * time.Second
)

type PublicationUseCase interface {
	CreatePublication(ctx context.Context, userID, text string) (*entity.Publication, error)
	GetPublication(ctx context.Context, publicationID string) (*entity.Publication, error)
	DeletePublication(ctx context.Context, publicationID, userID string) (*entity.Publication, error)
	ListUserPublications(ctx context.Context, userID string, page, limit int) (*entity.Page, error)
	GetFeed(ctx context.Context, userID string, page, limit int) (*entity.Page, error)
	AttachMedia(ctx context.Context, publicationID string, file *multipart.FileHeader) (*entity.Publication, error)
	GetMediaLocator(ctx context.Context, publicationID string) (string, error)
}

// MediaStore persists an uploaded file and returns where it can be fetched.
type MediaStore interface {
	UploadFile(ctx context.Context, key string, file io.Reader, contentType string) (string, error)
	DeleteFile(ctx context.Context, key string) error
}

type EventPublisher interface {
	Publish(ctx context.Context, routingKey string, event interface{}) error
}

type publicationUseCase struct {
	publicationRepo persistent.PublicationRepository
	followRepo      persistent.FollowRepository
	mediaStore      MediaStore
	publisher       EventPublisher
	logger          *logger.Logger
}

// NewPublicationUseCase wires the query engine. publisher may be nil.
func NewPublicationUseCase(
	publicationRepo persistent.PublicationRepository,
	followRepo persistent.FollowRepository,
	mediaStore MediaStore,
	publisher EventPublisher,
	logger *logger.Logger,
) PublicationUseCase {
	return &publicationUseCase{
		publicationRepo: publicationRepo,
		followRepo:      followRepo,
		mediaStore:      mediaStore,
		publisher:       publisher,
		logger:          logger,
	}
}

type publicationEvent struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	File      string    `json:"file,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

func (uc *publicationUseCase) CreatePublication(ctx context.Context, userID, text string) (*entity.Publication, error) {
	// Owner ids are uuids; any other caller id cannot own anything.
	if !isValidID(userID) {
		return nil, entity.ErrUnauthenticated
	}
	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("%w: text is required", entity.ErrBadRequest)
	}

	publication := &entity.Publication{
		UserID: userID,
		Text:   text,
	}
	if err := uc.publicationRepo.Create(ctx, publication); err != nil {
		return nil, fmt.Errorf("failed to create publication: %w", err)
	}

	uc.publishEvent(queue.RoutingPublicationCreated, publication)
	return publication, nil
}

func (uc *publicationUseCase) GetPublication(ctx context.Context, publicationID string) (*entity.Publication, error) {
	if !isValidID(publicationID) {
		return nil, entity.ErrNotFound
	}
	return uc.publicationRepo.GetByID(ctx, publicationID)
}

func (uc *publicationUseCase) DeletePublication(ctx context.Context, publicationID, userID string) (*entity.Publication, error) {
	if userID == "" {
		return nil, entity.ErrUnauthenticated
	}
	if !isValidID(publicationID) || !isValidID(userID) {
		return nil, entity.ErrNotFound
	}

	publication, err := uc.publicationRepo.DeleteByOwner(ctx, publicationID, userID)
	if err != nil {
		return nil, err
	}

	uc.publishEvent(queue.RoutingPublicationDeleted, publication)
	return publication, nil
}

func (uc *publicationUseCase) ListUserPublications(ctx context.Context, userID string, page, limit int) (*entity.Page, error) {
	// Unknown or malformed ids are not checked against the user store; they simply match nothing.
	if !isValidID(userID) {
		return nil, entity.ErrNoContent
	}
	return uc.paginate(ctx, []string{userID}, page, limit)
}

func (uc *publicationUseCase) GetFeed(ctx context.Context, userID string, page, limit int) (*entity.Page, error) {
	if userID == "" {
		return nil, entity.ErrUnauthenticated
	}
	if !isValidID(userID) {
		return nil, entity.ErrNoFollows
	}

	following, err := uc.followRepo.FollowingIDs(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve follows: %w", err)
	}
	if len(following) == 0 {
		return nil, entity.ErrNoFollows
	}

	return uc.paginate(ctx, following, page, limit)
}

// paginate returns ErrNoContent when nothing matches at all, and an empty
// page with correct totals when the requested page is past the end.
func (uc *publicationUseCase) paginate(ctx context.Context, ownerIDs []string, page, limit int) (*entity.Page, error) {
	opts := normalizePageOptions(page, limit)

	publications, total, err := uc.publicationRepo.Paginate(ctx, ownerIDs, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to paginate publications: %w", err)
	}
	if total == 0 {
		return nil, entity.ErrNoContent
	}

	return newPage(publications, total, opts), nil
}

func (uc *publicationUseCase) AttachMedia(ctx context.Context, publicationID string, file *multipart.FileHeader) (*entity.Publication, error) {
	if !isValidID(publicationID) {
		return nil, entity.ErrNotFound
	}
	if _, err := uc.publicationRepo.GetByID(ctx, publicationID); err != nil {
		return nil, err
	}
	if file == nil {
		return nil, fmt.Errorf("%w: file is required", entity.ErrBadRequest)
	}

	src, err := file.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer src.Close()

	key := fmt.Sprintf("publications/%s/%s%s", publicationID, uuid.New().String(), strings.ToLower(filepath.Ext(file.Filename)))
	contentType := file.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	locator, err := uc.mediaStore.UploadFile(ctx, key, src, contentType)
	if err != nil {
		return nil, fmt.Errorf("failed to store media: %w", err)
	}

	publication, err := uc.publicationRepo.UpdateFile(ctx, publicationID, locator)
	if err != nil {
		uc.discardMedia(key)
		return nil, err
	}

	uc.publishEvent(queue.RoutingPublicationMedia, publication)
	return publication, nil
}

func (uc *publicationUseCase) GetMediaLocator(ctx context.Context, publicationID string) (string, error) {
	publication, err := uc.GetPublication(ctx, publicationID)
	if err != nil {
		return "", err
	}
	if publication.File == "" {
		return "", entity.ErrNotFound
	}
	return publication.File, nil
}

// discardMedia removes an object whose locator never made it onto a publication.
func (uc *publicationUseCase) discardMedia(key string) {
	ctx, cancel := context.WithTimeout(context.Background(), mediaCleanupTimeout)
	defer cancel()

	if err := uc.mediaStore.DeleteFile(ctx, key); err != nil {
		uc.logger.Warn("Failed to remove orphaned media %s: %v", key, err)
	}
}

func (uc *publicationUseCase) publishEvent(routingKey string, publication *entity.Publication) {
	if uc.publisher == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), eventPublishTimeout)
	defer cancel()

	event := publicationEvent{
		ID:        publication.ID,
		UserID:    publication.UserID,
		File:      publication.File,
		CreatedAt: publication.CreatedAt,
	}
	if err := uc.publisher.Publish(ctx, routingKey, event); err != nil {
		uc.logger.Warn("Failed to publish %s for publication %s: %v", routingKey, publication.ID, err)
	}
}

func isValidID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}
