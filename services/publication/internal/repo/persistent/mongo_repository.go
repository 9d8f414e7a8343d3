package persistent

import (
	"context"
	"errors"
	"fmt"
	"time"

	"socialnet/services/publication/internal/entity"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type publicationDocument struct {
	ID        string    `bson:"_id"`
	UserID    string    `bson:"user_id"`
	Text      string    `bson:"text"`
	File      string    `bson:"file,omitempty"`
	CreatedAt time.Time `bson:"created_at"`
}

// publicUserDocument only declares public fields, so secrets are never decoded.
type publicUserDocument struct {
	ID       string `bson:"_id"`
	Name     string `bson:"name"`
	LastName string `bson:"last_name"`
	Nick     string `bson:"nick"`
	Image    string `bson:"image"`
}

var publicUserProjection = bson.M{"name": 1, "last_name": 1, "nick": 1, "image": 1}

type mongoPublicationRepository struct {
	publications *mongo.Collection
	users        *mongo.Collection
}

type mongoFollowRepository struct {
	follows *mongo.Collection
}

func NewMongoPublicationRepository(db *mongo.Database) PublicationRepository {
	return &mongoPublicationRepository{
		publications: db.Collection("publications"),
		users:        db.Collection("users"),
	}
}

func NewMongoFollowRepository(db *mongo.Database) FollowRepository {
	return &mongoFollowRepository{follows: db.Collection("follows")}
}

// EnsureMongoIndexes creates the indexes listings and follow lookups rely on.
func EnsureMongoIndexes(ctx context.Context, db *mongo.Database) error {
	if _, err := db.Collection("publications").Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "created_at", Value: -1}, {Key: "_id", Value: -1}},
	}); err != nil {
		return fmt.Errorf("failed to create publications index: %w", err)
	}
	if _, err := db.Collection("follows").Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "user_id", Value: 1}, {Key: "followed_id", Value: 1}},
		Options: options.Index().SetUnique(true),
	}); err != nil {
		return fmt.Errorf("failed to create follows index: %w", err)
	}
	return nil
}

func (r *mongoPublicationRepository) Create(ctx context.Context, publication *entity.Publication) error {
	doc := publicationDocument{
		ID:     uuid.New().String(),
		UserID: publication.UserID,
		Text:   publication.Text,
		File:   publication.File,
		// mongo stores milliseconds; truncate so the returned value matches what is read back
		CreatedAt: time.Now().UTC().Truncate(time.Millisecond),
	}

	if _, err := r.publications.InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("failed to insert publication: %w", err)
	}

	*publication = *doc.toEntity(nil)
	return nil
}

func (r *mongoPublicationRepository) GetByID(ctx context.Context, id string) (*entity.Publication, error) {
	var doc publicationDocument
	if err := r.publications.FindOne(ctx, bson.M{"_id": id}).Decode(&doc); err != nil {
		return nil, translateMongoError(err)
	}
	return r.withOwner(ctx, &doc)
}

func (r *mongoPublicationRepository) DeleteByOwner(ctx context.Context, id, ownerID string) (*entity.Publication, error) {
	var doc publicationDocument
	err := r.publications.FindOneAndDelete(ctx, bson.M{"_id": id, "user_id": ownerID}).Decode(&doc)
	if err != nil {
		return nil, translateMongoError(err)
	}
	return r.withOwner(ctx, &doc)
}

func (r *mongoPublicationRepository) UpdateFile(ctx context.Context, id, file string) (*entity.Publication, error) {
	var doc publicationDocument
	err := r.publications.FindOneAndUpdate(
		ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{"file": file}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&doc)
	if err != nil {
		return nil, translateMongoError(err)
	}
	return r.withOwner(ctx, &doc)
}

func (r *mongoPublicationRepository) Paginate(ctx context.Context, ownerIDs []string, opts PageOptions) ([]*entity.Publication, int64, error) {
	if len(ownerIDs) == 0 {
		return []*entity.Publication{}, 0, nil
	}

	filter := bson.M{"user_id": bson.M{"$in": ownerIDs}}

	total, err := r.publications.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count publications: %w", err)
	}
	if total == 0 || int64(opts.Offset()) >= total {
		return []*entity.Publication{}, total, nil
	}

	findOptions := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}}).
		SetSkip(int64(opts.Offset())).
		SetLimit(int64(opts.Limit))

	cur, err := r.publications.Find(ctx, filter, findOptions)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list publications: %w", err)
	}
	defer cur.Close(ctx)

	var docs []publicationDocument
	if err := cur.All(ctx, &docs); err != nil {
		return nil, 0, fmt.Errorf("failed to decode publications: %w", err)
	}

	owners, err := r.loadOwners(ctx, docs)
	if err != nil {
		return nil, 0, err
	}

	publications := make([]*entity.Publication, len(docs))
	for i := range docs {
		publications[i] = docs[i].toEntity(owners[docs[i].UserID])
	}
	return publications, total, nil
}

func (r *mongoPublicationRepository) withOwner(ctx context.Context, doc *publicationDocument) (*entity.Publication, error) {
	owners, err := r.loadOwners(ctx, []publicationDocument{*doc})
	if err != nil {
		return nil, err
	}
	return doc.toEntity(owners[doc.UserID]), nil
}

func (r *mongoPublicationRepository) loadOwners(ctx context.Context, docs []publicationDocument) (map[string]*entity.PublicUser, error) {
	seen := make(map[string]bool, len(docs))
	ids := make([]string, 0, len(docs))
	for _, d := range docs {
		if !seen[d.UserID] {
			seen[d.UserID] = true
			ids = append(ids, d.UserID)
		}
	}

	owners := make(map[string]*entity.PublicUser, len(ids))
	if len(ids) == 0 {
		return owners, nil
	}

	cur, err := r.users.Find(ctx, bson.M{"_id": bson.M{"$in": ids}}, options.Find().SetProjection(publicUserProjection))
	if err != nil {
		return nil, fmt.Errorf("failed to load owners: %w", err)
	}
	defer cur.Close(ctx)

	for cur.Next(ctx) {
		var u publicUserDocument
		if err := cur.Decode(&u); err != nil {
			return nil, fmt.Errorf("failed to decode owner: %w", err)
		}
		owners[u.ID] = &entity.PublicUser{
			ID:       u.ID,
			Name:     u.Name,
			LastName: u.LastName,
			Nick:     u.Nick,
			Image:    u.Image,
		}
	}
	return owners, cur.Err()
}

func (r *mongoFollowRepository) FollowingIDs(ctx context.Context, userID string) ([]string, error) {
	cur, err := r.follows.Find(ctx, bson.M{"user_id": userID}, options.Find().SetProjection(bson.M{"followed_id": 1}))
	if err != nil {
		return nil, fmt.Errorf("failed to load follows: %w", err)
	}
	defer cur.Close(ctx)

	ids := make([]string, 0)
	for cur.Next(ctx) {
		var f struct {
			FollowedID string `bson:"followed_id"`
		}
		if err := cur.Decode(&f); err != nil {
			return nil, fmt.Errorf("failed to decode follow: %w", err)
		}
		ids = append(ids, f.FollowedID)
	}
	return ids, cur.Err()
}

func (d *publicationDocument) toEntity(owner *entity.PublicUser) *entity.Publication {
	return &entity.Publication{
		ID:        d.ID,
		UserID:    d.UserID,
		User:      owner,
		Text:      d.Text,
		File:      d.File,
		CreatedAt: d.CreatedAt,
	}
}

func translateMongoError(err error) error {
	if errors.Is(err, mongo.ErrNoDocuments) {
		return entity.ErrNotFound
	}
	return err
}
