package persistent

import (
	"errors"
	"testing"
	"time"

	"socialnet/services/publication/internal/entity"

	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/mongo"
)

func TestTranslateMongoError(t *testing.T) {
	assert.ErrorIs(t, translateMongoError(mongo.ErrNoDocuments), entity.ErrNotFound)

	other := errors.New("server selection timeout")
	assert.Equal(t, other, translateMongoError(other))
}

func TestPublicationDocument_ToEntity(t *testing.T) {
	created := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	doc := &publicationDocument{ID: "p1", UserID: "u1", Text: "hello", File: "https://media.test/x.png", CreatedAt: created}
	owner := &entity.PublicUser{ID: "u1", Nick: "ana"}

	p := doc.toEntity(owner)
	assert.Equal(t, "p1", p.ID)
	assert.Equal(t, "u1", p.UserID)
	assert.Equal(t, "hello", p.Text)
	assert.Equal(t, "https://media.test/x.png", p.File)
	assert.Equal(t, created, p.CreatedAt)
	assert.Same(t, owner, p.User)

	assert.Nil(t, doc.toEntity(nil).User)
}
