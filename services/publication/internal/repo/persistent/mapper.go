package persistent

import (
	"socialnet/pkg/models"
	"socialnet/services/publication/internal/entity"
)

func ToPublicationEntity(m *models.Publication) *entity.Publication {
	if m == nil {
		return nil
	}

	return &entity.Publication{
		ID:        m.ID,
		UserID:    m.UserID,
		User:      ToPublicUser(m.User),
		Text:      m.Text,
		File:      m.File,
		CreatedAt: m.CreatedAt,
	}
}

func ToPublicationModel(e *entity.Publication) *models.Publication {
	if e == nil {
		return nil
	}

	return &models.Publication{
		ID:        e.ID,
		UserID:    e.UserID,
		Text:      e.Text,
		File:      e.File,
		CreatedAt: e.CreatedAt,
	}
}

// ToPublicUser copies the public subset of a user row. Password, role and
// email never leave this function even if the row was fully loaded.
func ToPublicUser(m *models.User) *entity.PublicUser {
	if m == nil || m.ID == "" {
		return nil
	}

	return &entity.PublicUser{
		ID:       m.ID,
		Name:     m.Name,
		LastName: m.LastName,
		Nick:     m.Nick,
		Image:    m.Image,
	}
}
