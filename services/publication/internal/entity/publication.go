package entity

import "time"

type Publication struct {
	ID        string      `json:"id"`
	UserID    string      `json:"user_id"`
	User      *PublicUser `json:"user,omitempty"`
	Text      string      `json:"text"`
	File      string      `json:"file,omitempty"`
	CreatedAt time.Time   `json:"created_at"`
}

// Page is one window of a listing ordered by CreatedAt descending.
type Page struct {
	Publications []*Publication `json:"publications"`
	Total        int64          `json:"total"`
	Pages        int            `json:"pages"`
	Page         int            `json:"page"`
	Limit        int            `json:"limit"`
}
