// Package search provides reader discovery over usernames, display names and
// bios using Bleve.
package search

import (
	"strings"

	"github.com/storyspine/storyspine-server/internal/domain"
)

// ReaderDocument is the indexed form of a user.
type ReaderDocument struct {
	ID          string `json:"id"`
	Username    string `json:"username"` // Lowercased for prefix matching
	DisplayName string `json:"display_name"`
	Bio         string `json:"bio"`
	CreatedAt   int64  `json:"created_at"` // Unix millis
}

// ReaderFromUser converts a user into its search document. A private
// reader's bio is not indexed: only the headline is searchable.
func ReaderFromUser(u *domain.User) *ReaderDocument {
	doc := &ReaderDocument{
		ID:          u.ID,
		Username:    strings.ToLower(u.Username),
		DisplayName: u.DisplayName,
		CreatedAt:   u.CreatedAt.UnixMilli(),
	}
	if !u.IsPrivate {
		doc.Bio = u.Bio
	}
	return doc
}

// ToMap converts the document to a map keyed by the mapped field names.
// Empty optional fields are omitted.
func (d *ReaderDocument) ToMap() map[string]any {
	m := map[string]any{
		"id":            d.ID,
		"username":      d.Username,
		"username_text": d.Username,
		"created_at":    d.CreatedAt,
	}
	if d.DisplayName != "" {
		m["display_name"] = d.DisplayName
	}
	if d.Bio != "" {
		m["bio"] = d.Bio
	}
	return m
}
