package domain

import (
	"time"

	"github.com/storyspine/storyspine-server/internal/color"
)

// User is a reader account.
type User struct {
	ID           string     `json:"id"`
	Username     string     `json:"username"`
	Email        string     `json:"email,omitempty"`
	PasswordHash string     `json:"-"`
	DisplayName  string     `json:"display_name,omitempty"`
	Bio          string     `json:"bio,omitempty"`
	AvatarURL    string     `json:"avatar_url,omitempty"`
	IsPrivate    bool       `json:"is_private"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
	DeletedAt    *time.Time `json:"deleted_at,omitempty"`
}

// IsDeleted reports whether the account has been soft-deleted.
func (u *User) IsDeleted() bool {
	return u.DeletedAt != nil
}

// Headline returns the always-visible part of the user.
func (u *User) Headline() UserHeadline {
	return UserHeadline{
		ID:          u.ID,
		Username:    u.Username,
		DisplayName: u.DisplayName,
		AvatarURL:   u.AvatarURL,
		AvatarColor: color.ForUser(u.ID),
	}
}

// UserHeadline is the identity shown even for private profiles.
type UserHeadline struct {
	ID          string `json:"id"`
	Username    string `json:"username"`
	DisplayName string `json:"display_name,omitempty"`
	AvatarURL   string `json:"avatar_url,omitempty"`
	AvatarColor string `json:"avatar_color"` // Placeholder behind missing avatars
}

// ProfileUpdate carries the editable profile fields. Nil leaves a field untouched.
type ProfileUpdate struct {
	DisplayName *string
	Bio         *string
	AvatarURL   *string
}

// IsEmpty reports whether the update changes nothing.
func (p ProfileUpdate) IsEmpty() bool {
	return p.DisplayName == nil && p.Bio == nil && p.AvatarURL == nil
}

// FollowCounts are the exact edge counts for a user at read time.
type FollowCounts struct {
	Followers int `json:"followers_count"`
	Following int `json:"following_count"`
}

// FollowEdge is a directed follower → followee relationship.
type FollowEdge struct {
	FollowerID string    `json:"follower_id"`
	FolloweeID string    `json:"followee_id"`
	CreatedAt  time.Time `json:"created_at"`
}

// Connection is one row of a followers or following list.
type Connection struct {
	UserHeadline
	IsPrivate  bool      `json:"is_private"`
	FollowedAt time.Time `json:"followed_at"`
}
