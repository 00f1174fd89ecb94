// Package store defines the persistence contracts of the server. Each logical
// operation is a single atomic call; implementations live in subpackages.
package store

import (
	"context"
	"time"

	"github.com/storyspine/storyspine-server/internal/domain"
)

// UserStore persists reader accounts. Soft-deleted users are invisible to every
// lookup and resolve as ErrNotFound.
type UserStore interface {
	CreateUser(ctx context.Context, user *domain.User) error
	GetUser(ctx context.Context, id string) (*domain.User, error)
	// GetUserByLogin matches an email or a username, case-insensitively.
	GetUserByLogin(ctx context.Context, login string) (*domain.User, error)
	UpdateProfile(ctx context.Context, userID string, update domain.ProfileUpdate, now time.Time) (*domain.User, error)
	SetPrivacy(ctx context.Context, userID string, isPrivate bool, now time.Time) (*domain.User, error)
	ListUsers(ctx context.Context) ([]*domain.User, error)
}

// SessionStore persists refresh-token sessions.
type SessionStore interface {
	CreateSession(ctx context.Context, session *domain.Session) error
	GetSessionByRefreshHash(ctx context.Context, hash string) (*domain.Session, error)
	// RotateSession replaces the refresh hash only if it still equals oldHash.
	RotateSession(ctx context.Context, id, oldHash, newHash string, expiresAt, now time.Time) error
	DeleteSession(ctx context.Context, id string) error
	DeleteExpiredSessions(ctx context.Context, now time.Time) (int, error)
}

// BookStore persists lazily created local books.
type BookStore interface {
	GetBookByExternalID(ctx context.Context, externalID string) (*domain.Book, error)
	// EnsureBook inserts book unless its external id is already stored, and
	// returns the stored row. Existing metadata is never overwritten.
	EnsureBook(ctx context.Context, book *domain.Book) (*domain.Book, error)
	ReadingCount(ctx context.Context, bookID string) (int, error)
}

// LibraryStore persists shelf state.
type LibraryStore interface {
	GetLibraryEntry(ctx context.Context, userID, bookID string) (*domain.LibraryEntry, error)
	// SetStatus applies change to the (user, book) entry, creating it when absent.
	SetStatus(ctx context.Context, userID, bookID string, change domain.StatusChange, now time.Time) (*domain.LibraryEntry, error)
	ListLibrary(ctx context.Context, userID string, filter domain.LibraryFilter) ([]domain.LibraryItem, error)
	// StatusesByExternalID returns the user's status for each shelved external id.
	StatusesByExternalID(ctx context.Context, userID string, externalIDs []string) (map[string]domain.ReadingStatus, error)
	ShelfBooks(ctx context.Context, userID string, status domain.ReadingStatus, limit int) ([]domain.BookSummary, error)
	CountByStatus(ctx context.Context, userID string, status domain.ReadingStatus) (int, error)
}

// SocialStore persists the follow graph. Follow and Unfollow are idempotent.
type SocialStore interface {
	Follow(ctx context.Context, followerID, followeeID string, now time.Time) error
	Unfollow(ctx context.Context, followerID, followeeID string) error
	IsFollowing(ctx context.Context, followerID, followeeID string) (bool, error)
	FollowCounts(ctx context.Context, userID string) (domain.FollowCounts, error)
	ListFollowers(ctx context.Context, userID string, page Page) ([]domain.Connection, error)
	ListFollowing(ctx context.Context, userID string, page Page) ([]domain.Connection, error)
}

// EngagementStore persists review likes. The review like_count is kept equal to
// the number of like rows inside the same transaction.
type EngagementStore interface {
	LikeReview(ctx context.Context, userID, reviewID string, now time.Time) (int, error)
	UnlikeReview(ctx context.Context, userID, reviewID string) (int, error)
}

// RatingStore persists ratings and keeps book aggregates current.
type RatingStore interface {
	UpsertRating(ctx context.Context, rating *domain.Rating) error
	GetRating(ctx context.Context, userID, bookID string) (*domain.Rating, error)
}

// ReviewStore persists reviews.
type ReviewStore interface {
	// UpsertReview writes the single review of (user, book), reviving a tombstone.
	UpsertReview(ctx context.Context, review *domain.Review) (*domain.Review, error)
	GetReview(ctx context.Context, id string) (*domain.Review, error)
	SoftDeleteReview(ctx context.Context, id string, now time.Time) error
	// ListBookReviews orders the viewer's own review first, then newest first.
	ListBookReviews(ctx context.Context, bookID, viewerID string, page Page) ([]domain.BookReview, error)
	ListUserReviews(ctx context.Context, userID string, limit int) ([]domain.ProfileReview, error)
}

// FeedStore answers feed ranking queries. Scores are recency weighted: each
// activity contributes 1/(1+age in days).
type FeedStore interface {
	FeedSignal(ctx context.Context, userID string) (domain.FeedSignal, error)
	TrendingBooks(ctx context.Context, since, now time.Time, limit int) ([]domain.FeedItem, error)
	GenreMatches(ctx context.Context, userID string, since, now time.Time, limit int) ([]domain.FeedItem, error)
	FolloweeActivity(ctx context.Context, userID string, since, now time.Time, limit int) ([]domain.FeedItem, error)
}

// GenreStore persists the genre catalogue and preferences.
type GenreStore interface {
	ListGenres(ctx context.Context) ([]domain.Genre, error)
	// MissingGenres returns the slugs that are not in the catalogue.
	MissingGenres(ctx context.Context, slugs []string) ([]string, error)
	ReplacePreferences(ctx context.Context, userID string, slugs []string, now time.Time) error
	ListPreferences(ctx context.Context, userID string) ([]domain.Genre, error)
}

// Store is the full persistence surface.
type Store interface {
	UserStore
	SessionStore
	BookStore
	LibraryStore
	SocialStore
	EngagementStore
	RatingStore
	ReviewStore
	FeedStore
	GenreStore

	Ping(ctx context.Context) error
	Close() error
}
