package service

import (
	"cmp"
	"context"
	"log/slog"
	"slices"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/storyspine/storyspine-server/internal/domain"
	"github.com/storyspine/storyspine-server/internal/store"
)

// FeedService composes the home feed.
type FeedService struct {
	feed     store.FeedStore
	pageSize int
	window   time.Duration
	logger   *slog.Logger
	now      func() time.Time
}

// NewFeedService creates a feed composer. window bounds the activity that
// counts towards scores.
func NewFeedService(feed store.FeedStore, pageSize int, window time.Duration, logger *slog.Logger) *FeedService {
	return &FeedService{
		feed:     feed,
		pageSize: pageSize,
		window:   window,
		logger:   logger,
		now:      time.Now,
	}
}

// Compose builds the feed for viewerID ("" for anonymous). Anonymous and
// never-rated viewers get trending. Viewers with ratings plus genre
// preferences or follows get genre and followee matches, padded with trending
// so the feed is never shorter than trending allows.
func (s *FeedService) Compose(ctx context.Context, viewerID string, limit int) (*domain.Feed, error) {
	if limit <= 0 || limit > s.pageSize*5 {
		limit = s.pageSize
	}
	now := s.now()
	since := now.Add(-s.window)

	if viewerID == "" {
		return s.trending(ctx, since, now, limit)
	}

	signal, err := s.feed.FeedSignal(ctx, viewerID)
	if err != nil {
		return nil, storeError(err, "feed")
	}
	if !signal.Personalizable() {
		return s.trending(ctx, since, now, limit)
	}

	var genre, following, trending []domain.FeedItem
	g, gctx := errgroup.WithContext(ctx)
	if signal.Preferences > 0 {
		g.Go(func() error {
			items, err := s.feed.GenreMatches(gctx, viewerID, since, now, limit)
			genre = items
			return err
		})
	}
	if signal.Following > 0 {
		g.Go(func() error {
			items, err := s.feed.FolloweeActivity(gctx, viewerID, since, now, limit)
			following = items
			return err
		})
	}
	g.Go(func() error {
		items, err := s.feed.TrendingBooks(gctx, since, now, limit)
		trending = items
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, storeError(err, "feed")
	}

	items := mergeFeed(limit, genre, following, trending)
	s.logger.DebugContext(ctx, "composed personalized feed",
		"user_id", viewerID,
		"genre_items", len(genre),
		"following_items", len(following),
		"items", len(items),
	)
	return &domain.Feed{Strategy: domain.FeedPersonalized, Items: items}, nil
}

func (s *FeedService) trending(ctx context.Context, since, now time.Time, limit int) (*domain.Feed, error) {
	items, err := s.feed.TrendingBooks(ctx, since, now, limit)
	if err != nil {
		return nil, storeError(err, "feed")
	}
	return &domain.Feed{Strategy: domain.FeedTrending, Items: items}, nil
}

// mergeFeed ranks genre and followee items together by score, keeps one item
// per book, and fills the remaining slots with trending in trending order.
func mergeFeed(limit int, genre, following, trending []domain.FeedItem) []domain.FeedItem {
	best := map[string]domain.FeedItem{}
	for _, item := range slices.Concat(following, genre) {
		if prev, ok := best[item.Book.ID]; !ok || item.Score > prev.Score {
			best[item.Book.ID] = item
		}
	}

	personal := make([]domain.FeedItem, 0, len(best))
	for _, item := range best {
		personal = append(personal, item)
	}
	slices.SortFunc(personal, func(a, b domain.FeedItem) int {
		if c := cmp.Compare(b.Score, a.Score); c != 0 {
			return c
		}
		if c := cmp.Compare(a.Book.Title, b.Book.Title); c != 0 {
			return c
		}
		return cmp.Compare(a.Book.ID, b.Book.ID)
	})
	if len(personal) > limit {
		personal = personal[:limit]
	}

	items := personal
	for _, item := range trending {
		if len(items) >= limit {
			break
		}
		if _, dup := best[item.Book.ID]; dup {
			continue
		}
		items = append(items, item)
	}
	return items
}
