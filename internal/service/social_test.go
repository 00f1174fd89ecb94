package service

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainerrors "github.com/storyspine/storyspine-server/internal/errors"
	"github.com/storyspine/storyspine-server/internal/store"
)

func (f *fixture) social() *SocialService {
	return NewSocialService(f.store, f.store, f.visibility, nil, f.logger)
}

func (f *fixture) profiles() *ProfileService {
	return NewProfileService(f.store, f.visibility, nil, f.validator, f.logger)
}

func TestFollow_IdempotentWithCounts(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a := f.user(t, "alice", false)
	b := f.user(t, "bob", false)
	social := f.social()

	state, err := social.Follow(ctx, a.ID, b.ID)
	require.NoError(t, err)
	assert.True(t, state.Following)
	assert.Equal(t, 1, state.Counts.Followers)

	state, err = social.Follow(ctx, a.ID, b.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, state.Counts.Followers, "following twice is a no-op")

	state, err = social.Unfollow(ctx, a.ID, b.ID)
	require.NoError(t, err)
	assert.False(t, state.Following)
	assert.Zero(t, state.Counts.Followers)

	state, err = social.Unfollow(ctx, a.ID, b.ID)
	require.NoError(t, err)
	assert.False(t, state.Following)
}

func TestFollow_Rejects(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a := f.user(t, "alice", false)
	social := f.social()

	_, err := social.Follow(ctx, a.ID, a.ID)
	assert.Equal(t, domainerrors.CodeValidation, domainerrors.CodeOf(err))

	_, err = social.Follow(ctx, a.ID, "")
	assert.Equal(t, domainerrors.CodeValidation, domainerrors.CodeOf(err))

	_, err = social.Follow(ctx, a.ID, "usr-ghost")
	assert.Equal(t, domainerrors.CodeNotFound, domainerrors.CodeOf(err))
}

func TestRemoveFollower(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a := f.user(t, "alice", false)
	b := f.user(t, "bob", false)
	f.follow(t, b, a)

	counts, err := f.social().RemoveFollower(ctx, a.ID, b.ID)
	require.NoError(t, err)
	assert.Zero(t, counts.Followers)

	counts, err = f.social().RemoveFollower(ctx, a.ID, b.ID)
	require.NoError(t, err)
	assert.Zero(t, counts.Followers)

	_, err = f.social().RemoveFollower(ctx, a.ID, "")
	assert.Equal(t, domainerrors.CodeValidation, domainerrors.CodeOf(err))
}

func TestConnections_PrivacyGate(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	owner := f.user(t, "owner", false)
	fan := f.user(t, "fan", false)
	stranger := f.user(t, "stranger", false)
	f.follow(t, fan, owner)
	social := f.social()

	followers, err := social.ListFollowers(ctx, stranger.ID, owner.ID, store.Page{})
	require.NoError(t, err)
	require.Len(t, followers, 1)
	assert.Equal(t, "fan", followers[0].Username)

	following, err := social.ListFollowing(ctx, "", fan.ID, store.Page{})
	require.NoError(t, err)
	require.Len(t, following, 1)
	assert.Equal(t, owner.ID, following[0].ID)

	user, err := social.SetPrivacy(ctx, owner.ID, true)
	require.NoError(t, err)
	assert.True(t, user.IsPrivate)

	_, err = social.ListFollowers(ctx, stranger.ID, owner.ID, store.Page{})
	assert.Equal(t, domainerrors.CodeForbidden, domainerrors.CodeOf(err))

	followers, err = social.ListFollowers(ctx, fan.ID, owner.ID, store.Page{})
	require.NoError(t, err, "followers still see the private user")
	assert.Len(t, followers, 1)
}

func TestGetProfile_Gating(t *testing.T) {
	f := newFixture(t, catalogBook("ext-1", "The Hobbit"))
	ctx := context.Background()
	owner := f.user(t, "owner", true)
	viewer := f.user(t, "viewer", false)

	_, err := f.library().SetStatus(ctx, owner.ID, SetStatusRequest{ExternalID: "ext-1", Status: "read"})
	require.NoError(t, err)
	_, err = f.reviews().Upsert(ctx, owner.ID, UpsertReviewRequest{ExternalID: "ext-1", Content: "loved it"})
	require.NoError(t, err)

	profile, err := f.profiles().GetProfile(ctx, viewer.ID, owner.ID)
	require.NoError(t, err)
	assert.True(t, profile.Restricted)
	assert.Equal(t, "owner", profile.Headline.Username)
	assert.Zero(t, profile.BooksReadCount)
	assert.Empty(t, profile.RecentlyFinished)
	assert.Empty(t, profile.RecentReviews)
	assert.False(t, profile.ViewerFollows)

	f.follow(t, viewer, owner)
	profile, err = f.profiles().GetProfile(ctx, viewer.ID, owner.ID)
	require.NoError(t, err)
	assert.False(t, profile.Restricted)
	assert.True(t, profile.ViewerFollows)
	assert.Equal(t, 1, profile.Counts.Followers)
	assert.Equal(t, 1, profile.BooksReadCount)
	require.Len(t, profile.RecentlyFinished, 1)
	assert.Equal(t, "The Hobbit", profile.RecentlyFinished[0].Title)
	require.Len(t, profile.RecentReviews, 1)
	assert.Equal(t, "loved it", profile.RecentReviews[0].Content)

	self, err := f.profiles().GetProfile(ctx, owner.ID, owner.ID)
	require.NoError(t, err)
	assert.False(t, self.Restricted)
	assert.False(t, self.ViewerFollows)
}

func TestUpdateProfile(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	u := f.user(t, "reader", false)

	name, bio := "Reader Person", "Reads at night."
	updated, err := f.profiles().UpdateProfile(ctx, u.ID, UpdateProfileRequest{DisplayName: &name, Bio: &bio})
	require.NoError(t, err)
	assert.Equal(t, name, updated.DisplayName)
	assert.Equal(t, bio, updated.Bio)

	empty := ""
	updated, err = f.profiles().UpdateProfile(ctx, u.ID, UpdateProfileRequest{Bio: &empty})
	require.NoError(t, err)
	assert.Equal(t, name, updated.DisplayName, "nil fields are kept")
	assert.Empty(t, updated.Bio)

	unchanged, err := f.profiles().UpdateProfile(ctx, u.ID, UpdateProfileRequest{})
	require.NoError(t, err)
	assert.Equal(t, name, unchanged.DisplayName)
}

func TestFollow_ConcurrentDoubleClick(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	target := f.user(t, "target", true)
	social := f.social()

	const readers = 6
	var wg sync.WaitGroup
	for i := range readers {
		follower := f.user(t, "reader_"+string(rune('a'+i)), false)
		for range 2 {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_, err := social.Follow(ctx, follower.ID, target.ID)
				assert.NoError(t, err)
			}()
		}
	}
	wg.Wait()

	counts, err := f.store.FollowCounts(ctx, target.ID)
	require.NoError(t, err)
	assert.Equal(t, readers, counts.Followers)

	followers, err := social.ListFollowers(ctx, target.ID, target.ID, store.Page{Limit: 50})
	require.NoError(t, err)
	assert.Len(t, followers, readers)
}
