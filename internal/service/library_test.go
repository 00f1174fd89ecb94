package service

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/storyspine/storyspine-server/internal/domain"
	domainerrors "github.com/storyspine/storyspine-server/internal/errors"
)

func TestSetStatus_Lifecycle(t *testing.T) {
	f := newFixture(t, catalogBook("ext-1", "The Hobbit"))
	ctx := context.Background()
	reader := f.user(t, "reader", false)
	lib := f.library()

	item, err := lib.SetStatus(ctx, reader.ID, SetStatusRequest{ExternalID: "ext-1", Status: "tbr"})
	require.NoError(t, err)
	assert.Equal(t, domain.StatusTBR, item.Entry.Status)
	assert.Equal(t, "The Hobbit", item.Book.Title)
	assert.Nil(t, item.Entry.StartedAt)

	item, err = lib.SetStatus(ctx, reader.ID, SetStatusRequest{ExternalID: "ext-1", Status: "reading", Progress: intPtr(40)})
	require.NoError(t, err)
	assert.Equal(t, 40, item.Entry.Progress)
	require.NotNil(t, item.Entry.StartedAt)
	started := *item.Entry.StartedAt

	item, err = lib.SetStatus(ctx, reader.ID, SetStatusRequest{ExternalID: "ext-1", Status: "read"})
	require.NoError(t, err)
	assert.Equal(t, 100, item.Entry.Progress)
	assert.NotNil(t, item.Entry.FinishedAt)
	assert.True(t, started.Equal(*item.Entry.StartedAt), "started_at is set once")

	assert.Equal(t, 1, f.catalog.Calls(), "the book is captured once")

	items, err := lib.ListOwn(ctx, reader.ID, LibraryQuery{})
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, domain.StatusRead, items[0].Entry.Status)
}

func TestSetStatus_Validation(t *testing.T) {
	f := newFixture(t, catalogBook("ext-1", "The Hobbit"))
	reader := f.user(t, "reader", false)

	tests := []struct {
		name  string
		req   SetStatusRequest
		field string
	}{
		{"unknown status", SetStatusRequest{ExternalID: "ext-1", Status: "burned"}, "status"},
		{"progress too high", SetStatusRequest{ExternalID: "ext-1", Status: "reading", Progress: intPtr(150)}, "progress_percent"},
		{"negative progress", SetStatusRequest{ExternalID: "ext-1", Status: "reading", Progress: intPtr(-1)}, "progress_percent"},
		{"missing book", SetStatusRequest{Status: "reading"}, "external_id"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.library().SetStatus(context.Background(), reader.ID, tt.req)
			require.Error(t, err)

			var derr *domainerrors.Error
			require.ErrorAs(t, err, &derr)
			assert.Equal(t, domainerrors.CodeValidation, derr.Code)
			assert.Contains(t, derr.Details, tt.field)
		})
	}
	assert.Zero(t, f.catalog.Calls(), "invalid requests never reach the catalog")
}

func TestSetStatus_UnknownBook(t *testing.T) {
	f := newFixture(t)
	reader := f.user(t, "reader", false)

	_, err := f.library().SetStatus(context.Background(), reader.ID, SetStatusRequest{ExternalID: "ghost", Status: "tbr"})
	assert.Equal(t, domainerrors.CodeNotFound, domainerrors.CodeOf(err))
}

func TestUpdateEntry(t *testing.T) {
	f := newFixture(t, catalogBook("ext-1", "The Hobbit"))
	ctx := context.Background()
	reader := f.user(t, "reader", false)
	lib := f.library()

	note := "slow start"
	_, err := lib.UpdateEntry(ctx, reader.ID, UpdateEntryRequest{ExternalID: "ext-1", Note: &note})
	assert.Equal(t, domainerrors.CodeNotFound, domainerrors.CodeOf(err))
	assert.Zero(t, f.catalog.Calls(), "updates never capture")

	_, err = lib.SetStatus(ctx, reader.ID, SetStatusRequest{ExternalID: "ext-1", Status: "reading", Progress: intPtr(10)})
	require.NoError(t, err)

	item, err := lib.UpdateEntry(ctx, reader.ID, UpdateEntryRequest{ExternalID: "ext-1", Progress: intPtr(55), Note: &note})
	require.NoError(t, err)
	assert.Equal(t, domain.StatusReading, item.Entry.Status, "status is kept")
	assert.Equal(t, 55, item.Entry.Progress)
	assert.Equal(t, note, item.Entry.Note)

	paused := "paused"
	item, err = lib.UpdateEntry(ctx, reader.ID, UpdateEntryRequest{ExternalID: "ext-1", Status: &paused})
	require.NoError(t, err)
	assert.Equal(t, domain.StatusPaused, item.Entry.Status)
	assert.Equal(t, 55, item.Entry.Progress, "pausing keeps progress")
	assert.Equal(t, note, item.Entry.Note)

	// Another reader has not shelved it.
	other := f.user(t, "other", false)
	_, err = lib.UpdateEntry(ctx, other.ID, UpdateEntryRequest{ExternalID: "ext-1", Progress: intPtr(5)})
	assert.Equal(t, domainerrors.CodeNotFound, domainerrors.CodeOf(err))
}

func TestListLibrary_Filters(t *testing.T) {
	f := newFixture(t, catalogBook("ext-1", "The Hobbit"), catalogBook("ext-2", "Emma"))
	ctx := context.Background()
	reader := f.user(t, "reader", false)
	lib := f.library()

	_, err := lib.SetStatus(ctx, reader.ID, SetStatusRequest{ExternalID: "ext-1", Status: "reading"})
	require.NoError(t, err)
	_, err = lib.SetStatus(ctx, reader.ID, SetStatusRequest{ExternalID: "ext-2", Status: "tbr"})
	require.NoError(t, err)

	items, err := lib.ListOwn(ctx, reader.ID, LibraryQuery{Status: "tbr"})
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "Emma", items[0].Book.Title)

	items, err = lib.ListOwn(ctx, reader.ID, LibraryQuery{Genre: "fantasy"})
	require.NoError(t, err)
	assert.Len(t, items, 2)

	items, err = lib.ListOwn(ctx, reader.ID, LibraryQuery{Genre: "horror"})
	require.NoError(t, err)
	assert.Empty(t, items)

	_, err = lib.ListOwn(ctx, reader.ID, LibraryQuery{Status: "lost"})
	assert.Equal(t, domainerrors.CodeValidation, domainerrors.CodeOf(err))
}

func TestListFor_Privacy(t *testing.T) {
	f := newFixture(t, catalogBook("ext-1", "The Hobbit"))
	ctx := context.Background()
	owner := f.user(t, "owner", true)
	stranger := f.user(t, "stranger", false)
	lib := f.library()

	_, err := lib.SetStatus(ctx, owner.ID, SetStatusRequest{ExternalID: "ext-1", Status: "read"})
	require.NoError(t, err)

	_, err = lib.ListFor(ctx, stranger.ID, owner.ID, LibraryQuery{})
	assert.Equal(t, domainerrors.CodeForbidden, domainerrors.CodeOf(err))

	_, err = lib.ListFor(ctx, "", owner.ID, LibraryQuery{})
	assert.Equal(t, domainerrors.CodeForbidden, domainerrors.CodeOf(err))

	f.follow(t, stranger, owner)
	items, err := lib.ListFor(ctx, stranger.ID, owner.ID, LibraryQuery{})
	require.NoError(t, err)
	assert.Len(t, items, 1)

	_, err = lib.ListFor(ctx, stranger.ID, "usr-missing", LibraryQuery{})
	assert.Equal(t, domainerrors.CodeNotFound, domainerrors.CodeOf(err))
}

func TestSetStatus_ConcurrentFirstShelving(t *testing.T) {
	f := newFixture(t, catalogBook("ext-1", "The Hobbit"))
	ctx := context.Background()
	lib := f.library()

	const readers = 6
	bookIDs := make([]string, readers*2)
	var wg sync.WaitGroup
	for i := range readers {
		reader := f.user(t, "reader_"+string(rune('a'+i)), false)
		for j := range 2 {
			wg.Add(1)
			go func() {
				defer wg.Done()
				item, err := lib.SetStatus(ctx, reader.ID, SetStatusRequest{ExternalID: "ext-1", Status: "tbr"})
				if assert.NoError(t, err) {
					bookIDs[i*2+j] = item.Book.ID
				}
			}()
		}
	}
	wg.Wait()

	book, err := f.store.GetBookByExternalID(ctx, "ext-1")
	require.NoError(t, err)
	for _, id := range bookIDs {
		assert.Equal(t, book.ID, id, "every first use converges on one book row")
	}

	view, err := f.books().ResolveBook(ctx, "ext-1", "")
	require.NoError(t, err)
	assert.Equal(t, domain.SourceLocal, view.Source())
}
