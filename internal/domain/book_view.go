package domain

// BookSource names where a resolved book came from.
type BookSource string

const (
	SourceLocal    BookSource = "local"
	SourceExternal BookSource = "external"
)

// BookView is the result of resolving a book by external id. It is either a
// *LocalBookView or an *ExternalBookView; switch on the concrete type.
type BookView interface {
	Source() BookSource
	bookView()
}

// LocalBookView is a book known locally with its social context.
type LocalBookView struct {
	Book         Book
	Reviews      []BookReview
	ReadingCount int
	ViewerStatus *LibraryEntry
}

// Source implements BookView.
func (*LocalBookView) Source() BookSource { return SourceLocal }
func (*LocalBookView) bookView()          {}

// ExternalBookView is a catalog-only book. It has no reviews, readers or
// viewer status by construction.
type ExternalBookView struct {
	Book CatalogBook
}

// Source implements BookView.
func (*ExternalBookView) Source() BookSource { return SourceExternal }
func (*ExternalBookView) bookView()          {}
