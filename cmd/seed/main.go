// Package main seeds a StorySpine database with demo readers and activity.
//
// Books come from a built-in list instead of the live catalog, so seeding
// works offline. Every reader gets the password "storyspine-demo".
//
// Usage:
//
//	DATA_PATH=~/StorySpine/data go run ./cmd/seed
//	DATA_PATH=~/StorySpine/data go run ./cmd/seed --readers 12
package main

import (
	"context"
	crand "crypto/rand"
	"errors"
	"flag"
	"fmt"
	"log"
	"math/rand/v2"
	"os"
	"path/filepath"
	"time"

	"github.com/storyspine/storyspine-server/internal/auth"
	"github.com/storyspine/storyspine-server/internal/catalog/catalogtest"
	"github.com/storyspine/storyspine-server/internal/domain"
	domainerrors "github.com/storyspine/storyspine-server/internal/errors"
	"github.com/storyspine/storyspine-server/internal/logger"
	"github.com/storyspine/storyspine-server/internal/service"
	"github.com/storyspine/storyspine-server/internal/store/sqlite"
	"github.com/storyspine/storyspine-server/internal/validation"
)

const demoPassword = "storyspine-demo"

var readers = flag.Int("readers", 8, "Number of demo readers to create")

var demoBooks = []struct {
	id, title, author string
	year              int
	categories        []string
}{
	{"seed-dune", "Dune", "Frank Herbert", 1965, []string{"Fiction / Science Fiction / General"}},
	{"seed-hobbit", "The Hobbit", "J. R. R. Tolkien", 1937, []string{"Fiction / Fantasy / Epic"}},
	{"seed-emma", "Emma", "Jane Austen", 1815, []string{"Fiction / Romance / Historical"}},
	{"seed-dracula", "Dracula", "Bram Stoker", 1897, []string{"Fiction / Horror"}},
	{"seed-rebecca", "Rebecca", "Daphne du Maurier", 1938, []string{"Fiction / Mystery & Detective / General"}},
	{"seed-neuromancer", "Neuromancer", "William Gibson", 1984, []string{"Fiction / Science Fiction / Cyberpunk"}},
	{"seed-earthsea", "A Wizard of Earthsea", "Ursula K. Le Guin", 1968, []string{"Fiction / Fantasy / General"}},
	{"seed-gone-girl", "Gone Girl", "Gillian Flynn", 2012, []string{"Fiction / Thrillers / Suspense"}},
}

var demoGenres = []string{"fantasy", "science-fiction", "romance", "horror", "mystery", "thriller"}

var statuses = []string{"tbr", "reading", "read", "read", "paused", "abandoned"}

func main() {
	flag.Parse()

	dataPath := os.Getenv("DATA_PATH")
	if dataPath == "" {
		dataPath = os.ExpandEnv("$HOME/StorySpine/data")
	}
	dbPath := filepath.Join(dataPath, "storyspine.db")
	fmt.Printf("Opening database at: %s\n", dbPath)

	slogger := logger.Discard()
	st, err := sqlite.Open(dbPath, slogger)
	if err != nil {
		log.Fatalf("Failed to open store: %v", err)
	}
	defer st.Close()

	// Tokens issued while seeding are thrown away.
	key := make([]byte, 32)
	if _, err := crand.Read(key); err != nil {
		log.Fatalf("Failed to generate key: %v", err)
	}
	tokens, err := auth.NewTokenService(key, time.Minute, time.Minute)
	if err != nil {
		log.Fatalf("Failed to create token service: %v", err)
	}

	cat := catalogtest.New(catalogBooks()...)
	validator := validation.New()
	visibility := service.NewVisibilityService(st, st)
	capture := service.NewBookCapture(st, cat, nil, slogger)

	authSvc := service.NewAuthService(st, tokens, nil, validator, slogger)
	library := service.NewLibraryService(st, capture, visibility, validator, slogger)
	ratings := service.NewRatingService(st, st, capture, validator, slogger)
	reviews := service.NewReviewService(st, capture, validator, slogger)
	social := service.NewSocialService(st, st, visibility, nil, slogger)
	prefs := service.NewPreferenceService(st, slogger)

	ctx := context.Background()
	users := createReaders(ctx, authSvc, *readers)
	if len(users) == 0 {
		log.Fatal("No readers created")
	}

	var shelved, rated, reviewed, follows int
	for i, u := range users {
		if _, err := prefs.ReplacePreferences(ctx, u.ID, pick(demoGenres, 2)); err != nil {
			log.Fatalf("Failed to set preferences for %s: %v", u.Username, err)
		}

		for _, b := range pickBooks(3 + rand.IntN(3)) {
			status := statuses[rand.IntN(len(statuses))]
			progress := rand.IntN(101)
			if _, err := library.SetStatus(ctx, u.ID, service.SetStatusRequest{
				ExternalID: b,
				Status:     status,
				Progress:   &progress,
			}); err != nil {
				log.Fatalf("Failed to shelve %s: %v", b, err)
			}
			shelved++

			if status != "read" {
				continue
			}
			if _, err := ratings.Rate(ctx, u.ID, service.RateRequest{
				ExternalID:       b,
				RatingDimensions: domain.RatingDimensions{Overall: 2 + rand.IntN(4)},
			}); err != nil {
				log.Fatalf("Failed to rate %s: %v", b, err)
			}
			rated++

			if rand.IntN(2) == 0 {
				if _, err := reviews.Upsert(ctx, u.ID, service.UpsertReviewRequest{
					ExternalID: b,
					Content:    fmt.Sprintf("%s's thoughts: worth the time.", u.Username),
				}); err != nil {
					log.Fatalf("Failed to review %s: %v", b, err)
				}
				reviewed++
			}
		}

		for j := 1; j <= 2; j++ {
			target := users[(i+j)%len(users)]
			if target.ID == u.ID {
				continue
			}
			if _, err := social.Follow(ctx, u.ID, target.ID); err != nil {
				log.Fatalf("Failed to follow: %v", err)
			}
			follows++
		}
	}

	// Make one reader private to exercise visibility rules.
	if _, err := social.SetPrivacy(ctx, users[len(users)-1].ID, true); err != nil {
		log.Fatalf("Failed to set privacy: %v", err)
	}

	fmt.Println()
	fmt.Println("=== Seed Complete ===")
	fmt.Printf("Readers: %d (password %q)\n", len(users), demoPassword)
	fmt.Printf("Shelf entries: %d, ratings: %d, reviews: %d, follows: %d\n", shelved, rated, reviewed, follows)
	fmt.Printf("Private reader: %s\n", users[len(users)-1].Username)
}

func catalogBooks() []domain.CatalogBook {
	books := make([]domain.CatalogBook, len(demoBooks))
	for i, b := range demoBooks {
		year := b.year
		books[i] = domain.CatalogBook{
			ExternalID:    b.id,
			Title:         b.title,
			Authors:       []string{b.author},
			PublishedYear: &year,
			Language:      "en",
			Genres:        b.categories,
		}
	}
	return books
}

// createReaders registers demo readers, reusing ones left by an earlier run.
func createReaders(ctx context.Context, authSvc *service.AuthService, n int) []*domain.User {
	users := make([]*domain.User, 0, n)
	for i := 1; i <= n; i++ {
		username := fmt.Sprintf("demo_reader_%d", i)
		result, err := authSvc.Register(ctx, service.RegisterRequest{
			Username:    username,
			Email:       username + "@example.com",
			Password:    demoPassword,
			DisplayName: fmt.Sprintf("Demo Reader %d", i),
		})
		var derr *domainerrors.Error
		if errors.As(err, &derr) && derr.Code == domainerrors.CodeAlreadyExists {
			result, err = authSvc.Login(ctx, service.LoginRequest{Login: username, Password: demoPassword})
		}
		if err != nil {
			log.Printf("Skipping %s: %v", username, err)
			continue
		}
		users = append(users, result.User)
		fmt.Printf("  Reader: %s\n", username)
	}
	return users
}

func pick(from []string, n int) []string {
	shuffled := append([]string(nil), from...)
	rand.Shuffle(len(shuffled), func(i, j int) { shuffled[i], shuffled[j] = shuffled[j], shuffled[i] })
	return shuffled[:min(n, len(shuffled))]
}

func pickBooks(n int) []string {
	ids := make([]string, len(demoBooks))
	for i, b := range demoBooks {
		ids[i] = b.id
	}
	return pick(ids, n)
}
