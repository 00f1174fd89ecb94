package search

import (
	"context"
	"fmt"
	"strings"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/search/query"
)

// Hit is one matching reader.
type Hit struct {
	UserID string
	Score  float64
}

// Search finds readers matching q, best first. An empty query returns no hits.
func (s *ReaderIndex) Search(ctx context.Context, q string, limit, offset int) ([]Hit, error) {
	q = strings.ToLower(strings.TrimSpace(q))
	if q == "" {
		return []Hit{}, nil
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	req := bleve.NewSearchRequestOptions(buildQuery(q), limit, offset, false)
	req.Fields = []string{"id"}

	res, err := s.index.SearchInContext(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("execute search: %w", err)
	}

	hits := make([]Hit, 0, len(res.Hits))
	for _, h := range res.Hits {
		hits = append(hits, Hit{UserID: h.ID, Score: h.Score})
	}
	return hits, nil
}

// buildQuery weighs an exact or prefix username match above display name
// matches, and both above bio matches. Display names tolerate one typo.
func buildQuery(q string) query.Query {
	var parts []query.Query

	usernamePrefix := bleve.NewPrefixQuery(strings.ReplaceAll(q, " ", "_"))
	usernamePrefix.SetField("username")
	usernamePrefix.SetBoost(4)
	parts = append(parts, usernamePrefix)

	usernameWords := bleve.NewMatchQuery(q)
	usernameWords.SetField("username_text")
	usernameWords.SetBoost(2)
	parts = append(parts, usernameWords)

	displayName := bleve.NewMatchQuery(q)
	displayName.SetField("display_name")
	displayName.SetFuzziness(1)
	displayName.SetBoost(2)
	parts = append(parts, displayName)

	// The last word may still be being typed.
	words := strings.Fields(q)
	if last := words[len(words)-1]; len(last) >= 2 {
		namePrefix := bleve.NewPrefixQuery(last)
		namePrefix.SetField("display_name")
		namePrefix.SetBoost(1.5)
		parts = append(parts, namePrefix)
	}

	bio := bleve.NewMatchQuery(q)
	bio.SetField("bio")
	bio.SetBoost(0.5)
	parts = append(parts, bio)

	return bleve.NewDisjunctionQuery(parts...)
}
