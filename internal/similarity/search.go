package similarity

import (
	"context"
	"math"
	"sort"
)

// Cosine returns the cosine similarity of a and b clamped to [0,1]. Vectors
// of different length or with zero norm give 0.
func Cosine(a, b []float32) float64 {
	if len(a) == 0 || len(a) != len(b) {
		return 0
	}

	var dot, na, nb float64
	for i := range a {
		x, y := float64(a[i]), float64(b[i])
		dot += x * y
		na += x * x
		nb += y * y
	}
	if na == 0 || nb == 0 {
		return 0
	}

	sim := dot / (math.Sqrt(na) * math.Sqrt(nb))
	return max(0, min(1, sim))
}

type Candidate struct {
	ID   string
	Text string
}

type Match struct {
	ID    string
	Score float64
}

type Searcher struct {
	embedder Embedder
}

func NewSearcher(e Embedder) *Searcher {
	if e == nil {
		e = NewHashingEmbedder(DefaultHashingDimensions)
	}
	return &Searcher{embedder: e}
}

func (s *Searcher) Embedder() Embedder {
	return s.embedder
}

// FindSimilar embeds text and every candidate and returns the candidates
// scoring at least minScore, best first, at most limit of them.
func (s *Searcher) FindSimilar(ctx context.Context, text string, candidates []Candidate, minScore float64, limit int) ([]Match, error) {
	if len(candidates) == 0 {
		return nil, nil
	}

	query, err := s.embedder.Embed(ctx, text)
	if err != nil {
		return nil, err
	}

	var matches []Match
	for _, c := range candidates {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		vec, err := s.embedder.Embed(ctx, c.Text)
		if err != nil {
			return nil, err
		}
		if score := Cosine(query, vec); score >= minScore {
			matches = append(matches, Match{ID: c.ID, Score: score})
		}
	}

	sort.SliceStable(matches, func(i, j int) bool { return matches[i].Score > matches[j].Score })
	if limit > 0 && len(matches) > limit {
		matches = matches[:limit]
	}
	return matches, nil
}
