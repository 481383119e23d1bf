package similarity

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"hash/fnv"
	"math"
	"time"

	"github.com/thomas-vilte/mateticket/internal/cache"
	"github.com/thomas-vilte/mateticket/internal/logger"
)

// Embedder turns text into a vector. Vectors from the same Embedder are
// comparable with Cosine.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	Name() string
}

const DefaultHashingDimensions = 512

// HashingEmbedder projects the BM25 tokens of a text onto a fixed number of
// buckets. It needs no network and is used when AI is disabled.
type HashingEmbedder struct {
	dims int
}

func NewHashingEmbedder(dims int) *HashingEmbedder {
	if dims <= 0 {
		dims = DefaultHashingDimensions
	}
	return &HashingEmbedder{dims: dims}
}

func (h *HashingEmbedder) Name() string {
	return fmt.Sprintf("hashing-%d", h.dims)
}

func (h *HashingEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	vec := make([]float32, h.dims)
	for _, tok := range Tokenize(text) {
		hasher := fnv.New32a()
		_, _ = hasher.Write([]byte(tok))
		sum := hasher.Sum32()

		sign := float32(1)
		if sum&0x80000000 != 0 {
			sign = -1
		}
		vec[int(sum&0x7fffffff)%h.dims] += sign
	}
	normalize(vec)
	return vec, nil
}

func normalize(vec []float32) {
	var sq float64
	for _, v := range vec {
		sq += float64(v) * float64(v)
	}
	if sq == 0 {
		return
	}
	n := float32(math.Sqrt(sq))
	for i := range vec {
		vec[i] /= n
	}
}

// embeddingClient is implemented by the Gemini client.
type embeddingClient interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	EmbeddingModel() string
}

const embeddingCacheTTL = 24 * time.Hour

// GeminiEmbedder calls the embeddings API and caches vectors per model and
// text.
type GeminiEmbedder struct {
	client embeddingClient
	cache  cache.Store
}

func NewGeminiEmbedder(client embeddingClient, store cache.Store) *GeminiEmbedder {
	if store == nil {
		store = cache.NewMemoryStore()
	}
	return &GeminiEmbedder{client: client, cache: store}
}

func (g *GeminiEmbedder) Name() string {
	return g.client.EmbeddingModel()
}

func (g *GeminiEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	log := logger.FromContext(ctx)

	sum := md5.Sum([]byte(text))
	key := fmt.Sprintf("embedding:%s:%s", g.client.EmbeddingModel(), hex.EncodeToString(sum[:]))

	var cached []float32
	if hit, err := g.cache.Get(ctx, key, &cached); err == nil && hit {
		return cached, nil
	} else if err != nil {
		log.Debug("embedding cache read failed", "error", err)
	}

	vec, err := g.client.Embed(ctx, text)
	if err != nil {
		return nil, err
	}

	if err := g.cache.Set(ctx, key, vec, embeddingCacheTTL); err != nil {
		log.Debug("failed to cache embedding", "error", err)
	}
	return vec, nil
}
