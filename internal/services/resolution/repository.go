package resolution

import (
	"context"
	_ "embed"
	"fmt"
	"sync"

	"github.com/thomas-vilte/mateticket/internal/models"
	"gopkg.in/yaml.v3"
)

//go:embed seed.yaml
var seedData []byte

// Repository is where resolved tickets and knowledge base articles live.
type Repository interface {
	HistoricalTickets(ctx context.Context) ([]models.HistoricalTicket, error)
	KnowledgeArticles(ctx context.Context) ([]models.KnowledgeArticle, error)
	RecordResolution(ctx context.Context, ticket models.HistoricalTicket) error
}

type Seed struct {
	HistoricalTickets []models.HistoricalTicket `yaml:"historical_tickets"`
	KnowledgeArticles []models.KnowledgeArticle `yaml:"knowledge_articles"`
}

// LoadSeed decodes the bundled history and knowledge base.
func LoadSeed() (*Seed, error) {
	var seed Seed
	if err := yaml.Unmarshal(seedData, &seed); err != nil {
		return nil, fmt.Errorf("error decoding seed data: %w", err)
	}
	return &seed, nil
}

type MemoryRepository struct {
	mu       sync.RWMutex
	history  []models.HistoricalTicket
	articles []models.KnowledgeArticle
}

func NewMemoryRepository(history []models.HistoricalTicket, articles []models.KnowledgeArticle) *MemoryRepository {
	return &MemoryRepository{
		history:  append([]models.HistoricalTicket(nil), history...),
		articles: append([]models.KnowledgeArticle(nil), articles...),
	}
}

// NewSeededRepository returns a memory repository holding the bundled seed.
func NewSeededRepository() (*MemoryRepository, error) {
	seed, err := LoadSeed()
	if err != nil {
		return nil, err
	}
	return NewMemoryRepository(seed.HistoricalTickets, seed.KnowledgeArticles), nil
}

func (r *MemoryRepository) HistoricalTickets(context.Context) ([]models.HistoricalTicket, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]models.HistoricalTicket(nil), r.history...), nil
}

func (r *MemoryRepository) KnowledgeArticles(context.Context) ([]models.KnowledgeArticle, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]models.KnowledgeArticle(nil), r.articles...), nil
}

// RecordResolution adds ticket to the history, replacing an entry with the
// same ticket ID.
func (r *MemoryRepository) RecordResolution(_ context.Context, ticket models.HistoricalTicket) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i, t := range r.history {
		if t.TicketID == ticket.TicketID {
			r.history[i] = ticket
			return nil
		}
	}
	r.history = append(r.history, ticket)
	return nil
}
