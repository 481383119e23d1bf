package resolution

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/thomas-vilte/mateticket/internal/cache"
	domainErrors "github.com/thomas-vilte/mateticket/internal/errors"
	"github.com/thomas-vilte/mateticket/internal/logger"
	"github.com/thomas-vilte/mateticket/internal/models"
	"github.com/thomas-vilte/mateticket/internal/services/triage"
	"github.com/thomas-vilte/mateticket/internal/similarity"
	"golang.org/x/sync/errgroup"
)

const (
	cachePrefix = "resolution"
	cacheTTL    = 30 * time.Minute

	defaultMaxSuggestions = 5
	maxSuggestionsLimit   = 10

	minTicketSimilarity  = 0.7
	minArticleRelevance  = 0.6
	maxArticles          = 3
	maxHistorical        = 3
	maxKnowledgeRefs     = 2
	historicalSuccess    = 0.85
	alignmentMergeCutoff = 0.7

	SourceHistorical    = "historical_ticket"
	SourceAI            = "ai_generated"
	SourceKnowledgeBase = "knowledge_base"
)

// resolver is the AI dependency of the Service.
type resolver interface {
	SuggestResolution(ctx context.Context, req models.ResolutionRequest, similar []models.SimilarTicket) (*models.AIResolutionSet, error)
}

type Service struct {
	repo     Repository
	searcher *similarity.Searcher
	ai       resolver
	cache    cache.Store
	now      func() time.Time
	newID    func() string
}

type Option func(*Service)

func WithRepository(r Repository) Option {
	return func(s *Service) {
		s.repo = r
	}
}

// WithResolver enables AI suggestions. Without it relevant knowledge base
// articles are turned into suggestions instead.
func WithResolver(r resolver) Option {
	return func(s *Service) {
		s.ai = r
	}
}

func WithSearcher(searcher *similarity.Searcher) Option {
	return func(s *Service) {
		s.searcher = searcher
	}
}

func WithCache(store cache.Store) Option {
	return func(s *Service) {
		s.cache = store
	}
}

func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

func NewService(opts ...Option) (*Service, error) {
	s := &Service{
		now:   time.Now,
		newID: func() string { return uuid.NewString() },
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.repo == nil {
		repo, err := NewSeededRepository()
		if err != nil {
			return nil, err
		}
		s.repo = repo
	}
	if s.searcher == nil {
		s.searcher = similarity.NewSearcher(nil)
	}
	if s.cache == nil {
		s.cache = cache.NewMemoryStore()
	}
	return s, nil
}

type articleHit struct {
	article   models.KnowledgeArticle
	relevance float64
}

// Suggest returns resolution suggestions for a ticket, drawn from similar
// resolved tickets, the AI resolver and the knowledge base.
func (s *Service) Suggest(ctx context.Context, req models.ResolutionRequest) (*models.ResolutionResult, error) {
	log := logger.FromContext(ctx)

	if err := validate(&req); err != nil {
		return nil, err
	}

	key := cache.Key(cachePrefix, req.Title, req.Description, string(req.Category),
		strconv.Itoa(req.MaxSuggestions), strconv.FormatBool(*req.IncludeKnowledgeBase))
	var cached models.ResolutionResult
	if hit, err := s.cache.Get(ctx, key, &cached); err == nil && hit {
		log.Info("returning cached resolution suggestions",
			"ticket_id", req.TicketID)
		cached.TicketID = req.TicketID
		cached.Cached = true
		return &cached, nil
	} else if err != nil {
		log.Warn("resolution cache read failed",
			"ticket_id", req.TicketID,
			"error", err)
	}

	query := req.Title + " " + req.Description

	var (
		similar  []models.SimilarTicket
		history  map[string]models.HistoricalTicket
		articles []articleHit
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		similar, history, err = s.findSimilarTickets(gctx, query, req.MaxSuggestions)
		if err != nil {
			if gctx.Err() != nil {
				return gctx.Err()
			}
			log.Warn("similar ticket lookup failed",
				"ticket_id", req.TicketID,
				"error", err)
		}
		return nil
	})
	if *req.IncludeKnowledgeBase {
		g.Go(func() error {
			var err error
			articles, err = s.findRelevantArticles(gctx, query)
			if err != nil {
				if gctx.Err() != nil {
					return gctx.Err()
				}
				log.Warn("knowledge base lookup failed",
					"ticket_id", req.TicketID,
					"error", err)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var suggestions []models.ResolutionSuggestion
	for i, st := range similar {
		if i == maxHistorical {
			break
		}
		if h, ok := history[st.TicketID]; ok {
			suggestions = append(suggestions, fromHistorical(h, st.Similarity))
		}
	}

	aiSuggestions := s.aiSuggestions(ctx, req, similar, articles)
	if len(aiSuggestions) > 0 {
		suggestions = append(suggestions, aiSuggestions...)
	} else {
		for _, hit := range articles {
			suggestions = append(suggestions, fromArticle(hit))
		}
	}

	sort.SliceStable(suggestions, func(i, j int) bool {
		return suggestions[i].Confidence > suggestions[j].Confidence
	})
	if len(suggestions) > req.MaxSuggestions {
		suggestions = suggestions[:req.MaxSuggestions]
	}

	result := &models.ResolutionResult{
		TicketID:          req.TicketID,
		Suggestions:       suggestions,
		SimilarTickets:    similar,
		KnowledgeArticles: articleMatches(articles),
	}
	if result.Suggestions == nil {
		result.Suggestions = []models.ResolutionSuggestion{}
	}
	if result.SimilarTickets == nil {
		result.SimilarTickets = []models.SimilarTicket{}
	}

	if err := s.cache.Set(ctx, key, result, cacheTTL); err != nil {
		log.Warn("failed to cache resolution suggestions",
			"ticket_id", req.TicketID,
			"error", err)
	}

	log.Info("resolution suggestions generated",
		"ticket_id", req.TicketID,
		"count", len(result.Suggestions),
		"similar_tickets", len(similar),
		"articles", len(articles))

	return result, nil
}

func (s *Service) findSimilarTickets(ctx context.Context, query string, limit int) ([]models.SimilarTicket, map[string]models.HistoricalTicket, error) {
	tickets, err := s.repo.HistoricalTickets(ctx)
	if err != nil {
		return nil, nil, err
	}

	byID := make(map[string]models.HistoricalTicket, len(tickets))
	candidates := make([]similarity.Candidate, 0, len(tickets))
	for _, t := range tickets {
		byID[t.TicketID] = t
		candidates = append(candidates, similarity.Candidate{ID: t.TicketID, Text: t.Title + " " + t.Description})
	}

	matches, err := s.searcher.FindSimilar(ctx, query, candidates, minTicketSimilarity, limit)
	if err != nil {
		return nil, nil, err
	}

	similar := make([]models.SimilarTicket, 0, len(matches))
	for _, m := range matches {
		t := byID[m.ID]
		similar = append(similar, models.SimilarTicket{
			TicketID:          t.TicketID,
			Similarity:        m.Score,
			Title:             t.Title,
			Category:          t.Category,
			ResolutionSummary: t.Resolution,
		})
	}
	return similar, byID, nil
}

// findRelevantArticles keeps the articles BM25 finds any lexical overlap with
// and ranks them by embedding similarity.
func (s *Service) findRelevantArticles(ctx context.Context, query string) ([]articleHit, error) {
	articles, err := s.repo.KnowledgeArticles(ctx)
	if err != nil {
		return nil, err
	}

	docs := make([]similarity.Document, 0, len(articles))
	byID := make(map[string]models.KnowledgeArticle, len(articles))
	for _, a := range articles {
		byID[a.ArticleID] = a
		docs = append(docs, similarity.Document{
			ID: a.ArticleID,
			Fields: []similarity.Field{
				{Text: a.Title, Weight: 2},
				{Text: a.Content, Weight: 1},
				{Text: strings.Join(a.Tags, " "), Weight: 1.5},
			},
		})
	}

	ranked := similarity.NewIndex(docs).Search(query, 0)
	candidates := make([]similarity.Candidate, 0, len(ranked))
	for _, r := range ranked {
		a := byID[r.ID]
		candidates = append(candidates, similarity.Candidate{ID: a.ArticleID, Text: a.Title + " " + a.Content})
	}

	matches, err := s.searcher.FindSimilar(ctx, query, candidates, minArticleRelevance, maxArticles)
	if err != nil {
		return nil, err
	}

	hits := make([]articleHit, 0, len(matches))
	for _, m := range matches {
		hits = append(hits, articleHit{article: byID[m.ID], relevance: m.Score})
	}
	return hits, nil
}

func (s *Service) aiSuggestions(ctx context.Context, req models.ResolutionRequest, similar []models.SimilarTicket, articles []articleHit) []models.ResolutionSuggestion {
	if s.ai == nil {
		return nil
	}

	set, err := s.ai.SuggestResolution(ctx, req, similar)
	if err != nil {
		logger.FromContext(ctx).Warn("AI resolution failed, using knowledge base",
			"ticket_id", req.TicketID,
			"error", err)
		return nil
	}

	var refs []string
	for i, hit := range articles {
		if i == maxKnowledgeRefs {
			break
		}
		refs = append(refs, hit.article.ArticleID)
	}

	out := make([]models.ResolutionSuggestion, 0, len(set.Suggestions))
	for _, r := range set.Suggestions {
		confidence := clamp01(r.Confidence)
		steps := r.Steps
		if len(similar) > 0 {
			a := alignment(r)
			confidence = min(0.95, confidence+a*0.2)
			if a > alignmentMergeCutoff {
				steps = mergeHistoricalSteps(steps)
			}
		}

		skills := r.RequiredSkills
		if len(skills) == 0 {
			skills = triage.SkillsFor(req.Category)
		}

		title := strings.TrimSpace(r.Title)
		if title == "" {
			title = "AI Generated Solution"
		}

		out = append(out, models.ResolutionSuggestion{
			SuggestionID:         "ai_" + s.newID(),
			Title:                title,
			Description:          r.Description,
			Confidence:           confidence,
			SourceType:           SourceAI,
			Steps:                buildSteps(steps, true),
			EstimatedTimeMinutes: r.EstimatedTimeMinutes,
			RequiredSkills:       skills,
			KnowledgeReferences:  refs,
			Tags:                 []string{"ai_generated"},
		})
	}
	return out
}

func fromHistorical(t models.HistoricalTicket, sim float64) models.ResolutionSuggestion {
	skills := t.Tags
	if len(skills) > 3 {
		skills = skills[:3]
	}
	return models.ResolutionSuggestion{
		SuggestionID:         "hist_" + t.TicketID,
		Title:                "Similar Issue Resolution: " + t.Title,
		Description:          t.Resolution,
		Confidence:           min(0.9, sim+0.1),
		Similarity:           sim,
		SourceType:           SourceHistorical,
		SourceID:             t.TicketID,
		Steps:                buildSteps(t.ResolutionSteps, false),
		EstimatedTimeMinutes: t.ResolutionTimeMinutes,
		RequiredSkills:       append([]string(nil), skills...),
		SuccessRate:          historicalSuccess,
		Tags:                 t.Tags,
	}
}

func fromArticle(hit articleHit) models.ResolutionSuggestion {
	a := hit.article
	return models.ResolutionSuggestion{
		SuggestionID:        "kb_" + a.ArticleID,
		Title:               a.Title,
		Description:         a.Content,
		Confidence:          min(0.8, 0.5+hit.relevance*0.3),
		Similarity:          hit.relevance,
		SourceType:          SourceKnowledgeBase,
		SourceID:            a.ArticleID,
		Steps:               buildSteps(a.Steps, true),
		RequiredSkills:      triage.SkillsFor(a.Category),
		KnowledgeReferences: []string{a.ArticleID},
		Tags:                a.Tags,
	}
}

func articleMatches(hits []articleHit) []models.ArticleMatch {
	out := make([]models.ArticleMatch, 0, len(hits))
	for _, h := range hits {
		out = append(out, models.ArticleMatch{
			ArticleID:        h.article.ArticleID,
			Title:            h.article.Title,
			Category:         h.article.Category,
			Relevance:        h.relevance,
			HelpfulnessScore: h.article.HelpfulnessScore,
		})
	}
	return out
}

// RecordResolution stores a resolved ticket so later lookups can find it.
func (s *Service) RecordResolution(ctx context.Context, ticket models.HistoricalTicket) error {
	ticket.TicketID = strings.TrimSpace(ticket.TicketID)
	ticket.Title = strings.TrimSpace(ticket.Title)

	switch {
	case ticket.TicketID == "":
		return domainErrors.NewValidationError("ticket_id", "ticket_id is required")
	case ticket.Title == "":
		return domainErrors.NewValidationError("title", "title is required")
	case strings.TrimSpace(ticket.Resolution) == "":
		return domainErrors.NewValidationError("resolution", "resolution is required")
	case ticket.Category != "" && !ticket.Category.Valid():
		return domainErrors.NewValidationError("category", "unknown category")
	}

	if ticket.ResolvedAt.IsZero() {
		ticket.ResolvedAt = s.now().UTC()
	}
	if ticket.CreatedAt.IsZero() {
		ticket.CreatedAt = ticket.ResolvedAt
	}

	if err := s.repo.RecordResolution(ctx, ticket); err != nil {
		return domainErrors.ErrStoreUnavailable.WithError(err).WithContext("ticket_id", ticket.TicketID)
	}

	logger.FromContext(ctx).Info("resolution recorded",
		"ticket_id", ticket.TicketID,
		"category", ticket.Category)
	return nil
}

// HealthCheck makes sure the history and knowledge base can be read.
func (s *Service) HealthCheck(ctx context.Context) error {
	if _, err := s.repo.HistoricalTickets(ctx); err != nil {
		return fmt.Errorf("history unavailable: %w", err)
	}
	if _, err := s.repo.KnowledgeArticles(ctx); err != nil {
		return fmt.Errorf("knowledge base unavailable: %w", err)
	}
	return nil
}

func validate(req *models.ResolutionRequest) error {
	req.Title = strings.TrimSpace(req.Title)
	req.Description = strings.TrimSpace(req.Description)

	switch {
	case req.Title == "":
		return domainErrors.NewValidationError("title", "title is required")
	case utf8.RuneCountInString(req.Title) > 200:
		return domainErrors.NewValidationError("title", "title must be at most 200 characters")
	case req.Description == "":
		return domainErrors.NewValidationError("description", "description is required")
	case utf8.RuneCountInString(req.Description) > 5000:
		return domainErrors.NewValidationError("description", "description must be at most 5000 characters")
	case req.Category != "" && !req.Category.Valid():
		return domainErrors.NewValidationError("category", "unknown category")
	case req.MaxSuggestions < 0 || req.MaxSuggestions > maxSuggestionsLimit:
		return domainErrors.NewValidationError("max_suggestions", "max_suggestions must be between 1 and 10")
	}

	if req.MaxSuggestions == 0 {
		req.MaxSuggestions = defaultMaxSuggestions
	}
	if req.IncludeKnowledgeBase == nil {
		include := true
		req.IncludeKnowledgeBase = &include
	}
	return nil
}

func clamp01(v float64) float64 {
	return max(0, min(1, v))
}
