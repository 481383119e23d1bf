package resolution

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	domainErrors "github.com/thomas-vilte/mateticket/internal/errors"
	"github.com/thomas-vilte/mateticket/internal/models"
)

type MockResolver struct {
	mock.Mock
}

func (m *MockResolver) SuggestResolution(ctx context.Context, req models.ResolutionRequest, similar []models.SimilarTicket) (*models.AIResolutionSet, error) {
	args := m.Called(ctx, req, similar)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.AIResolutionSet), args.Error(1)
}

type failingRepository struct {
	err error
}

func (f failingRepository) HistoricalTickets(context.Context) ([]models.HistoricalTicket, error) {
	return nil, f.err
}

func (f failingRepository) KnowledgeArticles(context.Context) ([]models.KnowledgeArticle, error) {
	return nil, f.err
}

func (f failingRepository) RecordResolution(context.Context, models.HistoricalTicket) error {
	return f.err
}

func printerRequest() models.ResolutionRequest {
	return models.ResolutionRequest{
		TicketID:    "T-42",
		Title:       "Printer not responding",
		Description: "Network printer shows offline status and won't print documents",
		Category:    models.CategoryPrinter,
	}
}

func newService(t *testing.T, opts ...Option) *Service {
	t.Helper()
	svc, err := NewService(opts...)
	require.NoError(t, err)
	return svc
}

func TestLoadSeed(t *testing.T) {
	seed, err := LoadSeed()

	require.NoError(t, err)
	require.Len(t, seed.HistoricalTickets, 5)
	require.Len(t, seed.KnowledgeArticles, 3)
	assert.Equal(t, "HIST-001", seed.HistoricalTickets[0].TicketID)
	assert.Equal(t, models.CategoryEmail, seed.HistoricalTickets[0].Category)
	assert.Equal(t, []string{"network", "shared drive", "access", "credentials"}, seed.HistoricalTickets[2].Tags)
	assert.Equal(t, time.Date(2024, 1, 10, 9, 30, 0, 0, time.UTC), seed.HistoricalTickets[0].ResolvedAt.UTC())
	assert.Equal(t, "KB-003", seed.KnowledgeArticles[2].ArticleID)
	assert.NotContains(t, seed.KnowledgeArticles[2].Content, "\n")
}

func TestService_Suggest_FromHistory(t *testing.T) {
	// Arrange
	svc := newService(t)

	// Act
	got, err := svc.Suggest(context.Background(), printerRequest())

	// Assert
	require.NoError(t, err)
	assert.Equal(t, "T-42", got.TicketID)
	require.Len(t, got.SimilarTickets, 1)
	assert.Equal(t, "HIST-004", got.SimilarTickets[0].TicketID)
	assert.InDelta(t, 1, got.SimilarTickets[0].Similarity, 1e-5)

	require.Len(t, got.Suggestions, 1)
	s := got.Suggestions[0]
	assert.Equal(t, "hist_HIST-004", s.SuggestionID)
	assert.Equal(t, SourceHistorical, s.SourceType)
	assert.InDelta(t, 0.9, s.Confidence, 1e-9)
	assert.InDelta(t, 0.85, s.SuccessRate, 1e-9)
	assert.Equal(t, []string{"printer", "network", "offline"}, s.RequiredSkills)
	assert.Equal(t, 25, s.EstimatedTimeMinutes)
	require.Len(t, s.Steps, 5)
	assert.Equal(t, 1, s.Steps[0].StepNumber)
	assert.Equal(t, "Step 1 completed successfully", s.Steps[0].ExpectedOutcome)
	assert.Empty(t, got.KnowledgeArticles)
	assert.False(t, got.Cached)
}

func TestService_Suggest_KnowledgeBaseFallback(t *testing.T) {
	// Arrange
	svc := newService(t)
	req := models.ResolutionRequest{
		TicketID:    "T-7",
		Title:       "Network Drive Access Problems",
		Description: "How to troubleshoot and resolve network drive access issues including credential management and permission problems.",
	}

	// Act
	got, err := svc.Suggest(context.Background(), req)

	// Assert
	require.NoError(t, err)
	assert.Empty(t, got.SimilarTickets)
	require.Len(t, got.KnowledgeArticles, 1)
	assert.Equal(t, "KB-003", got.KnowledgeArticles[0].ArticleID)

	require.Len(t, got.Suggestions, 1)
	s := got.Suggestions[0]
	assert.Equal(t, "kb_KB-003", s.SuggestionID)
	assert.Equal(t, SourceKnowledgeBase, s.SourceType)
	assert.InDelta(t, 0.8, s.Confidence, 1e-9)
	require.Len(t, s.Steps, 4)
	assert.Equal(t, []string{"Document current settings before making changes", "Take screenshots for reference"}, s.Steps[0].TroubleshootingTips)
	assert.Equal(t, []string{"Test functionality thoroughly", "Check with end user if possible"}, s.Steps[3].TroubleshootingTips)
	assert.Contains(t, s.RequiredSkills, "network_administration")
}

func TestService_Suggest_SkipsKnowledgeBaseWhenDisabled(t *testing.T) {
	// Arrange
	svc := newService(t)
	include := false
	req := models.ResolutionRequest{
		Title:                "Network Drive Access Problems",
		Description:          "How to troubleshoot and resolve network drive access issues including credential management and permission problems.",
		IncludeKnowledgeBase: &include,
	}

	// Act
	got, err := svc.Suggest(context.Background(), req)

	// Assert
	require.NoError(t, err)
	assert.Empty(t, got.KnowledgeArticles)
	assert.Empty(t, got.Suggestions)
}

func TestService_Suggest_WithAI(t *testing.T) {
	// Arrange
	resolver := new(MockResolver)
	resolver.On("SuggestResolution", mock.Anything, mock.Anything, mock.MatchedBy(func(similar []models.SimilarTicket) bool {
		return len(similar) == 1 && similar[0].TicketID == "HIST-004"
	})).Return(&models.AIResolutionSet{Suggestions: []models.AIResolution{
		{
			Title:       "Restart the spooler",
			Description: "The spooler is stuck",
			Steps:       []string{"Restart the print spooler", "Update the printer driver", "Check the network cable"},
			Confidence:  0.7,
		},
	}}, nil).Once()
	svc := newService(t, WithResolver(resolver))
	svc.newID = func() string { return "fixed" }

	// Act
	got, err := svc.Suggest(context.Background(), printerRequest())

	// Assert
	require.NoError(t, err)
	require.Len(t, got.Suggestions, 2)
	assert.Equal(t, "hist_HIST-004", got.Suggestions[0].SuggestionID)

	ai := got.Suggestions[1]
	assert.Equal(t, "ai_fixed", ai.SuggestionID)
	assert.Equal(t, SourceAI, ai.SourceType)
	assert.InDelta(t, 0.7+3.0/7.0*0.2, ai.Confidence, 1e-9)
	assert.Len(t, ai.Steps, 3)
	assert.Equal(t, []string{"printer_support", "hardware_troubleshooting"}, ai.RequiredSkills)
	assert.Equal(t, []string{"Save any open work before restarting", "Wait 30 seconds before restarting"}, ai.Steps[0].TroubleshootingTips)
	resolver.AssertExpectations(t)
}

func TestService_Suggest_AIFailureFallsBackToKnowledgeBase(t *testing.T) {
	// Arrange
	resolver := new(MockResolver)
	resolver.On("SuggestResolution", mock.Anything, mock.Anything, mock.Anything).
		Return(nil, domainErrors.ErrGeminiQuotaExceeded).Once()
	svc := newService(t, WithResolver(resolver))
	req := models.ResolutionRequest{
		Title:       "Network Drive Access Problems",
		Description: "How to troubleshoot and resolve network drive access issues including credential management and permission problems.",
	}

	// Act
	got, err := svc.Suggest(context.Background(), req)

	// Assert
	require.NoError(t, err)
	require.Len(t, got.Suggestions, 1)
	assert.Equal(t, SourceKnowledgeBase, got.Suggestions[0].SourceType)
}

func TestService_Suggest_TruncatesToMax(t *testing.T) {
	// Arrange
	resolver := new(MockResolver)
	resolver.On("SuggestResolution", mock.Anything, mock.Anything, mock.Anything).
		Return(&models.AIResolutionSet{Suggestions: []models.AIResolution{
			{Title: "a", Confidence: 0.95},
			{Title: "b", Confidence: 0.2},
		}}, nil).Once()
	svc := newService(t, WithResolver(resolver))
	req := printerRequest()
	req.MaxSuggestions = 2

	// Act
	got, err := svc.Suggest(context.Background(), req)

	// Assert
	require.NoError(t, err)
	require.Len(t, got.Suggestions, 2)
	assert.Equal(t, "a", got.Suggestions[0].Title)
	assert.Equal(t, "hist_HIST-004", got.Suggestions[1].SuggestionID)
}

func TestService_Suggest_Cached(t *testing.T) {
	// Arrange
	svc := newService(t)
	req := printerRequest()

	// Act
	first, err := svc.Suggest(context.Background(), req)
	require.NoError(t, err)
	req.TicketID = "T-43"
	second, err := svc.Suggest(context.Background(), req)
	require.NoError(t, err)

	// Assert
	assert.False(t, first.Cached)
	assert.True(t, second.Cached)
	assert.Equal(t, "T-43", second.TicketID)
	assert.Equal(t, first.Suggestions, second.Suggestions)
}

func TestService_Suggest_CacheKeyIncludesOptions(t *testing.T) {
	// Arrange
	svc := newService(t)
	exclude := false
	req := models.ResolutionRequest{
		Title:                "Network Drive Access Problems",
		Description:          "How to troubleshoot and resolve network drive access issues including credential management and permission problems.",
		IncludeKnowledgeBase: &exclude,
	}

	// Act
	withoutKB, err := svc.Suggest(context.Background(), req)
	require.NoError(t, err)
	req.IncludeKnowledgeBase = nil
	withKB, err := svc.Suggest(context.Background(), req)
	require.NoError(t, err)
	req.MaxSuggestions = 1
	limited, err := svc.Suggest(context.Background(), req)
	require.NoError(t, err)
	again, err := svc.Suggest(context.Background(), req)
	require.NoError(t, err)

	// Assert
	assert.Empty(t, withoutKB.KnowledgeArticles)
	assert.False(t, withKB.Cached)
	require.Len(t, withKB.KnowledgeArticles, 1)
	assert.Equal(t, "KB-003", withKB.KnowledgeArticles[0].ArticleID)
	assert.False(t, limited.Cached)
	assert.Len(t, limited.Suggestions, 1)
	assert.True(t, again.Cached)
}

func TestService_Suggest_SimilarityThresholds(t *testing.T) {
	tests := []struct {
		name        string
		title       string
		description string
		wantTicket  string
		wantScore   float64
		wantArticle string
	}{
		{
			name:        "reworded exchange outage matches its past ticket",
			title:       "Outlook cannot connect to the Exchange server",
			description: "user gets authentication errors",
			wantTicket:  "HIST-001",
			wantScore:   0.8085,
		},
		{
			name:        "reworded printer outage matches its past ticket",
			title:       "Network printer offline and won't print any documents",
			description: "not responding",
			wantTicket:  "HIST-004",
			wantScore:   0.8321,
		},
		{
			name:        "reworded drive question finds the article only",
			title:       "Troubleshoot network drive access issues",
			description: "credential and permission problems",
			wantArticle: "KB-003",
			wantScore:   0.866,
		},
		{
			name:        "unrelated request matches nothing",
			title:       "Coffee machine in the kitchen",
			description: "is leaking water on the floor",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Arrange
			svc := newService(t)

			// Act
			got, err := svc.Suggest(context.Background(), models.ResolutionRequest{
				Title:       tt.title,
				Description: tt.description,
			})

			// Assert
			require.NoError(t, err)
			if tt.wantTicket != "" {
				require.Len(t, got.SimilarTickets, 1)
				assert.Equal(t, tt.wantTicket, got.SimilarTickets[0].TicketID)
				assert.InDelta(t, tt.wantScore, got.SimilarTickets[0].Similarity, 1e-3)
				assert.GreaterOrEqual(t, got.SimilarTickets[0].Similarity, minTicketSimilarity)
			} else {
				assert.Empty(t, got.SimilarTickets)
			}
			if tt.wantArticle != "" {
				require.Len(t, got.KnowledgeArticles, 1)
				assert.Equal(t, tt.wantArticle, got.KnowledgeArticles[0].ArticleID)
				assert.InDelta(t, tt.wantScore, got.KnowledgeArticles[0].Relevance, 1e-3)
			} else {
				assert.Empty(t, got.KnowledgeArticles)
			}
			if tt.wantTicket == "" && tt.wantArticle == "" {
				assert.Empty(t, got.Suggestions)
			}
		})
	}
}

func TestService_Suggest_RepositoryFailureDegrades(t *testing.T) {
	// Arrange
	svc := newService(t, WithRepository(failingRepository{err: errors.New("connection refused")}))

	// Act
	got, err := svc.Suggest(context.Background(), printerRequest())

	// Assert
	require.NoError(t, err)
	assert.Empty(t, got.Suggestions)
	assert.Empty(t, got.SimilarTickets)
}

func TestService_Suggest_Validation(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(r *models.ResolutionRequest)
		field  string
	}{
		{name: "missing title", mutate: func(r *models.ResolutionRequest) { r.Title = "" }, field: "title"},
		{name: "long title", mutate: func(r *models.ResolutionRequest) { r.Title = strings.Repeat("a", 201) }, field: "title"},
		{name: "missing description", mutate: func(r *models.ResolutionRequest) { r.Description = " " }, field: "description"},
		{name: "unknown category", mutate: func(r *models.ResolutionRequest) { r.Category = "plumbing" }, field: "category"},
		{name: "too many suggestions", mutate: func(r *models.ResolutionRequest) { r.MaxSuggestions = 11 }, field: "max_suggestions"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Arrange
			svc := newService(t)
			req := printerRequest()
			tt.mutate(&req)

			// Act
			_, err := svc.Suggest(context.Background(), req)

			// Assert
			require.Error(t, err)
			var appErr *domainErrors.AppError
			require.True(t, errors.As(err, &appErr))
			assert.Equal(t, tt.field, appErr.Context["field"])
		})
	}
}

func TestService_RecordResolution(t *testing.T) {
	// Arrange
	now := time.Date(2026, 3, 4, 10, 0, 0, 0, time.UTC)
	svc := newService(t, WithClock(func() time.Time { return now }))
	ticket := models.HistoricalTicket{
		TicketID:        "HIST-100",
		Title:           "Badge reader rejects employee card",
		Description:     "Door badge reader at lobby rejects valid employee cards",
		Category:        models.CategoryAccess,
		Resolution:      "Re-synced the badge controller",
		ResolutionSteps: []string{"Check controller logs", "Re-sync controller"},
		Tags:            []string{"badge", "access"},
	}

	// Act
	err := svc.RecordResolution(context.Background(), ticket)
	require.NoError(t, err)
	got, err := svc.Suggest(context.Background(), models.ResolutionRequest{
		Title:       ticket.Title,
		Description: ticket.Description,
	})

	// Assert
	require.NoError(t, err)
	require.NotEmpty(t, got.SimilarTickets)
	assert.Equal(t, "HIST-100", got.SimilarTickets[0].TicketID)

	history, err := svc.repo.HistoricalTickets(context.Background())
	require.NoError(t, err)
	assert.Len(t, history, 6)
	assert.Equal(t, now, history[5].ResolvedAt)
}

func TestService_RecordResolution_Validation(t *testing.T) {
	svc := newService(t)

	err := svc.RecordResolution(context.Background(), models.HistoricalTicket{TicketID: "X", Title: "t"})

	var appErr *domainErrors.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, "resolution", appErr.Context["field"])
}

func TestService_RecordResolution_StoreFailure(t *testing.T) {
	svc := newService(t, WithRepository(failingRepository{err: errors.New("down")}))

	err := svc.RecordResolution(context.Background(), models.HistoricalTicket{TicketID: "X", Title: "t", Resolution: "r"})

	var appErr *domainErrors.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, domainErrors.TypeStore, appErr.Type)
	assert.Error(t, svc.HealthCheck(context.Background()))
}

func TestMemoryRepository_ReplacesExistingTicket(t *testing.T) {
	repo := NewMemoryRepository([]models.HistoricalTicket{{TicketID: "A", Title: "old"}}, nil)

	require.NoError(t, repo.RecordResolution(context.Background(), models.HistoricalTicket{TicketID: "A", Title: "new"}))

	history, err := repo.HistoricalTickets(context.Background())
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, "new", history[0].Title)
}
