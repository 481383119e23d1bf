package triage

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/thomas-vilte/mateticket/internal/cache"
	domainErrors "github.com/thomas-vilte/mateticket/internal/errors"
	"github.com/thomas-vilte/mateticket/internal/models"
)

type MockClassifier struct {
	mock.Mock
}

func (m *MockClassifier) ClassifyTicket(ctx context.Context, req models.TriageRequest) (*models.Classification, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Classification), args.Error(1)
}

func float(v float64) *float64 { return &v }
func integer(v int) *int       { return &v }

var fixedNow = time.Date(2026, 3, 4, 10, 0, 0, 0, time.UTC)

func TestService_Triage_Validation(t *testing.T) {
	long := make([]byte, 201)
	for i := range long {
		long[i] = 'a'
	}

	tests := []struct {
		name  string
		req   models.TriageRequest
		field string
	}{
		{name: "blank title", req: models.TriageRequest{Title: "   ", Description: "x"}, field: "title"},
		{name: "long title", req: models.TriageRequest{Title: string(long), Description: "x"}, field: "title"},
		{name: "missing description", req: models.TriageRequest{Title: "x"}, field: "description"},
		{name: "unknown tier", req: models.TriageRequest{Title: "x", Description: "y", CustomerTier: "gold"}, field: "customer_tier"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Arrange
			svc := NewService()

			// Act
			_, err := svc.Triage(context.Background(), tt.req)

			// Assert
			require.Error(t, err)
			var appErr *domainErrors.AppError
			require.True(t, errors.As(err, &appErr))
			assert.Equal(t, domainErrors.TypeValidation, appErr.Type)
			assert.Equal(t, tt.field, appErr.Context["field"])
		})
	}
}

func TestService_Triage_KeywordFallback(t *testing.T) {
	t.Run("network outage without AI", func(t *testing.T) {
		// Arrange
		svc := NewService()

		// Act
		result, err := svc.Triage(context.Background(), models.TriageRequest{
			TicketID:    "T-1",
			Title:       "Internet down",
			Description: "The wifi connection keeps dropping and the vpn times out",
		})

		// Assert
		require.NoError(t, err)
		assert.Equal(t, models.CategoryNetwork, result.Category)
		assert.Equal(t, models.UrgencyUrgent, result.Urgency)
		assert.Equal(t, models.ImpactHigh, result.Impact)
		assert.Equal(t, models.PriorityCritical, result.Priority)
		assert.Equal(t, models.SourceKeyword, result.Source)
		assert.Equal(t, 60, result.EstimatedResolutionTime)
		assert.Contains(t, result.KeywordsMatched, "vpn")
		assert.GreaterOrEqual(t, result.Confidence, 0.0)
		assert.LessOrEqual(t, result.Confidence, 0.8)
		assert.Equal(t, []string{"network_administration", "cisco_networking", "firewall_management"}, result.SuggestedTechnicianSkills)
	})

	t.Run("no keywords is other with low confidence", func(t *testing.T) {
		// Arrange
		svc := NewService()

		// Act
		result, err := svc.Triage(context.Background(), models.TriageRequest{
			TicketID:    "T-2",
			Title:       "Question",
			Description: "Who ordered the blue chairs",
		})

		// Assert
		require.NoError(t, err)
		assert.Equal(t, models.CategoryOther, result.Category)
		assert.InDelta(t, 0.3, result.Confidence, 1e-9)
		assert.Equal(t, models.UrgencyMedium, result.Urgency)
		assert.Equal(t, models.PriorityMedium, result.Priority)
		assert.Equal(t, 120, result.EstimatedResolutionTime)
	})

	t.Run("premium tier lifts medium urgency", func(t *testing.T) {
		// Arrange
		svc := NewService()

		// Act
		result, err := svc.Triage(context.Background(), models.TriageRequest{
			Title:        "Toner low",
			Description:  "The printer on floor 2 needs toner",
			CustomerTier: models.TierEnterprise,
		})

		// Assert
		require.NoError(t, err)
		assert.Equal(t, models.CategoryPrinter, result.Category)
		assert.Equal(t, models.UrgencyHigh, result.Urgency)
		assert.Equal(t, models.PriorityHigh, result.Priority)
	})

	t.Run("AI failure falls back to keywords", func(t *testing.T) {
		// Arrange
		ai := new(MockClassifier)
		ai.On("ClassifyTicket", mock.Anything, mock.Anything).Return(nil, domainErrors.ErrGeminiQuotaExceeded)
		svc := NewService(WithClassifier(ai))

		// Act
		result, err := svc.Triage(context.Background(), models.TriageRequest{
			Title:       "Phishing email",
			Description: "Suspicious email asking for my password",
		})

		// Assert
		require.NoError(t, err)
		assert.Equal(t, models.SourceKeyword, result.Source)
		assert.Equal(t, models.CategorySecurity, result.Category)
		assert.Equal(t, models.UrgencyUrgent, result.Urgency)
		ai.AssertExpectations(t)
	})
}

func TestService_Triage_AI(t *testing.T) {
	t.Run("validates and boosts the AI answer", func(t *testing.T) {
		// Arrange
		ai := new(MockClassifier)
		ai.On("ClassifyTicket", mock.Anything, mock.Anything).Return(&models.Classification{
			Category:                "email",
			Urgency:                 "HIGH",
			Impact:                  "low",
			Confidence:              float(0.9),
			Reasoning:               "Mailbox full",
			EstimatedResolutionTime: integer(45),
		}, nil)
		svc := NewService(WithClassifier(ai))

		// Act
		result, err := svc.Triage(context.Background(), models.TriageRequest{
			TicketID:    "T-3",
			Title:       "Mailbox full",
			Description: "Outlook says my mailbox is full and email delivery fails",
		})

		// Assert
		require.NoError(t, err)
		assert.Equal(t, models.SourceAI, result.Source)
		assert.Equal(t, models.CategoryEmail, result.Category)
		assert.Equal(t, models.UrgencyHigh, result.Urgency)
		assert.Equal(t, models.PriorityMedium, result.Priority)
		assert.Equal(t, 45, result.EstimatedResolutionTime)
		assert.LessOrEqual(t, result.Confidence, 0.95)
		assert.Greater(t, result.Confidence, 0.9)
		assert.Equal(t, []string{"exchange_administration", "email_troubleshooting", "office365"}, result.SuggestedTechnicianSkills)
	})

	t.Run("fills defaults and downgrades unknown categories", func(t *testing.T) {
		// Arrange
		ai := new(MockClassifier)
		ai.On("ClassifyTicket", mock.Anything, mock.Anything).Return(&models.Classification{
			Category: "furniture",
			Urgency:  "whenever",
		}, nil)
		svc := NewService(WithClassifier(ai))

		// Act
		result, err := svc.Triage(context.Background(), models.TriageRequest{
			Title:       "Chair",
			Description: "Broken chair",
		})

		// Assert
		require.NoError(t, err)
		assert.Equal(t, models.CategoryOther, result.Category)
		assert.InDelta(t, 0.4, result.Confidence, 1e-9)
		assert.Equal(t, models.UrgencyMedium, result.Urgency)
		assert.Equal(t, models.ImpactMedium, result.Impact)
		assert.Equal(t, 120, result.EstimatedResolutionTime)
		assert.Equal(t, "AI classification", result.Reasoning)
	})

	t.Run("escalates old low urgency tickets", func(t *testing.T) {
		// Arrange
		ai := new(MockClassifier)
		ai.On("ClassifyTicket", mock.Anything, mock.Anything).Return(&models.Classification{
			Category:   "software",
			Urgency:    "low",
			Impact:     "low",
			Confidence: float(0.7),
			Reasoning:  "Cosmetic bug",
		}, nil)
		created := fixedNow.Add(-48 * time.Hour)
		svc := NewService(WithClassifier(ai), WithClock(func() time.Time { return fixedNow }))

		// Act
		result, err := svc.Triage(context.Background(), models.TriageRequest{
			Title:       "Button misaligned",
			Description: "The save button in the application is misaligned",
			CreatedAt:   &created,
		})

		// Assert
		require.NoError(t, err)
		assert.Equal(t, models.UrgencyMedium, result.Urgency)
		assert.Equal(t, "Cosmetic bug (escalated due to age)", result.Reasoning)
		assert.Equal(t, models.PriorityLow, result.Priority)
	})

	t.Run("security answers are always urgent", func(t *testing.T) {
		// Arrange
		ai := new(MockClassifier)
		ai.On("ClassifyTicket", mock.Anything, mock.Anything).Return(&models.Classification{
			Category:   "security",
			Urgency:    "low",
			Impact:     "low",
			Confidence: float(1.4),
		}, nil)
		svc := NewService(WithClassifier(ai))

		// Act
		result, err := svc.Triage(context.Background(), models.TriageRequest{
			Title:       "Certificate",
			Description: "SSL certificate expires next month",
		})

		// Assert
		require.NoError(t, err)
		assert.Equal(t, models.UrgencyUrgent, result.Urgency)
		assert.Equal(t, models.ImpactMedium, result.Impact)
		assert.Equal(t, models.PriorityHigh, result.Priority)
		assert.InDelta(t, 0.95, result.Confidence, 1e-9)
	})
}

func TestService_Triage_Cache(t *testing.T) {
	// Arrange
	ai := new(MockClassifier)
	ai.On("ClassifyTicket", mock.Anything, mock.Anything).Return(&models.Classification{
		Category: "hardware", Urgency: "high", Impact: "high", Confidence: float(0.8),
	}, nil).Once()
	store := cache.NewMemoryStore()
	svc := NewService(WithClassifier(ai), WithCache(store))
	req := models.TriageRequest{TicketID: "T-1", Title: "Laptop dead", Description: "Laptop will not power on"}

	// Act
	first, err := svc.Triage(context.Background(), req)
	require.NoError(t, err)
	req.TicketID = "T-2"
	second, err := svc.Triage(context.Background(), req)

	// Assert
	require.NoError(t, err)
	assert.False(t, first.Cached)
	assert.True(t, second.Cached)
	assert.Equal(t, "T-2", second.TicketID)
	assert.Equal(t, first.Category, second.Category)
	ai.AssertNumberOfCalls(t, "ClassifyTicket", 1)
}

func TestService_Triage_CacheSeparatesAgedTickets(t *testing.T) {
	// Arrange
	ai := new(MockClassifier)
	ai.On("ClassifyTicket", mock.Anything, mock.Anything).Return(&models.Classification{
		Category: "software", Urgency: "low", Impact: "low", Confidence: float(0.7), Reasoning: "Cosmetic bug",
	}, nil)
	now := fixedNow
	svc := NewService(WithClassifier(ai), WithCache(cache.NewMemoryStore()), WithClock(func() time.Time { return now }))
	created := fixedNow.Add(-23 * time.Hour)
	req := models.TriageRequest{
		Title:       "Button misaligned",
		Description: "The save button in the application is misaligned",
		CreatedAt:   &created,
	}

	// Act
	fresh, err := svc.Triage(context.Background(), req)
	require.NoError(t, err)
	now = fixedNow.Add(2 * time.Hour)
	aged, err := svc.Triage(context.Background(), req)
	require.NoError(t, err)
	again, err := svc.Triage(context.Background(), req)
	require.NoError(t, err)

	// Assert
	assert.Equal(t, models.UrgencyLow, fresh.Urgency)
	assert.False(t, aged.Cached)
	assert.Equal(t, models.UrgencyMedium, aged.Urgency)
	assert.True(t, again.Cached)
	ai.AssertNumberOfCalls(t, "ClassifyTicket", 2)
}

func TestPriorityFor(t *testing.T) {
	tests := []struct {
		urgency models.Urgency
		impact  models.Impact
		want    models.Priority
	}{
		{models.UrgencyUrgent, models.ImpactHigh, models.PriorityCritical},
		{models.UrgencyUrgent, models.ImpactLow, models.PriorityHigh},
		{models.UrgencyHigh, models.ImpactMedium, models.PriorityHigh},
		{models.UrgencyHigh, models.ImpactLow, models.PriorityMedium},
		{models.UrgencyMedium, models.ImpactHigh, models.PriorityMedium},
		{models.UrgencyMedium, models.ImpactLow, models.PriorityLow},
		{models.UrgencyLow, models.ImpactHigh, models.PriorityMedium},
		{models.UrgencyLow, models.ImpactLow, models.PriorityLow},
		{"bogus", models.ImpactLow, models.PriorityMedium},
	}

	for _, tt := range tests {
		t.Run(string(tt.urgency)+"_"+string(tt.impact), func(t *testing.T) {
			assert.Equal(t, tt.want, PriorityFor(tt.urgency, tt.impact))
		})
	}
}

func TestService_HealthCheck(t *testing.T) {
	assert.NoError(t, NewService().HealthCheck(context.Background()))
}
