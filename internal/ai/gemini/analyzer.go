package gemini

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/thomas-vilte/mateticket/internal/ai"
	domainErrors "github.com/thomas-vilte/mateticket/internal/errors"
	"github.com/thomas-vilte/mateticket/internal/logger"
	"github.com/thomas-vilte/mateticket/internal/models"
	"github.com/thomas-vilte/mateticket/internal/regex"
	"github.com/thomas-vilte/mateticket/internal/services/routing"
	"google.golang.org/genai"
)

var _ ai.TicketAnalyzer = (*TicketAnalyzer)(nil)

type generateJSONFunc func(ctx context.Context, model, prompt string, schema *genai.Schema) (string, *models.TokenUsage, error)

// TicketAnalyzer implements ai.TicketAnalyzer on top of Gemini, with every
// call going through the cost aware wrapper.
type TicketAnalyzer struct {
	wrapper  *ai.CostAwareWrapper
	generate generateJSONFunc
	ping     func(ctx context.Context) error
	language string
}

func NewTicketAnalyzer(client *Client, wrapper *ai.CostAwareWrapper, language string) *TicketAnalyzer {
	return &TicketAnalyzer{
		wrapper:  wrapper,
		generate: client.GenerateJSON,
		ping:     client.Ping,
		language: language,
	}
}

func (a *TicketAnalyzer) withSchema(schema *genai.Schema) ai.GenerateFunc {
	return func(ctx context.Context, model, prompt string) (string, *models.TokenUsage, error) {
		return a.generate(ctx, model, prompt, schema)
	}
}

func (a *TicketAnalyzer) ClassifyTicket(ctx context.Context, req models.TriageRequest) (*models.Classification, error) {
	log := logger.FromContext(ctx)

	tier := string(req.CustomerTier)
	if tier == "" {
		tier = string(models.TierBasic)
	}

	prompt, err := ai.RenderPrompt("classifyPrompt", ai.GetClassifyPromptTemplate(a.language), ai.PromptData{
		Title:        req.Title,
		Description:  req.Description,
		CustomerTier: tier,
		Categories:   ai.FormatCategories(),
	})
	if err != nil {
		return nil, domainErrors.NewAppError(domainErrors.TypeInternal, "error rendering classification prompt", err)
	}

	log.Debug("calling gemini API for ticket classification",
		"ticket_id", req.TicketID,
		"prompt_length", len(prompt))

	resp, usage, err := a.wrapper.WrapGenerate(ctx, routing.OperationClassify, prompt, a.withSchema(classificationSchema))
	if err != nil {
		return nil, err
	}

	var out models.Classification
	if err := decode(resp, &out, "classify ticket"); err != nil {
		return nil, err
	}
	out.Usage = usage

	return &out, nil
}

func (a *TicketAnalyzer) PredictSLA(ctx context.Context, req models.SLARequest) (*models.SLAAssessment, error) {
	data := ai.PromptData{
		TicketID:         req.TicketID,
		Title:            req.Title,
		Category:         string(req.Category),
		CustomerTier:     string(req.CustomerTier),
		Priority:         string(req.Priority),
		Status:           string(req.Status),
		CreatedAt:        req.CreatedAt.UTC().Format(time.RFC3339),
		TimeSpentMinutes: req.TimeSpentMinutes,
		EscalationLevel:  req.EscalationLevel,
		Assigned:         req.AssignedTechnicianID != "",
	}
	if req.SLADeadline != nil {
		data.SLADeadline = req.SLADeadline.UTC().Format(time.RFC3339)
	}
	if req.TechnicianWorkload != nil {
		data.TechnicianWorkload = fmt.Sprintf("%.2f", *req.TechnicianWorkload)
	}
	if req.TechnicianSkillLevel != nil {
		data.TechnicianSkillLevel = fmt.Sprintf("%.1f", *req.TechnicianSkillLevel)
	}

	prompt, err := ai.RenderPrompt("slaPrompt", ai.GetSLAPromptTemplate(a.language), data)
	if err != nil {
		return nil, domainErrors.NewAppError(domainErrors.TypeInternal, "error rendering SLA prompt", err)
	}

	resp, usage, err := a.wrapper.WrapGenerate(ctx, routing.OperationSLA, prompt, a.withSchema(slaSchema))
	if err != nil {
		return nil, err
	}

	var out models.SLAAssessment
	if err := decode(resp, &out, "predict SLA"); err != nil {
		return nil, err
	}
	if out.BreachProbability == nil {
		return nil, domainErrors.ErrInvalidAIOutput.
			WithContext("reason", "missing breach_probability").
			WithContext("operation", "predict SLA")
	}
	out.Usage = usage

	return &out, nil
}

func (a *TicketAnalyzer) SuggestResolution(ctx context.Context, req models.ResolutionRequest, similar []models.SimilarTicket) (*models.AIResolutionSet, error) {
	category := string(req.Category)
	if category == "" {
		category = "unknown"
	}
	maxSuggestions := req.MaxSuggestions
	if maxSuggestions <= 0 {
		maxSuggestions = 3
	}

	prompt, err := ai.RenderPrompt("resolutionPrompt", ai.GetResolutionPromptTemplate(a.language), ai.PromptData{
		Title:          req.Title,
		Description:    req.Description,
		Category:       category,
		MaxSuggestions: maxSuggestions,
		SimilarTickets: ai.FormatSimilarTicketsForPrompt(similar),
	})
	if err != nil {
		return nil, domainErrors.NewAppError(domainErrors.TypeInternal, "error rendering resolution prompt", err)
	}

	resp, usage, err := a.wrapper.WrapGenerate(ctx, routing.OperationResolve, prompt, a.withSchema(resolutionSchema))
	if err != nil {
		return nil, err
	}

	var out models.AIResolutionSet
	if err := decode(resp, &out, "suggest resolution"); err != nil {
		return nil, err
	}

	valid := out.Suggestions[:0]
	for _, s := range out.Suggestions {
		if strings.TrimSpace(s.Title) == "" && strings.TrimSpace(s.Description) == "" {
			continue
		}
		steps := s.Steps[:0]
		for _, step := range s.Steps {
			if step = strings.TrimSpace(regex.ListMarker.ReplaceAllString(step, "")); step != "" {
				steps = append(steps, step)
			}
		}
		s.Steps = steps
		valid = append(valid, s)
	}
	if len(valid) == 0 {
		return nil, domainErrors.ErrInvalidAIOutput.
			WithContext("reason", "AI generated no suggestions").
			WithContext("operation", "suggest resolution")
	}
	out.Suggestions = valid
	out.Usage = usage

	return &out, nil
}

func (a *TicketAnalyzer) Ping(ctx context.Context) error {
	return a.ping(ctx)
}

func decode(responseText string, dst any, operation string) error {
	if strings.TrimSpace(responseText) == "" {
		return domainErrors.ErrInvalidAIOutput.
			WithContext("reason", "empty response from AI").
			WithContext("operation", operation)
	}

	responseText = ExtractJSON(responseText)
	if err := json.Unmarshal([]byte(responseText), dst); err != nil {
		preview := responseText
		if len(preview) > 500 {
			preview = preview[:500] + "..."
		}
		return domainErrors.ErrInvalidAIOutput.
			WithContext("reason", "failed to parse JSON").
			WithContext("operation", operation).
			WithContext("response_length", len(responseText)).
			WithContext("preview", preview).
			WithError(err)
	}
	return nil
}
