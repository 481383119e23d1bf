package ai

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/thomas-vilte/mateticket/internal/models"
)

func TestRenderPrompt(t *testing.T) {
	t.Run("Success - Render classification prompt", func(t *testing.T) {
		data := PromptData{
			Title:        "VPN down",
			Description:  "Remote staff cannot connect since 9am",
			CustomerTier: "premium",
			Categories:   FormatCategories(),
		}

		result, err := RenderPrompt("classify", GetClassifyPromptTemplate("en"), data)

		require.NoError(t, err)
		assert.Contains(t, result, "Title: VPN down")
		assert.Contains(t, result, "Customer tier: premium")
		assert.Contains(t, result, "hardware, software, network")
		assert.Contains(t, result, `"estimated_resolution_time"`)
	})

	t.Run("Success - Render SLA prompt with technician data", func(t *testing.T) {
		data := PromptData{
			TicketID:             "T-9",
			Priority:             "high",
			Status:               "open",
			TimeSpentMinutes:     45,
			Assigned:             true,
			TechnicianWorkload:   "0.90",
			TechnicianSkillLevel: "7",
		}

		result, err := RenderPrompt("sla", GetSLAPromptTemplate("en"), data)

		require.NoError(t, err)
		assert.Contains(t, result, "ID: T-9")
		assert.Contains(t, result, "Time spent: 45 minutes")
		assert.Contains(t, result, "Assigned: yes")
		assert.Contains(t, result, "Technician workload: 0.90")
	})

	t.Run("Success - SLA prompt omits missing technician data", func(t *testing.T) {
		result, err := RenderPrompt("sla", GetSLAPromptTemplate("en"), PromptData{TicketID: "T-1"})

		require.NoError(t, err)
		assert.Contains(t, result, "Assigned: no")
		assert.NotContains(t, result, "Technician workload")
	})

	t.Run("Success - Render resolution prompt with similar tickets", func(t *testing.T) {
		data := PromptData{
			Title:          "Printer offline",
			MaxSuggestions: 3,
			SimilarTickets: FormatSimilarTicketsForPrompt([]models.SimilarTicket{
				{TicketID: "HIST-004", Title: "Printer not responding", Similarity: 0.91, ResolutionSummary: "Restarted spooler"},
			}),
		}

		result, err := RenderPrompt("resolution", GetResolutionPromptTemplate("es"), data)

		require.NoError(t, err)
		assert.Contains(t, result, "como máximo 3 sugerencias")
		assert.Contains(t, result, "[HIST-004] Printer not responding (similarity 0.91): Restarted spooler")
	})

	t.Run("Error - Invalid template", func(t *testing.T) {
		_, err := RenderPrompt("broken", "{{.Title", PromptData{})

		assert.Error(t, err)
	})

	t.Run("Error - Unknown field", func(t *testing.T) {
		_, err := RenderPrompt("unknown", "{{.Nope}}", PromptData{})

		assert.Error(t, err)
	})
}

func TestPromptTemplateSelection(t *testing.T) {
	tests := []struct {
		name string
		get  func(string) string
		es   string
		en   string
	}{
		{name: "classify", get: GetClassifyPromptTemplate, es: classifyPromptTemplateES, en: classifyPromptTemplateEN},
		{name: "sla", get: GetSLAPromptTemplate, es: slaPromptTemplateES, en: slaPromptTemplateEN},
		{name: "resolution", get: GetResolutionPromptTemplate, es: resolutionPromptTemplateES, en: resolutionPromptTemplateEN},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.es, tt.get("es"))
			assert.Equal(t, tt.en, tt.get("en"))
			assert.Equal(t, tt.en, tt.get("fr"))
		})
	}
}

func TestFormatSimilarTicketsForPrompt_Empty(t *testing.T) {
	assert.Empty(t, FormatSimilarTicketsForPrompt(nil))
}
