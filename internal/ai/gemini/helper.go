package gemini

import (
	"encoding/json"
	"strings"

	domainErrors "github.com/thomas-vilte/mateticket/internal/errors"
	"github.com/thomas-vilte/mateticket/internal/models"
	"github.com/thomas-vilte/mateticket/internal/regex"
	"google.golang.org/genai"
)

const mimeJSON = "application/json"

// extractUsage extracts usage metadata from the Gemini response
func extractUsage(resp *genai.GenerateContentResponse) *models.TokenUsage {
	if resp == nil || resp.UsageMetadata == nil {
		return nil
	}
	return &models.TokenUsage{
		InputTokens:  int(resp.UsageMetadata.PromptTokenCount),
		OutputTokens: int(resp.UsageMetadata.CandidatesTokenCount),
		TotalTokens:  int(resp.UsageMetadata.TotalTokenCount),
	}
}

// GetGenerateConfig returns the generation config for the model, enabling
// Thinking Mode if compatible.
func GetGenerateConfig(modelName string, responseType string, schema *genai.Schema, temperature float64, maxTokens int) *genai.GenerateContentConfig {
	config := &genai.GenerateContentConfig{
		Temperature:     float32Ptr(float32(temperature)),
		MaxOutputTokens: int32(maxTokens),
	}

	if responseType == mimeJSON {
		config.ResponseMIMEType = mimeJSON
		if schema != nil {
			config.ResponseJsonSchema = schema
		}
	}

	if strings.HasPrefix(modelName, "gemini-3") {
		config.ThinkingConfig = &genai.ThinkingConfig{
			IncludeThoughts: true,
			ThinkingLevel:   genai.ThinkingLevelHigh,
		}
	}

	return config
}

// formatResponse joins the text parts of every candidate, skipping thoughts.
func formatResponse(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 {
		return ""
	}

	var formattedContent strings.Builder
	for _, cand := range resp.Candidates {
		if cand == nil || cand.Content == nil {
			continue
		}
		for _, part := range cand.Content.Parts {
			if part == nil || part.Thought {
				continue
			}
			formattedContent.WriteString(part.Text)
		}
	}
	return formattedContent.String()
}

// classifyError maps a Gemini API error to a domain error.
func classifyError(err error) error {
	errMsg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(errMsg, "quota") ||
		strings.Contains(errMsg, "rate limit") ||
		strings.Contains(errMsg, "resource exhausted"):
		return domainErrors.ErrGeminiQuotaExceeded.WithError(err)
	case strings.Contains(errMsg, "invalid") ||
		strings.Contains(errMsg, "unauthorized") ||
		strings.Contains(errMsg, "api key"):
		return domainErrors.ErrGeminiAPIKeyInvalid.WithError(err)
	default:
		return domainErrors.ErrAIGeneration.WithError(err)
	}
}

// ExtractJSON pulls the JSON payload out of a model response. Fenced markdown
// blocks win; otherwise the largest balanced object or array is used; as a
// last resort the sanitized text is returned as is.
func ExtractJSON(text string) string {
	text = strings.TrimSpace(text)

	var bestMarkdown string
	for _, m := range regex.MarkdownJSONBlock.FindAllStringSubmatch(text, -1) {
		if len(m) < 2 {
			continue
		}
		sanitized := SanitizeJSON(strings.TrimSpace(m[1]))
		if json.Valid([]byte(sanitized)) && len(sanitized) > len(bestMarkdown) {
			bestMarkdown = sanitized
		}
	}
	if bestMarkdown != "" {
		return bestMarkdown
	}

	var bestBlock string
	for i := 0; i < len(text); {
		startIdx := strings.IndexAny(text[i:], "{[")
		if startIdx == -1 {
			break
		}
		startIdx += i

		endIdx := matchingClose(text, startIdx)
		if endIdx == -1 {
			i = startIdx + 1
			continue
		}

		sanitized := SanitizeJSON(text[startIdx : endIdx+1])
		if json.Valid([]byte(sanitized)) && len(sanitized) > len(bestBlock) {
			bestBlock = sanitized
		}
		i = endIdx + 1
	}

	if bestBlock != "" {
		return bestBlock
	}

	return SanitizeJSON(text)
}

// matchingClose returns the index closing the bracket at start, ignoring
// brackets inside string literals, or -1.
func matchingClose(text string, start int) int {
	opener := text[start]
	closer := byte('}')
	if opener == '[' {
		closer = ']'
	}

	depth := 0
	inString := false
	escaped := false
	for j := start; j < len(text); j++ {
		c := text[j]
		switch {
		case escaped:
			escaped = false
		case c == '\\':
			escaped = true
		case c == '"':
			inString = !inString
		case inString:
		case c == opener:
			depth++
		case c == closer:
			depth--
			if depth == 0 {
				return j
			}
		}
	}
	return -1
}

// SanitizeJSON cleans malformed JSON that LLMs sometimes generate,
// such as unescaped newlines within string literals.
func SanitizeJSON(s string) string {
	return regex.JSONString.ReplaceAllStringFunc(s, func(m string) string {
		return strings.ReplaceAll(m, "\n", "\\n")
	})
}

func float32Ptr(f float32) *float32 {
	return &f
}
