package routing

const (
	OperationClassify = "classify-ticket"
	OperationSLA      = "predict-sla"
	OperationResolve  = "suggest-resolution"
)

const (
	largeContextModel = "gemini-3-flash-preview"
	longFormModel     = "gemini-2.5-flash"

	largeContextTokens = 15000
	longFormTokens     = 8000
)

type ModelSelector struct {
	defaultModel string
}

// NewModelSelector returns a selector that keeps defaultModel unless the
// prompt calls for something larger.
func NewModelSelector(defaultModel string) *ModelSelector {
	return &ModelSelector{defaultModel: defaultModel}
}

// SelectBestModel picks a model for an operation given its prompt size:
//   - anything over 15k tokens goes to the large context model
//   - resolution prompts over 8k tokens, which carry similar tickets and
//     articles, go to 2.5 Flash
//   - everything else stays on the configured model
func (m *ModelSelector) SelectBestModel(operation string, estimatedTokens int) string {
	if estimatedTokens > largeContextTokens {
		return largeContextModel
	}

	if operation == OperationResolve && estimatedTokens > longFormTokens {
		return longFormModel
	}

	return m.defaultModel
}

// GetRationale returns the message key that explains why a model was chosen
func (m *ModelSelector) GetRationale(selectedModel string) string {
	switch selectedModel {
	case m.defaultModel:
		return "routing.reason_default"
	case largeContextModel:
		return "routing.reason_large"
	case longFormModel:
		return "routing.reason_long_form"
	default:
		return "routing.reason_default"
	}
}
