package config

type Model string

const (
	ModelGemini15Flash      Model = "gemini-1.5-flash"
	ModelGemini15Pro        Model = "gemini-1.5-pro"
	ModelGeminiV25Flash     Model = "gemini-2.5-flash"
	ModelGeminiV25FlashLite Model = "gemini-2.5-flash-lite"
	ModelGeminiV25Pro       Model = "gemini-2.5-pro"
)

// SupportedModels lists the generation models the pricing table knows about.
func SupportedModels() []Model {
	return []Model{
		ModelGemini15Flash,
		ModelGemini15Pro,
		ModelGeminiV25Flash,
		ModelGeminiV25FlashLite,
		ModelGeminiV25Pro,
	}
}

// IsSupportedModel reports whether name is one of SupportedModels.
func IsSupportedModel(name string) bool {
	for _, m := range SupportedModels() {
		if string(m) == name {
			return true
		}
	}
	return false
}
