package routing

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestModelSelector_SelectBestModel(t *testing.T) {
	tests := []struct {
		name            string
		operation       string
		estimatedTokens int
		want            string
	}{
		{name: "small classification keeps default", operation: OperationClassify, estimatedTokens: 300, want: "gemini-1.5-flash"},
		{name: "large prompt of any kind", operation: OperationSLA, estimatedTokens: 20000, want: "gemini-3-flash-preview"},
		{name: "boundary above large", operation: OperationClassify, estimatedTokens: 15001, want: "gemini-3-flash-preview"},
		{name: "exact large boundary is not large", operation: OperationClassify, estimatedTokens: 15000, want: "gemini-1.5-flash"},
		{name: "long resolution prompt", operation: OperationResolve, estimatedTokens: 9000, want: "gemini-2.5-flash"},
		{name: "long prompt for other operation", operation: OperationSLA, estimatedTokens: 9000, want: "gemini-1.5-flash"},
		{name: "short resolution prompt", operation: OperationResolve, estimatedTokens: 8000, want: "gemini-1.5-flash"},
	}

	selector := NewModelSelector("gemini-1.5-flash")
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, selector.SelectBestModel(tt.operation, tt.estimatedTokens))
		})
	}
}

func TestModelSelector_GetRationale(t *testing.T) {
	selector := NewModelSelector("gemini-1.5-flash")

	assert.Equal(t, "routing.reason_default", selector.GetRationale("gemini-1.5-flash"))
	assert.Equal(t, "routing.reason_large", selector.GetRationale("gemini-3-flash-preview"))
	assert.Equal(t, "routing.reason_long_form", selector.GetRationale("gemini-2.5-flash"))
	assert.Equal(t, "routing.reason_default", selector.GetRationale("something-else"))
}
