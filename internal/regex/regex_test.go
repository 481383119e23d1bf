package regex

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestListMarker(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{in: "1. Restart the router", want: "Restart the router"},
		{in: "  2) Check the cable", want: "Check the cable"},
		{in: "- Clear the print queue", want: "Clear the print queue"},
		{in: "Reset the password", want: "Reset the password"},
		{in: "10.0.0.1 is the gateway", want: "10.0.0.1 is the gateway"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, ListMarker.ReplaceAllString(tt.in, ""))
		})
	}
}

func TestMarkdownJSONBlock(t *testing.T) {
	m := MarkdownJSONBlock.FindStringSubmatch("here:\n```json\n{\"a\":1}\n```")

	assert.Equal(t, "{\"a\":1}\n", m[1])
}
