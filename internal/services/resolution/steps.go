package resolution

import (
	"fmt"
	"strings"

	"github.com/thomas-vilte/mateticket/internal/models"
)

var commonActions = []string{"restart", "update", "check", "verify", "install", "configure", "reset"}

var tipsByKeyword = []struct {
	keyword string
	tips    []string
}{
	{"restart", []string{"Save any open work before restarting", "Wait 30 seconds before restarting"}},
	{"check", []string{"Document current settings before making changes", "Take screenshots for reference"}},
	{"install", []string{"Download from official sources only", "Create system restore point first"}},
	{"update", []string{"Check compatibility before updating", "Have rollback plan ready"}},
	{"verify", []string{"Test functionality thoroughly", "Check with end user if possible"}},
}

var defaultTips = []string{"Document all changes made", "Test thoroughly before closing ticket"}

func tipsFor(step string) []string {
	lower := strings.ToLower(step)
	for _, t := range tipsByKeyword {
		if strings.Contains(lower, t.keyword) {
			return append([]string(nil), t.tips...)
		}
	}
	return append([]string(nil), defaultTips...)
}

// buildSteps numbers descriptions. Tips are only attached when withTips is set.
func buildSteps(descriptions []string, withTips bool) []models.ResolutionStep {
	steps := make([]models.ResolutionStep, 0, len(descriptions))
	for _, d := range descriptions {
		d = strings.TrimSpace(d)
		if d == "" {
			continue
		}
		n := len(steps) + 1
		step := models.ResolutionStep{
			StepNumber:      n,
			Description:     d,
			ExpectedOutcome: fmt.Sprintf("Step %d completed successfully", n),
		}
		if withTips {
			step.TroubleshootingTips = tipsFor(d)
		}
		steps = append(steps, step)
	}
	return steps
}

// alignment is the share of common actions mentioned in a suggestion.
func alignment(s models.AIResolution) float64 {
	text := strings.ToLower(s.Title + " " + s.Description + " " + strings.Join(s.Steps, " "))
	matches := 0
	for _, action := range commonActions {
		if strings.Contains(text, action) {
			matches++
		}
	}
	return float64(matches) / float64(len(commonActions))
}

// mergeHistoricalSteps adds the checks resolved tickets tend to include: a
// verification after a restart and a backup before installing or updating.
func mergeHistoricalSteps(steps []string) []string {
	out := append([]string(nil), steps...)

	if anyContains(steps, "restart") && !anyContains(steps, "verify") {
		out = append(out, "Verify the service is running properly after restart")
	}
	if (anyContains(steps, "install") || anyContains(steps, "update")) && !anyContains(steps, "backup") {
		out = append([]string{"Create a backup before making changes"}, out...)
	}
	return out
}

func anyContains(steps []string, word string) bool {
	for _, s := range steps {
		if strings.Contains(strings.ToLower(s), word) {
			return true
		}
	}
	return false
}
