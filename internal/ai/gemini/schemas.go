package gemini

import (
	"github.com/thomas-vilte/mateticket/internal/models"
	"google.golang.org/genai"
)

func stringList() *genai.Schema {
	return &genai.Schema{Type: genai.TypeArray, Items: &genai.Schema{Type: genai.TypeString}}
}

func categoryNames() []string {
	names := make([]string, len(models.Categories))
	for i, c := range models.Categories {
		names[i] = string(c)
	}
	return names
}

var classificationSchema = &genai.Schema{
	Type: genai.TypeObject,
	Properties: map[string]*genai.Schema{
		"category":                    {Type: genai.TypeString, Enum: categoryNames()},
		"urgency":                     {Type: genai.TypeString, Enum: []string{"urgent", "high", "medium", "low"}},
		"impact":                      {Type: genai.TypeString, Enum: []string{"high", "medium", "low"}},
		"confidence_score":            {Type: genai.TypeNumber},
		"reasoning":                   {Type: genai.TypeString},
		"suggested_technician_skills": stringList(),
		"estimated_resolution_time":   {Type: genai.TypeInteger},
		"key_indicators":              stringList(),
	},
	Required: []string{"category", "urgency", "impact", "confidence_score", "reasoning"},
}

var slaSchema = &genai.Schema{
	Type: genai.TypeObject,
	Properties: map[string]*genai.Schema{
		"breach_probability":         {Type: genai.TypeNumber},
		"risk_level":                 {Type: genai.TypeString, Enum: []string{"low", "medium", "high", "critical"}},
		"estimated_completion_hours": {Type: genai.TypeNumber},
		"confidence_score":           {Type: genai.TypeNumber},
		"risk_factors":               stringList(),
		"recommended_actions":        stringList(),
	},
	Required: []string{"breach_probability", "risk_level", "confidence_score"},
}

var resolutionSchema = &genai.Schema{
	Type: genai.TypeObject,
	Properties: map[string]*genai.Schema{
		"suggestions": {
			Type: genai.TypeArray,
			Items: &genai.Schema{
				Type: genai.TypeObject,
				Properties: map[string]*genai.Schema{
					"title":                  {Type: genai.TypeString},
					"description":            {Type: genai.TypeString},
					"confidence_score":       {Type: genai.TypeNumber},
					"estimated_time_minutes": {Type: genai.TypeInteger},
					"steps":                  stringList(),
					"required_skills":        stringList(),
				},
				Required: []string{"title", "confidence_score", "steps"},
			},
		},
	},
	Required: []string{"suggestions"},
}
