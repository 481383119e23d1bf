package ai

import (
	"bytes"
	"fmt"
	"strings"
	"text/template"

	"github.com/thomas-vilte/mateticket/internal/models"
)

// PromptData holds the parameters for template rendering
type PromptData struct {
	TicketID     string
	Title        string
	Description  string
	Category     string
	CustomerTier string
	Categories   string

	Priority             string
	Status               string
	CreatedAt            string
	SLADeadline          string
	TimeSpentMinutes     float64
	EscalationLevel      int
	Assigned             bool
	TechnicianWorkload   string
	TechnicianSkillLevel string

	MaxSuggestions int
	SimilarTickets string
}

// RenderPrompt renders a prompt template with the provided data
func RenderPrompt(name, tmplStr string, data interface{}) (string, error) {
	tmpl, err := template.New(name).Parse(tmplStr)
	if err != nil {
		return "", fmt.Errorf("error parsing template %s: %w", name, err)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("error executing template %s: %w", name, err)
	}

	return buf.String(), nil
}

const (
	classifyPromptTemplateEN = `# Task
  You are an expert IT support ticket classifier for a managed service provider.
  Classify the ticket below.

  # Ticket
  Title: {{.Title}}
  Description: {{.Description}}
  Customer tier: {{.CustomerTier}}

  # What to decide
  1. **category**: one of {{.Categories}}.
  2. **urgency**: one of urgent, high, medium, low. Consider business hours, how many users are affected and whether work is blocked.
  3. **impact**: one of high, medium, low. Consider how critical the affected system is and any security exposure.
  4. **estimated_resolution_time**: minutes a technician will need.
  5. **suggested_technician_skills**: short snake_case skill names.
  6. **confidence_score**: 0.0 to 1.0.
  7. **reasoning**: one or two sentences.

  # Rules
  - Use only what the ticket says. If it is vague, lower the confidence.
  - Security incidents (malware, phishing, breaches) are never low urgency.
  - Raw JSON only. Do not wrap it in markdown blocks.

  # Output Format
  {
    "category": "network",
    "urgency": "high",
    "impact": "medium",
    "confidence_score": 0.85,
    "reasoning": "VPN outage blocks remote staff",
    "suggested_technician_skills": ["network_administration"],
    "estimated_resolution_time": 90,
    "key_indicators": ["vpn", "cannot connect"]
  }`

	classifyPromptTemplateES = `# Tarea
  Sos un clasificador experto de tickets de soporte IT para un proveedor de servicios gestionados.
  Clasificá el ticket de abajo.

  # Ticket
  Título: {{.Title}}
  Descripción: {{.Description}}
  Nivel de cliente: {{.CustomerTier}}

  # Qué decidir
  1. **category**: una de {{.Categories}}.
  2. **urgency**: una de urgent, high, medium, low. Considerá el horario laboral, cuántos usuarios están afectados y si el trabajo está bloqueado.
  3. **impact**: una de high, medium, low. Considerá qué tan crítico es el sistema afectado y si hay exposición de seguridad.
  4. **estimated_resolution_time**: minutos que necesitará un técnico.
  5. **suggested_technician_skills**: nombres cortos de habilidades en snake_case.
  6. **confidence_score**: de 0.0 a 1.0.
  7. **reasoning**: una o dos oraciones, en español.

  # Reglas
  - Usá solo lo que dice el ticket. Si es vago, bajá la confianza.
  - Los incidentes de seguridad (malware, phishing, brechas) nunca son de urgencia baja.
  - Solo JSON crudo. No lo envuelvas en bloques de markdown.
  - Las claves y los valores de enumeración van en inglés.

  # Formato de salida
  {
    "category": "network",
    "urgency": "high",
    "impact": "medium",
    "confidence_score": 0.85,
    "reasoning": "La caída de la VPN bloquea al personal remoto",
    "suggested_technician_skills": ["network_administration"],
    "estimated_resolution_time": 90,
    "key_indicators": ["vpn", "no conecta"]
  }`
)

const (
	slaPromptTemplateEN = `# Task
  Estimate the risk that this support ticket misses its SLA deadline.

  # Ticket
  ID: {{.TicketID}}
  Title: {{.Title}}
  Category: {{.Category}}
  Priority: {{.Priority}}
  Status: {{.Status}}
  Customer tier: {{.CustomerTier}}
  Created at: {{.CreatedAt}}
  SLA deadline: {{.SLADeadline}}
  Time spent: {{printf "%.0f" .TimeSpentMinutes}} minutes
  Escalation level: {{.EscalationLevel}}
  Assigned: {{if .Assigned}}yes{{else}}no{{end}}
  {{- if .TechnicianWorkload}}
  Technician workload: {{.TechnicianWorkload}}
  {{- end}}
  {{- if .TechnicianSkillLevel}}
  Technician skill level (0-10): {{.TechnicianSkillLevel}}
  {{- end}}

  # Rules
  - breach_probability and confidence_score are between 0.0 and 1.0.
  - risk_level is one of low, medium, high, critical.
  - A resolved or closed ticket cannot breach.
  - Raw JSON only. Do not wrap it in markdown blocks.

  # Output Format
  {
    "breach_probability": 0.42,
    "risk_level": "medium",
    "estimated_completion_hours": 3.5,
    "confidence_score": 0.7,
    "risk_factors": ["unassigned ticket"],
    "recommended_actions": ["assign a technician"]
  }`

	slaPromptTemplateES = `# Tarea
  Estimá el riesgo de que este ticket de soporte no cumpla su SLA.

  # Ticket
  ID: {{.TicketID}}
  Título: {{.Title}}
  Categoría: {{.Category}}
  Prioridad: {{.Priority}}
  Estado: {{.Status}}
  Nivel de cliente: {{.CustomerTier}}
  Creado: {{.CreatedAt}}
  Vencimiento del SLA: {{.SLADeadline}}
  Tiempo invertido: {{printf "%.0f" .TimeSpentMinutes}} minutos
  Nivel de escalamiento: {{.EscalationLevel}}
  Asignado: {{if .Assigned}}sí{{else}}no{{end}}
  {{- if .TechnicianWorkload}}
  Carga del técnico: {{.TechnicianWorkload}}
  {{- end}}
  {{- if .TechnicianSkillLevel}}
  Nivel de habilidad del técnico (0-10): {{.TechnicianSkillLevel}}
  {{- end}}

  # Reglas
  - breach_probability y confidence_score van entre 0.0 y 1.0.
  - risk_level es uno de low, medium, high, critical.
  - Un ticket resuelto o cerrado no puede incumplir.
  - Solo JSON crudo. No lo envuelvas en bloques de markdown.
  - Los factores y acciones van en español.

  # Formato de salida
  {
    "breach_probability": 0.42,
    "risk_level": "medium",
    "estimated_completion_hours": 3.5,
    "confidence_score": 0.7,
    "risk_factors": ["ticket sin asignar"],
    "recommended_actions": ["asignar un técnico"]
  }`
)

const (
	resolutionPromptTemplateEN = `# Task
  Act as a senior support engineer and suggest how to resolve this ticket.

  # Ticket
  Title: {{.Title}}
  Description: {{.Description}}
  Category: {{.Category}}
  {{- if .SimilarTickets}}

  # Similar resolved tickets
  {{.SimilarTickets}}
  {{- end}}

  # Rules
  - Give at most {{.MaxSuggestions}} suggestions, best first.
  - Steps are concrete actions a technician can follow, in order.
  - Reuse what worked for the similar tickets when it applies.
  - confidence_score is between 0.0 and 1.0.
  - Raw JSON only. Do not wrap it in markdown blocks.

  # Output Format
  {
    "suggestions": [
      {
        "title": "Restart the print spooler",
        "description": "The spooler service hangs after driver updates",
        "confidence_score": 0.8,
        "estimated_time_minutes": 15,
        "steps": ["Open services.msc", "Restart Print Spooler", "Print a test page"],
        "required_skills": ["printer_support"]
      }
    ]
  }`

	resolutionPromptTemplateES = `# Tarea
  Actuá como ingeniero de soporte senior y sugerí cómo resolver este ticket.

  # Ticket
  Título: {{.Title}}
  Descripción: {{.Description}}
  Categoría: {{.Category}}
  {{- if .SimilarTickets}}

  # Tickets similares resueltos
  {{.SimilarTickets}}
  {{- end}}

  # Reglas
  - Dá como máximo {{.MaxSuggestions}} sugerencias, la mejor primero.
  - Los pasos son acciones concretas que un técnico puede seguir, en orden.
  - Reutilizá lo que funcionó en los tickets similares cuando aplique.
  - confidence_score va entre 0.0 y 1.0.
  - Solo JSON crudo. No lo envuelvas en bloques de markdown.
  - Títulos, descripciones y pasos en español.

  # Formato de salida
  {
    "suggestions": [
      {
        "title": "Reiniciar la cola de impresión",
        "description": "El servicio de cola se cuelga después de actualizar drivers",
        "confidence_score": 0.8,
        "estimated_time_minutes": 15,
        "steps": ["Abrir services.msc", "Reiniciar Print Spooler", "Imprimir una página de prueba"],
        "required_skills": ["printer_support"]
      }
    ]
  }`
)

// GetClassifyPromptTemplate returns the classification template based on the language
func GetClassifyPromptTemplate(lang string) string {
	switch lang {
	case "es":
		return classifyPromptTemplateES
	default:
		return classifyPromptTemplateEN
	}
}

// GetSLAPromptTemplate returns the SLA risk template based on the language
func GetSLAPromptTemplate(lang string) string {
	switch lang {
	case "es":
		return slaPromptTemplateES
	default:
		return slaPromptTemplateEN
	}
}

// GetResolutionPromptTemplate returns the resolution template based on the language
func GetResolutionPromptTemplate(lang string) string {
	switch lang {
	case "es":
		return resolutionPromptTemplateES
	default:
		return resolutionPromptTemplateEN
	}
}

// FormatCategories lists the valid categories for the classification prompt.
func FormatCategories() string {
	names := make([]string, len(models.Categories))
	for i, c := range models.Categories {
		names[i] = string(c)
	}
	return strings.Join(names, ", ")
}

// FormatSimilarTicketsForPrompt renders similar tickets as a bullet list.
func FormatSimilarTicketsForPrompt(similar []models.SimilarTicket) string {
	if len(similar) == 0 {
		return ""
	}

	var sb strings.Builder
	for _, t := range similar {
		sb.WriteString(fmt.Sprintf("- [%s] %s (similarity %.2f)", t.TicketID, t.Title, t.Similarity))
		if t.ResolutionSummary != "" {
			sb.WriteString(": ")
			sb.WriteString(t.ResolutionSummary)
		}
		sb.WriteString("\n")
	}
	return strings.TrimRight(sb.String(), "\n")
}
