package models

import "strings"

type (
	Category     string
	Priority     string
	Urgency      string
	Impact       string
	TicketStatus string
	CustomerTier string
	RiskLevel    string
)

const (
	CategoryHardware Category = "hardware"
	CategorySoftware Category = "software"
	CategoryNetwork  Category = "network"
	CategorySecurity Category = "security"
	CategoryEmail    Category = "email"
	CategoryBackup   Category = "backup"
	CategoryPrinter  Category = "printer"
	CategoryPhone    Category = "phone"
	CategoryAccess   Category = "access"
	CategoryOther    Category = "other"
)

const (
	PriorityCritical Priority = "critical"
	PriorityHigh     Priority = "high"
	PriorityMedium   Priority = "medium"
	PriorityLow      Priority = "low"
)

const (
	UrgencyUrgent Urgency = "urgent"
	UrgencyHigh   Urgency = "high"
	UrgencyMedium Urgency = "medium"
	UrgencyLow    Urgency = "low"
)

const (
	ImpactHigh   Impact = "high"
	ImpactMedium Impact = "medium"
	ImpactLow    Impact = "low"
)

const (
	StatusOpen            TicketStatus = "open"
	StatusInProgress      TicketStatus = "in_progress"
	StatusPendingCustomer TicketStatus = "pending_customer"
	StatusResolved        TicketStatus = "resolved"
	StatusClosed          TicketStatus = "closed"
)

const (
	TierBasic      CustomerTier = "basic"
	TierPremium    CustomerTier = "premium"
	TierEnterprise CustomerTier = "enterprise"
)

const (
	RiskLow      RiskLevel = "low"
	RiskMedium   RiskLevel = "medium"
	RiskHigh     RiskLevel = "high"
	RiskCritical RiskLevel = "critical"
)

// Categories lists every known category, in the order the keyword
// classifier walks them.
var Categories = []Category{
	CategoryHardware, CategorySoftware, CategoryNetwork, CategorySecurity, CategoryEmail,
	CategoryBackup, CategoryPrinter, CategoryPhone, CategoryAccess, CategoryOther,
}

var (
	priorities = []Priority{PriorityCritical, PriorityHigh, PriorityMedium, PriorityLow}
	urgencies  = []Urgency{UrgencyUrgent, UrgencyHigh, UrgencyMedium, UrgencyLow}
	impacts    = []Impact{ImpactHigh, ImpactMedium, ImpactLow}
	statuses   = []TicketStatus{StatusOpen, StatusInProgress, StatusPendingCustomer, StatusResolved, StatusClosed}
	tiers      = []CustomerTier{TierBasic, TierPremium, TierEnterprise}
	riskLevels = []RiskLevel{RiskLow, RiskMedium, RiskHigh, RiskCritical}
)

func parse[T ~string](raw string, known []T) (T, bool) {
	v := T(strings.ToLower(strings.TrimSpace(raw)))
	if contains(known, v) {
		return v, true
	}
	var zero T
	return zero, false
}

func contains[T ~string](known []T, v T) bool {
	for _, k := range known {
		if k == v {
			return true
		}
	}
	return false
}

func ParseCategory(raw string) (Category, bool) { return parse(raw, Categories) }
func ParseUrgency(raw string) (Urgency, bool)   { return parse(raw, urgencies) }
func ParseImpact(raw string) (Impact, bool)     { return parse(raw, impacts) }

func (c Category) Valid() bool     { return contains(Categories, c) }
func (p Priority) Valid() bool     { return contains(priorities, p) }
func (u Urgency) Valid() bool      { return contains(urgencies, u) }
func (i Impact) Valid() bool       { return contains(impacts, i) }
func (s TicketStatus) Valid() bool { return contains(statuses, s) }
func (t CustomerTier) Valid() bool { return contains(tiers, t) }
func (r RiskLevel) Valid() bool    { return contains(riskLevels, r) }

// Score maps a priority onto 1 (low) .. 4 (critical); unknown values score 2.
func (p Priority) Score() int {
	switch p {
	case PriorityCritical:
		return 4
	case PriorityHigh:
		return 3
	case PriorityLow:
		return 1
	default:
		return 2
	}
}

// Score maps a tier onto 1 (basic) .. 3 (enterprise).
func (t CustomerTier) Score() int {
	switch t {
	case TierEnterprise:
		return 3
	case TierPremium:
		return 2
	default:
		return 1
	}
}

// IsPremium reports whether the tier gets preferential handling.
func (t CustomerTier) IsPremium() bool {
	return t == TierPremium || t == TierEnterprise
}

// IsFinal reports whether no further work is expected on the ticket.
func (s TicketStatus) IsFinal() bool {
	return s == StatusResolved || s == StatusClosed
}
