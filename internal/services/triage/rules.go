package triage

import (
	"strings"

	"github.com/thomas-vilte/mateticket/internal/models"
)

var categoryKeywords = map[models.Category][]string{
	models.CategoryHardware: {
		"computer", "laptop", "desktop", "server", "hard drive", "memory", "ram", "cpu",
		"motherboard", "power supply", "monitor", "keyboard", "mouse", "hardware failure",
		"blue screen", "bsod", "overheating", "fan noise",
	},
	models.CategorySoftware: {
		"application", "program", "software", "install", "update", "patch", "license",
		"crash", "error message", "bug", "feature request", "office", "excel", "word",
		"outlook", "adobe", "browser",
	},
	models.CategoryNetwork: {
		"internet", "wifi", "ethernet", "connection", "network", "router", "switch",
		"firewall", "vpn", "dns", "dhcp", "ip address", "bandwidth", "slow connection",
		"timeout", "ping", "latency",
	},
	models.CategorySecurity: {
		"virus", "malware", "antivirus", "security", "breach", "hack", "phishing", "spam",
		"suspicious", "unauthorized", "password", "encryption", "certificate", "ssl",
		"firewall rule",
	},
	models.CategoryEmail: {
		"email", "outlook", "exchange", "smtp", "imap", "pop3", "mail server", "mailbox",
		"attachment", "spam filter", "email delivery", "bounce", "undeliverable",
	},
	models.CategoryBackup: {
		"backup", "restore", "recovery", "data loss", "file recovery", "backup failure",
		"tape", "cloud backup", "snapshot", "disaster recovery", "archive",
	},
	models.CategoryPrinter: {
		"printer", "print", "printing", "toner", "ink", "paper jam", "print queue",
		"driver", "scanner", "fax", "multifunction",
	},
	models.CategoryPhone: {
		"phone", "voip", "pbx", "extension", "voicemail", "call", "dial tone",
		"conference", "transfer", "hold music",
	},
	models.CategoryAccess: {
		"access", "login", "password", "account", "permissions", "locked out", "reset",
		"authentication", "authorization", "active directory", "user account",
		"group membership",
	},
}

var categorySkills = map[models.Category][]string{
	models.CategoryHardware: {"hardware_troubleshooting", "desktop_support", "server_maintenance"},
	models.CategorySoftware: {"software_support", "application_troubleshooting", "user_training"},
	models.CategoryNetwork:  {"network_administration", "cisco_networking", "firewall_management"},
	models.CategorySecurity: {"cybersecurity", "incident_response", "malware_removal"},
	models.CategoryEmail:    {"exchange_administration", "email_troubleshooting", "office365"},
	models.CategoryBackup:   {"backup_administration", "data_recovery", "disaster_recovery"},
	models.CategoryPrinter:  {"printer_support", "hardware_troubleshooting"},
	models.CategoryPhone:    {"voip_support", "pbx_administration", "telecommunications"},
	models.CategoryAccess:   {"active_directory", "user_management", "authentication_systems"},
	models.CategoryOther:    {"general_support", "troubleshooting"},
}

var urgentKeywords = []string{"urgent", "critical", "down", "outage", "emergency", "asap", "immediately"}

var baseResolutionMinutes = map[models.Category]int{
	models.CategorySecurity: 60,
	models.CategoryHardware: 180,
	models.CategoryNetwork:  120,
	models.CategorySoftware: 90,
	models.CategoryEmail:    60,
	models.CategoryOther:    120,
}

const defaultResolutionMinutes = 120

var priorityMatrix = map[models.Urgency]map[models.Impact]models.Priority{
	models.UrgencyUrgent: {models.ImpactHigh: models.PriorityCritical, models.ImpactMedium: models.PriorityHigh, models.ImpactLow: models.PriorityHigh},
	models.UrgencyHigh:   {models.ImpactHigh: models.PriorityHigh, models.ImpactMedium: models.PriorityHigh, models.ImpactLow: models.PriorityMedium},
	models.UrgencyMedium: {models.ImpactHigh: models.PriorityMedium, models.ImpactMedium: models.PriorityMedium, models.ImpactLow: models.PriorityLow},
	models.UrgencyLow:    {models.ImpactHigh: models.PriorityMedium, models.ImpactMedium: models.PriorityLow, models.ImpactLow: models.PriorityLow},
}

// PriorityFor looks up the urgency x impact matrix. Unknown pairs are medium.
func PriorityFor(u models.Urgency, i models.Impact) models.Priority {
	if row, ok := priorityMatrix[u]; ok {
		if p, ok := row[i]; ok {
			return p
		}
	}
	return models.PriorityMedium
}

// SkillsFor returns the technician skills usually needed for a category.
func SkillsFor(c models.Category) []string {
	skills, ok := categorySkills[c]
	if !ok {
		skills = categorySkills[models.CategoryOther]
	}
	return append([]string(nil), skills...)
}

// matchKeywords returns the keywords of category found in text, which must
// already be lower case.
func matchKeywords(text string, category models.Category) []string {
	var matched []string
	for _, kw := range categoryKeywords[category] {
		if strings.Contains(text, kw) {
			matched = append(matched, kw)
		}
	}
	return matched
}

// keywordBoost is the confidence added to an AI answer whose category is
// backed by keywords in the text.
func keywordBoost(text string, category models.Category) (float64, []string) {
	keywords := categoryKeywords[category]
	if len(keywords) == 0 {
		return 0, nil
	}
	matched := matchKeywords(text, category)
	ratio := float64(len(matched)) / float64(len(keywords))
	return min(0.2, ratio*0.3), matched
}

func containsAny(text string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(text, kw) {
			return true
		}
	}
	return false
}

func estimateMinutes(category models.Category, urgency models.Urgency) int {
	minutes, ok := baseResolutionMinutes[category]
	if !ok {
		minutes = defaultResolutionMinutes
	}
	switch urgency {
	case models.UrgencyUrgent:
		minutes = int(float64(minutes) * 0.5)
	case models.UrgencyLow:
		minutes = int(float64(minutes) * 1.5)
	}
	return minutes
}
