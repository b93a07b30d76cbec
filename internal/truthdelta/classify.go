package truthdelta

import (
	"strings"

	"github.com/hydroguard/hydroguard/pkg/types"
)

var (
	criticalWords = []string{"critical", "fault", "failure"}
	warningWords  = []string{"warning", "check", "inspect"}
)

// MachineStatus resolves the most severe diagnostic relevant to component.
// With no relevant diagnostic the machine side is healthy: the monitoring
// system only reports deviations.
func MachineStatus(component string, diags []types.Diagnostic) types.ComponentStatus {
	status := types.ComponentHealthy
	rank := -1
	for _, d := range diags {
		if !relevant(component, d.Component, d.Message) {
			continue
		}
		s := severityStatus(d.Severity)
		if r := statusRank(s); r > rank {
			status, rank = s, r
		}
	}
	return status
}

// HumanStatus resolves the newest log entry relevant to component by
// keyword. No relevant entry means the human side is unknown.
func HumanStatus(component string, logs []types.LogEntry) types.ComponentStatus {
	var newest *types.LogEntry
	for i := range logs {
		e := &logs[i]
		if !relevant(component, e.Component, e.Text) {
			continue
		}
		if newest == nil || !e.Timestamp.Before(newest.Timestamp) {
			newest = e
		}
	}
	if newest == nil {
		return types.ComponentUnknown
	}
	text := strings.ToLower(newest.Text)
	switch {
	case containsAny(text, criticalWords):
		return types.ComponentCritical
	case containsAny(text, warningWords):
		return types.ComponentWarning
	}
	return types.ComponentHealthy
}

// Classify maps the two sides onto the agreement lattice.
func Classify(machine, human types.ComponentStatus) types.Agreement {
	if machine == types.ComponentUnknown || human == types.ComponentUnknown {
		return types.AgreementUnknown
	}
	mIssue := machine != types.ComponentHealthy
	hIssue := human != types.ComponentHealthy
	switch {
	case !mIssue && !hIssue:
		return types.AgreementSyncHealthy
	case mIssue && hIssue:
		return types.AgreementSyncFault
	case mIssue:
		return types.AgreementFalsePositive
	default:
		return types.AgreementFalseNegative
	}
}

func severityStatus(sev string) types.ComponentStatus {
	switch strings.ToUpper(strings.TrimSpace(sev)) {
	case "CRITICAL", "HIGH":
		return types.ComponentCritical
	case "MEDIUM", "WARNING":
		return types.ComponentWarning
	case "UNKNOWN", "OFFLINE":
		return types.ComponentUnknown
	default:
		return types.ComponentHealthy
	}
}

// statusRank orders statuses for picking the most relevant diagnostic. An
// unresolved diagnostic outranks a healthy one but not a flagged one.
func statusRank(s types.ComponentStatus) int {
	switch s {
	case types.ComponentCritical:
		return 3
	case types.ComponentWarning:
		return 2
	case types.ComponentUnknown:
		return 1
	default:
		return 0
	}
}

func relevant(component, tag, text string) bool {
	c := strings.ToLower(strings.TrimSpace(component))
	if c == "" {
		return false
	}
	if strings.EqualFold(strings.TrimSpace(tag), c) {
		return true
	}
	return strings.Contains(strings.ToLower(text), c)
}

func containsAny(s string, words []string) bool {
	for _, w := range words {
		if strings.Contains(s, w) {
			return true
		}
	}
	return false
}
