package relevance

import "fmt"

// chain is an ordered pair of MITRE tactics considered a plausible
// attack progression across time.
type chain struct {
	earlier string
	later   string
}

// tacticChains is the static relevance table: a historical event with
// the earlier tactic makes a later event with the paired tactic
// relevant.
var tacticChains = []chain{
	{"Initial Access", "Execution"},
	{"Persistence", "Lateral Movement"},
	{"Credential Access", "Defense Evasion"},
	{"Initial Access", "Lateral Movement"},
	{"Execution", "Command and Control"},
	{"Command and Control", "Exfiltration"},
	{"Privilege Escalation", "Credential Access"},
	{"Credential Access", "Exfiltration"},
	{"Persistence", "Command and Control"},
	{"Execution", "Exfiltration"},
	{"Exfiltration", "Impact"},
}

// relevanceReason labels a (historical, current) tactic pair. Chain
// matches win over the same-tactic fallback; unrelated pairs are
// dropped.
func relevanceReason(historical, current string) (string, bool) {
	for _, c := range tacticChains {
		if c.earlier == historical && c.later == current {
			return fmt.Sprintf("Tactic sequence match: %s → %s", historical, current), true
		}
	}
	if historical != "" && historical == current {
		return "Same tactic category over time", true
	}
	return "", false
}
