// internal/domain/report/recipients.go
package report

import "strings"

// NormalizeRecipients trims whitespace, drops empty entries and removes
// duplicates while preserving first-seen order. The result may be empty;
// callers decide whether that is an error for their operation.
func NormalizeRecipients(raw []string) []string {
	normalized := make([]string, 0, len(raw))
	seen := make(map[string]struct{}, len(raw))
	for _, addr := range raw {
		addr = strings.TrimSpace(addr)
		if addr == "" {
			continue
		}
		if _, ok := seen[addr]; ok {
			continue
		}
		seen[addr] = struct{}{}
		normalized = append(normalized, addr)
	}
	return normalized
}
