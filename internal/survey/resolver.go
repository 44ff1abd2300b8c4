package survey

import "strings"

// ResolveGroup matches a semantic group's item-code prefixes against the
// dataset's actual column names. Matching is case-insensitive and
// prefix-based; for each prefix the first matching column in dataset order
// is kept and later matches are ignored. Prefixes with no match are
// skipped. A column already claimed by an earlier prefix is not claimed
// again. Resolving to zero columns is not an error here; the caller
// decides whether that is fatal.
func ResolveGroup(columns []string, prefixes []string) []string {
	resolved := make([]string, 0, len(prefixes))
	seen := make(map[string]struct{}, len(prefixes))
	for _, p := range prefixes {
		lp := strings.ToLower(strings.TrimSpace(p))
		if lp == "" {
			continue
		}
		for _, col := range columns {
			if !strings.HasPrefix(strings.ToLower(col), lp) {
				continue
			}
			if _, dup := seen[col]; dup {
				break
			}
			seen[col] = struct{}{}
			resolved = append(resolved, col)
			break
		}
	}
	return resolved
}
