package textutil

import "strings"

// FileToken reduces value to a lowercase token safe for file names and
// cuts it to limit bytes when limit > 0. Runs of other characters collapse
// to one underscore. Blank or fully stripped input yields "unknown".
func FileToken(value string, limit int) string {
	var b strings.Builder
	pendingSep := false
	for _, r := range strings.ToLower(strings.TrimSpace(value)) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '-' {
			if pendingSep && b.Len() > 0 {
				b.WriteByte('_')
			}
			pendingSep = false
			b.WriteRune(r)
			continue
		}
		pendingSep = true
	}
	out := strings.Trim(b.String(), "-")
	if limit > 0 && len(out) > limit {
		out = strings.TrimRight(out[:limit], "-_")
	}
	if out == "" {
		return "unknown"
	}
	return out
}
