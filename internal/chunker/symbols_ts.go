package chunker

import "regexp"

// TS/JS symbol starts: function/class declarations plus exported consts
// assigned to an arrow function. This is a heuristic, not a real parser —
// it is deliberately approximate and falls through to the sliding window
// for anything it misses.
var tsSymbolPatterns = []*regexp.Regexp{
	regexp.MustCompile(`^\s*(export\s+)?(default\s+)?(async\s+)?function\s*\*?\s+([A-Za-z_$][\w$]*)`),
	regexp.MustCompile(`^\s*(export\s+)?(default\s+)?(abstract\s+)?class\s+([A-Za-z_$][\w$]*)`),
	regexp.MustCompile(`^\s*export\s+(const|let)\s+([A-Za-z_$][\w$]*)\s*(:[^=]+)?=\s*(async\s*)?\([^)]*\)\s*(:[^=]+)?=>`),
	regexp.MustCompile(`^\s*export\s+(const|let)\s+([A-Za-z_$][\w$]*)\s*=\s*(async\s+)?function`),
}

func detectTSSymbols(lines []string) []symbolBoundary {
	var out []symbolBoundary
	for i, line := range lines {
		for _, pat := range tsSymbolPatterns {
			m := pat.FindStringSubmatch(line)
			if m == nil {
				continue
			}
			name := m[len(m)-1]
			// the arrow/function-const patterns capture the symbol name
			// in an earlier group than the last; prefer the non-empty
			// identifier-looking group closest to the end.
			for j := len(m) - 1; j >= 1; j-- {
				if isIdentifier(m[j]) {
					name = m[j]
					break
				}
			}
			out = append(out, symbolBoundary{StartLine: i + 1, SymbolName: name})
			break
		}
	}
	return out
}

func isIdentifier(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		if i == 0 && !(r == '_' || r == '$' || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')) {
			return false
		}
		if i > 0 && !(r == '_' || r == '$' || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9')) {
			return false
		}
	}
	return true
}
