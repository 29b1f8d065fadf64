package chunker

import "regexp"

var pySymbolPatterns = []*regexp.Regexp{
	regexp.MustCompile(`^\s*(async\s+)?def\s+([A-Za-z_][\w]*)`),
	regexp.MustCompile(`^\s*class\s+([A-Za-z_][\w]*)`),
}

func detectPySymbols(lines []string) []symbolBoundary {
	var out []symbolBoundary
	for i, line := range lines {
		for _, pat := range pySymbolPatterns {
			m := pat.FindStringSubmatch(line)
			if m == nil {
				continue
			}
			name := m[len(m)-1]
			out = append(out, symbolBoundary{StartLine: i + 1, SymbolName: name})
			break
		}
	}
	return out
}
