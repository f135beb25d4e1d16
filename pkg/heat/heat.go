// Package heat normalizes the popularity values trending sources report.
// Sources mix plain integers with suffixed strings like "1100.9万", "56.3w"
// or "5k", sometimes with thousands separators mixed in.
package heat

import (
	"log/slog"
	"strconv"
	"strings"
)

// Parse converts a raw heat string into a non-negative integer. It never
// fails: any value it cannot interpret becomes 0, with a logged warning.
//
// Recognized unit markers are 万/w (x10000) and 千/k (x1000). The numeric
// part may be fractional; the scaled value is truncated to an integer.
func Parse(raw string) int {
	if raw == "" {
		return 0
	}

	s := strings.ToLower(strings.TrimSpace(raw))
	s = strings.ReplaceAll(s, " ", "")
	s = strings.ReplaceAll(s, ",", "")
	if s == "" {
		return 0
	}

	multiplier := 1.0
	switch {
	case strings.ContainsAny(s, "万w"):
		s = strings.NewReplacer("万", "", "w", "").Replace(s)
		multiplier = 10000
	case strings.ContainsAny(s, "千k"):
		s = strings.NewReplacer("千", "", "k", "").Replace(s)
		multiplier = 1000
	}

	f, err := strconv.ParseFloat(s, 64)
	if err != nil || f < 0 {
		slog.Warn("unparseable heat value", "raw", raw)
		return 0
	}

	return int(f * multiplier)
}
