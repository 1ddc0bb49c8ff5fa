package numerator

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Format renders a sequence value: PREFIX-YEAR-00042, or PREFIX-00042 when
// the year is not included.
func Format(cfg Config, period time.Time, seq int64) string {
	width := cfg.PadWidth
	if width <= 0 {
		width = 5
	}
	num := fmt.Sprintf("%0*d", width, seq)
	if cfg.IncludeYear {
		return fmt.Sprintf("%s-%d-%s", cfg.Prefix, period.Year(), num)
	}
	return fmt.Sprintf("%s-%s", cfg.Prefix, num)
}

// Parse splits a number produced by Format. Year is 0 when absent.
func Parse(number string) (prefix string, year int, seq int64, err error) {
	parts := strings.Split(number, "-")
	switch len(parts) {
	case 2:
		seq, err = strconv.ParseInt(parts[1], 10, 64)
		return parts[0], 0, seq, err
	case 3:
		if year, err = strconv.Atoi(parts[1]); err != nil {
			return "", 0, 0, fmt.Errorf("invalid year in %q: %w", number, err)
		}
		seq, err = strconv.ParseInt(parts[2], 10, 64)
		return parts[0], year, seq, err
	default:
		return "", 0, 0, fmt.Errorf("invalid document number %q", number)
	}
}
