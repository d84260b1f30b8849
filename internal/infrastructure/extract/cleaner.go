package extract

import (
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// defaultRemovePatterns strip common article noise, line-scoped and
// case-insensitive. `.` never crosses a newline, so each pattern trims from
// its anchor phrase to the end of that line only.
var defaultRemovePatterns = []string{
	`Read also:.*`,
	`See also:.*`,
	`Related:.*`,
	`Subscribe.*`,
	`Sign up.*`,
	`More information.*`,
	`\[photo\]|\[video\]|\[gallery\]`,
	`Share on.*`,
	`Share this.*`,
	`Follow us.*`,
	`You may also like.*`,
	`Newsletter.*`,
	`Keep reading.*`,
	`Filed under:.*`,
}

// Cleaner applies the deterministic, idempotent normalization pass.
type Cleaner struct {
	patterns []*regexp.Regexp
	maxGaps  int
	gapExpr  *regexp.Regexp
}

// NewCleaner compiles the phrase patterns; an empty list uses the defaults
// and maxGaps <= 0 means two consecutive newlines.
func NewCleaner(removePatterns []string, maxGaps int) *Cleaner {
	raw := removePatterns
	if len(raw) == 0 {
		raw = defaultRemovePatterns
	}

	c := &Cleaner{maxGaps: maxGaps}
	if c.maxGaps <= 0 {
		c.maxGaps = 2
	}
	c.gapExpr = regexp.MustCompile(`\n{` + strconv.Itoa(c.maxGaps+1) + `,}`)

	for _, p := range raw {
		expr, err := regexp.Compile(`(?im)` + p)
		if err != nil {
			continue
		}
		c.patterns = append(c.patterns, expr)
	}

	return c
}

// Clean normalizes Unicode, removes boilerplate phrases, collapses
// whitespace, drops near-empty non-alphanumeric lines, and caps blank-line
// runs. Clean(Clean(x)) == Clean(x).
func (c *Cleaner) Clean(text string) string {
	if text == "" {
		return ""
	}

	text = norm.NFKC.String(text)

	for _, expr := range c.patterns {
		text = expr.ReplaceAllString(text, "")
	}

	var lines []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.Join(strings.Fields(line), " ")
		if line == "" {
			lines = append(lines, "")
			continue
		}
		if len([]rune(line)) < 3 && !hasAlphanumeric(line) {
			continue
		}
		lines = append(lines, line)
	}

	text = strings.Join(lines, "\n")
	text = c.gapExpr.ReplaceAllString(text, strings.Repeat("\n", c.maxGaps))
	return strings.TrimSpace(text)
}

func hasAlphanumeric(s string) bool {
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return true
		}
	}
	return false
}
