package generator

import (
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

var strict = bluemonday.StrictPolicy()

// Clean strips markup and wrapping quotes that models occasionally add around
// the joke.
func Clean(text string) string {
	text = strict.Sanitize(text)
	text = html.UnescapeString(text)
	text = strings.TrimSpace(text)

	for _, q := range [][2]string{{`"`, `"`}, {"“", "”"}, {"'", "'"}} {
		if len(text) < len(q[0])+len(q[1]) || !strings.HasPrefix(text, q[0]) || !strings.HasSuffix(text, q[1]) {
			continue
		}
		inner := text[len(q[0]) : len(text)-len(q[1])]
		// Leave quoted dialogue such as `"Hi," he said. "Bye"` alone.
		if strings.Contains(inner, q[0]) || strings.Contains(inner, q[1]) {
			continue
		}
		text = strings.TrimSpace(inner)
		break
	}

	return text
}
