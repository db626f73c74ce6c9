package commandMod

import (
	"strings"
	"unicode"
)

//SplitParams splits text on whitespace. With max > 0 the max-th param holds the remainder of the line with its inner
//spacing untouched, which is how free-form arguments reach a command without being re-quoted
func SplitParams(text string, max int) []string {
	params := make([]string, 0)
	text = strings.TrimRightFunc(text, unicode.IsSpace)

	for {
		text = strings.TrimLeftFunc(text, unicode.IsSpace)
		if text == "" {
			return params
		}

		if max > 0 && len(params) == max-1 {
			return append(params, text)
		}

		end := strings.IndexFunc(text, unicode.IsSpace)
		if end == -1 {
			return append(params, text)
		}

		params = append(params, text[:end])
		text = text[end:]
	}
}

//SplitCommand separates the command word from the rest of the line
func SplitCommand(text string) (name string, rest string) {
	parts := SplitParams(text, 2)
	switch len(parts) {
	case 0:
		return "", ""
	case 1:
		return parts[0], ""
	default:
		return parts[0], parts[1]
	}
}
