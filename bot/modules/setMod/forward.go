package setMod

import "strings"

//Forward rebuilds the params handed to an option: the target followed by the remaining tokens, joined by single spaces
//and otherwise passed through as typed
func Forward(target string, rest []string) string {
	builder := strings.Builder{}
	builder.WriteString(target)

	for _, token := range rest {
		builder.WriteByte(' ')
		builder.WriteString(token)
	}

	return builder.String()
}
