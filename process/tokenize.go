package process

import (
	"strings"

	"github.com/geb0598/coj-go/errkind"
)

// tokenize is a naive shell-style splitter: whitespace-separated
// tokens, with single- or double-quoted runs kept intact and
// unquoted. It does not implement variable expansion, globbing, or any
// other shell feature; callers needing those should invoke a shell
// explicitly (e.g. "sh -c ...") as the command.
func tokenize(command string) ([]string, *errkind.Error) {
	var tokens []string
	var cur strings.Builder
	var quote rune
	inToken := false

	flush := func() {
		if inToken {
			tokens = append(tokens, cur.String())
			cur.Reset()
			inToken = false
		}
	}

	for _, r := range command {
		switch {
		case quote != 0:
			if r == quote {
				quote = 0
			} else {
				cur.WriteRune(r)
			}
		case r == '\'' || r == '"':
			quote = r
			inToken = true
		case r == ' ' || r == '\t' || r == '\n':
			flush()
		default:
			inToken = true
			cur.WriteRune(r)
		}
	}
	if quote != 0 {
		return nil, errkind.NewInvalidArg("unterminated quote in command %q", command)
	}
	flush()

	if len(tokens) == 0 {
		return nil, errkind.NewInvalidArg("command must not be empty")
	}
	return tokens, errkind.NewOk()
}
