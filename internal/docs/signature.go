package docs

import (
	"strings"
)

// ParamToken is one parameter split out of a rendered parameter list.
// Type holds only the characters outside generic brackets; TypeFull keeps them.
type ParamToken struct {
	Name     string
	Type     string
	TypeFull string
}

var paramListCleaner = strings.NewReplacer(
	"\r", "",
	"\n", "",
	"\u200b", "",
	"\u00a0", " ",
)

// SplitParameters splits a parenthesized parameter list such as
// "(Map<String, Integer> values, int count)" into one token per parameter.
// Commas inside generic brackets do not split.
func SplitParameters(list string) []ParamToken {
	list = strings.TrimSpace(list)
	list = strings.TrimPrefix(list, "(")
	list = strings.TrimSuffix(list, ")")
	list = strings.TrimSpace(paramListCleaner.Replace(list))
	if list == "" {
		return nil
	}

	var (
		tokens []ParamToken
		basic  strings.Builder
		full   strings.Builder
		depth  int
	)

	flush := func() {
		tokens = append(tokens, finishToken(basic.String(), full.String()))
		basic.Reset()
		full.Reset()
	}

	for _, r := range list {
		switch {
		case r == '<':
			depth++
			full.WriteRune(r)
		case r == '>':
			depth--
			full.WriteRune(r)
		case r == ',' && depth == 0:
			flush()
		default:
			if depth == 0 {
				basic.WriteRune(r)
			}
			full.WriteRune(r)
		}
	}
	flush()

	return tokens
}

// finishToken peels the trailing identifier off the accumulated buffers.
func finishToken(basic, full string) ParamToken {
	name := full
	if i := strings.LastIndexByte(full, ' '); i >= 0 {
		name = full[i+1:]
	}

	return ParamToken{
		Name:     name,
		Type:     strings.TrimSpace(trimTail(basic, len(name))),
		TypeFull: strings.TrimSpace(trimTail(full, len(name))),
	}
}

func trimTail(s string, n int) string {
	if n >= len(s) {
		return ""
	}
	return s[:len(s)-n]
}

func typeFromToken(tok ParamToken) Type {
	return normalizeType(tok.Type, tok.TypeFull)
}
