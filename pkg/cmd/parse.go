package cmd

import "strings"

// Parse turns prefixed text into an Invocation. The first whitespace-separated
// token after the prefix is lower-cased and becomes the name; the rest are
// arguments. ok is false when the text lacks the prefix or names nothing.
func Parse(prefix, text string) (inv *Invocation, ok bool) {
	if !strings.HasPrefix(text, prefix) {
		return nil, false
	}

	fields := strings.Fields(text[len(prefix):])
	if len(fields) == 0 {
		return nil, false
	}

	return &Invocation{
		Name: strings.ToLower(fields[0]),
		Args: fields[1:],
	}, true
}
