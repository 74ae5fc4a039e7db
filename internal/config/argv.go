package config

import (
	"fmt"
	"strings"
	"unicode"
)

// splitCommand tokenizes a command line with shell-like quoting and backslash escapes.
// A command starting with '#' is treated as disabled and yields no argv.
func splitCommand(input string) ([]string, error) {
	input = strings.TrimSpace(input)
	if input == "" || strings.HasPrefix(input, "#") {
		return nil, nil
	}

	var (
		argv    []string
		current strings.Builder
		inToken bool
		quote   rune
		escaped bool
	)

	for _, r := range input {
		if escaped {
			current.WriteRune(r)
			escaped = false
			continue
		}
		switch {
		case r == '\\':
			escaped, inToken = true, true
		case quote != 0 && r == quote:
			quote = 0
		case quote != 0:
			current.WriteRune(r)
		case r == '\'' || r == '"':
			quote, inToken = r, true
		case unicode.IsSpace(r):
			if inToken {
				argv = append(argv, current.String())
				current.Reset()
				inToken = false
			}
		default:
			current.WriteRune(r)
			inToken = true
		}
	}

	switch {
	case escaped:
		return nil, fmt.Errorf("unterminated escape sequence in command: %q", input)
	case quote != 0:
		return nil, fmt.Errorf("unterminated quote in command: %q", input)
	}
	if inToken {
		argv = append(argv, current.String())
	}
	return argv, nil
}
