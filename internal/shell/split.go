// Package shell implements the interactive logviz prompt: it tokenizes
// input lines with POSIX-like quoting and hands the words to a command
// runner.
package shell

import (
	"errors"
	"fmt"
	"strings"
	"unicode"
)

var (
	// ErrUnclosedQuote is returned when a quoted word never closes.
	ErrUnclosedQuote = errors.New("unclosed quote")

	// ErrTrailingEscape is returned when a line ends in a lone backslash.
	ErrTrailingEscape = errors.New("trailing escape character")
)

type quoteState int

const (
	unquoted quoteState = iota
	singleQuoted
	doubleQuoted
)

// Split breaks a line into words:
//   - whitespace separates words outside quotes
//   - single quotes keep everything literally
//   - double quotes keep everything except \" \\ \$ and \`
//   - a backslash outside quotes escapes any character
//   - '' and "" produce an empty word
func Split(line string) ([]string, error) {
	words := []string{}
	var word strings.Builder
	inWord := false
	state := unquoted

	runes := []rune(line)
	for i := 0; i < len(runes); i++ {
		ch := runes[i]

		switch state {
		case singleQuoted:
			if ch == '\'' {
				state = unquoted
			} else {
				word.WriteRune(ch)
			}
			continue

		case doubleQuoted:
			switch ch {
			case '"':
				state = unquoted
			case '\\':
				if i+1 >= len(runes) {
					return nil, ErrTrailingEscape
				}
				i++
				if !strings.ContainsRune("\"\\$`", runes[i]) {
					word.WriteRune('\\')
				}
				word.WriteRune(runes[i])
			default:
				word.WriteRune(ch)
			}
			continue
		}

		switch {
		case ch == '\\':
			if i+1 >= len(runes) {
				return nil, ErrTrailingEscape
			}
			i++
			word.WriteRune(runes[i])
			inWord = true
		case ch == '\'':
			state = singleQuoted
			inWord = true
		case ch == '"':
			state = doubleQuoted
			inWord = true
		case unicode.IsSpace(ch):
			if inWord {
				words = append(words, word.String())
				word.Reset()
				inWord = false
			}
		default:
			word.WriteRune(ch)
			inWord = true
		}
	}

	switch state {
	case singleQuoted:
		return nil, fmt.Errorf("%w: single", ErrUnclosedQuote)
	case doubleQuoted:
		return nil, fmt.Errorf("%w: double", ErrUnclosedQuote)
	}
	if inWord {
		words = append(words, word.String())
	}
	return words, nil
}
