package shell

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplit(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected []string
	}{
		{name: "empty string", input: "", expected: []string{}},
		{name: "only spaces", input: "   \t ", expected: []string{}},
		{name: "plain words", input: "convert 255 --base 16", expected: []string{"convert", "255", "--base", "16"}},
		{name: "extra whitespace", input: "  ticks\t 1  10 ", expected: []string{"ticks", "1", "10"}},
		{name: "double quotes", input: `labels "1 10 100"`, expected: []string{"labels", "1 10 100"}},
		{name: "single quotes keep backslash", input: `x 'a\b'`, expected: []string{"x", `a\b`}},
		{name: "empty quoted words", input: `x "" ''`, expected: []string{"x", "", ""}},
		{name: "adjacent quotes join", input: `pre"mid"'end'`, expected: []string{"premidend"}},
		{name: "escaped space", input: `a\ b c`, expected: []string{"a b", "c"}},
		{name: "escape in double quotes", input: `"say \"hi\""`, expected: []string{`say "hi"`}},
		{name: "non-special escape in double quotes", input: `"a\n"`, expected: []string{`a\n`}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Split(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestSplit_Errors(t *testing.T) {
	_, err := Split(`convert "255`)
	assert.ErrorIs(t, err, ErrUnclosedQuote)

	_, err = Split(`convert '255`)
	assert.ErrorIs(t, err, ErrUnclosedQuote)

	_, err = Split(`convert 255\`)
	assert.ErrorIs(t, err, ErrTrailingEscape)

	_, err = Split(`"abc\`)
	assert.ErrorIs(t, err, ErrTrailingEscape)
}

func TestShell_Run(t *testing.T) {
	input := strings.Join([]string{
		"# comment",
		"",
		"convert 255 --base 16",
		`labels "1 10"`,
		"fail now",
		`broken "quote`,
		"exit",
		"never reached",
	}, "\n")

	var calls [][]string
	runner := func(_ context.Context, args []string) error {
		calls = append(calls, args)
		if args[0] == "fail" {
			return errors.New("boom")
		}
		return nil
	}

	var out bytes.Buffer
	failed, err := New(strings.NewReader(input), &out, runner, nil).Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 2, failed)
	assert.Equal(t, [][]string{
		{"convert", "255", "--base", "16"},
		{"labels", "1 10"},
		{"fail", "now"},
	}, calls)
	assert.Contains(t, out.String(), "error: boom")
	assert.Contains(t, out.String(), "unclosed quote")
}

func TestShell_StopsAtEOFAndCancel(t *testing.T) {
	var out bytes.Buffer
	failed, err := New(strings.NewReader("x\n"), &out, func(context.Context, []string) error { return nil }, nil).
		Run(context.Background())
	require.NoError(t, err)
	assert.Zero(t, failed)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = New(strings.NewReader("x\n"), &out, func(context.Context, []string) error { return nil }, nil).Run(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}
