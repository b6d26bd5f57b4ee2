package prompt

import (
	"io"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFixed(t *testing.T) {
	t.Parallel()

	assert.True(t, Fixed(true).Confirm("anything"))
	assert.False(t, Fixed(false).Confirm("anything"))
}

func TestTerminal_NonTerminalInputIsNo(t *testing.T) {
	t.Parallel()

	r, w, err := os.Pipe()
	require.NoError(t, err)
	defer r.Close()
	defer w.Close()

	term := &Terminal{In: r, Out: io.Discard}
	assert.False(t, term.Confirm("proceed?"))
}

func TestTerminal_TypeAheadSurvivesAcrossAnswers(t *testing.T) {
	t.Parallel()

	r, w, err := os.Pipe()
	require.NoError(t, err)
	defer r.Close()

	_, err = w.WriteString("y\nn\nyes\n")
	require.NoError(t, err)
	require.NoError(t, w.Close())

	// The whole pipe content may land in the buffer on the first read; the
	// answers after it must still come back one per question.
	term := &Terminal{In: r, Out: io.Discard}
	assert.True(t, term.readAnswer())
	assert.False(t, term.readAnswer())
	assert.True(t, term.readAnswer())
	assert.False(t, term.readAnswer(), "exhausted input defaults to no")
}

func TestTerminal_AnswerParsing(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input string
		want  bool
	}{
		{"y\n", true},
		{"Y\n", true},
		{"yes\n", true},
		{"YES\n", true},
		{"  y  \n", true},
		{"n\n", false},
		{"\n", false},
		{"maybe\n", false},
	}
	for _, tc := range tests {
		r, w, err := os.Pipe()
		require.NoError(t, err)
		_, err = w.WriteString(tc.input)
		require.NoError(t, err)
		require.NoError(t, w.Close())

		term := &Terminal{In: r, Out: io.Discard}
		assert.Equal(t, tc.want, term.readAnswer(), "input %q", tc.input)
		r.Close()
	}
}
