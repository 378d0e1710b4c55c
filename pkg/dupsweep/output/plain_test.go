package output

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPlainFormatter(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, (&PlainFormatter{}).Format(&buf, sampleResult()))

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	require.Len(t, lines, 6)

	assert.True(t, strings.HasPrefix(lines[0], "DIGEST"))
	assert.Equal(t, strings.Fields(lines[1]), []string{"5d41402abc4b2a76b9719d911017c592", "5", "B", "/data/a.txt"})
	assert.Equal(t, strings.Fields(lines[5]), []string{"0f343b0931126a20f133d67c2b018a3b", "1.0", "KiB", "/data/sub/y.bin"})

	// Columns are aligned.
	pathCol := strings.Index(lines[1], "/data/a.txt")
	assert.Equal(t, pathCol, strings.Index(lines[3], "/data/x.bin"))
	assert.NotContains(t, buf.String(), "\x1b[")
}

func TestPlainFormatter_Empty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, (&PlainFormatter{}).Format(&buf, &Result{}))
	assert.Equal(t, "DIGEST SIZE PATH\n", buf.String())
}
