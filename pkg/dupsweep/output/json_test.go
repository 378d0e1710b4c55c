package output

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJSONFormatter_SingleLine(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, (&JSONFormatter{}).Format(&buf, sampleResult()))

	out := buf.String()
	assert.Equal(t, 1, strings.Count(out, "\n"))
	assert.True(t, strings.HasSuffix(out, "\n"))

	var got map[string][]string
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	assert.Equal(t, sampleResult().Listing(), got)
}

func TestJSONFormatter_ExactOutput(t *testing.T) {
	res := &Result{Groups: []Group{
		{Digest: "5d41402abc4b2a76b9719d911017c592", Paths: []string{"a.txt", "b.txt"}},
	}}

	var buf bytes.Buffer
	require.NoError(t, (&JSONFormatter{}).Format(&buf, res))
	assert.Equal(t, `{"5d41402abc4b2a76b9719d911017c592":["a.txt","b.txt"]}`+"\n", buf.String())
}

func TestJSONFormatter_Empty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, (&JSONFormatter{}).Format(&buf, &Result{}))
	assert.Equal(t, "{}\n", buf.String())
}

func TestJSONFormatter_NoHTMLEscaping(t *testing.T) {
	res := &Result{Groups: []Group{{Digest: "ab", Paths: []string{"<a>&b", "c"}}}}

	var buf bytes.Buffer
	require.NoError(t, (&JSONFormatter{}).Format(&buf, res))
	assert.Contains(t, buf.String(), `"<a>&b"`)
}

func TestJSONLFormatter(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, (&JSONLFormatter{}).Format(&buf, sampleResult()))

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	require.Len(t, lines, 2)

	var first Group
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &first))
	assert.Equal(t, sampleResult().Groups[0], first)
}
