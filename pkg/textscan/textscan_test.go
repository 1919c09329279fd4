package textscan

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplitLines(t *testing.T) {
	tests := []struct {
		name string
		data string
		want []string
	}{
		{name: "empty", data: "", want: nil},
		{name: "single line without newline", data: "foo: bar", want: []string{"foo: bar"}},
		{name: "trailing newline", data: "a: 1\nb: 2\n", want: []string{"a: 1\n", "b: 2\n"}},
		{name: "crlf", data: "a: 1\r\nb: 2\r\n", want: []string{"a: 1\r\n", "b: 2\r\n"}},
		{name: "blank lines", data: "a: 1\n\nb: 2", want: []string{"a: 1\n", "\n", "b: 2"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SplitLines([]byte(tt.data))
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.data, strings.Join(got, ""))
		})
	}
}

func TestIsDefinitionStart(t *testing.T) {
	tests := []struct {
		line string
		name string
		want bool
	}{
		{"timeout: 30\n", "timeout", true},
		{"timeout:\n", "timeout", true},
		{"timeout:30", "timeout", true},
		{"timeout_ms: 30\n", "timeout", false},
		{"my_timeout: 30\n", "timeout", false},
		{"  timeout: 30\n", "timeout", false},
		{"\ttimeout: 30\n", "timeout", false},
		{"# timeout: 30\n", "timeout", false},
		{"timeout : 30\n", "timeout", false},
		{"timeout: 30\n", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			assert.Equal(t, tt.want, IsDefinitionStart(tt.line, tt.name))
		})
	}
}

func TestIsContinuation(t *testing.T) {
	assert.True(t, IsContinuation("  - a\n"))
	assert.True(t, IsContinuation("\tkey: v\n"))
	assert.False(t, IsContinuation("\n"))
	assert.False(t, IsContinuation("key: v\n"))
	assert.False(t, IsContinuation(""))
}

func TestFindBlock(t *testing.T) {
	lines := SplitLines([]byte(strings.Join([]string{
		"---",
		"app_port: 8080",
		"  - a",
		"  - b",
		"next_key: 1",
		"app_port: 9090",
		"",
	}, "\n")))

	block, ok := FindBlock(lines, "app_port")
	require.True(t, ok)
	assert.Equal(t, Block{Start: 1, End: 3}, block)
	assert.Equal(t, 3, block.Len())
}

func TestFindBlock_ExtendsToEOF(t *testing.T) {
	lines := SplitLines([]byte("a: 1\nusers:\n  - alice\n  - bob"))

	block, ok := FindBlock(lines, "users")
	require.True(t, ok)
	assert.Equal(t, Block{Start: 1, End: 3}, block)
}

func TestFindBlock_BlankLineEndsBlock(t *testing.T) {
	lines := SplitLines([]byte("users:\n  - alice\n\n  - bob\n"))

	block, ok := FindBlock(lines, "users")
	require.True(t, ok)
	assert.Equal(t, Block{Start: 0, End: 1}, block)
}

func TestFindBlock_NotFound(t *testing.T) {
	lines := SplitLines([]byte("parent:\n  users: 1\nusers_extra: 2\n"))

	_, ok := FindBlock(lines, "users")
	assert.False(t, ok)
}
