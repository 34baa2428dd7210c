// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package export

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeranaias/gpterm/internal/storage"
)

var fixedNow = time.Date(2025, 3, 4, 5, 6, 7, 0, time.UTC)

func sampleConversation() *storage.StoredConversation {
	return &storage.StoredConversation{
		Model:     "gpt-4",
		MaxTokens: 500,
		Messages: []storage.StoredMessage{
			{Role: "system", Content: "You are a helpful assistant."},
			{Role: "user", Content: "Hello world in Go?"},
			{Role: "assistant", Content: "```go\nfmt.Println(\"hi\")\n```"},
		},
	}
}

func testOptions(dir string) *Options {
	return &Options{OutputDir: dir, IncludeMetadata: true, Now: func() time.Time { return fixedNow }}
}

func TestMarkdownExport(t *testing.T) {
	opts := testOptions(t.TempDir())
	out, err := NewMarkdownExporter(opts).Export(prepare(sampleConversation(), fixedNow))
	require.NoError(t, err)

	md := string(out)
	assert.True(t, strings.HasPrefix(md, "---\ntitle: Hello world in Go?\nmodel: gpt-4\n"))
	assert.Contains(t, md, "# Hello world in Go?\n")
	assert.Contains(t, md, "- **System prompt**: You are a helpful assistant.")
	assert.Contains(t, md, "### You\n\nHello world in Go?")
	assert.Contains(t, md, "### GPT\n\n```go\nfmt.Println(\"hi\")\n```")
	assert.Contains(t, md, "March 4, 2025")
	assert.NotContains(t, md, "### System")
}

func TestMarkdownExport_WithoutMetadata(t *testing.T) {
	opts := testOptions(t.TempDir())
	opts.IncludeMetadata = false
	out, err := NewMarkdownExporter(opts).Export(prepare(sampleConversation(), fixedNow))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(out), "# Hello world in Go?"))
	assert.NotContains(t, string(out), "Session Information")
}

func TestExportRejectsEmpty(t *testing.T) {
	empty := &storage.StoredConversation{}
	_, err := NewMarkdownExporter(nil).Export(empty)
	assert.Error(t, err)
	_, err = NewJSONExporter().Export(empty)
	assert.Error(t, err)
	_, err = NewJSONExporter().Export(nil)
	assert.Error(t, err)
}

func TestExportToFile_JSON(t *testing.T) {
	dir := t.TempDir()
	conv := sampleConversation()

	path, err := ExportToFile(conv, NewJSONExporter(), testOptions(dir))
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "conversation_Hello_world_in_Go-_20250304_050607.json"), path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var got storage.StoredConversation
	require.NoError(t, json.Unmarshal(data, &got))
	assert.Equal(t, "gpt-4", got.Model)
	assert.Len(t, got.Messages, 3)
	assert.Equal(t, fixedNow, got.CreatedAt.UTC())

	// the caller's value is left alone
	assert.Empty(t, conv.Summary)
	assert.True(t, conv.CreatedAt.IsZero())
}

func TestForFormat(t *testing.T) {
	for _, name := range []string{"", "md", "Markdown"} {
		e, err := ForFormat(name, nil)
		require.NoError(t, err)
		assert.Equal(t, ".md", e.FileExtension())
	}

	e, err := ForFormat("json", nil)
	require.NoError(t, err)
	assert.Equal(t, ".json", e.FileExtension())

	_, err = ForFormat("html", nil)
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
}

func TestSanitizeFilename(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"", "conversation"},
		{"a/b:c", "a-b-c"},
		{"two words", "two_words"},
		{strings.Repeat("x", 80), strings.Repeat("x", 50)},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, sanitizeFilename(tt.in))
	}
}

func TestEscapeYAML(t *testing.T) {
	assert.Equal(t, "plain", escapeYAML("plain"))
	assert.Equal(t, `"a: b"`, escapeYAML("a: b"))
	assert.Equal(t, `"line\nnext"`, escapeYAML("line\nnext"))
}
