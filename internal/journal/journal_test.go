// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package journal

import (
	"bytes"
	"context"
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/fileconv/pkg/types"
)

func openStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "nested", "history.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestRecordAndList(t *testing.T) {
	ctx := context.Background()
	s := openStore(t)

	start := time.Now().Add(-2 * time.Second)
	ok := NewEntry(
		types.ConversionRequest{InputPath: "/in/a.png", OutputDir: "/out", Target: "jpg"},
		types.Succeeded("/out/a.jpg"),
		start,
	)
	bad := NewEntry(
		types.ConversionRequest{InputPath: "/in/b.mp3", OutputDir: "/out", Target: "wav"},
		types.Failed(types.KindNotImplemented, "audio conversion is not implemented"),
		start,
	)

	first, err := s.Record(ctx, ok)
	require.NoError(t, err)
	assert.NotEmpty(t, first.ID)
	second, err := s.Record(ctx, bad)
	require.NoError(t, err)
	assert.NotEqual(t, first.ID, second.ID)

	entries, err := s.List(ctx, ListOptions{})
	require.NoError(t, err)
	require.Len(t, entries, 2)

	// Newest first.
	assert.Equal(t, second.ID, entries[0].ID)
	assert.False(t, entries[0].Success)
	assert.Equal(t, types.KindNotImplemented, entries[0].Kind)
	assert.Equal(t, "audio conversion is not implemented", entries[0].Error)

	assert.Equal(t, first.ID, entries[1].ID)
	assert.True(t, entries[1].Success)
	assert.Equal(t, "/out/a.jpg", entries[1].OutputPath)
	assert.Equal(t, types.Format("jpg"), entries[1].Target)
	assert.True(t, entries[1].Time.Equal(ok.Time))
	assert.GreaterOrEqual(t, entries[1].Duration, time.Second)

	failed, err := s.List(ctx, ListOptions{FailedOnly: true})
	require.NoError(t, err)
	require.Len(t, failed, 1)
	assert.Equal(t, second.ID, failed[0].ID)

	limited, err := s.List(ctx, ListOptions{Limit: 1})
	require.NoError(t, err)
	assert.Len(t, limited, 1)

	sum, err := s.Summarize(ctx)
	require.NoError(t, err)
	assert.Equal(t, Summary{Total: 2, Succeeded: 1, Failed: 1}, sum)
}

func TestOpen_Reopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "history.db")

	s, err := Open(path)
	require.NoError(t, err)
	_, err = s.Record(ctx, Entry{InputPath: "/a.csv", Target: "json", Success: true, OutputPath: "/a.json"})
	require.NoError(t, err)
	require.NoError(t, s.Close())

	s, err = Open(path)
	require.NoError(t, err)
	defer s.Close()
	entries, err := s.List(ctx, ListOptions{})
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestSummarize_Empty(t *testing.T) {
	sum, err := openStore(t).Summarize(context.Background())
	require.NoError(t, err)
	assert.Equal(t, Summary{}, sum)
}

func TestWrite(t *testing.T) {
	entries := []Entry{
		{ID: "1", Time: time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC), InputPath: "/in/a.png", Target: "jpg", Success: true, OutputPath: "/out/a.jpg"},
		{ID: "2", Time: time.Date(2026, 1, 2, 3, 4, 6, 0, time.UTC), InputPath: "/in/b.txt", Target: "pdf", Error: "unsupported conversion: txt -> pdf", Kind: types.KindUnsupportedConversion},
	}

	t.Run("table", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, Write(&buf, entries, OutputTable))
		lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
		require.Len(t, lines, 3)
		assert.True(t, strings.HasPrefix(lines[0], "TIME"))
		assert.Contains(t, lines[1], "ok")
		assert.Contains(t, lines[1], "/out/a.jpg")
		assert.Contains(t, lines[2], "failed")
		assert.Contains(t, lines[2], "unsupported conversion: txt -> pdf")
	})

	t.Run("json", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, Write(&buf, entries, OutputJSON))
		var got []Entry
		require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
		assert.Equal(t, entries, got)
	})

	t.Run("yaml", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, Write(&buf, entries, OutputYAML))
		var got []map[string]any
		require.NoError(t, yaml.Unmarshal(buf.Bytes(), &got))
		require.Len(t, got, 2)
		assert.Equal(t, "/in/b.txt", got[1]["input_path"])
		assert.Equal(t, "unsupported_conversion", got[1]["kind"])
	})

	t.Run("empty json is an array", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, Write(&buf, nil, OutputJSON))
		assert.Equal(t, "[]\n", buf.String())
	})

	t.Run("unknown", func(t *testing.T) {
		assert.Error(t, Write(&bytes.Buffer{}, entries, "xml"))
	})
}
