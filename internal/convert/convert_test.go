// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package convert

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/fileconv/pkg/types"
)

// writeInput creates a file under dir and returns its path.
func writeInput(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

// progressLog collects progress events safely across goroutines.
type progressLog struct {
	mu     sync.Mutex
	events []types.ProgressEvent
}

func (l *progressLog) add(ev types.ProgressEvent) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.events = append(l.events, ev)
}

func (l *progressLog) values(path string) []int {
	l.mu.Lock()
	defer l.mu.Unlock()
	var out []int
	for _, ev := range l.events {
		if ev.FilePath == path {
			out = append(out, ev.Progress)
		}
	}
	return out
}

// writingStrategy writes a small file at the job's output path.
func writingStrategy(progress ...int) StrategyFunc {
	return func(ctx context.Context, job Job, report ProgressFunc) (string, error) {
		for _, p := range progress {
			report(p)
		}
		if err := writeText(ctx, job.OutputPath, "ok"); err != nil {
			return "", err
		}
		return job.OutputPath, nil
	}
}

func TestConvertFile_MissingInput(t *testing.T) {
	dir := t.TempDir()
	outDir := filepath.Join(dir, "out")
	c := New(NewRouter(allFamilies(writingStrategy(100))))

	var log progressLog
	res := c.ConvertFile(context.Background(), types.ConversionRequest{
		InputPath: filepath.Join(dir, "nope.png"),
		OutputDir: outDir,
		Target:    "jpg",
	}, log.add)

	assert.False(t, res.Success)
	assert.Equal(t, types.KindInput, res.Kind)
	assert.Contains(t, res.Error, "input file not found")
	assert.NoDirExists(t, outDir)
	assert.Empty(t, log.events)
}

func TestConvertFile_DirectoryInput(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(dir, "folder.png"), 0o755))
	c := New(NewRouter(allFamilies(writingStrategy(100))))

	res := c.ConvertFile(context.Background(), types.ConversionRequest{
		InputPath: filepath.Join(dir, "folder.png"),
		OutputDir: filepath.Join(dir, "out"),
		Target:    "jpg",
	}, nil)
	assert.Equal(t, types.KindInput, res.Kind)
}

func TestConvertFile_RejectedLeavesNoTrace(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		target types.Format
		kind   types.ErrorKind
	}{
		{"unsupported pair", "notes.txt", "pdf", types.KindUnsupportedConversion},
		{"unknown input", "data.xyz", "png", types.KindUnsupportedInput},
		{"audio", "song.mp3", "wav", types.KindNotImplemented},
		{"video", "clip.mp4", "avi", types.KindNotImplemented},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			in := writeInput(t, dir, tt.input, "data")
			outDir := filepath.Join(dir, "out")
			c := New(NewRouter(allFamilies(writingStrategy(100))))

			var log progressLog
			res := c.ConvertFile(context.Background(), types.ConversionRequest{
				InputPath: in, OutputDir: outDir, Target: tt.target,
			}, log.add)

			assert.False(t, res.Success)
			assert.Equal(t, tt.kind, res.Kind)
			assert.NotEmpty(t, res.Error)
			assert.NoDirExists(t, outDir)
			assert.Empty(t, log.events)
		})
	}
}

func TestConvertFile_CreatesOutputDir(t *testing.T) {
	dir := t.TempDir()
	in := writeInput(t, dir, "table.csv", "a,b\n1,2\n")
	outDir := filepath.Join(dir, "deep", "nested", "out")
	c := New(NewRouter(allFamilies(writingStrategy(50))))

	res := c.ConvertFile(context.Background(), types.ConversionRequest{
		InputPath: in, OutputDir: outDir, Target: "json",
	}, nil)

	require.True(t, res.Success, res.Error)
	assert.Equal(t, filepath.Join(outDir, "table.json"), res.OutputPath)
	assert.FileExists(t, res.OutputPath)
}

func TestConvertFile_OutputDirIsFile(t *testing.T) {
	dir := t.TempDir()
	in := writeInput(t, dir, "table.csv", "a\n1\n")
	blocker := writeInput(t, dir, "blocker", "x")
	c := New(NewRouter(allFamilies(writingStrategy(50))))

	res := c.ConvertFile(context.Background(), types.ConversionRequest{
		InputPath: in, OutputDir: filepath.Join(blocker, "out"), Target: "json",
	}, nil)
	assert.False(t, res.Success)
	assert.Equal(t, types.KindOutputDir, res.Kind)
}

func TestConvertFile_EmptyOutputDir(t *testing.T) {
	dir := t.TempDir()
	in := writeInput(t, dir, "table.csv", "a\n1\n")
	c := New(NewRouter(allFamilies(writingStrategy(50))))

	res := c.ConvertFile(context.Background(), types.ConversionRequest{InputPath: in, Target: "json"}, nil)
	assert.Equal(t, types.KindOutputDir, res.Kind)
}

func TestConvertFile_Progress(t *testing.T) {
	tests := []struct {
		name     string
		strategy Strategy
		success  bool
		want     []int
	}{
		{
			name:     "normal schedule",
			strategy: writingStrategy(10, 50, 100),
			success:  true,
			want:     []int{10, 50, 100},
		},
		{
			name:     "missing final 100 is added",
			strategy: writingStrategy(30, 60),
			success:  true,
			want:     []int{30, 60, 100},
		},
		{
			name:     "regressions and out of range are clamped",
			strategy: writingStrategy(-5, 40, 20, 40, 150),
			success:  true,
			want:     []int{0, 40, 100},
		},
		{
			name: "failure still ends at 100",
			strategy: StrategyFunc(func(_ context.Context, _ Job, report ProgressFunc) (string, error) {
				report(20)
				return "", errors.New("corrupt input")
			}),
			want: []int{20, 100},
		},
		{
			name: "panic still ends at 100",
			strategy: StrategyFunc(func(_ context.Context, _ Job, report ProgressFunc) (string, error) {
				report(20)
				panic("boom")
			}),
			want: []int{20, 100},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			in := writeInput(t, dir, "doc.md", "# hi")
			c := New(NewRouter(allFamilies(tt.strategy)))

			var log progressLog
			res := c.ConvertFile(context.Background(), types.ConversionRequest{
				InputPath: in, OutputDir: filepath.Join(dir, "out"), Target: "html",
			}, log.add)

			assert.Equal(t, tt.success, res.Success)
			assert.Equal(t, tt.want, log.values(in))
			for _, ev := range log.events {
				assert.Equal(t, in, ev.FilePath)
			}
		})
	}
}

func TestConvertFile_Overwrites(t *testing.T) {
	dir := t.TempDir()
	in := writeInput(t, dir, "doc.md", "# hi")
	outDir := filepath.Join(dir, "out")
	existing := writeInput(t, outDir, "doc.html", "old")

	c := New(NewRouter(allFamilies(writingStrategy(100))))
	res := c.ConvertFile(context.Background(), types.ConversionRequest{InputPath: in, OutputDir: outDir, Target: "html"}, nil)
	require.True(t, res.Success, res.Error)

	data, err := os.ReadFile(existing)
	require.NoError(t, err)
	assert.Equal(t, "ok", string(data))
}

func TestConvertFile_RelativePathsResolveToAbsolute(t *testing.T) {
	dir := t.TempDir()
	writeInput(t, dir, "notes.md", "# hi")
	t.Chdir(dir)

	c := New(NewRouter(allFamilies(writingStrategy(50))))
	var log progressLog
	res := c.ConvertFile(context.Background(), types.ConversionRequest{InputPath: "notes.md", OutputDir: "out", Target: "html"}, log.add)
	require.True(t, res.Success, res.Error)

	assert.True(t, filepath.IsAbs(res.OutputPath), res.OutputPath)
	assert.Equal(t, filepath.Join("out", "notes.html"), filepath.Join(filepath.Base(filepath.Dir(res.OutputPath)), filepath.Base(res.OutputPath)))
	assert.FileExists(t, filepath.Join(dir, "out", "notes.html"))
	assert.Equal(t, []int{50, 100}, log.values("notes.md"))
}

func TestConvertFile_CanceledContext(t *testing.T) {
	dir := t.TempDir()
	in := writeInput(t, dir, "doc.md", "# hi")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	c := New(NewRouter(allFamilies(writingStrategy(100))))
	res := c.ConvertFile(ctx, types.ConversionRequest{InputPath: in, OutputDir: filepath.Join(dir, "out"), Target: "html"}, nil)
	assert.False(t, res.Success)
	assert.Equal(t, types.KindCanceled, res.Kind)
}

func TestSupportedTargets(t *testing.T) {
	c := NewDefault(types.DefaultConfig(), nil)
	assert.ElementsMatch(t, []types.Format{"docx", "txt"}, c.SupportedTargets("PDF"))
	assert.Empty(t, c.SupportedTargets("mp3"))
	assert.Empty(t, c.SupportedTargets("xyz"))
}

func TestConvertBatch(t *testing.T) {
	for _, jobs := range []int{1, 4} {
		t.Run(fmt.Sprintf("jobs=%d", jobs), func(t *testing.T) {
			dir := t.TempDir()
			outDir := filepath.Join(dir, "out")
			var reqs []types.ConversionRequest
			for i := range 6 {
				in := writeInput(t, dir, fmt.Sprintf("f%d.md", i), "# x")
				reqs = append(reqs, types.ConversionRequest{InputPath: in, OutputDir: outDir, Target: "html"})
			}
			reqs = append(reqs, types.ConversionRequest{InputPath: filepath.Join(dir, "missing.md"), OutputDir: outDir, Target: "html"})

			c := New(NewRouter(allFamilies(writingStrategy(50))))
			var log progressLog
			var mu sync.Mutex
			var seen []int
			batch := c.ConvertBatch(context.Background(), reqs, jobs, log.add, func(i int, _ types.ConversionResult) {
				mu.Lock()
				seen = append(seen, i)
				mu.Unlock()
			})

			assert.Equal(t, 6, batch.Converted)
			assert.Equal(t, 1, batch.Failed)
			assert.Equal(t, 7, batch.Total())
			assert.True(t, batch.HasFailures())
			require.Len(t, batch.Results, 7)
			for i := range 6 {
				assert.True(t, batch.Results[i].Success)
				assert.Equal(t, filepath.Join(outDir, fmt.Sprintf("f%d.html", i)), batch.Results[i].OutputPath)
				assert.Equal(t, []int{50, 100}, log.values(reqs[i].InputPath))
			}
			assert.Equal(t, types.KindInput, batch.Results[6].Kind)

			if jobs == 1 {
				assert.Equal(t, []int{0, 1, 2, 3, 4, 5, 6}, seen)
			} else {
				sort.Ints(seen)
				assert.Equal(t, []int{0, 1, 2, 3, 4, 5, 6}, seen)
			}
		})
	}
}

func TestConvertBatch_Canceled(t *testing.T) {
	dir := t.TempDir()
	in := writeInput(t, dir, "a.md", "# x")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	c := New(NewRouter(allFamilies(writingStrategy(50))))
	batch := c.ConvertBatch(ctx, []types.ConversionRequest{{InputPath: in, OutputDir: dir, Target: "html"}}, 1, nil, nil)
	assert.Equal(t, 1, batch.Failed)
	assert.Equal(t, types.KindCanceled, batch.Results[0].Kind)
}
