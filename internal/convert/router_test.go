// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package convert

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/fileconv/pkg/types"
)

// fakeStrategy records the jobs it receives and returns a canned outcome.
type fakeStrategy struct {
	jobs     []Job
	progress []int
	err      error
	panicVal any
}

func (f *fakeStrategy) Convert(_ context.Context, job Job, progress ProgressFunc) (string, error) {
	f.jobs = append(f.jobs, job)
	if f.panicVal != nil {
		panic(f.panicVal)
	}
	for _, p := range f.progress {
		progress(p)
	}
	if f.err != nil {
		return "", f.err
	}
	return job.OutputPath, nil
}

func allFamilies(s Strategy) map[types.Family]Strategy {
	return map[types.Family]Strategy{
		types.FamilyImage:       s,
		types.FamilyDocument:    s,
		types.FamilySpreadsheet: s,
		types.FamilyPDF:         s,
		types.FamilyText:        s,
	}
}

func TestRouterPlan(t *testing.T) {
	r := NewRouter(allFamilies(&fakeStrategy{}))

	tests := []struct {
		name    string
		req     types.ConversionRequest
		wantErr error
		wantMsg string
		family  types.Family
		output  string
	}{
		{
			name:   "image",
			req:    types.ConversionRequest{InputPath: "/in/photo.PNG", OutputDir: "/out", Target: "JPG"},
			family: types.FamilyImage,
			output: filepath.Join("/out", "photo.jpg"),
		},
		{
			name:   "leading dot target",
			req:    types.ConversionRequest{InputPath: "/in/report.docx", OutputDir: "/out", Target: ".md"},
			family: types.FamilyDocument,
			output: filepath.Join("/out", "report.md"),
		},
		{
			name:    "unknown input",
			req:     types.ConversionRequest{InputPath: "/in/a.xyz", OutputDir: "/out", Target: "png"},
			wantErr: ErrUnsupportedInput,
			wantMsg: "unsupported input format: xyz",
		},
		{
			name:    "no extension",
			req:     types.ConversionRequest{InputPath: "/in/Makefile", OutputDir: "/out", Target: "png"},
			wantErr: ErrUnsupportedInput,
			wantMsg: "unsupported input format: (none)",
		},
		{
			name:    "audio not implemented",
			req:     types.ConversionRequest{InputPath: "/in/song.mp3", OutputDir: "/out", Target: "wav"},
			wantErr: ErrNotImplemented,
			wantMsg: "audio conversion is not implemented",
		},
		{
			name:    "presentation not implemented",
			req:     types.ConversionRequest{InputPath: "/in/deck.pptx", OutputDir: "/out", Target: "pdf"},
			wantErr: ErrNotImplemented,
			wantMsg: "presentation conversion is not implemented",
		},
		{
			name:    "legacy doc not implemented",
			req:     types.ConversionRequest{InputPath: "/in/old.doc", OutputDir: "/out", Target: "txt"},
			wantErr: ErrNotImplemented,
			wantMsg: "doc conversion is not implemented",
		},
		{
			name:    "target outside registry",
			req:     types.ConversionRequest{InputPath: "/in/photo.png", OutputDir: "/out", Target: "docx"},
			wantErr: ErrUnsupportedConversion,
			wantMsg: "unsupported conversion: png -> docx",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			plan, err := r.Plan(tt.req)
			if tt.wantErr != nil {
				require.Error(t, err)
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Equal(t, tt.wantMsg, err.Error())
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.family, plan.Family)
			assert.Equal(t, tt.output, plan.Job.OutputPath)
			assert.Equal(t, tt.req.InputPath, plan.Job.InputPath)
		})
	}
}

func TestRouterPlan_MissingStrategy(t *testing.T) {
	r := NewRouter(map[types.Family]Strategy{types.FamilyImage: &fakeStrategy{}})
	_, err := r.Plan(types.ConversionRequest{InputPath: "a.csv", OutputDir: "/out", Target: "json"})
	require.ErrorIs(t, err, ErrNotImplemented)
	assert.Equal(t, "spreadsheet conversion is not implemented", err.Error())
}

func TestRouterRoute(t *testing.T) {
	ctx := context.Background()

	t.Run("success", func(t *testing.T) {
		s := &fakeStrategy{progress: []int{10, 50, 100}}
		r := NewRouter(allFamilies(s))
		var got []int
		res := r.Route(ctx, types.ConversionRequest{InputPath: "/in/a.csv", OutputDir: "/out", Target: "json"},
			func(p int) { got = append(got, p) })

		assert.True(t, res.Success)
		assert.Equal(t, filepath.Join("/out", "a.json"), res.OutputPath)
		assert.Empty(t, res.Error)
		assert.Equal(t, []int{10, 50, 100}, got)
		require.Len(t, s.jobs, 1)
		assert.Equal(t, types.Format("csv"), s.jobs[0].Source)
		assert.Equal(t, types.Format("json"), s.jobs[0].Target)
	})

	t.Run("strategy error becomes result", func(t *testing.T) {
		s := &fakeStrategy{err: errors.New("bad zip")}
		r := NewRouter(allFamilies(s))
		res := r.Route(ctx, types.ConversionRequest{InputPath: "/in/a.docx", OutputDir: "/out", Target: "txt"}, nil)
		assert.False(t, res.Success)
		assert.Empty(t, res.OutputPath)
		assert.Equal(t, "bad zip", res.Error)
		assert.Equal(t, types.KindStrategy, res.Kind)
	})

	t.Run("panic becomes result", func(t *testing.T) {
		s := &fakeStrategy{panicVal: "index out of range"}
		r := NewRouter(allFamilies(s))
		res := r.Route(ctx, types.ConversionRequest{InputPath: "/in/a.pdf", OutputDir: "/out", Target: "txt"}, nil)
		assert.False(t, res.Success)
		assert.Equal(t, types.KindInternal, res.Kind)
		assert.Contains(t, res.Error, "index out of range")
	})

	t.Run("rejected before strategy", func(t *testing.T) {
		s := &fakeStrategy{}
		r := NewRouter(allFamilies(s))
		res := r.Route(ctx, types.ConversionRequest{InputPath: "/in/a.txt", OutputDir: "/out", Target: "pdf"}, nil)
		assert.False(t, res.Success)
		assert.Equal(t, types.KindUnsupportedConversion, res.Kind)
		assert.Empty(t, s.jobs)
	})
}

func TestRouterExecute_Unplanned(t *testing.T) {
	r := NewRouter(nil)
	res := r.Execute(context.Background(), Plan{}, nil)
	assert.False(t, res.Success)
	assert.Equal(t, types.KindInternal, res.Kind)
}
