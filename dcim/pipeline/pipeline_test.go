package pipeline

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dcimsort/dcim/media"
	"dcimsort/dcim/pattern"
	"dcimsort/dcim/sorting"
)

func testRouter(t *testing.T) *pattern.Router {
	t.Helper()

	supported, err := pattern.NewChain(pattern.ChainSupported, []pattern.IndexedSegment{
		{Index: 0, Segment: pattern.NewMakeModelPattern(nil, true, "", "", "_", pattern.CaseLower, "unknown_device")},
		{Index: 1, Segment: pattern.NewDateTimePattern(nil, "-", "undated", false)},
	})
	require.NoError(t, err)

	fallback, err := pattern.NewChain(pattern.ChainFallback, []pattern.IndexedSegment{
		{Index: 0, Segment: pattern.NewSimpleFileTypePattern(nil)},
	})
	require.NoError(t, err)

	return pattern.NewRouter(supported, fallback)
}

func cameraInfo(t *testing.T, dir, name string, content []byte) *media.Info {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, content, 0o644))
	info, err := os.Stat(path)
	require.NoError(t, err)

	bag := media.NewBag(name)
	bag.Supported = true
	bag.SetAttr(media.AttrMake, "Canon")
	bag.SetAttr(media.AttrModel, "EOS 90D")
	bag.SetTimestamp(time.Date(2023, time.May, 1, 10, 0, 0, 0, time.Local))

	return &media.Info{
		Identity: media.NewIdentity(path, info.Size(), info.ModTime()),
		Bag:      bag,
	}
}

func TestPipeline(t *testing.T) {
	tests := []struct {
		name string
		test func(t *testing.T)
	}{
		{"SortsIntoRoutedDirectories", testPipelineSortsIntoRoutedDirectories},
		{"SimulateLeavesSourcesInPlace", testPipelineSimulateLeavesSourcesInPlace},
		{"IgnorePolicySkipsCollisions", testPipelineIgnorePolicySkipsCollisions},
		{"RenamePolicyKeepsBothFiles", testPipelineRenamePolicyKeepsBothFiles},
		{"RenameNeverClobbersSuffixedFiles", testPipelineRenameNeverClobbersSuffixedFiles},
		{"ExistingOccupantJoinsResolution", testPipelineExistingOccupantJoinsResolution},
		{"IdenticalReplaceIsSkipped", testPipelineIdenticalReplaceIsSkipped},
	}

	for _, tt := range tests {
		t.Run(tt.name, tt.test)
	}
}

func testPipelineSortsIntoRoutedDirectories(t *testing.T) {
	srcDir := t.TempDir()
	tgtDir := t.TempDir()

	files := []*media.Info{
		cameraInfo(t, srcDir, "IMG_0001.jpg", []byte("one")),
		cameraInfo(t, srcDir, "IMG_0002.jpg", []byte("two")),
	}

	ops := sorting.NewFileOps(tgtDir, sorting.OpMove, zerolog.Nop())
	p := New(testRouter(t), sorting.DefaultDuplicateResolution(), ops, 2, zerolog.Nop())

	report, err := p.Run(context.Background(), files)
	require.NoError(t, err)
	assert.Equal(t, 2, report.Total)
	assert.Equal(t, 2, report.Sorted)
	assert.Zero(t, report.Skipped)
	assert.Zero(t, report.Failed)

	assert.FileExists(t, filepath.Join(tgtDir, "canon_eos_90d", "2023-05", "IMG_0001.jpg"))
	assert.FileExists(t, filepath.Join(tgtDir, "canon_eos_90d", "2023-05", "IMG_0002.jpg"))
	assert.NoFileExists(t, files[0].Path)
}

func testPipelineSimulateLeavesSourcesInPlace(t *testing.T) {
	srcDir := t.TempDir()
	tgtDir := t.TempDir()

	files := []*media.Info{cameraInfo(t, srcDir, "IMG_0001.jpg", []byte("one"))}

	ops := sorting.NewFileOps(tgtDir, sorting.OpSimulate, zerolog.Nop())
	p := New(testRouter(t), sorting.DefaultDuplicateResolution(), ops, 1, zerolog.Nop())

	report, err := p.Run(context.Background(), files)
	require.NoError(t, err)
	assert.Equal(t, 1, report.Sorted)

	assert.FileExists(t, files[0].Path)
	_, statErr := os.Stat(filepath.Join(tgtDir, "canon_eos_90d"))
	assert.True(t, os.IsNotExist(statErr))
	assert.Equal(t, []string{filepath.Join(tgtDir, "canon_eos_90d", "2023-05")}, ops.Dirs())
}

func testPipelineIgnorePolicySkipsCollisions(t *testing.T) {
	srcA := t.TempDir()
	srcB := t.TempDir()
	tgtDir := t.TempDir()

	// same filename from two source directories routes to one destination
	files := []*media.Info{
		cameraInfo(t, srcA, "IMG_0001.jpg", []byte("first")),
		cameraInfo(t, srcB, "IMG_0001.jpg", []byte("second")),
	}

	ops := sorting.NewFileOps(tgtDir, sorting.OpCopy, zerolog.Nop())
	p := New(testRouter(t), sorting.DuplicateResolution{Strategy: sorting.StrategyIgnore}, ops, 1, zerolog.Nop())

	report, err := p.Run(context.Background(), files)
	require.NoError(t, err)
	assert.Equal(t, 1, report.Sorted)
	assert.Equal(t, 1, report.Skipped)
	assert.Equal(t, 1, report.Duplicates)

	content, err := os.ReadFile(filepath.Join(tgtDir, "canon_eos_90d", "2023-05", "IMG_0001.jpg"))
	require.NoError(t, err)
	assert.Equal(t, []byte("first"), content, "the first arrival keeps the destination")
}

func testPipelineRenamePolicyKeepsBothFiles(t *testing.T) {
	srcA := t.TempDir()
	srcB := t.TempDir()
	tgtDir := t.TempDir()

	files := []*media.Info{
		cameraInfo(t, srcA, "IMG_0001.jpg", []byte("first")),
		cameraInfo(t, srcB, "IMG_0001.jpg", []byte("a different second")),
	}

	ops := sorting.NewFileOps(tgtDir, sorting.OpCopy, zerolog.Nop())
	policy := sorting.DuplicateResolution{Strategy: sorting.StrategyCompare, Compare: sorting.CompareRename}
	p := New(testRouter(t), policy, ops, 1, zerolog.Nop())

	report, err := p.Run(context.Background(), files)
	require.NoError(t, err)
	assert.Equal(t, 2, report.Sorted)
	assert.Equal(t, 1, report.Renamed)

	dstDir := filepath.Join(tgtDir, "canon_eos_90d", "2023-05")
	assert.FileExists(t, filepath.Join(dstDir, "IMG_0001.jpg"))
	assert.FileExists(t, filepath.Join(dstDir, "IMG_0001.jpg.001"))
}

func testPipelineRenameNeverClobbersSuffixedFiles(t *testing.T) {
	srcDir := t.TempDir()
	tgtDir := t.TempDir()

	// an earlier run already placed the base file and one renamed sibling
	dstDir := filepath.Join(tgtDir, "canon_eos_90d", "2023-05")
	require.NoError(t, os.MkdirAll(dstDir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dstDir, "IMG_0001.jpg"), []byte("base"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dstDir, "IMG_0001.jpg.001"), []byte("keep me"), 0o644))

	files := []*media.Info{cameraInfo(t, srcDir, "IMG_0001.jpg", []byte("incoming"))}

	ops := sorting.NewFileOps(tgtDir, sorting.OpMove, zerolog.Nop())
	policy := sorting.DuplicateResolution{Strategy: sorting.StrategyCompare, Compare: sorting.CompareRename}
	p := New(testRouter(t), policy, ops, 1, zerolog.Nop())

	report, err := p.Run(context.Background(), files)
	require.NoError(t, err)
	assert.Equal(t, 1, report.Sorted)
	assert.Equal(t, 1, report.Renamed)

	content, err := os.ReadFile(filepath.Join(dstDir, "IMG_0001.jpg.001"))
	require.NoError(t, err)
	assert.Equal(t, []byte("keep me"), content, "the occupied suffix must survive the run")

	content, err = os.ReadFile(filepath.Join(dstDir, "IMG_0001.jpg.002"))
	require.NoError(t, err)
	assert.Equal(t, []byte("incoming"), content)
}

func testPipelineExistingOccupantJoinsResolution(t *testing.T) {
	srcDir := t.TempDir()
	tgtDir := t.TempDir()

	// a previous run already placed a file at the destination
	dstDir := filepath.Join(tgtDir, "canon_eos_90d", "2023-05")
	require.NoError(t, os.MkdirAll(dstDir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dstDir, "IMG_0001.jpg"), []byte("old"), 0o644))

	files := []*media.Info{cameraInfo(t, srcDir, "IMG_0001.jpg", []byte("new"))}

	ops := sorting.NewFileOps(tgtDir, sorting.OpCopy, zerolog.Nop())
	p := New(testRouter(t), sorting.DuplicateResolution{Strategy: sorting.StrategyIgnore}, ops, 1, zerolog.Nop())

	report, err := p.Run(context.Background(), files)
	require.NoError(t, err)
	assert.Equal(t, 1, report.Skipped)
	assert.Zero(t, report.Sorted)

	content, err := os.ReadFile(filepath.Join(dstDir, "IMG_0001.jpg"))
	require.NoError(t, err)
	assert.Equal(t, []byte("old"), content, "Ignore leaves the pre-existing occupant untouched")
}

func testPipelineIdenticalReplaceIsSkipped(t *testing.T) {
	srcDir := t.TempDir()
	tgtDir := t.TempDir()

	dstDir := filepath.Join(tgtDir, "canon_eos_90d", "2023-05")
	require.NoError(t, os.MkdirAll(dstDir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dstDir, "IMG_0001.jpg"), []byte("same"), 0o644))

	files := []*media.Info{cameraInfo(t, srcDir, "IMG_0001.jpg", []byte("same"))}

	ops := sorting.NewFileOps(tgtDir, sorting.OpMove, zerolog.Nop())
	policy := sorting.DuplicateResolution{Strategy: sorting.StrategyCompare, Compare: sorting.CompareFavorSource}
	p := New(testRouter(t), policy, ops, 1, zerolog.Nop())

	report, err := p.Run(context.Background(), files)
	require.NoError(t, err)
	assert.Equal(t, 1, report.Skipped)
	assert.Zero(t, report.Sorted)
	assert.FileExists(t, files[0].Path, "the source stays when the destination already holds its content")
}
