// Public domain.

package rlprog

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/soniakeys/removelines/internal/rlfilter"
	"github.com/soniakeys/removelines/internal/rlfits"
	"github.com/soniakeys/removelines/internal/rlhist"
)

// writeLine writes an xylist of 100 spread sources and a line of 20 at
// x = 10.5.
func writeLine(t *testing.T) string {
	t.Helper()
	var x, y []float64
	for i := 0; i < 120; i++ {
		if i < 100 {
			x = append(x, 12+.5*float64(i))
		} else {
			x = append(x, 10.5)
		}
		y = append(y, .4*float64(i))
	}
	u, err := rlfits.NewBinTable([]rlfits.ColumnSpec{{Name: "XIMAGE", Format: "D"}, {Name: "Y", Format: "D"}}, len(x))
	require.NoError(t, err)
	tb, err := u.Table()
	require.NoError(t, err)
	require.NoError(t, tb.SetColumn("XIMAGE", x))
	require.NoError(t, tb.SetColumn("Y", y))
	fn := filepath.Join(t.TempDir(), "line.xyls")
	require.NoError(t, (&rlfits.File{HDUs: []*rlfits.HDU{rlfits.NewPrimary(), u}}).WriteFile(fn))
	return fn
}

func run(args ...string) (code int, stdout, stderr string, err error) {
	var o, e bytes.Buffer
	code, err = Run(args, &o, &e)
	return code, o.String(), e.String(), err
}

func TestArgumentCount(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(dir, "out.xyls")
	for _, args := range [][]string{
		{},
		{"in.xyls"},
		{"in.xyls", out, "extra"},
	} {
		code, _, stderr, err := run(args...)
		require.NoError(t, err)
		assert.Equal(t, UsageExit, code, "%q", args)
		assert.Contains(t, stderr, "Usage: removelines")
		assert.Contains(t, stderr, "Got arguments:")
		_, statErr := os.Stat(out)
		assert.True(t, errors.Is(statErr, os.ErrNotExist))
	}
}

func TestRemove(t *testing.T) {
	in := writeLine(t)
	out := filepath.Join(t.TempDir(), "out.xyls")
	code, stdout, _, err := run("-X", "XIMAGE", in, out)
	require.NoError(t, err)
	require.Zero(t, code)
	require.Equal(t, "removelines: Removed 20 sources\n", stdout)

	f, err := rlfits.ReadFile(out)
	require.NoError(t, err)
	n, err := f.HDUs[1].Header.Int("REMLINEN")
	require.NoError(t, err)
	require.EqualValues(t, 20, n)
}

func TestOptionsAfterArguments(t *testing.T) {
	in := writeLine(t)
	out := filepath.Join(t.TempDir(), "out.xyls")
	code, stdout, _, err := run(in, out, "-X", "XIMAGE", "-s", "200")
	require.NoError(t, err)
	require.Zero(t, code)
	require.Equal(t, "removelines: Removed 0 sources\n", stdout)
}

func TestNoSources(t *testing.T) {
	in := writeLine(t)
	out := filepath.Join(t.TempDir(), "out.xyls")
	code, stdout, _, err := run("-e", "0", in, out)
	require.NoError(t, err)
	require.Zero(t, code)
	require.Equal(t, "removelines: Input file contains no sources.\n", stdout)
	a, err := os.ReadFile(in)
	require.NoError(t, err)
	b, err := os.ReadFile(out)
	require.NoError(t, err)
	require.Equal(t, a, b)
}

func TestFileErrors(t *testing.T) {
	dir := t.TempDir()
	_, _, _, err := run(filepath.Join(dir, "missing.xyls"), filepath.Join(dir, "out.xyls"))
	require.True(t, errors.Is(err, os.ErrNotExist))

	// default column X is not in the file
	_, _, _, err = run(writeLine(t), filepath.Join(dir, "out.xyls"))
	require.Error(t, err)
}

func TestBadOptions(t *testing.T) {
	for _, args := range [][]string{
		{"-s", "lots", "a", "b"},
		{"-s", "-5", "a", "b"},
		{"-s", "0", "a", "b"},
		{"-w", "0", "a", "b"},
		{"-e", "-1", "a", "b"},
		{"-e", "1.5", "a", "b"},
		{"-nosuch", "a", "b"},
		{"-c", "/nonexistent/removelines.yaml", "a", "b"},
	} {
		code, _, stderr, err := run(args...)
		require.NoError(t, err)
		assert.Equal(t, UsageExit, code, "%q", args)
		assert.NotEmpty(t, stderr, "%q", args)
	}
}

func TestConfigPrecedence(t *testing.T) {
	cfg := filepath.Join(t.TempDir(), "rl.yaml")
	require.NoError(t, os.WriteFile(cfg, []byte("x_column: XIMAGE\ncut: 10\nexact: true\n"), 0o644))
	cl, code := parseCommandLine([]string{"-c", cfg, "-s", "40", "in", "out"}, &bytes.Buffer{}, &bytes.Buffer{})
	require.Zero(t, code)
	require.NotNil(t, cl)
	want := rlfilter.DefaultOptions()
	want.XCol = "XIMAGE"
	want.Cut = 40
	want.Model = rlhist.Poisson
	require.Equal(t, want, cl.opt)
	require.Equal(t, "in", cl.in)
	require.Equal(t, "out", cl.out)
}

func TestDoubleDash(t *testing.T) {
	cl, code := parseCommandLine([]string{"-Y", "YY", "--", "-in", "out"}, &bytes.Buffer{}, &bytes.Buffer{})
	require.Zero(t, code)
	require.Equal(t, "-in", cl.in)
	require.Equal(t, "YY", cl.opt.YCol)
}

func TestVersionAndHelp(t *testing.T) {
	code, stdout, _, err := run("-v")
	require.NoError(t, err)
	require.Zero(t, code)
	require.Contains(t, stdout, versionString)

	code, stdout, _, err = run("-h")
	require.NoError(t, err)
	require.Zero(t, code)
	require.Contains(t, stdout, "REMLINEN")
}
