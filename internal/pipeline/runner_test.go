package pipeline

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/nconklindev/ttvfill/internal/config"
	"github.com/nconklindev/ttvfill/internal/types"
)

type fixture struct {
	dir  string
	form config.Form
}

// newFixture writes a template with the given sheets and two side files.
func newFixture(t *testing.T, side1, side2 string, sheets ...string) fixture {
	t.Helper()
	dir := t.TempDir()

	f := excelize.NewFile()
	require.NoError(t, f.SetSheetName("Sheet1", sheets[0]))
	for _, name := range sheets[1:] {
		_, err := f.NewSheet(name)
		require.NoError(t, err)
	}
	require.NoError(t, f.SaveAs(filepath.Join(dir, "TTV_template.xlsx")))
	require.NoError(t, f.Close())

	require.NoError(t, os.WriteFile(filepath.Join(dir, "side1.txt"), []byte(side1), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "side2.txt"), []byte(side2), 0644))

	return fixture{dir: dir, form: config.ScriptForm(dir)}
}

func (fx fixture) output() string {
	return filepath.Join(fx.dir, "TTV_populated.xlsx")
}

func readCell(t *testing.T, path, sheet, cell string) string {
	t.Helper()
	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()
	v, err := f.GetCellValue(sheet, cell)
	require.NoError(t, err)
	return v
}

func TestRunner_HappyPath(t *testing.T) {
	fx := newFixture(t, "1 2 3.5\n4 5 6.25\n", "0 0 1\n0 1 2\n", "Side 1", "Side 2")

	var seen []State
	r := New(fx.form, WithObserver(func(s State) { seen = append(seen, s) }))
	require.NoError(t, r.Start())

	for !r.State().Terminal() {
		_, err := r.Step()
		require.NoError(t, err)
	}

	assert.Equal(t, []State{
		StateValidating,
		StateLoadingInputs,
		StateOpeningTemplate,
		StateWriting,
		StateSaving,
		StateDone,
	}, seen)

	assert.Equal(t, "3.5", readCell(t, fx.output(), "Side 1", "D3"))
	assert.Equal(t, "6.25", readCell(t, fx.output(), "Side 1", "D4"))
	assert.Equal(t, "1", readCell(t, fx.output(), "Side 2", "D3"))
	assert.Equal(t, "2", readCell(t, fx.output(), "Side 2", "D4"))

	res := r.Result()
	require.NotNil(t, res)
	assert.NotEmpty(t, res.RunID)
	assert.Equal(t, fx.output(), res.OutputFile)
	assert.Equal(t, types.SideResult{
		Sheet: "Side 1", FirstCell: "D3", LastCell: "D4", Count: 2,
		Min: 3.5, Max: 6.25, Mean: 4.875, Range: 2.75,
	}, res.Sides[0])

	_, err := r.Step()
	assert.Error(t, err, "stepping a finished run must fail")
}

func TestRunner_MissingInputReturnsToIdle(t *testing.T) {
	form := config.ScriptForm(t.TempDir())
	form.OutputPath = " "

	var seen []State
	r := New(form, WithObserver(func(s State) { seen = append(seen, s) }))
	err := r.Start()
	assert.ErrorIs(t, err, types.ErrMissingInput)
	assert.Equal(t, StateIdle, r.State())
	assert.Equal(t, []State{StateValidating, StateIdle}, seen)
}

func TestRunner_ValidationErrors(t *testing.T) {
	tests := []struct {
		name    string
		edit    func(*config.Form)
		wantMsg string
	}{
		{"Start row not integer", func(f *config.Form) { f.StartRow = "3a" }, "Start row must be an integer."},
		{"Bad column", func(f *config.Form) { f.ColumnLetter = "D!" }, "Invalid column"},
		{"Same sheet twice", func(f *config.Form) { f.Sheet2Name = f.Sheet1Name }, "different sheets"},
		{"Output overwrites template", func(f *config.Form) { f.OutputPath = f.TemplatePath }, "must differ"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fx := newFixture(t, "1 2 3\n", "1 2 3\n", "Side 1", "Side 2")
			tt.edit(&fx.form)

			r := New(fx.form)
			require.NoError(t, r.Start())
			state, err := r.Step()
			require.Error(t, err)
			assert.Equal(t, StateError, state)
			assert.Equal(t, types.KindConfiguration, types.KindOf(err))
			assert.Contains(t, err.Error(), tt.wantMsg)
			assert.Equal(t, err, r.Err())

			r.Reset()
			assert.Equal(t, StateIdle, r.State())
			assert.NoError(t, r.Err())
		})
	}
}

func TestRunner_MismatchDeclined(t *testing.T) {
	fx := newFixture(t, "0 0 1\n0 0 2\n0 0 3\n0 0 4\n0 0 5\n", "0 0 1\n0 0 2\n0 0 3\n", "Side 1", "Side 2")

	r := New(fx.form)
	require.NoError(t, r.Start())
	_, err := r.Step()
	require.NoError(t, err)
	state, err := r.Step()
	require.NoError(t, err)
	require.Equal(t, StateConfirming, state)

	n1, n2 := r.Counts()
	assert.Equal(t, 5, n1)
	assert.Equal(t, 3, n2)

	require.NoError(t, r.Confirm(false))
	assert.Equal(t, StateIdle, r.State())
	assert.NoError(t, r.Err())

	_, err = os.Stat(fx.output())
	assert.True(t, os.IsNotExist(err), "declined run must not write output")
}

func TestExecute_MismatchConfirmedWritesBothSidesFully(t *testing.T) {
	fx := newFixture(t, "0 0 1\n0 0 2\n0 0 3\n0 0 4\n0 0 5\n", "0 0 10\n0 0 20\n0 0 30\n", "Side 1", "Side 2")

	var asked [2]int
	res, err := Execute(fx.form, func(n1, n2 int) bool {
		asked = [2]int{n1, n2}
		return true
	})
	require.NoError(t, err)
	assert.Equal(t, [2]int{5, 3}, asked)
	assert.Equal(t, 5, res.Sides[0].Count)
	assert.Equal(t, 3, res.Sides[1].Count)

	assert.Equal(t, "5", readCell(t, fx.output(), "Side 1", "D7"))
	assert.Equal(t, "30", readCell(t, fx.output(), "Side 2", "D5"))
	assert.Equal(t, "", readCell(t, fx.output(), "Side 2", "D6"))
}

func TestExecute_MismatchWithoutConfirm(t *testing.T) {
	fx := newFixture(t, "0 0 1\n", "", "Side 1", "Side 2")

	_, err := Execute(fx.form, nil)
	assert.ErrorIs(t, err, ErrCancelled)

	_, statErr := os.Stat(fx.output())
	assert.True(t, os.IsNotExist(statErr))
}

func TestExecute_MissingSheet(t *testing.T) {
	fx := newFixture(t, "1 2 3\n", "1 2 4\n", "Side 1", "Summary")

	_, err := Execute(fx.form, nil)
	require.Error(t, err)
	assert.Equal(t, types.KindConfiguration, types.KindOf(err))
	assert.Contains(t, err.Error(), "Side 2")
	assert.Contains(t, err.Error(), "Available sheets: Side 1, Summary")

	_, statErr := os.Stat(fx.output())
	assert.True(t, os.IsNotExist(statErr), "no output file on missing sheet")
}

func TestExecute_EmptyInputs(t *testing.T) {
	fx := newFixture(t, "", "", "Side 1", "Side 2")

	res, err := Execute(fx.form, nil)
	require.NoError(t, err)
	assert.Zero(t, res.Sides[0].Count)
	assert.Zero(t, res.Sides[1].Count)
	assert.Empty(t, res.Sides[0].FirstCell)

	f, err := excelize.OpenFile(fx.output())
	require.NoError(t, err)
	defer f.Close()
	rows, err := f.GetRows("Side 1")
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestExecute_Idempotent(t *testing.T) {
	fx := newFixture(t, "1 2 3.5\n4 5 6.25\n", "0 0 7\n0 0 8\n", "Side 1", "Side 2")

	read := func() []string {
		var vals []string
		for _, sheet := range []string{"Side 1", "Side 2"} {
			for _, cell := range []string{"D3", "D4"} {
				vals = append(vals, readCell(t, fx.output(), sheet, cell))
			}
		}
		return vals
	}

	_, err := Execute(fx.form, nil)
	require.NoError(t, err)
	first := read()

	_, err = Execute(fx.form, nil)
	require.NoError(t, err)
	assert.Equal(t, first, read())
	assert.Equal(t, []string{"3.5", "6.25", "7", "8"}, first)
}

func TestExecute_InputErrors(t *testing.T) {
	t.Run("Missing side file", func(t *testing.T) {
		fx := newFixture(t, "1 2 3\n", "1 2 3\n", "Side 1", "Side 2")
		require.NoError(t, os.Remove(filepath.Join(fx.dir, "side2.txt")))

		_, err := Execute(fx.form, nil)
		require.Error(t, err)
		assert.Equal(t, types.KindIO, types.KindOf(err))
	})

	t.Run("Malformed side file", func(t *testing.T) {
		fx := newFixture(t, "1 2 3\n1 2\n", "1 2 3\n", "Side 1", "Side 2")

		_, err := Execute(fx.form, nil)
		require.Error(t, err)
		assert.Equal(t, types.KindFormat, types.KindOf(err))
	})

	t.Run("Missing template", func(t *testing.T) {
		fx := newFixture(t, "1 2 3\n", "1 2 3\n", "Side 1", "Side 2")
		require.NoError(t, os.Remove(fx.form.TemplatePath))

		_, err := Execute(fx.form, nil)
		require.Error(t, err)
		assert.Equal(t, types.KindIO, types.KindOf(err))
	})

	t.Run("Unwritable output", func(t *testing.T) {
		fx := newFixture(t, "1 2 3\n", "1 2 3\n", "Side 1", "Side 2")
		fx.form.OutputPath = filepath.Join(fx.dir, "missing", "out.xlsx")

		_, err := Execute(fx.form, nil)
		require.Error(t, err)
		assert.Equal(t, types.KindIO, types.KindOf(err))
	})
}

func TestRunner_StateGuards(t *testing.T) {
	r := New(config.Form{})

	_, err := r.Step()
	assert.Error(t, err)
	assert.Error(t, r.Confirm(true))
	assert.Equal(t, StateIdle, r.State())
}

func TestState(t *testing.T) {
	assert.Equal(t, "Ready.", StateIdle.Status())
	assert.Equal(t, "Loading TXT files...", StateLoadingInputs.Status())
	assert.Equal(t, "Done.", StateDone.Status())
	assert.Equal(t, "opening_template", StateOpeningTemplate.String())
	assert.True(t, StateError.Terminal())
	assert.False(t, StateConfirming.Terminal())
	assert.Equal(t, 1.0, StateDone.Progress())
	assert.Less(t, StateValidating.Progress(), StateSaving.Progress())
}

func TestRunner_LogsTransitionsWithRunID(t *testing.T) {
	fx := newFixture(t, "1 2 3\n", "1 2 4\n", "Side 1", "Side 2")

	var buf bytes.Buffer
	log := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	res, err := Execute(fx.form, nil, WithLogger(log))
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, "run_id="+res.RunID)
	assert.Contains(t, out, "from=saving to=done")
	assert.Contains(t, out, "wrote column")
}
