package pipeline

import (
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/nconklindev/ttvfill/internal/config"
	"github.com/nconklindev/ttvfill/internal/coords"
	"github.com/nconklindev/ttvfill/internal/logger"
	"github.com/nconklindev/ttvfill/internal/types"
	"github.com/nconklindev/ttvfill/internal/workbook"
)

// ErrCancelled is returned by Execute when a point count mismatch is declined.
var ErrCancelled = errors.New("Cancelled.")

// Side is one measurement surface: where its points come from and where
// their Z values go.
type Side struct {
	Input  string
	Target types.SheetTarget
}

// Plan is the validated, immutable configuration of one run.
type Plan struct {
	TemplatePath string
	OutputPath   string
	Sides        [2]Side
}

type Option func(*Runner)

// WithLogger sets the logger the runner derives its per-run logger from.
func WithLogger(l *slog.Logger) Option {
	return func(r *Runner) {
		r.baseLog = l
	}
}

// WithObserver registers fn to be called with the new state on every transition.
func WithObserver(fn func(State)) Option {
	return func(r *Runner) {
		r.observer = fn
	}
}

// Runner drives one form through the run states. It is not safe for
// concurrent use; callers step it from a single goroutine at a time.
type Runner struct {
	form     config.Form
	state    State
	plan     Plan
	values   [2][]float64
	book     *workbook.Workbook
	result   *types.RunResult
	err      error
	runID    string
	baseLog  *slog.Logger
	log      *slog.Logger
	observer func(State)
}

func New(form config.Form, opts ...Option) *Runner {
	r := &Runner{
		form:    form,
		state:   StateIdle,
		baseLog: logger.Logger,
	}
	for _, opt := range opts {
		opt(r)
	}
	r.log = r.baseLog
	return r
}

func (r *Runner) State() State {
	return r.state
}

// Err is the failure that moved the runner to StateError.
func (r *Runner) Err() error {
	return r.err
}

// Result is set once the runner reaches StateDone.
func (r *Runner) Result() *types.RunResult {
	return r.result
}

// Counts returns the number of points loaded for each side.
func (r *Runner) Counts() (int, int) {
	return len(r.values[0]), len(r.values[1])
}

// Start begins a run. If a required path is missing the runner returns to
// StateIdle and ErrMissingInput is returned.
func (r *Runner) Start() error {
	if r.state != StateIdle {
		return fmt.Errorf("pipeline: cannot start from %s", r.state)
	}

	r.runID = uuid.NewString()
	r.log = r.baseLog.With("run_id", r.runID)
	r.transition(StateValidating)

	if !r.form.HasPaths() {
		r.log.Warn("run rejected", "reason", "missing input")
		r.transition(StateIdle)
		return types.ErrMissingInput
	}
	return nil
}

// Step performs the work of the current state and moves to the next one.
// When the work fails the runner moves to StateError and the error is returned.
func (r *Runner) Step() (State, error) {
	var err error
	switch r.state {
	case StateValidating:
		err = r.validate()
	case StateLoadingInputs:
		err = r.loadInputs()
	case StateOpeningTemplate:
		err = r.openTemplate()
	case StateWriting:
		err = r.write()
	case StateSaving:
		err = r.save()
	default:
		return r.state, fmt.Errorf("pipeline: cannot step from %s", r.state)
	}

	if err != nil {
		r.fail(err)
		return r.state, err
	}
	return r.state, nil
}

// Confirm resolves a point count mismatch. Declining returns the runner to
// StateIdle without touching the output file.
func (r *Runner) Confirm(proceed bool) error {
	if r.state != StateConfirming {
		return fmt.Errorf("pipeline: nothing to confirm in %s", r.state)
	}

	if !proceed {
		r.log.Info("run cancelled", "reason", "point count mismatch")
		r.values = [2][]float64{}
		r.transition(StateIdle)
		return nil
	}

	r.transition(StateOpeningTemplate)
	return nil
}

// Reset releases any open workbook and returns to StateIdle. The form is kept
// so the same runner can be started again.
func (r *Runner) Reset() {
	r.closeBook()
	r.values = [2][]float64{}
	r.result = nil
	r.err = nil
	if r.state != StateIdle {
		r.transition(StateIdle)
	}
}

func (r *Runner) validate() error {
	form := r.form.Trimmed()

	t1, err := workbook.ParseTarget(form.Sheet1Name, form.ColumnLetter, form.StartRow)
	if err != nil {
		return err
	}
	t2, err := workbook.ParseTarget(form.Sheet2Name, form.ColumnLetter, form.StartRow)
	if err != nil {
		return err
	}
	if t1.Sheet == t2.Sheet {
		return types.ConfigError("Side 1 and Side 2 must use different sheets (both are %q).", t1.Sheet)
	}
	if samePath(form.TemplatePath, form.OutputPath) {
		return types.ConfigError("Output file must differ from the template.")
	}

	r.plan = Plan{
		TemplatePath: form.TemplatePath,
		OutputPath:   form.OutputPath,
		Sides: [2]Side{
			{Input: form.Side1Path, Target: t1},
			{Input: form.Side2Path, Target: t2},
		},
	}
	r.transition(StateLoadingInputs)
	return nil
}

func (r *Runner) loadInputs() error {
	for i, side := range r.plan.Sides {
		points, err := coords.Load(side.Input)
		if err != nil {
			return err
		}
		r.values[i] = coords.ZValues(points)
	}

	n1, n2 := r.Counts()
	r.log.Info("loaded points", "side1", n1, "side2", n2)

	if n1 != n2 {
		r.log.Warn("point count mismatch", "side1", n1, "side2", n2)
		r.transition(StateConfirming)
		return nil
	}
	r.transition(StateOpeningTemplate)
	return nil
}

func (r *Runner) openTemplate() error {
	book, err := workbook.Open(r.plan.TemplatePath)
	if err != nil {
		return err
	}
	r.book = book

	if err := book.RequireSheets(r.plan.Sides[0].Target.Sheet, r.plan.Sides[1].Target.Sheet); err != nil {
		return err
	}

	r.transition(StateWriting)
	return nil
}

func (r *Runner) write() error {
	for i, side := range r.plan.Sides {
		n, err := r.book.WriteColumn(side.Target, r.values[i])
		if err != nil {
			return err
		}
		r.log.Debug("wrote column", "sheet", side.Target.Sheet, "column", side.Target.Column, "cells", n)
	}

	r.transition(StateSaving)
	return nil
}

func (r *Runner) save() error {
	err := r.book.SaveAs(r.plan.OutputPath)
	r.closeBook()
	if err != nil {
		return err
	}

	r.result = &types.RunResult{
		RunID:        r.runID,
		TemplateFile: r.plan.TemplatePath,
		OutputFile:   r.plan.OutputPath,
	}
	for i, side := range r.plan.Sides {
		r.result.Sides[i] = summarize(side.Target, r.values[i])
	}

	r.log.Info("saved output", "path", r.plan.OutputPath)
	r.transition(StateDone)
	return nil
}

func (r *Runner) fail(err error) {
	r.err = err
	r.closeBook()
	r.log.Error("run failed", "state", r.state.String(), "kind", types.KindOf(err).String(), "error", err)
	r.transition(StateError)
}

func (r *Runner) closeBook() {
	if r.book == nil {
		return
	}
	if err := r.book.Close(); err != nil {
		r.log.Warn("failed to close workbook", "error", err)
	}
	r.book = nil
}

func (r *Runner) transition(to State) {
	r.log.Info("state change", "from", r.state.String(), "to", to.String())
	r.state = to
	if r.observer != nil {
		r.observer(to)
	}
}

// Execute runs form to completion. confirm is asked whether to continue when
// the two sides have different point counts; a nil confirm declines.
func Execute(form config.Form, confirm func(n1, n2 int) bool, opts ...Option) (*types.RunResult, error) {
	r := New(form, opts...)
	if err := r.Start(); err != nil {
		return nil, err
	}

	for !r.State().Terminal() {
		if r.State() == StateConfirming {
			n1, n2 := r.Counts()
			if confirm == nil || !confirm(n1, n2) {
				if err := r.Confirm(false); err != nil {
					return nil, err
				}
				return nil, ErrCancelled
			}
			if err := r.Confirm(true); err != nil {
				return nil, err
			}
			continue
		}

		if _, err := r.Step(); err != nil {
			return nil, err
		}
	}

	return r.Result(), nil
}

func samePath(a, b string) bool {
	absA, errA := filepath.Abs(a)
	absB, errB := filepath.Abs(b)
	if errA != nil || errB != nil {
		return filepath.Clean(a) == filepath.Clean(b)
	}
	return absA == absB
}
