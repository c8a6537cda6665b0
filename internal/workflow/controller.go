package workflow

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spigell/resume-matcher/internal/analysis"
	"github.com/spigell/resume-matcher/internal/intake"
	"github.com/spigell/resume-matcher/internal/logger"
	"github.com/spigell/resume-matcher/internal/metrics"
	"github.com/spigell/resume-matcher/internal/progress"
)

// DefaultSettleDelay is how long progress rests at 100 before the result is revealed.
const DefaultSettleDelay = 500 * time.Millisecond

const (
	refusalMissingInput = "missing_input"
	refusalBusy         = "busy"
)

// Analyzer performs one remote analysis call.
type Analyzer interface {
	Analyze(ctx context.Context, req *analysis.Request) (*analysis.Result, error)
}

type Config struct {
	SettleDelay time.Duration
}

// Deps are the collaborators of a Controller. Only Analyzer is required.
type Deps struct {
	Analyzer  Analyzer
	Simulator *progress.Simulator
	Scheduler progress.Scheduler
	Logger    *zap.Logger
	Metrics   *metrics.Metrics

	// Observer receives a snapshot after every change. It runs on the controller
	// goroutine and must not call back into the Controller.
	Observer func(Snapshot)

	NewRequestID func() string
}

// Snapshot is a read-only copy of the workflow taken between two messages.
type Snapshot struct {
	State          State
	Progress       progress.Value
	File           *intake.FileInfo
	JobDescription string
	Error          string
	ErrorKind      ErrorKind
	CanSubmit      bool
	RequestID      string
}

// Controller owns the analysis workflow. All state lives on a single goroutine that
// consumes the inbox; public methods post messages to it.
type Controller struct {
	ctx         context.Context
	settleDelay time.Duration

	analyzer  Analyzer
	simulator *progress.Simulator
	scheduler progress.Scheduler
	logger    *zap.Logger
	metrics   *metrics.Metrics
	observer  func(Snapshot)
	newID     func() string

	inbox     chan message
	quit      chan struct{}
	done      chan struct{}
	closeOnce sync.Once
	last      atomic.Pointer[Snapshot]

	// owned by the loop goroutine
	intake         *intake.Intake
	jobDescription string
	state          State
	progress       progress.Value
	errs           ErrorChannel
	run            *progress.Run
	seq            uint64
	requestID      string
	settling       *analysis.Result
	cancelSettle   func()
}

type message interface{}

type selectMsg struct {
	candidate intake.Candidate
	reply     chan bool
}

type jobDescriptionMsg struct {
	text string
}

type submitMsg struct {
	reply chan error
}

type snapshotMsg struct {
	reply chan Snapshot
}

type tickMsg struct {
	run *progress.Run
}

type responseMsg struct {
	seq     uint64
	result  *analysis.Result
	err     error
	elapsed time.Duration
}

type settledMsg struct {
	seq uint64
}

// New starts a controller in the Idle state. ctx is used for the remote calls.
func New(ctx context.Context, cfg *Config, deps *Deps) (*Controller, error) {
	if deps == nil || deps.Analyzer == nil {
		return nil, errors.New("workflow requires an analyzer")
	}

	settleDelay := DefaultSettleDelay
	if cfg != nil && cfg.SettleDelay != 0 {
		settleDelay = cfg.SettleDelay
	}
	if settleDelay < 0 {
		return nil, fmt.Errorf("settle delay must not be negative, got %s", settleDelay)
	}

	scheduler := deps.Scheduler
	if scheduler == nil {
		scheduler = progress.NewScheduler()
	}

	simulator := deps.Simulator
	if simulator == nil {
		var err error
		simulator, err = progress.New(nil, scheduler)
		if err != nil {
			return nil, fmt.Errorf("progress simulator: %w", err)
		}
	}

	newID := deps.NewRequestID
	if newID == nil {
		newID = uuid.NewString
	}

	c := &Controller{
		ctx:         ctx,
		settleDelay: settleDelay,
		analyzer:    deps.Analyzer,
		simulator:   simulator,
		scheduler:   scheduler,
		logger:      logger.WithFields(deps.Logger),
		metrics:     deps.Metrics,
		observer:    deps.Observer,
		newID:       newID,
		inbox:       make(chan message),
		quit:        make(chan struct{}),
		done:        make(chan struct{}),
		intake:      intake.New(),
		state:       idleState(),
	}

	initial := c.snapshot()
	c.last.Store(&initial)

	go c.loop()

	return c, nil
}

// SelectFile offers a candidate to the intake. It reports whether the candidate was accepted;
// a disallowed media type is ignored without surfacing an error.
func (c *Controller) SelectFile(candidate intake.Candidate) bool {
	reply := make(chan bool, 1)
	if !c.post(selectMsg{candidate: candidate, reply: reply}) {
		return false
	}
	return await(c, reply, false)
}

// SetJobDescription replaces the job description text.
func (c *Controller) SetJobDescription(text string) {
	c.post(jobDescriptionMsg{text: text})
}

// Submit dispatches an analysis request. It returns a *ValidationError when inputs are
// missing, ErrBusy while a request is outstanding and ErrClosed after Close.
func (c *Controller) Submit() error {
	reply := make(chan error, 1)
	if !c.post(submitMsg{reply: reply}) {
		return ErrClosed
	}
	return await(c, reply, ErrClosed)
}

// Snapshot returns the current workflow view. After Close it returns the final one.
func (c *Controller) Snapshot() Snapshot {
	reply := make(chan Snapshot, 1)
	if !c.post(snapshotMsg{reply: reply}) {
		return *c.last.Load()
	}
	return await(c, reply, *c.last.Load())
}

// Close tears the workflow down. Pending ticks, timers and responses are discarded.
// The in-flight request, if any, runs to completion but its result is dropped.
func (c *Controller) Close() {
	c.closeOnce.Do(func() { close(c.quit) })
	<-c.done
}

func (c *Controller) post(msg message) bool {
	select {
	case c.inbox <- msg:
		return true
	case <-c.quit:
		return false
	}
}

func await[T any](c *Controller, reply chan T, closed T) T {
	select {
	case v := <-reply:
		return v
	case <-c.done:
		select {
		case v := <-reply:
			return v
		default:
			return closed
		}
	}
}

func (c *Controller) loop() {
	defer close(c.done)
	defer c.teardown()

	for {
		select {
		case <-c.quit:
			return
		case msg := <-c.inbox:
			select {
			case <-c.quit:
				return
			default:
			}
			c.handle(msg)
		}
	}
}

func (c *Controller) handle(msg message) {
	switch m := msg.(type) {
	case selectMsg:
		m.reply <- c.selectFile(m.candidate)
	case jobDescriptionMsg:
		c.jobDescription = m.text
		c.publish()
	case submitMsg:
		m.reply <- c.submit()
	case snapshotMsg:
		m.reply <- c.snapshot()
	case tickMsg:
		c.tick(m.run)
	case responseMsg:
		c.resolve(m)
	case settledMsg:
		c.settle(m.seq)
	default:
		c.logger.Warn("Dropping unknown workflow message", zap.String("type", fmt.Sprintf("%T", msg)))
	}
}

func (c *Controller) selectFile(candidate intake.Candidate) bool {
	selected, ok := c.intake.Select(candidate)
	if !ok {
		c.logger.Debug("Ignoring file with disallowed media type",
			zap.String("name", candidate.Name),
			zap.String("media_type", candidate.MediaType),
		)
		return false
	}

	c.errs.ClearValidation()
	c.logger.Debug("Resume selected",
		zap.String(logger.FieldResume, selected.Name()),
		zap.String("media_type", selected.MediaType()),
	)
	c.publish()

	return true
}

func (c *Controller) submit() error {
	if c.state.Kind() == Submitting {
		c.metrics.ObserveRefusal(refusalBusy)
		return ErrBusy
	}

	selected := c.intake.Selected()
	if err := validate(selected, c.jobDescription); err != nil {
		c.errs.Set(ValidationComplaint, MissingInputMessage)
		c.metrics.ObserveRefusal(refusalMissingInput)
		c.logger.Debug("Submit refused", zap.Error(err))
		c.publish()
		return err
	}

	run, err := c.simulator.Start(func(r *progress.Run) {
		c.post(tickMsg{run: r})
	})
	if err != nil {
		return fmt.Errorf("start progress: %w", err)
	}

	c.errs.Clear()
	c.state = submittingState()
	c.progress = progress.Zero
	c.run = run
	c.seq++
	c.requestID = c.newID()

	req := &analysis.Request{
		ID:             c.requestID,
		Resume:         selected,
		JobDescription: c.jobDescription,
	}
	c.dispatch(c.seq, req)

	c.publish()

	return nil
}

func validate(selected *intake.SelectedFile, jobDescription string) error {
	err := &ValidationError{
		MissingFile:           selected == nil,
		MissingJobDescription: strings.TrimSpace(jobDescription) == "",
	}
	if err.MissingFile || err.MissingJobDescription {
		return err
	}
	return nil
}

func (c *Controller) dispatch(seq uint64, req *analysis.Request) {
	log := logger.WithRequestFields(c.logger, req.ID, req.Resume.Name())
	log.Info("Dispatching analysis request")

	go func() {
		started := time.Now()
		result, err := c.analyzer.Analyze(c.ctx, req)
		if err == nil && result == nil {
			err = &analysis.MalformedResponseError{Problems: []string{"empty result"}}
		}

		if !c.post(responseMsg{seq: seq, result: result, err: err, elapsed: time.Since(started)}) {
			log.Debug("Discarding analysis response after teardown")
		}
	}()
}

func (c *Controller) tick(run *progress.Run) {
	if run == nil || run != c.run {
		return
	}

	value, changed := run.Advance()
	if !changed {
		return
	}

	c.progress = value
	c.publish()
}

func (c *Controller) resolve(m responseMsg) {
	if m.seq != c.seq || c.state.Kind() != Submitting || c.settling != nil {
		return
	}

	c.stopRun()

	outcome := analysis.Outcome(m.err)
	c.metrics.ObserveRequest(outcome, m.elapsed)
	log := logger.WithRequestFields(c.logger, c.requestID, "")

	if m.err != nil {
		text := analysis.FailureMessage(m.err)
		log.Warn("Analysis failed",
			zap.String("outcome", outcome),
			zap.Duration("elapsed", m.elapsed),
			zap.Error(m.err),
		)
		c.state = failedState(text)
		c.errs.Set(RequestFailure, text)
		c.publish()
		return
	}

	log.Info("Analysis succeeded",
		zap.Int("score", m.result.Score),
		zap.Duration("elapsed", m.elapsed),
	)

	c.progress = progress.Complete
	c.settling = m.result

	seq := c.seq
	c.cancelSettle = c.scheduler.After(c.settleDelay, func() {
		c.post(settledMsg{seq: seq})
	})

	c.publish()
}

func (c *Controller) settle(seq uint64) {
	if seq != c.seq || c.settling == nil {
		return
	}

	c.state = succeededState(c.settling)
	c.settling = nil
	c.cancelSettle = nil
	c.publish()
}

func (c *Controller) stopRun() {
	if c.run == nil {
		return
	}
	c.run.Stop()
	c.run = nil
}

func (c *Controller) teardown() {
	c.stopRun()
	if c.cancelSettle != nil {
		c.cancelSettle()
		c.cancelSettle = nil
	}
	c.logger.Debug("Workflow closed", zap.Stringer("state", c.state))
}

func (c *Controller) snapshot() Snapshot {
	s := Snapshot{
		State:          c.state,
		Progress:       c.progress,
		JobDescription: c.jobDescription,
		Error:          c.errs.Message(),
		ErrorKind:      c.errs.Kind(),
		RequestID:      c.requestID,
	}

	selected := c.intake.Selected()
	if selected != nil {
		info := selected.Info()
		s.File = &info
	}

	s.CanSubmit = c.state.Kind() != Submitting && validate(selected, c.jobDescription) == nil

	return s
}

func (c *Controller) publish() {
	s := c.snapshot()
	c.last.Store(&s)
	if c.observer != nil {
		c.observer(s)
	}
}
