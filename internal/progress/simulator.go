package progress

import (
	"errors"
	"fmt"
	"time"
)

// Value is a displayed progress percentage in [0,100].
type Value int

const (
	Zero     Value = 0
	Complete Value = 100

	DefaultInterval = 500 * time.Millisecond
	DefaultStep     = 10
	DefaultCeiling  = 90
)

// ErrAlreadyRunning is returned by Start while a previous run has not been stopped.
var ErrAlreadyRunning = errors.New("progress simulator is already running")

type Config struct {
	Interval time.Duration
	Step     int
	Ceiling  int
}

// Simulator produces fake, bounded progress while a request is outstanding.
// It is not safe for concurrent use; one owner drives Start, Advance and Stop.
type Simulator struct {
	interval  time.Duration
	step      Value
	ceiling   Value
	scheduler Scheduler
	active    *Run
}

// Run is a single activation of the simulator.
type Run struct {
	owner   *Simulator
	value   Value
	stopped bool
	cancel  func()
}

func New(cfg *Config, scheduler Scheduler) (*Simulator, error) {
	c := Config{Interval: DefaultInterval, Step: DefaultStep, Ceiling: DefaultCeiling}
	if cfg != nil {
		if cfg.Interval != 0 {
			c.Interval = cfg.Interval
		}
		if cfg.Step != 0 {
			c.Step = cfg.Step
		}
		if cfg.Ceiling != 0 {
			c.Ceiling = cfg.Ceiling
		}
	}

	if c.Interval <= 0 {
		return nil, fmt.Errorf("progress interval must be positive, got %s", c.Interval)
	}
	if c.Step <= 0 {
		return nil, fmt.Errorf("progress step must be positive, got %d", c.Step)
	}
	// the ceiling must stay below Complete: 100 means the real result has arrived
	if c.Ceiling <= 0 || Value(c.Ceiling) >= Complete {
		return nil, fmt.Errorf("progress ceiling must be in (0,100), got %d", c.Ceiling)
	}

	if scheduler == nil {
		scheduler = NewScheduler()
	}

	return &Simulator{
		interval:  c.Interval,
		step:      Value(c.Step),
		ceiling:   Value(c.Ceiling),
		scheduler: scheduler,
	}, nil
}

// Start begins a run at Zero. notify is invoked from the scheduler on every tick; the owner is
// expected to call Advance on the run it receives.
func (s *Simulator) Start(notify func(*Run)) (*Run, error) {
	if s.active != nil && !s.active.stopped {
		return nil, ErrAlreadyRunning
	}

	run := &Run{owner: s}
	run.cancel = s.scheduler.Every(s.interval, func() { notify(run) })
	s.active = run

	return run, nil
}

// Advance moves the run one step forward and reports whether the value changed.
// Once the ceiling is reached the repeating task is cancelled.
func (r *Run) Advance() (Value, bool) {
	if r.stopped || r.value >= r.owner.ceiling {
		return r.value, false
	}

	r.value += r.owner.step
	if r.value >= r.owner.ceiling {
		r.value = r.owner.ceiling
		r.cancel()
	}

	return r.value, true
}

// Stop halts the run immediately. It is idempotent.
func (r *Run) Stop() {
	if r.stopped {
		return
	}
	r.stopped = true
	r.cancel()
	if r.owner.active == r {
		r.owner.active = nil
	}
}

func (r *Run) Value() Value { return r.value }

func (r *Run) Stopped() bool { return r.stopped }
