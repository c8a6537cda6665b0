package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"

	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/spigell/resume-matcher/internal/analysis"
	"github.com/spigell/resume-matcher/internal/logger"
	"github.com/spigell/resume-matcher/internal/metrics"
	"github.com/spigell/resume-matcher/internal/progress"
	"github.com/spigell/resume-matcher/internal/view"
	"github.com/spigell/resume-matcher/internal/workflow"
)

// session bundles what every command needs.
type session struct {
	logger  *zap.Logger
	config  *Config
	client  *analysis.Client
	metrics *metrics.Metrics
}

func newSession() *session {
	logger, err := logger.New(viper.GetBool("json"), viper.GetBool("debug"))
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}

	config, err := getConfig()
	if err != nil {
		logger.Fatal("getting a config", zap.Error(err))
	}

	// do not bother error since there is a valid parseable config
	pretty, _ := json.MarshalIndent(config, "", "  ")
	logger.Debug(fmt.Sprintf("starting with config: \n %s", pretty))

	client := analysis.New(logger, config.APIURL, config.Timeout)
	client.UserAgent = userAgent(config)

	return &session{
		logger:  logger,
		config:  config,
		client:  client,
		metrics: metrics.New(),
	}
}

// newController wires a workflow whose observer signals updates. Signals coalesce, so
// the receiver should read a fresh Snapshot on each one.
func (s *session) newController(ctx context.Context) (*workflow.Controller, <-chan struct{}) {
	scheduler := progress.NewScheduler()

	simulator, err := progress.New(&progress.Config{
		Interval: s.config.Progress.Interval,
		Step:     s.config.Progress.Step,
		Ceiling:  s.config.Progress.Ceiling,
	}, scheduler)
	if err != nil {
		s.logger.Fatal("configuring progress", zap.Error(err))
	}

	updates := make(chan struct{}, 1)

	controller, err := workflow.New(ctx, &workflow.Config{SettleDelay: s.config.Progress.SettleDelay}, &workflow.Deps{
		Analyzer:  s.client,
		Simulator: simulator,
		Scheduler: scheduler,
		Logger:    s.logger,
		Metrics:   s.metrics,
		Observer: func(workflow.Snapshot) {
			select {
			case updates <- struct{}{}:
			default:
			}
		},
	})
	if err != nil {
		s.logger.Fatal("creating the workflow", zap.Error(err))
	}

	return controller, updates
}

// awaitOutcome draws progress on out until the workflow leaves Submitting.
func awaitOutcome(ctx context.Context, c *workflow.Controller, updates <-chan struct{}, out io.Writer) workflow.Snapshot {
	for {
		s := c.Snapshot()

		switch s.State.Kind() {
		case workflow.Succeeded, workflow.Failed, workflow.Idle:
			fmt.Fprintln(out)
			return s
		}

		fmt.Fprintf(out, "\r%s %-32s", view.ProgressBar(s.Progress, 30), view.ProgressCaption(s.Progress))

		select {
		case <-updates:
		case <-ctx.Done():
			fmt.Fprintln(out)
			return c.Snapshot()
		}
	}
}

// report renders a terminal snapshot and returns the failure message, if any.
func report(s workflow.Snapshot, out io.Writer, color bool) (string, error) {
	if result, ok := s.State.Result(); ok {
		return "", view.Render(out, view.Build(result), view.RenderOptions{Color: color})
	}

	if message, ok := s.State.Message(); ok {
		return message, nil
	}

	return s.Error, nil
}

func (s *session) flushMetrics() {
	if err := s.metrics.WriteTextfile(s.config.MetricsTextfile); err != nil {
		s.logger.Warn("writing metrics textfile", zap.String("path", s.config.MetricsTextfile), zap.Error(err))
	}
}
