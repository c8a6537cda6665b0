package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/spigell/resume-matcher/internal/intake"
	"github.com/spigell/resume-matcher/internal/workflow"
)

const (
	PromptSelectResume       = "Select resume"
	PromptJobDescription     = "Enter job description"
	PromptJobDescriptionFile = "Load job description from file"
	PromptAnalyze            = "Analyze"
	PromptQuit               = "Quit"
)

var errExit = errors.New("exit requested")

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the interactive resume matcher",
	Run: func(cmd *cobra.Command, _ []string) {
		run(cmd)
	},
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().Bool("no-color", false, "disable colored output")
}

// run is the interactive screen: pick a file, type a job description, analyze, repeat.
func run(cmd *cobra.Command) {
	ctx := context.Background()
	s := newSession()

	s.logger.Info("starting the resume-matcher", zap.String("version", version), zap.String("api_url", s.client.APIURL))

	controller, updates := s.newController(ctx)
	defer controller.Close()
	defer s.flushMetrics()

	noColor, _ := cmd.Flags().GetBool("no-color")
	out := cmd.OutOrStdout()

	for {
		snapshot := controller.Snapshot()
		printStatus(out, snapshot)

		prompt := promptui.Select{
			Label: "What next?",
			Items: menuItems(snapshot),
		}

		_, action, err := prompt.Run()
		if err != nil {
			if errors.Is(err, promptui.ErrInterrupt) || errors.Is(err, promptui.ErrEOF) {
				return
			}
			s.logger.Error("reading the menu", zap.Error(err))
			return
		}

		if err := handleAction(ctx, action, controller, updates, out, !noColor); err != nil {
			if errors.Is(err, errExit) {
				s.logger.Info("exiting", zap.String("reason", "quit requested"))
				return
			}
			if errors.Is(err, promptui.ErrInterrupt) || errors.Is(err, promptui.ErrAbort) {
				continue
			}
			s.logger.Warn("action failed", zap.String("action", action), zap.Error(err))
		}
	}
}

func menuItems(s workflow.Snapshot) []string {
	items := []string{PromptSelectResume, PromptJobDescription, PromptJobDescriptionFile}
	if s.CanSubmit {
		items = append(items, PromptAnalyze)
	}
	return append(items, PromptQuit)
}

func handleAction(ctx context.Context, action string, c *workflow.Controller, updates <-chan struct{}, out io.Writer, color bool) error {
	switch action {
	case PromptSelectResume:
		path, err := (&promptui.Prompt{Label: "Path to resume (PDF or DOCX)", Validate: validatePath}).Run()
		if err != nil {
			return err
		}
		candidate, err := intake.FromPath(strings.TrimSpace(path))
		if err != nil {
			return err
		}
		c.SelectFile(candidate)
		return nil
	case PromptJobDescription:
		text, err := (&promptui.Prompt{Label: "Job description"}).Run()
		if err != nil {
			return err
		}
		c.SetJobDescription(text)
		return nil
	case PromptJobDescriptionFile:
		path, err := (&promptui.Prompt{Label: "Path to job description", Validate: validatePath}).Run()
		if err != nil {
			return err
		}
		data, err := os.ReadFile(strings.TrimSpace(path))
		if err != nil {
			return fmt.Errorf("read job description: %w", err)
		}
		c.SetJobDescription(strings.TrimSpace(string(data)))
		return nil
	case PromptAnalyze:
		return submit(ctx, c, updates, out, color)
	case PromptQuit:
		return errExit
	default:
		return fmt.Errorf("invalid action: %s", action)
	}
}

func submit(ctx context.Context, c *workflow.Controller, updates <-chan struct{}, out io.Writer, color bool) error {
	err := c.Submit()

	var verr *workflow.ValidationError
	if errors.As(err, &verr) {
		// the refusal message is part of the status line
		return nil
	}
	if err != nil {
		return err
	}

	final := awaitOutcome(ctx, c, updates, out)

	_, err = report(final, out, color)
	return err
}

func validatePath(input string) error {
	info, err := os.Stat(strings.TrimSpace(input))
	if err != nil {
		return err
	}
	if info.IsDir() {
		return errors.New("is a directory")
	}
	return nil
}

func printStatus(out io.Writer, s workflow.Snapshot) {
	file := "none"
	if s.File != nil {
		file = s.File.Name
	}

	jd := "empty"
	if text := strings.TrimSpace(s.JobDescription); text != "" {
		jd = fmt.Sprintf("%d chars", len([]rune(text)))
	}

	fmt.Fprintf(out, "\nResume: %s | Job description: %s | State: %s\n", file, jd, s.State)
	if s.Error != "" {
		fmt.Fprintf(out, "%s %s\n", promptui.IconBad, s.Error)
	}
}
