package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/spigell/resume-matcher/internal/intake"
	"github.com/spigell/resume-matcher/internal/workflow"
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Analyze a resume against a job description once and print the report",
	Run: func(cmd *cobra.Command, _ []string) {
		analyze(cmd)
	},
}

func init() {
	rootCmd.AddCommand(analyzeCmd)

	analyzeCmd.Flags().StringP("resume", "r", "", "path to the resume (PDF or DOCX)")
	analyzeCmd.Flags().StringP("job-description", "t", "", "job description text")
	analyzeCmd.Flags().StringP("job-description-file", "f", "", "file with the job description text")
	analyzeCmd.Flags().Bool("no-color", false, "disable colored output")
}

func analyze(cmd *cobra.Command) {
	ctx := context.Background()
	s := newSession()

	resumePath, _ := cmd.Flags().GetString("resume")
	jobDescription, err := jobDescriptionFromFlags(cmd)
	if err != nil {
		s.logger.Fatal("reading the job description", zap.Error(err))
	}

	controller, updates := s.newController(ctx)
	defer controller.Close()

	if resumePath != "" {
		candidate, err := intake.FromPath(resumePath)
		if err != nil {
			s.logger.Fatal("reading the resume", zap.Error(err))
		}

		if !controller.SelectFile(candidate) {
			s.logger.Debug("resume ignored", zap.String("media_type", candidate.MediaType))
		}
	}

	controller.SetJobDescription(jobDescription)

	if err := controller.Submit(); err != nil {
		var verr *workflow.ValidationError
		if errors.As(err, &verr) {
			s.flushMetrics()
			s.logger.Fatal(controller.Snapshot().Error,
				zap.Bool("missing_resume", verr.MissingFile),
				zap.Bool("missing_job_description", verr.MissingJobDescription),
			)
		}
		s.logger.Fatal("submitting the analysis", zap.Error(err))
	}

	out := cmd.OutOrStdout()
	noColor, _ := cmd.Flags().GetBool("no-color")

	final := awaitOutcome(ctx, controller, updates, cmd.ErrOrStderr())
	s.flushMetrics()

	message, err := report(final, out, !noColor)
	if err != nil {
		s.logger.Fatal("rendering the report", zap.Error(err))
	}
	if message != "" {
		s.logger.Fatal("analysis failed", zap.String("message", message), zap.String("request_id", final.RequestID))
	}
}

func jobDescriptionFromFlags(cmd *cobra.Command) (string, error) {
	text, _ := cmd.Flags().GetString("job-description")
	path, _ := cmd.Flags().GetString("job-description-file")

	if text != "" && path != "" {
		return "", errors.New("use either --job-description or --job-description-file")
	}

	if path == "" {
		return text, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read %s: %w", path, err)
	}

	return strings.TrimSpace(string(data)), nil
}
