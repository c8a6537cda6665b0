package cmd

import (
	"context"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Check that the analysis service is reachable",
	Run: func(_ *cobra.Command, _ []string) {
		health()
	},
}

func init() {
	rootCmd.AddCommand(healthCmd)
}

func health() {
	s := newSession()

	status, err := s.client.Health(context.Background())
	if err != nil {
		s.logger.Fatal("analysis service is not healthy", zap.String("api_url", s.client.APIURL), zap.Error(err))
	}

	s.logger.Info("analysis service is healthy", zap.String("api_url", s.client.APIURL), zap.String("status", status.Status))
}
