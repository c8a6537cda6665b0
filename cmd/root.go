package cmd

import (
	"errors"
	"io/fs"
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/spigell/resume-matcher/internal/analysis"
)

const (
	app = "resume-matcher"
)

type Config struct {
	APIURL          string          `mapstructure:"api-url"`
	UserAgent       string          `mapstructure:"user-agent"`
	Timeout         time.Duration   `mapstructure:"timeout"`
	MetricsTextfile string          `mapstructure:"metrics-textfile"`
	Progress        *ProgressConfig `mapstructure:"progress"`
}

type ProgressConfig struct {
	Interval    time.Duration `mapstructure:"interval"`
	Step        int           `mapstructure:"step"`
	Ceiling     int           `mapstructure:"ceiling"`
	SettleDelay time.Duration `mapstructure:"settle-delay"`
}

var (
	// Used for flags.
	cfgFile string

	rootCmd = &cobra.Command{
		Use:   app,
		Short: "resume-matcher scores a resume against a job description using the analysis service",
	}
)

// Execute executes the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	// VITE_API_URL is kept for .env files shared with the web frontend.
	if err := viper.BindEnv("api-url", "API_URL", "VITE_API_URL"); err != nil {
		log.Fatalf("binding API_URL environment variable: %v", err)
	}

	viper.SetDefault("api-url", analysis.DefaultAPIURL)
	viper.SetDefault("timeout", analysis.DefaultTimeout)

	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "a config file (default is resume-matcher.yaml in current directory)")
	rootCmd.PersistentFlags().BoolP("debug", "d", false, "verbose/debug output")
	rootCmd.PersistentFlags().BoolP("json", "j", false, "json format for logging")
	rootCmd.PersistentFlags().String("api-url", "", "base URL of the analysis service (default "+analysis.DefaultAPIURL+")")

	viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))
	viper.BindPFlag("json", rootCmd.PersistentFlags().Lookup("json"))
	viper.BindPFlag("api-url", rootCmd.PersistentFlags().Lookup("api-url"))
}

func initConfig() {
	// A missing .env is fine; a broken one is not.
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Fatalf("loading .env: %v", err)
	}

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigName(app)
		viper.SetConfigType("yaml")
	}

	// The config file is optional unless it was asked for explicitly.
	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile != "" || !errors.As(err, &notFound) {
			log.Fatal(err)
		}
	}
}

func getConfig() (*Config, error) {
	var config *Config
	err := viper.Unmarshal(&config)
	if err != nil {
		return config, err
	}

	if config == nil {
		config = &Config{}
	}
	if config.Progress == nil {
		config.Progress = &ProgressConfig{}
	}

	return config, nil
}
