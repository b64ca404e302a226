// Package cmd wires the CLI surface: scout runs, the HTTP server, cache
// maintenance, and config scaffolding.
package cmd

import (
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/threadlens/threadlens/internal/config"
	"github.com/threadlens/threadlens/internal/observability"
)

const envPrefix = "THREADLENS"

var (
	cfgFile string
	verbose bool

	log *zap.Logger

	// Version info set by the main package via ldflags.
	versionInfo struct {
		Version   string
		Commit    string
		BuildDate string
	}
)

// SetVersionInfo is called by the main package to record build metadata.
func SetVersionInfo(version, commit, buildDate string) {
	versionInfo.Version = version
	versionInfo.Commit = commit
	versionInfo.BuildDate = buildDate
}

var rootCmd = &cobra.Command{
	Use:   "threadlens",
	Short: "Discover what communities are saying about a topic",
	Long: `threadlens searches public discussion communities for what people are
saying about a topic: pain points, buying signals, or general sentiment.

No credentials are required; the public JSON endpoints are fetched at a
polite pace.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $XDG_CONFIG_HOME/threadlens/config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output (sets log level to debug)")
}

// initConfig loads .env, the config file, and environment overrides, then
// initializes the CLI logger.
func initConfig() {
	// Local .env files are a convenience for API keys; absence is fine.
	_ = godotenv.Load()

	config.SetDefaults(viper.GetViper())

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath("./config")
		viper.AddConfigPath(".")
		viper.SetConfigName("threadlens")
		viper.SetConfigType("yaml")
	}

	viper.SetEnvPrefix(envPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	log = observability.NewCLILogger(verbose)

	if err := viper.ReadInConfig(); err == nil {
		log.Debug("using config file", zap.String("path", viper.ConfigFileUsed()))
	} else if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
		log.Warn("error reading config file", zap.Error(err))
	}
}
