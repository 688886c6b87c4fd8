package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	oaisim "github.com/zimeon/oaipmh-simulator"
)

var logger = zap.NewNop()

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "oaisim",
	Short: "OAI-PMH repository simulator",
	Long: `oaisim serves a small, synthetic OAI-PMH repository described in a
JSON or YAML file, so that harvesters can be tested against controlled data.

Flags can also be set with OAISIM_<FLAG> environment variables or in an
oaisim.yaml config file.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		level := oaisim.LogLevelInfo
		if viper.GetBool("debug") {
			level = oaisim.LogLevelDebug
		}
		l, err := oaisim.NewLogger(level)
		if err != nil {
			return err
		}
		logger = l
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = logger.Sync()
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main().
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)
	rootCmd.PersistentFlags().BoolP("debug", "d", false, "debug logging")
	if err := viper.BindPFlags(rootCmd.PersistentFlags()); err != nil {
		panic(err)
	}
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	if os.Getenv("OAISIM_CONFIG") != "" {
		viper.SetConfigFile(os.Getenv("OAISIM_CONFIG"))
	} else {
		viper.AddConfigPath(".")
		viper.AddConfigPath("$HOME/.oaisim")
		viper.SetConfigName("oaisim")
	}
	viper.SetEnvPrefix("OAISIM")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()
	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	} else if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
		fatal("config", err)
	}
}

// bindFlags makes the flags of cmd available as viper keys of the same
// name, so env and config file values apply.
func bindFlags(cmd *cobra.Command) {
	if err := viper.BindPFlags(cmd.Flags()); err != nil {
		panic(err)
	}
}
