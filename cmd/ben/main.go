package main

import (
	"errors"
	"os"
	"strings"

	"github.com/mitchellh/go-homedir"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

var cfgFile string

var rootCmd = &cobra.Command{
	Use:           "ben",
	Short:         "Run and inspect ben bytecode programs",
	Long:          "Run, disassemble, step through and trace compiled ben bytecode (.json or .cbor).",
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		processGlobalFlags()
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.SetVersionTemplate("ben {{.Version}} (" + commit + ", " + date + ")\n")

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&cfgFile, "config", "", "config file (default is $HOME/.ben.yaml)")
	flags.Bool("no-color", false, "Disable colored output")
	flags.String("log-level", "warn", "Log level: trace, debug, info, warn, error")
	viper.BindPFlag("no-color", flags.Lookup("no-color"))
	viper.BindPFlag("log-level", flags.Lookup("log-level"))

	rootCmd.AddCommand(runCmd, disCmd, debugCmd, convertCmd, traceCmd)
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := homedir.Dir()
		if err != nil {
			fatal(err)
		}
		viper.AddConfigPath(home)
		viper.SetConfigType("yaml")
		viper.SetConfigName(".ben")
	}

	viper.SetEnvPrefix("ben")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile != "" || !errors.As(err, &notFound) {
			fatal(err)
		}
	}
}

// bindFlags binds a command's local flags to viper just before it runs, so
// commands sharing a flag name don't overwrite each other's binding.
func bindFlags(cmd *cobra.Command, args []string) error {
	return viper.BindPFlags(cmd.LocalFlags())
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		if !errors.Is(err, errCrashed) {
			fatal(err)
		}
		os.Exit(1)
	}
}
