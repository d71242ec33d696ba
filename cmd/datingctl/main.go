// Command datingctl is a terminal client for the dating API.
package main

import (
	"errors"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var cfgFile string

func main() {
	rootCmd := &cobra.Command{
		Use:           "datingctl",
		Short:         "Swipe, match and chat from the terminal",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return initConfig()
		},
	}

	setupFlags(rootCmd)
	rootCmd.AddCommand(
		signupCmd(), signinCmd(), signoutCmd(),
		profileCmd(), candidatesCmd(),
		likeCmd(), passCmd(), matchesCmd(),
		sendCmd(), threadCmd(), chatsCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func setupFlags(cmd *cobra.Command) {
	viper.SetDefault("server", "127.0.0.1:50051")
	viper.SetDefault("session_file", defaultSessionPath())
	viper.SetDefault("log_level", "warn")

	cmd.PersistentFlags().StringVar(&cfgFile, "config", "", "Path to configuration file")
	cmd.PersistentFlags().String("server", viper.GetString("server"), "gRPC server address")
	cmd.PersistentFlags().String("session-file", viper.GetString("session_file"), "Where the signed-in session is kept")
	cmd.PersistentFlags().String("log-level", viper.GetString("log_level"), "Log level (debug, info, warn, error)")

	bindFlag(cmd, "server", "server")
	bindFlag(cmd, "session_file", "session-file")
	bindFlag(cmd, "log_level", "log-level")

	viper.SetEnvPrefix("DATINGCTL")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()
}

func bindFlag(cmd *cobra.Command, key, flag string) {
	if err := viper.BindPFlag(key, cmd.PersistentFlags().Lookup(flag)); err != nil {
		panic(err)
	}
}

func initConfig() error {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("datingctl")
		viper.AddConfigPath(configDir())
	}

	if err := viper.ReadInConfig(); err != nil {
		var configNotFound viper.ConfigFileNotFoundError
		if cfgFile != "" || !errors.As(err, &configNotFound) {
			return err
		}
	}
	return nil
}
