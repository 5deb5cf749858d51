package cmd

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/Tiliavir/trivial-time-reconciler/internal/config"
	"github.com/Tiliavir/trivial-time-reconciler/internal/storage"
)

var rootCmd = &cobra.Command{
	Use:   "ttr",
	Short: "Trivial Time Reconciler – find GitLab work missing from Toggl",
	Long: `ttr compares your GitLab activity with your Toggl time entries, lists the
work that has no logged time and imports proposed entries back into Toggl.
Snapshots, results and the config file live in ~/.ttr/.`,
	SilenceUsage:      true,
	PersistentPreRunE: setupLogging,
}

// Execute is the entry point called from main.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("data-dir", "", "data directory (default ~/.ttr)")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "log debug output to stderr")
	_ = viper.BindPFlag("data-dir", rootCmd.PersistentFlags().Lookup("data-dir"))
	_ = viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))

	rootCmd.AddCommand(gitlabCmd)
	rootCmd.AddCommand(togglCmd)
	rootCmd.AddCommand(compareCmd)
	rootCmd.AddCommand(diffCmd)
	rootCmd.AddCommand(runCmd)
}

func initConfig() {
	viper.SetEnvPrefix("TTR")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()
}

func setupLogging(cmd *cobra.Command, args []string) error {
	level := slog.LevelInfo
	if viper.GetBool("verbose") {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
	return nil
}

// baseDir returns --data-dir (or TTR_DATA_DIR) when set, ~/.ttr otherwise.
func baseDir() (string, error) {
	if dir := viper.GetString("data-dir"); dir != "" {
		return dir, nil
	}
	return storage.BaseDir()
}

func loadConfig() (string, config.Config, error) {
	base, err := baseDir()
	if err != nil {
		return "", config.Config{}, err
	}
	cfg, err := config.Load(base)
	if err != nil {
		return base, cfg, err
	}
	slog.Debug("config loaded", "path", config.FilePath(base))
	return base, cfg, nil
}
