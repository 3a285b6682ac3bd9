// Package main provides the CLI entrypoint for morselive.
package main

import (
	"fmt"
	"os"
	"os/exec"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/verte-zerg/morselive/internal/client"
	"github.com/verte-zerg/morselive/internal/config"
	"github.com/verte-zerg/morselive/internal/input"
	"github.com/verte-zerg/morselive/internal/logging"
	"github.com/verte-zerg/morselive/internal/loop"
	"github.com/verte-zerg/morselive/internal/model"
	"github.com/verte-zerg/morselive/internal/tone"
	"github.com/verte-zerg/morselive/internal/transport"
	"github.com/verte-zerg/morselive/internal/tui"
)

var (
	deviceHost string
	devicePort int

	sessionProfile int
	sessionSpeed   int

	clientHeatmap     bool
	clientKeyboard    bool
	clientTone        bool
	clientInput       string
	clientShowAnswers bool

	toneFrequency float64
	toneVolume    float64

	logLevel string
	logPath  string
	envFile  string
)

func main() {
	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "morselive",
		Short:         "Live session client for the morse trainer",
		SilenceUsage:  true,
		SilenceErrors: false,
		RunE:          runSessionCmd,
	}

	defaults := model.DefaultConfig()
	addDeviceFlags(rootCmd, defaults)
	rootCmd.Flags().IntVar(&sessionProfile, "profile", defaults.Profile, "training profile sent on start (0-9)")
	rootCmd.Flags().IntVar(&sessionSpeed, "speed", defaults.Speed, "speed in WPM sent on start")
	rootCmd.Flags().BoolVar(&clientHeatmap, "heatmap", defaults.Capabilities.Heatmap, "show the per-character error heatmap")
	rootCmd.Flags().BoolVar(&clientKeyboard, "keyboard", defaults.Capabilities.OnscreenKeyboard, "show the on-screen keyboard")
	rootCmd.Flags().BoolVar(&clientTone, "tone", defaults.Capabilities.AudioTone, "play the sidetone")
	rootCmd.Flags().StringVar(&clientInput, "input", defaults.InputMode.String(), "input mode: keys or free")
	rootCmd.Flags().BoolVar(&clientShowAnswers, "show-answers", defaults.ShowAnswers, "show the expected character in error entries")
	rootCmd.Flags().Float64Var(&toneFrequency, "frequency", defaults.ToneFrequency, "sidetone pitch in Hz")
	rootCmd.Flags().Float64Var(&toneVolume, "volume", defaults.ToneVolume, "sidetone volume (0-1)")

	rootCmd.AddCommand(newConfigCmd())
	rootCmd.AddCommand(newStatusCmd())
	rootCmd.AddCommand(newProbsCmd())

	return rootCmd
}

func addDeviceFlags(cmd *cobra.Command, defaults model.Config) {
	cmd.PersistentFlags().StringVar(&deviceHost, "host", transport.DefaultHost, "trainer host")
	cmd.PersistentFlags().IntVar(&devicePort, "port", transport.DefaultPort, "trainer port")
	cmd.PersistentFlags().StringVar(&logLevel, "log-level", defaults.LogLevel, "log level (debug, info, warn, error)")
	cmd.PersistentFlags().StringVar(&logPath, "log-file", "", "log file (default under $XDG_STATE_HOME)")
	cmd.PersistentFlags().StringVar(&envFile, "env-file", "", "read "+config.EnvHost+"/"+config.EnvPort+" from this file instead of ./.env")
}

func runSessionCmd(cmd *cobra.Command, _ []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	logger, err := logging.New(cfg.LogPath, cfg.LogLevel)
	if err != nil {
		logErrf("logging disabled: %v\n", err)
		logger = zap.NewNop()
	}
	defer func() {
		_ = logger.Sync()
	}()
	logger.Info("starting session client",
		zap.String("url", transport.Endpoint(cfg.Host, cfg.Port)),
		zap.Stringer("input", cfg.InputMode),
		zap.Bool("heatmap", cfg.Capabilities.Heatmap),
		zap.Bool("keyboard", cfg.Capabilities.OnscreenKeyboard),
		zap.Bool("tone", cfg.Capabilities.AudioTone),
	)

	lp := &loop.TeaLoop{}
	c := client.New(cfg, client.Deps{Loop: lp, Logger: logger})
	defer c.Dispose()

	program := tea.NewProgram(tui.NewModel(c), tea.WithAltScreen())
	lp.Bind(program)
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("failed to run TUI: %w", err)
	}
	return nil
}

// resolveConfig layers defaults, the config file, the environment and
// explicitly set flags, in increasing priority.
func resolveConfig(cmd *cobra.Command) (model.Config, error) {
	fileCfg, err := config.LoadConfig(config.DefaultConfigPath())
	if err != nil {
		return model.Config{}, fmt.Errorf("failed to load config: %w", err)
	}
	envCfg, err := loadEnv(envFile)
	if err != nil {
		return model.Config{}, err
	}
	if envCfg.Host != nil {
		fileCfg.Device.Host = envCfg.Host
	}
	if envCfg.Port != nil {
		fileCfg.Device.Port = envCfg.Port
	}

	applyStringConfig(cmd, "host", &deviceHost, fileCfg.Device.Host)
	applyIntConfig(cmd, "port", &devicePort, fileCfg.Device.Port)
	applyIntConfig(cmd, "profile", &sessionProfile, fileCfg.Session.Profile)
	applyIntConfig(cmd, "speed", &sessionSpeed, fileCfg.Session.Speed)
	applyBoolConfig(cmd, "heatmap", &clientHeatmap, fileCfg.Client.Heatmap)
	applyBoolConfig(cmd, "keyboard", &clientKeyboard, fileCfg.Client.Keyboard)
	applyBoolConfig(cmd, "tone", &clientTone, fileCfg.Client.Tone)
	applyStringConfig(cmd, "input", &clientInput, fileCfg.Client.Input)
	applyBoolConfig(cmd, "show-answers", &clientShowAnswers, fileCfg.Client.ShowAnswers)
	applyFloatConfig(cmd, "frequency", &toneFrequency, fileCfg.Tone.Frequency)
	applyFloatConfig(cmd, "volume", &toneVolume, fileCfg.Tone.Volume)
	applyStringConfig(cmd, "log-level", &logLevel, fileCfg.Log.Level)
	applyStringConfig(cmd, "log-file", &logPath, fileCfg.Log.Path)

	mode, err := input.ParseMode(clientInput)
	if err != nil {
		return model.Config{}, fmt.Errorf("--input: %w", err)
	}
	if logPath == "" {
		logPath = config.DefaultLogPath()
	}
	cfg := model.Config{
		Host:    deviceHost,
		Port:    devicePort,
		Profile: sessionProfile,
		Speed:   sessionSpeed,
		Capabilities: model.Capabilities{
			Heatmap:          clientHeatmap,
			OnscreenKeyboard: clientKeyboard,
			AudioTone:        clientTone,
		},
		InputMode:     mode,
		ShowAnswers:   clientShowAnswers,
		ToneFrequency: toneFrequency,
		ToneVolume:    toneVolume,
		ToneCommand:   fileCfg.Tone.Command,
		LogLevel:      logLevel,
		LogPath:       logPath,
	}
	if err := validateConfig(cfg); err != nil {
		return model.Config{}, err
	}
	return cfg, nil
}

func loadEnv(path string) (config.EnvConfig, error) {
	if path == "" {
		return config.LoadEnv()
	}
	return config.LoadEnvFile(path)
}

func newConfigCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Create/open config file",
		Args:  cobra.NoArgs,
		RunE:  runConfigCmd,
	}
}

func runConfigCmd(_ *cobra.Command, _ []string) error {
	path := config.DefaultConfigPath()
	if _, err := config.EnsureFile(path); err != nil {
		return err
	}

	editor := strings.TrimSpace(os.Getenv("EDITOR"))
	if editor == "" {
		editor = "vi"
	}
	parts := strings.Fields(editor)
	if len(parts) == 0 {
		return fmt.Errorf("editor command is empty")
	}
	cmd := exec.Command(parts[0], append(parts[1:], path)...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("failed to open editor: %w", err)
	}
	return nil
}

func applyStringConfig(cmd *cobra.Command, name string, target, value *string) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applyIntConfig(cmd *cobra.Command, name string, target, value *int) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applyFloatConfig(cmd *cobra.Command, name string, target, value *float64) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applyBoolConfig(cmd *cobra.Command, name string, target, value *bool) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func validateConfig(cfg model.Config) error {
	if cfg.Port < 0 || cfg.Port > 65535 {
		return fmt.Errorf("--port must be between 0 and 65535")
	}
	if !model.ValidProfile(cfg.Profile) {
		return fmt.Errorf("--profile must be between 0 and %d", model.MaxProfile)
	}
	if !model.ValidSpeed(cfg.Speed) {
		return fmt.Errorf("--speed must be between %d and %d", model.MinSpeed, model.MaxSpeed)
	}
	if cfg.ToneFrequency < tone.MinFrequency || cfg.ToneFrequency > tone.MaxFrequency {
		return fmt.Errorf("--frequency must be between %d and %d", tone.MinFrequency, tone.MaxFrequency)
	}
	if cfg.ToneVolume < 0 || cfg.ToneVolume > 1 {
		return fmt.Errorf("--volume must be between 0 and 1")
	}
	return nil
}

func logErrf(format string, args ...any) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		// Best-effort logging to stderr.
		_ = err
	}
}
