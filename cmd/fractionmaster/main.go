package main

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"golang.org/x/crypto/bcrypt"

	"github.com/fractionmaster/fractionmaster/internal/account"
	"github.com/fractionmaster/fractionmaster/internal/catalog"
	"github.com/fractionmaster/fractionmaster/internal/console"
	"github.com/fractionmaster/fractionmaster/internal/countdown"
	"github.com/fractionmaster/fractionmaster/internal/i18n"
	"github.com/fractionmaster/fractionmaster/internal/model"
	"github.com/fractionmaster/fractionmaster/internal/store"
	"github.com/fractionmaster/fractionmaster/internal/tutor"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "fractionmaster",
		Short: "Fraction arithmetic tutor for the terminal",
	}

	play := playCmd()
	root.AddCommand(play, exportCmd(), importCmd(), purgeCmd())

	// Make "play" the default when no subcommand is given.
	root.RunE = play.RunE
	root.Flags().AddFlagSet(play.Flags())

	return root
}

func commonFlags(f *pflag.FlagSet, logLevel string) {
	f.String("db", "fractionmaster.db", "SQLite database path")
	f.String("log-level", logLevel, "Log level (debug, info, warn, error)")
	f.String("log-format", "text", "Log format (text, json)")
}

func playCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "play",
		Short: "Start the interactive tutor",
		RunE:  runPlay,
	}
	f := cmd.Flags()
	f.StringP("lang", "l", i18n.DefaultLanguage, "Console language ("+strings.Join(i18n.Languages(), ", ")+")")
	f.String("startup", string(model.StartupPurge), "Stored session at startup: purge (start logged out, delete all data) or resume")
	f.Int("level-seconds", 60, "Time limit per practice level attempt in seconds")
	f.Int("test-seconds", 1200, "Time limit per pre/post test in seconds")
	f.Int("bcrypt-cost", bcrypt.DefaultCost, "bcrypt cost for password hashes")
	// Log lines share the terminal with the console.
	commonFlags(f, "warn")
	return cmd
}

func exportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export learner progress and certificates as JSON",
		RunE:  runExport,
	}
	f := cmd.Flags()
	f.StringP("output", "o", "-", "Output file path (- for stdout)")
	commonFlags(f, "info")
	return cmd
}

func importCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import",
		Short: "Import accounts from a browser storage dump",
		RunE:  runImport,
	}
	f := cmd.Flags()
	f.StringP("input", "i", "-", "Dump file path (- for stdin)")
	f.Int("bcrypt-cost", bcrypt.DefaultCost, "bcrypt cost for password hashes")
	commonFlags(f, "info")
	return cmd
}

func purgeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "purge",
		Short: "Delete every account and the stored session",
		RunE:  runPurge,
	}
	commonFlags(cmd.Flags(), "info")
	return cmd
}

func setupLogging(v *viper.Viper) {
	var logLevel slog.Level
	switch strings.ToLower(v.GetString("log-level")) {
	case "debug":
		logLevel = slog.LevelDebug
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}
	handlerOpts := &slog.HandlerOptions{Level: logLevel}
	var logHandler slog.Handler
	switch strings.ToLower(v.GetString("log-format")) {
	case "json":
		logHandler = slog.NewJSONHandler(os.Stderr, handlerOpts)
	default:
		logHandler = slog.NewTextHandler(os.Stderr, handlerOpts)
	}
	slog.SetDefault(slog.New(logHandler))
}

// viperForCmd binds a command's flags and environment to a fresh viper instance.
func viperForCmd(cmd *cobra.Command) *viper.Viper {
	v := viper.New()
	_ = v.BindPFlags(cmd.Flags())

	v.SetEnvPrefix("FRACTIONMASTER")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	v.SetConfigName("fractionmaster")
	v.AddConfigPath(".")
	v.AddConfigPath("$HOME/.config/fractionmaster")
	v.AddConfigPath("/etc/fractionmaster")
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			slog.Warn("error reading config file", "error", err)
		}
	} else {
		slog.Debug("loaded config file", "path", v.ConfigFileUsed())
	}

	return v
}

// setup configures logging and opens the database named by --db.
func setup(cmd *cobra.Command) (*viper.Viper, *store.Store, error) {
	v := viperForCmd(cmd)
	setupLogging(v)

	db, err := store.New(v.GetString("db"))
	if err != nil {
		return nil, nil, fmt.Errorf("open database: %w", err)
	}
	return v, db, nil
}

func tutorConfig(v *viper.Viper) model.TutorConfig {
	startup := model.StartupPolicy(strings.ToLower(strings.TrimSpace(v.GetString("startup"))))
	if startup != model.StartupPurge && startup != model.StartupResume {
		slog.Warn("invalid startup policy, using purge", "startup", startup)
		startup = model.StartupPurge
	}
	cfg := model.TutorConfig{
		Startup:      startup,
		LevelSeconds: v.GetInt("level-seconds"),
		TestSeconds:  v.GetInt("test-seconds"),
		BcryptCost:   v.GetInt("bcrypt-cost"),
		Lang:         v.GetString("lang"),
	}
	if cfg.LevelSeconds <= 0 {
		slog.Warn("invalid level-seconds, using 60", "value", cfg.LevelSeconds)
		cfg.LevelSeconds = 60
	}
	if cfg.TestSeconds <= 0 {
		slog.Warn("invalid test-seconds, using 1200", "value", cfg.TestSeconds)
		cfg.TestSeconds = 1200
	}
	return cfg
}

func runPlay(cmd *cobra.Command, _ []string) error {
	v, db, err := setup(cmd)
	if err != nil {
		return err
	}
	defer db.Close()

	cfg := tutorConfig(v)
	tr, err := i18n.New(cfg.Lang)
	if err != nil {
		return fmt.Errorf("init i18n: %w", err)
	}
	cat, err := catalog.Load()
	if err != nil {
		return fmt.Errorf("load catalog: %w", err)
	}

	t := tutor.New(account.New(db, cfg.BcryptCost), cat, cfg)
	t.Start()

	slog.Info("starting tutor",
		"db", v.GetString("db"),
		"lang", tr.Lang(),
		"startup", cfg.Startup,
		"level_seconds", cfg.LevelSeconds,
		"test_seconds", cfg.TestSeconds,
	)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	c := console.New(t, tr, console.Config{
		LevelSeconds: cfg.LevelSeconds,
		TestSeconds:  cfg.TestSeconds,
		Tick:         countdown.Second,
	}, cmd.InOrStdin(), cmd.OutOrStdout())
	return c.Run(ctx)
}

func runExport(cmd *cobra.Command, _ []string) error {
	v, db, err := setup(cmd)
	if err != nil {
		return err
	}
	defer db.Close()

	cat, err := catalog.Load()
	if err != nil {
		return fmt.Errorf("load catalog: %w", err)
	}
	// Export reads accounts only; the bcrypt cost is irrelevant.
	export := tutor.Export(account.New(db, bcrypt.DefaultCost), cat, time.Now())

	data, err := json.MarshalIndent(export, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal JSON: %w", err)
	}

	outPath := v.GetString("output")
	var w io.Writer
	if outPath == "" || outPath == "-" {
		w = cmd.OutOrStdout()
	} else {
		f, err := os.Create(outPath)
		if err != nil {
			return fmt.Errorf("create output file: %w", err)
		}
		defer f.Close()
		w = f
	}

	_, err = w.Write(data)
	if err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	// Ensure trailing newline.
	_, _ = fmt.Fprintln(w)

	slog.Info("exported accounts", "count", len(export.Accounts), "output", outPath)
	return nil
}

func runImport(cmd *cobra.Command, _ []string) error {
	v, db, err := setup(cmd)
	if err != nil {
		return err
	}
	defer db.Close()

	inPath := v.GetString("input")
	var data []byte
	if inPath == "" || inPath == "-" {
		data, err = io.ReadAll(cmd.InOrStdin())
	} else {
		data, err = os.ReadFile(inPath)
	}
	if err != nil {
		return fmt.Errorf("read %s: %w", inPath, err)
	}

	accounts, err := account.ParseDump(data)
	if err != nil {
		return fmt.Errorf("parse %s: %w", inPath, err)
	}
	added, err := account.New(db, v.GetInt("bcrypt-cost")).Import(accounts)
	if err != nil {
		return fmt.Errorf("import accounts: %w", err)
	}
	slog.Info("imported accounts", "path", inPath, "found", len(accounts), "added", added)
	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "imported %d of %d accounts\n", added, len(accounts))
	return nil
}

func runPurge(cmd *cobra.Command, _ []string) error {
	_, db, err := setup(cmd)
	if err != nil {
		return err
	}
	defer db.Close()

	before, err := db.Count()
	if err != nil {
		return fmt.Errorf("count keys: %w", err)
	}
	account.New(db, bcrypt.DefaultCost).PurgeAll()
	after, err := db.Count()
	if err != nil {
		return fmt.Errorf("count keys: %w", err)
	}
	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "purged keys: %d\n", before-after)
	return nil
}
