// Package main provides the entry point for the narrate CLI.
package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/caarlos0/env/v11"
	"github.com/charmbracelet/log"
	gap "github.com/muesli/go-app-paths"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/dgnsrekt/narrate/internal/audio"
	"github.com/dgnsrekt/narrate/internal/engine"
	"github.com/dgnsrekt/narrate/internal/pipeline"
	"github.com/dgnsrekt/narrate/internal/text"
)

var (
	// Version as provided by goreleaser.
	Version = ""
	// CommitSHA as provided by goreleaser.
	CommitSHA = ""

	configFile    string
	outputPath    string
	engineName    string
	language      string
	maxChunkChars int
	debug         bool

	rootCmd = &cobra.Command{
		Use:   "narrate [PDF]",
		Short: "Turn a PDF into an MP3 audiobook",
		Long: paragraph(
			fmt.Sprintf("\nTurn a PDF into an %s, right from the command line.", keyword("MP3 audiobook")),
		),
		SilenceErrors:    false,
		SilenceUsage:     true,
		TraverseChildren: true,
		Args:             cobra.MaximumNArgs(1),
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return validateOptions(cmd)
		},
		RunE: execute,
	}
)

// envConfig holds environment-only settings, parsed the same way every
// run regardless of flags or config file.
type envConfig struct {
	Debug   bool   `env:"NARRATE_DEBUG"`
	LogFile string `env:"NARRATE_LOGFILE"`
}

func validateOptions(_ *cobra.Command) error {
	engineName = viper.GetString("engine")
	language = viper.GetString("language")
	maxChunkChars = viper.GetInt("max-chunk-chars")
	debug = viper.GetBool("debug")

	cfg, err := env.ParseAs[envConfig]()
	if err != nil {
		return fmt.Errorf("error parsing environment: %w", err)
	}
	if cfg.Debug {
		debug = true
	}
	if err := setupLog(cfg.LogFile); err != nil {
		return err
	}

	switch engineName {
	case "", "say", "sapi", "gtts", "mock":
	default:
		return fmt.Errorf("unknown engine %q (want say, sapi, gtts or mock)", engineName)
	}

	if maxChunkChars < 1 {
		return fmt.Errorf("max-chunk-chars must be positive, got %d", maxChunkChars)
	}
	if len(language) < 2 || len(language) > 5 {
		return fmt.Errorf("language code must be 2-5 characters, got %q", language)
	}
	return nil
}

// resolveInput returns the PDF to convert: the explicit argument when
// given, otherwise the single *.pdf discovered next to the user.
func resolveInput(args []string) (string, error) {
	if len(args) == 1 {
		path := args[0]
		info, err := os.Stat(path)
		if err != nil {
			return "", fmt.Errorf("unable to open file: %w", err)
		}
		if info.IsDir() {
			return "", fmt.Errorf("%s is a directory, not a PDF", path)
		}
		if !strings.EqualFold(filepath.Ext(path), ".pdf") {
			return "", fmt.Errorf("%s is not a PDF file", path)
		}
		return path, nil
	}
	return discoverPDF()
}

// discoverPDF searches the working directory and the directory holding the
// binary for PDFs. Exactly one match is required; anything else needs an
// explicit argument.
func discoverPDF() (string, error) {
	var dirs []string
	if cwd, err := os.Getwd(); err == nil {
		dirs = append(dirs, cwd)
	}
	if exe, err := os.Executable(); err == nil {
		dirs = append(dirs, filepath.Dir(exe))
	}

	seen := make(map[string]bool)
	var matches []string
	for _, dir := range dirs {
		found, err := filepath.Glob(filepath.Join(dir, "*.pdf"))
		if err != nil {
			continue
		}
		for _, path := range found {
			abs, err := filepath.Abs(path)
			if err != nil {
				continue
			}
			if !seen[abs] {
				seen[abs] = true
				matches = append(matches, abs)
			}
		}
	}
	sort.Strings(matches)

	switch len(matches) {
	case 0:
		return "", errors.New("no PDF found; pass one as an argument")
	case 1:
		log.Info("found PDF", "path", matches[0])
		return matches[0], nil
	default:
		return "", fmt.Errorf("found %d PDFs (%s); pass one as an argument",
			len(matches), strings.Join(matches, ", "))
	}
}

// defaultOutputPath derives book.mp3 from book.pdf, next to the input.
func defaultOutputPath(pdfPath string) string {
	return strings.TrimSuffix(pdfPath, filepath.Ext(pdfPath)) + ".mp3"
}

func execute(cmd *cobra.Command, args []string) error {
	pdfPath, err := resolveInput(args)
	if err != nil {
		return err
	}

	outPath := outputPath
	if outPath == "" {
		outPath = defaultOutputPath(pdfPath)
	}

	if err := audio.CheckFFmpeg(engine.FFmpegInstallHint()); err != nil {
		return err
	}

	ctx := cmd.Context()
	eng, err := engine.NewSelector(language).Select(ctx, engineName)
	if err != nil {
		return err
	}
	log.Info("using speech engine", "engine", eng.Name())

	converter := pipeline.NewConverter(eng, audio.NewAssembler(audio.FFmpeg{}))
	converter.MaxChunkChars = maxChunkChars

	if err := converter.ConvertFile(ctx, pdfPath, outPath); err != nil {
		return err
	}

	fmt.Println("Wrote audiobook to:", outPath)
	return nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	tryLoadConfigFromDefaultPlaces()
	if len(CommitSHA) >= 7 {
		vt := rootCmd.VersionTemplate()
		rootCmd.SetVersionTemplate(vt[:len(vt)-1] + " (" + CommitSHA[0:7] + ")\n")
	}
	if Version == "" {
		Version = "unknown (built from source)"
	}
	rootCmd.Version = Version
	rootCmd.InitDefaultCompletionCmd()

	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", fmt.Sprintf("config file (default %s)", viper.GetViper().ConfigFileUsed()))
	rootCmd.Flags().StringVarP(&outputPath, "output", "o", "", "output MP3 path (default: input name with .mp3)")
	rootCmd.Flags().StringVarP(&engineName, "engine", "e", "", "speech engine (say/sapi/gtts, default: auto-detect)")
	rootCmd.Flags().StringVarP(&language, "lang", "l", engine.DefaultLanguage, "language code for the gtts engine")
	rootCmd.Flags().IntVar(&maxChunkChars, "max-chunk-chars", text.DefaultMaxChunkChars, "maximum characters per synthesis chunk")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")

	_ = viper.BindPFlag("engine", rootCmd.Flags().Lookup("engine"))
	_ = viper.BindPFlag("language", rootCmd.Flags().Lookup("lang"))
	_ = viper.BindPFlag("max-chunk-chars", rootCmd.Flags().Lookup("max-chunk-chars"))
	_ = viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))

	viper.SetDefault("engine", "")
	viper.SetDefault("language", engine.DefaultLanguage)
	viper.SetDefault("max-chunk-chars", text.DefaultMaxChunkChars)

	rootCmd.AddCommand(configCmd, manCmd, serveCmd, depsCmd)
}

func tryLoadConfigFromDefaultPlaces() {
	scope := gap.NewScope(gap.User, "narrate")
	dirs, err := scope.ConfigDirs()
	if err != nil {
		fmt.Println("Could not find configuration directory.")
		os.Exit(1)
	}

	if c := os.Getenv("XDG_CONFIG_HOME"); c != "" {
		dirs = append([]string{filepath.Join(c, "narrate")}, dirs...)
	}

	if c := os.Getenv("NARRATE_CONFIG_HOME"); c != "" {
		dirs = append([]string{c}, dirs...)
	}

	for _, v := range dirs {
		viper.AddConfigPath(v)
	}

	viper.SetConfigName("narrate")
	viper.SetConfigType("yaml")
	viper.SetEnvPrefix("narrate")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			log.Warn("Could not parse configuration file", "err", err)
		}
	}

	if used := viper.ConfigFileUsed(); used != "" {
		log.Debug("Using configuration file", "path", viper.ConfigFileUsed())
		return
	}

	if viper.ConfigFileUsed() == "" {
		configFile = filepath.Join(dirs[0], "narrate.yml")
	}
	if err := ensureConfigFile(); err != nil {
		log.Error("Could not create default configuration", "error", err)
	}
}
