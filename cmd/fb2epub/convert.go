package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	fb2epub "github.com/alnah/go-fb2epub"
	"github.com/alnah/go-fb2epub/internal/config"
	"github.com/alnah/go-fb2epub/internal/fileutil"
	"github.com/alnah/go-fb2epub/internal/logging"
)

// Sentinel errors for CLI operations.
var (
	ErrNoInput          = errors.New("no input specified")
	ErrReadInput        = errors.New("failed to read FB2 file")
	ErrReadColophon     = errors.New("failed to read colophon file")
	ErrWriteOutput      = errors.New("failed to write EPUB file")
	ErrInvalidExtension = errors.New("file must have .fb2 or .xml extension")
	ErrInvalidFormat    = errors.New("invalid output format")
	ErrUsage            = errors.New("invalid usage")
)

// File permission constants.
const (
	dirPermissions  = 0o750 // rwxr-x---: owner full, group read+execute
	filePermissions = 0o644 // rw-r--r--: owner read+write, others read
)

// Converter is the interface for the conversion service.
type Converter interface {
	Convert(ctx context.Context, input fb2epub.Input) (*fb2epub.Result, error)
}

// Compile-time interface implementation check.
var _ Converter = (*fb2epub.Converter)(nil)

// runConvert converts the single book named by positionalArgs.
func runConvert(ctx context.Context, positionalArgs []string, flags *convertFlags, env *Environment) error {
	inputPath, err := singleInput(positionalArgs)
	if err != nil {
		return err
	}
	if err := validateFB2Extension(inputPath); err != nil {
		return err
	}

	cfg, err := loadConfig(flags.common.config, env)
	if err != nil {
		return err
	}
	mergeFlags(flags, cfg)

	logger, cleanup, err := newLogger(flags.common, env)
	if err != nil {
		return err
	}
	defer cleanup()

	opts, err := buildOptions(cfg)
	if err != nil {
		return err
	}
	opts = append(opts, fb2epub.WithLogger(logger))

	conv, err := fb2epub.NewConverter(opts...)
	if err != nil {
		return err
	}

	outputPath, err := resolveOutputPath(inputPath, flags.output, cfg)
	if err != nil {
		return err
	}

	input, err := readInput(inputPath, cfg.Colophon.File)
	if err != nil {
		return err
	}

	start := env.Now()
	result, err := convertFile(ctx, conv, input, outputPath)
	if err != nil {
		return err
	}

	printResult(env.Stdout, outputPath, result, env.Now().Sub(start).Milliseconds(), flags.common)
	return nil
}

// singleInput returns the only positional argument.
func singleInput(args []string) (string, error) {
	switch len(args) {
	case 0:
		return "", ErrNoInput
	case 1:
		return args[0], nil
	default:
		return "", fmt.Errorf("%w: expected one input file, got %d", ErrUsage, len(args))
	}
}

// validateFB2Extension rejects files that are not FictionBook sources.
func validateFB2Extension(path string) error {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".fb2", ".xml":
		return nil
	}
	return fmt.Errorf("%w: %s", ErrInvalidExtension, path)
}

// loadConfig loads the named config, falling back to FB2EPUB_CONFIG, then
// applies the environment overrides.
func loadConfig(name string, env *Environment) (*config.Config, error) {
	envCfg := loadEnvConfig(env)
	if name == "" {
		name = envCfg.ConfigPath
	}

	cfg := config.DefaultConfig()
	if name != "" {
		var err error
		cfg, err = config.LoadConfig(name)
		if err != nil {
			return nil, fmt.Errorf("loading config: %w", err)
		}
	}

	applyEnvConfig(envCfg, cfg)
	return cfg, nil
}

// newLogger builds the logger from the common flags, falling back to
// FB2EPUB_LOG_FORMAT for the format.
func newLogger(f commonFlags, env *Environment) (*slog.Logger, func(), error) {
	format := f.logFormat
	if format == "" {
		format = env.getenv("FB2EPUB_LOG_FORMAT")
	}
	return logging.New(env.Stderr, logging.Options{
		Level:  logging.LevelFor(f.verbose, f.quiet),
		Format: format,
		File:   f.logFile,
	})
}

// mergeFlags merges CLI flags into config. CLI values override config values.
func mergeFlags(flags *convertFlags, cfg *config.Config) {
	// Split flags
	if flags.split.maxUnitSize > 0 {
		cfg.Split.MaxUnitSize = flags.split.maxUnitSize
	}
	if flags.split.elementCost != elementCostSentinel {
		cost := flags.split.elementCost
		cfg.Split.ElementCost = &cost
	}

	// Link flags
	if flags.links.toc != "" {
		cfg.TOC.Policy = flags.links.toc
	}
	if flags.links.fallback != "" {
		cfg.Links.Fallback = flags.links.fallback
	}
	if flags.links.allowBroken {
		cfg.Links.AllowBroken = true
	}

	// Asset flags
	if flags.assets.style != "" {
		cfg.Style = flags.assets.style
	}
	if flags.assets.assetPath != "" {
		cfg.Assets.BasePath = flags.assets.assetPath
	}
	if len(flags.assets.fonts) > 0 {
		cfg.Fonts.Embed = flags.assets.fonts
	}
	if len(flags.assets.mangled) > 0 {
		cfg.Fonts.Mangle = flags.assets.mangled
	}

	// Text flags
	if flags.text.transliterate {
		cfg.Transliterate.Enabled = true
	}
	if flags.text.foldDiacritics {
		cfg.Transliterate.FoldDiacritics = true
	}

	// Metadata flags
	if flags.metadata.date != "" {
		cfg.Metadata.Date = flags.metadata.date
	}
	if flags.metadata.language != "" {
		cfg.Metadata.Language = flags.metadata.language
	}

	// Colophon flags
	if flags.colophon.file != "" {
		cfg.Colophon.File = flags.colophon.file
	}
	if flags.colophon.title != "" {
		cfg.Colophon.Title = flags.colophon.title
	}
	if flags.colophon.codeStyle != "" {
		cfg.Colophon.CodeStyle = flags.colophon.codeStyle
	}
}

// buildOptions maps a merged config onto converter options.
func buildOptions(cfg *config.Config) ([]fb2epub.Option, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	var opts []fb2epub.Option
	if cfg.Split.MaxUnitSize > 0 {
		opts = append(opts, fb2epub.WithMaxUnitSize(cfg.Split.MaxUnitSize))
	}
	if cfg.Split.ElementCost != nil {
		opts = append(opts, fb2epub.WithElementCost(*cfg.Split.ElementCost))
	}
	if cfg.TOC.Policy != "" {
		p, err := fb2epub.ParseTOCPolicy(cfg.TOC.Policy)
		if err != nil {
			return nil, err
		}
		opts = append(opts, fb2epub.WithTOCPolicy(p))
	}
	if cfg.Links.Fallback != "" {
		f, err := fb2epub.ParseFallback(cfg.Links.Fallback)
		if err != nil {
			return nil, err
		}
		opts = append(opts, fb2epub.WithFallback(f))
	}
	if cfg.Links.AllowBroken {
		opts = append(opts, fb2epub.WithAllowBrokenLinks())
	}
	if cfg.Style != "" {
		opts = append(opts, fb2epub.WithStyle(cfg.Style))
	}
	if cfg.Assets.BasePath != "" {
		opts = append(opts, fb2epub.WithAssetPath(cfg.Assets.BasePath))
	}
	if len(cfg.Fonts.Embed) > 0 {
		opts = append(opts, fb2epub.WithFonts(cfg.Fonts.Embed...))
	}
	if len(cfg.Fonts.Mangle) > 0 {
		opts = append(opts, fb2epub.WithMangledFonts(cfg.Fonts.Mangle...))
	}
	if cfg.Transliterate.Enabled {
		opts = append(opts, fb2epub.WithTransliteration(cfg.Transliterate.FoldDiacritics))
	}
	if cfg.Metadata.Date != "" {
		opts = append(opts, fb2epub.WithDate(cfg.Metadata.Date))
	}
	if cfg.Metadata.Language != "" {
		opts = append(opts, fb2epub.WithLanguage(cfg.Metadata.Language))
	}
	if cfg.Colophon.Title != "" {
		opts = append(opts, fb2epub.WithColophonTitle(cfg.Colophon.Title))
	}
	if cfg.Colophon.CodeStyle != "" {
		opts = append(opts, fb2epub.WithCodeStyle(cfg.Colophon.CodeStyle))
	}
	return opts, nil
}

// resolveOutputPath determines the EPUB path for inputPath.
// Priority: -o flag > output.defaultDir > next to the source.
// An -o value ending in .epub names the file; anything else is a directory.
func resolveOutputPath(inputPath, flagOutput string, cfg *config.Config) (string, error) {
	name, err := fileutil.ReplaceExt(filepath.Base(inputPath), ".epub")
	if err != nil {
		return "", err
	}

	dir := cfg.Output.DefaultDir
	if flagOutput != "" {
		if strings.EqualFold(filepath.Ext(flagOutput), ".epub") {
			return flagOutput, nil
		}
		dir = flagOutput
	}
	if dir == "" {
		return filepath.Join(filepath.Dir(inputPath), name), nil
	}

	if err := os.MkdirAll(dir, dirPermissions); err != nil {
		return "", fmt.Errorf("%w: %w", ErrWriteOutput, err)
	}
	return filepath.Join(dir, name), nil
}

// readInput reads the FB2 source and the optional colophon.
func readInput(inputPath, colophonPath string) (fb2epub.Input, error) {
	data, err := os.ReadFile(inputPath) // #nosec G304 -- user-provided path
	if err != nil {
		return fb2epub.Input{}, fmt.Errorf("%w: %w", ErrReadInput, err)
	}

	input := fb2epub.Input{FB2: data, Name: filepath.Base(inputPath)}
	if colophonPath != "" {
		md, err := os.ReadFile(colophonPath) // #nosec G304 -- user-provided path
		if err != nil {
			return fb2epub.Input{}, fmt.Errorf("%w: %w", ErrReadColophon, err)
		}
		input.Colophon = string(md)
	}
	return input, nil
}

// convertFile runs the conversion and writes the package atomically.
// Nothing is written when the conversion fails.
func convertFile(ctx context.Context, conv Converter, input fb2epub.Input, outputPath string) (*fb2epub.Result, error) {
	result, err := conv.Convert(ctx, input)
	if err != nil {
		return nil, err
	}
	if err := fileutil.WriteAtomic(outputPath, result.EPUB, filePermissions); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrWriteOutput, err)
	}
	return result, nil
}

// printResult reports the written file and any warnings.
func printResult(w io.Writer, outputPath string, r *fb2epub.Result, ms int64, f commonFlags) {
	if f.quiet {
		return
	}
	for _, warn := range r.Warnings {
		fmt.Fprintf(w, "warning: %s\n", warn)
	}
	if f.verbose {
		fmt.Fprintf(w, "Created %s (%d files, %d images, %dms)\n", outputPath, len(r.Spine), r.Images, ms)
		return
	}
	fmt.Fprintf(w, "Created %s\n", outputPath)
}
