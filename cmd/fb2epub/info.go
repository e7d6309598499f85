package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	fb2epub "github.com/alnah/go-fb2epub"
	"github.com/alnah/go-fb2epub/internal/yamlutil"
)

// infoReport is the serialized form of fb2epub.Info.
type infoReport struct {
	Title      string       `yaml:"title"`
	Authors    []string     `yaml:"authors,omitempty"`
	Language   string       `yaml:"language,omitempty"`
	Genres     []string     `yaml:"genres,omitempty"`
	Sequence   string       `yaml:"sequence,omitempty"`
	Date       string       `yaml:"date,omitempty"`
	DocumentID string       `yaml:"documentId,omitempty"`
	Cover      string       `yaml:"cover,omitempty"`
	Units      []unitReport `yaml:"units"`
	Binaries   []string     `yaml:"binaries,omitempty"`
	Duplicates []string     `yaml:"duplicateIds,omitempty"`
	Dropped    int          `yaml:"dropped,omitempty"`
}

type unitReport struct {
	Type   string `yaml:"type"`
	Body   string `yaml:"body"`
	Depth  int    `yaml:"depth"`
	Size   int    `yaml:"size"`
	Title  string `yaml:"title,omitempty"`
	Anchor string `yaml:"anchor,omitempty"`
}

// runInfo prints the structure of one book without converting it.
func runInfo(ctx context.Context, positionalArgs []string, flags *infoFlags, env *Environment) error {
	format := strings.ToLower(flags.format)
	if format != "text" && format != "yaml" {
		return fmt.Errorf("%w: %q (must be text or yaml)", ErrInvalidFormat, flags.format)
	}

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
	opts, err := buildOptions(cfg)
	if err != nil {
		return err
	}

	logger, cleanup, err := newLogger(flags.common, env)
	if err != nil {
		return err
	}
	defer cleanup()
	opts = append(opts, fb2epub.WithLogger(logger))

	conv, err := fb2epub.NewConverter(opts...)
	if err != nil {
		return err
	}

	data, err := os.ReadFile(inputPath) // #nosec G304 -- user-provided path
	if err != nil {
		return fmt.Errorf("%w: %w", ErrReadInput, err)
	}

	info, err := conv.Inspect(ctx, data)
	if err != nil {
		return err
	}

	report := newInfoReport(info)
	if format == "yaml" {
		out, err := yamlutil.Marshal(report)
		if err != nil {
			return err
		}
		_, err = env.Stdout.Write(out)
		return err
	}
	printInfoText(env.Stdout, report)
	return nil
}

func newInfoReport(info *fb2epub.Info) *infoReport {
	b := info.Book
	r := &infoReport{
		Title:      b.Title,
		Authors:    b.Authors,
		Language:   b.Language,
		Genres:     b.Genres,
		Date:       b.Date,
		DocumentID: b.DocumentID,
		Cover:      b.CoverImage,
		Units:      make([]unitReport, len(info.Units)),
		Duplicates: info.Duplicates,
		Dropped:    info.Dropped,
	}
	if b.Sequence != "" {
		r.Sequence = strings.TrimSpace(b.Sequence + " " + b.SequenceNumber)
	}
	for i, u := range info.Units {
		r.Units[i] = unitReport{
			Type:   u.Type,
			Body:   u.Body,
			Depth:  u.Depth,
			Size:   u.Size,
			Title:  u.Title,
			Anchor: u.Anchor,
		}
	}
	for _, bin := range info.Binaries {
		r.Binaries = append(r.Binaries, fmt.Sprintf("%s (%s, %d bytes)", bin.ID, bin.ContentType, bin.Size))
	}
	return r
}

func printInfoText(w io.Writer, r *infoReport) {
	fmt.Fprintf(w, "Title:    %s\n", r.Title)
	if len(r.Authors) > 0 {
		fmt.Fprintf(w, "Authors:  %s\n", strings.Join(r.Authors, ", "))
	}
	if r.Language != "" {
		fmt.Fprintf(w, "Language: %s\n", r.Language)
	}
	if r.Sequence != "" {
		fmt.Fprintf(w, "Sequence: %s\n", r.Sequence)
	}
	if r.Date != "" {
		fmt.Fprintf(w, "Date:     %s\n", r.Date)
	}
	if r.DocumentID != "" {
		fmt.Fprintf(w, "ID:       %s\n", r.DocumentID)
	}

	fmt.Fprintf(w, "\nUnits (%d):\n", len(r.Units))
	for _, u := range r.Units {
		indent := strings.Repeat("  ", u.Depth)
		fmt.Fprintf(w, "  %s%s/%s %q (%d)\n", indent, u.Type, u.Body, u.Title, u.Size)
	}

	if len(r.Binaries) > 0 {
		fmt.Fprintf(w, "\nBinaries (%d):\n", len(r.Binaries))
		for _, b := range r.Binaries {
			fmt.Fprintf(w, "  %s\n", b)
		}
	}
	if len(r.Duplicates) > 0 {
		fmt.Fprintf(w, "\nDuplicate ids: %s\n", strings.Join(r.Duplicates, ", "))
	}
	if r.Dropped > 0 {
		fmt.Fprintf(w, "\nDropped content: %d\n", r.Dropped)
	}
}
