package main

import (
	"io"

	flag "github.com/spf13/pflag"
)

// elementCostSentinel detects if --element-cost was explicitly set.
// Since 0 is a valid cost (count text only), we use a negative sentinel.
const elementCostSentinel = -1

// commonFlags holds flags shared across commands.
type commonFlags struct {
	config    string
	quiet     bool
	verbose   bool
	logFormat string
	logFile   string
}

// splitFlags holds the split policy flags.
type splitFlags struct {
	maxUnitSize int
	elementCost int
}

// linkFlags holds navigation and reference flags.
type linkFlags struct {
	toc         string
	fallback    string
	allowBroken bool
}

// assetFlags holds asset-related flags (CSS, custom asset path, fonts).
type assetFlags struct {
	style     string   // Name, path or raw CSS
	assetPath string   // Override asset directory
	fonts     []string // Embedded as is
	mangled   []string // Obfuscated
}

// textFlags holds text rewriting flags.
type textFlags struct {
	transliterate  bool
	foldDiacritics bool
}

// metadataFlags holds publication metadata overrides.
type metadataFlags struct {
	date     string
	language string
}

// colophonFlags holds the appended Markdown page flags.
type colophonFlags struct {
	file      string
	title     string
	codeStyle string
}

// convertFlags holds all flags for the convert command.
type convertFlags struct {
	common   commonFlags
	output   string
	split    splitFlags
	links    linkFlags
	assets   assetFlags
	text     textFlags
	metadata metadataFlags
	colophon colophonFlags
}

// infoFlags holds flags for the info command.
type infoFlags struct {
	common commonFlags
	format string
}

// addCommonFlags adds common flags to a FlagSet.
func addCommonFlags(fs *flag.FlagSet, f *commonFlags) {
	fs.StringVarP(&f.config, "config", "c", "", "config file name or path")
	fs.BoolVarP(&f.quiet, "quiet", "q", false, "only show errors")
	fs.BoolVarP(&f.verbose, "verbose", "v", false, "show pass details")
	fs.StringVar(&f.logFormat, "log-format", "", "log format: text, json")
	fs.StringVar(&f.logFile, "log-file", "", "also append logs to this file")
}

// addSplitFlags adds split policy flags to a FlagSet.
func addSplitFlags(fs *flag.FlagSet, f *splitFlags) {
	fs.IntVarP(&f.maxUnitSize, "max-unit-size", "m", 0, "target size of an output file (0 = default)")
	fs.IntVar(&f.elementCost, "element-cost", elementCostSentinel, "cost of each element toward the size")
}

// addLinkFlags adds navigation and reference flags to a FlagSet.
func addLinkFlags(fs *flag.FlagSet, f *linkFlags) {
	fs.StringVar(&f.toc, "toc", "", "TOC entries point to: files, fragments")
	fs.StringVar(&f.fallback, "fallback", "", "unresolved links: drop, deadlink")
	fs.BoolVar(&f.allowBroken, "allow-broken-links", false, "warn on links to undefined ids")
}

// addAssetFlags adds asset-related flags to a FlagSet.
func addAssetFlags(fs *flag.FlagSet, f *assetFlags) {
	fs.StringVar(&f.style, "style", "", "CSS style name or file path")
	fs.StringVar(&f.assetPath, "asset-path", "", "custom asset directory")
	fs.StringArrayVar(&f.fonts, "font", nil, "font file to embed (repeatable)")
	fs.StringArrayVar(&f.mangled, "mangle-font", nil, "font file to embed obfuscated (repeatable)")
}

// addTextFlags adds text rewriting flags to a FlagSet.
func addTextFlags(fs *flag.FlagSet, f *textFlags) {
	fs.BoolVar(&f.transliterate, "transliterate", false, "transliterate Cyrillic text to Latin")
	fs.BoolVar(&f.foldDiacritics, "fold-diacritics", false, "strip diacritics after transliteration")
}

// addMetadataFlags adds metadata override flags to a FlagSet.
func addMetadataFlags(fs *flag.FlagSet, f *metadataFlags) {
	fs.StringVar(&f.date, "date", "", "publication date (\"auto\" = today)")
	fs.StringVar(&f.language, "language", "", "language when the book declares none")
}

// addColophonFlags adds colophon flags to a FlagSet.
func addColophonFlags(fs *flag.FlagSet, f *colophonFlags) {
	fs.StringVar(&f.file, "colophon", "", "Markdown file appended as a last page")
	fs.StringVar(&f.title, "colophon-title", "", "TOC entry of the colophon")
	fs.StringVar(&f.codeStyle, "code-style", "", "highlighting style for colophon code")
}

// parseConvertFlags parses convert command flags and returns positional args.
func parseConvertFlags(args []string, usage io.Writer) (*convertFlags, []string, error) {
	fs := flag.NewFlagSet("convert", flag.ContinueOnError)
	fs.SetOutput(usage)
	f := &convertFlags{}

	fs.StringVarP(&f.output, "output", "o", "", "output file or directory")

	// Flag groups
	addCommonFlags(fs, &f.common)
	addSplitFlags(fs, &f.split)
	addLinkFlags(fs, &f.links)
	addAssetFlags(fs, &f.assets)
	addTextFlags(fs, &f.text)
	addMetadataFlags(fs, &f.metadata)
	addColophonFlags(fs, &f.colophon)

	fs.Usage = func() { printConvertUsage(usage) }

	if err := fs.Parse(args); err != nil {
		return nil, nil, err
	}

	return f, fs.Args(), nil
}

// parseInfoFlags parses info command flags and returns positional args.
func parseInfoFlags(args []string, usage io.Writer) (*infoFlags, []string, error) {
	fs := flag.NewFlagSet("info", flag.ContinueOnError)
	fs.SetOutput(usage)
	f := &infoFlags{}

	fs.StringVarP(&f.format, "format", "f", "text", "output format: text, yaml")
	addCommonFlags(fs, &f.common)

	fs.Usage = func() { printInfoUsage(usage) }

	if err := fs.Parse(args); err != nil {
		return nil, nil, err
	}

	return f, fs.Args(), nil
}
