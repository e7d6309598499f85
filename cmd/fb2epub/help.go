package main

import (
	"fmt"
	"io"
)

// printUsage prints the main usage message.
func printUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: fb2epub <command> [flags] [args]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  convert    Convert an FB2 book to EPUB")
	fmt.Fprintln(w, "  info       Show the structure of an FB2 book")
	fmt.Fprintln(w, "  version    Show version information")
	fmt.Fprintln(w, "  help       Show help for a command")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Run 'fb2epub help <command>' for details on a specific command.")
}

// printConvertUsage prints usage for the convert command.
func printConvertUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: fb2epub convert <input.fb2> [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Convert one FictionBook 2 file to a split EPUB.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Input/Output:")
	fmt.Fprintln(w, "  -o, --output <path>         Output .epub file or directory")
	fmt.Fprintln(w, "  -c, --config <name>         Config file name or path")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Splitting:")
	fmt.Fprintln(w, "  -m, --max-unit-size <n>     Target size of one output file")
	fmt.Fprintln(w, "      --element-cost <n>      Cost of each element toward the size")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Links:")
	fmt.Fprintln(w, "      --toc <s>               TOC entries point to: files, fragments")
	fmt.Fprintln(w, "      --fallback <s>          Unresolved links: drop, deadlink")
	fmt.Fprintln(w, "      --allow-broken-links    Warn on links to undefined ids")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Styling:")
	fmt.Fprintln(w, "      --style <s>             Style name or CSS file path")
	fmt.Fprintln(w, "      --asset-path <dir>      Custom asset directory")
	fmt.Fprintln(w, "      --font <path>           Embed a font (repeatable)")
	fmt.Fprintln(w, "      --mangle-font <path>    Embed an obfuscated font (repeatable)")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Text:")
	fmt.Fprintln(w, "      --transliterate         Cyrillic to Latin")
	fmt.Fprintln(w, "      --fold-diacritics       Strip diacritics after transliteration")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Metadata:")
	fmt.Fprintln(w, "      --date <s>              Date: \"auto\", \"auto:FORMAT\", or literal")
	fmt.Fprintln(w, "                              Presets: iso, day, month, year")
	fmt.Fprintln(w, "      --language <s>          Language when the book declares none")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Colophon:")
	fmt.Fprintln(w, "      --colophon <path>       Markdown file appended as a last page")
	fmt.Fprintln(w, "      --colophon-title <s>    TOC entry of the colophon")
	fmt.Fprintln(w, "      --code-style <s>        Highlighting style for code blocks")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Output Control:")
	fmt.Fprintln(w, "  -q, --quiet                 Only show errors")
	fmt.Fprintln(w, "  -v, --verbose               Show pass details")
	fmt.Fprintln(w, "      --log-format <s>        Log format: text, json")
	fmt.Fprintln(w, "      --log-file <path>       Also append logs to a file")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Environment:")
	fmt.Fprintln(w, "  FB2EPUB_CONFIG, FB2EPUB_STYLE, FB2EPUB_OUTPUT_DIR, FB2EPUB_MAX_UNIT_SIZE,")
	fmt.Fprintln(w, "  FB2EPUB_TOC, FB2EPUB_FALLBACK, FB2EPUB_ASSET_PATH, FB2EPUB_TRANSLITERATE,")
	fmt.Fprintln(w, "  FB2EPUB_DATE, FB2EPUB_LANGUAGE, FB2EPUB_LOG_FORMAT")
}

// printInfoUsage prints usage for the info command.
func printInfoUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: fb2epub info <input.fb2> [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Show metadata, units and binaries without converting.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Flags:")
	fmt.Fprintln(w, "  -f, --format <s>            Output format: text, yaml")
	fmt.Fprintln(w, "  -c, --config <name>         Config file name or path")
	fmt.Fprintln(w, "  -v, --verbose               Show pass details")
}

// runHelp prints help for a specific command.
func runHelp(args []string, env *Environment) int {
	if len(args) == 0 {
		printUsage(env.Stdout)
		return ExitSuccess
	}

	switch args[0] {
	case "convert":
		printConvertUsage(env.Stdout)
	case "info":
		printInfoUsage(env.Stdout)
	case "version":
		fmt.Fprintln(env.Stdout, "Usage: fb2epub version")
		fmt.Fprintln(env.Stdout)
		fmt.Fprintln(env.Stdout, "Show version information.")
	case "help":
		fmt.Fprintln(env.Stdout, "Usage: fb2epub help [command]")
		fmt.Fprintln(env.Stdout)
		fmt.Fprintln(env.Stdout, "Show help for a command.")
	default:
		fmt.Fprintf(env.Stderr, "Unknown command: %s\n", args[0])
		printUsage(env.Stderr)
		return ExitUsage
	}
	return ExitSuccess
}
