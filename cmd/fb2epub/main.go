package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"slices"
	"strings"

	flag "github.com/spf13/pflag"
	"go.uber.org/automaxprocs/maxprocs"

	fb2epub "github.com/alnah/go-fb2epub"
	"github.com/alnah/go-fb2epub/internal/assets"
	"github.com/alnah/go-fb2epub/internal/config"
	"github.com/alnah/go-fb2epub/internal/hints"
)

// Version is set at build time via ldflags.
var Version = "dev"

func main() {
	// Error ignored: maxprocs.Set only fails if GOMAXPROCS env is invalid,
	// in which case Go runtime defaults apply and the program continues safely.
	if slices.Contains(os.Args[1:], "-v") || slices.Contains(os.Args[1:], "--verbose") {
		_, _ = maxprocs.Set(maxprocs.Logger(func(format string, args ...interface{}) {
			fmt.Fprintf(os.Stderr, format+"\n", args...)
		}))
	} else {
		_, _ = maxprocs.Set(maxprocs.Logger(func(string, ...interface{}) {}))
	}

	os.Exit(runMain(os.Args, DefaultEnv()))
}

// runMain dispatches the command in args and returns the exit code.
// A bare input file is shorthand for "convert".
func runMain(args []string, env *Environment) int {
	if len(args) < 2 {
		printUsage(env.Stderr)
		return ExitUsage
	}

	ctx, stop := notifyContext(context.Background())
	defer stop()

	warnUnknownEnvVars(env, env.Stderr)

	cmd, rest := args[1], args[2:]
	var err error
	switch {
	case cmd == "convert":
		err = convertCmd(ctx, rest, env)
	case cmd == "info":
		err = infoCmd(ctx, rest, env)
	case cmd == "version":
		fmt.Fprintf(env.Stdout, "fb2epub %s\n", Version)
		return ExitSuccess
	case cmd == "help":
		return runHelp(rest, env)
	case cmd == "-h" || cmd == "--help":
		printUsage(env.Stdout)
		return ExitSuccess
	case strings.HasPrefix(cmd, "-") || validateFB2Extension(cmd) == nil:
		err = convertCmd(ctx, args[1:], env)
	default:
		fmt.Fprintf(env.Stderr, "Unknown command: %s\n", cmd)
		printUsage(env.Stderr)
		return ExitUsage
	}

	if err != nil {
		fmt.Fprintf(env.Stderr, "error: %v%s\n", err, hintFor(err))
		return exitCodeFor(err)
	}
	return ExitSuccess
}

func convertCmd(ctx context.Context, args []string, env *Environment) error {
	flags, positional, err := parseConvertFlags(args, env.Stderr)
	if err != nil {
		return parseError(err)
	}
	return runConvert(ctx, positional, flags, env)
}

func infoCmd(ctx context.Context, args []string, env *Environment) error {
	flags, positional, err := parseInfoFlags(args, env.Stderr)
	if err != nil {
		return parseError(err)
	}
	return runInfo(ctx, positional, flags, env)
}

// parseError tags flag errors as usage errors. -h already printed usage.
func parseError(err error) error {
	if errors.Is(err, flag.ErrHelp) {
		return nil
	}
	return fmt.Errorf("%w: %w", ErrUsage, err)
}

// hintFor returns an actionable hint for err, or "".
func hintFor(err error) string {
	switch {
	case errors.Is(err, config.ErrConfigNotFound):
		return hints.ForConfigNotFound(config.SearchPaths("fb2epub"))
	case errors.Is(err, fb2epub.ErrStyleNotFound):
		return hints.ForStyleNotFound(assets.EmbeddedStyles())
	case errors.Is(err, fb2epub.ErrInvalidFont):
		return hints.ForFont()
	case errors.Is(err, fb2epub.ErrAssembly):
		return hints.ForBrokenLink()
	case errors.Is(err, fb2epub.ErrStructure), errors.Is(err, fb2epub.ErrLexical):
		return hints.ForMalformedDocument()
	case errors.Is(err, ErrWriteOutput):
		return hints.ForOutputDirectory()
	}
	return ""
}
