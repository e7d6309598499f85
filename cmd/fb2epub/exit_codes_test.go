package main

// Notes:
// - exitCodeFor: we test the sentinel errors from fb2epub, config and logging
//   plus wrapped errors to verify the errors.Is() chain works correctly.
// - Exit code constants: we verify Unix conventions (0=success, 1=general, 2=usage)
//   and custom codes are below 126.
// These are acceptable gaps: we test observable behavior, not implementation details.

import (
	"errors"
	"fmt"
	"os"
	"testing"

	fb2epub "github.com/alnah/go-fb2epub"
	"github.com/alnah/go-fb2epub/internal/config"
	"github.com/alnah/go-fb2epub/internal/logging"
)

// ---------------------------------------------------------------------------
// TestExitCodeFor - Error to exit code mapping
// ---------------------------------------------------------------------------

func TestExitCodeFor(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name string
		err  error
		want int
	}{
		// Success
		{"nil error", nil, ExitSuccess},

		// Document errors (exit 4)
		{"structure", fb2epub.ErrStructure, ExitDocument},
		{"lexical", fb2epub.ErrLexical, ExitDocument},
		{"assembly", fb2epub.ErrAssembly, ExitDocument},
		{"wrapped structure", fmt.Errorf("collecting structure: %w", fb2epub.ErrStructure), ExitDocument},

		// I/O errors (exit 3)
		{"file not exist", os.ErrNotExist, ExitIO},
		{"permission denied", os.ErrPermission, ExitIO},
		{"read input", ErrReadInput, ExitIO},
		{"read colophon", ErrReadColophon, ExitIO},
		{"write output", ErrWriteOutput, ExitIO},
		{"no input", ErrNoInput, ExitIO},
		{"wrapped file not exist", fmt.Errorf("%w: %w", ErrReadInput, os.ErrNotExist), ExitIO},

		// Usage/config/validation errors (exit 2)
		{"usage", ErrUsage, ExitUsage},
		{"invalid extension", ErrInvalidExtension, ExitUsage},
		{"invalid info format", ErrInvalidFormat, ExitUsage},
		{"invalid log format", logging.ErrInvalidFormat, ExitUsage},
		{"config not found", config.ErrConfigNotFound, ExitUsage},
		{"config parse", config.ErrConfigParse, ExitUsage},
		{"field too long", config.ErrFieldTooLong, ExitUsage},
		{"invalid value", config.ErrInvalidValue, ExitUsage},
		{"empty input", fb2epub.ErrEmptyInput, ExitUsage},
		{"invalid config", fb2epub.ErrInvalidConfig, ExitUsage},
		{"invalid date", fb2epub.ErrInvalidDate, ExitUsage},
		{"invalid font", fb2epub.ErrInvalidFont, ExitUsage},
		{"style not found", fb2epub.ErrStyleNotFound, ExitUsage},
		{"template set not found", fb2epub.ErrTemplateSetNotFound, ExitUsage},
		{"incomplete template set", fb2epub.ErrIncompleteTemplateSet, ExitUsage},
		{"invalid asset path", fb2epub.ErrInvalidAssetPath, ExitUsage},
		{"wrapped config", fmt.Errorf("loading config: %w", config.ErrConfigNotFound), ExitUsage},

		// General errors (exit 1)
		{"package", fb2epub.ErrPackage, ExitGeneral},
		{"colophon", fmt.Errorf("rendering: %w", fb2epub.ErrColophon), ExitGeneral},
		{"unknown", errors.New("something broke"), ExitGeneral},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := exitCodeFor(tt.err); got != tt.want {
				t.Errorf("exitCodeFor(%v) = %d, want %d", tt.err, got, tt.want)
			}
		})
	}
}

// ---------------------------------------------------------------------------
// TestExitCodeConstants - Unix conventions
// ---------------------------------------------------------------------------

func TestExitCodeConstants(t *testing.T) {
	t.Parallel()

	if ExitSuccess != 0 {
		t.Errorf("ExitSuccess = %d, want 0", ExitSuccess)
	}
	if ExitGeneral != 1 {
		t.Errorf("ExitGeneral = %d, want 1", ExitGeneral)
	}
	if ExitUsage != 2 {
		t.Errorf("ExitUsage = %d, want 2", ExitUsage)
	}

	for _, code := range []int{ExitIO, ExitDocument} {
		if code <= ExitUsage || code >= 126 {
			t.Errorf("custom exit code %d outside (2, 126)", code)
		}
	}
	if ExitIO == ExitDocument {
		t.Error("custom exit codes must be distinct")
	}
}
