package yamlutil_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/alnah/go-fb2epub/internal/yamlutil"
)

type testConfig struct {
	Name    string   `yaml:"name"`
	Size    int      `yaml:"size"`
	Enabled bool     `yaml:"enabled"`
	Fonts   []string `yaml:"fonts"`
}

func TestUnmarshal(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		data    string
		dest    func() any
		wantErr error
		check   func(t *testing.T, v any)
	}{
		{
			name: "valid document",
			data: "name: book\nsize: 42\nenabled: true\nfonts:\n  - a.ttf\n",
			dest: func() any { return &testConfig{} },
			check: func(t *testing.T, v any) {
				cfg := v.(*testConfig)
				if cfg.Name != "book" || cfg.Size != 42 || !cfg.Enabled || len(cfg.Fonts) != 1 {
					t.Errorf("decoded = %+v", cfg)
				}
			},
		},
		{
			name: "unknown fields ignored",
			data: "name: book\nextra: 1\n",
			dest: func() any { return &testConfig{} },
		},
		{
			name: "unicode",
			data: "name: Война и мир\n",
			dest: func() any { return &testConfig{} },
			check: func(t *testing.T, v any) {
				if got := v.(*testConfig).Name; got != "Война и мир" {
					t.Errorf("Name = %q", got)
				}
			},
		},
		{name: "empty data", data: "", dest: func() any { return &testConfig{} }, wantErr: yamlutil.ErrNilData},
		{name: "nil destination", data: "name: x\n", dest: func() any { return nil }, wantErr: yamlutil.ErrNilDestination},
		{name: "type mismatch", data: "size: many\n", dest: func() any { return &testConfig{} }, wantErr: yamlutil.ErrParse},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			dest := tt.dest()
			err := yamlutil.Unmarshal([]byte(tt.data), dest)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("Unmarshal() error = %v, want %v", err, tt.wantErr)
			}
			if tt.check != nil {
				tt.check(t, dest)
			}
		})
	}
}

func TestUnmarshalStrict(t *testing.T) {
	t.Parallel()

	var cfg testConfig
	if err := yamlutil.UnmarshalStrict([]byte("name: strict\n"), &cfg); err != nil {
		t.Fatalf("UnmarshalStrict() error = %v", err)
	}

	err := yamlutil.UnmarshalStrict([]byte("name: x\nunknown: 1\n"), &cfg)
	if !errors.Is(err, yamlutil.ErrParse) {
		t.Fatalf("UnmarshalStrict() error = %v, want ErrParse", err)
	}
	if !strings.Contains(err.Error(), "unknown") {
		t.Errorf("error %q does not name the unknown field", err)
	}
}

func TestUnmarshal_TooLarge(t *testing.T) {
	t.Parallel()

	data := []byte("name: " + strings.Repeat("x", yamlutil.MaxInputSize))
	var cfg testConfig
	if err := yamlutil.Unmarshal(data, &cfg); !errors.Is(err, yamlutil.ErrInputTooLarge) {
		t.Errorf("Unmarshal() error = %v, want ErrInputTooLarge", err)
	}
}

func TestMarshal(t *testing.T) {
	t.Parallel()

	out, err := yamlutil.Marshal(testConfig{Name: "book", Size: 5, Fonts: []string{"a.ttf"}})
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	s := string(out)
	for _, want := range []string{"name: book", "size: 5", "  - a.ttf"} {
		if !strings.Contains(s, want) {
			t.Errorf("output missing %q:\n%s", want, s)
		}
	}

	var back testConfig
	if err := yamlutil.Unmarshal(out, &back); err != nil {
		t.Fatalf("Unmarshal(Marshal()) error = %v", err)
	}
	if back.Name != "book" || back.Size != 5 {
		t.Errorf("round trip = %+v", back)
	}
}
