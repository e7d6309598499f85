package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"
)

const testBook = `<?xml version="1.0" encoding="utf-8"?>
<FictionBook xmlns="http://www.gribuser.ru/xml/fictionbook/2.0" xmlns:l="http://www.w3.org/1999/xlink">
<description><title-info>
<author><first-name>Leo</first-name><last-name>Tolstoy</last-name></author>
<book-title>War and Peace</book-title><lang>en</lang>
</title-info><document-info><id>doc-1</id></document-info></description>
<body>
<section id="ch1"><title><p>One</p></title><p>Well, Prince.<a l:href="#n1">1</a></p></section>
<section><title><p>Two</p></title><p>Back to <a l:href="#ch1">one</a>.</p></section>
</body>
<body name="notes"><section id="n1"><p>A note.</p></section></body>
</FictionBook>`

// testEnv returns an Environment backed by vars, with captured output.
func testEnv(vars map[string]string) (*Environment, *bytes.Buffer, *bytes.Buffer) {
	stdout, stderr := &bytes.Buffer{}, &bytes.Buffer{}
	env := &Environment{
		Now:    func() time.Time { return time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC) },
		Stdout: stdout,
		Stderr: stderr,
		LookupEnv: func(key string) (string, bool) {
			v, ok := vars[key]
			return v, ok
		},
		Environ: func() []string {
			out := make([]string, 0, len(vars))
			for k, v := range vars {
				out = append(out, k+"="+v)
			}
			return out
		},
	}
	return env, stdout, stderr
}

// setupTestDir creates a temp directory with the given file structure.
// Files map paths to content. Returns the temp directory path.
func setupTestDir(t *testing.T, files map[string]string) string {
	t.Helper()
	tempDir := t.TempDir()

	for path, content := range files {
		fullPath := filepath.Join(tempDir, path)
		if err := os.MkdirAll(filepath.Dir(fullPath), 0o750); err != nil {
			t.Fatalf("failed to create dir for %s: %v", path, err)
		}
		if err := os.WriteFile(fullPath, []byte(content), 0o644); err != nil {
			t.Fatalf("failed to write %s: %v", path, err)
		}
	}

	return tempDir
}
