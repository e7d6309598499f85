package pipeline

import (
	"bytes"
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// assemble runs both passes over src.
func assemble(t *testing.T, src string, cfg Config, pkg Packager, opts ...AssemblerOption) (*Collection, *Assembly, error) {
	t.Helper()
	col := mustCollect(t, src, cfg)
	a, err := NewAssembler(cfg, opts...)
	require.NoError(t, err)
	asm, err := a.Assemble(context.Background(), NewSliceScanner(tokenize(t, src)), col, Resources{}, pkg)
	return col, asm, err
}

func fileData(t *testing.T, asm *Assembly, name string) string {
	t.Helper()
	for _, f := range asm.Files {
		if f.Name == name {
			return string(f.Data)
		}
	}
	t.Fatalf("no file %s in %v", name, asm.Spine())
	return ""
}

// wellFormed fails the test when data is not a well-formed XML document.
func wellFormed(t *testing.T, name string, data []byte) {
	t.Helper()
	d := xml.NewDecoder(bytes.NewReader(data))
	for {
		_, err := d.Token()
		if errors.Is(err, io.EOF) {
			return
		}
		if err != nil {
			t.Errorf("%s is not well-formed: %v", name, err)
			return
		}
	}
}

func TestAssemble_SmallSectionsShareAFile(t *testing.T) {
	t.Parallel()

	src := fb2(`<body>` +
		`<section><title><p>One</p></title><p>a</p></section>` +
		`<section><title><p>Two</p></title><p>b</p></section>` +
		`<section><title><p>Three</p></title><p>c</p></section>` +
		`</body>`)
	col, asm, err := assemble(t, src, DefaultConfig(), nil)
	require.NoError(t, err)

	assert.Equal(t, []string{"part0001.xhtml"}, asm.Spine())
	require.Len(t, asm.TOC, 3)
	for i, title := range []string{"One", "Two", "Three"} {
		assert.Equal(t, title, asm.TOC[i].Title)
		assert.Equal(t, 1, asm.TOC[i].Level)
		assert.Equal(t, "part0001.xhtml", asm.TOC[i].Href)
		assert.Equal(t, "part0001.xhtml", col.Units[i].File)
	}

	data := fileData(t, asm, "part0001.xhtml")
	assert.Contains(t, data, `<h2 class="title">One</h2>`)
	assert.Contains(t, data, `<html xmlns="http://www.w3.org/1999/xhtml" xml:lang="en">`)
	assert.Contains(t, data, `<body class="main">`)
}

func TestAssemble_OversizedUnitIsEmittedWhole(t *testing.T) {
	t.Parallel()

	big := strings.Repeat("x", 500)
	src := fb2(`<body><section><p>small</p></section><section><p>` + big + `</p></section><section><p>tail</p></section></body>`)
	col, asm, err := assemble(t, src, testConfig(100), nil)
	require.NoError(t, err)

	assert.Equal(t, []string{"part0001.xhtml", "part0002.xhtml", "part0003.xhtml"}, asm.Spine())
	assert.Equal(t, "part0002.xhtml", col.Units[1].File)
	assert.Contains(t, fileData(t, asm, "part0002.xhtml"), big)
}

func TestAssemble_FileSizeCeiling(t *testing.T) {
	t.Parallel()

	lengths := []int{30, 50, 20, 70, 10, 90, 40, 5, 5, 99, 1, 60}
	var b strings.Builder
	b.WriteString("<body>")
	for i, n := range lengths {
		if i%3 == 2 {
			fmt.Fprintf(&b, "<section><p>%s</p><section><p>%s</p></section></section>", strings.Repeat("a", n/2), strings.Repeat("b", n-n/2))
			continue
		}
		fmt.Fprintf(&b, "<section><p>%s</p></section>", strings.Repeat("a", n))
	}
	b.WriteString("</body>")

	const maxSize = 100
	col, asm, err := assemble(t, fb2(b.String()), testConfig(maxSize), nil)
	require.NoError(t, err)

	perFile := map[string]int{}
	count := map[string]int{}
	for _, u := range col.Units {
		require.NotEmpty(t, u.File)
		perFile[u.File] += u.Size
		count[u.File]++
	}
	for name, size := range perFile {
		if count[name] > 1 {
			assert.LessOrEqual(t, size, maxSize, "file %s holds %d units", name, count[name])
		}
	}
	assert.Len(t, asm.Files, len(perFile))
}

func TestAssemble_ForwardFootnote(t *testing.T) {
	t.Parallel()

	src := fb2(`<body><section><p>See<a l:href="#n1" type="note">1</a>.</p></section></body>` +
		`<body name="notes"><section id="n1"><p>The note</p></section></body>`)
	col, asm, err := assemble(t, src, DefaultConfig(), nil)
	require.NoError(t, err)

	assert.Equal(t, []string{"part0001.xhtml", "part0002.xhtml"}, asm.Spine())
	assert.Empty(t, asm.Warnings)
	assert.Empty(t, col.Index.Unresolved())

	main := fileData(t, asm, "part0001.xhtml")
	assert.Contains(t, main, `href="part0002.xhtml#n1"`)
	assert.NotContains(t, main, refAttr)
	assert.Contains(t, main, `class="note"`)

	notes := fileData(t, asm, "part0002.xhtml")
	assert.Contains(t, notes, `<div class="section" id="n1">`)
	assert.Contains(t, notes, `<p class="backlink"><a href="part0001.xhtml#back-`)
	assert.Contains(t, notes, `<body class="notes">`)
}

func TestAssemble_BackwardLinkNeedsNoRewrite(t *testing.T) {
	t.Parallel()

	src := fb2(`<body><section id="s1"><p>One</p></section><section><p><a l:href="#s1">up</a></p></section></body>`)
	_, asm, err := assemble(t, src, testConfig(4), nil)
	require.NoError(t, err)

	assert.Contains(t, fileData(t, asm, "part0002.xhtml"), `<a href="part0001.xhtml#s1">up</a>`)
}

func TestAssemble_LinkInsideParagraph(t *testing.T) {
	t.Parallel()

	src := fb2(`<body><section id="s1"><p>One</p></section>` +
		`<section><p><a l:href="#s1">up</a></p><p>after</p></section></body>`)
	_, asm, err := assemble(t, src, DefaultConfig(), nil)
	require.NoError(t, err)

	require.Equal(t, []string{"part0001.xhtml"}, asm.Spine())
	data := fileData(t, asm, "part0001.xhtml")
	assert.Contains(t, data, `<div class="section"><p><a href="part0001.xhtml#s1">up</a></p><p>after</p></div>`)
	wellFormed(t, "part0001.xhtml", asm.Files[0].Data)
}

func TestAssemble_SplitInsideLinkedSection(t *testing.T) {
	t.Parallel()

	src := fb2(`<body><section id="s1"><p>One</p></section>` +
		`<section><title><p>Two</p></title>` +
		`<p>See <a l:href="#s1">up</a>, then read the nested part <a l:href="#n2"><strong>below</strong></a> first.</p>` +
		`<section id="n2"><p>Nested text</p></section>` +
		`<p>after</p></section>` +
		`<section><p>Three</p></section></body>`)
	col, asm, err := assemble(t, src, testConfig(20), nil)
	require.NoError(t, err)

	require.Len(t, col.Units, 4)
	assert.Equal(t, "part0002.xhtml", col.Units[1].File)
	assert.Equal(t, "part0003.xhtml", col.Units[2].File)
	for _, f := range asm.Files {
		wellFormed(t, f.Name, f.Data)
	}

	outer := fileData(t, asm, "part0002.xhtml")
	assert.Contains(t, outer, `<a href="part0001.xhtml#s1">up</a>`)
	assert.Contains(t, outer, `<a href="part0003.xhtml#n2"><strong>below</strong></a>`)
	assert.NotContains(t, outer, refAttr)

	nested := fileData(t, asm, "part0003.xhtml")
	assert.Contains(t, nested, `<body class="main">`+"\n"+`<div class="section"><div class="section" id="n2">`)
	assert.Contains(t, nested, `<p>Nested text</p></div><p>after</p></div>`)
}

func TestAssemble_UndefinedReference(t *testing.T) {
	t.Parallel()

	src := fb2(`<body><section><p>See <a l:href="#nope">there</a></p></section></body>`)

	t.Run("fails by default", func(t *testing.T) {
		t.Parallel()
		pkg := &memPackager{}
		_, _, err := assemble(t, src, DefaultConfig(), pkg)

		var ae *AssemblyError
		require.ErrorAs(t, err, &ae)
		assert.ErrorIs(t, err, ErrAssembly)
		assert.Equal(t, "nope", ae.ID)
		assert.Empty(t, pkg.files)
		assert.Nil(t, pkg.manifest)
	})

	t.Run("drop fallback", func(t *testing.T) {
		t.Parallel()
		cfg := DefaultConfig()
		cfg.AllowBrokenLinks = true
		_, asm, err := assemble(t, src, cfg, nil)
		require.NoError(t, err)

		require.Len(t, asm.Warnings, 1)
		assert.Equal(t, "nope", asm.Warnings[0].ID)
		assert.Equal(t, "undefined", asm.Warnings[0].Reason)
		data := fileData(t, asm, "part0001.xhtml")
		assert.Contains(t, data, "See there")
		assert.NotContains(t, data, "<a")
	})

	t.Run("dead link fallback", func(t *testing.T) {
		t.Parallel()
		cfg := DefaultConfig()
		cfg.AllowBrokenLinks = true
		cfg.Fallback = FallbackDeadLink
		_, asm, err := assemble(t, src, cfg, nil)
		require.NoError(t, err)
		assert.Contains(t, fileData(t, asm, "part0001.xhtml"), `<a href="#nope">there</a>`)
	})
}

func TestAssemble_LinkToIDOutsideContent(t *testing.T) {
	t.Parallel()

	src := `<FictionBook xmlns:l="http://www.w3.org/1999/xlink"><description><title-info><author id="a1"><nickname>x</nickname></author></title-info></description>` +
		`<body><section><p><a l:href="#a1">author</a></p></section></body></FictionBook>`
	_, asm, err := assemble(t, src, DefaultConfig(), nil)
	require.NoError(t, err)

	require.Len(t, asm.Warnings, 1)
	assert.Equal(t, UnresolvedReference{ID: "a1", Unit: 0, Reason: "not emitted"}, asm.Warnings[0])
	assert.NotContains(t, fileData(t, asm, "part0001.xhtml"), "<a")
}

func TestAssemble_UnplacedIDs(t *testing.T) {
	t.Parallel()

	src := `<FictionBook xmlns:l="http://www.w3.org/1999/xlink"><description><title-info>` +
		`<author id="a1"><nickname>x</nickname></author><author id="a2"><nickname>y</nickname></author>` +
		`</title-info></description>` +
		`<body><section id="s1"><p><a l:href="#a1">author</a></p></section></body></FictionBook>`
	col, asm, err := assemble(t, src, DefaultConfig(), nil)
	require.NoError(t, err)

	require.Len(t, asm.Warnings, 1)
	assert.Equal(t, "a1", asm.Warnings[0].ID)
	assert.Equal(t, []string{"a2"}, asm.Unplaced)
	assert.ElementsMatch(t, []string{"a1", "a2"}, col.Index.Unresolved())
}

func TestAssemble_Idempotent(t *testing.T) {
	t.Parallel()

	run := func() *Assembly {
		_, asm, err := assemble(t, fullBook, testConfig(40), nil)
		require.NoError(t, err)
		return asm
	}
	first, second := run(), run()

	require.Equal(t, first.Spine(), second.Spine())
	for i := range first.Files {
		assert.True(t, bytes.Equal(first.Files[i].Data, second.Files[i].Data), "file %s differs", first.Files[i].Name)
	}
	assert.Equal(t, first.TOC, second.TOC)
}

func TestAssemble_CoverAndImages(t *testing.T) {
	t.Parallel()

	src := strings.Replace(fullBook, `<binary id="cover.jpg" content-type="image/jpeg">AAAA</binary>`,
		`<binary id="cover.jpg" content-type="image/jpeg">iVBO
Rw==</binary><binary id="bad.png" content-type="image/png">***</binary>`, 1)
	pkg := &memPackager{}
	col, asm, err := assemble(t, src, DefaultConfig(), pkg)
	require.NoError(t, err)

	assert.Equal(t, "annotation.xhtml", col.Units[0].File)
	assert.Equal(t, "cover.xhtml", col.Units[1].File)
	assert.Equal(t, "part0001.xhtml", col.Units[2].File)
	require.Len(t, asm.Images, 1)
	assert.Equal(t, "images/cover.jpg", asm.Images[0].Name)
	assert.Equal(t, "image/jpeg", asm.Images[0].MediaType)
	assert.Equal(t, []byte{0x89, 0x50, 0x4e, 0x47}, asm.Images[0].Data)

	cover := fileData(t, asm, "cover.xhtml")
	assert.Contains(t, cover, `<img src="images/cover.jpg" alt=""/>`)

	require.NotNil(t, pkg.manifest)
	assert.Equal(t, "images/cover.jpg", pkg.manifest.CoverImage)
	assert.Equal(t, asm.Spine(), pkg.manifest.Spine)
	assert.Len(t, pkg.files, len(asm.Files)+len(asm.Images))
}

func TestAssemble_TOCFragments(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig()
	cfg.TOCPolicy = TOCFragments
	col, asm, err := assemble(t, fullBook, cfg, nil)
	require.NoError(t, err)

	for _, e := range asm.TOC {
		u := col.Units[e.Unit]
		require.NotEmpty(t, u.FileID, "unit %d", e.Unit)
		assert.Equal(t, u.File+"#"+u.FileID, e.Href)
		assert.Contains(t, fileData(t, asm, u.File), `id="`+u.FileID+`"`)
	}
	assert.Equal(t, "ch1", col.Units[3].FileID)
}

func TestAssemble_Levels(t *testing.T) {
	t.Parallel()

	col, asm, err := assemble(t, fullBook, DefaultConfig(), nil)
	require.NoError(t, err)

	assert.Equal(t, 1, col.Units[3].Level)
	assert.Equal(t, 2, col.Units[4].Level)

	var titles []string
	for _, e := range asm.TOC {
		titles = append(titles, fmt.Sprintf("%d:%s", e.Level, e.Title))
	}
	assert.Equal(t, []string{"1:War and Peace", "1:One", "2:One.A", "1:Notes"}, titles)
}

func TestAssemble_Transliteration(t *testing.T) {
	t.Parallel()

	src := fb2(`<body><section><title><p>Head</p></title><p>body &amp; text</p></section></body>`)
	_, asm, err := assemble(t, src, DefaultConfig(), nil, WithTransliterator(upper{}))
	require.NoError(t, err)

	data := fileData(t, asm, "part0001.xhtml")
	assert.Contains(t, data, "BODY &amp; TEXT")
	assert.Equal(t, "HEAD", asm.TOC[0].Title)
}

func TestAssemble_Diverged(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig()
	col := mustCollect(t, fb2(`<body><section><p>a</p></section></body>`), cfg)
	a, err := NewAssembler(cfg)
	require.NoError(t, err)

	tests := []struct {
		name string
		src  string
	}{
		{name: "extra unit", src: fb2(`<body><section><p>a</p></section><section/></body>`)},
		{name: "missing unit", src: fb2(`<body><p>a</p></body>`)},
		{name: "different unit", src: fb2(`<body><image l:href="#x"/></body>`)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := a.Assemble(context.Background(), NewSliceScanner(tokenize(t, tt.src)), col, Resources{}, nil)
			assert.ErrorIs(t, err, ErrAssembly)
		})
	}
}

func TestAssemble_PackagerFailure(t *testing.T) {
	t.Parallel()

	boom := errors.New("disk full")
	_, _, err := assemble(t, fullBook, DefaultConfig(), &memPackager{addErr: boom})
	assert.ErrorIs(t, err, boom)
}

func TestAssemble_Pages(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig()
	src := fb2(`<body><section><p>a</p></section></body>`)
	col := mustCollect(t, src, cfg)
	a, err := NewAssembler(cfg)
	require.NoError(t, err)

	res := Resources{
		Styles: []Resource{{Name: "default.css", Data: []byte("p{}")}},
		Pages:  []Page{{Name: ColophonName, Title: "Colophon", Body: []byte("<p>made</p>")}},
	}
	asm, err := a.Assemble(context.Background(), NewSliceScanner(tokenize(t, src)), col, res, nil)
	require.NoError(t, err)

	assert.Equal(t, []string{"part0001.xhtml", ColophonName}, asm.Spine())
	assert.Equal(t, TOCEntry{Title: "Colophon", Href: ColophonName, Level: 1, Unit: NoUnit}, asm.TOC[len(asm.TOC)-1])
	assert.Contains(t, fileData(t, asm, ColophonName), `<link rel="stylesheet" type="text/css" href="css/default.css"/>`)
}
