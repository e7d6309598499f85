// Package fb2epub converts FictionBook 2 documents to EPUB 2 packages whose
// content is split into reader-friendly files.
//
// # Quick Start
//
// Create a converter and convert a book:
//
//	conv, err := fb2epub.NewConverter()
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	data, _ := os.ReadFile("book.fb2")
//	result, err := conv.Convert(ctx, fb2epub.Input{FB2: data, Name: "book.fb2"})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	os.WriteFile("book.epub", result.EPUB, 0644)
//
// # Conversion Passes
//
// Every book is read twice:
//
//  1. Collect: the document is scanned into an ordered list of structural
//     units (cover page, annotation, titles, sections, images) with their
//     parent links, content sizes and the ids each one defines or links to.
//  2. Assemble: the same token stream is replayed. Units are grouped into
//     XHTML files by a size-driven split policy, links are resolved to the
//     file that finally holds their target, and the files are handed to the
//     EPUB writer once the whole pass has succeeded.
//
// Links whose target never reached a file are reported in Result.Warnings
// and emitted according to the Fallback option. Links to ids the document
// never defines fail the conversion unless WithAllowBrokenLinks is set.
//
// # Configuration
//
// Use functional options to customize the converter:
//
//	conv, err := fb2epub.NewConverter(
//	    fb2epub.WithMaxUnitSize(60_000),
//	    fb2epub.WithTOCPolicy(fb2epub.TOCFragments),
//	    fb2epub.WithStyle("sans"),
//	    fb2epub.WithMangledFonts("fonts/serif.otf"),
//	    fb2epub.WithTransliteration(false),
//	)
//
// Use Inspect to run the first pass only and look at the unit tree.
//
// # Custom Assets
//
// Override the built-in stylesheets and package templates with an asset
// directory:
//
//	conv, err := fb2epub.NewConverter(fb2epub.WithAssetPath("/path/to/assets"))
//
// Asset directory structure:
//
//	assets/
//	├── styles/
//	│   └── custom.css
//	└── templates/
//	    └── default/
//	        ├── content.opf
//	        └── toc.ncx
package fb2epub
