// Package epub writes EPUB 2 containers.
//
// Writer implements pipeline.Packager. Content documents and images are
// streamed into the zip archive as the assembler hands them over; the
// package document (content.opf), the NCX navigation map, stylesheets and
// fonts are written by Finish. Archive layout:
//
//	mimetype                 stored, first entry
//	META-INF/container.xml
//	META-INF/encryption.xml  only with obfuscated fonts
//	OEBPS/content.opf
//	OEBPS/toc.ncx
//	OEBPS/*.xhtml
//	OEBPS/css/*
//	OEBPS/fonts/*
//	OEBPS/images/*
//
// Fonts passed as mangled are obfuscated with the IDPF font obfuscation
// algorithm keyed on the book identifier.
package epub
