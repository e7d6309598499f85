// Package pipeline implements the two-pass FB2-to-EPUB conversion engine.
//
// The engine never parses raw bytes. It consumes a stream of typed tokens
// (element starts, element ends, text runs) from a Scanner and works in two
// strictly sequential passes:
//   - Collect (pass 1) walks the stream once and records every structural
//     unit (cover page, annotation, image, title, section) in document order,
//     together with its approximate size, its parent and the reference ids it
//     defines and uses.
//   - Assembler.Assemble (pass 2) walks a fresh stream over the same source
//     in lockstep with the collected units, groups units into output files
//     with SplitPolicy, assigns file names and TOC levels, resolves links
//     through the Index and hands finished files to a Packager.
//
// Units live in a flat arena (Units); parents are integer indices that only
// ever point backward. Forward links are emitted as placeholders and fixed by
// a bounded rewrite over the affected files once pass 2 has assigned every
// unit to a file.
//
// Packaging, transliteration and tokenizing are collaborators behind the
// Packager, Transliterator and Scanner interfaces.
package pipeline
