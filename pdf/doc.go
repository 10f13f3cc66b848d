// Package pdf converts between documents and paginated PDF files.
//
// Write lays a document out on A4 pages with the core PDF fonts. Read
// recovers structure from positioned text: lines are grouped into blocks
// by indentation and spacing, headings are inferred from font size, tables
// from ruled cell rectangles, and links from URI annotations.
package pdf
