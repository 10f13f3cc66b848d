// Package model provides the intermediate representation (IR) shared by every
// importer and emitter.
//
// A conversion always goes source → [Document] → target. Importers build a
// Document from a foreign format and emitters serialise one; no converter
// writes directly from one foreign format to another.
//
// # Document Structure
//
// A [Document] is an ordered sequence of [Block] values, top to bottom:
//
//	doc := model.NewDocument()
//	doc.Title = "Report"
//	doc.Append(&model.Heading{Level: 1, Runs: model.PlainRuns("Report")})
//
// # Blocks
//
// All structural units implement the [Block] interface. The concrete types are:
//
//   - [Heading] - headings (levels 1-6)
//   - [Paragraph] - a paragraph of styled runs
//   - [List] - consecutive list items of one kind (ordered or unordered)
//   - [CodeBlock] - verbatim lines with an optional language tag
//   - [BlockQuote] - quoted paragraphs
//   - [Rule] - a horizontal rule
//   - [Table] - rows of cells; the first row is the header row
//
// # Runs
//
// Text inside blocks is carried by [Run] values. A run has exactly one
// [Style]; bold and italic together are the single combined style
// [StyleBoldItalic], never two nested runs. Runs never have empty text.
package model
