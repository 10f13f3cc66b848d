// Package markdown reads and writes the lightweight markup dialect used as the
// text form of the document model.
//
// Parsing runs in three stages. [ParseInline] turns one line of markup into
// styled runs. The [Classifier] is a line state machine (normal, inside a code
// fence, inside a table) that labels every source line with a block kind.
// [Parse] feeds the classified lines through the document builder and
// returns a [model.Document].
//
// The dialect is deliberately small:
//
//	# Heading 1 .. ###### Heading 6
//	**bold** __bold__ *italic* _italic_ ***both*** ___both___
//	`code` [label](https://example.com)
//	- item, * item, + item, 1. item (two spaces of indent per depth)
//	> quote
//	```lang ... ``` fenced code
//	| a | b | tables with a |---|---| separator
//	--- *** ___ horizontal rules
//
// Underscores are emphasis markers even inside words, so snake_case_name
// reads as "snake", italic "case", "name". Backslash escapes are not
// recognised. Parsing never fails: anything that does not match a construct
// is kept as literal text.
//
// [Write] serialises a document back to this dialect.
package markdown
