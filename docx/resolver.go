package docx

import (
	"strconv"
	"strings"
)

// ResolvedStyle contains the resolved properties of a paragraph or
// character style.
type ResolvedStyle struct {
	ID   string
	Name string

	IsHeading    bool
	HeadingLevel int // 1-9, 0 if not a heading

	IndentLeft float64 // points
	FontName   string
	Bold       bool
	Italic     bool
}

// StyleResolver resolves styles with inheritance support.
type StyleResolver struct {
	styles      map[string]*styleDefXML
	resolved    map[string]*ResolvedStyle
	defaultFont string
}

// NewStyleResolver creates a new style resolver from parsed styles.
func NewStyleResolver(styles *stylesXML) *StyleResolver {
	sr := &StyleResolver{
		styles:      make(map[string]*styleDefXML),
		resolved:    make(map[string]*ResolvedStyle),
		defaultFont: "Calibri",
	}

	if styles == nil {
		return sr
	}

	for i := range styles.Styles {
		style := &styles.Styles[i]
		sr.styles[style.StyleID] = style
	}
	if font := styles.DocDefaults.RPrDefault.RPr.Font.ASCII; font != "" {
		sr.defaultFont = font
	}

	return sr
}

// Resolve returns the fully resolved style for the given style ID.
// If the style doesn't exist, returns a default style.
func (sr *StyleResolver) Resolve(styleID string) *ResolvedStyle {
	if styleID == "" {
		return sr.defaultStyle()
	}

	if resolved, ok := sr.resolved[styleID]; ok {
		return resolved
	}

	resolved := sr.defaultStyle()
	resolved.ID = styleID

	styleDef, ok := sr.styles[styleID]
	if !ok {
		resolved.IsHeading, resolved.HeadingLevel = detectBuiltInHeading(styleID)
		sr.resolved[styleID] = resolved
		return resolved
	}

	resolved.Name = styleDef.Name.Val

	for _, sid := range sr.buildInheritanceChain(styleID) {
		if def, ok := sr.styles[sid]; ok {
			sr.applyStyleDef(resolved, def)
		}
	}

	resolved.IsHeading, resolved.HeadingLevel = sr.detectHeading(styleDef)

	sr.resolved[styleID] = resolved
	return resolved
}

func (sr *StyleResolver) defaultStyle() *ResolvedStyle {
	return &ResolvedStyle{FontName: sr.defaultFont}
}

// buildInheritanceChain returns style IDs from base to derived.
func (sr *StyleResolver) buildInheritanceChain(styleID string) []string {
	var chain []string
	visited := make(map[string]bool)

	current := styleID
	for current != "" && !visited[current] {
		visited[current] = true
		chain = append([]string{current}, chain...)

		if def, ok := sr.styles[current]; ok {
			current = def.BasedOn.Val
		} else {
			break
		}
	}

	return chain
}

// applyStyleDef applies a style definition's properties to a resolved style.
func (sr *StyleResolver) applyStyleDef(resolved *ResolvedStyle, def *styleDefXML) {
	if left := indentLeft(def.PPr.Indent); left != "" {
		resolved.IndentLeft = parseTwips(left)
	}
	rpr := def.RPr
	if rpr.Font.ASCII != "" {
		resolved.FontName = rpr.Font.ASCII
	}
	if rpr.Bold.Set() {
		resolved.Bold = rpr.Bold.On()
	}
	if rpr.Italic.Set() {
		resolved.Italic = rpr.Italic.On()
	}
}

// detectHeading determines if a style represents a heading.
func (sr *StyleResolver) detectHeading(def *styleDefXML) (bool, int) {
	if isHeading, level := detectBuiltInHeading(def.StyleID); isHeading {
		return true, level
	}

	name := strings.ToLower(def.Name.Val)
	if isHeading, level := detectBuiltInHeading(strings.ReplaceAll(name, " ", "")); isHeading {
		return true, level
	}

	if def.PPr.OutlineLvl.Val != "" {
		level := parseOutlineLevel(def.PPr.OutlineLvl.Val)
		if level >= 0 && level <= 8 {
			return true, level + 1
		}
	}

	return false, 0
}

// detectBuiltInHeading checks for Word's built-in heading style IDs.
func detectBuiltInHeading(styleID string) (bool, int) {
	id := strings.ToLower(styleID)

	headingMap := map[string]int{
		"heading1": 1, "heading2": 2, "heading3": 3,
		"heading4": 4, "heading5": 5, "heading6": 6,
		"heading7": 7, "heading8": 8, "heading9": 9,
		"title": 1, "subtitle": 2,
	}

	if level, ok := headingMap[id]; ok {
		return true, level
	}

	return false, 0
}

// parseOutlineLevel parses an outline level string to an integer.
func parseOutlineLevel(s string) int {
	level, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || level < 0 || level > 8 {
		return -1
	}
	return level
}

// parseTwips parses a size in twips to points.
// 1 point = 20 twips.
func parseTwips(s string) float64 {
	val, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return val / 20
}

func indentLeft(ind indentXML) string {
	if ind.Left != "" {
		return ind.Left
	}
	return ind.Start
}

// ResolvedRun contains resolved properties for a text run.
type ResolvedRun struct {
	FontName string
	Bold     bool
	Italic   bool
	Code     bool
	Hidden   bool
}

// ResolveRun resolves run properties from the run's character style and
// direct formatting. Only the font is taken from the paragraph style: weight
// and slant that a heading or quote style applies to the whole paragraph are
// part of the block kind, not of the runs.
func (sr *StyleResolver) ResolveRun(paragraphStyle string, runProps runPropsXML) *ResolvedRun {
	base := sr.Resolve(paragraphStyle)
	resolved := &ResolvedRun{FontName: base.FontName}

	if charStyle := runProps.Style.Val; charStyle != "" {
		cs := sr.Resolve(charStyle)
		if _, defined := sr.styles[charStyle]; defined {
			resolved.Bold = resolved.Bold || cs.Bold
			resolved.Italic = resolved.Italic || cs.Italic
			if cs.FontName != sr.defaultFont {
				resolved.FontName = cs.FontName
			}
		}
		switch strings.ToLower(charStyle) {
		case "strong":
			resolved.Bold = true
		case "emphasis":
			resolved.Italic = true
		case "inlinecode", "htmlcode", "verbatimchar", "sourcecode":
			resolved.Code = true
		}
	}

	if runProps.Font.ASCII != "" {
		resolved.FontName = runProps.Font.ASCII
	} else if runProps.Font.HAnsi != "" {
		resolved.FontName = runProps.Font.HAnsi
	}
	if runProps.Bold.Set() {
		resolved.Bold = runProps.Bold.On()
	}
	if runProps.Italic.Set() {
		resolved.Italic = runProps.Italic.On()
	}
	resolved.Hidden = runProps.Vanish.On()
	if isMonospace(resolved.FontName) {
		resolved.Code = true
	}

	return resolved
}

// monospaceFonts lists font families treated as code fonts.
var monospaceFonts = []string{
	"courier", "consolas", "menlo", "monaco", "lucida console",
	"source code", "dejavu sans mono", "liberation mono", "fira code", "fira mono",
}

func isMonospace(font string) bool {
	f := strings.ToLower(font)
	if f == "" {
		return false
	}
	if strings.HasSuffix(f, " mono") {
		return true
	}
	for _, m := range monospaceFonts {
		if strings.Contains(f, m) {
			return true
		}
	}
	return false
}

// StyleNumbering returns the numbering properties a paragraph style carries,
// following the inheritance chain from the style itself toward its bases.
func (sr *StyleResolver) StyleNumbering(styleID string) (numID string, level int) {
	chain := sr.buildInheritanceChain(styleID)
	for i := len(chain) - 1; i >= 0; i-- {
		def, ok := sr.styles[chain[i]]
		if !ok || def.PPr.NumPr.NumID.Val == "" {
			continue
		}
		level, _ = strconv.Atoi(def.PPr.NumPr.ILvl.Val)
		return def.PPr.NumPr.NumID.Val, level
	}
	return "", 0
}
