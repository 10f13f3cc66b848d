package docx

import (
	"strconv"
	"strings"

	"github.com/tsawler/docmorph/model"
)

// ListType represents the type of list.
type ListType int

const (
	ListTypeUnordered ListType = iota // Bullet list
	ListTypeOrdered                   // Numbered list
)

// NumberingResolver resolves numbering definitions from numbering.xml.
type NumberingResolver struct {
	abstractNums map[string]*abstractNumXML // abstractNumId -> definition
	numMappings  map[string]string          // numId -> abstractNumId
	overrides    map[string]map[int]int     // numId -> level -> start
}

// NewNumberingResolver creates a resolver from parsed numbering.xml.
func NewNumberingResolver(numbering *numberingXML) *NumberingResolver {
	nr := &NumberingResolver{
		abstractNums: make(map[string]*abstractNumXML),
		numMappings:  make(map[string]string),
		overrides:    make(map[string]map[int]int),
	}

	if numbering == nil {
		return nr
	}

	for i := range numbering.AbstractNums {
		an := &numbering.AbstractNums[i]
		nr.abstractNums[an.AbstractNumID] = an
	}

	for _, num := range numbering.Nums {
		nr.numMappings[num.NumID] = num.AbstractNumID.Val
		for _, o := range num.Overrides {
			lvl, err := strconv.Atoi(o.ILvl)
			if err != nil || o.StartOverride.Val == "" {
				continue
			}
			start, err := strconv.Atoi(o.StartOverride.Val)
			if err != nil {
				continue
			}
			if nr.overrides[num.NumID] == nil {
				nr.overrides[num.NumID] = make(map[int]int)
			}
			nr.overrides[num.NumID][lvl] = start
		}
	}

	return nr
}

// ResolveLevel returns the list type and start number for a numId and level.
func (nr *NumberingResolver) ResolveLevel(numID string, level int) (listType ListType, startAt int) {
	listType = ListTypeUnordered
	startAt = 1

	if numID == "" {
		return
	}
	if start, ok := nr.overrides[numID][level]; ok {
		startAt = start
	}

	abstractID, ok := nr.numMappings[numID]
	if !ok {
		return
	}
	abstractNum, ok := nr.abstractNums[abstractID]
	if !ok {
		return
	}

	levelStr := strconv.Itoa(level)
	for _, lvl := range abstractNum.Levels {
		if lvl.ILvl != levelStr {
			continue
		}
		switch lvl.NumFmt.Val {
		case "decimal", "decimalZero", "lowerLetter", "upperLetter", "lowerRoman", "upperRoman", "ordinal":
			listType = ListTypeOrdered
		default:
			listType = ListTypeUnordered
		}
		if _, overridden := nr.overrides[numID][level]; !overridden && lvl.Start.Val != "" {
			if s, err := strconv.Atoi(lvl.Start.Val); err == nil {
				startAt = s
			}
		}
		return
	}

	return
}

// IsListParagraph returns true if the paragraph has numbering properties.
func (nr *NumberingResolver) IsListParagraph(numID string) bool {
	return numID != "" && numID != "0"
}

// listStyleKind recognises the built-in list paragraph styles ("List Bullet",
// "List Number 2", ...) and returns the list type and nesting depth.
func listStyleKind(styleID, styleName string) (ListType, int, bool) {
	for _, s := range []string{styleID, styleName} {
		key := strings.ToLower(strings.ReplaceAll(s, " ", ""))
		var lt ListType
		switch {
		case strings.HasPrefix(key, "listbullet"):
			lt = ListTypeUnordered
			key = strings.TrimPrefix(key, "listbullet")
		case strings.HasPrefix(key, "listnumber"):
			lt = ListTypeOrdered
			key = strings.TrimPrefix(key, "listnumber")
		default:
			continue
		}
		depth := 0
		if n, err := strconv.Atoi(key); err == nil && n > 1 {
			depth = n - 1
		}
		return lt, depth, true
	}
	return ListTypeUnordered, 0, false
}

// listBuilder groups consecutive list paragraphs into model lists and
// numbers ordered items per depth.
type listBuilder struct {
	list     *model.List
	numID    string
	counters map[int]int
}

// add appends an item, returning a completed list when the item cannot
// continue the current one. Only top-level items can end a list; nested
// items join the list they appear in whatever their own kind.
func (lb *listBuilder) add(lt ListType, numID string, startAt, depth int, runs []model.Run) *model.List {
	ordered := lt == ListTypeOrdered
	var done *model.List
	if lb.list != nil && depth == 0 &&
		(lb.list.Ordered != ordered || (ordered && numID != "" && lb.numID != "" && numID != lb.numID)) {
		done = lb.flush()
	}
	if lb.list == nil {
		lb.list = &model.List{Ordered: ordered}
		lb.numID = numID
		lb.counters = make(map[int]int)
	}

	item := model.ListItem{Runs: runs, Depth: depth}
	if lb.list.Ordered {
		for d := range lb.counters {
			if d > depth {
				delete(lb.counters, d)
			}
		}
		if _, ok := lb.counters[depth]; !ok {
			lb.counters[depth] = startAt - 1
		}
		lb.counters[depth]++
		item.Index = lb.counters[depth]
	}
	lb.list.Items = append(lb.list.Items, item)
	return done
}

func (lb *listBuilder) flush() *model.List {
	l := lb.list
	lb.list = nil
	lb.numID = ""
	lb.counters = nil
	return l
}

// Defines reports whether numbering.xml declares the numbering instance.
func (nr *NumberingResolver) Defines(numID string) bool {
	abstractID, ok := nr.numMappings[numID]
	if !ok {
		return false
	}
	_, ok = nr.abstractNums[abstractID]
	return ok
}
