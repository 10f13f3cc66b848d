package pdf

import (
	"sort"
	"unicode/utf8"
)

// headingRatio is how much larger than body text a line must be to count
// as a heading.
const headingRatio = 1.05

// headingDetector assigns heading levels from font sizes.
type headingDetector struct {
	bodySize float64
	// ranked maps a size bucket to its level when the size is not one of
	// the sizes this package writes.
	ranked map[int]int
}

// detectBodyFontSize determines the most common proportional font size,
// weighting by character count and bucketing to half a point. Monospaced
// text is ignored so code-heavy documents keep their prose size.
func detectBodyFontSize(lines []line) float64 {
	if len(lines) == 0 {
		return bodySize
	}

	const tolerance = 0.5
	counts := make(map[int]int)
	for _, l := range lines {
		for _, w := range l.Words {
			for _, f := range w.Frags {
				if f.Face.Mono {
					continue
				}
				counts[int(f.Size/tolerance+0.5)] += utf8.RuneCountInString(f.Text)
			}
		}
	}

	if len(counts) == 0 {
		return bodySize
	}
	best, bestCount := 0, -1
	for bucket, count := range counts {
		if count > bestCount || (count == bestCount && bucket < best) {
			best, bestCount = bucket, count
		}
	}
	return float64(best) * tolerance
}

func newHeadingDetector(lines []line) *headingDetector {
	d := &headingDetector{bodySize: detectBodyFontSize(lines), ranked: make(map[int]int)}

	var sizes []float64
	seen := make(map[int]bool)
	for _, l := range lines {
		if !d.isHeadingSize(l.Size) || l.allMono() {
			continue
		}
		bucket := sizeBucket(l.Size)
		if !seen[bucket] {
			seen[bucket] = true
			sizes = append(sizes, l.Size)
		}
	}

	// Larger text ranks higher.
	sort.Slice(sizes, func(i, j int) bool { return sizes[i] > sizes[j] })
	for i, size := range sizes {
		d.ranked[sizeBucket(size)] = min(i+1, len(headingSizes))
	}
	return d
}

func sizeBucket(size float64) int {
	return int(size*10 + 0.5)
}

func (d *headingDetector) isHeadingSize(size float64) bool {
	return size > d.bodySize*headingRatio
}

// level returns the heading level for a line size, or 0 for body text.
func (d *headingDetector) level(size float64) int {
	if !d.isHeadingSize(size) {
		return 0
	}
	if near(d.bodySize, bodySize, 0.25) {
		for i, s := range headingSizes {
			if near(size, s, 0.5) {
				return i + 1
			}
		}
	}
	if level, ok := d.ranked[sizeBucket(size)]; ok {
		return level
	}
	return len(headingSizes)
}
