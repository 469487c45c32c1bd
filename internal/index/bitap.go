package index

import (
	"math"
	"strings"
)

// maxBits is the longest pattern a single bitmask can hold. Longer queries
// are split into overlapping chunks that are scored independently.
const maxBits = 32

// minScore is the floor for any non-identical match, so an exact substring
// still ranks behind a field that equals the query outright.
const minScore = 0.001

type chunk struct {
	pattern  []rune
	alphabet map[rune]uint32
	offset   int
}

// matcher scores text against one query using the bitap algorithm with
// error levels and a location penalty.
type matcher struct {
	pattern []rune
	chunks  []chunk
	opts    Options
}

func newMatcher(query string, opts Options) *matcher {
	p := []rune(strings.ToLower(query))
	m := &matcher{pattern: p, opts: opts}

	add := func(sub []rune, offset int) {
		m.chunks = append(m.chunks, chunk{pattern: sub, alphabet: alphabet(sub), offset: offset})
	}

	n := len(p)
	if n <= maxBits {
		if n > 0 {
			add(p, 0)
		}
		return m
	}
	remainder := n % maxBits
	end := n - remainder
	for i := 0; i < end; i += maxBits {
		add(p[i:i+maxBits], i)
	}
	if remainder > 0 {
		add(p[n-maxBits:], n-maxBits)
	}
	return m
}

// alphabet maps each pattern rune to the bit positions it occupies, with
// the first rune in the highest bit.
func alphabet(p []rune) map[rune]uint32 {
	mask := make(map[rune]uint32, len(p))
	for i, r := range p {
		mask[r] |= 1 << uint(len(p)-i-1)
	}
	return mask
}

// match reports whether text (already lower-cased) matches and its score.
// A text equal to the query scores exactly 0.
func (m *matcher) match(text []rune) (bool, float64) {
	if len(m.chunks) == 0 {
		return false, 1
	}
	if equalRunes(m.pattern, text) {
		return true, 0
	}

	var total float64
	matched := false
	for _, c := range m.chunks {
		ok, score := m.search(text, c)
		if ok {
			matched = true
		}
		total += score
	}
	if !matched {
		return false, 1
	}
	return true, total / float64(len(m.chunks))
}

// score combines the error rate with how far currentLocation is from the
// expected location.
func (m *matcher) score(patternLen, errors, currentLocation, expectedLocation int) float64 {
	accuracy := float64(errors) / float64(patternLen)
	if m.opts.IgnoreLocation {
		return accuracy
	}
	proximity := currentLocation - expectedLocation
	if proximity < 0 {
		proximity = -proximity
	}
	if m.opts.Distance == 0 {
		if proximity != 0 {
			return 1
		}
		return accuracy
	}
	return accuracy + float64(proximity)/float64(m.opts.Distance)
}

func (m *matcher) search(text []rune, c chunk) (bool, float64) {
	pattern := c.pattern
	patternLen := len(pattern)
	textLen := len(text)

	expected := min(max(0, m.opts.Location+c.offset), textLen)
	threshold := m.opts.Threshold

	checkRuns := m.opts.MinMatchCharLength > 1
	var matchMask []bool
	if checkRuns {
		matchMask = make([]bool, textLen)
	}

	// Exact occurrences tighten the threshold before the fuzzy pass.
	for from := expected; ; {
		idx := indexRunes(text, pattern, from)
		if idx < 0 {
			break
		}
		threshold = math.Min(threshold, m.score(patternLen, 0, idx, expected))
		from = idx + patternLen
		if checkRuns {
			for i := range patternLen {
				matchMask[idx+i] = true
			}
		}
	}

	best := -1
	finalScore := 1.0
	binMax := patternLen + textLen
	mask := uint32(1) << uint(patternLen-1)
	var lastBits []uint32

	for errs := 0; errs < patternLen; errs++ {
		// Binary search for how far from the expected location a match
		// with this many errors may still land.
		binMin, binMid := 0, binMax
		for binMin < binMid {
			if m.score(patternLen, errs, expected+binMid, expected) <= threshold {
				binMin = binMid
			} else {
				binMax = binMid
			}
			binMid = (binMax-binMin)/2 + binMin
		}
		binMax = binMid

		start := max(1, expected-binMid+1)
		finish := min(expected+binMid, textLen) + patternLen

		bits := make([]uint32, finish+2)
		bits[finish+1] = (uint32(1) << uint(errs)) - 1

		for j := finish; j >= start; j-- {
			loc := j - 1
			var charMatch uint32
			if loc < textLen {
				charMatch = c.alphabet[text[loc]]
				if checkRuns {
					matchMask[loc] = charMatch != 0
				}
			}

			bits[j] = ((bits[j+1] << 1) | 1) & charMatch
			if errs > 0 {
				bits[j] |= ((bitAt(lastBits, j+1) | bitAt(lastBits, j)) << 1) | 1 | bitAt(lastBits, j+1)
			}

			if bits[j]&mask != 0 {
				if s := m.score(patternLen, errs, loc, expected); s <= threshold {
					finalScore = s
					threshold = s
					best = loc
					if best <= expected {
						break
					}
					start = max(1, 2*expected-best)
				}
			}
		}

		// One more error cannot beat what we already have.
		if m.score(patternLen, errs+1, expected, expected) > threshold {
			break
		}
		lastBits = bits
	}

	matched := best >= 0
	if checkRuns && !hasRun(matchMask, m.opts.MinMatchCharLength) {
		matched = false
	}
	return matched, math.Max(minScore, finalScore)
}

func bitAt(bits []uint32, i int) uint32 {
	if i < 0 || i >= len(bits) {
		return 0
	}
	return bits[i]
}

// hasRun reports whether mask has at least n consecutive set entries.
func hasRun(mask []bool, n int) bool {
	run := 0
	for _, set := range mask {
		if !set {
			run = 0
			continue
		}
		run++
		if run >= n {
			return true
		}
	}
	return false
}

func indexRunes(text, pattern []rune, from int) int {
	if from < 0 {
		from = 0
	}
	for i := from; i+len(pattern) <= len(text); i++ {
		if equalRunes(text[i:i+len(pattern)], pattern) {
			return i
		}
	}
	return -1
}

func equalRunes(a, b []rune) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
