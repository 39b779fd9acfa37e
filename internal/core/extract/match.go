package extract

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/joseph-ayodele/medreport-summarizer/constants"
)

// MatchKind tags the variant carried by a Match.
type MatchKind uint8

const (
	MatchHeader MatchKind = iota + 1
	MatchKeyValue
	MatchListItem
)

func (k MatchKind) String() string {
	switch k {
	case MatchHeader:
		return "header"
	case MatchKeyValue:
		return "key_value"
	case MatchListItem:
		return "list_item"
	}
	return "none"
}

// Match is the result of one matcher applied to one line.
type Match struct {
	Kind MatchKind

	// header
	Section constants.SectionKind
	Inline  string // content after the header separator

	// key-value
	Label string          // label as written
	Field constants.Field // canonical field, empty for lab names

	// key-value and list item
	Value  string
	Marker string // enumeration marker of a list item
}

// Matcher recognizes one kind of structure within a single line.
type Matcher interface {
	Kind() MatchKind
	Match(line string) []Match
}

// ---------- header ----------

var (
	reLeadingHashes = regexp.MustCompile(`^#{1,6}\s*`)
	emphasis        = strings.NewReplacer("**", "", "__", "")
	headerSeps      = []string{" - ", " – ", " — "}
)

// HeaderMatcher recognizes section headers from the vocabulary in constants,
// plus bare "Title Words:" lines that bound an unknown section.
type HeaderMatcher struct{}

func (HeaderMatcher) Kind() MatchKind { return MatchHeader }

func (HeaderMatcher) Match(line string) []Match {
	s := strings.TrimSpace(line)
	if s == "" {
		return nil
	}
	s = reLeadingHashes.ReplaceAllString(s, "")
	s = strings.TrimSpace(emphasis.Replace(s))

	label, rest, sep := splitHeader(s)
	if sep == "" {
		if kind, ok := constants.LookupSection(strings.TrimRight(s, ".")); ok {
			return []Match{{Kind: MatchHeader, Section: kind, Label: s}}
		}
		return nil
	}
	if kind, ok := constants.LookupSection(label); ok {
		return []Match{{Kind: MatchHeader, Section: kind, Label: label, Inline: rest}}
	}
	if sep == ":" && rest == "" && isTitleLabel(label) && !constants.IsKnownLabel(label) {
		return []Match{{Kind: MatchHeader, Section: constants.SectionUnknown, Label: label}}
	}
	return nil
}

// splitHeader splits s at the earliest header separator.
func splitHeader(s string) (label, rest, sep string) {
	best := -1
	if i := strings.IndexByte(s, ':'); i >= 0 {
		best, sep = i, ":"
	}
	for _, cand := range headerSeps {
		if i := strings.Index(s, cand); i >= 0 && (best < 0 || i < best) {
			best, sep = i, cand
		}
	}
	if best < 0 {
		return s, "", ""
	}
	return strings.TrimSpace(s[:best]), strings.TrimSpace(s[best+len(sep):]), sep
}

func isTitleLabel(label string) bool {
	if label == "" || len(label) > 40 || len(strings.Fields(label)) > 5 {
		return false
	}
	for i, r := range label {
		if i == 0 && !unicode.IsUpper(r) {
			return false
		}
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == ' ' || strings.ContainsRune("/&()-'", r) {
			continue
		}
		return false
	}
	return true
}

// ---------- key-value ----------

// KeyValueMatcher finds "Label: value" pairs, several per line allowed.
// Without a colon a pair is accepted only when the value starts with a digit.
type KeyValueMatcher struct {
	re            *regexp.Regexp
	colonRequired bool
	valueCut      func(string) string
}

// NewKeyValueMatcher builds a matcher over labels, which must be ordered
// longest first.
func NewKeyValueMatcher(labels []string, colonRequired bool) *KeyValueMatcher {
	alts := make([]string, len(labels))
	for i, l := range labels {
		alts[i] = strings.ReplaceAll(regexp.QuoteMeta(l), " ", `\s+`)
	}
	pattern := `(?i)(?:^|[^\p{L}\p{N}])(` + strings.Join(alts, "|") + `)(?:\s*(:)|\b)`
	return &KeyValueMatcher{re: regexp.MustCompile(pattern), colonRequired: colonRequired}
}

func (m *KeyValueMatcher) Kind() MatchKind { return MatchKeyValue }

type kvHit struct {
	labelStart, labelEnd, valueStart int
}

func (m *KeyValueMatcher) Match(line string) []Match {
	idx := m.re.FindAllStringSubmatchIndex(line, -1)
	if len(idx) == 0 {
		return nil
	}
	hits := make([]kvHit, 0, len(idx))
	for _, loc := range idx {
		hasColon := loc[4] >= 0
		if m.colonRequired && !hasColon {
			continue
		}
		if !hasColon && !startsWithDigit(line[loc[1]:]) {
			continue
		}
		hits = append(hits, kvHit{labelStart: loc[2], labelEnd: loc[3], valueStart: loc[1]})
	}
	var out []Match
	for i, h := range hits {
		end := len(line)
		if i+1 < len(hits) {
			end = hits[i+1].labelStart
		}
		value := trimValue(line[h.valueStart:end])
		if m.valueCut != nil {
			value = m.valueCut(value)
		}
		if value == "" {
			continue
		}
		label := line[h.labelStart:h.labelEnd]
		field, _ := constants.Canonicalize(label)
		out = append(out, Match{Kind: MatchKeyValue, Label: label, Field: field, Value: value})
	}
	return out
}

func startsWithDigit(s string) bool {
	s = strings.TrimLeft(s, " ")
	return s != "" && s[0] >= '0' && s[0] <= '9'
}

func trimValue(s string) string {
	return strings.TrimSpace(strings.TrimRight(strings.TrimSpace(s), ",;|"))
}

var reMeasurement = regexp.MustCompile(`(?i)^[<>~]?\d+(?:\.\d+)?(?:\s*/\s*\d+(?:\.\d+)?)?(?:\s*(?:%|mm\s?hg|bpm|beats/min|breaths/min|/min|°\s?[fc]\b|°|deg(?:rees)?\s?[fc]\b|[fc]\b|kg/m2|kg|lbs?\b|cm\b|/10))?`)

// measurement keeps the leading measurement of a numeric value and leaves
// other values as written.
func measurement(v string) string {
	if m := reMeasurement.FindString(v); m != "" {
		return strings.TrimSpace(m)
	}
	return v
}

// ---------- list item ----------

var reListItem = regexp.MustCompile(`^\s*(\d{1,3}[.)]|[A-Za-z][.)]|[-*•·])\s+(.*\S)\s*$`)

// ListItemMatcher recognizes enumerated or bulleted list lines.
type ListItemMatcher struct{}

func (ListItemMatcher) Kind() MatchKind { return MatchListItem }

func (ListItemMatcher) Match(line string) []Match {
	m := reListItem.FindStringSubmatch(line)
	if m == nil {
		return nil
	}
	return []Match{{Kind: MatchListItem, Marker: m[1], Value: strings.TrimSpace(m[2])}}
}

var (
	headerMatcher      Matcher = HeaderMatcher{}
	listItemMatcher    Matcher = ListItemMatcher{}
	demographicMatcher Matcher = NewKeyValueMatcher(constants.DemographicLabels(), true)
	vitalMatcher       Matcher = newVitalMatcher()
	labMatcher         Matcher = newLabMatcher()
)

func newVitalMatcher() *KeyValueMatcher {
	m := NewKeyValueMatcher(constants.VitalLabels(), false)
	m.valueCut = measurement
	return m
}

func newLabMatcher() *KeyValueMatcher {
	m := NewKeyValueMatcher(constants.LabLabels(), true)
	m.valueCut = func(v string) string {
		if !startsWithDigit(v) && !strings.HasPrefix(v, "<") && !strings.HasPrefix(v, ">") {
			return ""
		}
		return measurementWithUnit(v)
	}
	return m
}

var reLabValue = regexp.MustCompile(`^[<>]?\s*\d+(?:\.\d+)?(?:\s*(?:[a-zA-Z%μµ/]+(?:/[a-zA-Z0-9]+)?))?`)

func measurementWithUnit(v string) string {
	if m := reLabValue.FindString(v); m != "" {
		return strings.TrimSpace(m)
	}
	return v
}
