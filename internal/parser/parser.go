// Package parser turns the model's semi-structured reply into flash cards.
//
// A reply is a sequence of blocks introduced by "CARD <n>:". Inside a block,
// a line whose first token is "Front:", "Back:" or "Tags:" opens that field
// and the following lines continue it until the next label line. Labels in
// the middle of a line are ordinary text, unless the line grammar finds no
// front or back; then each field runs from its label to the next label
// wherever they appear, so one-line blocks still parse.
package parser

import (
	"regexp"
	"strings"
	"time"

	"github.com/rcliao/flashcards/internal/model"
)

const (
	// SourceLimit is how many characters of the original text a card keeps.
	SourceLimit = 150
	// TruncationMarker is appended to a source cut at SourceLimit.
	TruncationMarker = "..."
)

var cardDelimiter = regexp.MustCompile(`CARD \d+:`)

// ParseError reports that the reply held no usable card block.
type ParseError struct {
	Blocks int // candidate blocks inspected
}

func (e *ParseError) Error() string { return "no cards parsed" }

// Fields is the content extracted from one block.
type Fields struct {
	Front string
	Back  string
	Tags  []string
}

// Parser converts replies into cards. Now is the clock used for ids and
// timestamps; nil means time.Now.
type Parser struct {
	Now func() time.Time
}

// New returns a Parser on the wall clock.
func New() *Parser {
	return &Parser{Now: time.Now}
}

// Parse uses a wall-clock Parser.
func Parse(output, original string) ([]model.FlashCard, error) {
	return New().Parse(output, original)
}

// Parse extracts every well-formed block from output. Blocks missing a front
// or back are dropped individually; a reply with none left is a *ParseError.
func (p *Parser) Parse(output, original string) ([]model.FlashCard, error) {
	now := time.Now()
	if p != nil && p.Now != nil {
		now = p.Now()
	}
	created := model.FormatTime(now)
	source := Truncate(original)
	base := now.UnixMilli()

	blocks := SplitBlocks(output)
	cards := make([]model.FlashCard, 0, len(blocks))
	for _, b := range blocks {
		f, ok := ParseBlock(b)
		if !ok {
			continue
		}
		cards = append(cards, model.FlashCard{
			ID:      base + int64(len(cards)),
			Front:   f.Front,
			Back:    f.Back,
			Tags:    f.Tags,
			Created: created,
			Source:  source,
		})
	}

	if len(cards) == 0 {
		return nil, &ParseError{Blocks: len(blocks)}
	}
	return cards, nil
}

// SplitBlocks splits output on "CARD <n>:" markers and drops empty segments.
func SplitBlocks(output string) []string {
	var blocks []string
	for _, seg := range cardDelimiter.Split(output, -1) {
		if strings.TrimSpace(seg) == "" {
			continue
		}
		blocks = append(blocks, seg)
	}
	return blocks
}

type field int

const (
	fieldNone field = iota
	fieldFront
	fieldBack
	fieldTags
)

var labels = []struct {
	name  string
	field field
}{
	{"Front:", fieldFront},
	{"Back:", fieldBack},
	{"Tags:", fieldTags},
}

// ParseBlock reads one block. ok is false when front or back is missing or empty.
func ParseBlock(block string) (Fields, bool) {
	var parts [4][]string
	var seen [4]bool
	current := fieldNone

	for _, line := range strings.Split(block, "\n") {
		if f, rest, ok := matchLabel(line); ok && !seen[f] {
			seen[f] = true
			current = f
			parts[f] = append(parts[f], rest)
			continue
		}
		if current != fieldNone {
			parts[current] = append(parts[current], line)
		}
	}

	front := joinField(parts[fieldFront])
	back := joinField(parts[fieldBack])
	if front == "" || back == "" {
		return scanInline(block)
	}

	return Fields{
		Front: front,
		Back:  back,
		Tags:  SplitTags(joinField(parts[fieldTags])),
	}, true
}

// scanInline reads labels anywhere in the block: Front up to Back, Back up
// to Tags, Tags to the end.
func scanInline(block string) (Fields, bool) {
	fi := strings.Index(block, "Front:")
	if fi < 0 {
		return Fields{}, false
	}
	rest := block[fi+len("Front:"):]
	bi := strings.Index(rest, "Back:")
	if bi < 0 {
		return Fields{}, false
	}
	front := trimInline(rest[:bi])
	rest = rest[bi+len("Back:"):]

	back, tags := rest, ""
	if ti := strings.Index(rest, "Tags:"); ti >= 0 {
		back, tags = rest[:ti], rest[ti+len("Tags:"):]
	}
	back = trimInline(back)
	if front == "" || back == "" {
		return Fields{}, false
	}
	return Fields{Front: front, Back: back, Tags: SplitTags(trimInline(tags))}, true
}

// trimInline drops whitespace and the emphasis markup left around inline labels.
func trimInline(s string) string {
	return strings.Trim(s, " \t\r\n*_")
}

// SplitTags splits a tags segment on commas, trimming and dropping empties.
// The result is never nil.
func SplitTags(segment string) []string {
	tags := []string{}
	for _, t := range strings.Split(segment, ",") {
		t = strings.TrimSpace(t)
		if t != "" {
			tags = append(tags, t)
		}
	}
	return tags
}

// Truncate keeps the first SourceLimit characters of text, marking the cut.
func Truncate(text string) string {
	r := []rune(text)
	if len(r) <= SourceLimit {
		return text
	}
	return string(r[:SourceLimit]) + TruncationMarker
}

// matchLabel reports whether line opens a field, returning the text after the label.
// Leading list and emphasis markup ("- ", "**Front:**") is ignored.
func matchLabel(line string) (field, string, bool) {
	s := strings.TrimLeft(line, " \t*_->#")
	for _, l := range labels {
		if strings.HasPrefix(s, l.name) {
			rest := strings.TrimLeft(s[len(l.name):], "*_")
			return l.field, rest, true
		}
	}
	return fieldNone, "", false
}

func joinField(lines []string) string {
	return strings.TrimSpace(strings.Join(lines, "\n"))
}
