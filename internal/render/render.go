// Package render prints cards for the CLI in json or text form.
package render

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"

	"github.com/rcliao/flashcards/internal/model"
)

// Output formats.
const (
	FormatJSON = "json"
	FormatText = "text"
)

const defaultWidth = 72

var (
	frameStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#4285f4")).
			Padding(0, 1)
	frontStyle = lipgloss.NewStyle().Bold(true)
	metaStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#6B7280"))
	tagStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#06B6D4"))
)

// ValidFormat reports whether f is a known output format.
func ValidFormat(f string) bool {
	return f == FormatJSON || f == FormatText
}

// JSON writes v as indented JSON followed by a newline.
func JSON(w io.Writer, v any) error {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, string(b))
	return err
}

// Cards writes cards in the given format. JSON output is always an array.
func Cards(w io.Writer, cards []model.FlashCard, format string) error {
	if format != FormatText {
		if cards == nil {
			cards = []model.FlashCard{}
		}
		return JSON(w, cards)
	}
	if len(cards) == 0 {
		_, err := fmt.Fprintln(w, metaStyle.Render("no cards"))
		return err
	}
	for _, c := range cards {
		if _, err := fmt.Fprintln(w, CardText(c, defaultWidth)); err != nil {
			return err
		}
	}
	return nil
}

// Card writes a single card.
func Card(w io.Writer, c model.FlashCard, format string) error {
	if format != FormatText {
		return JSON(w, c)
	}
	_, err := fmt.Fprintln(w, CardText(c, defaultWidth))
	return err
}

// CardText renders one card inside a frame, with the back as markdown.
func CardText(c model.FlashCard, width int) string {
	var b strings.Builder
	b.WriteString(metaStyle.Render(fmt.Sprintf("#%d  %s", c.ID, c.Created)))
	b.WriteString("\n")
	b.WriteString(frontStyle.Render(c.Front))
	b.WriteString("\n\n")
	b.WriteString(Markdown(c.Back, width-4))
	if len(c.Tags) > 0 {
		b.WriteString("\n\n")
		tags := make([]string, len(c.Tags))
		for i, t := range c.Tags {
			tags[i] = "#" + t
		}
		b.WriteString(tagStyle.Render(strings.Join(tags, " ")))
	}
	return frameStyle.Render(b.String())
}

// Markdown renders content with glamour, returning it unchanged on failure.
func Markdown(content string, width int) string {
	if strings.TrimSpace(content) == "" {
		return ""
	}
	if width <= 0 {
		width = defaultWidth
	}

	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return content
	}
	out, err := r.Render(content)
	if err != nil {
		return content
	}
	return strings.Trim(out, "\n")
}
