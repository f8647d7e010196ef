// Package content resolves lesson documents by folder and lesson number.
// A missing lesson is reported as ErrNotFound; every other failure is a
// *TransportError so callers can tell the two apart.
package content

import (
	"context"
	"errors"
	"fmt"
	"path"
	"strings"

	"charm.land/lipgloss/v2"
)

// ErrNotFound is returned when no document exists for a lesson.
var ErrNotFound = errors.New("lesson not found")

// Kind is the format of a resolved document.
type Kind int

const (
	Markdown Kind = iota
	HTML
	Component // a named component rather than markup
)

func (k Kind) String() string {
	switch k {
	case Markdown:
		return "markdown"
	case HTML:
		return "html"
	case Component:
		return "component"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Document is a resolved lesson.
type Document struct {
	Path string
	Kind Kind
	Body []byte
}

// Resolver finds the document for lesson number n in folder.
type Resolver interface {
	Resolve(ctx context.Context, folder string, lesson int) (*Document, error)
}

// TransportError wraps a failure to reach or read the content source.
type TransportError struct {
	Path string
	Err  error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("fetch %s: %v", e.Path, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// candidates lists the paths tried for a lesson, in order.
var candidates = []struct {
	ext  string
	kind Kind
}{
	{".md", Markdown},
	{".html", HTML},
	{".component", Component},
}

// lessonBase returns "folder/lessonN" after checking its inputs.
func lessonBase(folder string, lesson int) (string, error) {
	if lesson < 1 {
		return "", fmt.Errorf("lesson %d: %w", lesson, ErrNotFound)
	}
	clean := path.Clean("/" + folder)[1:]
	if clean == "" || strings.Contains(clean, "..") {
		return "", fmt.Errorf("folder %q: %w", folder, ErrNotFound)
	}
	return fmt.Sprintf("%s/lesson%d", clean, lesson), nil
}

// panelStyle frames the inline error message.
var panelStyle = lipgloss.NewStyle().
	Border(lipgloss.RoundedBorder()).
	BorderForeground(lipgloss.Color("#d75f5f")).
	Padding(0, 1)

// ErrorPanel renders the inline message shown when a lesson fails to load.
func ErrorPanel(attempted string, err error) string {
	title := "Could not load lesson"
	if errors.Is(err, ErrNotFound) {
		title = "Lesson not found"
	}
	lines := []string{title, "path: " + attempted}
	if err != nil {
		lines = append(lines, "error: "+err.Error())
	}
	return panelStyle.Render(strings.Join(lines, "\n"))
}
