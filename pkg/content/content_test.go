package content

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"testing/fstest"
	"time"
)

func TestFSResolver(t *testing.T) {
	fsys := fstest.MapFS{
		"docker/lesson1.md":          {Data: []byte("# Images")},
		"docker/lesson2.html":        {Data: []byte("<h1>Volumes</h1>")},
		"react/lesson1.component":    {Data: []byte("HooksIntro")},
		"react/lesson2.md":           {Data: []byte("# State")},
		"react/lesson2.html":         {Data: []byte("<p>shadowed</p>")},
		"redis/lesson1.md/README.md": {Data: []byte("a directory, not a lesson")},
	}
	r := NewFSResolver(fsys)

	tests := []struct {
		folder   string
		lesson   int
		wantKind Kind
		wantBody string
		wantErr  error
	}{
		{"docker", 1, Markdown, "# Images", nil},
		{"docker", 2, HTML, "<h1>Volumes</h1>", nil},
		{"react", 1, Component, "HooksIntro", nil},
		{"react", 2, Markdown, "# State", nil},
		{"docker", 3, 0, "", ErrNotFound},
		{"missing", 1, 0, "", ErrNotFound},
		{"docker", 0, 0, "", ErrNotFound},
		{"", 1, 0, "", ErrNotFound},
	}

	for _, tc := range tests {
		doc, err := r.Resolve(context.Background(), tc.folder, tc.lesson)
		if tc.wantErr != nil {
			if !errors.Is(err, tc.wantErr) {
				t.Errorf("%s/%d: err = %v, want %v", tc.folder, tc.lesson, err, tc.wantErr)
			}
			continue
		}
		if err != nil {
			t.Errorf("%s/%d: %v", tc.folder, tc.lesson, err)
			continue
		}
		if doc.Kind != tc.wantKind || string(doc.Body) != tc.wantBody {
			t.Errorf("%s/%d: got %s %q", tc.folder, tc.lesson, doc.Kind, doc.Body)
		}
	}
}

func TestFSResolverDirectoryIsTransportError(t *testing.T) {
	fsys := fstest.MapFS{
		"redis/lesson1.md/README.md": {Data: []byte("x")},
	}
	_, err := NewFSResolver(fsys).Resolve(context.Background(), "redis", 1)

	var te *TransportError
	if !errors.As(err, &te) {
		t.Fatalf("err = %v, want *TransportError", err)
	}
	if errors.Is(err, ErrNotFound) {
		t.Error("transport failure reported as not found")
	}
}

func TestOpenDirEvictsChangedLessons(t *testing.T) {
	dir := t.TempDir()
	folder := filepath.Join(dir, "docker")
	if err := os.Mkdir(folder, 0o755); err != nil {
		t.Fatal(err)
	}
	lesson := filepath.Join(folder, "lesson1.md")
	if err := os.WriteFile(lesson, []byte("v1"), 0o644); err != nil {
		t.Fatal(err)
	}

	r, err := OpenDir(dir, log.New(io.Discard, "", 0))
	if err != nil {
		t.Fatalf("OpenDir: %v", err)
	}
	defer r.Close()

	doc, err := r.Resolve(context.Background(), "docker", 1)
	if err != nil || string(doc.Body) != "v1" {
		t.Fatalf("first resolve = %v, %v", doc, err)
	}

	if err := os.WriteFile(lesson, []byte("v2"), 0o644); err != nil {
		t.Fatal(err)
	}
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		doc, err = r.Resolve(context.Background(), "docker", 1)
		if err == nil && string(doc.Body) == "v2" {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("cache not invalidated, last = %v, %v", doc, err)
}

func TestHTTPResolver(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		switch req.URL.Path {
		case "/lessons/docker/lesson1.md":
			io.WriteString(w, "# Images")
		case "/lessons/react/lesson3.html":
			io.WriteString(w, "<p>Effects</p>")
		case "/lessons/huge/lesson1.md":
			w.Write(bytes.Repeat([]byte("#"), maxBody+1))
		case "/lessons/broken/lesson1.md":
			http.Error(w, "boom", http.StatusInternalServerError)
		default:
			http.NotFound(w, req)
		}
	}))
	defer srv.Close()

	r := &HTTPResolver{BaseURL: srv.URL + "/lessons", Client: srv.Client()}
	ctx := context.Background()

	doc, err := r.Resolve(ctx, "docker", 1)
	if err != nil || doc.Kind != Markdown || string(doc.Body) != "# Images" {
		t.Errorf("docker/1 = %v, %v", doc, err)
	}
	doc, err = r.Resolve(ctx, "react", 3)
	if err != nil || doc.Kind != HTML {
		t.Errorf("react/3 = %v, %v", doc, err)
	}

	if _, err := r.Resolve(ctx, "docker", 9); !errors.Is(err, ErrNotFound) {
		t.Errorf("docker/9 err = %v, want ErrNotFound", err)
	}

	_, err = r.Resolve(ctx, "huge", 1)
	if !errors.Is(err, ErrTooLarge) || !errors.As(err, new(*TransportError)) {
		t.Errorf("huge/1 err = %v, want too-large transport error", err)
	}

	_, err = r.Resolve(ctx, "broken", 1)
	var te *TransportError
	if !errors.As(err, &te) || errors.Is(err, ErrNotFound) {
		t.Errorf("broken/1 err = %v, want transport error", err)
	}
}

func TestHTTPResolverUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	_, err := (&HTTPResolver{BaseURL: url}).Resolve(context.Background(), "docker", 1)
	var te *TransportError
	if !errors.As(err, &te) {
		t.Fatalf("err = %v, want *TransportError", err)
	}
}

func TestErrorPanel(t *testing.T) {
	panel := ErrorPanel("docker/lesson9", ErrNotFound)
	for _, want := range []string{"Lesson not found", "docker/lesson9"} {
		if !strings.Contains(panel, want) {
			t.Errorf("panel missing %q:\n%s", want, panel)
		}
	}

	panel = ErrorPanel("react/lesson1", &TransportError{Path: "react/lesson1.md", Err: errors.New("timeout")})
	if !strings.Contains(panel, "Could not load lesson") || !strings.Contains(panel, "timeout") {
		t.Errorf("transport panel:\n%s", panel)
	}
}
