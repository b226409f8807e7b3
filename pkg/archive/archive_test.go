package archive

import (
	"context"
	"strings"
	"testing"

	"consoled/pkg/consoles"
	"consoled/pkg/models"
	"consoled/pkg/store"
)

var admin = models.Actor{ID: "gm", Admin: true}

func openStore(t *testing.T) {
	t.Helper()
	if err := store.Open(t.TempDir()); err != nil {
		t.Fatalf("failed to open store: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
}

func sampleConsole() models.Console {
	return models.Console{
		ID:   "c1",
		Name: "board",
		Content: models.Content{
			Title: "Evening News",
			Body: []models.Message{
				{Text: "hello", User: models.UserRef{ID: "p1", Name: "Alice"}},
				{Text: "system notice", User: models.UserRef{}},
			},
		},
		Styling: models.Styling{BG: "#000000", FG: "#ffffff"},
	}
}

func TestBuildHTML(t *testing.T) {
	h := BuildHTML(sampleConsole())
	if !strings.Contains(h, `background-color:#000000`) {
		t.Fatalf("styling colors missing: %s", h)
	}
	if !strings.Contains(h, `<strong>Evening News</strong>`) {
		t.Fatalf("title banner missing: %s", h)
	}
	if !strings.Contains(h, `<strong>Alice</strong>: hello`) {
		t.Fatalf("authored line missing: %s", h)
	}
	// nameless messages render without the bold prefix
	if !strings.Contains(h, `<p>system notice</p>`) {
		t.Fatalf("nameless line missing: %s", h)
	}
	if strings.Contains(h, `<strong></strong>`) {
		t.Fatalf("empty author prefix rendered: %s", h)
	}
}

func TestBuildHTMLEscapesMessageText(t *testing.T) {
	c := sampleConsole()
	c.Content.Body = []models.Message{
		{Text: `<script>alert(1)</script>`, User: models.UserRef{Name: "Mallory"}},
	}
	h := BuildHTML(c)
	if strings.Contains(h, "<script>") {
		t.Fatalf("message text not escaped: %s", h)
	}
}

func TestArchiveExportsAndDeletes(t *testing.T) {
	openStore(t)
	c := sampleConsole()
	if err := store.SaveConsole(c.ID, c); err != nil {
		t.Fatalf("save failed: %v", err)
	}

	if _, err := Archive(context.Background(), models.Actor{ID: "p1"}, c.ID); err == nil {
		t.Fatalf("expected permission warning for player archive")
	} else if w, ok := consoles.AsWarning(err); !ok || w.Reason != "permission_denied" {
		t.Fatalf("expected permission_denied, got %v", err)
	}

	p, err := Archive(context.Background(), admin, c.ID)
	if err != nil {
		t.Fatalf("archive failed: %v", err)
	}
	if p.ConsoleID != c.ID || p.Name != "board" || p.HTML == "" {
		t.Fatalf("unexpected page: %+v", p)
	}

	// the live record is gone, the page survives
	if _, err := store.GetConsole(c.ID); err != store.ErrNotFound {
		t.Fatalf("live record survived archive: %v", err)
	}
	got, err := Get(p.ID)
	if err != nil {
		t.Fatalf("page read failed: %v", err)
	}
	if got.HTML != p.HTML {
		t.Fatalf("stored page differs")
	}

	pages, err := List()
	if err != nil || len(pages) != 1 {
		t.Fatalf("expected single archived page: %v %d", err, len(pages))
	}
}

func TestArchiveMissingConsole(t *testing.T) {
	openStore(t)
	if _, err := Archive(context.Background(), admin, "ghost"); err != store.ErrNotFound {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
