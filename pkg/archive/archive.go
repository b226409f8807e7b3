// Package archive converts a live console into a static read-only page:
// an HTML snippet embedding the styling colors and the full transcript,
// written into the page store, after which the live record is deleted.
package archive

import (
	"context"
	"encoding/json"
	"fmt"
	"html"
	"strings"
	"time"

	"consoled/pkg/consoles"
	"consoled/pkg/logger"
	"consoled/pkg/models"
	"consoled/pkg/permissions"
	"consoled/pkg/store"
	"consoled/pkg/telemetry"

	"github.com/google/uuid"
)

// Page is one archived console in the read-only page store.
type Page struct {
	ID         string `json:"id"`
	ConsoleID  string `json:"consoleId"`
	Name       string `json:"name"`
	HTML       string `json:"html"`
	ArchivedTS int64  `json:"archived_ts"`
}

// BuildHTML renders the static transcript snippet. Messages from a
// nameless author render without the bold name prefix.
func BuildHTML(c models.Console) string {
	var b strings.Builder
	fmt.Fprintf(&b, `<div style="background-color:%s;border:2px solid %s;color:%s;padding: 5px">`,
		c.Styling.BG, c.Styling.FG, c.Styling.FG)
	fmt.Fprintf(&b, `<p style="background-color:%s;color:%s"><strong>%s</strong></p>`,
		c.Styling.FG, c.Styling.BG, html.EscapeString(c.Content.Title))
	for _, m := range c.Content.Body {
		if m.User.Name == "" {
			fmt.Fprintf(&b, `<p>%s</p>`, html.EscapeString(m.Text))
		} else {
			fmt.Fprintf(&b, `<p><strong>%s</strong>: %s</p>`,
				html.EscapeString(m.User.Name), html.EscapeString(m.Text))
		}
	}
	b.WriteString(`</div>`)
	return b.String()
}

// Archive exports the record as a static page and removes it from the
// live store. Administrator only. Returns the new page.
func Archive(ctx context.Context, actor models.Actor, consoleID string) (Page, error) {
	if !permissions.CanAdminister(actor) {
		telemetry.Warnings.WithLabelValues("permission_denied").Inc()
		return Page{}, &consoles.Warning{
			Reason: "permission_denied",
			Msg:    fmt.Sprintf("you lack the permissions to archive the console '%s'", consoleID),
		}
	}
	c, err := store.GetConsole(consoleID)
	if err != nil {
		return Page{}, err
	}
	p := Page{
		ID:         uuid.NewString(),
		ConsoleID:  c.ID,
		Name:       c.Name,
		HTML:       BuildHTML(c),
		ArchivedTS: time.Now().UTC().UnixNano(),
	}
	b, err := json.Marshal(p)
	if err != nil {
		return Page{}, err
	}
	if err := store.SavePage(p.ID, b); err != nil {
		return Page{}, err
	}
	if err := store.DeleteConsole(c.ID); err != nil {
		return Page{}, err
	}
	telemetry.Mutations.WithLabelValues("archive").Inc()
	logger.AuditInfo("console_archived", "console", c.ID, "page", p.ID, "actor", actor.ID)
	return p, nil
}

// Get returns one archived page by id.
func Get(id string) (Page, error) {
	var p Page
	v, err := store.GetPage(id)
	if err != nil {
		return p, err
	}
	if err := json.Unmarshal(v, &p); err != nil {
		return p, fmt.Errorf("corrupt archived page %q: %w", id, err)
	}
	return p, nil
}

// List returns every archived page.
func List() ([]Page, error) {
	vals, err := store.ListPages()
	if err != nil {
		return nil, err
	}
	out := make([]Page, 0, len(vals))
	for _, v := range vals {
		var p Page
		if err := json.Unmarshal(v, &p); err != nil {
			logger.Warn("skipping_corrupt_page", "error", err)
			continue
		}
		out = append(out, p)
	}
	return out, nil
}
