// Package notify computes recipient sets for state changes, maintains
// per-user unread flags, and exchanges broadcast events so every
// connected client converges on the same unread state. Delivery is
// best-effort; the persisted unread flag is the source of truth, only
// the transient chime/flash depends on the event arriving.
package notify

import (
	"context"

	"consoled/pkg/logger"
	"consoled/pkg/models"
	"consoled/pkg/permissions"
	"consoled/pkg/store"
	"consoled/pkg/telemetry"
)

// Router owns recipient computation and unread-flag fan-out.
type Router struct {
	b        Broadcaster
	presence *Presence
	// globalMute suppresses chimes for every console on this client.
	globalMute bool
}

func NewRouter(b Broadcaster, presence *Presence, globalMute bool) *Router {
	return &Router{b: b, presence: presence, globalMute: globalMute}
}

// Presence returns the session registry the router consults.
func (r *Router) Presence() *Presence { return r.presence }

// Recipients computes the audience for a state change on c: the
// ownership set minus the poster and anyone who may not read the record;
// when the poster is not an administrator, the designated
// administrator-role user joins the set.
func (r *Router) Recipients(c *models.Console, poster models.Actor) []string {
	seen := map[string]struct{}{poster.ID: {}}
	var out []string
	for _, id := range c.PlayerOwnership {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	if !poster.Admin {
		if gm, ok := designatedAdmin(); ok {
			if _, dup := seen[gm]; !dup {
				out = append(out, gm)
			}
		}
	}
	return out
}

// MessagePosted runs the fan-out state machine for a new message on c,
// posted by poster. Addition is the normal case; Cleared uses the same
// machinery with removal semantics.
func (r *Router) MessagePosted(ctx context.Context, c *models.Console, poster models.Actor) error {
	return r.fanOut(ctx, c, poster, true)
}

// Cleared removes recipients' unread flags for c after a bulk message
// wipe. The acting user's own id is included in the removal set.
func (r *Router) Cleared(ctx context.Context, c *models.Console, actor models.Actor) error {
	return r.fanOut(ctx, c, actor, false)
}

func (r *Router) fanOut(ctx context.Context, c *models.Console, poster models.Actor, addition bool) error {
	recipients := r.Recipients(c, poster)
	if addition {
		// public gates whether non-owners are notified
		recipients = ReadableBy(c, recipients)
	} else {
		recipients = append(recipients, poster.ID)
	}

	if poster.Admin {
		// administrators update every recipient's flag directly
		for _, uid := range recipients {
			if err := r.applyFlag(uid, c.ID, addition); err != nil {
				return err
			}
		}
		return r.b.Publish(ctx, models.Event{
			Event:    models.EventMessageNotification,
			Users:    recipients,
			ID:       c.ID,
			Addition: addition,
			Console:  c,
		})
	}

	// non-administrators delegate the flag update: to the online GM when
	// there is one, else to the other online recipients acting for the
	// group
	ev := models.Event{
		Event:    models.EventGMPropagateNotifications,
		Users:    recipients,
		ID:       c.ID,
		Addition: addition,
	}
	gm, ok := designatedAdmin()
	if !ok || !r.presence.Online(gm) {
		ev.Event = models.EventUserPropagateNotification
	}
	if err := r.b.Publish(ctx, ev); err != nil {
		return err
	}
	return r.b.Publish(ctx, models.Event{
		Event:    models.EventMessageNotification,
		Users:    recipients,
		ID:       c.ID,
		Addition: addition,
		Console:  c,
	})
}

// ShareApp broadcasts a request to open the console for the given users.
func (r *Router) ShareApp(ctx context.Context, c *models.Console, users []string) error {
	return r.b.Publish(ctx, models.Event{
		Event: models.EventShareApp,
		Users: users,
		ID:    c.ID,
	})
}

// Reaction is what the presentation layer should do after an event.
type Reaction struct {
	// Chime means play the console's notification sound.
	Chime bool
	Sound string
	// Flash means pulse the console-list indicator; suppressed when the
	// viewer already has the list open.
	Flash bool
	// OpenConsole names a record the client was asked to show.
	OpenConsole string
}

// HandleEvent applies a received broadcast on behalf of self. Unknown
// event names are logged and ignored, never a crash. listOpen reports
// whether the viewer's console-list UI is currently open.
func (r *Router) HandleEvent(ev models.Event, self models.Actor, listOpen bool) Reaction {
	switch ev.Event {
	case models.EventMessageNotification:
		if !ev.Addressed(self.ID) {
			return Reaction{}
		}
		re := Reaction{Flash: !listOpen}
		if ev.Console != nil && ev.Console.Styling.Mute {
			return re
		}
		if r.globalMute {
			return re
		}
		re.Chime = true
		if ev.Console != nil {
			re.Sound = ev.Console.Styling.NotificationSound
		}
		return re

	case models.EventGMPropagateNotifications:
		// only an administrator performs the delegated update
		if !self.Admin {
			return Reaction{}
		}
		r.applyFlags(ev)
		return Reaction{}

	case models.EventUserPropagateNotification:
		// any addressed recipient applies the update for the whole
		// group; the flag write is idempotent so overlap is harmless
		if !ev.Addressed(self.ID) {
			return Reaction{}
		}
		r.applyFlags(ev)
		return Reaction{}

	case models.EventShareApp:
		if !ev.Addressed(self.ID) {
			return Reaction{}
		}
		return Reaction{OpenConsole: ev.ID}

	default:
		logger.Error("unknown_broadcast_event", "event", ev.Event)
		telemetry.DroppedEvents.Inc()
		return Reaction{}
	}
}

func (r *Router) applyFlags(ev models.Event) {
	for _, uid := range ev.Users {
		if err := r.applyFlag(uid, ev.ID, ev.Addition); err != nil {
			logger.Error("unread_flag_update_failed", "user", uid, "console", ev.ID, "error", err)
		}
	}
}

func (r *Router) applyFlag(userID, consoleID string, addition bool) error {
	if addition {
		return store.AddUnread(userID, consoleID)
	}
	return store.RemoveUnread(userID, consoleID)
}

// designatedAdmin returns the id of the single administrator-role user
// from the registry.
func designatedAdmin() (string, bool) {
	users, err := store.ListUsers()
	if err != nil {
		return "", false
	}
	for _, u := range users {
		if u.Role == "admin" {
			return u.ID, true
		}
	}
	return "", false
}

// ReadableBy filters a recipient set down to users allowed to see c.
// Ownership implies readability, but a registry entry may have been
// kicked between computing recipients and fan-out.
func ReadableBy(c *models.Console, userIDs []string) []string {
	var out []string
	for _, id := range userIDs {
		u, err := store.GetUser(id)
		if err != nil {
			out = append(out, id)
			continue
		}
		a := models.Actor{ID: u.ID, Name: u.Name, Admin: u.Role == "admin"}
		if permissions.CanRead(a, c) {
			out = append(out, a.ID)
		}
	}
	return out
}
