// Package consoles is the mutation and query surface over the console
// pool. Every entry point checks the permission gate first; refusals are
// warnings, and refused mutations leave the store untouched.
package consoles

import (
	"context"

	"consoled/pkg/commands"
	"consoled/pkg/defaults"
	"consoled/pkg/logger"
	"consoled/pkg/models"
	"consoled/pkg/notify"
	"consoled/pkg/permissions"
	"consoled/pkg/store"
	"consoled/pkg/telemetry"
	"consoled/pkg/validation"
)

// Flag names accepted by ToggleFlag.
const (
	FlagLock          = "lock"
	FlagMute          = "mute"
	FlagNotifications = "notifications"
	FlagShow          = "show"
	FlagTimestamps    = "timestamps"
)

// Service wires the pool mutations to the notification router.
type Service struct {
	router *notify.Router
}

func NewService(router *notify.Router) *Service {
	return &Service{router: router}
}

// Create makes a new record from the world default template (or the
// canonical default when none is configured). Administrator only.
func (s *Service) Create(ctx context.Context, actor models.Actor) (models.Console, error) {
	if !permissions.CanAdminister(actor) {
		return models.Console{}, warnf("permission_denied", "you lack the permissions to create a console")
	}
	c := defaults.CreateFrom(defaults.GetTemplate())
	if err := store.SaveConsole(c.ID, c); err != nil {
		return models.Console{}, err
	}
	telemetry.Mutations.WithLabelValues("create").Inc()
	logger.AuditInfo("console_created", "id", c.ID, "actor", actor.ID)
	return c, nil
}

// Get returns the record when the actor may read it. GM info is stripped
// for non-administrators.
func (s *Service) Get(actor models.Actor, id string) (models.Console, error) {
	c, err := store.GetConsole(id)
	if err != nil {
		return models.Console{}, err
	}
	if !permissions.CanRead(actor, &c) {
		return models.Console{}, warnf("permission_denied", "you lack the permissions to view the console '%s'", id)
	}
	return sanitize(c, actor), nil
}

// List returns every record the actor may read.
func (s *Service) List(actor models.Actor) ([]models.Console, error) {
	all, err := store.ListConsoles()
	if err != nil {
		return nil, err
	}
	out := make([]models.Console, 0, len(all))
	for _, c := range all {
		if permissions.CanRead(actor, &c) {
			out = append(out, sanitize(c, actor))
		}
	}
	return out, nil
}

// GetByName returns the first readable record with the given name.
func (s *Service) GetByName(actor models.Actor, name string) (models.Console, error) {
	all, err := store.ListConsoles()
	if err != nil {
		return models.Console{}, err
	}
	for _, c := range all {
		if c.Name == name && permissions.CanRead(actor, &c) {
			return sanitize(c, actor), nil
		}
	}
	return models.Console{}, ErrNotFound
}

// Update replaces a record's configurable fields with the full record
// supplied by the caller. Administrator only; the stored id is kept.
// Callers must send complete arrays: the merge protocol replaces arrays
// wholesale and never shrinks one it was not sent.
func (s *Service) Update(ctx context.Context, actor models.Actor, id string, c models.Console) (models.Console, error) {
	if !permissions.CanAdminister(actor) {
		return models.Console{}, warnf("permission_denied", "you lack the permissions to edit the console '%s'", id)
	}
	if _, err := store.GetConsole(id); err != nil {
		return models.Console{}, err
	}
	if err := validation.ValidateConsole(c); err != nil {
		return models.Console{}, warnf("invalid_input", "%s", err.Error())
	}
	c.ID = id
	if err := store.SaveConsole(id, c); err != nil {
		return models.Console{}, err
	}
	telemetry.Mutations.WithLabelValues("update").Inc()
	return c, nil
}

// Delete hard-deletes a record through the tombstone key. Administrator
// only. The data is discarded; archived exports live elsewhere.
func (s *Service) Delete(ctx context.Context, actor models.Actor, id string) error {
	if !permissions.CanAdminister(actor) {
		return warnf("permission_denied", "you lack the permissions to delete the console '%s'", id)
	}
	if _, err := store.GetConsole(id); err != nil {
		return err
	}
	if err := store.DeleteConsole(id); err != nil {
		return err
	}
	telemetry.Mutations.WithLabelValues("delete").Inc()
	logger.AuditInfo("console_deleted", "id", id, "actor", actor.ID)
	return nil
}

// Duplicate clones a record under a fresh id with a renamed title.
// Unread-notification state is per-user and is never copied.
func (s *Service) Duplicate(ctx context.Context, actor models.Actor, id string) (models.Console, error) {
	if !permissions.CanAdminister(actor) {
		return models.Console{}, warnf("permission_denied", "you lack the permissions to duplicate the console '%s'", id)
	}
	c, err := store.GetConsole(id)
	if err != nil {
		return models.Console{}, err
	}
	clone := defaults.CreateFrom(c)
	clone.Name = c.Name + " (copy)"
	if err := store.SaveConsole(clone.ID, clone); err != nil {
		return models.Console{}, err
	}
	telemetry.Mutations.WithLabelValues("duplicate").Inc()
	return clone, nil
}

// ToggleFlag flips one of the record's feature toggles. Administrator
// only. Unknown flag names are warned about and ignored.
func (s *Service) ToggleFlag(ctx context.Context, actor models.Actor, id, flag string) (models.Console, error) {
	if !permissions.CanAdminister(actor) {
		return models.Console{}, warnf("permission_denied", "you lack the permissions to configure the console '%s'", id)
	}
	c, err := store.GetConsole(id)
	if err != nil {
		return models.Console{}, err
	}
	switch flag {
	case FlagLock:
		c.Locked = !c.Locked
	case FlagMute:
		c.Styling.Mute = !c.Styling.Mute
	case FlagNotifications:
		c.Notifications = !c.Notifications
	case FlagShow:
		c.Public = !c.Public
	case FlagTimestamps:
		c.Timestamps = !c.Timestamps
	default:
		logger.Warn("unknown_toggle_flag", "flag", flag, "console", id)
		return models.Console{}, warnf("unknown_flag", "'%s' is not a recognised flag", flag)
	}
	if err := store.SaveConsole(id, c); err != nil {
		return models.Console{}, err
	}
	telemetry.Mutations.WithLabelValues("toggle").Inc()
	return c, nil
}

// PostMessage truncates, composes and appends a message, persists the
// full log array, and fans out notifications when the record has them
// enabled.
func (s *Service) PostMessage(ctx context.Context, actor models.Actor, id string, msg models.Message) (models.Console, error) {
	c, err := store.GetConsole(id)
	if err != nil {
		return models.Console{}, err
	}
	if !permissions.CanPost(actor, &c) {
		if c.Locked && !actor.Admin {
			return models.Console{}, warnf("locked", "the console '%s' is currently locked and cannot be edited", c.Name)
		}
		return models.Console{}, warnf("permission_denied", "you lack the permissions to post to the console '%s'", c.Name)
	}
	if msg.Text != "" {
		text, err := Truncate(msg.Text, c.Limits)
		if err != nil {
			return models.Console{}, err
		}
		msg.Text = text
	}
	if !c.Timestamps {
		msg.Timestamp = ""
	}
	if msg.User.ID == "" {
		msg.User = models.UserRef{ID: actor.ID, Name: actor.Name}
	}
	if err := validation.ValidateMessage(msg); err != nil {
		return models.Console{}, warnf("invalid_input", "%s", err.Error())
	}
	c.Content.Body = append(c.Content.Body, msg)
	if err := store.SaveConsole(id, c); err != nil {
		return models.Console{}, err
	}
	telemetry.Mutations.WithLabelValues("post").Inc()
	if c.Notifications {
		if err := s.router.MessagePosted(ctx, &c, actor); err != nil {
			// notification delivery is best-effort; the message is stored
			logger.Error("notify_post_failed", "console", id, "error", err)
		}
	}
	return sanitize(c, actor), nil
}

// DeleteMessage splices one message out of the log by index and persists
// the full remaining array; a shorter array sent through the merge
// protocol alone would not shrink the stored log.
func (s *Service) DeleteMessage(ctx context.Context, actor models.Actor, id string, index int) (models.Console, error) {
	c, err := store.GetConsole(id)
	if err != nil {
		return models.Console{}, err
	}
	if index < 0 || index >= len(c.Content.Body) {
		return models.Console{}, warnf("invalid_input", "message index %d out of range", index)
	}
	msg := c.Content.Body[index]
	if !permissions.CanDeleteMessage(actor, msg, &c) {
		if c.Locked {
			return models.Console{}, warnf("locked", "the console '%s' is currently locked and cannot be edited", c.Name)
		}
		return models.Console{}, warnf("permission_denied", "you lack the permissions to delete a message that is not yours")
	}
	c.Content.Body = append(c.Content.Body[:index], c.Content.Body[index+1:]...)
	if err := store.SaveConsole(id, c); err != nil {
		return models.Console{}, err
	}
	telemetry.Mutations.WithLabelValues("delete_message").Inc()
	return sanitize(c, actor), nil
}

// Clear wipes the message log. Administrator only; recipients' unread
// flags for the record are removed, including the actor's own.
func (s *Service) Clear(ctx context.Context, actor models.Actor, id string) (models.Console, error) {
	if !permissions.CanAdminister(actor) {
		return models.Console{}, warnf("permission_denied", "you lack the permissions to clear the console '%s'", id)
	}
	c, err := store.GetConsole(id)
	if err != nil {
		return models.Console{}, err
	}
	c.Content.Body = []models.Message{}
	if err := store.SaveConsole(id, c); err != nil {
		return models.Console{}, err
	}
	telemetry.Mutations.WithLabelValues("clear").Inc()
	if err := s.router.Cleared(ctx, &c, actor); err != nil {
		logger.Error("notify_clear_failed", "console", id, "error", err)
	}
	return c, nil
}

// Invite adds a user, found by registry name, to the ownership set.
// A name with no registry entry is a local warning; the store is left
// unchanged.
func (s *Service) Invite(ctx context.Context, actor models.Actor, id, userName string) (models.Console, error) {
	return s.membership(ctx, actor, id, userName, true)
}

// Kick removes a user from the ownership set by registry name.
func (s *Service) Kick(ctx context.Context, actor models.Actor, id, userName string) (models.Console, error) {
	return s.membership(ctx, actor, id, userName, false)
}

func (s *Service) membership(ctx context.Context, actor models.Actor, id, userName string, add bool) (models.Console, error) {
	if !permissions.CanAdminister(actor) {
		return models.Console{}, warnf("permission_denied", "you lack the permissions to configure the console '%s'", id)
	}
	c, err := store.GetConsole(id)
	if err != nil {
		return models.Console{}, err
	}
	u, err := store.GetUserByName(userName)
	if err != nil {
		return models.Console{}, warnf("unknown_user", "a user with the name '%s' does not exist", userName)
	}
	if add {
		if !c.HasOwner(u.ID) {
			c.PlayerOwnership = append(c.PlayerOwnership, u.ID)
		}
	} else {
		out := c.PlayerOwnership[:0]
		for _, oid := range c.PlayerOwnership {
			if oid != u.ID {
				out = append(out, oid)
			}
		}
		c.PlayerOwnership = out
	}
	if err := store.SaveConsole(id, c); err != nil {
		return models.Console{}, err
	}
	telemetry.Mutations.WithLabelValues("membership").Inc()
	return c, nil
}

// Rename sets the record's display name. Administrator only.
func (s *Service) Rename(ctx context.Context, actor models.Actor, id, name string) (models.Console, error) {
	return s.setText(ctx, actor, id, name, true)
}

// Retitle sets the record's content title. Administrator only.
func (s *Service) Retitle(ctx context.Context, actor models.Actor, id, title string) (models.Console, error) {
	return s.setText(ctx, actor, id, title, false)
}

func (s *Service) setText(ctx context.Context, actor models.Actor, id, value string, name bool) (models.Console, error) {
	if !permissions.CanAdminister(actor) {
		return models.Console{}, warnf("permission_denied", "you lack the permissions to configure the console '%s'", id)
	}
	c, err := store.GetConsole(id)
	if err != nil {
		return models.Console{}, err
	}
	if name {
		c.Name = value
	} else {
		c.Content.Title = value
	}
	if err := store.SaveConsole(id, c); err != nil {
		return models.Console{}, err
	}
	telemetry.Mutations.WithLabelValues("update").Inc()
	return c, nil
}

// Share broadcasts a request to open the console on the given users'
// clients; with no explicit audience it goes to the ownership set.
func (s *Service) Share(ctx context.Context, actor models.Actor, id string, users []string) error {
	if !permissions.CanAdminister(actor) {
		return warnf("permission_denied", "you lack the permissions to share the console '%s'", id)
	}
	c, err := store.GetConsole(id)
	if err != nil {
		return err
	}
	if len(users) == 0 {
		users = c.PlayerOwnership
	}
	return s.router.ShareApp(ctx, &c, users)
}

// RunCommand executes one parsed slash command against a record. The
// variant switch is exhaustive; Unknown is warned about and ignored.
func (s *Service) RunCommand(ctx context.Context, actor models.Actor, id string, cmd commands.Command) (models.Console, error) {
	switch cmd.Kind {
	case commands.Clear:
		return s.Clear(ctx, actor, id)
	case commands.Duplicate:
		return s.Duplicate(ctx, actor, id)
	case commands.Invite:
		return s.Invite(ctx, actor, id, cmd.Arg)
	case commands.Kick:
		return s.Kick(ctx, actor, id, cmd.Arg)
	case commands.Lock:
		return s.ToggleFlag(ctx, actor, id, FlagLock)
	case commands.Rename:
		return s.Rename(ctx, actor, id, cmd.Arg)
	case commands.Retitle:
		return s.Retitle(ctx, actor, id, cmd.Arg)
	case commands.Share:
		if err := s.Share(ctx, actor, id, nil); err != nil {
			return models.Console{}, err
		}
		return s.Get(actor, id)
	case commands.Show:
		return s.ToggleFlag(ctx, actor, id, FlagShow)
	case commands.Unknown:
		fallthrough
	default:
		logger.Warn("unknown_command", "console", id, "actor", actor.ID)
		return models.Console{}, warnf("unknown_command", "unrecognised command")
	}
}

// SceneDeleted prunes a deleted scene's id (and its advisory name entry)
// from every record referencing it, persisting each changed record. It
// returns how many records were touched.
func (s *Service) SceneDeleted(ctx context.Context, sceneID string) (int, error) {
	all, err := store.ListConsoles()
	if err != nil {
		return 0, err
	}
	touched := 0
	for _, c := range all {
		idx := -1
		for i, sid := range c.Scenes {
			if sid == sceneID {
				idx = i
				break
			}
		}
		if idx < 0 {
			continue
		}
		c.Scenes = append(c.Scenes[:idx], c.Scenes[idx+1:]...)
		if idx < len(c.SceneNames) {
			c.SceneNames = append(c.SceneNames[:idx], c.SceneNames[idx+1:]...)
		}
		if err := store.SaveConsole(c.ID, c); err != nil {
			return touched, err
		}
		touched++
		logger.Info("scene_reference_pruned", "console", c.ID, "scene", sceneID)
	}
	telemetry.Mutations.WithLabelValues("scene_prune").Inc()
	return touched, nil
}

// Unread returns the actor's persisted unread set; it is the source of
// truth for the indicator regardless of missed broadcasts.
func (s *Service) Unread(userID string) ([]string, error) {
	return store.GetUnread(userID)
}

// sanitize strips administrator-only fields for ordinary viewers.
func sanitize(c models.Console, actor models.Actor) models.Console {
	if !actor.Admin {
		c.GMInfo = ""
	}
	return c
}
