// Package permissions holds the pure predicates deciding whether an actor
// may read, post to, or administer a console. No side effects; both the
// mutation entry points and the notification fan-out consume these.
package permissions

import "consoled/pkg/models"

// CanRead reports whether the actor may be shown the record.
func CanRead(actor models.Actor, c *models.Console) bool {
	if c.Public || actor.Admin {
		return true
	}
	return c.HasOwner(actor.ID)
}

// CanPost reports whether the actor may append messages. Administrators
// bypass the lock; everyone else needs an unlocked console and an entry
// in the posting-permission set.
func CanPost(actor models.Actor, c *models.Console) bool {
	if actor.Admin {
		return true
	}
	return !c.Locked && c.MayPost(actor.ID)
}

// CanDeleteMessage reports whether the actor may splice the message out
// of the log: author or administrator, and the console not locked.
func CanDeleteMessage(actor models.Actor, msg models.Message, c *models.Console) bool {
	if c.Locked {
		return false
	}
	return actor.Admin || msg.User.ID == actor.ID
}

// CanAdminister gates create/delete/config/migration/archive.
func CanAdminister(actor models.Actor) bool {
	return actor.Admin
}
