package store

import (
	"encoding/json"
	"fmt"
	"strings"

	"consoled/pkg/logger"
	"consoled/pkg/models"
)

// Key namespaces inside the single shared document.
const (
	consolePrefix = "console:"
	userPrefix    = "user:"
	pagePrefix    = "page:"

	// DefaultTemplateKey holds the world-configured default record.
	DefaultTemplateKey = "console:default"
	// SchemaVersionKey is the version marker the migration engine bumps.
	SchemaVersionKey = "system:schema_version"
)

func consoleKey(id string) string { return consolePrefix + id }
func unreadKey(userID string) string {
	return userPrefix + userID + ":unread"
}
func profileKey(userID string) string {
	return userPrefix + userID + ":profile"
}

// ApplyFlags applies a batch of flag writes to the console pool. Each key
// is either a record id, whose value deep-merges into the stored record
// (objects merge, arrays replace), or a tombstone key "-=<id>", which
// drops the record entirely. This mirrors the write protocol of the
// original flag store; see TombstonePrefix.
func ApplyFlags(patch map[string]json.RawMessage) error {
	for k, raw := range patch {
		if strings.HasPrefix(k, TombstonePrefix) {
			id := strings.TrimPrefix(k, TombstonePrefix)
			if err := DeleteKey(consoleKey(id)); err != nil {
				return err
			}
			logger.Info("console_tombstoned", "id", id)
			continue
		}
		var src any
		if err := json.Unmarshal(raw, &src); err != nil {
			return fmt.Errorf("invalid flag value for %q: %w", k, err)
		}
		merged := src
		if existing, err := GetKey(consoleKey(k)); err == nil {
			var dst any
			if err := json.Unmarshal(existing, &dst); err != nil {
				return fmt.Errorf("corrupt stored record %q: %w", k, err)
			}
			merged = mergeValue(dst, src)
		} else if err != ErrNotFound {
			return err
		}
		nb, err := json.Marshal(merged)
		if err != nil {
			return err
		}
		if err := SaveKey(consoleKey(k), nb); err != nil {
			return err
		}
	}
	return nil
}

// SaveConsole merges a partial or full record into the stored value at id.
// Array-typed fields (content.body, playerOwnership, scenes, ...) replace
// wholesale, so callers must always send the complete intended array.
func SaveConsole(id string, record any) error {
	raw, err := json.Marshal(record)
	if err != nil {
		return err
	}
	return ApplyFlags(map[string]json.RawMessage{id: raw})
}

// GetConsole returns the record stored at id, or ErrNotFound.
func GetConsole(id string) (models.Console, error) {
	var c models.Console
	v, err := GetKey(consoleKey(id))
	if err != nil {
		return c, err
	}
	if err := json.Unmarshal(v, &c); err != nil {
		return c, fmt.Errorf("corrupt stored record %q: %w", id, err)
	}
	return c, nil
}

// GetConsoleRaw returns the stored record JSON without decoding. The
// migration engine works on the raw form so unknown fields survive.
func GetConsoleRaw(id string) ([]byte, error) {
	return GetKey(consoleKey(id))
}

// ListConsoles returns every record in the pool in key order. The default
// template is not a pool record and is excluded.
func ListConsoles() ([]models.Console, error) {
	keys, err := ListKeys(consolePrefix)
	if err != nil {
		return nil, err
	}
	var out []models.Console
	for _, k := range keys {
		if k == DefaultTemplateKey {
			continue
		}
		v, err := GetKey(k)
		if err != nil {
			return nil, err
		}
		var c models.Console
		if err := json.Unmarshal(v, &c); err != nil {
			logger.Warn("skipping_corrupt_record", "key", k, "error", err)
			continue
		}
		out = append(out, c)
	}
	return out, nil
}

// ListConsoleIDs returns the ids of every record in the pool.
func ListConsoleIDs() ([]string, error) {
	keys, err := ListKeys(consolePrefix)
	if err != nil {
		return nil, err
	}
	var out []string
	for _, k := range keys {
		if k == DefaultTemplateKey {
			continue
		}
		out = append(out, strings.TrimPrefix(k, consolePrefix))
	}
	return out, nil
}

// DeleteConsole removes a record through the tombstone key syntax.
// Deleted records never reappear after reconnect.
func DeleteConsole(id string) error {
	return ApplyFlags(map[string]json.RawMessage{TombstonePrefix + id: []byte("null")})
}

// GetDefaultTemplate returns the world-configured default record, or
// ErrNotFound when none has been saved.
func GetDefaultTemplate() (models.Console, error) {
	var c models.Console
	v, err := GetKey(DefaultTemplateKey)
	if err != nil {
		return c, err
	}
	if err := json.Unmarshal(v, &c); err != nil {
		return c, fmt.Errorf("corrupt default template: %w", err)
	}
	return c, nil
}

// SaveDefaultTemplate replaces the world-configured default record.
func SaveDefaultTemplate(c models.Console) error {
	b, err := json.Marshal(c)
	if err != nil {
		return err
	}
	return SaveKey(DefaultTemplateKey, b)
}

// GetUnread returns the per-user set of record ids with unseen content.
// A user with no stored flag has an empty set.
func GetUnread(userID string) ([]string, error) {
	v, err := GetKey(unreadKey(userID))
	if err == ErrNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var ids []string
	if err := json.Unmarshal(v, &ids); err != nil {
		return nil, fmt.Errorf("corrupt unread set for %q: %w", userID, err)
	}
	return ids, nil
}

// SetUnread replaces the per-user unread set.
func SetUnread(userID string, ids []string) error {
	if ids == nil {
		ids = []string{}
	}
	b, err := json.Marshal(ids)
	if err != nil {
		return err
	}
	return SaveKey(unreadKey(userID), b)
}

// AddUnread adds a record id to the user's unread set. Adding an id that
// is already flagged is a no-op.
func AddUnread(userID, consoleID string) error {
	ids, err := GetUnread(userID)
	if err != nil {
		return err
	}
	for _, id := range ids {
		if id == consoleID {
			return nil
		}
	}
	return SetUnread(userID, append(ids, consoleID))
}

// RemoveUnread drops a record id from the user's unread set.
func RemoveUnread(userID, consoleID string) error {
	ids, err := GetUnread(userID)
	if err != nil {
		return err
	}
	out := ids[:0]
	for _, id := range ids {
		if id != consoleID {
			out = append(out, id)
		}
	}
	return SetUnread(userID, out)
}

// SaveUser upserts a registry entry for a known player.
func SaveUser(u models.User) error {
	b, err := json.Marshal(u)
	if err != nil {
		return err
	}
	return SaveKey(profileKey(u.ID), b)
}

// GetUser returns the registry entry for the given user id.
func GetUser(id string) (models.User, error) {
	var u models.User
	v, err := GetKey(profileKey(id))
	if err != nil {
		return u, err
	}
	if err := json.Unmarshal(v, &u); err != nil {
		return u, fmt.Errorf("corrupt user profile %q: %w", id, err)
	}
	return u, nil
}

// GetUserByName returns the first registry entry with the given name, or
// ErrNotFound. This is a linear scan, not an index.
func GetUserByName(name string) (models.User, error) {
	keys, err := ListKeys(userPrefix)
	if err != nil {
		return models.User{}, err
	}
	for _, k := range keys {
		if !strings.HasSuffix(k, ":profile") {
			continue
		}
		v, err := GetKey(k)
		if err != nil {
			continue
		}
		var u models.User
		if json.Unmarshal(v, &u) == nil && u.Name == name {
			return u, nil
		}
	}
	return models.User{}, ErrNotFound
}

// ListUsers returns every registry entry.
func ListUsers() ([]models.User, error) {
	keys, err := ListKeys(userPrefix)
	if err != nil {
		return nil, err
	}
	var out []models.User
	for _, k := range keys {
		if !strings.HasSuffix(k, ":profile") {
			continue
		}
		v, err := GetKey(k)
		if err != nil {
			continue
		}
		var u models.User
		if json.Unmarshal(v, &u) == nil {
			out = append(out, u)
		}
	}
	return out, nil
}

// SavePage writes an archived page into the read-only page store.
func SavePage(id string, data []byte) error {
	return SaveKey(pagePrefix+id, data)
}

// GetPage returns an archived page by id.
func GetPage(id string) ([]byte, error) {
	return GetKey(pagePrefix + id)
}

// ListPages returns all archived pages in key order.
func ListPages() ([][]byte, error) {
	return ListValues(pagePrefix)
}

// GetSchemaVersion returns the stored version marker, or "" when the
// document has never been migrated.
func GetSchemaVersion() string {
	v, err := GetKey(SchemaVersionKey)
	if err != nil {
		return ""
	}
	return string(v)
}

// SetSchemaVersion bumps the stored version marker.
func SetSchemaVersion(v string) error {
	return SaveKey(SchemaVersionKey, []byte(v))
}
