// Package migrate backfills console records whose stored shape predates
// the running schema version. It runs once per process start, before any
// record is trusted, and only an administrator may invoke it.
package migrate

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"consoled/pkg/defaults"
	"consoled/pkg/logger"
	"consoled/pkg/models"
	"consoled/pkg/permissions"
	"consoled/pkg/store"
	"consoled/pkg/telemetry"
)

// SchemaVersion is the shape the running binary expects. Bump it whenever
// a field is added to the record schema.
const SchemaVersion = "1.2.0"

const inProgressKey = "system:migration_in_progress"

// ErrNotAdmin is returned when a non-administrator attempts a migration.
var ErrNotAdmin = fmt.Errorf("migration requires an administrator")

// migratedPaths is the fixed list of top-level and nested fields the
// backfill walks. A field that is missing or falsy is reset from the
// canonical default. Note the falsy check cannot tell a legitimate 0,
// false or "" apart from an absent field; that matches the historical
// behavior and callers depend on it (see DESIGN.md).
var migratedPaths = []string{
	"name",
	"description",
	"gmInfo",
	"content",
	"content.title",
	"content.body",
	"limits",
	"limits.type",
	"limits.value",
	"limits.marker",
	"limits.hardLimit",
	"locked",
	"public",
	"notifications",
	"timestamps",
	"playerOwnership",
	"playerPermissions",
	"scenes",
	"sceneNames",
	"styling",
	"styling.bg",
	"styling.bgImg",
	"styling.fg",
	"styling.height",
	"styling.width",
	"styling.messengerStyle",
	"styling.mute",
	"styling.notificationSound",
}

// Run checks the stored version marker against SchemaVersion and invokes
// Sync when they differ. Returns (invoked, error): invoked is true if
// Sync ran.
func Run(ctx context.Context, actor models.Actor) (bool, error) {
	if !permissions.CanAdminister(actor) {
		return false, ErrNotAdmin
	}
	stored := store.GetSchemaVersion()
	logger.Info("migrate_version_check", "stored", stored, "running", SchemaVersion)
	if stored == SchemaVersion {
		logger.Info("migrate_noop", "version", SchemaVersion)
		return false, nil
	}

	marker := map[string]string{
		"from":       stored,
		"to":         SchemaVersion,
		"started_at": time.Now().UTC().Format(time.RFC3339),
	}
	mb, _ := json.Marshal(marker)
	if err := store.SaveKey(inProgressKey, mb); err != nil {
		logger.Error("migrate_write_inprogress_failed", "error", err)
		return true, fmt.Errorf("failed to write in-progress marker: %w", err)
	}

	if err := Sync(ctx, stored, SchemaVersion); err != nil {
		logger.Error("migrate_sync_failed", "from", stored, "to", SchemaVersion, "error", err)
		return true, err
	}

	if err := store.SetSchemaVersion(SchemaVersion); err != nil {
		logger.Error("migrate_persist_version_failed", "version", SchemaVersion, "error", err)
		return true, fmt.Errorf("failed to persist new version: %w", err)
	}
	if err := store.DeleteKey(inProgressKey); err != nil {
		logger.Error("migrate_delete_inprogress_failed", "error", err)
	}
	logger.AuditInfo("migrate_version_persisted", "from", stored, "to", SchemaVersion)
	return true, nil
}

// Sync repairs every record in the pool, plus the world-default template
// as the final element of the same batch for convenience. Repaired
// records are written back in one batch; the template is written back
// separately. Sync never deletes fields, never renames ids and never
// touches the elements of content.body, only its presence. It is
// idempotent: a second run over repaired records changes nothing.
func Sync(ctx context.Context, from, to string) error {
	logger.Info("migrate_sync_start", "from", from, "to", to)

	def := canonicalMap()
	ids, err := store.ListConsoleIDs()
	if err != nil {
		logger.Error("migrate_list_consoles_failed", "error", err)
		return err
	}

	batch := map[string]json.RawMessage{}
	for _, id := range ids {
		if err := ctx.Err(); err != nil {
			return err
		}
		raw, err := store.GetConsoleRaw(id)
		if err != nil {
			logger.Error("migrate_load_record_failed", "id", id, "error", err)
			continue
		}
		var rec map[string]any
		if err := json.Unmarshal(raw, &rec); err != nil {
			logger.Error("migrate_unmarshal_record_failed", "id", id, "error", err)
			continue
		}
		if !backfill(rec, def) {
			continue
		}
		nb, err := json.Marshal(rec)
		if err != nil {
			return err
		}
		batch[id] = nb
		telemetry.MigrationBackfills.Inc()
		logger.Info("migrate_record_repaired", "id", id)
	}
	if len(batch) > 0 {
		if err := store.ApplyFlags(batch); err != nil {
			return err
		}
	}

	// default template rides along at the end of the batch
	if tv, err := store.GetKey(store.DefaultTemplateKey); err == nil {
		var tpl map[string]any
		if err := json.Unmarshal(tv, &tpl); err == nil {
			if backfill(tpl, def) {
				nb, _ := json.Marshal(tpl)
				if err := store.SaveKey(store.DefaultTemplateKey, nb); err != nil {
					return err
				}
				logger.Info("migrate_template_repaired")
			}
		} else {
			logger.Error("migrate_unmarshal_template_failed", "error", err)
		}
	}

	logger.Info("migrate_sync_done", "from", from, "to", to, "repaired", len(batch))
	return nil
}

// canonicalMap is the default record in generic map form for path walks.
func canonicalMap() map[string]any {
	b, _ := json.Marshal(defaults.Canonical())
	var m map[string]any
	_ = json.Unmarshal(b, &m)
	return m
}

// backfill sets every falsy/missing field on the fixed path list from the
// default map. Returns true when the record changed.
func backfill(rec, def map[string]any) bool {
	changed := false
	for _, path := range migratedPaths {
		dv, ok := lookup(def, path)
		if !ok {
			continue
		}
		cur, ok := lookup(rec, path)
		if ok && !falsy(cur) {
			continue
		}
		set(rec, path, dv)
		changed = true
	}
	return changed
}

// falsy mirrors the loose check of the original backfill: nil, "", false
// and numeric zero count as absent. Arrays and objects are only absent
// when null.
func falsy(v any) bool {
	switch t := v.(type) {
	case nil:
		return true
	case string:
		return t == ""
	case bool:
		return !t
	case float64:
		return t == 0
	default:
		return false
	}
}

func lookup(m map[string]any, path string) (any, bool) {
	parts := strings.Split(path, ".")
	cur := any(m)
	for _, p := range parts {
		mm, ok := cur.(map[string]any)
		if !ok {
			return nil, false
		}
		cur, ok = mm[p]
		if !ok {
			return nil, false
		}
	}
	return cur, true
}

func set(m map[string]any, path string, v any) {
	parts := strings.Split(path, ".")
	cur := m
	for _, p := range parts[:len(parts)-1] {
		next, ok := cur[p].(map[string]any)
		if !ok {
			next = map[string]any{}
			cur[p] = next
		}
		cur = next
	}
	cur[parts[len(parts)-1]] = clone(v)
}

// clone deep-copies a default value so repaired records never alias the
// canonical map.
func clone(v any) any {
	b, err := json.Marshal(v)
	if err != nil {
		return v
	}
	var out any
	if json.Unmarshal(b, &out) != nil {
		return v
	}
	return out
}
