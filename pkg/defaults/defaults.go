// Package defaults supplies the canonical default console record and the
// world-configurable override, consumed by record creation and migration.
package defaults

import (
	"encoding/json"

	"consoled/pkg/models"
	"consoled/pkg/store"
	"consoled/pkg/utils"
)

// HardLimit is the inbuilt character ceiling on a single message so you
// can't just send the entire bee movie script.
const HardLimit = 2048

// Canonical returns the hard-coded default record. Every call returns a
// fresh value; mutating it never leaks into later calls.
func Canonical() models.Console {
	return models.Console{
		Name:        "new console",
		Description: "Description",
		GMInfo:      "GM info",
		Content: models.Content{
			Title: "new console",
			Body:  []models.Message{},
		},
		Limits: models.Limits{
			Type:      "none",
			Value:     0,
			Marker:    "...",
			HardLimit: HardLimit,
		},
		Styling: models.Styling{
			BG:                "#000000",
			BGImg:             "",
			FG:                "#ffffff",
			Height:            880,
			Width:             850,
			MessengerStyle:    true,
			Mute:              false,
			NotificationSound: "",
		},
		Locked:            false,
		Public:            false,
		Notifications:     true,
		Timestamps:        false,
		PlayerOwnership:   []string{},
		PlayerPermissions: []string{},
		Scenes:            []string{},
		SceneNames:        []string{},
	}
}

// GetTemplate returns the world-configured default record if one has been
// saved, else the canonical default.
func GetTemplate() models.Console {
	if c, err := store.GetDefaultTemplate(); err == nil && c.Name != "" {
		return c
	}
	return Canonical()
}

// CreateFrom deep-clones the template and assigns a fresh id. It is the
// sole entry point record creation uses, so every new record starts from
// a schema-complete shape.
func CreateFrom(template models.Console) models.Console {
	// round-trip through JSON for a deep clone of nested slices
	b, _ := json.Marshal(template)
	var c models.Console
	_ = json.Unmarshal(b, &c)
	c.ID = utils.GenID()
	if c.Content.Body == nil {
		c.Content.Body = []models.Message{}
	}
	if c.PlayerOwnership == nil {
		c.PlayerOwnership = []string{}
	}
	if c.PlayerPermissions == nil {
		c.PlayerPermissions = []string{}
	}
	if c.Scenes == nil {
		c.Scenes = []string{}
	}
	if c.SceneNames == nil {
		c.SceneNames = []string{}
	}
	return c
}
