package domain

import (
	"strconv"
	"time"

	"github.com/google/uuid"
)

// Plugin types stored in cms_plugins.plugin_type.
const (
	PluginTypeText          = "TextPlugin"
	PluginTypeLatestEntries = "LatestEntriesPlugin"
)

// DefaultLatestEntries is the number of posts a new selector shows.
const DefaultLatestEntries = 5

// Placeholder is a named content block that holds an ordered list of plugin
// instances. A post owns exactly one; pages may own any number.
type Placeholder struct {
	ID        uuid.UUID `json:"id"`
	Slot      string    `json:"slot"`
	CreatedAt time.Time `json:"created_at"`
}

// PluginInstance is one configured widget placed inside a placeholder.
// Language is the placement language the widget was authored in.
type PluginInstance struct {
	ID            uuid.UUID `json:"id"`
	PlaceholderID uuid.UUID `json:"placeholder_id"`
	PluginType    string    `json:"plugin_type"`
	Language      string    `json:"language"`
	Position      int       `json:"position"`
	Body          string    `json:"body,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
}

// LatestEntriesPlugin selects the newest published posts for its placement
// language, optionally narrowed to posts carrying any of Tags.
// An empty Tags slice means no tag restriction.
type LatestEntriesPlugin struct {
	PluginInstance
	LatestEntries int   `json:"latest_entries"`
	Tags          []Tag `json:"tags"`
}

func (p LatestEntriesPlugin) String() string {
	return strconv.Itoa(p.LatestEntries)
}
