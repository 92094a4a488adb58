package ui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/list"
	"github.com/desertthunder/encore/internal/models"
)

var _ list.Item = songItem{}

// songItem wraps [models.Song] to implement [list.Item].
type songItem struct {
	song *models.Song
}

func (i songItem) FilterValue() string { return i.song.Title() }
func (i songItem) Title() string       { return i.song.Title() }
func (i songItem) Description() string {
	desc := i.song.Artist()
	if i.song.ExternalID() != "" {
		desc = fmt.Sprintf("%s • catalog", desc)
	} else {
		desc = fmt.Sprintf("%s • local", desc)
	}
	return desc
}
