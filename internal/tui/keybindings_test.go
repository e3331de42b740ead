package tui

import (
	"testing"

	"github.com/charmbracelet/bubbles/key"
	"github.com/stretchr/testify/assert"
)

func TestViewMode_String(t *testing.T) {
	assert.Equal(t, "Home", ViewHome.String())
	assert.Equal(t, "Plant", ViewPlant.String())
	assert.Equal(t, "Config", ViewConfig.String())
	assert.Equal(t, "Home", ViewMode(42).String())
}

func TestKeyMap_HelpListsEveryBinding(t *testing.T) {
	k := DefaultKeyMap()
	bindings := k.HelpBindings()
	assert.Len(t, bindings, 13)
	for _, b := range bindings {
		assert.NotEmpty(t, b.Help().Key)
		assert.NotEmpty(t, b.Help().Desc)
	}
}

func TestKeyMap_FooterBindings(t *testing.T) {
	k := DefaultKeyMap()

	home := k.FooterBindings(ViewHome)
	assert.NotContains(t, helpKeys(home), "i")

	config := k.FooterBindings(ViewConfig)
	assert.Contains(t, helpKeys(config), "i")
	assert.Contains(t, helpKeys(config), "a")
	assert.Contains(t, helpKeys(config), "n")
	assert.Equal(t, "?", config[len(config)-1].Help().Key)
}

func TestFooterHint(t *testing.T) {
	k := DefaultKeyMap()
	assert.Equal(t, "i change sampling interval", footerHint(k.Interval))
	assert.Equal(t, "r refresh now", footerHint(k.Refresh))
}

func helpKeys(bs []key.Binding) []string {
	out := make([]string, 0, len(bs))
	for _, b := range bs {
		out = append(out, b.Help().Key)
	}
	return out
}
