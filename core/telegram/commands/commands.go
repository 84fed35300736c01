// Package commands declares the registry entry for one bot command.
package commands

import (
	"strings"

	tele "gopkg.in/telebot.v4"
)

// Command represents a bot command with its handler, description, and metadata.
// AdminOnly commands are wrapped with the admin check and never published to
// the Telegram menu; Hidden ones work but stay out of the menu too.
type Command struct {
	Handler     tele.HandlerFunc
	Description string
	AdminOnly   bool
	Hidden      bool
	Aliases     []string
}

// Visible reports whether the command belongs in the published menu.
func (c Command) Visible() bool {
	return !c.Hidden && !c.AdminOnly
}

// MatchesAlias reports whether name refers to this command through one of its
// aliases. Both bare and slash-prefixed forms are accepted.
func (c Command) MatchesAlias(name string) bool {
	name = strings.TrimPrefix(name, "/")
	for _, alias := range c.Aliases {
		if strings.TrimPrefix(alias, "/") == name {
			return true
		}
	}
	return false
}
