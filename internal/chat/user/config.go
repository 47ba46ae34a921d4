package user

import "github.com/unrenamed/chatd-sub000/internal/theme"

// Config is the per-user presentation state. The styled display name
// and the @mention literal are cached and refreshed whenever the
// username or theme changes.
type Config struct {
	Theme         theme.Theme
	TimestampMode TimestampMode
	Quiet         bool
	Bell          bool

	displayName string
	highlight   string
}

// NewConfig returns the defaults: the colors theme, timestamps off,
// bell on.
func NewConfig() Config {
	return Config{
		Theme:         theme.Default(),
		TimestampMode: TimestampOff,
		Bell:          true,
	}
}

// DisplayName is the username styled with the user's own theme.
func (c *Config) DisplayName() string { return c.displayName }

// Highlight is the literal tag ("@name") searched for in message
// bodies addressed to this user.
func (c *Config) Highlight() string { return c.highlight }

func (c *Config) refresh(username string) {
	c.displayName = c.Theme.Palette().Username(username)
	c.highlight = "@" + username
}
