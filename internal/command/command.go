// Package command implements the chat command grammar: the /command
// table with its help metadata, the parser and the whitelist/oplist
// sub-grammars. Execution lives in the workflow package; this one
// only decides what the user asked for.
package command

import (
	"fmt"
	"sort"
	"strings"

	"github.com/unrenamed/chatd-sub000/internal/auth"
	"github.com/unrenamed/chatd-sub000/internal/chat/user"
	"github.com/unrenamed/chatd-sub000/internal/theme"
	"github.com/unrenamed/chatd-sub000/internal/utils"
)

// Def describes one command for help and autocompletion. A command
// with empty Help is hidden from /help but still parses.
type Def struct {
	Name string
	Args string
	Help string
	Op   bool
}

// IsVisible reports whether the command appears in /help.
func (d Def) IsVisible() bool { return d.Help != "" }

// HasPrefix reports whether the command name starts with p.
func (d Def) HasPrefix(p string) bool { return strings.HasPrefix(d.Name, p) }

// Defs lists every command. The order is the autocompletion
// preference order.
var Defs = []Def{
	{Name: "/exit", Help: "Exit the chat application"},
	{Name: "/away", Args: "<reason>", Help: "Let the room know you can't make it and why"},
	{Name: "/back", Help: "Clear away status"},
	{Name: "/name", Args: "<name>", Help: "Rename yourself"},
	{Name: "/msg", Args: "<user> <message>", Help: "Send a private message to a user"},
	{Name: "/reply", Args: "<message>", Help: "Reply to the previous private message"},
	{Name: "/ignore", Args: "[user]", Help: "Hide messages from a user"},
	{Name: "/unignore", Args: "<user>", Help: "Stop hidding messages from a user"},
	{Name: "/focus", Args: "[user]", Help: "Only show messages from focused users. $ to reset"},
	{Name: "/users", Help: "List users who are connected"},
	{Name: "/whois", Args: "<user>", Help: "Information about a user"},
	{Name: "/timestamp", Args: "<time|datetime|off>", Help: "Prefix messages with a UTC timestamp"},
	{Name: "/theme", Args: "<theme>", Help: "Set your color theme"},
	{Name: "/themes", Help: "List supported color themes"},
	{Name: "/quiet", Help: "Silence room announcements"},
	{Name: "/mute", Args: "<user>", Help: "Toggle muting user, preventing messages from broadcasting", Op: true},
	{Name: "/kick", Args: "<user>", Help: "Kick user from the server", Op: true},
	{Name: "/ban", Args: "<query>", Help: "Ban user from the server", Op: true},
	{Name: "/banned", Help: "List the current ban conditions", Op: true},
	{Name: "/motd", Args: "[message]", Help: "Set a new message of the day, or print the motd if no message", Op: true},
	{Name: "/whitelist", Args: "<command> [args...]", Help: "Modify the whitelist or whitelist state. See /whitelist help for subcommands", Op: true},
	{Name: "/oplist", Args: "<command> [args...]", Help: "Modify the oplist or oplist state. See /oplist help for subcommands", Op: true},
	{Name: "/me", Args: "[action]"},
	{Name: "/slap", Args: "[user]"},
	{Name: "/shrug"},
	{Name: "/help"},
	{Name: "/version"},
	{Name: "/uptime"},
}

// DefByName finds the definition for a command name.
func DefByName(name string) (Def, bool) {
	for _, d := range Defs {
		if d.Name == name {
			return d, true
		}
	}
	return Def{}, false
}

// FormatCommands renders a help table, shortest command first.
func FormatCommands(defs []Def) string {
	sorted := make([]Def, len(defs))
	copy(sorted, defs)
	sort.SliceStable(sorted, func(i, j int) bool {
		return len(sorted[i].Name) < len(sorted[j].Name)
	})
	lines := make([]string, len(sorted))
	for i, d := range sorted {
		lines[i] = fmt.Sprintf("%-10s %-20s %s", d.Name, d.Args, d.Help)
	}
	return strings.Join(lines, utils.Newline)
}

// Command is one parsed chat command.
type Command interface{ isCommand() }

type (
	Exit   struct{}
	Away   struct{ Reason string }
	Back   struct{}
	Name   struct{ Name string }
	Msg    struct{ User, Body string }
	Reply  struct{ Body string }
	Ignore struct{ User string } // empty lists the ignored users
	Unignore struct{ User string }
	Focus  struct{ User string } // empty lists, "$" resets
	Users  struct{}
	Whois  struct{ User string }
	Timestamp struct{ Mode user.TimestampMode }
	Theme  struct{ Theme theme.Theme }
	Themes struct{}
	Quiet  struct{}
	Mute   struct{ User string }
	Kick   struct{ User string }
	Ban    struct{ Query *auth.BanQuery }
	Banned struct{}
	Motd   struct{ Message string } // empty prints the current MOTD
	Whitelist struct{ Sub WhitelistSub }
	Oplist struct{ Sub OplistSub }
	Me     struct{ Action string }
	Slap   struct{ User string }
	Shrug  struct{}
	Help   struct{}
	Version struct{}
	Uptime struct{}
)

func (Exit) isCommand()      {}
func (Away) isCommand()      {}
func (Back) isCommand()      {}
func (Name) isCommand()      {}
func (Msg) isCommand()       {}
func (Reply) isCommand()     {}
func (Ignore) isCommand()    {}
func (Unignore) isCommand()  {}
func (Focus) isCommand()     {}
func (Users) isCommand()     {}
func (Whois) isCommand()     {}
func (Timestamp) isCommand() {}
func (Theme) isCommand()     {}
func (Themes) isCommand()    {}
func (Quiet) isCommand()     {}
func (Mute) isCommand()      {}
func (Kick) isCommand()      {}
func (Ban) isCommand()       {}
func (Banned) isCommand()    {}
func (Motd) isCommand()      {}
func (Whitelist) isCommand() {}
func (Oplist) isCommand()    {}
func (Me) isCommand()        {}
func (Slap) isCommand()      {}
func (Shrug) isCommand()     {}
func (Help) isCommand()      {}
func (Version) isCommand()   {}
func (Uptime) isCommand()    {}

// IsOp reports whether c requires operator rights.
func IsOp(c Command) bool {
	switch c.(type) {
	case Mute, Kick, Ban, Banned, Whitelist, Oplist:
		return true
	default:
		return false
	}
}
