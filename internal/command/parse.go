package command

import (
	"strings"

	"github.com/unrenamed/chatd-sub000/internal/auth"
	"github.com/unrenamed/chatd-sub000/internal/chat/user"
	"github.com/unrenamed/chatd-sub000/internal/theme"
)

// split cuts input into the command word and the trimmed remainder.
func split(input string) (string, string) {
	cmd, args, _ := strings.Cut(input, " ")
	return cmd, strings.TrimSpace(args)
}

// Parse turns an input line into a Command. Lines without the "/"
// prefix fail with NotRecognizedAsCommand and are treated as chat.
func Parse(input string) (Command, error) {
	cmd, args := split(strings.TrimSpace(input))
	if !strings.HasPrefix(cmd, "/") {
		return nil, errNotCommand()
	}

	switch cmd {
	case "/exit":
		return Exit{}, nil
	case "/away":
		if args == "" {
			return nil, errArgExpected("away reason")
		}
		return Away{Reason: args}, nil
	case "/back":
		return Back{}, nil
	case "/name":
		if args == "" {
			return nil, errArgExpected("new name")
		}
		return Name{Name: args}, nil
	case "/msg":
		target, body := split(args)
		if target == "" {
			return nil, errArgExpected("user name")
		}
		if body == "" {
			return nil, errArgExpected("message body")
		}
		return Msg{User: target, Body: body}, nil
	case "/reply":
		if args == "" {
			return nil, errArgExpected("message body")
		}
		return Reply{Body: args}, nil
	case "/ignore":
		return Ignore{User: args}, nil
	case "/unignore":
		if args == "" {
			return nil, errArgExpected("user name")
		}
		return Unignore{User: args}, nil
	case "/focus":
		return Focus{User: args}, nil
	case "/users":
		return Users{}, nil
	case "/whois":
		if args == "" {
			return nil, errArgExpected("user name")
		}
		return Whois{User: args}, nil
	case "/timestamp":
		switch user.TimestampMode(args) {
		case user.TimestampTime, user.TimestampDateTime, user.TimestampOff:
			return Timestamp{Mode: user.TimestampMode(args)}, nil
		}
		return nil, errOther("timestamp mode value must be one of: time, datetime, off")
	case "/theme":
		switch theme.Theme(args) {
		case theme.Colors, theme.Mono, theme.Hacker:
			return Theme{Theme: theme.Theme(args)}, nil
		}
		return nil, errOther("theme value must be one of: colors, mono, hacker")
	case "/themes":
		return Themes{}, nil
	case "/quiet":
		return Quiet{}, nil
	case "/mute":
		if args == "" {
			return nil, errArgExpected("user name")
		}
		return Mute{User: args}, nil
	case "/kick":
		if args == "" {
			return nil, errArgExpected("user name")
		}
		return Kick{User: args}, nil
	case "/ban":
		if args == "" {
			return nil, errArgExpected("ban query")
		}
		query, err := auth.ParseBanQuery(args)
		if err != nil {
			return nil, errOther(err.Error())
		}
		return Ban{Query: query}, nil
	case "/banned":
		return Banned{}, nil
	case "/motd":
		return Motd{Message: args}, nil
	case "/whitelist":
		sub, err := parseWhitelistSub(args)
		if err != nil {
			return nil, err
		}
		return Whitelist{Sub: sub}, nil
	case "/oplist":
		sub, err := parseOplistSub(args)
		if err != nil {
			return nil, err
		}
		return Oplist{Sub: sub}, nil
	case "/me":
		return Me{Action: args}, nil
	case "/slap":
		return Slap{User: args}, nil
	case "/shrug":
		return Shrug{}, nil
	case "/help":
		return Help{}, nil
	case "/version":
		return Version{}, nil
	case "/uptime":
		return Uptime{}, nil
	}
	return nil, errUnknown()
}
