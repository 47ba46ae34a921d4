package workflow

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	log "github.com/sirupsen/logrus"

	"github.com/unrenamed/chatd-sub000/internal/auth"
	"github.com/unrenamed/chatd-sub000/internal/chat"
	"github.com/unrenamed/chatd-sub000/internal/chat/message"
	"github.com/unrenamed/chatd-sub000/internal/chat/user"
	"github.com/unrenamed/chatd-sub000/internal/command"
	"github.com/unrenamed/chatd-sub000/internal/theme"
	"github.com/unrenamed/chatd-sub000/internal/utils"
)

// CommandExecutor runs the parsed command. It is the end of the
// chain; every branch reports back to the issuing user through the
// room.
type CommandExecutor struct{}

func (h *CommandExecutor) Execute(env *Env, ctx *Context) error {
	u := ctx.User
	from := message.From(u)

	if command.IsOp(ctx.Command) && !u.IsOp {
		env.sendError(from, "must be an operator")
		return nil
	}

	switch c := ctx.Command.(type) {
	case command.Exit:
		env.Room.ExitByID(u.ID)

	case command.Away:
		env.Room.SetAway(u.ID, c.Reason)
		env.Room.SendMessage(message.NewEmote(from, fmt.Sprintf("has gone away: %q", c.Reason)))

	case command.Back:
		if env.Room.SetBack(u.ID) {
			env.Room.SendMessage(message.NewEmote(from, "is back"))
		}

	case command.Name:
		h.execName(env, ctx, c)

	case command.Msg:
		h.execMsg(env, ctx, c)

	case command.Reply:
		h.execReply(env, ctx, c)

	case command.Ignore:
		h.execIgnore(env, ctx, c)

	case command.Unignore:
		h.execUnignore(env, ctx, c)

	case command.Focus:
		h.execFocus(env, ctx, c)

	case command.Users:
		names := env.Room.Names()
		palette := u.Config.Theme.Palette()
		styled := make([]string, len(names))
		for i, n := range names {
			styled[i] = palette.Username(n)
		}
		env.sendSystem(from, fmt.Sprintf("%d connected: %s", len(names), strings.Join(styled, ", ")))

	case command.Whois:
		target, ok := env.Room.UserByName(c.User)
		if !ok {
			env.sendError(from, "user not found")
			return nil
		}
		env.sendSystem(from, target.String())

	case command.Timestamp:
		env.Room.SetTimestampMode(u.ID, c.Mode)
		if c.Mode == user.TimestampOff {
			env.sendSystem(from, "Timestamp is toggled OFF")
		} else {
			env.sendSystem(from, "Timestamp is toggled ON, timezone is UTC")
		}

	case command.Theme:
		snap, ok := env.Room.SetTheme(u.ID, c.Theme)
		if !ok {
			return nil
		}
		env.sendSystem(from, fmt.Sprintf("Set theme: %s", c.Theme))
		env.Terminal.SetPrompt(Prompt(snap))
		return env.Terminal.PrintInputLine()

	case command.Themes:
		names := make([]string, 0, len(theme.Values()))
		for _, t := range theme.Values() {
			names = append(names, t.String())
		}
		env.sendSystem(from, "Supported themes: "+strings.Join(names, ", "))

	case command.Quiet:
		if env.Room.ToggleQuiet(u.ID) {
			env.sendSystem(from, "Quiet mode is toggled ON")
		} else {
			env.sendSystem(from, "Quiet mode is toggled OFF")
		}

	case command.Mute:
		h.execMute(env, ctx, c)

	case command.Kick:
		target, ok := env.Room.UserByName(c.User)
		if !ok {
			env.sendError(from, "user not found")
			return nil
		}
		env.Room.SendMessage(message.NewAnnounce(from, fmt.Sprintf("kicked %s from the server", target.Username)))
		env.Room.ExitByID(target.ID)

	case command.Ban:
		h.execBan(env, ctx, c)

	case command.Banned:
		h.execBanned(env, ctx)

	case command.Motd:
		h.execMotd(env, ctx, c)

	case command.Whitelist:
		h.execWhitelist(env, ctx, c.Sub)

	case command.Oplist:
		h.execOplist(env, ctx, c.Sub)

	case command.Me:
		action := c.Action
		if action == "" {
			action = "is at a loss for words."
		}
		env.Room.SendMessage(message.NewEmote(from, action))

	case command.Slap:
		h.execSlap(env, ctx, c)

	case command.Shrug:
		env.Room.SendMessage(message.NewEmote(from, `¯\_(◕‿◕)_/¯`))

	case command.Help:
		h.execHelp(env, ctx)

	case command.Version:
		env.sendSystem(from, env.Version)

	case command.Uptime:
		env.sendSystem(from, env.Room.Uptime())
	}
	return nil
}

func (h *CommandExecutor) execName(env *Env, ctx *Context, c command.Name) {
	from := message.From(ctx.User)
	name := utils.SanitizeName(c.Name)
	if name == "" {
		env.sendError(from, fmt.Sprintf("%q name is already taken", c.Name))
		return
	}
	snap, err := env.Room.Rename(ctx.User.ID, name)
	switch {
	case errors.Is(err, chat.ErrSameName):
		env.sendError(from, "new name is the same as the original")
	case errors.Is(err, chat.ErrNameTaken):
		env.sendError(from, fmt.Sprintf("%q name is already taken", name))
	case err == nil:
		env.Terminal.SetPrompt(Prompt(snap))
		if err := env.Terminal.PrintInputLine(); err != nil {
			log.Warnf("prompt repaint after rename failed: %v", err)
		}
	}
}

func (h *CommandExecutor) execMsg(env *Env, ctx *Context, c command.Msg) {
	from := message.From(ctx.User)
	target, ok := env.Room.UserByName(c.User)
	if !ok {
		env.sendError(from, "user is not found")
		return
	}
	if target.ID == ctx.User.ID {
		env.sendError(from, "you can't message yourself")
		return
	}
	env.Room.SetReplyTo(target.ID, ctx.User.ID)
	env.Room.SendMessage(message.NewPrivate(from, message.From(target), c.Body))
	if target.Status.Away {
		env.sendSystem(from, fmt.Sprintf("Sent PM to %s, but they're away now: %s",
			target.Username, target.Status.Reason))
	}
}

func (h *CommandExecutor) execReply(env *Env, ctx *Context, c command.Reply) {
	from := message.From(ctx.User)
	if ctx.User.ReplyTo == nil {
		env.sendError(from, "no message to reply to")
		return
	}
	target, ok := env.Room.UserByID(*ctx.User.ReplyTo)
	if !ok {
		env.sendError(from, "user already left the room")
		return
	}
	env.Room.SetReplyTo(target.ID, ctx.User.ID)
	env.Room.SendMessage(message.NewPrivate(from, message.From(target), c.Body))
	if target.Status.Away {
		env.sendSystem(from, fmt.Sprintf("Sent PM to %s, but they're away now: %s",
			target.Username, target.Status.Reason))
	}
}

func (h *CommandExecutor) execIgnore(env *Env, ctx *Context, c command.Ignore) {
	from := message.From(ctx.User)

	if c.User == "" {
		names := h.namesByID(env, ctx.User.Ignored)
		if len(names) == 0 {
			env.sendSystem(from, "0 users ignored")
			return
		}
		env.sendSystem(from, fmt.Sprintf("%d users ignored: %s",
			len(names), strings.Join(h.styleNames(ctx.User, names), ", ")))
		return
	}

	target, ok := env.Room.UserByName(c.User)
	if !ok {
		env.sendError(from, "user not found")
		return
	}
	if target.ID == ctx.User.ID {
		env.sendError(from, "you can't ignore yourself")
		return
	}
	if _, already := ctx.User.Ignored[target.ID]; already {
		env.sendError(from, "user already in the ignored list")
		return
	}
	env.Room.AddIgnored(ctx.User.ID, target.ID)
	env.sendSystem(from, "Ignoring: "+target.Username)
}

func (h *CommandExecutor) execUnignore(env *Env, ctx *Context, c command.Unignore) {
	from := message.From(ctx.User)
	target, ok := env.Room.UserByName(c.User)
	if !ok {
		env.sendError(from, "user not found")
		return
	}
	if !env.Room.RemoveIgnored(ctx.User.ID, target.ID) {
		env.sendError(from, "user not in the ignored list yet")
		return
	}
	env.sendSystem(from, "No longer ignoring: "+target.Username)
}

func (h *CommandExecutor) execFocus(env *Env, ctx *Context, c command.Focus) {
	from := message.From(ctx.User)

	switch c.User {
	case "":
		names := h.namesByID(env, ctx.User.Focused)
		if len(names) == 0 {
			env.sendSystem(from, "Focusing no users")
			return
		}
		env.sendSystem(from, fmt.Sprintf("Focusing on %d users: %s",
			len(names), strings.Join(h.styleNames(ctx.User, names), ", ")))
		return

	case "$":
		env.Room.ClearFocus(ctx.User.ID)
		env.sendSystem(from, "Removed focus from all users")
		return
	}

	var focused []string
	for _, name := range strings.Split(c.User, ",") {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		target, ok := env.Room.UserByName(name)
		if !ok || target.ID == ctx.User.ID {
			continue
		}
		if env.Room.AddFocused(ctx.User.ID, target.ID) {
			focused = append(focused, target.Username)
		}
	}
	if len(focused) == 0 {
		env.sendSystem(from, "No online users found to focus")
		return
	}
	env.sendSystem(from, fmt.Sprintf("Focusing on %d users: %s",
		len(focused), strings.Join(h.styleNames(ctx.User, focused), ", ")))
}

func (h *CommandExecutor) execMute(env *Env, ctx *Context, c command.Mute) {
	from := message.From(ctx.User)
	target, ok := env.Room.UserByName(c.User)
	if !ok {
		env.sendError(from, "user not found")
		return
	}
	if target.ID == ctx.User.ID {
		env.sendError(from, "you can't mute yourself")
		return
	}
	snap, ok := env.Room.ToggleMute(c.User)
	if !ok {
		env.sendError(from, "user not found")
		return
	}
	state := "Unmuted"
	if snap.IsMuted {
		state = "Muted"
	}
	env.sendSystem(from, fmt.Sprintf("%s: %s, id = %d", state, snap.Username, snap.ID))
}

func (h *CommandExecutor) execBan(env *Env, ctx *Context, c command.Ban) {
	from := message.From(ctx.User)

	if single := c.Query.Single; single != nil {
		target, ok := env.Room.UserByName(single.Value)
		if !ok {
			env.sendError(from, "user not found")
			return
		}
		fp, hasKey := target.Fingerprint()
		if !hasKey {
			env.sendError(from, "user not found")
			return
		}
		env.Auth.BanFingerprint(fp, single.Duration)
		env.Room.SendMessage(message.NewAnnounce(from,
			fmt.Sprintf("banned %s from the server", target.Username)))
		env.Room.ExitByID(target.ID)
		return
	}

	for _, item := range c.Query.Items {
		switch item.Attr {
		case auth.BanAttrName:
			env.Auth.BanUsername(item.Value, item.Duration)
			if target, ok := env.Room.UserByName(item.Value); ok {
				env.Room.SendMessage(message.NewAnnounce(from,
					fmt.Sprintf("banned %s from the server", target.Username)))
				env.Room.ExitByID(target.ID)
			}
		case auth.BanAttrFingerprint:
			env.Auth.BanFingerprint(item.Value, item.Duration)
			for _, target := range env.Room.Users() {
				if fp, ok := target.Fingerprint(); ok && fp == item.Value {
					env.Room.SendMessage(message.NewAnnounce(from,
						fmt.Sprintf("banned %s from the server", target.Username)))
					env.Room.ExitByID(target.ID)
				}
			}
		case auth.BanAttrIP:
			// Connection IPs are not tracked per member yet.
			log.Warnf("ip ban requested for %s, not supported", item.Value)
		}
	}
	env.sendSystem(from, "Banning is complete. Offline users were silently banned.")
}

func (h *CommandExecutor) execBanned(env *Env, ctx *Context) {
	names, fingerprints := env.Auth.Banned()
	body := "Banned:"
	for _, n := range names {
		body += utils.Newline + fmt.Sprintf(" %q", "name="+n)
	}
	for _, fp := range fingerprints {
		body += utils.Newline + fmt.Sprintf(" %q", "fingerprint="+fp)
	}
	env.sendSystem(message.From(ctx.User), body)
}

func (h *CommandExecutor) execMotd(env *Env, ctx *Context, c command.Motd) {
	from := message.From(ctx.User)
	if c.Message == "" {
		env.sendSystem(from, env.Room.Motd())
		return
	}
	if !ctx.User.IsOp {
		env.sendError(from, "must be an operator to modify the MOTD")
		return
	}
	env.Room.SetMotd(c.Message)
	env.Room.SendMessage(message.NewAnnounce(from,
		fmt.Sprintf("set new message of the day: %s-> %s", utils.Newline, c.Message)))
}

func (h *CommandExecutor) execSlap(env *Env, ctx *Context, c command.Slap) {
	from := message.From(ctx.User)
	if c.User == "" {
		env.Room.SendMessage(message.NewEmote(from, "hits himself with a squishy banana."))
		return
	}
	target, ok := env.Room.UserByName(c.User)
	if !ok {
		env.sendError(from, "that slippin' monkey not in the room")
		return
	}
	env.Room.SendMessage(message.NewEmote(from,
		fmt.Sprintf("hits %s with a squishy banana.", target.Username)))
}

func (h *CommandExecutor) execHelp(env *Env, ctx *Context) {
	var visible, op []command.Def
	for _, d := range command.Defs {
		if !d.IsVisible() {
			continue
		}
		if d.Op {
			op = append(op, d)
		} else {
			visible = append(visible, d)
		}
	}
	body := "Available commands: " + utils.Newline + command.FormatCommands(visible)
	if ctx.User.IsOp {
		body += utils.Newline + utils.Newline + "Operator commands: " + utils.Newline + command.FormatCommands(op)
	}
	env.sendSystem(message.From(ctx.User), body)
}

// namesByID resolves an id set to the names of members still online,
// sorted case-insensitively.
func (h *CommandExecutor) namesByID(env *Env, ids map[int]struct{}) []string {
	var names []string
	for id := range ids {
		if name, ok := env.Room.NameByID(id); ok {
			names = append(names, name)
		}
	}
	sort.Slice(names, func(i, j int) bool {
		return strings.ToLower(names[i]) < strings.ToLower(names[j])
	})
	return names
}

func (h *CommandExecutor) styleNames(u *user.User, names []string) []string {
	palette := u.Config.Theme.Palette()
	styled := make([]string, len(names))
	for i, n := range names {
		styled[i] = palette.Username(n)
	}
	return styled
}

// Prompt renders the input prompt for a user, styled with their own
// theme.
func Prompt(u *user.User) string {
	return "[" + u.Config.DisplayName() + "] "
}
