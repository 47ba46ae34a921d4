package workflow

import (
	"encoding/base64"
	"sort"
	"strings"

	gossh "golang.org/x/crypto/ssh"

	"github.com/unrenamed/chatd-sub000/internal/chat/message"
	"github.com/unrenamed/chatd-sub000/internal/command"
	"github.com/unrenamed/chatd-sub000/internal/utils"
)

// keyScan is the result of resolving an add/remove argument list.
// Tokens are either online member names or public keys written as
// "ssh-<algo> <base64>".
type keyScan struct {
	keys         []gossh.PublicKey
	memberNames  []string
	invalidKeys  []string
	invalidUsers []string
	noKeyUsers   []string
}

func scanKeyArgs(env *Env, args string) keyScan {
	var res keyScan
	expectKey := false
	for _, tok := range strings.Fields(args) {
		if strings.HasPrefix(tok, "ssh-") {
			expectKey = true
			continue
		}
		if expectKey {
			expectKey = false
			raw, err := base64.StdEncoding.DecodeString(tok)
			if err != nil {
				res.invalidKeys = append(res.invalidKeys, tok)
				continue
			}
			key, err := gossh.ParsePublicKey(raw)
			if err != nil {
				res.invalidKeys = append(res.invalidKeys, tok)
				continue
			}
			res.keys = append(res.keys, key)
			continue
		}
		target, ok := env.Room.UserByName(tok)
		if !ok {
			res.invalidUsers = append(res.invalidUsers, tok)
			continue
		}
		if target.PublicKey == nil {
			res.noKeyUsers = append(res.noKeyUsers, tok)
			continue
		}
		res.keys = append(res.keys, target.PublicKey)
		res.memberNames = append(res.memberNames, target.Username)
	}
	return res
}

// report joins the problem lines, or returns okMsg when everything
// resolved.
func (s keyScan) report(okMsg string) string {
	var parts []string
	if len(s.invalidKeys) > 0 {
		parts = append(parts, "Invalid keys: "+strings.Join(s.invalidKeys, ", "))
	}
	if len(s.invalidUsers) > 0 {
		parts = append(parts, "Invalid users: "+strings.Join(s.invalidUsers, ", "))
	}
	if len(s.noKeyUsers) > 0 {
		parts = append(parts, "Users w/o public keys: "+strings.Join(s.noKeyUsers, ", "))
	}
	if len(parts) == 0 {
		return okMsg
	}
	return strings.Join(parts, utils.Newline)
}

func (h *CommandExecutor) execWhitelist(env *Env, ctx *Context, sub command.WhitelistSub) {
	from := message.From(ctx.User)

	switch s := sub.(type) {
	case command.WhitelistOn:
		env.Auth.Enable()
		env.sendSystem(from, "Server whitelisting is now enabled")

	case command.WhitelistOff:
		env.Auth.Disable()
		env.sendSystem(from, "Server whitelisting is now disabled")

	case command.WhitelistAdd:
		scan := scanKeyArgs(env, s.Args)
		for _, key := range scan.keys {
			env.Auth.AddTrustedKey(key)
		}
		env.sendSystem(from, scan.report("Server whitelist is updated!"))

	case command.WhitelistRemove:
		scan := scanKeyArgs(env, s.Args)
		for _, key := range scan.keys {
			env.Auth.RemoveTrustedKey(key)
		}
		env.sendSystem(from, scan.report("Server whitelist is updated!"))

	case command.WhitelistLoad:
		if err := env.Auth.LoadTrustedKeys(s.Replace); err != nil {
			env.sendError(from, err.Error())
			return
		}
		env.sendSystem(from, "Trusted keys are up-to-date with the whitelist file")

	case command.WhitelistSave:
		if err := env.Auth.SaveTrustedKeys(); err != nil {
			env.sendError(from, err.Error())
			return
		}
		env.sendSystem(from, "Whitelist file is up-to-date with the trusted keys")

	case command.WhitelistReverify:
		if !env.Auth.IsEnabled() {
			env.sendSystem(from, "Whitelist is disabled, so nobody will be kicked")
			return
		}
		for _, target := range env.Room.Users() {
			if target.PublicKey != nil && env.Auth.IsTrusted(target.PublicKey) {
				continue
			}
			env.Room.SendMessage(message.NewAnnounce(message.From(target),
				"was kicked during pubkey reverification"))
			env.Room.ExitByID(target.ID)
		}

	case command.WhitelistStatus:
		h.execWhitelistStatus(env, ctx)

	case command.WhitelistHelp:
		env.sendSystem(from, "Available commands: "+utils.Newline+command.FormatCommands(visibleDefs(command.WhitelistDefs)))
	}
}

func (h *CommandExecutor) execWhitelistStatus(env *Env, ctx *Context) {
	line := "Server whitelisting is disabled"
	if env.Auth.IsEnabled() {
		line = "Server whitelisting is enabled"
	}
	online, offline := splitKeysByPresence(env, env.Auth.TrustedKeys())
	parts := []string{line}
	if len(online) > 0 {
		parts = append(parts, "Trusted online users: "+strings.Join(online, ", "))
	}
	if len(offline) > 0 {
		parts = append(parts, "Trusted offline keys: "+strings.Join(offline, ", "))
	}
	env.sendSystem(message.From(ctx.User), strings.Join(parts, utils.Newline))
}

// splitKeysByPresence partitions a fingerprint-keyed set into names
// of online members holding one of the keys and the remaining
// fingerprints.
func splitKeysByPresence(env *Env, keys map[string]gossh.PublicKey) (online, offline []string) {
	present := make(map[string]string)
	for _, u := range env.Room.Users() {
		if fp, ok := u.Fingerprint(); ok {
			present[fp] = u.Username
		}
	}
	for fp := range keys {
		if name, ok := present[fp]; ok {
			online = append(online, name)
		} else {
			offline = append(offline, fp)
		}
	}
	sort.Strings(online)
	sort.Strings(offline)
	return online, offline
}

func visibleDefs(defs []command.Def) []command.Def {
	var out []command.Def
	for _, d := range defs {
		if d.IsVisible() {
			out = append(out, d)
		}
	}
	return out
}
