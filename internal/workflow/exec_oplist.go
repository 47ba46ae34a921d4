package workflow

import (
	"strings"

	"github.com/unrenamed/chatd-sub000/internal/chat/message"
	"github.com/unrenamed/chatd-sub000/internal/command"
	"github.com/unrenamed/chatd-sub000/internal/utils"
)

func (h *CommandExecutor) execOplist(env *Env, ctx *Context, sub command.OplistSub) {
	from := message.From(ctx.User)

	switch s := sub.(type) {
	case command.OplistAdd:
		scan := scanKeyArgs(env, s.Args)
		for _, key := range scan.keys {
			env.Auth.AddOperator(key)
		}
		for _, name := range scan.memberNames {
			env.Room.SetOpByName(name, true)
		}
		env.sendSystem(from, scan.report("Server operators list is updated!"))

	case command.OplistRemove:
		scan := scanKeyArgs(env, s.Args)
		for _, key := range scan.keys {
			env.Auth.RemoveOperator(key)
		}
		for _, name := range scan.memberNames {
			env.Room.SetOpByName(name, false)
		}
		env.sendSystem(from, scan.report("Server operators list is updated!"))

	case command.OplistLoad:
		if err := env.Auth.LoadOperators(s.Replace); err != nil {
			env.sendError(from, err.Error())
			return
		}
		env.sendSystem(from, "Operators keys are up-to-date with the oplist file")

	case command.OplistSave:
		if err := env.Auth.SaveOperators(); err != nil {
			env.sendError(from, err.Error())
			return
		}
		env.sendSystem(from, "Oplist file is up-to-date with the operators")

	case command.OplistStatus:
		online, offline := splitKeysByPresence(env, env.Auth.Operators())
		var parts []string
		if len(online) > 0 {
			parts = append(parts, "Online operators: "+strings.Join(online, ", "))
		}
		if len(offline) > 0 {
			parts = append(parts, "Operators offline keys: "+strings.Join(offline, ", "))
		}
		if len(parts) == 0 {
			parts = append(parts, "Online operators: ")
		}
		env.sendSystem(from, strings.Join(parts, utils.Newline))

	case command.OplistHelp:
		env.sendSystem(from, "Available commands: "+utils.Newline+command.FormatCommands(visibleDefs(command.OplistDefs)))
	}
}
