package workflow

import (
	"github.com/unrenamed/chatd-sub000/internal/chat/message"
	"github.com/unrenamed/chatd-sub000/internal/command"
)

// CommandParser decides whether the submitted line is chat or a
// command. Chat is broadcast right away; commands are echoed and
// handed to the executor. Either way the input line is cleared, and
// everything but plain chat lands in the input history.
type CommandParser struct {
	next Handler
}

func (h *CommandParser) Execute(env *Env, ctx *Context) error {
	from := message.From(ctx.User)
	input := ctx.CommandStr

	cmd, err := command.Parse(input)
	switch {
	case command.IsNotCommand(err):
		if err := env.Terminal.ClearInput(); err != nil {
			return err
		}
		env.Room.SendMessage(message.NewPublic(from, input))
		return nil

	case err != nil:
		if err2 := h.archiveInput(env); err2 != nil {
			return err2
		}
		env.Room.SendMessage(message.NewCommand(from, input))
		env.sendError(from, err.Error())
		return nil
	}

	if err := h.archiveInput(env); err != nil {
		return err
	}
	env.Room.SendMessage(message.NewCommand(from, input))
	ctx.Command = cmd

	if h.next != nil {
		return h.next.Execute(env, ctx)
	}
	return nil
}

// archiveInput stores the typed line in the input history and resets
// the prompt. Commands arriving via environment variables leave the
// buffer empty and skip the history.
func (h *CommandParser) archiveInput(env *Env) error {
	if env.Terminal.Input.Text() != "" {
		env.Terminal.Input.PushToHistory()
	}
	return env.Terminal.ClearInput()
}
