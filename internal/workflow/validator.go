package workflow

import (
	"strings"

	"github.com/unrenamed/chatd-sub000/internal/chat/message"
)

// maxInputLength bounds one submitted line, in bytes.
const maxInputLength = 1024

// InputValidator drops blank input and refuses oversized lines
// before anything else runs.
type InputValidator struct {
	next Handler
}

func (h *InputValidator) Execute(env *Env, ctx *Context) error {
	input := env.Terminal.Input.Text()
	if strings.TrimSpace(input) == "" {
		return nil
	}
	if len(input) > maxInputLength {
		env.sendError(message.From(ctx.User), "message dropped. Input is too long")
		return nil
	}
	ctx.CommandStr = input

	if h.next != nil {
		return h.next.Execute(env, ctx)
	}
	return nil
}
