package workflow

import (
	"fmt"

	"github.com/unrenamed/chatd-sub000/internal/chat/message"
	"github.com/unrenamed/chatd-sub000/internal/utils"
)

// InputRateChecker enforces the per-member message rate.
type InputRateChecker struct {
	next Handler
}

func (h *InputRateChecker) Execute(env *Env, ctx *Context) error {
	wait, ok := env.Room.CheckRateLimit(ctx.User.ID)
	if !ok {
		env.sendError(message.From(ctx.User), fmt.Sprintf(
			"rate limit exceeded. Message dropped. Next allowed in %s",
			utils.HumanDuration(wait)))
		return nil
	}
	if h.next != nil {
		return h.next.Execute(env, ctx)
	}
	return nil
}
