// Package workflow wires session events through the handler chain:
// key mapping and autocompletion while typing, then validation, rate
// limiting, parsing and execution on submit. Each handler does its
// part and either stops the chain or passes the context on.
package workflow

import (
	"github.com/unrenamed/chatd-sub000/internal/auth"
	"github.com/unrenamed/chatd-sub000/internal/chat"
	"github.com/unrenamed/chatd-sub000/internal/chat/message"
	"github.com/unrenamed/chatd-sub000/internal/chat/user"
	"github.com/unrenamed/chatd-sub000/internal/command"
	"github.com/unrenamed/chatd-sub000/internal/terminal"
)

// Env bundles what every handler may touch for one session.
type Env struct {
	Terminal *terminal.Terminal
	Room     *chat.Room
	Auth     *auth.Auth
	Version  string
}

// Context carries the state of one event through the chain.
type Context struct {
	// User is a snapshot of the session's member taken when the
	// event arrived.
	User *user.User
	// CommandStr is the submitted input once validated.
	CommandStr string
	// Command is the parsed command, set by the parser.
	Command command.Command
}

// Handler is one link of the processing chain.
type Handler interface {
	Execute(env *Env, ctx *Context) error
}

func (e *Env) sendSystem(from message.Author, body string) {
	e.Room.SendMessage(message.NewSystem(from, body))
}

func (e *Env) sendError(from message.Author, body string) {
	e.Room.SendMessage(message.NewError(from, body))
}

// InputSubmit builds the submit chain: validate, rate-check, parse,
// execute.
func InputSubmit() Handler {
	return &InputValidator{next: &InputRateChecker{next: &CommandParser{next: &CommandExecutor{}}}}
}

// EnvSubmit builds the chain for SSH environment assignments.
func EnvSubmit(name, value string) Handler {
	return &EnvParser{Name: name, Value: value, next: &CommandParser{next: &CommandExecutor{}}}
}
