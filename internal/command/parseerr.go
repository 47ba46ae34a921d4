package command

import "fmt"

// ParseErrorKind classifies why an input line failed to parse as a
// command.
type ParseErrorKind int

const (
	// NotRecognizedAsCommand marks plain chat input (no "/" prefix).
	NotRecognizedAsCommand ParseErrorKind = iota
	UnknownCommand
	ArgumentExpected
	OtherError
)

// ParseError is the user-visible parse failure.
type ParseError struct {
	Kind ParseErrorKind
	Arg  string // for ArgumentExpected
	Msg  string // for OtherError
}

func (e *ParseError) Error() string {
	switch e.Kind {
	case NotRecognizedAsCommand:
		return "not a command"
	case UnknownCommand:
		return "unknown command"
	case ArgumentExpected:
		return fmt.Sprintf("%s is expected", e.Arg)
	default:
		return e.Msg
	}
}

// IsNotCommand reports whether err marks plain, non-command input.
func IsNotCommand(err error) bool {
	pe, ok := err.(*ParseError)
	return ok && pe.Kind == NotRecognizedAsCommand
}

func errNotCommand() *ParseError { return &ParseError{Kind: NotRecognizedAsCommand} }

func errUnknown() *ParseError { return &ParseError{Kind: UnknownCommand} }

func errArgExpected(arg string) *ParseError {
	return &ParseError{Kind: ArgumentExpected, Arg: arg}
}

func errOther(msg string) *ParseError {
	return &ParseError{Kind: OtherError, Msg: msg}
}
