package workflow

import (
	"errors"
	"strings"

	log "github.com/sirupsen/logrus"
)

var (
	errMalformedEnv = errors.New("Malformed environment variable format. Expected format: 'NAME=value'")
	errEmptyEnvVal  = errors.New("Environment variable value is empty")
	errUnknownEnv   = errors.New("Unknown environment variable type")
)

// ParseEnv maps a "NAME=value" assignment to the equivalent chat
// command. Only the CHATD_* variables are recognized.
func ParseEnv(raw string) (string, error) {
	name, value, found := strings.Cut(raw, "=")
	if !found || name == "" {
		return "", errMalformedEnv
	}
	if value == "" {
		return "", errEmptyEnvVal
	}
	switch name {
	case "CHATD_THEME":
		return "/theme " + value, nil
	case "CHATD_TIMESTAMP":
		return "/timestamp " + value, nil
	}
	return "", errUnknownEnv
}

// EnvParser turns SSH environment assignments into commands so that
// `ssh -o SetEnv=CHATD_THEME=mono` works like typing /theme mono.
type EnvParser struct {
	Name  string
	Value string
	next  Handler
}

func (h *EnvParser) Execute(env *Env, ctx *Context) error {
	cmd, err := ParseEnv(h.Name + "=" + h.Value)
	if err != nil {
		log.WithField("name", h.Name).Debugf("ignoring environment variable: %v", err)
		return nil
	}
	ctx.CommandStr = cmd

	if h.next != nil {
		return h.next.Execute(env, ctx)
	}
	return nil
}
