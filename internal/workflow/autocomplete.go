package workflow

import (
	"regexp"
	"strings"

	"github.com/unrenamed/chatd-sub000/internal/command"
	"github.com/unrenamed/chatd-sub000/internal/theme"
	"github.com/unrenamed/chatd-sub000/internal/chat/user"
)

// wordRe splits the input into words keeping their trailing spaces,
// so byte offsets can be tracked per word.
var wordRe = regexp.MustCompile(`\S+\s*|\s+`)

// wordSpan is one word of the input with its byte offsets. prefixEnd
// excludes the trailing whitespace.
type wordSpan struct {
	prefix    string
	start     int
	end       int
	prefixEnd int
}

func splitWords(text string) []wordSpan {
	var spans []wordSpan
	pos := 0
	for _, w := range wordRe.FindAllString(text, -1) {
		trimmed := strings.TrimRight(w, " \t")
		spans = append(spans, wordSpan{
			prefix:    trimmed,
			start:     pos,
			end:       pos + len(w),
			prefixEnd: pos + len(trimmed),
		})
		pos += len(w)
	}
	return spans
}

// Autocomplete completes the word under the cursor on Tab: command
// names in the first position, then subcommands, modes or usernames
// depending on the command.
type Autocomplete struct{}

func (h *Autocomplete) Execute(env *Env, ctx *Context) error {
	in := env.Terminal.Input
	if strings.TrimSpace(in.Text()) == "" || in.CursorBytePos() == 0 {
		return nil
	}

	words := splitWords(in.Text())
	if len(words) == 0 {
		return nil
	}
	cursor := in.CursorBytePos()

	def, ok := h.matchCommand(words[0].prefix)
	if !ok {
		return nil
	}
	if h.cursorIn(cursor, words[0]) {
		return h.paste(env, def.Name, words[0].prefixEnd)
	}

	switch def.Name {
	case "/whitelist":
		return h.completeSub(env, ctx, words, cursor, command.WhitelistDefs)
	case "/oplist":
		return h.completeSub(env, ctx, words, cursor, command.OplistDefs)
	case "/timestamp":
		modes := make([]string, 0, len(user.TimestampModes()))
		for _, m := range user.TimestampModes() {
			modes = append(modes, string(m))
		}
		return h.completeFrom(env, words, 1, cursor, modes)
	case "/theme":
		themes := make([]string, 0, len(theme.Values()))
		for _, t := range theme.Values() {
			themes = append(themes, t.String())
		}
		return h.completeFrom(env, words, 1, cursor, themes)
	}

	if strings.HasPrefix(def.Args, "<user>") || strings.HasPrefix(def.Args, "[user]") {
		return h.completeName(env, ctx, words, 1, cursor)
	}
	return nil
}

func (h *Autocomplete) matchCommand(prefix string) (command.Def, bool) {
	if !strings.HasPrefix(prefix, "/") {
		return command.Def{}, false
	}
	for _, d := range command.Defs {
		if d.HasPrefix(prefix) {
			return d, true
		}
	}
	return command.Def{}, false
}

func (h *Autocomplete) cursorIn(cursor int, w wordSpan) bool {
	return cursor > w.start && cursor <= w.prefixEnd
}

// completeSub handles the whitelist and oplist sub-grammars: the
// second word is a subcommand, later words depend on which one.
func (h *Autocomplete) completeSub(env *Env, ctx *Context, words []wordSpan, cursor int, defs []command.Def) error {
	if len(words) < 2 {
		return nil
	}
	sub := words[1]
	if h.cursorIn(cursor, sub) {
		for _, d := range defs {
			if d.HasPrefix(sub.prefix) {
				return h.paste(env, d.Name, sub.prefixEnd)
			}
		}
		return nil
	}

	switch {
	case strings.HasPrefix("add", sub.prefix) && sub.prefix != "",
		strings.HasPrefix("remove", sub.prefix) && sub.prefix != "":
		return h.completeName(env, ctx, words, 2, cursor)
	case sub.prefix == "load":
		return h.completeFrom(env, words, 2, cursor, []string{"merge", "replace"})
	}
	return nil
}

// completeFrom completes words[idx] against a fixed set of values.
func (h *Autocomplete) completeFrom(env *Env, words []wordSpan, idx, cursor int, values []string) error {
	if len(words) <= idx {
		return nil
	}
	w := words[idx]
	if !h.cursorIn(cursor, w) {
		return nil
	}
	for _, v := range values {
		if strings.HasPrefix(v, w.prefix) {
			return h.paste(env, v, w.prefixEnd)
		}
	}
	return nil
}

// completeName completes any word from idx on as a connected user's
// name, most recently active first. The session's own name is skipped.
func (h *Autocomplete) completeName(env *Env, ctx *Context, words []wordSpan, idx, cursor int) error {
	for i := idx; i < len(words); i++ {
		w := words[i]
		if !h.cursorIn(cursor, w) {
			continue
		}
		if name, ok := env.Room.FindNameByPrefix(w.prefix, ctx.User.Username); ok {
			return h.paste(env, name, w.prefixEnd)
		}
		return nil
	}
	return nil
}

// paste replaces the word ending at end with the completion plus a
// trailing space and repaints the line.
func (h *Autocomplete) paste(env *Env, completion string, end int) error {
	in := env.Terminal.Input
	in.MoveCursorTo(end)
	in.RemoveLastWordBeforeCursor()
	in.InsertBeforeCursor([]byte(completion))
	in.InsertBeforeCursor([]byte(" "))
	return env.Terminal.PrintInputLine()
}
