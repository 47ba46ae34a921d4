package workflow

import (
	"crypto/ed25519"
	"crypto/rand"
	"strings"
	"testing"

	gossh "golang.org/x/crypto/ssh"

	"github.com/unrenamed/chatd-sub000/internal/chat"
	"github.com/unrenamed/chatd-sub000/internal/terminal"
)

func genKey(t *testing.T) gossh.PublicKey {
	t.Helper()
	pub, _, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		t.Fatalf("generate key: %v", err)
	}
	key, err := gossh.NewPublicKey(pub)
	if err != nil {
		t.Fatalf("wrap key: %v", err)
	}
	return key
}

func join(f *fixture, id int, name string, isOp bool) *chat.Member {
	m := f.room.Join(id, name, "test-client", nil, isOp)
	drain(f.member)
	drain(m)
	return m
}

func TestAwayAndBack(t *testing.T) {
	f := newFixture(t, "alice", false)

	f.submit(t, "/away grabbing lunch")
	requireMessage(t, drain(f.member), ` ** alice has gone away: "grabbing lunch"`)

	f.submit(t, "/back")
	requireMessage(t, drain(f.member), " ** alice is back")

	f.submit(t, "/back")
	for _, m := range drain(f.member) {
		if strings.Contains(m, "is back") {
			t.Fatalf("back announced twice: %q", m)
		}
	}
}

func TestRename(t *testing.T) {
	f := newFixture(t, "alice", false)
	join(f, 2, "bob", false)

	f.submit(t, "/name alice")
	requireMessage(t, drain(f.member), "-> Error: new name is the same as the original")

	f.submit(t, "/name bob")
	requireMessage(t, drain(f.member), `-> Error: "bob" name is already taken`)

	f.submit(t, "/name neo")
	requireMessage(t, drain(f.member), " * alice user is now known as neo.")
	if !strings.Contains(stripANSI(f.env.Terminal.Prompt()), "neo") {
		t.Fatalf("prompt not updated: %q", f.env.Terminal.Prompt())
	}
}

func TestPrivateMessages(t *testing.T) {
	f := newFixture(t, "alice", false)
	bob := join(f, 2, "bob", false)

	f.submit(t, "/msg ghost hi")
	requireMessage(t, drain(f.member), "-> Error: user is not found")

	f.submit(t, "/msg alice hi")
	requireMessage(t, drain(f.member), "-> Error: you can't message yourself")

	f.submit(t, "/msg bob psst")
	requireMessage(t, drain(f.member), "[PM from alice] psst")
	requireMessage(t, drain(bob), "[PM from alice] psst")
}

func TestReply(t *testing.T) {
	f := newFixture(t, "alice", false)
	f.submit(t, "/reply hello?")
	requireMessage(t, drain(f.member), "-> Error: no message to reply to")

	bob := join(f, 2, "bob", false)
	f.submit(t, "/msg bob ping")
	drain(f.member)
	drain(bob)

	// bob replies through his own session
	bobTerm := terminal.New(&nopHandle{})
	bobTerm.SetSize(80, 24)
	bobFix := &fixture{
		env:    &Env{Terminal: bobTerm, Room: f.room, Auth: f.env.Auth, Version: f.env.Version},
		room:   f.room,
		member: bob,
		id:     2,
	}
	bobFix.submit(t, "/reply pong")
	requireMessage(t, drain(f.member), "[PM from bob] pong")
}

func TestMsgToAwayUser(t *testing.T) {
	f := newFixture(t, "alice", false)
	bob := join(f, 2, "bob", false)
	f.room.SetAway(2, "afk")
	drain(bob)

	f.submit(t, "/msg bob you there?")
	requireMessage(t, drain(f.member), "Sent PM to bob, but they're away now: afk")
}

func TestIgnoreFlow(t *testing.T) {
	f := newFixture(t, "alice", false)
	join(f, 2, "bob", false)

	f.submit(t, "/ignore")
	requireMessage(t, drain(f.member), "-> 0 users ignored")

	f.submit(t, "/ignore alice")
	requireMessage(t, drain(f.member), "-> Error: you can't ignore yourself")

	f.submit(t, "/ignore bob")
	requireMessage(t, drain(f.member), "-> Ignoring: bob")

	f.submit(t, "/ignore bob")
	requireMessage(t, drain(f.member), "-> Error: user already in the ignored list")

	f.submit(t, "/ignore")
	requireMessage(t, drain(f.member), "1 users ignored: bob")

	f.submit(t, "/unignore bob")
	requireMessage(t, drain(f.member), "-> No longer ignoring: bob")

	f.submit(t, "/unignore bob")
	requireMessage(t, drain(f.member), "-> Error: user not in the ignored list yet")
}

func TestFocusFlow(t *testing.T) {
	f := newFixture(t, "alice", false)
	join(f, 2, "bob", false)
	join(f, 3, "carol", false)

	f.submit(t, "/focus")
	requireMessage(t, drain(f.member), "-> Focusing no users")

	f.submit(t, "/focus bob,carol")
	requireMessage(t, drain(f.member), "Focusing on 2 users: bob, carol")

	f.submit(t, "/focus ghost")
	requireMessage(t, drain(f.member), "-> No online users found to focus")

	f.submit(t, "/focus $")
	requireMessage(t, drain(f.member), "-> Removed focus from all users")
}

func TestUsersListsConnected(t *testing.T) {
	f := newFixture(t, "alice", false)
	join(f, 2, "bob", false)
	f.submit(t, "/users")
	requireMessage(t, drain(f.member), "2 connected: alice, bob")
}

func TestWhoisShowsCard(t *testing.T) {
	f := newFixture(t, "alice", false)
	f.submit(t, "/whois alice")
	msgs := drain(f.member)
	requireMessage(t, msgs, "name: alice")
	requireMessage(t, msgs, "(no public key)")

	f.submit(t, "/whois ghost")
	requireMessage(t, drain(f.member), "-> Error: user not found")
}

func TestTimestampToggle(t *testing.T) {
	f := newFixture(t, "alice", false)
	f.submit(t, "/timestamp datetime")
	requireMessage(t, drain(f.member), "Timestamp is toggled ON, timezone is UTC")
	f.submit(t, "/timestamp off")
	requireMessage(t, drain(f.member), "Timestamp is toggled OFF")
}

func TestThemeCommands(t *testing.T) {
	f := newFixture(t, "alice", false)
	f.submit(t, "/themes")
	requireMessage(t, drain(f.member), "Supported themes: colors, mono, hacker")

	f.submit(t, "/theme mono")
	requireMessage(t, drain(f.member), "Set theme: mono")
}

func TestQuietToggle(t *testing.T) {
	f := newFixture(t, "alice", false)
	f.submit(t, "/quiet")
	requireMessage(t, drain(f.member), "Quiet mode is toggled ON")
	f.submit(t, "/quiet")
	requireMessage(t, drain(f.member), "Quiet mode is toggled OFF")
}

func TestEmotes(t *testing.T) {
	f := newFixture(t, "alice", false)
	join(f, 2, "bob", false)

	f.submit(t, "/me dances")
	requireMessage(t, drain(f.member), " ** alice dances")

	f.submit(t, "/me")
	requireMessage(t, drain(f.member), " ** alice is at a loss for words.")

	f.submit(t, "/shrug")
	requireMessage(t, drain(f.member), `alice ¯\_(◕‿◕)_/¯`)

	f.submit(t, "/slap")
	requireMessage(t, drain(f.member), " ** alice hits himself with a squishy banana.")

	f.submit(t, "/slap bob")
	requireMessage(t, drain(f.member), " ** alice hits bob with a squishy banana.")

	f.submit(t, "/slap ghost")
	requireMessage(t, drain(f.member), "-> Error: that slippin' monkey not in the room")
}

func TestHelpHidesOperatorCommands(t *testing.T) {
	f := newFixture(t, "alice", false)
	f.submit(t, "/help")
	msgs := drain(f.member)
	requireMessage(t, msgs, "Available commands:")
	requireMessage(t, msgs, "/exit")
	for _, m := range msgs {
		if strings.Contains(m, "Operator commands:") {
			t.Fatalf("operator section shown to regular user: %q", m)
		}
	}

	op := newFixture(t, "root", true)
	op.submit(t, "/help")
	msgs = drain(op.member)
	requireMessage(t, msgs, "Operator commands:")
	requireMessage(t, msgs, "/kick")
}

func TestOperatorGate(t *testing.T) {
	f := newFixture(t, "alice", false)
	for _, cmd := range []string{"/mute bob", "/kick bob", "/banned", "/whitelist status", "/oplist status"} {
		f.submit(t, cmd)
		requireMessage(t, drain(f.member), "-> Error: must be an operator")
	}

	f.submit(t, "/motd new day")
	requireMessage(t, drain(f.member), "-> Error: must be an operator to modify the MOTD")
}

func TestMute(t *testing.T) {
	f := newFixture(t, "root", true)
	join(f, 2, "bob", false)

	f.submit(t, "/mute ghost")
	requireMessage(t, drain(f.member), "-> Error: user not found")

	f.submit(t, "/mute root")
	requireMessage(t, drain(f.member), "-> Error: you can't mute yourself")

	f.submit(t, "/mute bob")
	requireMessage(t, drain(f.member), "Muted: bob, id = 2")

	f.submit(t, "/mute bob")
	requireMessage(t, drain(f.member), "Unmuted: bob, id = 2")
}

func TestMotd(t *testing.T) {
	f := newFixture(t, "root", true)
	f.submit(t, "/motd")
	requireMessage(t, drain(f.member), "-> welcome")

	f.submit(t, "/motd fresh greeting")
	requireMessage(t, drain(f.member), "set new message of the day: ")
	if got := f.room.Motd(); got != "fresh greeting" {
		t.Fatalf("motd = %q", got)
	}
}

func TestKick(t *testing.T) {
	f := newFixture(t, "root", true)
	bob := join(f, 2, "bob", false)

	f.submit(t, "/kick bob")
	requireMessage(t, drain(f.member), " * root kicked bob from the server")
	select {
	case <-bob.ExitSignal():
	default:
		t.Fatal("bob's session was not signalled to exit")
	}
}

func TestBanSingle(t *testing.T) {
	f := newFixture(t, "root", true)
	key := genKey(t)
	bob := f.room.Join(2, "bob", "test-client", key, false)
	drain(f.member)
	drain(bob)

	f.submit(t, "/ban bob 1h")
	requireMessage(t, drain(f.member), " * root banned bob from the server")
	select {
	case <-bob.ExitSignal():
	default:
		t.Fatal("bob's session was not signalled to exit")
	}
	if !f.env.Auth.CheckBans("anyone", key) {
		t.Fatal("fingerprint not banned")
	}
}

func TestBanByAttributes(t *testing.T) {
	f := newFixture(t, "root", true)

	f.submit(t, "/ban name=ghost 2days")
	requireMessage(t, drain(f.member), "Banning is complete. Offline users were silently banned.")
	if !f.env.Auth.CheckBans("ghost", nil) {
		t.Fatal("username not banned")
	}

	f.submit(t, "/banned")
	requireMessage(t, drain(f.member), `"name=ghost"`)
}

func TestVersionAndUptime(t *testing.T) {
	f := newFixture(t, "alice", false)
	f.submit(t, "/version")
	requireMessage(t, drain(f.member), "v1.0.0-test")

	f.submit(t, "/uptime")
	if msgs := drain(f.member); len(msgs) == 0 {
		t.Fatal("no uptime reply")
	}
}

func TestExitSignalsOwnSession(t *testing.T) {
	f := newFixture(t, "alice", false)
	f.submit(t, "/exit")
	select {
	case <-f.member.ExitSignal():
	default:
		t.Fatal("exit not signalled")
	}
}
