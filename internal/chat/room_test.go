package chat

import (
	"fmt"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/unrenamed/chatd-sub000/internal/chat/message"
)

var ansiRe = regexp.MustCompile(`\x1b\[[0-9;]*m`)

func drain(m *Member) []string {
	var out []string
	for {
		select {
		case s := <-m.Messages():
			out = append(out, ansiRe.ReplaceAllString(s, ""))
		default:
			return out
		}
	}
}

func publicFrom(m *Member, body string) message.Message {
	return message.NewPublic(message.From(m.User()), body)
}

func TestJoinDeliversMotdAndAnnounce(t *testing.T) {
	r := NewRoom("welcome")
	alice := r.Join(1, "alice", "SSH-2.0-test", nil, false)

	got := drain(alice)
	if len(got) != 2 {
		t.Fatalf("joiner received %d messages, want motd + announce: %q", len(got), got)
	}
	if want := "-> welcome\n\r"; got[0] != want {
		t.Errorf("motd = %q, want %q", got[0], want)
	}
	if want := " * alice joined. (Connected: 1)"; got[1] != want {
		t.Errorf("announce = %q, want %q", got[1], want)
	}
}

func TestJoinSanitizesName(t *testing.T) {
	r := NewRoom("m")
	m := r.Join(1, "al ice!!", "SSH-2.0-test", nil, false)
	if got := m.User().Username; got != "alice" {
		t.Errorf("name = %q, want %q", got, "alice")
	}
}

func TestJoinTakenNameGetsRandom(t *testing.T) {
	r := NewRoom("m")
	r.Join(1, "alice", "SSH-2.0-test", nil, false)
	m := r.Join(2, "alice", "SSH-2.0-test", nil, false)
	name := m.User().Username
	if name == "alice" || name == "" {
		t.Errorf("second joiner should get a random name, got %q", name)
	}
}

func TestPublicBroadcastAndHistoryReplay(t *testing.T) {
	r := NewRoom("m")
	alice := r.Join(1, "alice", "SSH-2.0-test", nil, false)
	bob := r.Join(2, "bob", "SSH-2.0-test", nil, false)
	drain(alice)
	drain(bob)

	r.SendMessage(publicFrom(alice, "hello"))

	if got := drain(bob); len(got) != 1 || got[0] != "alice: hello" {
		t.Errorf("bob received %q", got)
	}
	if got := drain(alice); len(got) != 1 || got[0] != "alice: hello" {
		t.Errorf("author echo = %q", got)
	}

	// History holds both join announces and the public message.
	carol := r.Join(3, "carol", "SSH-2.0-test", nil, false)
	got := drain(carol)
	if len(got) != 5 {
		t.Fatalf("late joiner received %d messages, want motd + history + announce: %q", len(got), got)
	}
	if got[3] != "alice: hello" {
		t.Errorf("history replay = %q", got[3])
	}
}

func TestEmoteAndAnnounceReplayToLateJoiner(t *testing.T) {
	r := NewRoom("m")
	alice := r.Join(1, "alice", "SSH-2.0-test", nil, false)
	drain(alice)

	r.SendMessage(message.NewEmote(message.From(alice.User()), "waves"))
	r.SendMessage(message.NewAnnounce(message.From(alice.User()), "did a thing"))
	drain(alice)

	bob := r.Join(2, "bob", "SSH-2.0-test", nil, false)
	got := strings.Join(drain(bob), "\n")
	if !strings.Contains(got, " ** alice waves") {
		t.Errorf("emote missing from history replay: %q", got)
	}
	if !strings.Contains(got, " * alice did a thing") {
		t.Errorf("announce missing from history replay: %q", got)
	}
}

func TestIgnoreFiltersBroadcast(t *testing.T) {
	r := NewRoom("m")
	alice := r.Join(1, "alice", "SSH-2.0-test", nil, false)
	bob := r.Join(2, "bob", "SSH-2.0-test", nil, false)
	r.AddIgnored(2, 1)
	drain(alice)
	drain(bob)

	r.SendMessage(publicFrom(alice, "hi"))
	if got := drain(bob); len(got) != 0 {
		t.Errorf("ignoring member still received %q", got)
	}
}

func TestFocusFiltersBroadcast(t *testing.T) {
	r := NewRoom("m")
	alice := r.Join(1, "alice", "SSH-2.0-test", nil, false)
	bob := r.Join(2, "bob", "SSH-2.0-test", nil, false)
	carol := r.Join(3, "carol", "SSH-2.0-test", nil, false)
	r.AddFocused(3, 2) // carol only wants bob
	drain(alice)
	drain(bob)
	drain(carol)

	r.SendMessage(publicFrom(alice, "from alice"))
	if got := drain(carol); len(got) != 0 {
		t.Errorf("focused member received unfocused message %q", got)
	}
	r.SendMessage(publicFrom(bob, "from bob"))
	if got := drain(carol); len(got) != 1 {
		t.Errorf("focused member missed focused message, got %q", got)
	}
	// The filter applies to the author too: carol focused only bob,
	// so she loses her own echo.
	r.SendMessage(publicFrom(carol, "from carol"))
	for _, s := range drain(carol) {
		if strings.Contains(s, "from carol") {
			t.Errorf("author outside own focus set still received echo %q", s)
		}
	}
	if got := strings.Join(drain(bob), "\n"); !strings.Contains(got, "from carol") {
		t.Errorf("unfocused member missed carol's message, got %q", got)
	}
}

func TestMutedAuthorGetsNoticeOnly(t *testing.T) {
	r := NewRoom("m")
	alice := r.Join(1, "alice", "SSH-2.0-test", nil, false)
	bob := r.Join(2, "bob", "SSH-2.0-test", nil, false)
	r.ToggleMute("alice")
	drain(alice)
	drain(bob)

	r.SendMessage(publicFrom(alice, "can you hear me"))

	if got := drain(bob); len(got) != 0 {
		t.Errorf("muted message leaked to bob: %q", got)
	}
	got := drain(alice)
	if len(got) != 1 || got[0] != "-> Error: You are muted and cannot send messages." {
		t.Errorf("muted notice = %q", got)
	}

	carol := r.Join(3, "carol", "SSH-2.0-test", nil, false)
	for _, s := range drain(carol) {
		if strings.Contains(s, "can you hear me") {
			t.Error("muted message entered history")
		}
	}
}

func TestPrivateRouting(t *testing.T) {
	r := NewRoom("m")
	alice := r.Join(1, "alice", "SSH-2.0-test", nil, false)
	bob := r.Join(2, "bob", "SSH-2.0-test", nil, false)
	carol := r.Join(3, "carol", "SSH-2.0-test", nil, false)
	drain(alice)
	drain(bob)
	drain(carol)

	r.SendMessage(message.NewPrivate(message.From(alice.User()), message.From(bob.User()), "psst"))

	if got := drain(bob); len(got) != 1 || !strings.Contains(got[0], "[PM from alice] psst") {
		t.Errorf("recipient got %q", got)
	}
	if got := drain(alice); len(got) != 1 {
		t.Errorf("author echo missing: %q", got)
	}
	if got := drain(carol); len(got) != 0 {
		t.Errorf("third party received private message %q", got)
	}
}

func TestPrivateToIgnoringRecipientIsDropped(t *testing.T) {
	r := NewRoom("m")
	alice := r.Join(1, "alice", "SSH-2.0-test", nil, false)
	bob := r.Join(2, "bob", "SSH-2.0-test", nil, false)
	r.AddIgnored(2, 1)
	drain(alice)
	drain(bob)

	r.SendMessage(message.NewPrivate(message.From(alice.User()), message.From(bob.User()), "psst"))
	if got := drain(bob); len(got) != 0 {
		t.Errorf("ignoring recipient got %q", got)
	}
}

func TestQuietSuppressesAnnouncements(t *testing.T) {
	r := NewRoom("m")
	alice := r.Join(1, "alice", "SSH-2.0-test", nil, false)
	r.ToggleQuiet(1)
	drain(alice)

	r.Join(2, "bob", "SSH-2.0-test", nil, false)
	if got := drain(alice); len(got) != 0 {
		t.Errorf("quiet member received announcement %q", got)
	}
}

func TestRename(t *testing.T) {
	r := NewRoom("m")
	alice := r.Join(1, "alice", "SSH-2.0-test", nil, false)
	bob := r.Join(2, "bob", "SSH-2.0-test", nil, false)
	drain(alice)
	drain(bob)

	if _, err := r.Rename(1, "alice"); err != ErrSameName {
		t.Errorf("rename to same name = %v, want ErrSameName", err)
	}
	if _, err := r.Rename(1, "bob"); err != ErrNameTaken {
		t.Errorf("rename to taken name = %v, want ErrNameTaken", err)
	}

	snap, err := r.Rename(1, "neo")
	if err != nil {
		t.Fatalf("Rename: %v", err)
	}
	if snap.Username != "neo" {
		t.Errorf("snapshot name = %q", snap.Username)
	}
	got := drain(bob)
	if len(got) != 1 || got[0] != " * alice user is now known as neo." {
		t.Errorf("announce = %q", got)
	}
	if _, ok := r.UserByName("neo"); !ok {
		t.Error("member not reachable under the new name")
	}
	if _, ok := r.UserByName("alice"); ok {
		t.Error("member still reachable under the old name")
	}
}

func TestLeaveAnnouncesAndScrubs(t *testing.T) {
	r := NewRoom("m")
	alice := r.Join(1, "alice", "SSH-2.0-test", nil, false)
	bob := r.Join(2, "bob", "SSH-2.0-test", nil, false)
	r.AddIgnored(2, 1)
	r.AddFocused(2, 1)
	drain(alice)
	drain(bob)

	r.Leave(1)

	got := drain(bob)
	if len(got) != 1 || !strings.HasPrefix(got[0], " * alice left: (After ") {
		t.Errorf("leave announce = %q", got)
	}
	if r.MemberCount() != 1 {
		t.Errorf("MemberCount = %d, want 1", r.MemberCount())
	}
	u, _ := r.UserByID(2)
	if len(u.Ignored) != 0 || len(u.Focused) != 0 {
		t.Error("departed id not scrubbed from ignore/focus sets")
	}

	// Leaving twice is harmless.
	r.Leave(1)
}

func TestFindNameByPrefix(t *testing.T) {
	r := NewRoom("m")
	annie := r.Join(1, "annie", "SSH-2.0-test", nil, false)
	anna := r.Join(2, "anna", "SSH-2.0-test", nil, false)
	drain(annie)
	drain(anna)

	if _, ok := r.FindNameByPrefix("", "x"); ok {
		t.Error("empty prefix should not match")
	}
	if _, ok := r.FindNameByPrefix("zz", "x"); ok {
		t.Error("unmatched prefix should not match")
	}

	// anna spoke last, so she wins the tie.
	r.SendMessage(publicFrom(annie, "hi"))
	time.Sleep(5 * time.Millisecond)
	r.SendMessage(publicFrom(anna, "hi"))

	if name, ok := r.FindNameByPrefix("ann", "nobody"); !ok || name != "anna" {
		t.Errorf("FindNameByPrefix = %q, %v; want anna", name, ok)
	}
	// Unless she is the one asking.
	if name, ok := r.FindNameByPrefix("ann", "anna"); !ok || name != "annie" {
		t.Errorf("FindNameByPrefix skipping anna = %q, %v; want annie", name, ok)
	}
}

func TestHistoryIsBounded(t *testing.T) {
	r := NewRoom("m")
	alice := r.Join(1, "alice", "SSH-2.0-test", nil, false)
	drain(alice)

	for i := 0; i < 30; i++ {
		r.SendMessage(publicFrom(alice, fmt.Sprintf("msg %d", i)))
	}
	drain(alice)

	bob := r.Join(2, "bob", "SSH-2.0-test", nil, false)
	got := drain(bob)
	// MOTD + 20 history entries + own join announce.
	if len(got) != 22 {
		t.Fatalf("late joiner received %d messages, want 22", len(got))
	}
	if got[1] != "alice: msg 10" || got[20] != "alice: msg 29" {
		t.Errorf("history window = [%q .. %q]", got[1], got[20])
	}
}

func TestExitByID(t *testing.T) {
	r := NewRoom("m")
	alice := r.Join(1, "alice", "SSH-2.0-test", nil, false)

	if r.ExitByID(99) {
		t.Error("unknown id should not exit")
	}
	if !r.ExitByID(1) {
		t.Fatal("ExitByID failed")
	}
	select {
	case <-alice.ExitSignal():
	case <-time.After(time.Second):
		t.Error("exit signal not delivered")
	}
	// A second exit must not panic.
	if !r.ExitByID(1) {
		t.Error("repeated exit should still find the member")
	}
}

func TestRateLimitPerMember(t *testing.T) {
	r := NewRoom("m")
	r.Join(1, "alice", "SSH-2.0-test", nil, false)

	for i := 0; i < 10; i++ {
		if _, ok := r.CheckRateLimit(1); !ok {
			t.Fatalf("message %d should pass", i+1)
		}
	}
	if _, ok := r.CheckRateLimit(1); ok {
		t.Error("11th rapid message should be limited")
	}
	// Unknown ids are not limited.
	if _, ok := r.CheckRateLimit(42); !ok {
		t.Error("unknown id should pass")
	}
}
