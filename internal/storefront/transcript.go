package storefront

import (
	"github.com/oklog/ulid/v2"
)

// EntryKind tells the view how to present a transcript entry.
type EntryKind string

const (
	EntryGreeting EntryKind = "greeting"
	EntryUser     EntryKind = "user"
	EntryBot      EntryKind = "bot"
	EntryNotice   EntryKind = "notice"
)

const (
	Greeting       = "👋 Hello Gorgeous! How can I help you today?"
	TypingLabel    = "Typing..."
	RoutineLabel   = "Creating your personalized routine..."
	ClearedNotice  = "All favorite products have been cleared."
	saveFailNotice = "We couldn't save your favorites right now. Please try again."
)

// Entry is one line of the chat window. Notices and the greeting never reach the assistant.
type Entry struct {
	ID   string
	Kind EntryKind
	Text string
	// Pending entries show Text as a placeholder until their turn resolves.
	Pending bool
	TurnID  string
}

// Transcript is the append-only list of chat window entries.
type Transcript struct {
	entries []Entry
}

func newTranscript() *Transcript {
	t := &Transcript{}
	t.append(EntryGreeting, Greeting)
	return t
}

func (t *Transcript) append(kind EntryKind, text string) Entry {
	e := Entry{ID: ulid.Make().String(), Kind: kind, Text: text}
	t.entries = append(t.entries, e)
	return e
}

func (t *Transcript) appendPending(label, turnID string) Entry {
	e := Entry{ID: ulid.Make().String(), Kind: EntryBot, Text: label, Pending: true, TurnID: turnID}
	t.entries = append(t.entries, e)
	return e
}

// resolve replaces a pending entry's placeholder with the reply.
func (t *Transcript) resolve(id, text string) (Entry, bool) {
	for i := range t.entries {
		if t.entries[i].ID == id {
			t.entries[i].Text = text
			t.entries[i].Pending = false
			return t.entries[i], true
		}
	}
	return Entry{}, false
}

// byTurn finds the entry a chat turn writes its reply into.
func (t *Transcript) byTurn(turnID string) (Entry, bool) {
	for _, e := range t.entries {
		if e.TurnID == turnID {
			return e, true
		}
	}
	return Entry{}, false
}

// Entries returns a copy in display order.
func (t *Transcript) Entries() []Entry {
	return append([]Entry(nil), t.entries...)
}
