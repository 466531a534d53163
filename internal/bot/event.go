// Package bot routes chat events to the expense services and renders the replies.
//
// It knows nothing about the chat transport: adapters turn updates into
// Events and implement Deliverer to send Replies back.
package bot

import (
	"context"
	"strings"
	"time"
)

type EventKind int

const (
	EventText EventKind = iota
	EventCommand
	EventCallback
)

func (k EventKind) String() string {
	switch k {
	case EventCommand:
		return "command"
	case EventCallback:
		return "callback"
	default:
		return "text"
	}
}

// Event is one inbound update from a user.
//
// For commands Name is the command without the slash and Payload the
// argument text; for callbacks Name is the callback data; for text Payload
// is the message.
type Event struct {
	Kind        EventKind
	UserID      string
	DisplayName string
	Name        string
	Payload     string
	At          time.Time
	raw         string
}

// Text is the message as typed, including the command prefix.
func (e Event) Text() string {
	if e.raw != "" {
		return e.raw
	}
	return e.Payload
}

// FromText builds a text or command event from a typed message.
// "/budget@moneytrack_bot daily 100" becomes command "budget" with payload "daily 100".
func FromText(userID, displayName, text string, at time.Time) Event {
	ev := Event{Kind: EventText, UserID: userID, DisplayName: displayName, Payload: text, At: at}
	trimmed := strings.TrimSpace(text)
	if !strings.HasPrefix(trimmed, "/") {
		return ev
	}
	head, rest, _ := strings.Cut(trimmed[1:], " ")
	head, _, _ = strings.Cut(head, "@")
	if head == "" {
		return ev
	}
	ev.Kind = EventCommand
	ev.raw = text
	ev.Name = strings.ToLower(head)
	ev.Payload = strings.TrimSpace(rest)
	return ev
}

func FromCallback(userID, displayName, data string, at time.Time) Event {
	return Event{Kind: EventCallback, UserID: userID, DisplayName: displayName, Name: strings.TrimSpace(data), At: at}
}

type Button struct {
	Text string
	Data string
}

// Document is a file sent to the recipient of a reply.
type Document struct {
	Name string
	Data []byte
}

// Reply is one outbound message. Keyboard is a reply keyboard of button
// texts; Inline carries callback buttons. At most one of them is set.
// When Document is set, Text is sent as its caption.
type Reply struct {
	Text     string
	Markdown bool
	Keyboard [][]string
	OneTime  bool
	Inline   [][]Button
	Document *Document
}

// Deliverer sends a reply to a user over the chat transport.
type Deliverer interface {
	Deliver(ctx context.Context, userID string, r Reply) error
}

// DelivererFunc adapts a function to Deliverer.
type DelivererFunc func(ctx context.Context, userID string, r Reply) error

func (f DelivererFunc) Deliver(ctx context.Context, userID string, r Reply) error {
	return f(ctx, userID, r)
}
