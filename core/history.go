package core

import "fmt"

// EvictionPolicy removes exactly one message from a full history and returns
// the shortened slice.
type EvictionPolicy func(messages []Message) []Message

// EvictOldest drops the first message.
func EvictOldest(messages []Message) []Message {
	if len(messages) == 0 {
		return messages
	}

	return append(messages[:0:0], messages[1:]...)
}

// PreserveFirst keeps the first (system) message and drops the second one.
// A history holding a single message falls back to EvictOldest so the
// capacity is never exceeded.
func PreserveFirst(messages []Message) []Message {
	if len(messages) < 2 {
		return EvictOldest(messages)
	}

	out := make([]Message, 0, len(messages)-1)
	out = append(out, messages[0])

	return append(out, messages[2:]...)
}

// HistoryOptions configures a History.
type HistoryOptions struct {
	// MaxLength caps the number of retained messages. Values <= 0 disable the cap.
	MaxLength int
	// Eviction selects which message is dropped when the cap is reached.
	// Defaults to EvictOldest.
	Eviction EvictionPolicy
}

// History is the ordered conversation buffer used for a single agent run.
// Insertion order is execution order. It is not safe for concurrent use.
type History struct {
	messages  []Message
	maxLength int
	evict     EvictionPolicy
}

// NewHistory creates a history seeded with the given messages. Seed messages
// are not subject to eviction; the cap applies from the first Append.
func NewHistory(seed []Message, optFns ...func(o *HistoryOptions)) *History {
	opts := HistoryOptions{
		MaxLength: -1,
		Eviction:  EvictOldest,
	}

	for _, fn := range optFns {
		fn(&opts)
	}

	if opts.MaxLength <= 0 {
		opts.MaxLength = -1
	}

	if opts.Eviction == nil {
		opts.Eviction = EvictOldest
	}

	messages := make([]Message, len(seed))
	copy(messages, seed)

	return &History{messages: messages, maxLength: opts.MaxLength, evict: opts.Eviction}
}

// Append adds msg to the end of the history, evicting one message first if
// the history is already at capacity.
func (h *History) Append(msg Message) error {
	if !msg.Role.Valid() {
		return fmt.Errorf("%w: unknown message role %q", ErrTypeKind, msg.Role)
	}

	if h.maxLength > 0 && len(h.messages) >= h.maxLength {
		h.messages = h.evict(h.messages)
	}

	h.messages = append(h.messages, msg)

	return nil
}

// Snapshot returns a copy of the current messages.
func (h *History) Snapshot() []Message {
	out := make([]Message, len(h.messages))
	copy(out, h.messages)

	return out
}

// Len returns the number of stored messages.
func (h *History) Len() int { return len(h.messages) }

// MaxLength returns the configured cap, or -1 when unbounded.
func (h *History) MaxLength() int { return h.maxLength }
