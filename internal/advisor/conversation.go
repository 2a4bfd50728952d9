package advisor

import (
	"context"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/muurk/evlease/internal/logging"
)

const (
	// FallbackReply replaces the answer whenever the advisor fails.
	FallbackReply = "Unable to connect to the vehicle brain. Please check your network."

	// EmptyReply replaces an answer that came back without any text.
	EmptyReply = "I'm sorry, I couldn't process that request right now."
)

// Role identifies who wrote a transcript entry.
type Role string

const (
	RoleUser  Role = "user"
	RoleModel Role = "model"
)

// Message is one transcript entry.
type Message struct {
	ID       uuid.UUID
	Role     Role
	Text     string
	At       time.Time
	Fallback bool // Text is a substitute for a failed or empty answer
}

// Conversation is an ordered chat transcript backed by an Advisor.
//
// Ask calls are serialized: each question and its reply are appended as an
// adjacent pair, and a second Ask waits until the first has its reply.
type Conversation struct {
	advisor Advisor
	now     func() time.Time

	turn sync.Mutex // held for a whole question/answer exchange

	mu       sync.RWMutex
	messages []Message

	pending atomic.Int32
}

// NewConversation creates an empty transcript.
func NewConversation(a Advisor) *Conversation {
	return &Conversation{advisor: a, now: time.Now}
}

// Ask appends prompt and then exactly one reply: the advisor's text, EmptyReply
// or FallbackReply. Advisor errors never reach the caller. A blank prompt is
// ignored and reported with ok=false.
func (c *Conversation) Ask(ctx context.Context, prompt string, subject Subject) (reply Message, ok bool) {
	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return Message{}, false
	}

	c.pending.Add(1)
	defer c.pending.Add(-1)

	c.turn.Lock()
	defer c.turn.Unlock()

	c.append(RoleUser, prompt, false)

	start := time.Now()
	text, err := c.advise(ctx, prompt, subject)
	fallback := false
	switch {
	case err != nil && IsEmptyError(err):
		text, fallback = EmptyReply, true
	case err != nil:
		text, fallback = FallbackReply, true
	case strings.TrimSpace(text) == "":
		text, fallback = EmptyReply, true
	}
	logging.LogAdviceExchange(c.modelName(), len(prompt), time.Since(start), fallback, err)

	return c.append(RoleModel, text, fallback), true
}

func (c *Conversation) advise(ctx context.Context, prompt string, subject Subject) (string, error) {
	if c.advisor == nil {
		return "", NewConfigError("no advisor configured")
	}
	return c.advisor.Advise(ctx, prompt, subject)
}

func (c *Conversation) modelName() string {
	if named, ok := c.advisor.(interface{ ModelName() string }); ok {
		return named.ModelName()
	}
	return "none"
}

func (c *Conversation) append(role Role, text string, fallback bool) Message {
	msg := Message{
		ID:       uuid.New(),
		Role:     role,
		Text:     text,
		At:       c.now(),
		Fallback: fallback,
	}
	c.mu.Lock()
	c.messages = append(c.messages, msg)
	c.mu.Unlock()
	return msg
}

// Pending returns the number of Ask calls waiting for or holding a reply.
func (c *Conversation) Pending() int {
	return int(c.pending.Load())
}

// Messages returns a copy of the transcript.
func (c *Conversation) Messages() []Message {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]Message, len(c.messages))
	copy(out, c.messages)
	return out
}

// Len returns the number of transcript entries.
func (c *Conversation) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.messages)
}

// Last returns the newest entry.
func (c *Conversation) Last() (Message, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if len(c.messages) == 0 {
		return Message{}, false
	}
	return c.messages[len(c.messages)-1], true
}
