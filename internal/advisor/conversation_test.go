package advisor

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"
)

func TestConversationAsk(t *testing.T) {
	conv := NewConversation(Static{Reply: "Keep it between 20% and 80%."})

	reply, ok := conv.Ask(context.Background(), "  battery tips  ", testSubject())
	if !ok {
		t.Fatal("Ask() ok = false")
	}
	if reply.Role != RoleModel || reply.Fallback {
		t.Errorf("reply = %+v", reply)
	}

	msgs := conv.Messages()
	if len(msgs) != 2 {
		t.Fatalf("len(Messages()) = %v, want 2", len(msgs))
	}
	if msgs[0].Role != RoleUser || msgs[0].Text != "battery tips" {
		t.Errorf("first message = %+v", msgs[0])
	}
	if msgs[1].Text != "Keep it between 20% and 80%." {
		t.Errorf("second message = %+v", msgs[1])
	}
	if msgs[0].ID == msgs[1].ID {
		t.Error("messages should have distinct IDs")
	}
}

func TestConversationFallback(t *testing.T) {
	conv := NewConversation(Static{Err: errors.New("boom")})

	reply, ok := conv.Ask(context.Background(), "range tips", testSubject())
	if !ok {
		t.Fatal("Ask() ok = false")
	}
	if reply.Text != FallbackReply || !reply.Fallback {
		t.Errorf("reply = %+v, want fallback", reply)
	}

	last, _ := conv.Last()
	if last.Text != FallbackReply {
		t.Errorf("Last().Text = %q, want fallback", last.Text)
	}
}

func TestConversationEmptyReply(t *testing.T) {
	conv := NewConversation(Static{Err: NewEmptyError("no text")})

	reply, _ := conv.Ask(context.Background(), "hello", testSubject())
	if reply.Text != EmptyReply {
		t.Errorf("reply = %q, want %q", reply.Text, EmptyReply)
	}
}

func TestConversationBlankAnswer(t *testing.T) {
	tests := []struct {
		name    string
		advisor Advisor
	}{
		{"empty static", Static{}},
		{"whitespace static", Static{Reply: " \n\t "}},
		{"empty func", Func(func(ctx context.Context, prompt string, subject Subject) (string, error) {
			return "", nil
		})},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			conv := NewConversation(tt.advisor)
			reply, ok := conv.Ask(context.Background(), "hello", testSubject())
			if !ok {
				t.Fatal("Ask() ok = false")
			}
			if reply.Text != EmptyReply || !reply.Fallback {
				t.Errorf("reply = %+v, want %q", reply, EmptyReply)
			}
			if conv.Len() != 2 {
				t.Errorf("Len() = %v, want 2", conv.Len())
			}
		})
	}
}

func TestConversationUnconfigured(t *testing.T) {
	conv := NewConversation(Unconfigured())
	reply, _ := conv.Ask(context.Background(), "hello", testSubject())
	if reply.Text != FallbackReply {
		t.Errorf("reply = %q, want fallback", reply.Text)
	}

	var nilAdvisor *Conversation = NewConversation(nil)
	reply, _ = nilAdvisor.Ask(context.Background(), "hello", testSubject())
	if reply.Text != FallbackReply {
		t.Errorf("nil advisor reply = %q, want fallback", reply.Text)
	}
}

func TestConversationIgnoresBlankPrompt(t *testing.T) {
	called := false
	conv := NewConversation(Func(func(ctx context.Context, prompt string, subject Subject) (string, error) {
		called = true
		return "x", nil
	}))

	if _, ok := conv.Ask(context.Background(), "   ", testSubject()); ok {
		t.Error("Ask() with blank prompt should report ok=false")
	}
	if called || conv.Len() != 0 {
		t.Error("blank prompt should not reach the advisor or the transcript")
	}
}

func TestConversationSerializesConcurrentAsks(t *testing.T) {
	release := make(chan struct{})
	var mu sync.Mutex
	inFlight, maxInFlight := 0, 0

	conv := NewConversation(Func(func(ctx context.Context, prompt string, subject Subject) (string, error) {
		mu.Lock()
		inFlight++
		if inFlight > maxInFlight {
			maxInFlight = inFlight
		}
		mu.Unlock()

		<-release

		mu.Lock()
		inFlight--
		mu.Unlock()
		return "answer to " + prompt, nil
	}))

	const n = 5
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			conv.Ask(context.Background(), fmt.Sprintf("q%d", i), testSubject())
		}(i)
	}

	deadline := time.Now().Add(2 * time.Second)
	for conv.Pending() < n && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	if got := conv.Pending(); got != n {
		t.Errorf("Pending() = %v, want %v", got, n)
	}

	close(release)
	wg.Wait()

	if maxInFlight != 1 {
		t.Errorf("max concurrent advisor calls = %v, want 1", maxInFlight)
	}
	if conv.Pending() != 0 {
		t.Errorf("Pending() after completion = %v, want 0", conv.Pending())
	}

	msgs := conv.Messages()
	if len(msgs) != 2*n {
		t.Fatalf("len(Messages()) = %v, want %v", len(msgs), 2*n)
	}
	for i := 0; i < len(msgs); i += 2 {
		q, a := msgs[i], msgs[i+1]
		if q.Role != RoleUser || a.Role != RoleModel {
			t.Errorf("entries %d,%d roles = %v,%v", i, i+1, q.Role, a.Role)
		}
		if a.Text != "answer to "+q.Text {
			t.Errorf("reply %q does not follow its question %q", a.Text, q.Text)
		}
	}
}

func TestConversationCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	conv := NewConversation(Static{Reply: "never"})
	reply, _ := conv.Ask(ctx, "hello", testSubject())
	if reply.Text != FallbackReply {
		t.Errorf("reply = %q, want fallback", reply.Text)
	}
}
