package chat

import (
	"testing"
	"time"

	"mqchat/internal/app/mailbox"
	"mqchat/internal/app/wire"
)

// TestRouterLoop_ThrottledCommandStillTouchesLastActive exhausts a
// sender's rate-limit burst, then sends one more command through a real
// control mailbox while routerLoop runs. Even though the limiter drops
// that command before dispatch, spec.md §4.5 requires the last-active
// refresh to happen for every command regardless of kind, so the
// registry's LastActive for that sender must still advance.
func TestRouterLoop_ThrottledCommandStillTouchesLastActive(t *testing.T) {
	s := testServer(t)

	control, err := mailbox.CreateAnonymous()
	if err != nil {
		t.Fatalf("CreateAnonymous: %v", err)
	}
	defer control.Destroy()
	s.control = control

	staleTime := time.Now().Add(-time.Hour)
	s.registry.Lock()
	s.registry.AddClient("alice", 1, staleTime)
	s.registry.Unlock()

	for i := 0; i < commandBurst; i++ {
		s.limiter.Allow("alice")
	}
	if s.limiter.Allow("alice") {
		t.Fatalf("expected alice's burst to already be exhausted")
	}

	s.routerWG.Add(1)
	go s.routerLoop()
	defer func() {
		control.Destroy()
		s.routerWG.Wait()
	}()

	if err := mailbox.SendCommand(control.Key, mailbox.Blocking, wire.CommandMessage{
		Kind: wire.CommandWho, SenderHandle: "alice", Channel: "#general",
	}); err != nil {
		t.Fatalf("SendCommand: %v", err)
	}

	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		s.registry.RLock()
		client, ok := s.registry.FindClient("alice")
		var last time.Time
		if ok {
			last = client.LastActive
		}
		s.registry.RUnlock()

		if ok && last.After(staleTime) {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}

	t.Fatalf("alice's LastActive was not refreshed by the throttled command")
}
