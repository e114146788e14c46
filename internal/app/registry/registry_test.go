package registry

import (
	"testing"
	"time"

	"mqchat/internal/configs"
)

func testConfig() *configs.AppConfig {
	return &configs.AppConfig{
		MaxClients:  3,
		MaxChannels: 2,
	}
}

func TestAddClient(t *testing.T) {
	tests := []struct {
		name    string
		seed    []string
		handle  string
		wantOK  bool
	}{
		{name: "first client", seed: nil, handle: "alice", wantOK: true},
		{name: "duplicate handle rejected", seed: []string{"alice"}, handle: "alice", wantOK: false},
		{name: "registry full", seed: []string{"a", "b", "c"}, handle: "d", wantOK: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := New(testConfig())
			now := time.Now()
			for _, h := range tt.seed {
				if _, ok := r.AddClient(h, 1, now); !ok {
					t.Fatalf("seed AddClient(%q) failed unexpectedly", h)
				}
			}

			_, ok := r.AddClient(tt.handle, 1, now)
			if ok != tt.wantOK {
				t.Fatalf("AddClient(%q) ok = %v, want %v", tt.handle, ok, tt.wantOK)
			}
		})
	}
}

func TestJoinRoom_SameChannelIsNoOp(t *testing.T) {
	r := New(testConfig())
	now := time.Now()
	r.AddClient("alice", 1, now)

	if _, _, _, ok := r.JoinRoom("alice", "#r"); !ok {
		t.Fatalf("first JOIN failed")
	}

	count, departed, changed, ok := r.JoinRoom("alice", "#r")
	if !ok {
		t.Fatalf("second JOIN failed")
	}
	if departed != nil {
		t.Fatalf("same-channel rejoin produced a departure event: %+v", departed)
	}
	if changed {
		t.Fatalf("same-channel rejoin reported changed=true, want false")
	}
	if count != 1 {
		t.Fatalf("member count = %d, want 1", count)
	}
}

func TestJoinRoom_LeaveThenJoin(t *testing.T) {
	r := New(testConfig())
	now := time.Now()
	r.AddClient("alice", 1, now)

	r.JoinRoom("alice", "#a")

	count, departed, changed, ok := r.JoinRoom("alice", "#b")
	if !ok || !changed {
		t.Fatalf("JOIN #b failed or reported changed=false")
	}
	if departed == nil || departed.Channel != "#a" {
		t.Fatalf("expected a departure from #a, got %+v", departed)
	}
	if count != 1 {
		t.Fatalf("member count of #b = %d, want 1", count)
	}

	if _, ok := r.FindRoom("#a"); ok {
		t.Fatalf("#a should have been reaped after its last member left")
	}
}

func TestJoinRoom_DefaultChannelNeverReaped(t *testing.T) {
	r := New(testConfig())
	now := time.Now()
	r.AddClient("alice", 1, now)

	r.JoinRoom("alice", configs.DefaultChannel)
	r.Leave("alice")

	if _, ok := r.FindRoom(configs.DefaultChannel); !ok {
		t.Fatalf("default channel must never be reaped")
	}
}

func TestJoinRoom_RoomLimitExceeded(t *testing.T) {
	cfg := testConfig()
	cfg.MaxChannels = 1 // only the seeded default channel fits
	r := New(cfg)
	now := time.Now()
	r.AddClient("alice", 1, now)

	if _, _, _, ok := r.JoinRoom("alice", "#new"); ok {
		t.Fatalf("JOIN succeeded despite a full room table")
	}

	// Rollback must leave the client with no channel, since it had none before.
	client, _ := r.FindClient("alice")
	if client.CurrentChannel != "" {
		t.Fatalf("CurrentChannel = %q after a rejected JOIN with no prior channel, want empty", client.CurrentChannel)
	}
}

func TestLeave_RoundTripRestoresMembership(t *testing.T) {
	r := New(testConfig())
	now := time.Now()
	r.AddClient("alice", 1, now)
	r.AddClient("bob", 2, now)

	r.JoinRoom("alice", "#r")
	r.JoinRoom("bob", "#r")

	r.Leave("alice")

	client, _ := r.FindClient("alice")
	if client.CurrentChannel != "" {
		t.Fatalf("CurrentChannel = %q after LEAVE, want empty", client.CurrentChannel)
	}

	room, ok := r.FindRoom("#r")
	if !ok {
		t.Fatalf("#r should still exist: bob remains a member")
	}
	if len(room.Members) != 1 || room.Members[0] != "bob" {
		t.Fatalf("members = %v, want [bob]", room.Members)
	}
}

func TestRemoveClient_IsLeaveThenSlotZero(t *testing.T) {
	r := New(testConfig())
	now := time.Now()
	r.AddClient("alice", 1, now)
	r.JoinRoom("alice", "#r")

	departure := r.RemoveClient("alice")
	if departure == nil || departure.Channel != "#r" {
		t.Fatalf("expected a departure from #r, got %+v", departure)
	}

	if _, ok := r.FindClient("alice"); ok {
		t.Fatalf("client slot should be zeroed after RemoveClient")
	}
	if r.ClientCount() != 0 {
		t.Fatalf("ClientCount = %d, want 0", r.ClientCount())
	}
}

func TestStaleClients(t *testing.T) {
	r := New(testConfig())
	now := time.Now()
	r.AddClient("alice", 1, now.Add(-time.Hour))
	r.AddClient("bob", 2, now)

	stale := r.StaleClients(now, 10*time.Minute)
	if len(stale) != 1 || stale[0] != "alice" {
		t.Fatalf("StaleClients = %v, want [alice]", stale)
	}
}

func TestTouch_Monotonic(t *testing.T) {
	r := New(testConfig())
	now := time.Now()
	r.AddClient("alice", 1, now)

	r.Touch("alice", now.Add(-time.Minute))
	client, _ := r.FindClient("alice")
	if !client.LastActive.Equal(now) {
		t.Fatalf("Touch moved LastActive backwards: %v, want %v", client.LastActive, now)
	}

	later := now.Add(time.Minute)
	r.Touch("alice", later)
	client, _ = r.FindClient("alice")
	if !client.LastActive.Equal(later) {
		t.Fatalf("LastActive = %v, want %v", client.LastActive, later)
	}
}
