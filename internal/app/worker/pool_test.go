package worker

import (
	"testing"
	"time"

	"mqchat/internal/app/job"
	"mqchat/internal/app/jobqueue"
	"mqchat/internal/app/mailbox"
	"mqchat/internal/app/registry"
	"mqchat/internal/configs"
)

func testRegistry(t *testing.T) *registry.Registry {
	t.Helper()
	return registry.New(&configs.AppConfig{MaxClients: 4, MaxChannels: 2})
}

func TestPool_DeliversUnicast(t *testing.T) {
	reg := testRegistry(t)
	recipient, err := mailbox.CreateAnonymous()
	if err != nil {
		t.Fatalf("CreateAnonymous: %v", err)
	}
	defer recipient.Destroy()

	q := jobqueue.New()
	p := New(q, reg)
	p.Start(1)
	defer func() {
		q.Close()
		p.Wait()
	}()

	q.Enqueue(job.Job{Kind: job.Unicast, TargetMailboxID: recipient.Key, SenderLabel: "SERVER", Text: "hi"})

	reply, err := recipient.ReceiveReply()
	if err != nil {
		t.Fatalf("ReceiveReply: %v", err)
	}
	if reply.Text != "hi" || reply.SenderLabel != "SERVER" {
		t.Fatalf("reply = %+v, want Text=hi SenderLabel=SERVER", reply)
	}
}

func TestPool_BroadcastReachesAllMembers(t *testing.T) {
	reg := testRegistry(t)
	now := time.Now()

	a, err := mailbox.CreateAnonymous()
	if err != nil {
		t.Fatalf("CreateAnonymous: %v", err)
	}
	defer a.Destroy()
	b, err := mailbox.CreateAnonymous()
	if err != nil {
		t.Fatalf("CreateAnonymous: %v", err)
	}
	defer b.Destroy()

	reg.AddClient("alice", a.Key, now)
	reg.AddClient("bob", b.Key, now)
	reg.JoinRoom("alice", "#r")
	reg.JoinRoom("bob", "#r")

	q := jobqueue.New()
	p := New(q, reg)
	p.Start(2)
	defer func() {
		q.Close()
		p.Wait()
	}()

	q.Enqueue(job.Job{Kind: job.Broadcast, Channel: "#r", SenderLabel: "[#r] User alice", Text: "hi"})

	for _, m := range []*mailbox.Mailbox{a, b} {
		reply, err := m.ReceiveReply()
		if err != nil {
			t.Fatalf("ReceiveReply: %v", err)
		}
		if reply.Text != "hi" {
			t.Fatalf("reply.Text = %q, want %q", reply.Text, "hi")
		}
	}
}

func TestPool_BroadcastToMissingRoomIsSilentlyIgnored(t *testing.T) {
	reg := testRegistry(t)

	q := jobqueue.New()
	p := New(q, reg)
	p.Start(1)

	q.Enqueue(job.Job{Kind: job.Broadcast, Channel: "#ghost", SenderLabel: "SERVER", Text: "hi"})

	// Closing the queue right after forces the worker through the
	// missing-room path before it drains; Wait returning confirms no panic
	// or hang occurred.
	q.Close()
	p.Wait()
}
