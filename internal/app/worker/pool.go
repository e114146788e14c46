/*
Package worker implements the fixed-size fan-out pool (spec.md §4.3):
each worker dequeues one Job at a time and performs non-blocking delivery
to reply mailboxes, isolating a slow or dead client from every other
recipient. The delivery discipline — snapshot membership under a shared
lock, release the lock, then send without holding it — generalizes the
teacher's broadcast loop in hzchat/internal/app/chat/room.go, which reads
`r.clients` under RLock and uses `select default` to drop into a stale
client's full send channel rather than block the whole Room.
*/
package worker

import (
	"sync"

	"github.com/rs/zerolog"

	"mqchat/internal/app/job"
	"mqchat/internal/app/jobqueue"
	"mqchat/internal/app/mailbox"
	"mqchat/internal/app/registry"
	"mqchat/internal/app/wire"
	"mqchat/internal/pkg/logx"
)

// Pool is BROADCASTER_COUNT workers draining a shared Queue.
type Pool struct {
	queue    *jobqueue.Queue
	registry *registry.Registry
	logger   zerolog.Logger
	wg       sync.WaitGroup
}

// New constructs a Pool bound to queue and reg.
func New(queue *jobqueue.Queue, reg *registry.Registry) *Pool {
	return &Pool{
		queue:    queue,
		registry: reg,
		logger:   logx.Tag(*logx.Logger(), "component", "worker"),
	}
}

// Start launches n worker goroutines. Call Wait to block until they exit
// (after the queue is closed during shutdown).
func (p *Pool) Start(n int) {
	for i := 0; i < n; i++ {
		id := i
		p.wg.Add(1)
		go p.run(id)
	}
}

// Wait blocks until every worker goroutine has returned.
func (p *Pool) Wait() {
	p.wg.Wait()
}

func (p *Pool) run(id int) {
	defer p.wg.Done()

	log := logx.Tag(p.logger, "worker_id", id)
	log.Info().Msg("Worker started.")

	for {
		j, ok := p.queue.Dequeue()
		if !ok {
			log.Info().Msg("Worker stopped: queue closed.")
			return
		}

		switch j.Kind {
		case job.Broadcast:
			p.deliverBroadcast(log, j)
		case job.Unicast:
			p.deliverUnicast(log, j)
		}
	}
}

// deliverBroadcast snapshots the named room's membership under a shared
// registry lock, then delivers to every member outside the lock (spec.md
// §4.3, §9 "Fan-out under lock"). A room that no longer exists by the
// time this job is processed is silently ignored — it was valid when
// enqueued, membership is inherently racy across jobs, and spec.md §4.3
// only promises a consistent snapshot per broadcast, not durability of
// the room across the queue's backlog.
func (p *Pool) deliverBroadcast(log zerolog.Logger, j job.Job) {
	p.registry.RLock()
	room, ok := p.registry.FindRoom(j.Channel)
	var members []string
	if ok {
		members = room.Snapshot()
	}
	p.registry.RUnlock()

	if !ok {
		return
	}

	for _, handle := range members {
		p.registry.RLock()
		client, present := p.registry.FindClient(handle)
		var mailboxID int
		if present {
			mailboxID = client.ReplyMailboxID
		}
		p.registry.RUnlock()

		if !present {
			continue
		}

		p.send(log, mailboxID, j.SenderLabel, j.Text, j.MessageID)
	}
}

// deliverUnicast sends directly to the job's target mailbox.
func (p *Pool) deliverUnicast(log zerolog.Logger, j job.Job) {
	p.send(log, j.TargetMailboxID, j.SenderLabel, j.Text, j.MessageID)
}

// send performs one non-blocking delivery, applying spec.md §4.3's
// drop discipline: a full mailbox logs a warning and is skipped; a
// destroyed mailbox is silently absorbed; any other error is logged.
// messageID is logged on the full-mailbox and unexpected-error branches so
// it can be correlated
// back to the CommandMessage that produced this delivery (§11.2).
func (p *Pool) send(log zerolog.Logger, mailboxID int, senderLabel, text, messageID string) {
	reply := wire.ReplyMessage{SenderLabel: senderLabel, Text: text, MessageID: messageID}

	err := mailbox.SendReply(mailboxID, mailbox.NonBlocking, reply)
	switch err {
	case nil:
		return
	case mailbox.ErrWouldBlock:
		log.Warn().Int("reply_mailbox_id", mailboxID).Str("message_id", messageID).
			Msg("Recipient mailbox full, dropping message.")
	case mailbox.ErrRemoved:
		// Receiver gone; absorbed silently per spec.md §7.
	default:
		log.Error().Err(err).Int("reply_mailbox_id", mailboxID).Str("message_id", messageID).
			Msg("Unexpected delivery error.")
	}
}
