/*
One function per command (spec.md §4.4). Each handler takes the control
message, acquires the correct registry lock mode, updates state, and
enqueues zero or more Jobs. None of these ever propagate an error upward:
a failure is either a unicast error Job or a silent drop (spec.md §7).
*/
package chat

import (
	"fmt"
	"time"

	"mqchat/internal/pkg/errs"

	"mqchat/internal/app/wire"
)

// handleRegister finds a free client slot or rejects with "server full".
func (s *Server) handleRegister(cmd wire.CommandMessage) {
	s.registry.Lock()
	_, ok := s.registry.AddClient(cmd.SenderHandle, cmd.ReplyQID, time.Now())
	s.registry.Unlock()

	if !ok {
		s.queue.Enqueue(unicastError(cmd.ReplyQID, errs.NewError(errs.ErrServerFull), cmd.MessageID))
		return
	}

	s.queue.Enqueue(unicastJob(cmd.ReplyQID, ServerLabel,
		fmt.Sprintf("Welcome, %s! You are registered.", cmd.SenderHandle), cmd.MessageID))
}

// handleJoin performs the spec's leave-then-join (Open Question 1): if the
// client was already elsewhere, that departure is broadcast to the old
// channel; joining the new channel is confirmed to the sender and
// broadcast to the new channel. A same-channel re-JOIN is a no-op on
// membership and produces only the confirmation.
func (s *Server) handleJoin(cmd wire.CommandMessage) {
	s.registry.Lock()
	client, known := s.registry.FindClient(cmd.SenderHandle)
	if !known {
		s.registry.Unlock()
		return
	}
	replyMailbox := client.ReplyMailboxID

	memberCount, departure, changed, ok := s.registry.JoinRoom(cmd.SenderHandle, cmd.Channel)
	s.registry.Unlock()

	if !ok {
		s.queue.Enqueue(unicastError(replyMailbox, errs.NewError(errs.ErrRoomLimitExceeded, cmd.Channel), cmd.MessageID))
		return
	}

	if departure != nil {
		s.queue.Enqueue(broadcastJob(departure.Channel, ServerLabel,
			fmt.Sprintf("%s has left (joined %s).", cmd.SenderHandle, cmd.Channel), cmd.MessageID))
	}

	s.queue.Enqueue(unicastJob(replyMailbox, ServerLabel,
		fmt.Sprintf("Joined %s. (%d members)", cmd.Channel, memberCount), cmd.MessageID))

	if changed {
		s.queue.Enqueue(broadcastJob(cmd.Channel, ServerLabel,
			fmt.Sprintf("%s has joined.", cmd.SenderHandle), cmd.MessageID))
	}
}

// handleMsg broadcasts to the sender's current channel, or rejects if the
// sender is not in one.
func (s *Server) handleMsg(cmd wire.CommandMessage) {
	s.registry.RLock()
	client, known := s.registry.FindClient(cmd.SenderHandle)
	var channel string
	var replyMailbox int
	if known {
		channel = client.CurrentChannel
		replyMailbox = client.ReplyMailboxID
	}
	s.registry.RUnlock()

	if !known {
		return
	}

	if channel == "" {
		s.queue.Enqueue(unicastError(replyMailbox, errs.NewError(errs.ErrNotInChannel), cmd.MessageID))
		return
	}

	s.queue.Enqueue(broadcastJob(channel, channelLabel(channel, cmd.SenderHandle), cmd.Text, cmd.MessageID))
}

// handleDM resolves the target handle and delivers a private unicast plus
// a confirmation to the sender, or an error if the target is offline.
func (s *Server) handleDM(cmd wire.CommandMessage) {
	s.registry.RLock()
	sender, known := s.registry.FindClient(cmd.SenderHandle)
	target, targetKnown := s.registry.FindClient(cmd.Target)
	var senderMailbox, targetMailbox int
	if known {
		senderMailbox = sender.ReplyMailboxID
	}
	if targetKnown {
		targetMailbox = target.ReplyMailboxID
	}
	s.registry.RUnlock()

	if !known {
		return
	}

	if !targetKnown {
		s.queue.Enqueue(unicastError(senderMailbox, errs.NewError(errs.ErrUserNotOnline, cmd.Target), cmd.MessageID))
		return
	}

	s.queue.Enqueue(unicastJob(targetMailbox, dmLabel(cmd.SenderHandle), cmd.Text, cmd.MessageID))
	s.queue.Enqueue(unicastJob(senderMailbox, ServerLabel, fmt.Sprintf("DM sent to %s.", cmd.Target), cmd.MessageID))
}

// handleWho formats the member list of the named channel, or an error if
// it does not exist.
func (s *Server) handleWho(cmd wire.CommandMessage) {
	s.registry.RLock()
	sender, known := s.registry.FindClient(cmd.SenderHandle)
	var replyMailbox int
	if known {
		replyMailbox = sender.ReplyMailboxID
	}

	room, roomOK := s.registry.FindRoom(cmd.Channel)
	var members []string
	if roomOK {
		members = room.Snapshot()
	}
	s.registry.RUnlock()

	if !known {
		return
	}

	if !roomOK {
		s.queue.Enqueue(unicastError(replyMailbox, errs.NewError(errs.ErrChannelNotFound, cmd.Channel), cmd.MessageID))
		return
	}

	s.queue.Enqueue(unicastJob(replyMailbox, ServerLabel, formatWho(cmd.Channel, members, s.cfg.MaxText), cmd.MessageID))
}

// handleLeave removes the sender from its current channel, or rejects if
// it has none.
func (s *Server) handleLeave(cmd wire.CommandMessage) {
	s.registry.Lock()
	client, known := s.registry.FindClient(cmd.SenderHandle)
	if !known {
		s.registry.Unlock()
		return
	}
	replyMailbox := client.ReplyMailboxID

	departure := s.registry.Leave(cmd.SenderHandle)
	s.registry.Unlock()

	if departure == nil {
		s.queue.Enqueue(unicastError(replyMailbox, errs.NewError(errs.ErrNotInChannel), cmd.MessageID))
		return
	}

	s.queue.Enqueue(broadcastJob(departure.Channel, ServerLabel,
		fmt.Sprintf("%s has left %s.", cmd.SenderHandle, departure.Channel), cmd.MessageID))
	s.queue.Enqueue(unicastJob(replyMailbox, ServerLabel, fmt.Sprintf("Left %s.", departure.Channel), cmd.MessageID))
}

// handleQuit performs full client removal and sends a farewell. The
// client destroys its own reply mailbox; the server never touches it.
func (s *Server) handleQuit(cmd wire.CommandMessage) {
	s.registry.Lock()
	client, known := s.registry.FindClient(cmd.SenderHandle)
	var replyMailbox int
	if known {
		replyMailbox = client.ReplyMailboxID
	}
	departure := s.registry.RemoveClient(cmd.SenderHandle)
	s.registry.Unlock()

	if !known {
		return
	}

	s.limiter.Forget(cmd.SenderHandle)

	if departure != nil {
		s.queue.Enqueue(broadcastJob(departure.Channel, ServerLabel,
			fmt.Sprintf("%s has left %s.", cmd.SenderHandle, departure.Channel), cmd.MessageID))
	}

	s.queue.Enqueue(unicastJob(replyMailbox, ServerLabel, "Goodbye!", cmd.MessageID))
}
