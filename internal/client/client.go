/*
Package client implements the two-goroutine terminal client described in
spec.md §4.8: a sender reads stdin and pushes CommandMessages to the
server's control mailbox, and a receiver blocks on the client's own
private mailbox and prints deliveries with a redrawn prompt. This
generalizes original_source/client.c's sender_thread/receiver_thread
split onto goroutines and channels instead of pthreads and signals.
*/
package client

import (
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"mqchat/internal/app/mailbox"
	"mqchat/internal/app/wire"
	"mqchat/internal/pkg/logx"
)

// Client owns the two mailboxes and the goroutines that drive them.
type Client struct {
	Handle         string
	controlQueueID int
	reply          *mailbox.Mailbox

	logger zerolog.Logger

	quitOnce sync.Once
	wg       sync.WaitGroup
}

// New creates a private reply mailbox for handle and records the server's
// control mailbox key. It does not contact the control mailbox; if that
// mailbox does not exist (the server creates it at startup, spec.md
// §4.7), the first send, normally Register, returns the error.
func New(handle string, controlQueueID int) (*Client, error) {
	reply, err := mailbox.CreateAnonymous()
	if err != nil {
		return nil, fmt.Errorf("client: create reply mailbox: %w", err)
	}

	return &Client{
		Handle:         handle,
		controlQueueID: controlQueueID,
		reply:          reply,
		logger:         logx.Tag(*logx.Logger(), "component", "client", "handle", handle),
	}, nil
}

// ReplyMailboxID is the id the server must be told to unicast replies to.
func (c *Client) ReplyMailboxID() int { return c.reply.Key }

// Register sends the initial REGISTER command (spec.md §4.4).
func (c *Client) Register() error {
	return c.send(wire.CommandMessage{
		Kind:         wire.CommandRegister,
		SenderHandle: c.Handle,
		ReplyQID:     c.reply.Key,
	})
}

// send forwards one command to the server's control mailbox, blocking
// until the mailbox has accepted it into its backlog (spec.md §4.8: the
// sender thread itself never buffers — a full control mailbox is the
// server's own backpressure signal). Every outbound command is stamped with a fresh
// MessageID (§11.2) so a delivery-drop warning logged far downstream can
// be correlated back to this command.
func (c *Client) send(cmd wire.CommandMessage) error {
	if cmd.MessageID == "" {
		cmd.MessageID = uuid.New().String()
	}
	err := mailbox.SendCommand(c.controlQueueID, mailbox.Blocking, cmd)
	if err == mailbox.ErrRemoved {
		return fmt.Errorf("client: server control mailbox is gone: %w", err)
	}
	return err
}

// Run starts the receiver loop and blocks until the reply mailbox is
// destroyed, which Close does. onReply is invoked for every delivered
// ReplyMessage. The server never destroys a client's reply mailbox: an
// inactivity eviction notice reaches onReply like any other reply and
// does not stop the loop or trigger Close.
func (c *Client) Run(onReply func(wire.ReplyMessage)) {
	c.wg.Add(1)
	defer c.wg.Done()

	for {
		reply, err := c.reply.ReceiveReply()
		if err == mailbox.ErrRemoved {
			c.logger.Info().Msg("Reply mailbox removed; receiver stopping.")
			return
		}
		if err != nil {
			c.logger.Warn().Err(err).Msg("Failed to decode a reply; dropping.")
			continue
		}
		onReply(reply)
	}
}

// Wait blocks until the receiver goroutine started by Run has returned.
func (c *Client) Wait() {
	c.wg.Wait()
}

// Close sends QUIT (best-effort) and destroys the private reply mailbox.
// It is idempotent and safe to call from a signal handler path as well as
// the normal QUIT command path (spec.md §4.8's cleanup idiom).
func (c *Client) Close() {
	c.quitOnce.Do(func() {
		_ = c.send(wire.CommandMessage{Kind: wire.CommandQuit, SenderHandle: c.Handle, ReplyQID: c.reply.Key})
		if err := c.reply.Destroy(); err != nil {
			c.logger.Warn().Err(err).Msg("Failed to destroy private reply mailbox.")
		}
	})
}

// Send forwards a parsed command, stamping the sender handle and reply
// mailbox id so the caller only needs to fill in command-specific fields.
func (c *Client) Send(cmd wire.CommandMessage) error {
	cmd.SenderHandle = c.Handle
	cmd.ReplyQID = c.reply.Key
	return c.send(cmd)
}
