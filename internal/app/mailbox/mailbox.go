/*
Package mailbox realizes the on-host message-queue primitive the rest of
this module treats as an external collaborator (spec.md §6): create or
attach a queue by a well-known or anonymous integer key, send to it in a
blocking or non-blocking mode, receive from it filtered by a message-type
tag, and destroy it explicitly to unblock anyone waiting on it.

A real System V message queue is a kernel object reachable from any
process on the host by its key. This module has no portable cgo-free way
to call msgget/msgsnd/msgrcv, so the primitive is realized with a Unix
domain stream socket bound to a well-known path derived from the key
(os.TempDir()/mqchat/<key>.sock) — still on-host, still reachable by key,
still explicitly destroyable. Framing follows the pack's own
message-queue broker (see DESIGN.md): a 5-byte header (one send-mode
byte, then a 4-byte big-endian length) followed by a gob-encoded frame,
one frame per logical send.
*/
package mailbox

import (
	"bufio"
	"encoding/binary"
	"encoding/gob"
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"path/filepath"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"mqchat/internal/pkg/logx"
)

// Tag is the message-type discriminator carried on every frame (spec.md §6).
type Tag int32

const (
	// TagCommand marks a client -> server COMMAND record.
	TagCommand Tag = 1

	// TagBroadcast marks a server -> client BROADCAST record.
	TagBroadcast Tag = 2
)

// SendMode selects the blocking behavior of Send.
type SendMode int

const (
	// Blocking waits until the mailbox has room for the frame.
	Blocking SendMode = iota

	// NonBlocking returns ErrWouldBlock immediately if the mailbox backlog is full.
	NonBlocking
)

// ErrWouldBlock is returned by a NonBlocking Send against a full mailbox.
var ErrWouldBlock = errors.New("mailbox: send would block")

// ErrRemoved is returned by Send or Receive once the target mailbox has been destroyed.
var ErrRemoved = errors.New("mailbox: queue removed")

// backlogDepth is the capacity of a mailbox's internal queue, standing in
// for the kernel's msgmnb byte budget.
const backlogDepth = 256

// ackOK, ackWouldBlock, and ackRemoved are the single-byte replies a sender
// reads back after transmitting a frame, carrying the result of the
// corresponding msgsnd-equivalent call.
const (
	ackOK byte = iota
	ackWouldBlock
	ackRemoved
)

// frame is the wire envelope: a tag plus the opaque gob-encoded record it carries.
type frame struct {
	Tag     Tag
	Payload []byte
}

// Mailbox is one end of the on-host queue primitive: the side that owns
// the listener and consumes frames via Receive.
type Mailbox struct {
	Key  int
	path string

	listener net.Listener

	mu      sync.Mutex
	pending map[Tag][]frame // frames received out of the tag the last Receive wanted
	incoming chan frame

	closeOnce sync.Once
	done      chan struct{}

	logger zerolog.Logger
}

// dir returns the well-known directory mailboxes are rendezvoused under.
func dir() string {
	return filepath.Join(os.TempDir(), "mqchat")
}

func socketPath(key int) string {
	return filepath.Join(dir(), fmt.Sprintf("%d.sock", key))
}

// Create binds and starts listening on the mailbox identified by key,
// creating the rendezvous directory if necessary. A pre-existing stale
// socket file for the same key is removed first (mirrors attaching to a
// fresh queue after a prior owner died without cleaning up).
func Create(key int) (*Mailbox, error) {
	if err := os.MkdirAll(dir(), 0o755); err != nil {
		return nil, fmt.Errorf("mailbox: create rendezvous dir: %w", err)
	}

	path := socketPath(key)
	_ = os.Remove(path)

	ln, err := net.Listen("unix", path)
	if err != nil {
		return nil, fmt.Errorf("mailbox: listen on key %d: %w", key, err)
	}

	m := &Mailbox{
		Key:      key,
		path:     path,
		listener: ln,
		pending:  make(map[Tag][]frame),
		incoming: make(chan frame, backlogDepth),
		done:     make(chan struct{}),
		logger:   logx.Tag(*logx.Logger(), "component", "mailbox", "key", key),
	}

	go m.acceptLoop()

	m.logger.Info().Msg("Mailbox created.")
	return m, nil
}

// CreateAnonymous creates a mailbox under a generated key, the equivalent
// of attaching a private queue with IPC_PRIVATE: the caller does not pick
// the key, only receives it back for embedding in outbound COMMAND records
// (spec.md §3, reply_qid).
func CreateAnonymous() (*Mailbox, error) {
	key := anonymousKey()
	for i := 0; i < 5; i++ {
		m, err := Create(key)
		if err == nil {
			return m, nil
		}
		if !os.IsExist(err) {
			return nil, err
		}
		key = anonymousKey()
	}
	return nil, fmt.Errorf("mailbox: could not allocate an anonymous key")
}

// anonymousKey derives a small positive int key from a fresh UUID, keeping
// the key space disjoint in practice from hand-picked well-known keys.
func anonymousKey() int {
	id := uuid.New()
	b := id[:]
	v := int32(binary.BigEndian.Uint32(b[:4])) &^ (1 << 31)
	if v == 0 {
		v = 1
	}
	return int(v)
}

// acceptLoop accepts writer connections and drains frames from each into
// the mailbox's incoming channel, honoring each frame's requested send mode.
func (m *Mailbox) acceptLoop() {
	for {
		conn, err := m.listener.Accept()
		if err != nil {
			select {
			case <-m.done:
				return
			default:
				m.logger.Warn().Err(err).Msg("Mailbox accept error.")
				return
			}
		}
		go m.serveConn(conn)
	}
}

func (m *Mailbox) serveConn(conn net.Conn) {
	defer conn.Close()

	r := bufio.NewReader(conn)
	for {
		mode, fr, err := readFrame(r)
		if err != nil {
			if err != io.EOF {
				m.logger.Warn().Err(err).Msg("Mailbox frame read error.")
			}
			return
		}

		ack := m.deliver(mode, fr)
		if _, err := conn.Write([]byte{ack}); err != nil {
			return
		}
	}
}

// deliver places fr onto the mailbox's internal queue per the requested
// send mode, returning the ack byte to report back to the sender.
func (m *Mailbox) deliver(mode SendMode, fr frame) byte {
	select {
	case <-m.done:
		return ackRemoved
	default:
	}

	if mode == NonBlocking {
		select {
		case m.incoming <- fr:
			return ackOK
		default:
			return ackWouldBlock
		}
	}

	select {
	case m.incoming <- fr:
		return ackOK
	case <-m.done:
		return ackRemoved
	}
}

// Receive blocks until a frame tagged want arrives, or the mailbox is
// destroyed. Frames of a different tag are held for a future Receive
// call asking for that tag, rather than dropped.
func (m *Mailbox) Receive(want Tag) ([]byte, error) {
	m.mu.Lock()
	if queued := m.pending[want]; len(queued) > 0 {
		fr := queued[0]
		m.pending[want] = queued[1:]
		m.mu.Unlock()
		return fr.Payload, nil
	}
	m.mu.Unlock()

	for {
		select {
		case fr := <-m.incoming:
			if fr.Tag == want {
				return fr.Payload, nil
			}
			m.mu.Lock()
			m.pending[fr.Tag] = append(m.pending[fr.Tag], fr)
			m.mu.Unlock()
		case <-m.done:
			return nil, ErrRemoved
		}
	}
}

// Destroy closes the listener, removes the rendezvous socket file, and
// unblocks every Receive and in-flight Send against this mailbox with
// ErrRemoved. It is idempotent.
func (m *Mailbox) Destroy() error {
	var err error
	m.closeOnce.Do(func() {
		close(m.done)
		err = m.listener.Close()
		_ = os.Remove(m.path)
		m.logger.Info().Msg("Mailbox destroyed.")
	})
	return err
}

// Send dials the mailbox identified by key and transmits one tagged
// record, applying the requested blocking mode. It is a standalone
// function rather than a Mailbox method because the sender need not, and
// typically does not, own the target mailbox.
func Send(key int, tag Tag, mode SendMode, payload []byte) error {
	conn, err := net.Dial("unix", socketPath(key))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) || errors.Is(err, net.ErrClosed) {
			return ErrRemoved
		}
		return fmt.Errorf("mailbox: dial key %d: %w", key, err)
	}
	defer conn.Close()

	if err := writeFrame(conn, mode, frame{Tag: tag, Payload: payload}); err != nil {
		return fmt.Errorf("mailbox: write frame: %w", err)
	}

	ack := make([]byte, 1)
	if _, err := io.ReadFull(conn, ack); err != nil {
		return ErrRemoved
	}

	switch ack[0] {
	case ackOK:
		return nil
	case ackWouldBlock:
		return ErrWouldBlock
	case ackRemoved:
		return ErrRemoved
	default:
		return fmt.Errorf("mailbox: unrecognized ack byte %d", ack[0])
	}
}

func init() {
	gob.Register(frame{})
}
