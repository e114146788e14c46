package mailbox

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"encoding/gob"
	"fmt"
	"io"
)

// maxFrameSize bounds a single frame, guarding against a corrupt or
// malicious length prefix driving an unbounded allocation.
const maxFrameSize = 1 << 20

// writeFrame encodes mode and fr as a length-prefixed gob blob and writes it to w.
func writeFrame(w io.Writer, mode SendMode, fr frame) error {
	var body bytes.Buffer
	if err := gob.NewEncoder(&body).Encode(fr); err != nil {
		return fmt.Errorf("encode frame: %w", err)
	}

	header := make([]byte, 5)
	header[0] = byte(mode)
	binary.BigEndian.PutUint32(header[1:], uint32(body.Len()))

	if _, err := w.Write(header); err != nil {
		return err
	}
	_, err := w.Write(body.Bytes())
	return err
}

// readFrame reads one length-prefixed gob-encoded frame from r.
func readFrame(r *bufio.Reader) (SendMode, frame, error) {
	header := make([]byte, 5)
	if _, err := io.ReadFull(r, header); err != nil {
		return 0, frame{}, err
	}

	mode := SendMode(header[0])
	n := binary.BigEndian.Uint32(header[1:])
	if n > maxFrameSize {
		return 0, frame{}, fmt.Errorf("frame of %d bytes exceeds max %d", n, maxFrameSize)
	}

	body := make([]byte, n)
	if _, err := io.ReadFull(r, body); err != nil {
		return 0, frame{}, err
	}

	var fr frame
	if err := gob.NewDecoder(bytes.NewReader(body)).Decode(&fr); err != nil {
		return 0, frame{}, fmt.Errorf("decode frame: %w", err)
	}

	return mode, fr, nil
}
