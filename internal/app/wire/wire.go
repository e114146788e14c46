/*
Package wire defines the on-the-wire records exchanged over the message
queue primitive (spec.md §3, §6): the COMMAND record a client sends to the
server's control mailbox, and the BROADCAST/unicast REPLY record the
server sends back to a client's private mailbox.
*/
package wire

import (
	"bytes"
	"encoding/gob"
	"fmt"
)

// CommandKind enumerates the command grammar a client may send (spec.md §4.8).
type CommandKind int

const (
	CommandUnknown CommandKind = iota
	CommandRegister
	CommandJoin
	CommandMsg
	CommandDM
	CommandWho
	CommandLeave
	CommandQuit
)

// String renders a CommandKind the way the server logs it.
func (k CommandKind) String() string {
	switch k {
	case CommandRegister:
		return "REGISTER"
	case CommandJoin:
		return "JOIN"
	case CommandMsg:
		return "MSG"
	case CommandDM:
		return "DM"
	case CommandWho:
		return "WHO"
	case CommandLeave:
		return "LEAVE"
	case CommandQuit:
		return "QUIT"
	default:
		return "UNKNOWN"
	}
}

// CommandMessage is the client -> server COMMAND record (spec.md §6).
// MessageID is stamped by the client for every outbound command (§11.2)
// so a delivery-drop warning logged far downstream in the worker pool can
// be correlated back to the command that produced it.
type CommandMessage struct {
	Kind         CommandKind
	SenderHandle string
	ReplyQID     int
	Channel      string
	Target       string
	Text         string
	MessageID    string
}

// ReplyMessage is the server -> client BROADCAST record (spec.md §6).
// SenderLabel is part of the wire contract with the client: the client
// displays it verbatim (spec.md §9). MessageID carries through the
// originating CommandMessage's id for eviction/monitor-originated
// replies it is freshly minted instead (§11.2).
type ReplyMessage struct {
	SenderLabel string
	Text        string
	MessageID   string
}

// Clamp truncates the bounded fields of cmd to the wire contract's
// limits (spec.md lines 159-160: channel/target/sender_handle ≤ maxName
// bytes, text ≤ maxText bytes), the same fixed-width behavior
// original_source/client.c gets for free from its `char[]` fields and
// `sscanf("%19s %31s %[^\n]", ...)` parse. Called once at command intake
// so no downstream component — registry, handler, or broadcast — ever
// sees an oversized field.
func Clamp(cmd CommandMessage, maxName, maxText int) CommandMessage {
	cmd.SenderHandle = clampString(cmd.SenderHandle, maxName)
	cmd.Channel = clampString(cmd.Channel, maxName)
	cmd.Target = clampString(cmd.Target, maxName)
	cmd.Text = clampString(cmd.Text, maxText)
	return cmd
}

func clampString(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max]
}

// Encode gob-encodes v for transmission as a mailbox frame payload.
func Encode(v any) ([]byte, error) {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(v); err != nil {
		return nil, fmt.Errorf("wire: encode: %w", err)
	}
	return buf.Bytes(), nil
}

// DecodeCommand decodes a CommandMessage from a mailbox frame payload.
func DecodeCommand(payload []byte) (CommandMessage, error) {
	var cmd CommandMessage
	if err := gob.NewDecoder(bytes.NewReader(payload)).Decode(&cmd); err != nil {
		return CommandMessage{}, fmt.Errorf("wire: decode command: %w", err)
	}
	return cmd, nil
}

// DecodeReply decodes a ReplyMessage from a mailbox frame payload.
func DecodeReply(payload []byte) (ReplyMessage, error) {
	var reply ReplyMessage
	if err := gob.NewDecoder(bytes.NewReader(payload)).Decode(&reply); err != nil {
		return ReplyMessage{}, fmt.Errorf("wire: decode reply: %w", err)
	}
	return reply, nil
}
