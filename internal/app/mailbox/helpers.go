package mailbox

import "mqchat/internal/app/wire"

// SendCommand encodes cmd and transmits it as a TagCommand frame to the
// mailbox identified by key.
func SendCommand(key int, mode SendMode, cmd wire.CommandMessage) error {
	payload, err := wire.Encode(cmd)
	if err != nil {
		return err
	}
	return Send(key, TagCommand, mode, payload)
}

// SendReply encodes reply and transmits it as a TagBroadcast frame to the
// mailbox identified by key.
func SendReply(key int, mode SendMode, reply wire.ReplyMessage) error {
	payload, err := wire.Encode(reply)
	if err != nil {
		return err
	}
	return Send(key, TagBroadcast, mode, payload)
}

// ReceiveCommand blocks for the next TagCommand frame and decodes it.
func (m *Mailbox) ReceiveCommand() (wire.CommandMessage, error) {
	payload, err := m.Receive(TagCommand)
	if err != nil {
		return wire.CommandMessage{}, err
	}
	return wire.DecodeCommand(payload)
}

// ReceiveReply blocks for the next TagBroadcast frame and decodes it.
func (m *Mailbox) ReceiveReply() (wire.ReplyMessage, error) {
	payload, err := m.Receive(TagBroadcast)
	if err != nil {
		return wire.ReplyMessage{}, err
	}
	return wire.DecodeReply(payload)
}
