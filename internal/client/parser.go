/*
The sender's line grammar (spec.md §4.8): JOIN <channel>, MSG <text>,
DM <handle> <text>, WHO <channel>, LEAVE, QUIT. This generalizes
original_source/client.c's sscanf-based "CMD PARAM1 TEXT..." split into a
strings.Cut based parse.
*/
package client

import (
	"fmt"
	"strings"

	"mqchat/internal/app/wire"
)

// ParseLine parses one line of user input into a CommandMessage with Kind
// set and the command-specific fields filled in. The SenderHandle and
// ReplyQID fields are left zero; Client.Send stamps them. An error means
// the line was empty, unknown, or missing a required parameter — the
// caller should print it and re-prompt rather than send anything.
func ParseLine(line string) (wire.CommandMessage, error) {
	line = strings.TrimSpace(line)
	if line == "" {
		return wire.CommandMessage{}, fmt.Errorf("empty line")
	}

	verb, rest, _ := strings.Cut(line, " ")
	rest = strings.TrimSpace(rest)
	verb = strings.ToUpper(verb)

	switch verb {
	case "JOIN":
		if rest == "" {
			return wire.CommandMessage{}, fmt.Errorf("JOIN requires a channel")
		}
		return wire.CommandMessage{Kind: wire.CommandJoin, Channel: rest}, nil

	case "MSG":
		if rest == "" {
			return wire.CommandMessage{}, fmt.Errorf("MSG requires text")
		}
		return wire.CommandMessage{Kind: wire.CommandMsg, Text: rest}, nil

	case "DM":
		target, text, found := strings.Cut(rest, " ")
		text = strings.TrimSpace(text)
		if !found || target == "" || text == "" {
			return wire.CommandMessage{}, fmt.Errorf("DM requires a handle and text")
		}
		return wire.CommandMessage{Kind: wire.CommandDM, Target: target, Text: text}, nil

	case "WHO":
		if rest == "" {
			return wire.CommandMessage{}, fmt.Errorf("WHO requires a channel")
		}
		return wire.CommandMessage{Kind: wire.CommandWho, Channel: rest}, nil

	case "LEAVE":
		return wire.CommandMessage{Kind: wire.CommandLeave}, nil

	case "QUIT":
		return wire.CommandMessage{Kind: wire.CommandQuit}, nil

	default:
		return wire.CommandMessage{}, fmt.Errorf("unknown command %q", verb)
	}
}
