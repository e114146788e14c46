/*
This file builds the Job records and formatted labels the handlers,
router, and monitor enqueue. The label formats are part of the wire
contract with the client (spec.md §9): the client displays SenderLabel
verbatim.
*/
package chat

import (
	"fmt"
	"strings"

	"mqchat/internal/app/job"
	"mqchat/internal/pkg/errs"
)

// ServerLabel is the sender label for server-originated confirmations,
// welcomes, and error replies.
const ServerLabel = "SERVER"

func channelLabel(channel, handle string) string {
	return fmt.Sprintf("[%s] User %s", channel, handle)
}

func dmLabel(handle string) string {
	return fmt.Sprintf("(DM from %s)", handle)
}

func broadcastJob(channel, label, text, messageID string) job.Job {
	return job.Job{Kind: job.Broadcast, Channel: channel, SenderLabel: label, Text: text, MessageID: messageID}
}

func unicastJob(mailboxID int, label, text, messageID string) job.Job {
	return job.Job{Kind: job.Unicast, TargetMailboxID: mailboxID, SenderLabel: label, Text: text, MessageID: messageID}
}

// unicastError renders a CustomError's user-facing Message verbatim, not
// Error()'s "Error Code N: ..." log form — the client displays this text
// directly (spec.md §8's scenarios give the exact wording expected).
func unicastError(mailboxID int, err *errs.CustomError, messageID string) job.Job {
	return unicastJob(mailboxID, ServerLabel, err.Message, messageID)
}

// formatWho renders the WHO reply, truncating safely to maxText bytes
// (spec.md §4.4). Truncation never splits inside a member handle: it
// drops whole trailing entries until the line fits, then appends an
// ellipsis marker if anything was dropped.
func formatWho(channel string, members []string, maxText int) string {
	line := fmt.Sprintf("Members of %s (%d): %s", channel, len(members), strings.Join(members, ", "))
	if len(line) <= maxText || len(members) == 0 {
		return line
	}

	kept := len(members)
	for kept > 0 {
		candidate := fmt.Sprintf("Members of %s (%d): %s, …", channel, len(members), strings.Join(members[:kept], ", "))
		if len(candidate) <= maxText {
			return candidate
		}
		kept--
	}

	return fmt.Sprintf("Members of %s (%d): …", channel, len(members))
}
