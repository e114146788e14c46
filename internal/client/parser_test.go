package client

import (
	"testing"

	"mqchat/internal/app/wire"
)

func TestParseLine(t *testing.T) {
	tests := []struct {
		name    string
		line    string
		want    wire.CommandMessage
		wantErr bool
	}{
		{name: "join", line: "JOIN #general", want: wire.CommandMessage{Kind: wire.CommandJoin, Channel: "#general"}},
		{name: "join lowercase verb", line: "join #general", want: wire.CommandMessage{Kind: wire.CommandJoin, Channel: "#general"}},
		{name: "join missing channel", line: "JOIN", wantErr: true},
		{name: "msg", line: "MSG hello there", want: wire.CommandMessage{Kind: wire.CommandMsg, Text: "hello there"}},
		{name: "msg missing text", line: "MSG", wantErr: true},
		{name: "dm", line: "DM bob ping", want: wire.CommandMessage{Kind: wire.CommandDM, Target: "bob", Text: "ping"}},
		{name: "dm missing text", line: "DM bob", wantErr: true},
		{name: "who", line: "WHO #general", want: wire.CommandMessage{Kind: wire.CommandWho, Channel: "#general"}},
		{name: "leave", line: "LEAVE", want: wire.CommandMessage{Kind: wire.CommandLeave}},
		{name: "quit", line: "QUIT", want: wire.CommandMessage{Kind: wire.CommandQuit}},
		{name: "empty line", line: "   ", wantErr: true},
		{name: "unknown verb", line: "FOO bar", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseLine(tt.line)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("ParseLine(%q) = %+v, want error", tt.line, got)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseLine(%q) unexpected error: %v", tt.line, err)
			}
			if got != tt.want {
				t.Fatalf("ParseLine(%q) = %+v, want %+v", tt.line, got, tt.want)
			}
		})
	}
}
