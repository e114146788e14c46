/*
The router is the single consumer of the control mailbox (spec.md §4.5):
it linearizes command intake so handlers only need to protect the
registry, never also race on the inbound stream. Every command, known or
not, refreshes the sender's last-active timestamp before dispatch — the
throttle check in §11.3 only gates dispatch, never the touch, since
spec.md §4.5 requires the refresh "for every command regardless of kind."
*/
package chat

import (
	"time"

	"mqchat/internal/app/mailbox"
	"mqchat/internal/app/wire"
	"mqchat/internal/pkg/logx"
)

func (s *Server) routerLoop() {
	defer s.routerWG.Done()

	log := logx.Tag(s.logger, "loop", "router")
	log.Info().Msg("Router started.")

	for {
		cmd, err := s.control.ReceiveCommand()
		if err == mailbox.ErrRemoved {
			log.Info().Msg("Router stopped: control mailbox removed.")
			return
		}
		if err != nil {
			log.Warn().Err(err).Msg("Router failed to decode an inbound command; dropping.")
			continue
		}

		cmd = wire.Clamp(cmd, s.cfg.MaxName, s.cfg.MaxText)

		now := time.Now()
		s.registry.Lock()
		s.registry.Touch(cmd.SenderHandle, now)
		s.registry.Unlock()

		if !s.limiter.Allow(cmd.SenderHandle) {
			log.Warn().Str("sender", cmd.SenderHandle).Msg("Sender exceeded command rate; dropping command.")
			continue
		}

		log.Info().Str("kind", cmd.Kind.String()).Str("sender", cmd.SenderHandle).Msg("Dispatching command.")
		s.dispatch(cmd)
	}
}

func (s *Server) dispatch(cmd wire.CommandMessage) {
	switch cmd.Kind {
	case wire.CommandRegister:
		s.handleRegister(cmd)
	case wire.CommandJoin:
		s.handleJoin(cmd)
	case wire.CommandMsg:
		s.handleMsg(cmd)
	case wire.CommandDM:
		s.handleDM(cmd)
	case wire.CommandWho:
		s.handleWho(cmd)
	case wire.CommandLeave:
		s.handleLeave(cmd)
	case wire.CommandQuit:
		s.handleQuit(cmd)
	default:
		s.logger.Warn().Str("sender", cmd.SenderHandle).Msg("Unknown command kind; ignoring.")
	}
}
