/*
The inactivity monitor periodically evicts clients that have not sent a
command within the configured timeout (spec.md §4.6). It resolves Open
Question 2 by collecting victims under a shared lock and then
re-acquiring the exclusive lock once per victim, re-checking staleness
before removal, so no single lock hold is proportional to the client
count.
*/
package chat

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"mqchat/internal/pkg/logx"
)

func (s *Server) monitorLoop() {
	defer s.monitorWG.Done()

	log := logx.Tag(s.logger, "loop", "monitor")
	log.Info().Dur("interval", s.cfg.MonitorInterval).Dur("timeout", s.cfg.InactivityTimeout).
		Msg("Inactivity monitor started.")

	ticker := time.NewTicker(s.cfg.MonitorInterval)
	defer ticker.Stop()

	for {
		select {
		case <-s.stopMonitor:
			log.Info().Msg("Inactivity monitor stopped.")
			return
		case <-ticker.C:
			s.sweep(log)
		}
	}
}

func (s *Server) sweep(log zerolog.Logger) {
	s.registry.RLock()
	victims := s.registry.StaleClients(time.Now(), s.cfg.InactivityTimeout)
	s.registry.RUnlock()

	for _, handle := range victims {
		s.evict(log, handle)
	}
}

// evict re-checks staleness under the exclusive lock before removing a
// single client — the client may have sent a command between the
// snapshot RLock in sweep and this call.
func (s *Server) evict(log zerolog.Logger, handle string) {
	s.registry.Lock()
	client, ok := s.registry.FindClient(handle)
	if !ok || time.Since(client.LastActive) <= s.cfg.InactivityTimeout {
		s.registry.Unlock()
		return
	}
	replyMailbox := client.ReplyMailboxID

	departure := s.registry.RemoveClient(handle)
	s.registry.Unlock()

	s.limiter.Forget(handle)

	log.Info().Str("handle", handle).Msg("Evicted client for inactivity.")

	s.queue.Enqueue(unicastJob(replyMailbox, ServerLabel,
		"You have been disconnected due to inactivity.", uuid.New().String()))

	if departure != nil {
		s.queue.Enqueue(broadcastJob(departure.Channel, ServerLabel,
			fmt.Sprintf("%s has left %s (inactivity).", handle, departure.Channel), uuid.New().String()))
	}
}
