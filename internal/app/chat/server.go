/*
Package chat wires together the registry, job queue, worker pool, router,
and monitor into the running server (spec.md §2, §4.5–§4.7). Bring-up and
shutdown generalize the teacher's Manager
(hzchat/internal/app/chat/manager.go): a struct owning the shared state,
a background goroutine with its own stop signal, and a Shutdown method
that tears both down in order and waits for completion.
*/
package chat

import (
	"sync"

	"github.com/rs/zerolog"

	"mqchat/internal/app/jobqueue"
	"mqchat/internal/app/mailbox"
	"mqchat/internal/app/registry"
	"mqchat/internal/app/worker"
	"mqchat/internal/configs"
	"mqchat/internal/pkg/logx"
)

// Server owns every server-side component and its lifecycle.
type Server struct {
	cfg *configs.AppConfig

	registry *registry.Registry
	queue    *jobqueue.Queue
	pool     *worker.Pool
	control  *mailbox.Mailbox
	limiter  *senderLimiter

	stopMonitor chan struct{}
	monitorWG   sync.WaitGroup
	routerWG    sync.WaitGroup

	logger zerolog.Logger
}

// NewServer brings up the control mailbox and every background
// component, but does not start serving until Run is called.
func NewServer(cfg *configs.AppConfig) (*Server, error) {
	control, err := mailbox.Create(cfg.ControlQueueKey)
	if err != nil {
		return nil, err
	}

	s := &Server{
		cfg:         cfg,
		registry:    registry.New(cfg),
		queue:       jobqueue.New(),
		control:     control,
		limiter:     newSenderLimiter(),
		stopMonitor: make(chan struct{}),
		logger:      logx.Tag(*logx.Logger(), "component", "server"),
	}
	s.pool = worker.New(s.queue, s.registry)

	return s, nil
}

// Run starts the worker pool, router, and monitor. It returns
// immediately; call Shutdown to stop the server.
func (s *Server) Run() {
	s.pool.Start(s.cfg.BroadcasterCount)

	s.routerWG.Add(1)
	go s.routerLoop()

	s.monitorWG.Add(1)
	go s.monitorLoop()

	s.logger.Info().
		Int("control_queue_key", s.cfg.ControlQueueKey).
		Int("broadcaster_count", s.cfg.BroadcasterCount).
		Int("max_clients", s.cfg.MaxClients).
		Int("max_channels", s.cfg.MaxChannels).
		Dur("inactivity_timeout", s.cfg.InactivityTimeout).
		Str("default_channel", configs.DefaultChannel).
		Msg("mqchat server started.")
}

// Shutdown destroys the control mailbox — which unblocks the router's
// receive with ErrRemoved (spec.md §4.7) — then stops the monitor and
// drains the worker pool, in that order, waiting for each to finish.
func (s *Server) Shutdown() {
	s.logger.Info().Msg("Shutting down: destroying control mailbox.")
	_ = s.control.Destroy()
	s.routerWG.Wait()

	close(s.stopMonitor)
	s.monitorWG.Wait()

	s.queue.Close()
	s.pool.Wait()

	s.logger.Info().Msg("Server shutdown complete.")
}
