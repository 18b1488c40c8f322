package statusserver

import (
	"net"
	"time"

	"github.com/rs/zerolog"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	"google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"

	"github.com/mitchelldurbincs/tactician/internal/game/events"
	"github.com/mitchelldurbincs/tactician/internal/game/states"
)

// ServiceName is the health service name that tracks the tactical session
const ServiceName = "tactician.Session"

// Options configures the status server
type Options struct {
	EnableReflection bool
	// ShutdownDelay is how long NOT_SERVING is advertised before stopping
	ShutdownDelay time.Duration
}

// Server exposes the standard gRPC health service. The overall status is
// SERVING while the process is up; ServiceName follows the session phase.
type Server struct {
	grpc   *grpc.Server
	health *health.Server
	opts   Options
	logger zerolog.Logger

	bus       events.Bus
	handlerID string
}

func New(opts Options, logger zerolog.Logger) *Server {
	logger = logger.With().Str("component", "status_server").Logger()
	s := &Server{
		grpc: grpc.NewServer(
			grpc.ChainUnaryInterceptor(loggingInterceptor(logger), recoveryInterceptor(logger)),
			grpc.ChainStreamInterceptor(streamLoggingInterceptor(logger), streamRecoveryInterceptor(logger)),
		),
		health: health.NewServer(),
		opts:   opts,
		logger: logger,
	}
	grpc_health_v1.RegisterHealthServer(s.grpc, s.health)
	s.health.SetServingStatus("", grpc_health_v1.HealthCheckResponse_SERVING)
	s.health.SetServingStatus(ServiceName, grpc_health_v1.HealthCheckResponse_NOT_SERVING)

	if opts.EnableReflection {
		reflection.Register(s.grpc)
		logger.Info().Msg("gRPC reflection enabled")
	}
	return s
}

// Serve blocks until the server stops
func (s *Server) Serve(lis net.Listener) error {
	s.logger.Info().Str("address", lis.Addr().String()).Msg("gRPC server listening")
	return s.grpc.Serve(lis)
}

// SetPhase maps a session phase onto the session health status
func (s *Server) SetPhase(phase states.Phase) {
	st := grpc_health_v1.HealthCheckResponse_NOT_SERVING
	if phase.CanTick() {
		st = grpc_health_v1.HealthCheckResponse_SERVING
	}
	s.health.SetServingStatus(ServiceName, st)
	s.logger.Debug().Str("phase", phase.String()).Str("status", st.String()).Msg("Session health updated")
}

// WatchPhases keeps the session status in step with phase change events
// until Shutdown. Call it once, before Serve.
func (s *Server) WatchPhases(bus events.Bus) {
	s.bus = bus
	s.handlerID = bus.SubscribeFunc(events.TypePhaseChanged, func(e events.Event) {
		if pc, ok := e.(*events.PhaseChangedEvent); ok {
			s.SetPhase(states.ParsePhase(pc.To))
		}
	})
}

// Shutdown advertises NOT_SERVING, waits ShutdownDelay, then stops gracefully
func (s *Server) Shutdown() {
	if s.bus != nil {
		s.bus.UnsubscribeFunc(s.handlerID)
	}
	s.health.Shutdown()
	if s.opts.ShutdownDelay > 0 {
		time.Sleep(s.opts.ShutdownDelay)
	}
	s.logger.Info().Msg("Gracefully stopping gRPC server")
	s.grpc.GracefulStop()
}
