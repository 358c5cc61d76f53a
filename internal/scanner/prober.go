package scanner

import (
	"context"
	"net"
	"strconv"
	"time"

	"github.com/robgonnella/portsweep/internal/logger"
	"github.com/robgonnella/portsweep/internal/target"
)

// TCPScanner implements Scanner using full tcp connections
type TCPScanner struct {
	dialer   Dialer
	resolver target.Resolver
	listener chan<- PortResult
	log      logger.Logger
}

// Option configures a TCPScanner
type Option func(s *TCPScanner)

// WithDialer replaces the default *net.Dialer
func WithDialer(d Dialer) Option {
	return func(s *TCPScanner) {
		s.dialer = d
	}
}

// WithResolver replaces net.DefaultResolver
func WithResolver(r target.Resolver) Option {
	return func(s *TCPScanner) {
		s.resolver = r
	}
}

// WithListener registers a channel that receives every result in the order
// results complete. The channel must be drained by the caller.
func WithListener(listener chan<- PortResult) Option {
	return func(s *TCPScanner) {
		s.listener = listener
	}
}

// NewTCPScanner returns a new instance of TCPScanner
func NewTCPScanner(options ...Option) *TCPScanner {
	s := &TCPScanner{
		dialer:   &net.Dialer{},
		resolver: net.DefaultResolver,
		log:      logger.Scoped("scanner"),
	}

	for _, o := range options {
		o(s)
	}

	return s
}

// Probe attempts a tcp connection to address:port within timeout. Failure to
// connect for any reason is reported as StatusClosed, never as an error.
func (s *TCPScanner) Probe(ctx context.Context, address string, port int, timeout time.Duration) PortResult {
	return s.probe(ctx, address, port, timeout, false)
}

// the connection is handed to readBanner when grab is set so the port is
// only connected once
func (s *TCPScanner) probe(
	ctx context.Context,
	address string,
	port int,
	timeout time.Duration,
	grab bool,
) PortResult {
	result := PortResult{
		Port:   port,
		Status: StatusClosed,
	}

	conn, err := s.dial(ctx, address, port, timeout)

	if err != nil {
		s.log.Debug().Err(err).Str("address", address).Int("port", port).Msg("port closed")
		return result
	}

	defer conn.Close()

	result.Status = StatusOpen

	if grab {
		result.Banner = s.readBanner(conn, port, timeout)
	}

	return result
}

func (s *TCPScanner) dial(
	ctx context.Context,
	address string,
	port int,
	timeout time.Duration,
) (net.Conn, error) {
	dialCtx, cancel := context.WithTimeout(ctx, timeout)

	defer cancel()

	return s.dialer.DialContext(
		dialCtx,
		"tcp",
		net.JoinHostPort(address, strconv.Itoa(port)),
	)
}
