package scanner

import (
	"context"
	"net"
)

//go:generate mockgen -destination=../mock/scanner/mock_scanner.go -package=mock_scanner . Dialer,Scanner

// Dialer opens network connections. *net.Dialer implements it.
type Dialer interface {
	DialContext(ctx context.Context, network, address string) (net.Conn, error)
}

// Scanner interface for probing every port of a request against one host
type Scanner interface {
	Scan(ctx context.Context, req Request) (*Report, error)
}
