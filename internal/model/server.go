package model

import (
	"context"
	"net"
)

// ServerType distinguishes deployment flavors; some policy rules depend on
// it (admins may not log in to enclaves).
type ServerType string

const (
	ServerTypeDatasite ServerType = "datasite"
	ServerTypeGateway  ServerType = "gateway"
	ServerTypeEnclave  ServerType = "enclave"
)

// SecurityLayer produces a listener, either plain TCP or TLS.
type SecurityLayer interface {
	Listen(protocol, addr string) (net.Listener, error)
}

// Server is a startable transport server with graceful shutdown.
type Server interface {
	Start(securityLayer SecurityLayer) error
	Stop(ctx context.Context) error
	Address() string
}
