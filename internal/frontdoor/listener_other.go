//go:build !linux

package frontdoor

import (
	"context"
	"net"
)

// Listen opens a plain TCP listener; SO_REUSEADDR tuning is Linux-specific.
func Listen(addr string) (net.Listener, error) {
	var lc net.ListenConfig
	return lc.Listen(context.Background(), "tcp", addr)
}
