// Package ipchecker restricts handlers to clients from a trusted subnet.
package ipchecker

import (
	"fmt"
	"net"
	"net/http"

	"github.com/patric-chuzhbe/atomicnotes/internal/logger"
)

// IPChecker validates whether a client belongs to a trusted subnet.
type IPChecker struct {
	trustedSubnet *net.IPNet
}

// New creates a new IPChecker for trustedSubnet in CIDR notation
// (e.g., "192.168.1.0/24"). An empty trustedSubnet trusts nobody.
func New(trustedSubnet string) (*IPChecker, error) {
	if trustedSubnet == "" {
		return &IPChecker{
			trustedSubnet: nil,
		}, nil
	}
	_, allowedNet, err := net.ParseCIDR(trustedSubnet)
	if err != nil {
		return nil, fmt.Errorf("in internal/ipchecker/ipchecker.go/New(): error while `net.ParseCIDR()` calling: %w", err)
	}
	return &IPChecker{
		trustedSubnet: allowedNet,
	}, nil
}

// Check verifies whether the given IP address belongs to the configured
// trusted subnet. If no trusted subnet is configured, it returns false.
func (checker *IPChecker) Check(clientIP net.IP) bool {
	return checker.trustedSubnet != nil && clientIP != nil && checker.trustedSubnet.Contains(clientIP)
}

// GetClientIP returns the address of the peer that sent the request.
// Forwarding headers are ignored, they are set by the client.
func (checker *IPChecker) GetClientIP(request *http.Request) (net.IP, error) {
	host, _, err := net.SplitHostPort(request.RemoteAddr)
	if err != nil {
		host = request.RemoteAddr
	}
	ip := net.ParseIP(host)
	if ip == nil {
		return nil, fmt.Errorf("in internal/ipchecker/ipchecker.go/GetClientIP(): cannot parse remote address %q", request.RemoteAddr)
	}
	return ip, nil
}

// Middleware answers 403 to every client outside the trusted subnet.
func (checker *IPChecker) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(response http.ResponseWriter, request *http.Request) {
		clientIP, err := checker.GetClientIP(request)
		if err != nil || !checker.Check(clientIP) {
			logger.Log.Debugw("rejected a request from outside the trusted subnet",
				"remote_addr", request.RemoteAddr,
				"uri", request.RequestURI,
			)
			http.Error(response, "Forbidden", http.StatusForbidden)
			return
		}

		next.ServeHTTP(response, request)
	})
}
