// Package netutil selects the HTTP listener address.
package netutil

import (
	"fmt"
	"net"
)

// BindPlan describes where the HTTP server may listen: a preferred address
// and, when AutoFallback is set, a list of fallback candidates tried in
// order.
type BindPlan struct {
	Preferred    string
	Fallbacks    []string
	AutoFallback bool
}

// Select returns the first address in the plan that can be listened on.
func (p BindPlan) Select() (string, error) {
	if p.Preferred != "" {
		if listenable(p.Preferred) {
			return p.Preferred, nil
		}
		if !p.AutoFallback {
			return "", fmt.Errorf("bind address in use: %s", p.Preferred)
		}
	}
	for _, addr := range p.Fallbacks {
		if listenable(addr) {
			return addr, nil
		}
	}
	return "", fmt.Errorf("no usable bind address (preferred %q, %d fallbacks)", p.Preferred, len(p.Fallbacks))
}

// listenable probes addr by opening and immediately closing a listener.
func listenable(addr string) bool {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return false
	}
	ln.Close()
	return true
}
