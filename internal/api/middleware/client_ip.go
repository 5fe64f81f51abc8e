package middleware

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"strings"

	apiContext "biolink/internal/api/context"
)

// ProxyTrust resolves the client address of a request. X-Forwarded-For is read only
// when the connection comes from a trusted proxy.
type ProxyTrust struct {
	nets []*net.IPNet
}

// NewProxyTrust accepts bare IPs and CIDRs.
func NewProxyTrust(proxies []string) (*ProxyTrust, error) {
	p := &ProxyTrust{}
	for _, entry := range proxies {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		if !strings.Contains(entry, "/") {
			ip := net.ParseIP(entry)
			if ip == nil {
				return nil, fmt.Errorf("invalid trusted proxy %q", entry)
			}
			bits := 128
			if ip.To4() != nil {
				ip = ip.To4()
				bits = 32
			}
			p.nets = append(p.nets, &net.IPNet{IP: ip, Mask: net.CIDRMask(bits, bits)})
			continue
		}
		_, n, err := net.ParseCIDR(entry)
		if err != nil {
			return nil, fmt.Errorf("invalid trusted proxy %q: %w", entry, err)
		}
		p.nets = append(p.nets, n)
	}
	return p, nil
}

func (p *ProxyTrust) trusted(addr string) bool {
	ip := net.ParseIP(addr)
	if ip == nil {
		return false
	}
	for _, n := range p.nets {
		if n.Contains(ip) {
			return true
		}
	}
	return false
}

// Resolve walks X-Forwarded-For from the nearest hop back and returns the first
// address that is not a trusted proxy.
func (p *ProxyTrust) Resolve(r *http.Request) string {
	remote := remoteHost(r)
	if !p.trusted(remote) {
		return remote
	}

	hops := strings.Split(r.Header.Get("X-Forwarded-For"), ",")
	client := remote
	for i := len(hops) - 1; i >= 0; i-- {
		hop := strings.TrimSpace(hops[i])
		if net.ParseIP(hop) == nil {
			break
		}
		client = hop
		if !p.trusted(hop) {
			break
		}
	}
	return client
}

// Handle stores the resolved client address for ClientIP.
func (p *ProxyTrust) Handle(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := context.WithValue(r.Context(), apiContext.ClientIP, p.Resolve(r))
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// ClientIP returns the address resolved by ProxyTrust.Handle, or the connection address.
func ClientIP(r *http.Request) string {
	if ip, ok := r.Context().Value(apiContext.ClientIP).(string); ok && ip != "" {
		return ip
	}
	return remoteHost(r)
}

func remoteHost(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
