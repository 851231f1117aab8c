package middleware

import (
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"net/netip"
	"strings"

	"community-gateway/pkg/config"
)

// IPExtractor finds the client address of a request.
type IPExtractor interface {
	ExtractIP(r *http.Request) (string, error)
}

// RemoteAddrExtractor trusts only the TCP peer address.
type RemoteAddrExtractor struct{}

func (RemoteAddrExtractor) ExtractIP(r *http.Request) (string, error) {
	addr, err := parseRemoteAddr(r.RemoteAddr)
	if err != nil {
		return "", err
	}
	return addr.String(), nil
}

// ProxyAwareExtractor reads X-Forwarded-For and X-Real-IP, but only when
// the peer is one of Trusted. The forwarded chain is walked right to left
// and the first address outside Trusted is the client.
type ProxyAwareExtractor struct {
	Trusted []netip.Prefix
}

// LoadIPExtractor returns a ProxyAwareExtractor when TRUST_PROXY=true and
// TRUSTED_PROXIES lists at least one IP or CIDR, else RemoteAddrExtractor.
func LoadIPExtractor() (IPExtractor, error) {
	if !config.GetEnvBool("TRUST_PROXY", false) {
		return RemoteAddrExtractor{}, nil
	}
	entries := config.GetEnvStringList("TRUSTED_PROXIES", nil)
	if len(entries) == 0 {
		return nil, fmt.Errorf("TRUST_PROXY is enabled but TRUSTED_PROXIES is empty")
	}
	prefixes, err := ParsePrefixes(entries)
	if err != nil {
		return nil, err
	}
	return &ProxyAwareExtractor{Trusted: prefixes}, nil
}

// ParsePrefixes accepts CIDRs and bare addresses.
func ParsePrefixes(entries []string) ([]netip.Prefix, error) {
	out := make([]netip.Prefix, 0, len(entries))
	for _, s := range entries {
		if p, err := netip.ParsePrefix(s); err == nil {
			out = append(out, p.Masked())
			continue
		}
		a, err := netip.ParseAddr(s)
		if err != nil {
			return nil, fmt.Errorf("invalid trusted proxy %q: want an IP or CIDR", s)
		}
		out = append(out, netip.PrefixFrom(a, a.BitLen()))
	}
	return out, nil
}

func (e *ProxyAwareExtractor) ExtractIP(r *http.Request) (string, error) {
	peer, err := parseRemoteAddr(r.RemoteAddr)
	if err != nil {
		return "", err
	}
	if !e.trusted(peer) {
		if r.Header.Get("X-Forwarded-For") != "" || r.Header.Get("X-Real-IP") != "" {
			slog.Debug("ignoring forwarding headers from untrusted peer", slog.String("remote_addr", r.RemoteAddr))
		}
		return peer.String(), nil
	}

	if xff := r.Header.Values("X-Forwarded-For"); len(xff) > 0 {
		hops := strings.Split(strings.Join(xff, ","), ",")
		for i := len(hops) - 1; i >= 0; i-- {
			a, err := netip.ParseAddr(strings.TrimSpace(hops[i]))
			if err != nil {
				break
			}
			a = a.Unmap()
			if !e.trusted(a) {
				return a.String(), nil
			}
		}
	}
	if xri := strings.TrimSpace(r.Header.Get("X-Real-IP")); xri != "" {
		if a, err := netip.ParseAddr(xri); err == nil {
			return a.Unmap().String(), nil
		}
	}
	return peer.String(), nil
}

func (e *ProxyAwareExtractor) trusted(a netip.Addr) bool {
	for _, p := range e.Trusted {
		if p.Contains(a) {
			return true
		}
	}
	return false
}

func parseRemoteAddr(remote string) (netip.Addr, error) {
	host := remote
	if h, _, err := net.SplitHostPort(remote); err == nil {
		host = h
	}
	a, err := netip.ParseAddr(host)
	if err != nil {
		return netip.Addr{}, fmt.Errorf("invalid remote address %q", remote)
	}
	return a.Unmap(), nil
}
