package middleware

import (
	"net/http"
	"net/netip"
	"strings"
)

// TrustedProxies decides whether X-Forwarded-For and X-Real-IP may be believed.
// A nil or empty set trusts no one and always uses the socket peer.
type TrustedProxies struct {
	prefixes []netip.Prefix
}

func NewTrustedProxies(prefixes []netip.Prefix) *TrustedProxies {
	return &TrustedProxies{prefixes: prefixes}
}

func (t *TrustedProxies) trusts(host string) bool {
	if t == nil {
		return false
	}
	addr, err := netip.ParseAddr(host)
	if err != nil {
		return false
	}
	for _, p := range t.prefixes {
		if p.Contains(addr.Unmap()) {
			return true
		}
	}
	return false
}

// ClientIP returns the originating client address for r.
func (t *TrustedProxies) ClientIP(r *http.Request) string {
	peer := remoteHost(r)
	if !t.trusts(peer) {
		return peer
	}
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		if ip := strings.TrimSpace(first); ip != "" {
			return ip
		}
	}
	if xri := strings.TrimSpace(r.Header.Get("X-Real-IP")); xri != "" {
		return xri
	}
	return peer
}
