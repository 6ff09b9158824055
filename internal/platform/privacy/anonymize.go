// Package privacy reduces network identifiers before they reach logs.
package privacy

import "net/netip"

// Prefix lengths kept by AnonymizeIP.
const (
	IPv4Bits = 24
	IPv6Bits = 48
)

// AnonymizeIP masks an address to its network: /24 for IPv4 (including
// IPv4-mapped IPv6) and /48 for IPv6. Zones are dropped.
//
// Returns "unknown" for empty input and "invalid" for unparseable input.
func AnonymizeIP(ip string) string {
	if ip == "" || ip == "unknown" {
		return "unknown"
	}
	addr, err := netip.ParseAddr(ip)
	if err != nil {
		return "invalid"
	}
	return Mask(addr).String()
}

// Mask returns the network address for addr at the anonymizing prefix length.
func Mask(addr netip.Addr) netip.Addr {
	addr = addr.Unmap().WithZone("")
	bits := IPv6Bits
	if addr.Is4() {
		bits = IPv4Bits
	}
	prefix, err := addr.Prefix(bits)
	if err != nil {
		return netip.Addr{}
	}
	return prefix.Addr()
}
