// Package privacy keeps raw network addresses out of logs and storage.
package privacy

import (
	"encoding/hex"
	"net"
	"strings"

	"golang.org/x/crypto/blake2b"
)

// AnonymizeIP truncates an address for logging: IPv4 keeps the /24, IPv6 the /48.
func AnonymizeIP(ip string) string {
	parsed := net.ParseIP(strings.TrimSpace(ip))
	if parsed == nil {
		return "unknown"
	}
	if v4 := parsed.To4(); v4 != nil {
		return v4.Mask(net.CIDRMask(24, 32)).String() + "/24"
	}
	return parsed.Mask(net.CIDRMask(48, 128)).String() + "/48"
}

// AddressHasher derives stable lookup keys from network addresses with a keyed
// BLAKE2b-256 so the consent store never holds the raw address.
type AddressHasher struct {
	key []byte
}

// NewAddressHasher builds a hasher. blake2b accepts keys up to 64 bytes; longer
// secrets are folded through an unkeyed hash first.
func NewAddressHasher(secret string) *AddressHasher {
	key := []byte(secret)
	if len(key) > blake2b.Size {
		sum := blake2b.Sum512(key)
		key = sum[:]
	}
	return &AddressHasher{key: key}
}

// Key returns the hex digest for ip. An empty address yields "".
func (h *AddressHasher) Key(ip string) string {
	ip = strings.TrimSpace(ip)
	if ip == "" {
		return ""
	}
	mac, err := blake2b.New256(h.key)
	if err != nil {
		// only reachable with a key over 64 bytes, which NewAddressHasher prevents
		sum := blake2b.Sum256([]byte(ip))
		return hex.EncodeToString(sum[:])
	}
	mac.Write([]byte(ip))
	return hex.EncodeToString(mac.Sum(nil))
}
