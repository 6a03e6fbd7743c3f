package bluem

import (
	"fmt"
	"math/rand/v2"
	"strconv"
	"strings"
)

// DefaultAddressPrefix is the vendor prefix of generated device addresses
var DefaultAddressPrefix = AddressPrefix{0x00, 0x16, 0x3e}

// AddressPrefix is the fixed vendor part of a generated address
type AddressPrefix [3]byte

// ParseAddressPrefix parses "00:16:3e" style prefixes
func ParseAddressPrefix(s string) (AddressPrefix, error) {
	var p AddressPrefix
	parts := strings.Split(s, ":")
	if len(parts) != len(p) {
		return p, fmt.Errorf("invalid address prefix %q: expected 3 colon-separated bytes", s)
	}
	for i, part := range parts {
		if len(part) != 2 {
			return p, fmt.Errorf("invalid address prefix %q: byte %d must be two hex digits", s, i)
		}
		b, err := strconv.ParseUint(part, 16, 8)
		if err != nil {
			return p, fmt.Errorf("invalid address prefix %q: %w", s, err)
		}
		p[i] = byte(b)
	}
	return p, nil
}

func (p AddressPrefix) String() string {
	return fmt.Sprintf("%02x:%02x:%02x", p[0], p[1], p[2])
}

// Address is a 6-byte hardware address
type Address [6]byte

// RandomAddress returns prefix followed by [0x00-0x7f] and two random bytes.
// The fourth byte never has its high bit set; fixed addresses such as the
// adapter's use that space.
func RandomAddress(prefix AddressPrefix, rnd *rand.Rand) Address {
	return Address{
		prefix[0], prefix[1], prefix[2],
		byte(rnd.IntN(0x80)),
		byte(rnd.IntN(0x100)),
		byte(rnd.IntN(0x100)),
	}
}

// String formats the address as lowercase colon-separated hex
func (a Address) String() string {
	return a.join(":")
}

// PathElement returns the object path element for the address, dev_xx_xx_xx_xx_xx_xx
func (a Address) PathElement() string {
	return "dev_" + a.join("_")
}

func (a Address) join(sep string) string {
	parts := make([]string, len(a))
	for i, b := range a {
		parts[i] = fmt.Sprintf("%02x", b)
	}
	return strings.Join(parts, sep)
}
