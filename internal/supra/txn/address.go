package txn

import (
	"errors"
	"strings"

	"github.com/ethereum/go-ethereum/common/hexutil"
)

// AddressLength is the byte length of a Supra account address.
const AddressLength = 32

// AccountAddress is a 32-byte Move account address.
type AccountAddress [AddressLength]byte

// ZeroAddress is the reserved 0x0 address used as the secondary recipient
// slot of place_order_v3.
var ZeroAddress = AccountAddress{}

var errAddressTooLong = errors.New("address exceeds 32 bytes")

// ParseAddress decodes a hex account address. Short forms such as "0x1" are
// accepted and left-padded to 32 bytes.
func ParseAddress(s string) (AccountAddress, error) {
	clean := strings.TrimSpace(s)
	if clean == "" {
		return AccountAddress{}, errors.New("address is required")
	}
	clean = strings.TrimPrefix(clean, "0x")
	if clean == "" {
		return AccountAddress{}, errors.New("address is required")
	}
	if len(clean) > 2*AddressLength {
		return AccountAddress{}, errAddressTooLong
	}
	if len(clean)%2 == 1 {
		clean = "0" + clean
	}
	raw, err := hexutil.Decode("0x" + clean)
	if err != nil {
		return AccountAddress{}, err
	}
	var addr AccountAddress
	copy(addr[AddressLength-len(raw):], raw)
	return addr, nil
}

// MustParseAddress is ParseAddress for addresses known at compile time.
func MustParseAddress(s string) AccountAddress {
	addr, err := ParseAddress(s)
	if err != nil {
		panic(err)
	}
	return addr
}

func (a AccountAddress) Hex() string {
	return hexutil.Encode(a[:])
}

func (a AccountAddress) String() string {
	return a.Hex()
}

func (a AccountAddress) IsZero() bool {
	return a == ZeroAddress
}

// Equal reports whether two hex address strings denote the same account,
// regardless of 0x prefix, case or left padding.
func Equal(a, b string) bool {
	left, err := ParseAddress(a)
	if err != nil {
		return false
	}
	right, err := ParseAddress(b)
	if err != nil {
		return false
	}
	return left == right
}
