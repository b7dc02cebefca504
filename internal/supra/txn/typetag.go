package txn

import (
	"fmt"
	"strings"
)

// StructTag identifies an instantiated Move struct, e.g.
// 0xae38...::pair_types::ETH_USD. Trading functions on Dexlyn are generic
// over the pair struct and the collateral coin struct.
type StructTag struct {
	Address AccountAddress
	Module  string
	Name    string
}

// ParseStructTag parses "address::module::Name". Nested type parameters are
// not supported; none of the Dexlyn type arguments use them.
func ParseStructTag(s string) (StructTag, error) {
	parts := strings.Split(strings.TrimSpace(s), "::")
	if len(parts) != 3 {
		return StructTag{}, fmt.Errorf("malformed struct tag %q: want address::module::name", s)
	}
	addr, err := ParseAddress(parts[0])
	if err != nil {
		return StructTag{}, fmt.Errorf("malformed struct tag %q: %w", s, err)
	}
	if parts[1] == "" || parts[2] == "" {
		return StructTag{}, fmt.Errorf("malformed struct tag %q: empty module or name", s)
	}
	return StructTag{Address: addr, Module: parts[1], Name: parts[2]}, nil
}

func (t StructTag) String() string {
	return t.Address.Hex() + "::" + t.Module + "::" + t.Name
}

// typeTagVariantStruct is the BCS enum variant index of TypeTag::Struct.
const typeTagVariantStruct = 7

// Encode writes the struct tag as a TypeTag enum value.
func (t StructTag) Encode(enc *Encoder) error {
	enc.Uleb128(typeTagVariantStruct)
	enc.Address(t.Address)
	if err := enc.String(t.Module); err != nil {
		return err
	}
	if err := enc.String(t.Name); err != nil {
		return err
	}
	enc.Uleb128(0) // no type parameters
	return nil
}
