package txn

import (
	"bytes"
	"testing"
)

func TestEncoderU64LittleEndian(t *testing.T) {
	got := EncodeU64(300000000)
	want := []byte{0x00, 0xa3, 0xe1, 0x11, 0x00, 0x00, 0x00, 0x00}
	if !bytes.Equal(got, want) {
		t.Fatalf("expected % x, got % x", want, got)
	}
}

func TestEncoderBool(t *testing.T) {
	if !bytes.Equal(EncodeBool(true), []byte{1}) {
		t.Fatal("true should encode to 0x01")
	}
	if !bytes.Equal(EncodeBool(false), []byte{0}) {
		t.Fatal("false should encode to 0x00")
	}
}

func TestEncoderUleb128(t *testing.T) {
	cases := []struct {
		in   uint32
		want []byte
	}{
		{0, []byte{0x00}},
		{1, []byte{0x01}},
		{127, []byte{0x7f}},
		{128, []byte{0x80, 0x01}},
		{300, []byte{0xac, 0x02}},
		{16384, []byte{0x80, 0x80, 0x01}},
	}
	for _, tc := range cases {
		enc := NewEncoder()
		enc.Uleb128(tc.in)
		if got := enc.Bytes(); !bytes.Equal(got, tc.want) {
			t.Fatalf("uleb128(%d): expected % x, got % x", tc.in, tc.want, got)
		}
	}
}

func TestEncoderString(t *testing.T) {
	enc := NewEncoder()
	if err := enc.String("managed_trading"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got := enc.Bytes()
	if got[0] != byte(len("managed_trading")) {
		t.Fatalf("expected length prefix %d, got %d", len("managed_trading"), got[0])
	}
	if string(got[1:]) != "managed_trading" {
		t.Fatalf("unexpected payload %q", got[1:])
	}
}

func TestStructTagEncode(t *testing.T) {
	tag, err := ParseStructTag("0x1::pair_types::ETH_USD")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	enc := NewEncoder()
	if err := tag.Encode(enc); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got := enc.Bytes()
	if got[0] != typeTagVariantStruct {
		t.Fatalf("expected struct variant %d, got %d", typeTagVariantStruct, got[0])
	}
	// variant + 32-byte address + "pair_types" + "ETH_USD" with length
	// prefixes + empty type-param vector
	wantLen := 1 + 32 + 1 + len("pair_types") + 1 + len("ETH_USD") + 1
	if len(got) != wantLen {
		t.Fatalf("expected %d bytes, got %d", wantLen, len(got))
	}
	if got[len(got)-1] != 0 {
		t.Fatal("expected empty type-parameter vector")
	}
}

func TestParseStructTagRejectsMalformed(t *testing.T) {
	for _, in := range []string{"", "0x1::pair_types", "0x1::::ETH_USD", "zz::m::N"} {
		if _, err := ParseStructTag(in); err == nil {
			t.Fatalf("expected error for %q", in)
		}
	}
}

func TestRawTransactionEncodeLayout(t *testing.T) {
	raw := RawTransaction{
		Sender:         MustParseAddress("0x2"),
		SequenceNumber: 7,
		Payload: EntryFunction{
			ModuleAddress: MustParseAddress("0x1"),
			ModuleName:    "managed_trading",
			FunctionName:  "place_order_v3",
			Args:          [][]byte{EncodeU64(1)},
		},
		MaxGasAmount:   500000,
		GasUnitPrice:   100,
		ExpirationSecs: 1700000000,
		ChainID:        6,
	}
	got, err := raw.Encode()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got[len(got)-1] != 6 {
		t.Fatalf("expected trailing chain id 6, got %d", got[len(got)-1])
	}
	if !bytes.Equal(got[:32], raw.Sender[:]) {
		t.Fatal("expected sender address first")
	}
}

func TestSigningMessagePrefixStable(t *testing.T) {
	raw := RawTransaction{
		Sender: MustParseAddress("0x2"),
		Payload: EntryFunction{
			ModuleAddress: MustParseAddress("0x1"),
			ModuleName:    "managed_trading",
			FunctionName:  "place_order_v3",
		},
	}
	first, err := raw.SigningMessage()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := raw.SigningMessage()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !bytes.Equal(first, second) {
		t.Fatal("signing message must be deterministic")
	}
	encoded, _ := raw.Encode()
	if !bytes.Equal(first[32:], encoded) {
		t.Fatal("signing message must end with the BCS transaction")
	}
}
