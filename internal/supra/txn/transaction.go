package txn

import (
	"errors"

	"golang.org/x/crypto/sha3"
)

// payloadVariantEntryFunction is the BCS enum variant index of
// TransactionPayload::EntryFunction.
const payloadVariantEntryFunction = 2

// rawTransactionSalt is the domain separator hashed into every signing
// message, preventing raw-transaction signatures from being valid in any
// other context.
const rawTransactionSalt = "SUPRA::RawTransaction"

// EntryFunction is a call to a named Move entry function with BCS-encoded
// arguments. Each argument is individually serialized; the payload carries
// them as a vector of byte vectors.
type EntryFunction struct {
	ModuleAddress AccountAddress
	ModuleName    string
	FunctionName  string
	TypeArgs      []StructTag
	Args          [][]byte
}

func (f EntryFunction) encode(enc *Encoder) error {
	enc.Uleb128(payloadVariantEntryFunction)
	enc.Address(f.ModuleAddress)
	if err := enc.String(f.ModuleName); err != nil {
		return err
	}
	if err := enc.String(f.FunctionName); err != nil {
		return err
	}
	enc.Uleb128(uint32(len(f.TypeArgs)))
	for _, tag := range f.TypeArgs {
		if err := tag.Encode(enc); err != nil {
			return err
		}
	}
	enc.Uleb128(uint32(len(f.Args)))
	for _, arg := range f.Args {
		if err := enc.VecBytes(arg); err != nil {
			return err
		}
	}
	return nil
}

// RawTransaction is an unsigned transaction. Field order is the BCS wire
// order and must not change.
type RawTransaction struct {
	Sender         AccountAddress
	SequenceNumber uint64
	Payload        EntryFunction
	MaxGasAmount   uint64
	GasUnitPrice   uint64
	ExpirationSecs uint64
	ChainID        uint8
}

// Encode returns the BCS serialization of the raw transaction.
func (t RawTransaction) Encode() ([]byte, error) {
	if t.Payload.ModuleName == "" || t.Payload.FunctionName == "" {
		return nil, errors.New("entry function module and name are required")
	}
	enc := NewEncoder()
	enc.Address(t.Sender)
	enc.U64(t.SequenceNumber)
	if err := t.Payload.encode(enc); err != nil {
		return nil, err
	}
	enc.U64(t.MaxGasAmount)
	enc.U64(t.GasUnitPrice)
	enc.U64(t.ExpirationSecs)
	enc.U8(t.ChainID)
	return enc.Bytes(), nil
}

// SigningMessage returns the bytes that are actually signed:
// sha3-256(salt) followed by the BCS transaction.
func (t RawTransaction) SigningMessage() ([]byte, error) {
	raw, err := t.Encode()
	if err != nil {
		return nil, err
	}
	prefix := sha3.Sum256([]byte(rawTransactionSalt))
	msg := make([]byte, 0, len(prefix)+len(raw))
	msg = append(msg, prefix[:]...)
	msg = append(msg, raw...)
	return msg, nil
}

// SignedTransaction pairs a raw transaction with its ed25519 authenticator.
type SignedTransaction struct {
	Raw       RawTransaction
	PublicKey []byte
	Signature []byte
}

// Encode returns the BCS serialization of the signed transaction,
// authenticator variant Ed25519 (index 0).
func (s SignedTransaction) Encode() ([]byte, error) {
	raw, err := s.Raw.Encode()
	if err != nil {
		return nil, err
	}
	enc := NewEncoder()
	enc.FixedBytes(raw)
	enc.Uleb128(0) // TransactionAuthenticator::Ed25519
	if err := enc.VecBytes(s.PublicKey); err != nil {
		return nil, err
	}
	if err := enc.VecBytes(s.Signature); err != nil {
		return nil, err
	}
	return enc.Bytes(), nil
}
