package store

import (
	"fmt"

	"github.com/decred/dcrd/bech32"
	"github.com/miden-multisig/coordinator/domain"
)

// EncodeAddress renders an opaque account/approver address as a bech32
// string tagged with the given network id HRP. This confines the textual
// form to the storage and HTTP boundary; the domain model works in raw
// bytes.
func EncodeAddress(networkID string, address domain.AccountAddress) (string, error) {
	converted, err := bech32.ConvertBits(address, 8, 5, true)
	if err != nil {
		return "", fmt.Errorf("store: convert address bits: %w", err)
	}
	encoded, err := bech32.Encode(networkID, converted)
	if err != nil {
		return "", fmt.Errorf("store: encode bech32 address: %w", err)
	}
	return encoded, nil
}

// DecodeAddress parses a bech32 address, verifying its HRP matches the
// expected network id, and returns the raw address bytes.
func DecodeAddress(expectedNetworkID, bech string) (domain.AccountAddress, error) {
	hrp, data, err := bech32.Decode(bech)
	if err != nil {
		return nil, &InvalidAddressError{Reason: err.Error()}
	}
	if hrp != expectedNetworkID {
		return nil, &InvalidAddressError{
			Reason: fmt.Sprintf("network id mismatch: expected %q, got %q", expectedNetworkID, hrp),
		}
	}

	converted, err := bech32.ConvertBits(data, 5, 8, false)
	if err != nil {
		return nil, &InvalidAddressError{Reason: err.Error()}
	}
	return domain.AccountAddress(converted), nil
}

// InvalidAddressError is returned when a bech32 address fails to decode or
// carries an HRP that does not match the configured network id.
type InvalidAddressError struct {
	Reason string
}

func (e *InvalidAddressError) Error() string {
	return fmt.Sprintf("store: invalid address: %s", e.Reason)
}
