package assets

import (
	"encoding/json"
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/common/hexutil"
)

// Payload args arrive as decoded JSON: older schema epochs emit positional
// arrays (or a bare scalar for single-field events), newer epochs emit named
// records. These helpers pull typed values out of either shape.

func positional(args json.RawMessage, want int) ([]json.RawMessage, error) {
	var items []json.RawMessage
	if err := json.Unmarshal(args, &items); err != nil {
		return nil, fmt.Errorf("positional args: %w", err)
	}
	if len(items) != want {
		return nil, fmt.Errorf("positional args: got %d values, want %d", len(items), want)
	}
	return items, nil
}

func namedFields(args json.RawMessage) (map[string]json.RawMessage, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(args, &fields); err != nil {
		return nil, fmt.Errorf("named args: %w", err)
	}
	return fields, nil
}

func field(fields map[string]json.RawMessage, name string) (json.RawMessage, error) {
	value, ok := fields[name]
	if !ok {
		return nil, fmt.Errorf("missing field %q", name)
	}
	return value, nil
}

func asUint32(raw json.RawMessage) (uint32, error) {
	var value uint32
	if err := json.Unmarshal(raw, &value); err != nil {
		return 0, fmt.Errorf("uint32: %w", err)
	}
	return value, nil
}

func asUint8(raw json.RawMessage) (uint8, error) {
	var value uint8
	if err := json.Unmarshal(raw, &value); err != nil {
		return 0, fmt.Errorf("uint8: %w", err)
	}
	return value, nil
}

func asBool(raw json.RawMessage) (bool, error) {
	var value bool
	if err := json.Unmarshal(raw, &value); err != nil {
		return false, fmt.Errorf("bool: %w", err)
	}
	return value, nil
}

// asHexBytes returns a canonical 0x-hex string for a hex-encoded byte field.
func asHexBytes(raw json.RawMessage) (string, error) {
	var value string
	if err := json.Unmarshal(raw, &value); err != nil {
		return "", fmt.Errorf("hex bytes: %w", err)
	}
	data, err := hexutil.Decode(value)
	if err != nil {
		return "", fmt.Errorf("hex bytes: %w", err)
	}
	return hexutil.Encode(data), nil
}

// asAmount returns a canonical base-10 string for an arbitrary-precision
// amount, accepting both quoted strings and bare JSON number literals.
func asAmount(raw json.RawMessage) (string, error) {
	text := strings.TrimSpace(string(raw))
	if strings.HasPrefix(text, `"`) {
		if err := json.Unmarshal(raw, &text); err != nil {
			return "", fmt.Errorf("amount: %w", err)
		}
	}
	value, ok := new(big.Int).SetString(text, 10)
	if !ok {
		return "", fmt.Errorf("amount: invalid integer %q", text)
	}
	return value.String(), nil
}
