// Package assets decodes versioned assets pallet event envelopes into
// schema-independent normalized events.
package assets

import (
	"errors"
	"fmt"
	"strings"

	"assetScope/internal/model"
)

// ErrUnknownSchema reports an envelope whose metadata hash matches no
// registered variant. Guessing a shape risks corrupting the ledger, so this
// halts processing of the stream position.
var ErrUnknownSchema = errors.New("unknown event schema")

// Config configures decoder behavior.
type Config struct {
	// VariantMap registers extra metadata hashes as aliases of known
	// variants, keyed hash -> "assets.Name@version".
	VariantMap map[string]string
}

// Decoder resolves an envelope's schema variant and normalizes its payload.
type Decoder struct {
	registry map[model.EventName][]variant
}

// NewDecoder builds a decoder over the built-in variant registry.
func NewDecoder(cfg Config) (*Decoder, error) {
	registry := defaultRegistry()

	for hash, ref := range cfg.VariantMap {
		hash = strings.TrimSpace(strings.TrimPrefix(strings.ToLower(hash), "0x"))
		if hash == "" {
			continue
		}
		name, version, ok := strings.Cut(ref, "@")
		if !ok {
			return nil, fmt.Errorf("invalid variant reference: %s", ref)
		}
		eventName := model.EventName(strings.TrimSpace(name))
		variants, found := registry[eventName]
		if !found {
			return nil, fmt.Errorf("unsupported event in variant map: %s", name)
		}
		version = strings.TrimSpace(version)
		aliased := false
		for _, v := range variants {
			if v.version == version {
				registry[eventName] = append(registry[eventName], variant{
					version: version,
					hash:    hash,
					decode:  v.decode,
				})
				aliased = true
				break
			}
		}
		if !aliased {
			return nil, fmt.Errorf("unknown variant version %s for %s", version, name)
		}
	}

	return &Decoder{registry: registry}, nil
}

// CanDecode reports whether the event type has any registered variants.
func (d *Decoder) CanDecode(name string) bool {
	_, ok := d.registry[model.EventName(name)]
	return ok
}

// Decode resolves the envelope's variant by exact metadata hash match,
// oldest variant first, and normalizes the payload.
func (d *Decoder) Decode(envelope model.EventEnvelope) (*model.NormalizedEvent, error) {
	name := model.EventName(envelope.Name)
	variants, ok := d.registry[name]
	if !ok {
		return nil, fmt.Errorf("%w: unsupported event %s", ErrUnknownSchema, envelope.Name)
	}

	hash := strings.TrimPrefix(strings.ToLower(envelope.SpecHash), "0x")
	for _, v := range variants {
		if v.hash != hash {
			continue
		}
		payload, err := v.decode(envelope.Args)
		if err != nil {
			return nil, fmt.Errorf("decode %s %s: %w", envelope.Name, v.version, err)
		}
		return &model.NormalizedEvent{
			ID:          envelope.ID,
			Name:        name,
			BlockNumber: envelope.BlockNumber,
			BlockHash:   envelope.BlockHash,
			Timestamp:   envelope.Timestamp,
			ExtrinsicID: envelope.ExtrinsicID,
			Payload:     payload,
		}, nil
	}

	return nil, fmt.Errorf("%w: %s hash %s", ErrUnknownSchema, envelope.Name, envelope.SpecHash)
}
