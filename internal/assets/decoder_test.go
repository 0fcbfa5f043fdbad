package assets

import (
	"encoding/json"
	"errors"
	"testing"

	"assetScope/internal/model"
)

const (
	keyA = "0x0101010101010101010101010101010101010101010101010101010101010101"
	keyB = "0x0202020202020202020202020202020202020202020202020202020202020202"
)

func envelope(name, hash, args string) model.EventEnvelope {
	return model.EventEnvelope{
		ID:          "0000370000-000001-ab12c",
		Name:        name,
		SpecHash:    hash,
		Args:        json.RawMessage(args),
		BlockNumber: 370000,
		BlockHash:   "0xfeed",
		Timestamp:   1648000000000,
	}
}

func newTestDecoder(t *testing.T) *Decoder {
	t.Helper()
	decoder, err := NewDecoder(Config{})
	if err != nil {
		t.Fatalf("decoder: %v", err)
	}
	return decoder
}

func TestDecodeCreatedTupleAndNamed(t *testing.T) {
	decoder := newTestDecoder(t)

	tuple := envelope("assets.Created",
		"f968eb148e0dc7739feb64d5c72eea0de823dbf44259d08f9a6218f8117bf19a",
		`[7, "`+keyA+`", "`+keyB+`"]`)
	named := envelope("assets.Created",
		"01c5b4c489f75602f5b4533c646777ff8677cd64a0cd24ad19aaa7193c001974",
		`{"assetId": 7, "creator": "`+keyA+`", "owner": "`+keyB+`"}`)

	want := model.CreatedPayload{AssetID: 7, Creator: keyA, Owner: keyB}

	for _, env := range []model.EventEnvelope{tuple, named} {
		event, err := decoder.Decode(env)
		if err != nil {
			t.Fatalf("decode %s: %v", env.SpecHash, err)
		}
		got, ok := event.Payload.(model.CreatedPayload)
		if !ok {
			t.Fatalf("payload type mismatch: %T", event.Payload)
		}
		if got != want {
			t.Fatalf("payload mismatch: got %+v want %+v", got, want)
		}
		if event.Name != model.EventCreated {
			t.Fatalf("name mismatch: %s", event.Name)
		}
		if event.BlockNumber != 370000 || event.BlockHash != "0xfeed" {
			t.Fatalf("provenance mismatch: %+v", event)
		}
	}
}

func TestDecodeScalarAssetEvent(t *testing.T) {
	decoder := newTestDecoder(t)

	event, err := decoder.Decode(envelope("assets.AssetFrozen",
		"0a0f30b1ade5af5fade6413c605719d59be71340cf4884f65ee9858eb1c38f6c",
		`42`))
	if err != nil {
		t.Fatalf("decode scalar: %v", err)
	}
	payload, ok := event.Payload.(model.AssetPayload)
	if !ok {
		t.Fatalf("payload type mismatch: %T", event.Payload)
	}
	if payload.AssetID != 42 {
		t.Fatalf("asset id mismatch: %d", payload.AssetID)
	}
}

func TestDecodeIssuedAcrossEpochs(t *testing.T) {
	decoder := newTestDecoder(t)

	cases := []struct {
		hash string
		args string
	}{
		{"5a42f36466a84f545ee1a3330dbd7108a20dc2c22012110bbe8ff0aff5bc6309", `[7, "` + keyB + `", "1000000000000000000000"]`},
		{"491d5eb10503fbf716b3399d749f1a02c0a60c5f903a500a8ed4f9f98fd07f34", `[7, "` + keyB + `", "1000000000000000000000"]`},
		{"04a293a0727dace50583b1e9066320bba9eca27b394195f231ba9797603d6046", `{"assetId": 7, "owner": "` + keyB + `", "totalSupply": "1000000000000000000000"}`},
	}

	for _, tc := range cases {
		event, err := decoder.Decode(envelope("assets.Issued", tc.hash, tc.args))
		if err != nil {
			t.Fatalf("decode %s: %v", tc.hash, err)
		}
		issued, ok := event.Payload.(model.IssuedPayload)
		if !ok {
			t.Fatalf("payload type mismatch: %T", event.Payload)
		}
		if issued.TotalSupply != "1000000000000000000000" {
			t.Fatalf("total supply mismatch: %s", issued.TotalSupply)
		}
		if issued.Owner != keyB || issued.AssetID != 7 {
			t.Fatalf("payload mismatch: %+v", issued)
		}
	}
}

func TestDecodeNumericAmountLiteral(t *testing.T) {
	decoder := newTestDecoder(t)

	event, err := decoder.Decode(envelope("assets.Transferred",
		"d868858871cc662d14a67687feea357ae842db006bcaef16e832ad8bf3f67215",
		`{"assetId": 7, "from": "`+keyA+`", "to": "`+keyB+`", "amount": 300}`))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	transferred := event.Payload.(model.TransferredPayload)
	if transferred.Amount != "300" {
		t.Fatalf("amount mismatch: %s", transferred.Amount)
	}
}

func TestDecodeUnknownSchemaHash(t *testing.T) {
	decoder := newTestDecoder(t)

	_, err := decoder.Decode(envelope("assets.Created",
		"ffffffffffffffffffffffffffffffffffffffffffffffffffffffffffffffff",
		`[7, "`+keyA+`", "`+keyB+`"]`))
	if !errors.Is(err, ErrUnknownSchema) {
		t.Fatalf("expected ErrUnknownSchema, got %v", err)
	}

	_, err = decoder.Decode(envelope("balances.Transfer", "abcd", `[]`))
	if !errors.Is(err, ErrUnknownSchema) {
		t.Fatalf("expected ErrUnknownSchema for unsupported event, got %v", err)
	}
}

func TestVariantMapAlias(t *testing.T) {
	alias := "1111111111111111111111111111111111111111111111111111111111111111"
	decoder, err := NewDecoder(Config{VariantMap: map[string]string{
		alias: "assets.Created@v700",
	}})
	if err != nil {
		t.Fatalf("decoder: %v", err)
	}

	event, err := decoder.Decode(envelope("assets.Created", alias,
		`{"assetId": 9, "creator": "`+keyA+`", "owner": "`+keyB+`"}`))
	if err != nil {
		t.Fatalf("decode alias: %v", err)
	}
	created := event.Payload.(model.CreatedPayload)
	if created.AssetID != 9 {
		t.Fatalf("asset id mismatch: %d", created.AssetID)
	}

	if _, err := NewDecoder(Config{VariantMap: map[string]string{alias: "assets.Created@v9000"}}); err == nil {
		t.Fatalf("expected error for unknown variant version")
	}
	if _, err := NewDecoder(Config{VariantMap: map[string]string{alias: "nonsense"}}); err == nil {
		t.Fatalf("expected error for malformed reference")
	}
}

func TestCanDecode(t *testing.T) {
	decoder := newTestDecoder(t)

	if !decoder.CanDecode("assets.Burned") {
		t.Fatalf("expected assets.Burned to be decodable")
	}
	if decoder.CanDecode("balances.Transfer") {
		t.Fatalf("did not expect balances.Transfer to be decodable")
	}
}
