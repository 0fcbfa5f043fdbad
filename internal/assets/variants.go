package assets

import (
	"encoding/json"

	"assetScope/internal/model"
)

// A variant is one historical payload shape of an event type, keyed by the
// metadata hash of its structural signature. Variants are registered oldest
// first and resolved by exact hash match; there is no latest fallthrough.
type variant struct {
	version string
	hash    string
	decode  func(json.RawMessage) (interface{}, error)
}

func defaultRegistry() map[model.EventName][]variant {
	return map[model.EventName][]variant{
		model.EventCreated: {
			{version: "v3", hash: "f968eb148e0dc7739feb64d5c72eea0de823dbf44259d08f9a6218f8117bf19a", decode: decodeCreatedTuple},
			{version: "v700", hash: "01c5b4c489f75602f5b4533c646777ff8677cd64a0cd24ad19aaa7193c001974", decode: decodeCreatedNamed},
		},
		model.EventOwnerChanged: {
			{version: "v3", hash: "0379562584d6426ccff49705dfa9dba95ad94215b772fd97d0ad0c4ca0001c12", decode: decodeOwnerChangedTuple},
			{version: "v700", hash: "282af926068c862d990c6860efc77d13688c62323eee89a0ff55df22fc3daffb", decode: decodeOwnerChangedNamed},
		},
		model.EventTeamChanged: {
			{version: "v3", hash: "608cf8b84887966db26c958a6b826fd41d8e098263ce7eaae9a421f1f8b1bd56", decode: decodeTeamChangedTuple},
			{version: "v700", hash: "a4b3b1ea6aeb9cd592ffdda2f65983c16c73356bc6d83cc839a7f7a15f9a5a7b", decode: decodeTeamChangedNamed},
		},
		model.EventAssetFrozen: {
			{version: "v3", hash: "0a0f30b1ade5af5fade6413c605719d59be71340cf4884f65ee9858eb1c38f6c", decode: decodeAssetScalar},
			{version: "v700", hash: "54828f2ad0eb28b7ccfebfbc9a9a269c2c381874a095b3dc64004ab1045d27b5", decode: decodeAssetNamed},
		},
		model.EventAssetThawed: {
			{version: "v3", hash: "0a0f30b1ade5af5fade6413c605719d59be71340cf4884f65ee9858eb1c38f6c", decode: decodeAssetScalar},
			{version: "v700", hash: "54828f2ad0eb28b7ccfebfbc9a9a269c2c381874a095b3dc64004ab1045d27b5", decode: decodeAssetNamed},
		},
		model.EventDestroyed: {
			{version: "v3", hash: "0a0f30b1ade5af5fade6413c605719d59be71340cf4884f65ee9858eb1c38f6c", decode: decodeAssetScalar},
			{version: "v700", hash: "54828f2ad0eb28b7ccfebfbc9a9a269c2c381874a095b3dc64004ab1045d27b5", decode: decodeAssetNamed},
		},
		model.EventMetadataSet: {
			{version: "v3", hash: "c1d0d141c6696c0e5c576dd8a951639d8107c6372398a2645e76ee469b471a5e", decode: decodeMetadataSetTuple},
			{version: "v700", hash: "70e50f56e329151cd6ac15f45bb6a69c66f668bf4a5fd0b33a5e87b09e296498", decode: decodeMetadataSetNamed},
		},
		model.EventMetadataCleared: {
			{version: "v3", hash: "0a0f30b1ade5af5fade6413c605719d59be71340cf4884f65ee9858eb1c38f6c", decode: decodeAssetScalar},
			{version: "v700", hash: "54828f2ad0eb28b7ccfebfbc9a9a269c2c381874a095b3dc64004ab1045d27b5", decode: decodeAssetNamed},
		},
		model.EventIssued: {
			{version: "v3", hash: "5a42f36466a84f545ee1a3330dbd7108a20dc2c22012110bbe8ff0aff5bc6309", decode: decodeIssuedTuple},
			{version: "v504", hash: "491d5eb10503fbf716b3399d749f1a02c0a60c5f903a500a8ed4f9f98fd07f34", decode: decodeIssuedTuple},
			{version: "v700", hash: "04a293a0727dace50583b1e9066320bba9eca27b394195f231ba9797603d6046", decode: decodeIssuedNamed},
		},
		model.EventTransferred: {
			{version: "v3", hash: "5940cf5f83945a6024e99655f1979c05762583b5af1201dba66c10c18b56cff1", decode: decodeTransferredTuple},
			{version: "v504", hash: "d6b774c5b258baa877a8319bea3e3f8d42d54077cfd3ad4848765f205196496c", decode: decodeTransferredTuple},
			{version: "v700", hash: "d868858871cc662d14a67687feea357ae842db006bcaef16e832ad8bf3f67215", decode: decodeTransferredNamed},
		},
		model.EventTransferredApproved: {
			{version: "v3", hash: "311643bc5e8d1c3925b7916b65076213b8e04c24ee9268c197cff25413f64807", decode: decodeTransferredApprovedTuple},
			{version: "v504", hash: "aa5749cf7f3cabc0e53fe58112a189f75671f6e6ed828d09582d110abfd0cc53", decode: decodeTransferredApprovedTuple},
			{version: "v700", hash: "cbd00ccb7ac2b444ece8aa7a3d2465c57c56be8f0925f97a42d8eb5cb7edb95d", decode: decodeTransferredApprovedNamed},
		},
		model.EventFrozen: {
			{version: "v3", hash: "0379562584d6426ccff49705dfa9dba95ad94215b772fd97d0ad0c4ca0001c12", decode: decodeAccountTuple},
			{version: "v700", hash: "29f48097267d9c17a862db4feed96968aaccbc735ba9e4e1ed85812507045cbb", decode: decodeAccountNamed},
		},
		model.EventThawed: {
			{version: "v3", hash: "0379562584d6426ccff49705dfa9dba95ad94215b772fd97d0ad0c4ca0001c12", decode: decodeAccountTuple},
			{version: "v700", hash: "29f48097267d9c17a862db4feed96968aaccbc735ba9e4e1ed85812507045cbb", decode: decodeAccountNamed},
		},
		model.EventBurned: {
			{version: "v3", hash: "5a42f36466a84f545ee1a3330dbd7108a20dc2c22012110bbe8ff0aff5bc6309", decode: decodeBurnedTuple},
			{version: "v504", hash: "491d5eb10503fbf716b3399d749f1a02c0a60c5f903a500a8ed4f9f98fd07f34", decode: decodeBurnedTuple},
			{version: "v700", hash: "007cbec9b9082462b45f0bfca685f3eef8cf4f6bd64ebde0c25183d6ec75bef6", decode: decodeBurnedNamed},
		},
	}
}

func decodeCreatedTuple(args json.RawMessage) (interface{}, error) {
	items, err := positional(args, 3)
	if err != nil {
		return nil, err
	}
	assetID, err := asUint32(items[0])
	if err != nil {
		return nil, err
	}
	creator, err := asHexBytes(items[1])
	if err != nil {
		return nil, err
	}
	owner, err := asHexBytes(items[2])
	if err != nil {
		return nil, err
	}
	return model.CreatedPayload{AssetID: assetID, Creator: creator, Owner: owner}, nil
}

func decodeCreatedNamed(args json.RawMessage) (interface{}, error) {
	fields, err := namedFields(args)
	if err != nil {
		return nil, err
	}
	assetID, err := namedUint32(fields, "assetId")
	if err != nil {
		return nil, err
	}
	creator, err := namedHexBytes(fields, "creator")
	if err != nil {
		return nil, err
	}
	owner, err := namedHexBytes(fields, "owner")
	if err != nil {
		return nil, err
	}
	return model.CreatedPayload{AssetID: assetID, Creator: creator, Owner: owner}, nil
}

func decodeOwnerChangedTuple(args json.RawMessage) (interface{}, error) {
	items, err := positional(args, 2)
	if err != nil {
		return nil, err
	}
	assetID, err := asUint32(items[0])
	if err != nil {
		return nil, err
	}
	owner, err := asHexBytes(items[1])
	if err != nil {
		return nil, err
	}
	return model.OwnerChangedPayload{AssetID: assetID, Owner: owner}, nil
}

func decodeOwnerChangedNamed(args json.RawMessage) (interface{}, error) {
	fields, err := namedFields(args)
	if err != nil {
		return nil, err
	}
	assetID, err := namedUint32(fields, "assetId")
	if err != nil {
		return nil, err
	}
	owner, err := namedHexBytes(fields, "owner")
	if err != nil {
		return nil, err
	}
	return model.OwnerChangedPayload{AssetID: assetID, Owner: owner}, nil
}

func decodeTeamChangedTuple(args json.RawMessage) (interface{}, error) {
	items, err := positional(args, 4)
	if err != nil {
		return nil, err
	}
	assetID, err := asUint32(items[0])
	if err != nil {
		return nil, err
	}
	issuer, err := asHexBytes(items[1])
	if err != nil {
		return nil, err
	}
	admin, err := asHexBytes(items[2])
	if err != nil {
		return nil, err
	}
	freezer, err := asHexBytes(items[3])
	if err != nil {
		return nil, err
	}
	return model.TeamChangedPayload{AssetID: assetID, Issuer: issuer, Admin: admin, Freezer: freezer}, nil
}

func decodeTeamChangedNamed(args json.RawMessage) (interface{}, error) {
	fields, err := namedFields(args)
	if err != nil {
		return nil, err
	}
	assetID, err := namedUint32(fields, "assetId")
	if err != nil {
		return nil, err
	}
	issuer, err := namedHexBytes(fields, "issuer")
	if err != nil {
		return nil, err
	}
	admin, err := namedHexBytes(fields, "admin")
	if err != nil {
		return nil, err
	}
	freezer, err := namedHexBytes(fields, "freezer")
	if err != nil {
		return nil, err
	}
	return model.TeamChangedPayload{AssetID: assetID, Issuer: issuer, Admin: admin, Freezer: freezer}, nil
}

// Single-field events were emitted as a bare scalar before v700.
func decodeAssetScalar(args json.RawMessage) (interface{}, error) {
	assetID, err := asUint32(args)
	if err != nil {
		return nil, err
	}
	return model.AssetPayload{AssetID: assetID}, nil
}

func decodeAssetNamed(args json.RawMessage) (interface{}, error) {
	fields, err := namedFields(args)
	if err != nil {
		return nil, err
	}
	assetID, err := namedUint32(fields, "assetId")
	if err != nil {
		return nil, err
	}
	return model.AssetPayload{AssetID: assetID}, nil
}

func decodeMetadataSetTuple(args json.RawMessage) (interface{}, error) {
	items, err := positional(args, 5)
	if err != nil {
		return nil, err
	}
	assetID, err := asUint32(items[0])
	if err != nil {
		return nil, err
	}
	name, err := asHexBytes(items[1])
	if err != nil {
		return nil, err
	}
	symbol, err := asHexBytes(items[2])
	if err != nil {
		return nil, err
	}
	decimals, err := asUint8(items[3])
	if err != nil {
		return nil, err
	}
	isFrozen, err := asBool(items[4])
	if err != nil {
		return nil, err
	}
	return model.MetadataSetPayload{AssetID: assetID, Name: name, Symbol: symbol, Decimals: decimals, IsFrozen: isFrozen}, nil
}

func decodeMetadataSetNamed(args json.RawMessage) (interface{}, error) {
	fields, err := namedFields(args)
	if err != nil {
		return nil, err
	}
	assetID, err := namedUint32(fields, "assetId")
	if err != nil {
		return nil, err
	}
	name, err := namedHexBytes(fields, "name")
	if err != nil {
		return nil, err
	}
	symbol, err := namedHexBytes(fields, "symbol")
	if err != nil {
		return nil, err
	}
	decimalsRaw, err := field(fields, "decimals")
	if err != nil {
		return nil, err
	}
	decimals, err := asUint8(decimalsRaw)
	if err != nil {
		return nil, err
	}
	isFrozenRaw, err := field(fields, "isFrozen")
	if err != nil {
		return nil, err
	}
	isFrozen, err := asBool(isFrozenRaw)
	if err != nil {
		return nil, err
	}
	return model.MetadataSetPayload{AssetID: assetID, Name: name, Symbol: symbol, Decimals: decimals, IsFrozen: isFrozen}, nil
}

func decodeIssuedTuple(args json.RawMessage) (interface{}, error) {
	items, err := positional(args, 3)
	if err != nil {
		return nil, err
	}
	assetID, err := asUint32(items[0])
	if err != nil {
		return nil, err
	}
	owner, err := asHexBytes(items[1])
	if err != nil {
		return nil, err
	}
	totalSupply, err := asAmount(items[2])
	if err != nil {
		return nil, err
	}
	return model.IssuedPayload{AssetID: assetID, Owner: owner, TotalSupply: totalSupply}, nil
}

func decodeIssuedNamed(args json.RawMessage) (interface{}, error) {
	fields, err := namedFields(args)
	if err != nil {
		return nil, err
	}
	assetID, err := namedUint32(fields, "assetId")
	if err != nil {
		return nil, err
	}
	owner, err := namedHexBytes(fields, "owner")
	if err != nil {
		return nil, err
	}
	totalSupply, err := namedAmount(fields, "totalSupply")
	if err != nil {
		return nil, err
	}
	return model.IssuedPayload{AssetID: assetID, Owner: owner, TotalSupply: totalSupply}, nil
}

func decodeTransferredTuple(args json.RawMessage) (interface{}, error) {
	items, err := positional(args, 4)
	if err != nil {
		return nil, err
	}
	assetID, err := asUint32(items[0])
	if err != nil {
		return nil, err
	}
	from, err := asHexBytes(items[1])
	if err != nil {
		return nil, err
	}
	to, err := asHexBytes(items[2])
	if err != nil {
		return nil, err
	}
	amount, err := asAmount(items[3])
	if err != nil {
		return nil, err
	}
	return model.TransferredPayload{AssetID: assetID, From: from, To: to, Amount: amount}, nil
}

func decodeTransferredNamed(args json.RawMessage) (interface{}, error) {
	fields, err := namedFields(args)
	if err != nil {
		return nil, err
	}
	assetID, err := namedUint32(fields, "assetId")
	if err != nil {
		return nil, err
	}
	from, err := namedHexBytes(fields, "from")
	if err != nil {
		return nil, err
	}
	to, err := namedHexBytes(fields, "to")
	if err != nil {
		return nil, err
	}
	amount, err := namedAmount(fields, "amount")
	if err != nil {
		return nil, err
	}
	return model.TransferredPayload{AssetID: assetID, From: from, To: to, Amount: amount}, nil
}

func decodeTransferredApprovedTuple(args json.RawMessage) (interface{}, error) {
	items, err := positional(args, 5)
	if err != nil {
		return nil, err
	}
	assetID, err := asUint32(items[0])
	if err != nil {
		return nil, err
	}
	owner, err := asHexBytes(items[1])
	if err != nil {
		return nil, err
	}
	delegate, err := asHexBytes(items[2])
	if err != nil {
		return nil, err
	}
	destination, err := asHexBytes(items[3])
	if err != nil {
		return nil, err
	}
	amount, err := asAmount(items[4])
	if err != nil {
		return nil, err
	}
	return model.TransferredApprovedPayload{AssetID: assetID, Owner: owner, Delegate: delegate, Destination: destination, Amount: amount}, nil
}

func decodeTransferredApprovedNamed(args json.RawMessage) (interface{}, error) {
	fields, err := namedFields(args)
	if err != nil {
		return nil, err
	}
	assetID, err := namedUint32(fields, "assetId")
	if err != nil {
		return nil, err
	}
	owner, err := namedHexBytes(fields, "owner")
	if err != nil {
		return nil, err
	}
	delegate, err := namedHexBytes(fields, "delegate")
	if err != nil {
		return nil, err
	}
	destination, err := namedHexBytes(fields, "destination")
	if err != nil {
		return nil, err
	}
	amount, err := namedAmount(fields, "amount")
	if err != nil {
		return nil, err
	}
	return model.TransferredApprovedPayload{AssetID: assetID, Owner: owner, Delegate: delegate, Destination: destination, Amount: amount}, nil
}

func decodeAccountTuple(args json.RawMessage) (interface{}, error) {
	items, err := positional(args, 2)
	if err != nil {
		return nil, err
	}
	assetID, err := asUint32(items[0])
	if err != nil {
		return nil, err
	}
	who, err := asHexBytes(items[1])
	if err != nil {
		return nil, err
	}
	return model.AccountPayload{AssetID: assetID, Who: who}, nil
}

func decodeAccountNamed(args json.RawMessage) (interface{}, error) {
	fields, err := namedFields(args)
	if err != nil {
		return nil, err
	}
	assetID, err := namedUint32(fields, "assetId")
	if err != nil {
		return nil, err
	}
	who, err := namedHexBytes(fields, "who")
	if err != nil {
		return nil, err
	}
	return model.AccountPayload{AssetID: assetID, Who: who}, nil
}

func decodeBurnedTuple(args json.RawMessage) (interface{}, error) {
	items, err := positional(args, 3)
	if err != nil {
		return nil, err
	}
	assetID, err := asUint32(items[0])
	if err != nil {
		return nil, err
	}
	owner, err := asHexBytes(items[1])
	if err != nil {
		return nil, err
	}
	balance, err := asAmount(items[2])
	if err != nil {
		return nil, err
	}
	return model.BurnedPayload{AssetID: assetID, Owner: owner, Balance: balance}, nil
}

func decodeBurnedNamed(args json.RawMessage) (interface{}, error) {
	fields, err := namedFields(args)
	if err != nil {
		return nil, err
	}
	assetID, err := namedUint32(fields, "assetId")
	if err != nil {
		return nil, err
	}
	owner, err := namedHexBytes(fields, "owner")
	if err != nil {
		return nil, err
	}
	balance, err := namedAmount(fields, "balance")
	if err != nil {
		return nil, err
	}
	return model.BurnedPayload{AssetID: assetID, Owner: owner, Balance: balance}, nil
}

func namedUint32(fields map[string]json.RawMessage, name string) (uint32, error) {
	raw, err := field(fields, name)
	if err != nil {
		return 0, err
	}
	return asUint32(raw)
}

func namedHexBytes(fields map[string]json.RawMessage, name string) (string, error) {
	raw, err := field(fields, name)
	if err != nil {
		return "", err
	}
	return asHexBytes(raw)
}

func namedAmount(fields map[string]json.RawMessage, name string) (string, error) {
	raw, err := field(fields, name)
	if err != nil {
		return "", err
	}
	return asAmount(raw)
}
