package projector

import (
	"context"
	"encoding/json"
	"fmt"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common/hexutil"

	"assetScope/internal/model"
	"assetScope/internal/ss58"
)

const (
	keyK1 = "0x1111111111111111111111111111111111111111111111111111111111111111"
	keyK2 = "0x2222222222222222222222222222222222222222222222222222222222222222"
	keyK3 = "0x3333333333333333333333333333333333333333333333333333333333333333"

	testPrefix = uint16(2)
)

// memoryLedger is an in-memory Gateway/Ledger for handler tests. Entities are
// cloned on both save and get so cross-event aliasing cannot hide bugs.
type memoryLedger struct {
	assets    map[string]*model.Asset
	accounts  map[string]*model.Account
	balances  map[string]*model.AssetBalance
	transfers map[string]*model.Transfer
	position  string
}

func newMemoryLedger() *memoryLedger {
	return &memoryLedger{
		assets:    make(map[string]*model.Asset),
		accounts:  make(map[string]*model.Account),
		balances:  make(map[string]*model.AssetBalance),
		transfers: make(map[string]*model.Transfer),
	}
}

func (m *memoryLedger) InTx(ctx context.Context, fn func(ledger Ledger) error) error {
	return fn(m)
}

func (m *memoryLedger) GetAsset(_ context.Context, id string) (*model.Asset, error) {
	asset, ok := m.assets[id]
	if !ok {
		return nil, nil
	}
	return cloneAsset(asset), nil
}

func (m *memoryLedger) SaveAsset(_ context.Context, asset *model.Asset) error {
	m.assets[asset.ID] = cloneAsset(asset)
	return nil
}

func (m *memoryLedger) GetAccount(_ context.Context, id string) (*model.Account, error) {
	account, ok := m.accounts[id]
	if !ok {
		return nil, nil
	}
	clone := *account
	return &clone, nil
}

func (m *memoryLedger) SaveAccount(_ context.Context, account *model.Account) error {
	clone := *account
	m.accounts[account.ID] = &clone
	return nil
}

func (m *memoryLedger) GetAssetBalance(_ context.Context, id string) (*model.AssetBalance, error) {
	balance, ok := m.balances[id]
	if !ok {
		return nil, nil
	}
	return cloneBalance(balance), nil
}

func (m *memoryLedger) SaveAssetBalance(_ context.Context, balance *model.AssetBalance) error {
	m.balances[balance.ID] = cloneBalance(balance)
	return nil
}

func (m *memoryLedger) SaveTransfer(_ context.Context, transfer *model.Transfer) error {
	clone := *transfer
	if transfer.Amount != nil {
		clone.Amount = new(big.Int).Set(transfer.Amount)
	}
	m.transfers[transfer.ID] = &clone
	return nil
}

func (m *memoryLedger) GetPosition(_ context.Context) (string, error) {
	return m.position, nil
}

func (m *memoryLedger) SavePosition(_ context.Context, eventID string) error {
	m.position = eventID
	return nil
}

func cloneAsset(asset *model.Asset) *model.Asset {
	clone := *asset
	if asset.TotalSupply != nil {
		clone.TotalSupply = new(big.Int).Set(asset.TotalSupply)
	}
	if asset.MinBalance != nil {
		clone.MinBalance = new(big.Int).Set(asset.MinBalance)
	}
	return &clone
}

func cloneBalance(balance *model.AssetBalance) *model.AssetBalance {
	clone := *balance
	if balance.Balance != nil {
		clone.Balance = new(big.Int).Set(balance.Balance)
	}
	return &clone
}

func record(t *testing.T, id string, name model.EventName, payload interface{}) model.NormalizedEventRecord {
	t.Helper()
	raw, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("marshal payload: %v", err)
	}
	return model.NormalizedEventRecord{
		ID:          id,
		Name:        name,
		BlockNumber: 370001,
		BlockHash:   "0xblock",
		Timestamp:   1648000000000,
		Payload:     raw,
	}
}

func encoded(t *testing.T, key string) string {
	t.Helper()
	raw, err := hexutil.Decode(key)
	if err != nil {
		t.Fatalf("decode key: %v", err)
	}
	address, err := ss58.Encode(raw, testPrefix)
	if err != nil {
		t.Fatalf("encode key: %v", err)
	}
	return address
}

func apply(t *testing.T, p *Projector, records ...model.NormalizedEventRecord) {
	t.Helper()
	for _, rec := range records {
		if err := p.Apply(context.Background(), rec); err != nil {
			t.Fatalf("apply %s %s: %v", rec.Name, rec.ID, err)
		}
	}
}

func baseSequence(t *testing.T) []model.NormalizedEventRecord {
	t.Helper()
	return []model.NormalizedEventRecord{
		record(t, "evt-1", model.EventCreated, model.CreatedPayload{AssetID: 7, Creator: keyK1, Owner: keyK2}),
		record(t, "evt-2", model.EventIssued, model.IssuedPayload{AssetID: 7, Owner: keyK2, TotalSupply: "1000"}),
		record(t, "evt-3", model.EventTransferred, model.TransferredPayload{AssetID: 7, From: keyK2, To: keyK3, Amount: "300"}),
	}
}

func TestCreatedProjectsAsset(t *testing.T) {
	ledger := newMemoryLedger()
	p := New(ledger, testPrefix, nil)

	apply(t, p, record(t, "evt-1", model.EventCreated, model.CreatedPayload{AssetID: 7, Creator: keyK1, Owner: keyK2}))

	asset := ledger.assets["7"]
	if asset == nil {
		t.Fatalf("asset 7 not created")
	}
	if asset.Creator == nil || *asset.Creator != encoded(t, keyK1) {
		t.Fatalf("creator mismatch: %+v", asset.Creator)
	}
	if asset.Owner == nil || *asset.Owner != encoded(t, keyK2) {
		t.Fatalf("owner mismatch: %+v", asset.Owner)
	}
	if asset.Status != model.StatusActive {
		t.Fatalf("status mismatch: %s", asset.Status)
	}
	if asset.TotalSupply.Sign() != 0 {
		t.Fatalf("total supply should be zero: %s", asset.TotalSupply)
	}
}

func TestIssuedMintsBalanceAndTransfer(t *testing.T) {
	ledger := newMemoryLedger()
	p := New(ledger, testPrefix, nil)

	apply(t, p,
		record(t, "evt-1", model.EventCreated, model.CreatedPayload{AssetID: 7, Creator: keyK1, Owner: keyK2}),
		record(t, "evt-2", model.EventIssued, model.IssuedPayload{AssetID: 7, Owner: keyK2, TotalSupply: "1000"}),
	)

	owner := encoded(t, keyK2)
	balance := ledger.balances[model.BalanceID("7", owner)]
	if balance == nil {
		t.Fatalf("balance row missing")
	}
	if balance.Balance.Cmp(big.NewInt(1000)) != 0 {
		t.Fatalf("balance mismatch: %s", balance.Balance)
	}

	transfer := ledger.transfers["evt-2"]
	if transfer == nil {
		t.Fatalf("transfer row missing")
	}
	if transfer.Type != model.TransferMint || !transfer.Success {
		t.Fatalf("transfer mismatch: %+v", transfer)
	}
	if transfer.To == nil || *transfer.To != owner {
		t.Fatalf("transfer recipient mismatch: %+v", transfer.To)
	}
	if transfer.Amount.Cmp(big.NewInt(1000)) != 0 {
		t.Fatalf("transfer amount mismatch: %s", transfer.Amount)
	}
	if ledger.assets["7"].TotalSupply.Cmp(big.NewInt(1000)) != 0 {
		t.Fatalf("total supply mismatch: %s", ledger.assets["7"].TotalSupply)
	}
}

func TestIssuedAccumulatesTotalSupply(t *testing.T) {
	ledger := newMemoryLedger()
	p := New(ledger, testPrefix, nil)

	apply(t, p,
		record(t, "evt-1", model.EventIssued, model.IssuedPayload{AssetID: 7, Owner: keyK2, TotalSupply: "1000"}),
		record(t, "evt-2", model.EventIssued, model.IssuedPayload{AssetID: 7, Owner: keyK2, TotalSupply: "500"}),
	)

	if ledger.assets["7"].TotalSupply.Cmp(big.NewInt(1500)) != 0 {
		t.Fatalf("total supply should accumulate: %s", ledger.assets["7"].TotalSupply)
	}
	owner := encoded(t, keyK2)
	if ledger.balances[model.BalanceID("7", owner)].Balance.Cmp(big.NewInt(1500)) != 0 {
		t.Fatalf("balance should accumulate")
	}
}

func TestTransferredMovesBalance(t *testing.T) {
	ledger := newMemoryLedger()
	p := New(ledger, testPrefix, nil)

	apply(t, p, baseSequence(t)...)

	from := encoded(t, keyK2)
	to := encoded(t, keyK3)
	if got := ledger.balances[model.BalanceID("7", from)].Balance; got.Cmp(big.NewInt(700)) != 0 {
		t.Fatalf("sender balance mismatch: %s", got)
	}
	if got := ledger.balances[model.BalanceID("7", to)].Balance; got.Cmp(big.NewInt(300)) != 0 {
		t.Fatalf("recipient balance mismatch: %s", got)
	}

	transfer := ledger.transfers["evt-3"]
	if transfer.Type != model.TransferRegular {
		t.Fatalf("transfer type mismatch: %s", transfer.Type)
	}
	if *transfer.From != from || *transfer.To != to {
		t.Fatalf("transfer parties mismatch: %+v", transfer)
	}
}

func TestBurnedDebitsBalance(t *testing.T) {
	ledger := newMemoryLedger()
	p := New(ledger, testPrefix, nil)

	sequence := append(baseSequence(t),
		record(t, "evt-4", model.EventBurned, model.BurnedPayload{AssetID: 7, Owner: keyK3, Balance: "100"}))
	apply(t, p, sequence...)

	holder := encoded(t, keyK3)
	if got := ledger.balances[model.BalanceID("7", holder)].Balance; got.Cmp(big.NewInt(200)) != 0 {
		t.Fatalf("balance after burn mismatch: %s", got)
	}
	transfer := ledger.transfers["evt-4"]
	if transfer.Type != model.TransferBurn || *transfer.From != holder {
		t.Fatalf("burn transfer mismatch: %+v", transfer)
	}
}

func TestTransferredApprovedRecordsDelegator(t *testing.T) {
	ledger := newMemoryLedger()
	p := New(ledger, testPrefix, nil)

	sequence := append(baseSequence(t),
		record(t, "evt-4", model.EventTransferredApproved, model.TransferredApprovedPayload{
			AssetID: 7, Owner: keyK2, Delegate: keyK1, Destination: keyK3, Amount: "50",
		}))
	apply(t, p, sequence...)

	if got := ledger.balances[model.BalanceID("7", encoded(t, keyK2))].Balance; got.Cmp(big.NewInt(650)) != 0 {
		t.Fatalf("owner balance mismatch: %s", got)
	}
	if got := ledger.balances[model.BalanceID("7", encoded(t, keyK3))].Balance; got.Cmp(big.NewInt(350)) != 0 {
		t.Fatalf("destination balance mismatch: %s", got)
	}

	transfer := ledger.transfers["evt-4"]
	if transfer.Type != model.TransferDelegate {
		t.Fatalf("transfer type mismatch: %s", transfer.Type)
	}
	if transfer.Delegator == nil || *transfer.Delegator != encoded(t, keyK1) {
		t.Fatalf("delegator mismatch: %+v", transfer.Delegator)
	}
}

func TestFrozenAndThawedBalanceStatus(t *testing.T) {
	ledger := newMemoryLedger()
	p := New(ledger, testPrefix, nil)

	sequence := append(baseSequence(t),
		record(t, "evt-4", model.EventFrozen, model.AccountPayload{AssetID: 7, Who: keyK2}))
	apply(t, p, sequence...)

	who := encoded(t, keyK2)
	balance := ledger.balances[model.BalanceID("7", who)]
	if balance.Status != model.StatusFrozen {
		t.Fatalf("balance should be frozen: %s", balance.Status)
	}
	transfer := ledger.transfers["evt-4"]
	if transfer.Type != model.TransferFreeze || *transfer.From != who {
		t.Fatalf("freeze transfer mismatch: %+v", transfer)
	}
	if transfer.Amount.Cmp(big.NewInt(700)) != 0 {
		t.Fatalf("freeze amount should be current balance: %s", transfer.Amount)
	}

	apply(t, p, record(t, "evt-5", model.EventThawed, model.AccountPayload{AssetID: 7, Who: keyK2}))
	if ledger.balances[model.BalanceID("7", who)].Status != model.StatusActive {
		t.Fatalf("balance should be active after thaw")
	}
	if ledger.transfers["evt-5"].Type != model.TransferThaw {
		t.Fatalf("thaw transfer mismatch")
	}
}

func TestAssetStatusTransitions(t *testing.T) {
	ledger := newMemoryLedger()
	p := New(ledger, testPrefix, nil)

	apply(t, p,
		record(t, "evt-1", model.EventAssetFrozen, model.AssetPayload{AssetID: 7}),
	)
	if ledger.assets["7"].Status != model.StatusFrozen {
		t.Fatalf("asset should be frozen")
	}

	apply(t, p, record(t, "evt-2", model.EventAssetThawed, model.AssetPayload{AssetID: 7}))
	if ledger.assets["7"].Status != model.StatusActive {
		t.Fatalf("asset should be active")
	}

	apply(t, p, record(t, "evt-3", model.EventDestroyed, model.AssetPayload{AssetID: 7}))
	if ledger.assets["7"].Status != model.StatusDestroyed {
		t.Fatalf("asset should be destroyed")
	}
}

func TestLazyAssetCreation(t *testing.T) {
	ledger := newMemoryLedger()
	p := New(ledger, testPrefix, nil)

	apply(t, p, record(t, "evt-1", model.EventOwnerChanged, model.OwnerChangedPayload{AssetID: 99, Owner: keyK2}))

	asset := ledger.assets["99"]
	if asset == nil {
		t.Fatalf("asset should be lazily created")
	}
	if asset.Status != model.StatusActive || asset.TotalSupply.Sign() != 0 {
		t.Fatalf("default fields mismatch: %+v", asset)
	}
	if asset.Creator != nil {
		t.Fatalf("creator should be unset")
	}
}

func TestMetadataSetAndCleared(t *testing.T) {
	ledger := newMemoryLedger()
	p := New(ledger, testPrefix, nil)

	name := hexutil.Encode([]byte("Kusama Token"))
	symbol := hexutil.Encode([]byte("KTK"))
	apply(t, p, record(t, "evt-1", model.EventMetadataSet, model.MetadataSetPayload{
		AssetID: 7, Name: name, Symbol: symbol, Decimals: 12, IsFrozen: true,
	}))

	asset := ledger.assets["7"]
	if asset.Name == nil || *asset.Name != "Kusama Token" {
		t.Fatalf("name mismatch: %+v", asset.Name)
	}
	if asset.Symbol == nil || *asset.Symbol != "KTK" {
		t.Fatalf("symbol mismatch: %+v", asset.Symbol)
	}
	if asset.Decimal == nil || *asset.Decimal != 12 {
		t.Fatalf("decimal mismatch: %+v", asset.Decimal)
	}
	if asset.Status != model.StatusFrozen {
		t.Fatalf("status should be frozen")
	}

	apply(t, p, record(t, "evt-2", model.EventMetadataCleared, model.AssetPayload{AssetID: 7}))
	asset = ledger.assets["7"]
	if asset.Name != nil || asset.Symbol != nil || asset.Decimal != nil {
		t.Fatalf("metadata should be cleared: %+v", asset)
	}
	if asset.Status != model.StatusFrozen {
		t.Fatalf("clearing metadata must not regress frozen status: %s", asset.Status)
	}
}

func TestReplayOfSetEventsIsIdempotent(t *testing.T) {
	ledger := newMemoryLedger()
	p := New(ledger, testPrefix, nil)

	name := hexutil.Encode([]byte("Token"))
	symbol := hexutil.Encode([]byte("TOK"))
	sequence := []model.NormalizedEventRecord{
		record(t, "evt-1", model.EventCreated, model.CreatedPayload{AssetID: 7, Creator: keyK1, Owner: keyK2}),
		record(t, "evt-2", model.EventMetadataSet, model.MetadataSetPayload{AssetID: 7, Name: name, Symbol: symbol, Decimals: 10}),
		record(t, "evt-3", model.EventTeamChanged, model.TeamChangedPayload{AssetID: 7, Issuer: keyK1, Admin: keyK2, Freezer: keyK3}),
		record(t, "evt-4", model.EventFrozen, model.AccountPayload{AssetID: 7, Who: keyK3}),
		record(t, "evt-5", model.EventThawed, model.AccountPayload{AssetID: 7, Who: keyK3}),
	}

	apply(t, p, sequence...)
	first := snapshot(ledger)

	apply(t, p, sequence...)
	second := snapshot(ledger)

	if first != second {
		t.Fatalf("replay changed state:\n%s\n!=\n%s", first, second)
	}
}

func TestRedeliveredEventIsNoOp(t *testing.T) {
	ledger := newMemoryLedger()
	p := New(ledger, testPrefix, nil)

	sequence := baseSequence(t)
	apply(t, p, sequence...)

	// Same Transferred record again, as after a crash between events.
	apply(t, p, sequence[2])

	from := encoded(t, keyK2)
	to := encoded(t, keyK3)
	if got := ledger.balances[model.BalanceID("7", from)].Balance; got.Cmp(big.NewInt(700)) != 0 {
		t.Fatalf("sender balance changed on re-delivery: %s", got)
	}
	if got := ledger.balances[model.BalanceID("7", to)].Balance; got.Cmp(big.NewInt(300)) != 0 {
		t.Fatalf("recipient balance changed on re-delivery: %s", got)
	}
	if ledger.assets["7"].TotalSupply.Cmp(big.NewInt(1000)) != 0 {
		t.Fatalf("total supply changed on re-delivery: %s", ledger.assets["7"].TotalSupply)
	}
}

func TestReplayIsIdempotent(t *testing.T) {
	ledger := newMemoryLedger()
	p := New(ledger, testPrefix, nil)

	sequence := append(baseSequence(t),
		record(t, "evt-4", model.EventFrozen, model.AccountPayload{AssetID: 7, Who: keyK3}),
		record(t, "evt-5", model.EventThawed, model.AccountPayload{AssetID: 7, Who: keyK3}),
		record(t, "evt-6", model.EventBurned, model.BurnedPayload{AssetID: 7, Owner: keyK3, Balance: "100"}),
	)

	apply(t, p, sequence...)
	first := snapshot(ledger)

	apply(t, p, sequence...)
	second := snapshot(ledger)

	if first != second {
		t.Fatalf("replay changed state:\n%s\n!=\n%s", first, second)
	}
	if len(ledger.transfers) != 5 {
		t.Fatalf("expected 5 transfer rows, got %d", len(ledger.transfers))
	}
}

func TestOneTransferRowPerEvent(t *testing.T) {
	ledger := newMemoryLedger()
	p := New(ledger, testPrefix, nil)

	sequence := append(baseSequence(t),
		record(t, "evt-4", model.EventBurned, model.BurnedPayload{AssetID: 7, Owner: keyK3, Balance: "100"}))

	apply(t, p, sequence...)
	apply(t, p, sequence...)

	// evt-1 is Created, the other three each append one event-keyed transfer.
	if len(ledger.transfers) != 3 {
		t.Fatalf("expected 3 transfer rows, got %d", len(ledger.transfers))
	}
}

func TestMalformedAddressAbortsEvent(t *testing.T) {
	ledger := newMemoryLedger()
	p := New(ledger, testPrefix, nil)

	err := p.Apply(context.Background(), record(t, "evt-1", model.EventCreated, model.CreatedPayload{
		AssetID: 7, Creator: "0x0102", Owner: keyK2,
	}))
	if err == nil {
		t.Fatalf("expected error for short key")
	}
	if len(ledger.assets) != 0 || len(ledger.transfers) != 0 {
		t.Fatalf("ledger should be untouched on failure")
	}
}

// snapshot flattens the ledger into a stable string for replay comparison.
func snapshot(ledger *memoryLedger) string {
	out := ""
	for _, id := range sortedKeys(ledger.assets) {
		asset := ledger.assets[id]
		out += fmt.Sprintf("asset %s status=%s supply=%s owner=%s\n",
			id, asset.Status, asset.TotalSupply, deref(asset.Owner))
	}
	for _, id := range sortedKeys(ledger.balances) {
		balance := ledger.balances[id]
		out += fmt.Sprintf("balance %s amount=%s status=%s\n", id, balance.Balance, balance.Status)
	}
	for _, id := range sortedKeys(ledger.transfers) {
		transfer := ledger.transfers[id]
		out += fmt.Sprintf("transfer %s type=%s amount=%s\n", id, transfer.Type, transfer.Amount)
	}
	return out
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	for i := 1; i < len(keys); i++ {
		for j := i; j > 0 && keys[j] < keys[j-1]; j-- {
			keys[j], keys[j-1] = keys[j-1], keys[j]
		}
	}
	return keys
}

func deref(value *string) string {
	if value == nil {
		return ""
	}
	return *value
}
