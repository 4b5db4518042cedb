package protocol

import (
	"context"
	"fmt"
	"math/rand"
	"testing"
	"time"

	"github.com/rifqipratama/sibat/internal/domain/models"
)

// fakeStore keeps protocols and per-partner ledgers in memory, applying
// the same relative updates the SQL implementation does.
type fakeStore struct {
	partners  map[int64]models.Partner
	protocols map[int64]models.Protocol
	byCode    map[string]int64
	allocated map[int64]int
	used      map[int64]int
	nextID    int64
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		partners:  make(map[int64]models.Partner),
		protocols: make(map[int64]models.Protocol),
		byCode:    make(map[string]int64),
		allocated: make(map[int64]int),
		used:      make(map[int64]int),
	}
}

func (f *fakeStore) addPartner(p models.Partner) {
	f.partners[p.ID] = p
}

func (f *fakeStore) GetPartner(_ context.Context, id int64) (models.Partner, error) {
	p, ok := f.partners[id]
	if !ok {
		return models.Partner{}, fmt.Errorf("partner %d not found", id)
	}
	return p, nil
}

func (f *fakeStore) CreateProtocolBatch(_ context.Context, batch []models.Protocol) error {
	for _, p := range batch {
		if _, dup := f.byCode[p.Code]; dup {
			return fmt.Errorf("duplicate code %s", p.Code)
		}
	}
	for _, p := range batch {
		f.nextID++
		p.ID = f.nextID
		f.protocols[p.ID] = p
		f.byCode[p.Code] = p.ID
	}
	f.allocated[batch[0].PartnerID] += len(batch)
	return nil
}

func (f *fakeStore) GetProtocol(_ context.Context, id int64) (models.Protocol, error) {
	p, ok := f.protocols[id]
	if !ok {
		return models.Protocol{}, fmt.Errorf("protocol %d not found", id)
	}
	return p, nil
}

func (f *fakeStore) GetProtocolByCode(_ context.Context, code string) (models.Protocol, error) {
	id, ok := f.byCode[code]
	if !ok {
		return models.Protocol{}, fmt.Errorf("code %s not found", code)
	}
	return f.protocols[id], nil
}

func (f *fakeStore) UpdateProtocolStatus(_ context.Context, id int64, status models.ProtocolStatus, updatedBy, partnerID int64, usedDelta int) error {
	p, ok := f.protocols[id]
	if !ok {
		return fmt.Errorf("protocol %d not found", id)
	}
	p.Status = status
	p.UpdatedBy = updatedBy
	f.protocols[id] = p
	f.used[partnerID] += usedDelta
	return nil
}

func (f *fakeStore) ListProtocols(context.Context, time.Time, time.Time, int) ([]models.Protocol, error) {
	return nil, nil
}

func (f *fakeStore) available(partnerID int64) int {
	return f.allocated[partnerID] - f.used[partnerID]
}

func newTestService(store Store) *Service {
	gen := &Generator{now: func() time.Time { return time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC) }}
	return NewService(store, gen, nil, nil, nil)
}

var operator = models.User{ID: 7, Username: "op", Role: models.RoleOperator}

func seedPartner(f *fakeStore) models.Partner {
	p := models.Partner{ID: 1, Name: "RS Harapan", Code: "RSX", ProvinceCode: "DKI", Type: models.PartnerHospital, IsActive: true}
	f.addPartner(p)
	return p
}

func TestCreateBatchQuantityBounds(t *testing.T) {
	store := newFakeStore()
	seedPartner(store)
	svc := newTestService(store)
	ctx := context.Background()

	for _, qty := range []int{0, -1, 101} {
		if _, err := svc.CreateBatch(ctx, operator, "DKI", 1, qty); err == nil {
			t.Errorf("quantity %d accepted, want rejection", qty)
		}
	}

	result, err := svc.CreateBatch(ctx, operator, "DKI", 1, 100)
	if err != nil {
		t.Fatalf("quantity 100 rejected: %v", err)
	}
	if len(result.Codes) != 100 {
		t.Errorf("expected 100 codes, got %d", len(result.Codes))
	}
	if got := store.allocated[1]; got != 100 {
		t.Errorf("allocated = %d, want 100", got)
	}
}

func TestCreateBatchValidation(t *testing.T) {
	store := newFakeStore()
	p := seedPartner(store)
	inactive := models.Partner{ID: 2, Name: "Klinik Tutup", Code: "KLT", ProvinceCode: "DKI", Type: models.PartnerClinic}
	store.addPartner(inactive)
	svc := newTestService(store)
	ctx := context.Background()

	if _, err := svc.CreateBatch(ctx, operator, "ZZZ", p.ID, 1); err == nil {
		t.Error("unknown province accepted")
	}
	if _, err := svc.CreateBatch(ctx, operator, "DKI", 99, 1); err == nil {
		t.Error("unknown partner accepted")
	}
	if _, err := svc.CreateBatch(ctx, operator, "DKI", inactive.ID, 1); err == nil {
		t.Error("inactive partner accepted")
	}
}

func TestCreateBatchCodes(t *testing.T) {
	store := newFakeStore()
	seedPartner(store)
	svc := newTestService(store)
	ctx := context.Background()

	single, err := svc.CreateBatch(ctx, operator, "DKI", 1, 1)
	if err != nil {
		t.Fatal(err)
	}
	if got := single.Codes[0]; got[:14] != "20260314DKIRSX" {
		t.Errorf("code %s missing expected prefix", got)
	}

	batch, err := svc.CreateBatch(ctx, operator, "DKI", 1, 3)
	if err != nil {
		t.Fatal(err)
	}
	seen := map[string]bool{}
	for _, code := range batch.Codes {
		if seen[code] {
			t.Fatalf("duplicate code %s in batch", code)
		}
		seen[code] = true
		if store.byCode[code] == 0 {
			t.Errorf("code %s not persisted", code)
		}
	}
}

func TestSetStatusSameStatusKeepsLedger(t *testing.T) {
	store := newFakeStore()
	seedPartner(store)
	svc := newTestService(store)
	ctx := context.Background()

	if _, err := svc.CreateBatch(ctx, operator, "DKI", 1, 1); err != nil {
		t.Fatal(err)
	}

	if _, err := svc.SetStatus(ctx, operator, 1, "created"); err != nil {
		t.Fatal(err)
	}
	if store.used[1] != 0 {
		t.Errorf("used = %d after created->created, want 0", store.used[1])
	}

	if _, err := svc.SetStatus(ctx, operator, 1, "terpakai"); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.SetStatus(ctx, operator, 1, "terpakai"); err != nil {
		t.Fatal(err)
	}
	if store.used[1] != 1 {
		t.Errorf("used = %d after repeated terpakai, want 1", store.used[1])
	}
}

func TestStatusReplayNetsUsedCounter(t *testing.T) {
	store := newFakeStore()
	seedPartner(store)
	svc := newTestService(store)
	ctx := context.Background()

	if _, err := svc.CreateBatch(ctx, operator, "DKI", 1, 1); err != nil {
		t.Fatal(err)
	}

	// created -> terpakai -> delivered -> terpakai nets one entry.
	for _, status := range []string{"terpakai", "delivered", "terpakai"} {
		if _, err := svc.SetStatus(ctx, operator, 1, status); err != nil {
			t.Fatal(err)
		}
	}
	if store.used[1] != 1 {
		t.Errorf("used = %d, want 1", store.used[1])
	}
	if got := store.available(1); got != 0 {
		t.Errorf("available = %d, want 0", got)
	}
}

func TestSetStatusRejectsUnknown(t *testing.T) {
	store := newFakeStore()
	seedPartner(store)
	svc := newTestService(store)
	ctx := context.Background()

	if _, err := svc.CreateBatch(ctx, operator, "DKI", 1, 1); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.SetStatus(ctx, operator, 1, "lost"); err == nil {
		t.Error("unknown status accepted")
	}
}

func TestConfirmScan(t *testing.T) {
	store := newFakeStore()
	seedPartner(store)
	svc := newTestService(store)
	ctx := context.Background()

	result, err := svc.CreateBatch(ctx, operator, "DKI", 1, 1)
	if err != nil {
		t.Fatal(err)
	}
	code := result.Codes[0]

	p, err := svc.ConfirmScan(ctx, operator, code, models.ActionMarkDelivered)
	if err != nil {
		t.Fatal(err)
	}
	if p.Status != models.StatusDelivered {
		t.Errorf("status = %s, want delivered", p.Status)
	}

	p, err = svc.ConfirmScan(ctx, operator, code, models.ActionMarkUsed)
	if err != nil {
		t.Fatal(err)
	}
	if p.Status != models.StatusUsed {
		t.Errorf("status = %s, want terpakai", p.Status)
	}
	if store.used[1] != 1 {
		t.Errorf("used = %d, want 1", store.used[1])
	}

	if _, err := svc.ConfirmScan(ctx, operator, code, models.ScanAction("mark_lost")); err == nil {
		t.Error("unknown action accepted")
	}
}

func TestLedgerInvariantUnderRandomTransitions(t *testing.T) {
	store := newFakeStore()
	seedPartner(store)
	svc := newTestService(store)
	ctx := context.Background()

	rng := rand.New(rand.NewSource(42))
	var ids []int64
	for i := 0; i < 5; i++ {
		qty := rng.Intn(10) + 1
		if _, err := svc.CreateBatch(ctx, operator, "DKI", 1, qty); err != nil {
			t.Fatal(err)
		}
	}
	for id := range store.protocols {
		ids = append(ids, id)
	}

	statuses := []string{"created", "delivered", "terpakai"}
	usedNow := 0
	for i := 0; i < 500; i++ {
		id := ids[rng.Intn(len(ids))]
		before := store.protocols[id].Status
		next := statuses[rng.Intn(len(statuses))]
		if _, err := svc.SetStatus(ctx, operator, id, next); err != nil {
			t.Fatal(err)
		}
		usedNow += models.UsedDelta(before, models.ProtocolStatus(next))
	}

	if store.used[1] != usedNow {
		t.Errorf("ledger used = %d, replayed deltas = %d", store.used[1], usedNow)
	}
	if got, want := store.available(1), store.allocated[1]-store.used[1]; got != want {
		t.Errorf("available = %d, want allocated-used = %d", got, want)
	}

	// Cross-check against the actual protocol rows.
	actualUsed := 0
	for _, p := range store.protocols {
		if p.Status == models.StatusUsed {
			actualUsed++
		}
	}
	if actualUsed != store.used[1] {
		t.Errorf("rows in terpakai = %d, ledger used = %d", actualUsed, store.used[1])
	}
}
