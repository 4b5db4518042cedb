package partner

import (
	"context"
	"fmt"
	"testing"

	"github.com/rifqipratama/sibat/internal/domain/models"
)

type fakeStore struct {
	partners map[int64]models.Partner
	nextID   int64
}

func newFakeStore() *fakeStore {
	return &fakeStore{partners: make(map[int64]models.Partner)}
}

func (f *fakeStore) CreatePartner(_ context.Context, p models.Partner) (int64, error) {
	for _, existing := range f.partners {
		if existing.Code == p.Code {
			return 0, fmt.Errorf("duplicate partner code %s", p.Code)
		}
	}
	f.nextID++
	p.ID = f.nextID
	f.partners[p.ID] = p
	return p.ID, nil
}

func (f *fakeStore) GetPartner(_ context.Context, id int64) (models.Partner, error) {
	p, ok := f.partners[id]
	if !ok {
		return models.Partner{}, fmt.Errorf("partner %d not found", id)
	}
	return p, nil
}

func (f *fakeStore) ListPartners(context.Context) ([]models.Partner, error) {
	var out []models.Partner
	for _, p := range f.partners {
		out = append(out, p)
	}
	return out, nil
}

func (f *fakeStore) ListPartnersByProvince(_ context.Context, provinceCode string) ([]models.Partner, error) {
	var out []models.Partner
	for _, p := range f.partners {
		if p.ProvinceCode == provinceCode && p.IsActive {
			out = append(out, p)
		}
	}
	return out, nil
}

func (f *fakeStore) SetPartnerActive(_ context.Context, id int64, active bool) error {
	p, ok := f.partners[id]
	if !ok {
		return fmt.Errorf("partner %d not found", id)
	}
	p.IsActive = active
	f.partners[id] = p
	return nil
}

type recordedAction struct {
	action, targetID string
}

type fakeAudit struct {
	entries []recordedAction
}

func (f *fakeAudit) Record(_ context.Context, _ models.User, action, _, targetID, _ string) {
	f.entries = append(f.entries, recordedAction{action: action, targetID: targetID})
}

var admin = models.User{ID: 1, Username: "admin", Role: models.RoleAdmin}

func validInput() models.NewPartnerInput {
	return models.NewPartnerInput{
		Name:         "RS Harapan Bunda",
		Type:         models.PartnerHospital,
		Code:         "rsx",
		ProvinceCode: "DKI",
		Phone:        "+62-21-555",
	}
}

func TestCreatePartner(t *testing.T) {
	store := newFakeStore()
	auditLog := &fakeAudit{}
	svc := NewService(store, auditLog, nil)

	p, err := svc.Create(context.Background(), admin, validInput())
	if err != nil {
		t.Fatal(err)
	}
	if p.Code != "RSX" {
		t.Errorf("code = %s, want uppercased RSX", p.Code)
	}
	if !p.IsActive {
		t.Error("new partner should start active")
	}
	if len(auditLog.entries) != 1 || auditLog.entries[0].action != "create_partner" {
		t.Errorf("audit entries = %+v", auditLog.entries)
	}
}

func TestCreatePartnerValidation(t *testing.T) {
	svc := NewService(newFakeStore(), nil, nil)
	ctx := context.Background()

	cases := []struct {
		name   string
		mutate func(*models.NewPartnerInput)
	}{
		{"missing name", func(in *models.NewPartnerInput) { in.Name = "" }},
		{"unknown type", func(in *models.NewPartnerInput) { in.Type = "apotek" }},
		{"bad code", func(in *models.NewPartnerInput) { in.Code = "RS X!" }},
		{"dashes only code", func(in *models.NewPartnerInput) { in.Code = "--" }},
		{"unknown province", func(in *models.NewPartnerInput) { in.ProvinceCode = "ZZZ" }},
	}
	for _, c := range cases {
		in := validInput()
		c.mutate(&in)
		if _, err := svc.Create(ctx, admin, in); err == nil {
			t.Errorf("%s: accepted", c.name)
		}
	}

	// Separators inside an alphanumeric code are fine.
	in := validInput()
	in.Code = "RS-X_1"
	if _, err := svc.Create(ctx, admin, in); err != nil {
		t.Errorf("code with separators rejected: %v", err)
	}
}

func TestToggleStatus(t *testing.T) {
	store := newFakeStore()
	auditLog := &fakeAudit{}
	svc := NewService(store, auditLog, nil)
	ctx := context.Background()

	p, err := svc.Create(ctx, admin, validInput())
	if err != nil {
		t.Fatal(err)
	}

	toggled, err := svc.ToggleStatus(ctx, admin, p.ID)
	if err != nil {
		t.Fatal(err)
	}
	if toggled.IsActive {
		t.Error("expected partner deactivated")
	}
	if got := auditLog.entries[len(auditLog.entries)-1].action; got != "deactivate_partner" {
		t.Errorf("audit action = %s", got)
	}

	toggled, err = svc.ToggleStatus(ctx, admin, p.ID)
	if err != nil {
		t.Fatal(err)
	}
	if !toggled.IsActive {
		t.Error("expected partner reactivated")
	}

	// Deactivation is soft; the row survives.
	if _, err := svc.Get(ctx, p.ID); err != nil {
		t.Errorf("partner disappeared after toggling: %v", err)
	}
}

func TestListByProvinceValidatesCode(t *testing.T) {
	svc := NewService(newFakeStore(), nil, nil)
	if _, err := svc.ListByProvince(context.Background(), "ZZZ"); err == nil {
		t.Error("unknown province accepted")
	}
}
