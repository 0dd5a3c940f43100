package registry

import (
	"errors"
	"testing"

	"veridian-hq/saturn/pkg/template"
)

func validTemplate(id string) *template.Template {
	return &template.Template{
		TemplateID:   id,
		DisplayName:  "Test Template",
		Version:      "1.0.0",
		Client:       "acme",
		DocumentType: "job_sheet",
		FieldRules: map[string]*template.FieldEntry{
			"serialNumber": {
				Kind:  template.EntryKindField,
				Field: &template.FieldRule{Required: true},
			},
		},
	}
}

func validPack(templates ...*template.Template) *template.SpecPack {
	return &template.SpecPack{
		PackVersion: "1.0.0",
		PackID:      "acme-job-sheets",
		DisplayName: "ACME Job Sheets",
		Client:      "acme",
		Defaults: template.PackDefaults{
			DateFormat: "02/01/2006",
			Timezone:   "Europe/London",
		},
		Templates: templates,
	}
}

func TestLoadPack_RegistersActive(t *testing.T) {
	reg := New(nil)
	pack := validPack(validTemplate("ACME_PUMP_V1"), validTemplate("ACME_VALVE_V1"))

	result, err := reg.LoadPack(pack)
	if err != nil {
		t.Fatalf("LoadPack() error = %v, want nil", err)
	}

	if len(result.Registered) != 2 {
		t.Errorf("registered = %v, want 2 templates", result.Registered)
	}
	if len(result.Inactive) != 0 {
		t.Errorf("inactive = %v, want none", result.Inactive)
	}

	tmpl, ok := reg.GetTemplate("ACME_PUMP_V1")
	if !ok {
		t.Fatal("GetTemplate(ACME_PUMP_V1) ok = false, want true")
	}
	if tmpl.TemplateID != "ACME_PUMP_V1" {
		t.Errorf("templateId = %s, want ACME_PUMP_V1", tmpl.TemplateID)
	}
}

func TestLoadPack_PerTemplateErrorForcesInactive(t *testing.T) {
	reg := New(nil)
	broken := validTemplate("ACME_VALVE_V1")
	broken.Version = "not-semver"
	pack := validPack(validTemplate("ACME_PUMP_V1"), broken)

	result, err := reg.LoadPack(pack)
	if err != nil {
		t.Fatalf("LoadPack() error = %v, want nil for per-template errors", err)
	}

	if len(result.Registered) != 1 || result.Registered[0] != "ACME_PUMP_V1" {
		t.Errorf("registered = %v, want [ACME_PUMP_V1]", result.Registered)
	}
	if len(result.Inactive) != 1 || result.Inactive[0] != "ACME_VALVE_V1" {
		t.Errorf("inactive = %v, want [ACME_VALVE_V1]", result.Inactive)
	}

	// Inactive templates are invisible to consumers.
	if _, ok := reg.GetTemplate("ACME_VALVE_V1"); ok {
		t.Error("GetTemplate(ACME_VALVE_V1) ok = true, want false for inactive template")
	}

	// But the registration itself is inspectable with its error list.
	regEntry, ok := reg.GetRegistration("ACME_VALVE_V1")
	if !ok {
		t.Fatal("GetRegistration(ACME_VALVE_V1) ok = false, want true")
	}
	if regEntry.Status != StatusInactive {
		t.Errorf("status = %s, want inactive", regEntry.Status)
	}
	if len(regEntry.ValidationErrors) == 0 {
		t.Error("ValidationErrors empty, want the structural errors attached")
	}
}

func TestLoadPack_PackLevelErrorBlocksRegistration(t *testing.T) {
	reg := New(nil)
	pack := validPack(validTemplate("ACME_PUMP_V1"))
	pack.Client = ""

	_, err := reg.LoadPack(pack)
	if err == nil {
		t.Fatal("LoadPack() error = nil, want error for pack-level structural problem")
	}
	var regErr *RegistryError
	if !errors.As(err, &regErr) {
		t.Errorf("error type = %T, want *RegistryError", err)
	}

	// No partial state left behind.
	if reg.Count() != 0 {
		t.Errorf("Count() = %d after rejected pack, want 0", reg.Count())
	}
}

func TestLoadPack_NilPack(t *testing.T) {
	reg := New(nil)
	if _, err := reg.LoadPack(nil); err == nil {
		t.Error("LoadPack(nil) error = nil, want error")
	}
}

func TestActiveTemplates_SortedByID(t *testing.T) {
	reg := New(nil)
	pack := validPack(
		validTemplate("ZULU_PUMP_V1"),
		validTemplate("ALPHA_PUMP_V1"),
		validTemplate("MIKE_PUMP_V1"),
	)
	if _, err := reg.LoadPack(pack); err != nil {
		t.Fatalf("LoadPack() error = %v, want nil", err)
	}

	active := reg.ActiveTemplates()
	want := []string{"ALPHA_PUMP_V1", "MIKE_PUMP_V1", "ZULU_PUMP_V1"}
	if len(active) != len(want) {
		t.Fatalf("ActiveTemplates() = %d entries, want %d", len(active), len(want))
	}
	for i, id := range want {
		if active[i].TemplateID != id {
			t.Errorf("active[%d] = %s, want %s", i, active[i].TemplateID, id)
		}
	}
}

func TestDeactivateAndReactivate(t *testing.T) {
	reg := New(nil)
	pack := validPack(validTemplate("ACME_PUMP_V1"))
	if _, err := reg.LoadPack(pack); err != nil {
		t.Fatalf("LoadPack() error = %v, want nil", err)
	}

	if err := reg.DeactivateTemplate("ACME_PUMP_V1"); err != nil {
		t.Fatalf("DeactivateTemplate() error = %v, want nil", err)
	}
	if _, ok := reg.GetTemplate("ACME_PUMP_V1"); ok {
		t.Error("GetTemplate() ok = true after deactivation, want false")
	}

	if err := reg.ActivateTemplate("ACME_PUMP_V1"); err != nil {
		t.Fatalf("ActivateTemplate() error = %v, want nil for structurally valid template", err)
	}
	if _, ok := reg.GetTemplate("ACME_PUMP_V1"); !ok {
		t.Error("GetTemplate() ok = false after reactivation, want true")
	}
}

func TestActivateTemplate_BlockedWhileBroken(t *testing.T) {
	reg := New(nil)
	broken := validTemplate("ACME_VALVE_V1")
	broken.Version = "not-semver"
	pack := validPack(validTemplate("ACME_PUMP_V1"), broken)
	if _, err := reg.LoadPack(pack); err != nil {
		t.Fatalf("LoadPack() error = %v, want nil", err)
	}

	err := reg.ActivateTemplate("ACME_VALVE_V1")
	if err == nil {
		t.Fatal("ActivateTemplate() error = nil, want activation blocked")
	}

	var actErr *ActivationError
	if !errors.As(err, &actErr) {
		t.Fatalf("error type = %T, want *ActivationError", err)
	}
	if len(actErr.Issues) == 0 {
		t.Fatal("ActivationError has no issues, want the blocking list")
	}
	for _, issue := range actErr.Issues {
		if issue.FixPath == "" {
			t.Errorf("issue %q has empty fixPath", issue.Message)
		}
	}

	// Status is unchanged on a failed activation.
	regEntry, _ := reg.GetRegistration("ACME_VALVE_V1")
	if regEntry.Status != StatusInactive {
		t.Errorf("status = %s after failed activation, want inactive", regEntry.Status)
	}
}

func TestActivateTemplate_NotFound(t *testing.T) {
	reg := New(nil)

	err := reg.ActivateTemplate("ACME_GONE_V1")
	if err == nil {
		t.Fatal("ActivateTemplate() error = nil, want not-found error")
	}
	var regErr *RegistryError
	if !errors.As(err, &regErr) {
		t.Errorf("error type = %T, want *RegistryError", err)
	}
}

func TestDeprecateTemplate(t *testing.T) {
	reg := New(nil)
	pack := validPack(validTemplate("ACME_PUMP_V1"))
	if _, err := reg.LoadPack(pack); err != nil {
		t.Fatalf("LoadPack() error = %v, want nil", err)
	}

	if err := reg.DeprecateTemplate("ACME_PUMP_V1"); err != nil {
		t.Fatalf("DeprecateTemplate() error = %v, want nil", err)
	}
	if _, ok := reg.GetTemplate("ACME_PUMP_V1"); ok {
		t.Error("GetTemplate() ok = true for deprecated template, want false")
	}
}

func TestHasTemplateChanged(t *testing.T) {
	reg := New(nil)
	pack := validPack(validTemplate("ACME_PUMP_V1"))
	if _, err := reg.LoadPack(pack); err != nil {
		t.Fatalf("LoadPack() error = %v, want nil", err)
	}

	same := validTemplate("ACME_PUMP_V1")
	changed, err := reg.HasTemplateChanged("ACME_PUMP_V1", same)
	if err != nil {
		t.Fatalf("HasTemplateChanged() error = %v, want nil", err)
	}
	if changed {
		t.Error("HasTemplateChanged() = true for identical content, want false")
	}

	drifted := validTemplate("ACME_PUMP_V1")
	drifted.DisplayName = "Renamed Template"
	changed, err = reg.HasTemplateChanged("ACME_PUMP_V1", drifted)
	if err != nil {
		t.Fatalf("HasTemplateChanged() error = %v, want nil", err)
	}
	if !changed {
		t.Error("HasTemplateChanged() = false for drifted content, want true")
	}
}

func TestVersion_ChangesOnStatusTransition(t *testing.T) {
	reg := New(nil)
	pack := validPack(validTemplate("ACME_PUMP_V1"))
	if _, err := reg.LoadPack(pack); err != nil {
		t.Fatalf("LoadPack() error = %v, want nil", err)
	}

	before := reg.Version()
	if before == "" {
		t.Fatal("Version() empty after load, want a hash")
	}

	if err := reg.DeactivateTemplate("ACME_PUMP_V1"); err != nil {
		t.Fatalf("DeactivateTemplate() error = %v, want nil", err)
	}

	after := reg.Version()
	if after == before {
		t.Error("Version() unchanged across status transition, want a new hash")
	}
}

func TestVersion_DeterministicForIdenticalContents(t *testing.T) {
	regA := New(nil)
	regB := New(nil)

	packA := validPack(validTemplate("ACME_PUMP_V1"), validTemplate("ACME_VALVE_V1"))
	packB := validPack(validTemplate("ACME_VALVE_V1"), validTemplate("ACME_PUMP_V1"))

	if _, err := regA.LoadPack(packA); err != nil {
		t.Fatalf("LoadPack() error = %v, want nil", err)
	}
	if _, err := regB.LoadPack(packB); err != nil {
		t.Fatalf("LoadPack() error = %v, want nil", err)
	}

	if regA.Version() != regB.Version() {
		t.Errorf("versions differ for identical contents: %s vs %s", regA.Version(), regB.Version())
	}
}

func TestReplace_SwapsContents(t *testing.T) {
	reg := New(nil)
	if _, err := reg.LoadPack(validPack(validTemplate("ACME_PUMP_V1"))); err != nil {
		t.Fatalf("LoadPack() error = %v, want nil", err)
	}

	fresh := New(nil)
	if _, err := fresh.LoadPack(validPack(validTemplate("ACME_VALVE_V1"))); err != nil {
		t.Fatalf("LoadPack() error = %v, want nil", err)
	}

	reg.Replace(fresh)

	if _, ok := reg.GetTemplate("ACME_PUMP_V1"); ok {
		t.Error("old template still visible after Replace, want gone")
	}
	if _, ok := reg.GetTemplate("ACME_VALVE_V1"); !ok {
		t.Error("new template not visible after Replace, want present")
	}
	if reg.Version() != fresh.Version() {
		t.Errorf("version = %s after Replace, want %s", reg.Version(), fresh.Version())
	}
}
