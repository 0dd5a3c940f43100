package selector

import (
	"testing"

	"veridian-hq/saturn/pkg/template"
)

func roiTemplate() *template.Template {
	return &template.Template{
		TemplateID: "ACME_PUMP_V1",
		ROIOptional: []template.ROIRegion{
			{Name: "serialNumber", Page: 1, X: 0.1, Y: 0.1, Width: 0.3, Height: 0.1},
			{Name: "signature", Page: 2, X: 0.5, Y: 0.8, Width: 0.4, Height: 0.1},
		},
	}
}

func TestGetROI(t *testing.T) {
	tmpl := roiTemplate()

	region, ok := GetROI(tmpl, "serialNumber")
	if !ok {
		t.Fatal("GetROI(serialNumber) ok = false, want true")
	}
	if region.Page != 1 {
		t.Errorf("page = %d, want 1", region.Page)
	}

	if _, ok := GetROI(tmpl, "missing"); ok {
		t.Error("GetROI(missing) ok = true, want false")
	}
	if _, ok := GetROI(nil, "serialNumber"); ok {
		t.Error("GetROI(nil template) ok = true, want false")
	}
}

func TestGetROIRegionsForPage(t *testing.T) {
	tmpl := roiTemplate()

	page1 := GetROIRegionsForPage(tmpl, 1)
	if len(page1) != 1 || page1[0].Name != "serialNumber" {
		t.Errorf("page 1 regions = %v, want [serialNumber]", page1)
	}

	if regions := GetROIRegionsForPage(tmpl, 3); len(regions) != 0 {
		t.Errorf("page 3 regions = %v, want none", regions)
	}
}

func TestIsPointInROI(t *testing.T) {
	tmpl := roiTemplate()

	region, ok := IsPointInROI(tmpl, 1, 0.2, 0.15)
	if !ok {
		t.Fatal("IsPointInROI() ok = false for point inside serialNumber region, want true")
	}
	if region.Name != "serialNumber" {
		t.Errorf("region = %s, want serialNumber", region.Name)
	}

	// Same coordinates on the wrong page miss.
	if _, ok := IsPointInROI(tmpl, 2, 0.2, 0.15); ok {
		t.Error("IsPointInROI() ok = true on page without that region, want false")
	}

	if _, ok := IsPointInROI(tmpl, 1, 0.9, 0.9); ok {
		t.Error("IsPointInROI() ok = true outside every region, want false")
	}
}
