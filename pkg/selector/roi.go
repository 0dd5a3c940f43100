package selector

import (
	"veridian-hq/saturn/pkg/template"
)

// GetROI returns the named region-of-interest hint from a template.
func GetROI(tmpl *template.Template, name string) (*template.ROIRegion, bool) {
	if tmpl == nil {
		return nil, false
	}
	for i := range tmpl.ROIOptional {
		if tmpl.ROIOptional[i].Name == name {
			return &tmpl.ROIOptional[i], true
		}
	}
	return nil, false
}

// GetROIRegionsForPage returns all ROI regions declared for a page.
func GetROIRegionsForPage(tmpl *template.Template, page int) []template.ROIRegion {
	if tmpl == nil {
		return nil
	}
	var regions []template.ROIRegion
	for _, region := range tmpl.ROIOptional {
		if region.Page == page {
			regions = append(regions, region)
		}
	}
	return regions
}

// IsPointInROI reports whether a point on a page falls inside any ROI
// region, returning the first containing region. Regions are validated
// as non-overlapping per page at pack load, so first-match is
// unambiguous.
func IsPointInROI(tmpl *template.Template, page int, x, y float64) (*template.ROIRegion, bool) {
	if tmpl == nil {
		return nil, false
	}
	for i := range tmpl.ROIOptional {
		region := &tmpl.ROIOptional[i]
		if region.Page == page && region.Contains(x, y) {
			return region, true
		}
	}
	return nil, false
}
