// Package validator performs structural validation of template spec
// packs. Validation accumulates every problem into an error list and
// never fails fast: load-time callers report the complete list and
// block registration, rather than throwing mid-pipeline.
package validator

import (
	"fmt"
	"regexp"
	"sort"

	"veridian-hq/saturn/pkg/template"
	tmplErrors "veridian-hq/saturn/pkg/template/errors"
)

// StructuralValidator validates the structural integrity of spec packs
// and templates: required fields, identifier formats, field-rule shape,
// and ROI region consistency.
type StructuralValidator struct {
	errors *tmplErrors.ErrorList
}

// NewStructuralValidator creates a new structural validator.
func NewStructuralValidator() *StructuralValidator {
	return &StructuralValidator{
		errors: tmplErrors.NewErrorList(),
	}
}

// ValidatePack performs structural validation on a whole spec pack.
// It returns an ErrorList containing all structural errors found.
func (v *StructuralValidator) ValidatePack(pack *template.SpecPack) error {
	v.errors = tmplErrors.NewErrorList()

	v.validatePackMetadata(pack)

	seen := make(map[string]bool)
	for i, tmpl := range pack.Templates {
		path := fmt.Sprintf("templates[%d]", i)

		if tmpl == nil {
			v.errors.AddError(tmplErrors.ErrorTypeStructural, "template is null", path)
			continue
		}

		if tmpl.TemplateID != "" && seen[tmpl.TemplateID] {
			v.errors.AddError(
				tmplErrors.ErrorTypeStructural,
				fmt.Sprintf("Duplicate template ID %q", tmpl.TemplateID),
				path,
			)
		}
		seen[tmpl.TemplateID] = true

		v.validateTemplateAt(tmpl, path)
	}

	return v.errors.ToError()
}

// ValidateTemplate performs structural validation on a single template.
func (v *StructuralValidator) ValidateTemplate(tmpl *template.Template) error {
	v.errors = tmplErrors.NewErrorList()
	v.validateTemplateAt(tmpl, "template")
	return v.errors.ToError()
}

// validatePackMetadata validates pack-level required fields.
func (v *StructuralValidator) validatePackMetadata(pack *template.SpecPack) {
	if pack.PackVersion == "" {
		v.errors.AddErrorWithSuggestion(
			tmplErrors.ErrorTypeStructural,
			"Missing required field 'packVersion'",
			"pack",
			tmplErrors.SuggestMissingField("packVersion", `"1.0.0"`),
		)
	} else if !template.VersionPattern.MatchString(pack.PackVersion) {
		v.errors.AddErrorWithSuggestion(
			tmplErrors.ErrorTypeStructural,
			fmt.Sprintf("Pack version %q must follow semantic versioning", pack.PackVersion),
			"pack.packVersion",
			"Example: '1.0.0' or '2.1.3-beta.1'",
		)
	}

	if pack.PackID == "" {
		v.errors.AddErrorWithSuggestion(
			tmplErrors.ErrorTypeStructural,
			"Missing required field 'packId'",
			"pack",
			tmplErrors.SuggestMissingField("packId", `"acme-job-sheets"`),
		)
	}

	if pack.DisplayName == "" {
		v.errors.AddError(
			tmplErrors.ErrorTypeStructural,
			"Missing required field 'displayName'",
			"pack",
		)
	}

	if pack.Client == "" {
		v.errors.AddError(
			tmplErrors.ErrorTypeStructural,
			"Missing required field 'client'",
			"pack",
		)
	}

	if pack.Defaults.DateFormat == "" {
		v.errors.AddErrorWithSuggestion(
			tmplErrors.ErrorTypeStructural,
			"Missing required field 'defaults.dateFormat'",
			"pack.defaults",
			tmplErrors.SuggestMissingField("dateFormat", `"02/01/2006"`),
		)
	}

	if pack.Defaults.Timezone == "" {
		v.errors.AddErrorWithSuggestion(
			tmplErrors.ErrorTypeStructural,
			"Missing required field 'defaults.timezone'",
			"pack.defaults",
			tmplErrors.SuggestMissingField("timezone", `"Europe/London"`),
		)
	}

	if len(pack.Templates) == 0 {
		v.errors.AddErrorWithSuggestion(
			tmplErrors.ErrorTypeStructural,
			"Pack must contain at least one template",
			"pack",
			"Add a 'templates' section with at least one template",
		)
	}
}

// validateTemplateAt validates one template, recording errors under the
// given path prefix.
func (v *StructuralValidator) validateTemplateAt(tmpl *template.Template, path string) {
	if tmpl.TemplateID == "" {
		v.errors.AddErrorWithSuggestion(
			tmplErrors.ErrorTypeStructural,
			"Missing required field 'templateId'",
			path,
			tmplErrors.SuggestMissingField("templateId", `"ACME_PUMP_INSPECTION_V1"`),
		)
	} else if !template.IDPattern.MatchString(tmpl.TemplateID) {
		v.errors.AddErrorWithSuggestion(
			tmplErrors.ErrorTypeStructural,
			fmt.Sprintf("Template ID %q must match PREFIX_NAME_V<n>", tmpl.TemplateID),
			path+".templateId",
			"Example: 'ACME_PUMP_INSPECTION_V2'",
		)
	}

	if tmpl.DisplayName == "" {
		v.errors.AddError(
			tmplErrors.ErrorTypeStructural,
			"Missing required field 'displayName'",
			path,
		)
	}

	if tmpl.Version == "" {
		v.errors.AddErrorWithSuggestion(
			tmplErrors.ErrorTypeStructural,
			"Missing required field 'version'",
			path,
			tmplErrors.SuggestMissingField("version", `"1.0.0"`),
		)
	} else if !template.VersionPattern.MatchString(tmpl.Version) {
		v.errors.AddErrorWithSuggestion(
			tmplErrors.ErrorTypeStructural,
			fmt.Sprintf("Template version %q must follow semantic versioning", tmpl.Version),
			path+".version",
			"Example: '1.0.0'",
		)
	}

	if tmpl.DocumentType == "" {
		v.errors.AddError(
			tmplErrors.ErrorTypeStructural,
			"Missing required field 'documentType'",
			path,
		)
	}

	if len(tmpl.FieldRules) == 0 {
		v.errors.AddErrorWithSuggestion(
			tmplErrors.ErrorTypeStructural,
			"Template must declare at least one field rule",
			path,
			"Add a 'fieldRules' section",
		)
	}

	// Sorted so the accumulated error list has a stable order across
	// runs.
	names := make([]string, 0, len(tmpl.FieldRules))
	for name := range tmpl.FieldRules {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		v.validateFieldEntry(name, tmpl.FieldRules[name], fmt.Sprintf("%s.fieldRules.%s", path, name))
	}

	for i, rule := range tmpl.ValidationRules {
		v.validateValidationRule(rule, fmt.Sprintf("%s.validationRules[%d]", path, i))
	}

	if tmpl.Selection != nil {
		v.validateSelection(tmpl.Selection, path+".selection")
	}

	v.validateROI(tmpl.ROIOptional, path+".roiOptional")
}

// validateFieldEntry validates one field-rule or checklist entry.
func (v *StructuralValidator) validateFieldEntry(name string, entry *template.FieldEntry, path string) {
	if entry == nil {
		v.errors.AddError(tmplErrors.ErrorTypeStructural, fmt.Sprintf("Field rule %q is null", name), path)
		return
	}

	switch entry.Kind {
	case template.EntryKindField:
		if entry.Field == nil {
			v.errors.AddError(tmplErrors.ErrorTypeStructural,
				fmt.Sprintf("Field rule %q has no rule body", name), path)
			return
		}
		for i, val := range entry.Field.Validators {
			v.validateValidator(val, fmt.Sprintf("%s.validators[%d]", path, i))
		}
		v.validateDocumentationRule(entry.Field.DocumentationRule, path+".documentationRule")

	case template.EntryKindChecklist:
		if entry.Checklist == nil || len(entry.Checklist.Tasks) == 0 {
			v.errors.AddErrorWithSuggestion(tmplErrors.ErrorTypeStructural,
				fmt.Sprintf("Checklist group %q has no tasks", name), path,
				"Add a 'tasks' list with at least one task")
			return
		}
		taskNames := make(map[string]bool)
		for i, task := range entry.Checklist.Tasks {
			taskPath := fmt.Sprintf("%s.tasks[%d]", path, i)
			if task.Name == "" {
				v.errors.AddError(tmplErrors.ErrorTypeStructural,
					"Checklist task missing required field 'name'", taskPath)
				continue
			}
			if taskNames[task.Name] {
				v.errors.AddError(tmplErrors.ErrorTypeStructural,
					fmt.Sprintf("Duplicate checklist task name %q", task.Name), taskPath)
			}
			taskNames[task.Name] = true
			v.validateDocumentationRule(task.DocumentationRule, taskPath+".documentationRule")
		}

	default:
		v.errors.AddErrorWithSuggestion(tmplErrors.ErrorTypeStructural,
			fmt.Sprintf("Field rule %q has unknown kind %q", name, entry.Kind), path,
			tmplErrors.SuggestEntryKind(string(entry.Kind),
				[]string{string(template.EntryKindField), string(template.EntryKindChecklist)}))
	}
}

// validateValidator checks a single validator declaration.
func (v *StructuralValidator) validateValidator(val template.Validator, path string) {
	switch val.Kind {
	case template.ValidatorRegex:
		if val.Pattern == "" {
			v.errors.AddError(tmplErrors.ErrorTypeStructural,
				"Regex validator missing 'pattern'", path)
			return
		}
		if _, err := regexp.Compile(val.Pattern); err != nil {
			v.errors.AddError(tmplErrors.ErrorTypeStructural,
				fmt.Sprintf("Invalid regex pattern %q: %v", val.Pattern, err), path)
		}

	case template.ValidatorMinLength:
		if val.Min <= 0 {
			v.errors.AddError(tmplErrors.ErrorTypeStructural,
				fmt.Sprintf("minLength validator requires a positive 'min', got %d", val.Min), path)
		}

	case template.ValidatorRequired:
		// No parameters.

	default:
		v.errors.AddErrorWithSuggestion(tmplErrors.ErrorTypeStructural,
			fmt.Sprintf("Unknown validator type %q", val.Kind), path,
			tmplErrors.SuggestEntryKind(string(val.Kind),
				[]string{string(template.ValidatorRegex), string(template.ValidatorRequired), string(template.ValidatorMinLength)}))
	}
}

// validateDocumentationRule checks a documentation-rule declaration.
func (v *StructuralValidator) validateDocumentationRule(rule *template.DocumentationRule, path string) {
	if rule == nil {
		return
	}
	if rule.IfYes == nil {
		v.errors.AddErrorWithSuggestion(tmplErrors.ErrorTypeStructural,
			"Documentation rule has no 'ifYes' condition", path,
			"Add an 'ifYes' block with 'requiresFollowUp' or 'requiresComments'")
		return
	}
	if rule.IfYes.RequiresFollowUp == "" && !rule.IfYes.RequiresComments {
		v.errors.AddError(tmplErrors.ErrorTypeStructural,
			"Documentation rule 'ifYes' declares neither 'requiresFollowUp' nor 'requiresComments'",
			path+".ifYes")
	}
}

// validateValidationRule checks a document-level rule declaration.
func (v *StructuralValidator) validateValidationRule(rule template.ValidationRule, path string) {
	if rule.RuleID == "" {
		v.errors.AddError(tmplErrors.ErrorTypeStructural,
			"Validation rule missing required field 'ruleId'", path)
	}
	if rule.Description == "" {
		v.errors.AddError(tmplErrors.ErrorTypeStructural,
			"Validation rule missing required field 'description'", path)
	}
}

// validateSelection checks selection criteria shape.
func (v *StructuralValidator) validateSelection(sel *template.SelectionCriteria, path string) {
	if sel.FormCodeRegex != "" {
		if _, err := regexp.Compile(sel.FormCodeRegex); err != nil {
			v.errors.AddError(tmplErrors.ErrorTypeStructural,
				fmt.Sprintf("Invalid formCodeRegex %q: %v", sel.FormCodeRegex, err), path+".formCodeRegex")
		}
	}

	if len(sel.RequiredTokensAll) == 0 && len(sel.RequiredTokensAny) == 0 &&
		len(sel.OptionalTokens) == 0 && sel.FormCodeRegex == "" {
		v.errors.AddErrorWithSuggestion(tmplErrors.ErrorTypeStructural,
			"Selection criteria declare no matchable tokens", path,
			"Add requiredTokensAll, requiredTokensAny, optionalTokens, or formCodeRegex")
	}
}

// validateROI checks that ROI regions are well formed and non-overlapping
// per page. Overlap is an authoring error: point lookups assume at most
// one region contains any point.
func (v *StructuralValidator) validateROI(regions []template.ROIRegion, path string) {
	for i, r := range regions {
		rPath := fmt.Sprintf("%s[%d]", path, i)
		if r.Page < 1 {
			v.errors.AddError(tmplErrors.ErrorTypeStructural,
				fmt.Sprintf("ROI region %q has invalid page %d (pages are 1-based)", r.Name, r.Page), rPath)
		}
		if r.Width <= 0 || r.Height <= 0 {
			v.errors.AddError(tmplErrors.ErrorTypeStructural,
				fmt.Sprintf("ROI region %q has non-positive dimensions", r.Name), rPath)
		}
		for j := i + 1; j < len(regions); j++ {
			if r.Overlaps(regions[j]) {
				v.errors.AddError(tmplErrors.ErrorTypeStructural,
					fmt.Sprintf("ROI regions %q and %q overlap on page %d", r.Name, regions[j].Name, r.Page),
					rPath)
			}
		}
	}
}
