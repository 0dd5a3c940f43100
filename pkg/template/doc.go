// Package template defines the data model for versioned job-sheet
// document templates: field rules, checklist groups, validation rules,
// selection fingerprints, and the spec packs that carry them.
//
// A Template is immutable once activated. Field rules and validators
// are modelled as closed tagged unions so that adding a new rule or
// validator kind is a compile-time-checked change, not a runtime cast.
package template
