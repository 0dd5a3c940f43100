// Package registry stores versioned template registrations, computes
// content hashes, and gates template visibility on lifecycle status.
// Only active templates are visible to consumers: this is the
// enforcement point for "no silently-broken template is ever used".
package registry

import (
	"crypto/sha256"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"veridian-hq/saturn/pkg/template"
	"veridian-hq/saturn/pkg/template/validator"
)

// Status is the lifecycle status of a template registration.
type Status string

const (
	// StatusActive templates are visible to selection and evaluation.
	StatusActive Status = "active"

	// StatusInactive templates are registered but invisible. A
	// registration with validation errors is forced inactive at load.
	StatusInactive Status = "inactive"

	// StatusDeprecated templates are permanently retired.
	StatusDeprecated Status = "deprecated"
)

// Registration wraps a template with its pack provenance, content hash,
// and lifecycle status.
type Registration struct {
	// Template is the registered template.
	Template *template.Template

	// PackID and PackVersion identify the spec pack that shipped it.
	PackID      string
	PackVersion string

	// RegisteredAt is when the registration was created.
	RegisteredAt time.Time

	// Hash is the SHA-256 of the template's canonical JSON.
	Hash string

	// Status is the lifecycle status.
	Status Status

	// ValidationErrors holds structural errors found at load time.
	// Non-empty errors force the registration inactive.
	ValidationErrors []string
}

// Registry is a thread-safe in-memory store of template registrations.
// Iteration order is an explicit contract: all listing methods return
// registrations sorted by template ID.
type Registry struct {
	mu            sync.RWMutex
	registrations map[string]*Registration
	packs         map[string]*template.SpecPack
	version       string
	loadTime      time.Time
	logger        *slog.Logger
}

// New creates a new empty template registry.
func New(logger *slog.Logger) *Registry {
	if logger == nil {
		logger = slog.Default().With("component", "template.registry")
	}
	return &Registry{
		registrations: make(map[string]*Registration),
		packs:         make(map[string]*template.SpecPack),
		loadTime:      time.Now(),
		logger:        logger,
	}
}

// LoadResult reports the outcome of loading one spec pack.
type LoadResult struct {
	// PackID identifies the pack, when it parsed far enough to have one.
	PackID string

	// Registered lists the template IDs registered from the pack.
	Registered []string

	// Inactive lists template IDs registered but forced inactive due to
	// structural errors.
	Inactive []string

	// Errors holds pack-level and per-template validation errors.
	Errors []string
}

// LoadPack validates and registers a spec pack. Pack-level structural
// errors block registration entirely: the pack is not registered and no
// partial state is left behind. Per-template errors register the
// template as inactive with its error list attached.
func (r *Registry) LoadPack(pack *template.SpecPack) (*LoadResult, error) {
	result := &LoadResult{}

	if pack == nil {
		return result, &RegistryError{Operation: "load_pack", Message: "pack cannot be nil"}
	}
	result.PackID = pack.PackID

	v := validator.NewStructuralValidator()
	packErr := v.ValidatePack(pack)

	// Split pack-level errors (which block registration) from
	// per-template errors (which force the template inactive). The
	// validator reports per-template paths prefixed "templates[".
	perTemplate := make(map[string][]string)
	var packLevel []string
	if packErr != nil {
		if list, ok := packErr.(interface{ Messages() []string }); ok {
			for _, msg := range list.Messages() {
				if idx, ok := templateIndexFromPath(msg); ok && idx < len(pack.Templates) && pack.Templates[idx] != nil {
					id := pack.Templates[idx].TemplateID
					perTemplate[id] = append(perTemplate[id], msg)
					continue
				}
				packLevel = append(packLevel, msg)
			}
		} else {
			packLevel = append(packLevel, packErr.Error())
		}
	}

	if len(packLevel) > 0 {
		result.Errors = packLevel
		r.logger.Warn("spec pack rejected",
			"pack_id", pack.PackID,
			"error_count", len(packLevel),
		)
		return result, &RegistryError{Operation: "load_pack", Message: fmt.Sprintf("pack %q has %d structural error(s)", pack.PackID, len(packLevel))}
	}

	// Hash every template before mutating state so a hash failure
	// leaves the registry untouched.
	hashes := make(map[string]string, len(pack.Templates))
	for _, tmpl := range pack.Templates {
		hash, err := tmpl.Hash()
		if err != nil {
			return result, &RegistryError{
				TemplateID: tmpl.TemplateID,
				Operation:  "load_pack",
				Message:    fmt.Sprintf("hashing failed: %v", err),
			}
		}
		hashes[tmpl.TemplateID] = hash
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now()
	for _, tmpl := range pack.Templates {
		errs := perTemplate[tmpl.TemplateID]
		status := StatusActive
		if len(errs) > 0 {
			status = StatusInactive
		}

		r.registrations[tmpl.TemplateID] = &Registration{
			Template:         tmpl,
			PackID:           pack.PackID,
			PackVersion:      pack.PackVersion,
			RegisteredAt:     now,
			Hash:             hashes[tmpl.TemplateID],
			Status:           status,
			ValidationErrors: errs,
		}

		if status == StatusActive {
			result.Registered = append(result.Registered, tmpl.TemplateID)
		} else {
			result.Inactive = append(result.Inactive, tmpl.TemplateID)
			result.Errors = append(result.Errors, errs...)
		}
	}

	r.packs[pack.PackID] = pack
	r.loadTime = now
	r.updateVersion()

	sort.Strings(result.Registered)
	sort.Strings(result.Inactive)

	r.logger.Info("spec pack loaded",
		"pack_id", pack.PackID,
		"pack_version", pack.PackVersion,
		"registered", len(result.Registered),
		"inactive", len(result.Inactive),
	)

	return result, nil
}

// GetTemplate returns the template only if its registration is active.
// Inactive and deprecated templates are invisible to consumers.
func (r *Registry) GetTemplate(id string) (*template.Template, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	reg, ok := r.registrations[id]
	if !ok || reg.Status != StatusActive {
		return nil, false
	}
	return reg.Template, true
}

// GetRegistration returns the registration for a template regardless of
// status, for introspection and lifecycle management.
func (r *Registry) GetRegistration(id string) (*Registration, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	reg, ok := r.registrations[id]
	if !ok {
		return nil, false
	}
	regCopy := *reg
	return &regCopy, true
}

// ActiveTemplates returns all active templates sorted by template ID.
func (r *Registry) ActiveTemplates() []*template.Template {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ids := make([]string, 0, len(r.registrations))
	for id, reg := range r.registrations {
		if reg.Status == StatusActive {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)

	out := make([]*template.Template, 0, len(ids))
	for _, id := range ids {
		out = append(out, r.registrations[id].Template)
	}
	return out
}

// ListRegistrations returns all registrations sorted by template ID.
func (r *Registry) ListRegistrations() []*Registration {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ids := make([]string, 0, len(r.registrations))
	for id := range r.registrations {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	out := make([]*Registration, 0, len(ids))
	for _, id := range ids {
		regCopy := *r.registrations[id]
		out = append(out, &regCopy)
	}
	return out
}

// ActivateTemplate re-runs structural validation and flips the
// registration to active only if no errors remain. On failure it
// returns the complete list of blocking issues with remediation hints
// and leaves the status unchanged.
func (r *Registry) ActivateTemplate(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	reg, ok := r.registrations[id]
	if !ok {
		return &RegistryError{TemplateID: id, Operation: "activate", Message: "template not found"}
	}

	v := validator.NewStructuralValidator()
	if err := v.ValidateTemplate(reg.Template); err != nil {
		var issues []ActivationIssue
		if list, ok := err.(interface{ Messages() []string }); ok {
			for _, msg := range list.Messages() {
				issues = append(issues, ActivationIssue{
					Message: msg,
					FixPath: "correct the template definition in its spec pack and reload",
				})
			}
		} else {
			issues = append(issues, ActivationIssue{Message: err.Error(), FixPath: "correct the template definition and reload"})
		}

		reg.ValidationErrors = activationMessages(issues)
		r.logger.Warn("template activation blocked",
			"template_id", id,
			"issue_count", len(issues),
		)
		return &ActivationError{TemplateID: id, Issues: issues}
	}

	reg.ValidationErrors = nil
	reg.Status = StatusActive
	r.updateVersion()

	r.logger.Info("template activated", "template_id", id)
	return nil
}

// DeactivateTemplate unconditionally flips the registration to inactive.
func (r *Registry) DeactivateTemplate(id string) error {
	return r.setStatus(id, StatusInactive, "deactivate")
}

// DeprecateTemplate unconditionally flips the registration to deprecated.
func (r *Registry) DeprecateTemplate(id string) error {
	return r.setStatus(id, StatusDeprecated, "deprecate")
}

// setStatus performs an unconditional status transition.
func (r *Registry) setStatus(id string, status Status, op string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	reg, ok := r.registrations[id]
	if !ok {
		return &RegistryError{TemplateID: id, Operation: op, Message: "template not found"}
	}

	reg.Status = status
	r.updateVersion()

	r.logger.Info("template status changed", "template_id", id, "status", string(status))
	return nil
}

// HasTemplateChanged compares the stored content hash against the hash
// of a candidate template to detect drift without relying on mutable
// in-memory equality.
func (r *Registry) HasTemplateChanged(id string, candidate *template.Template) (bool, error) {
	if candidate == nil {
		return false, &RegistryError{TemplateID: id, Operation: "has_changed", Message: "candidate cannot be nil"}
	}

	r.mu.RLock()
	reg, ok := r.registrations[id]
	r.mu.RUnlock()

	if !ok {
		return false, &RegistryError{TemplateID: id, Operation: "has_changed", Message: "template not found"}
	}

	candidateHash, err := candidate.Hash()
	if err != nil {
		return false, &RegistryError{TemplateID: id, Operation: "has_changed", Message: fmt.Sprintf("hashing failed: %v", err)}
	}

	return candidateHash != reg.Hash, nil
}

// Replace atomically swaps the full registry contents with the state of
// another registry. Used by hot reload: the new state is built and
// validated off to the side, then swapped in only on success.
func (r *Registry) Replace(other *Registry) {
	other.mu.RLock()
	newRegs := make(map[string]*Registration, len(other.registrations))
	for id, reg := range other.registrations {
		regCopy := *reg
		newRegs[id] = &regCopy
	}
	newPacks := make(map[string]*template.SpecPack, len(other.packs))
	for id, pack := range other.packs {
		newPacks[id] = pack
	}
	other.mu.RUnlock()

	r.mu.Lock()
	r.registrations = newRegs
	r.packs = newPacks
	r.loadTime = time.Now()
	r.updateVersion()
	r.mu.Unlock()
}

// Count returns the number of registrations.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.registrations)
}

// Version returns the registry version hash. It changes whenever
// registrations are added, replaced, or transition status.
func (r *Registry) Version() string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.version
}

// LoadTime returns when the registry contents last changed wholesale.
func (r *Registry) LoadTime() time.Time {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.loadTime
}

// updateVersion recomputes the registry version hash. Must be called
// with the write lock held. Hash input is sorted by template ID so the
// version is deterministic for identical contents.
func (r *Registry) updateVersion() {
	h := sha256.New()

	ids := make([]string, 0, len(r.registrations))
	for id := range r.registrations {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	for _, id := range ids {
		reg := r.registrations[id]
		h.Write([]byte(id))
		h.Write([]byte(reg.Hash))
		h.Write([]byte(reg.Status))
	}

	r.version = fmt.Sprintf("%x", h.Sum(nil))[:16]
}

// activationMessages flattens activation issues to plain messages for
// storage on the registration.
func activationMessages(issues []ActivationIssue) []string {
	out := make([]string, 0, len(issues))
	for _, issue := range issues {
		out = append(out, issue.Message)
	}
	return out
}

// templateIndexFromPath extracts the template index from a validator
// message prefixed with "templates[<n>]".
func templateIndexFromPath(msg string) (int, bool) {
	var idx int
	if n, err := fmt.Sscanf(msg, "templates[%d]", &idx); err == nil && n == 1 {
		return idx, true
	}
	return 0, false
}
