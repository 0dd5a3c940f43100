// Saturn validates scanned engineering job-sheet documents against
// versioned document templates.
//
// It provides:
//   - A registry of versioned, content-hashed template spec packs
//   - Token-fingerprint template selection with a confidence-banded
//     safety policy and always-on audit traces
//   - A conditional rules engine for documentation-quality audits
//   - A fixture matrix runner gating template activation
//
// Usage:
//
//	# Validate a spec pack
//	saturn pack validate --file packs/acme.yaml
//
//	# Load packs and list registrations
//	saturn pack load --dir packs/
//
//	# Select a template for a document
//	saturn select --text-file document.txt --client ACME
//
//	# Run a fixture pack and check the activation gate
//	saturn fixtures run --pack fixtures/acme_v2.yaml
//	saturn fixtures gate --pack fixtures/acme_v2.yaml
//
//	# Watch packs for changes and serve metrics
//	saturn watch --metrics-listen :9090
//
//	# Query stored audit records
//	saturn audit list --kind selection
package main

func main() {
	Execute()
}
