// Package core defines the shared language of the SQLPlay system.
//
// This package contains:
//   - Explanation values (Steps, ErrorExplanation, Verdict, Source)
//   - Dataset catalog entities (Dataset)
//   - Service interfaces (Adapter, Tutor)
//   - Configuration types (AdapterConfig, TargetConfig)
//
// The Golden Rule: pkg/core imports ONLY stdlib.
// All other packages depend on core, not the reverse.
package core
