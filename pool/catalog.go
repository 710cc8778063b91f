// Package pool describes the storage pools a snapshot store runs on top of.
// The store does not manage pools itself, it only asks a Catalog about them.
package pool

// Catalog answers pool level questions: existence, writability and
// feature activation.
type Catalog interface {
	Exists(pool string) bool
	Readonly(pool string) bool

	// FeatureAvailable reports whether the pool knows the feature at all.
	FeatureAvailable(pool, feature string) bool

	// FeatureEnabled reports whether the feature can be used right now.
	FeatureEnabled(pool, feature string) bool
}
