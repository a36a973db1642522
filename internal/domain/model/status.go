package model

// LoadStatus is the per-install singleton tracking whether each catalog
// segment has been fetched at least once. Flags only ever flip false to true
// within a running session.
type LoadStatus struct {
	CatalogLoaded   bool
	SuggestedLoaded bool
}

// Loaded reports whether the given kind has been synced.
func (s LoadStatus) Loaded(kind ProductKind) bool {
	switch kind {
	case KindCatalogItem:
		return s.CatalogLoaded
	case KindSuggestedItem:
		return s.SuggestedLoaded
	default:
		return false
	}
}

// AllLoaded reports whether every segment has been synced.
func (s LoadStatus) AllLoaded() bool {
	return s.CatalogLoaded && s.SuggestedLoaded
}
