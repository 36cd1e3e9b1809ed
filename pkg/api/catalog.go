package api

// ModelDescriptor is one selectable model in a provider's catalog. ID is the
// provider-native identifier (Google's "models/" prefix already stripped),
// Name the human-readable label, falling back to the id.
type ModelDescriptor struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// ModelCatalog is the filtered, sorted, defaulted model list for one
// provider. When Error is set the catalog is empty: no models, no default.
// Catalogs are built fresh by each fetch and never mutated in place.
type ModelCatalog struct {
	Models       []ModelDescriptor `json:"models"`
	DefaultModel string            `json:"default_model"`
	Error        string            `json:"error,omitempty"`
}

// ErrorCatalog builds the catalog shape for a failed fetch.
func ErrorCatalog(message string) ModelCatalog {
	return ModelCatalog{Models: []ModelDescriptor{}, Error: message}
}
