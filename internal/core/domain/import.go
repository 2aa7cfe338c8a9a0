package domain

// ImportResult is returned to the caller of an import. It is never persisted.
type ImportResult struct {
	Imported int `json:"imported"`
	Pages    int `json:"pages"`
}
