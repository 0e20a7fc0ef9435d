// Package store provides SQLite-backed persistence for trained models and
// tagging runs.
package store

// ModelInfo describes a stored tag probability model.
// Several models may share a name; the newest is the current one.
type ModelInfo struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Words     int    `json:"words"`
	Entries   int    `json:"entries"`
	CreatedAt int64  `json:"createdAt"`
}

// Run records one tagging run against a stored model.
type Run struct {
	ID      string `json:"id"`
	ModelID string `json:"modelId"`
	Mode    string `json:"mode"`
	Source  string `json:"source,omitempty"`
	Tokens  int    `json:"tokens"`
	Unknown int    `json:"unknown"`
	// Accuracy is set only when the run was scored against a gold file.
	Accuracy  *float64 `json:"accuracy,omitempty"`
	CreatedAt int64    `json:"createdAt"`
}

// ModelEntry is one word/tag/probability row of a stored model.
type ModelEntry struct {
	Word string  `json:"word"`
	Tag  string  `json:"tag"`
	Prob float64 `json:"prob"`
}

// ModelExport is the portable JSON form of a stored model.
type ModelExport struct {
	Model   ModelInfo    `json:"model"`
	Entries []ModelEntry `json:"entries"`
	Runs    []*Run       `json:"runs"`
}
