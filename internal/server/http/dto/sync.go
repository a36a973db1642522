package dto

// SyncStatusResponse reports which catalog segments have been loaded.
type SyncStatusResponse struct {
	CatalogLoaded   bool `json:"catalogLoaded"`
	SuggestedLoaded bool `json:"suggestedLoaded"`
}

// RetryStateResponse is one cooldown notice from the sync retrier.
type RetryStateResponse struct {
	Kind        string `json:"kind"`
	Attempt     int    `json:"attempt"`
	NextDelayMS int64  `json:"nextDelayMs,omitempty"`
	Terminal    bool   `json:"terminal,omitempty"`
}
