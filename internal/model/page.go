package model

// Page is the raw markup retrieved for a URL by one of the fetch sources.
type Page struct {
	URL        string `json:"url"`
	HTML       string `json:"html"`
	StatusCode int    `json:"status_code"`
	Source     string `json:"source"`    // e.g. "direct_http", "relay", "demo"
	Synthetic  bool   `json:"synthetic"` // true when produced by the offline demo source
}
