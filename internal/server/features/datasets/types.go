package datasets

import "github.com/leapstack-labs/sqlplay/pkg/core"

// SampleList is the /sample-datasets response.
type SampleList struct {
	Datasets []string `json:"datasets"`
}

// List is the /datasets response.
type List struct {
	Datasets []core.Dataset `json:"datasets"`
}

// CatalogSignals are patched into the datastar store on catalog changes.
type CatalogSignals struct {
	Datasets   []core.Dataset `json:"datasets"`
	LastUpload string         `json:"lastUpload,omitempty"`
}
