// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// StatusCount is the number of issues sharing one status bucket.
type StatusCount struct {
	// Bucket is the status code as text or ConnectionErrorBucket.
	Bucket string `json:"bucket" yaml:"bucket"`
	Count  int    `json:"count" yaml:"count"`
}

// Report is the result of one audit run. It is built once and not
// modified afterwards.
type Report struct {
	GeneratedAt time.Time      `json:"generated_at" yaml:"generated_at"`
	Total       int            `json:"total" yaml:"total"`
	IssueCount  int            `json:"issue_count" yaml:"issue_count"`
	AllClear    bool           `json:"all_clear" yaml:"all_clear"`
	ByStatus    []StatusCount  `json:"by_status" yaml:"by_status"`
	Issues      []CheckOutcome `json:"issues" yaml:"issues"`
}
