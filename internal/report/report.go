// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package report turns check outcomes into the issue report and its
// serialized and human-readable forms.
package report

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/linkaudit/pkg/types"
)

// DefaultPath is the well-known report location.
const DefaultPath = "link_check_report.json"

// Build filters outcomes into the issue list, keeping their order, and
// counts issues per status bucket.
func Build(outcomes []types.CheckOutcome, now time.Time) types.Report {
	r := types.Report{
		GeneratedAt: now.UTC(),
		Total:       len(outcomes),
		ByStatus:    []types.StatusCount{},
		Issues:      []types.CheckOutcome{},
	}

	counts := make(map[string]int)
	for _, o := range outcomes {
		if !o.IsIssue() {
			continue
		}
		r.Issues = append(r.Issues, o)
		counts[o.Bucket()]++
	}
	r.IssueCount = len(r.Issues)
	r.AllClear = r.IssueCount == 0

	for bucket, n := range counts {
		r.ByStatus = append(r.ByStatus, types.StatusCount{Bucket: bucket, Count: n})
	}
	sort.Slice(r.ByStatus, func(i, j int) bool {
		return bucketLess(r.ByStatus[i].Bucket, r.ByStatus[j].Bucket)
	})
	return r
}

// bucketLess orders numeric statuses ascending, then non-numeric buckets.
func bucketLess(a, b string) bool {
	na, errA := strconv.Atoi(a)
	nb, errB := strconv.Atoi(b)
	switch {
	case errA == nil && errB == nil:
		return na < nb
	case errA == nil:
		return true
	case errB == nil:
		return false
	}
	return a < b
}

// Marshal serializes r in the given format with a stable key order.
func Marshal(r types.Report, format types.ReportFormat) ([]byte, error) {
	switch format {
	case types.FormatJSON, "":
		data, err := json.MarshalIndent(r, "", "  ")
		if err != nil {
			return nil, fmt.Errorf("marshaling report: %w", err)
		}
		return append(data, '\n'), nil
	case types.FormatYAML:
		data, err := yaml.Marshal(&r)
		if err != nil {
			return nil, fmt.Errorf("marshaling report: %w", err)
		}
		return data, nil
	}
	return nil, fmt.Errorf("unsupported report format %q", format)
}

// Write serializes r to path through a temporary file so that a reader
// never sees a partial report.
func Write(path string, format types.ReportFormat, r types.Report) error {
	if path == "" {
		path = DefaultPath
	}
	data, err := Marshal(r, format)
	if err != nil {
		return err
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating directory %s: %w", dir, err)
	}
	tmp, err := os.CreateTemp(dir, ".report-*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpPath := tmp.Name()

	_, writeErr := tmp.Write(data)
	closeErr := tmp.Close()
	if writeErr != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("writing report: %w", writeErr)
	}
	if closeErr != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("closing temp file: %w", closeErr)
	}
	if err := os.Chmod(tmpPath, 0o644); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("setting report permissions: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("renaming temp file: %w", err)
	}
	return nil
}

// Read loads a report written by Write in the given format. An empty
// format is detected from the content: a leading '{' is JSON, anything else
// is YAML.
func Read(path string, format types.ReportFormat) (types.Report, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return types.Report{}, fmt.Errorf("reading report: %w", err)
	}
	if format == "" {
		format = sniffFormat(data)
	}

	var r types.Report
	switch format {
	case types.FormatJSON:
		err = json.Unmarshal(data, &r)
	case types.FormatYAML:
		err = yaml.Unmarshal(data, &r)
	default:
		return types.Report{}, fmt.Errorf("unsupported report format %q", format)
	}
	if err != nil {
		return types.Report{}, fmt.Errorf("parsing report %s: %w", path, err)
	}
	return r, nil
}

func sniffFormat(data []byte) types.ReportFormat {
	if trimmed := bytes.TrimLeft(data, " \t\r\n"); len(trimmed) > 0 && trimmed[0] == '{' {
		return types.FormatJSON
	}
	return types.FormatYAML
}
