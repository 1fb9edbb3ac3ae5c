// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package report

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/linkaudit/pkg/types"
)

var fixedTime = time.Date(2026, 3, 14, 9, 26, 53, 0, time.UTC)

func outcome(url string, status int, errText string) types.CheckOutcome {
	o := types.CheckOutcome{URL: url, Source: "_posts/p.md", Error: errText}
	if status != 0 {
		o.Status = types.IntPtr(status)
	}
	return o
}

func sampleOutcomes() []types.CheckOutcome {
	return []types.CheckOutcome{
		outcome("https://www.amazon.com/dp/OK1", 200, ""),
		outcome("https://www.amazon.com/dp/GONE", 404, "HTTP error: 404"),
		outcome("https://www.amazon.com/dp/DNS", 0, "no such host"),
		outcome("https://www.amazon.com/dp/OK2", 301, ""),
		outcome("https://www.amazon.com/dp/DOWN", 503, "HTTP error: 503"),
		outcome("https://www.amazon.com/dp/GONE2", 404, "HTTP error: 404"),
	}
}

func TestBuild_FiltersIssuesInOrder(t *testing.T) {
	r := Build(sampleOutcomes(), fixedTime)

	assert.Equal(t, 6, r.Total)
	assert.Equal(t, 4, r.IssueCount)
	assert.False(t, r.AllClear)
	var urls []string
	for _, i := range r.Issues {
		urls = append(urls, i.URL)
	}
	assert.Equal(t, []string{
		"https://www.amazon.com/dp/GONE",
		"https://www.amazon.com/dp/DNS",
		"https://www.amazon.com/dp/DOWN",
		"https://www.amazon.com/dp/GONE2",
	}, urls)
	assert.Equal(t, []types.StatusCount{
		{Bucket: "404", Count: 2},
		{Bucket: "503", Count: 1},
		{Bucket: types.ConnectionErrorBucket, Count: 1},
	}, r.ByStatus)
}

func TestBuild_AllClear(t *testing.T) {
	r := Build([]types.CheckOutcome{outcome("https://www.amazon.com/dp/OK", 200, "")}, fixedTime)
	assert.True(t, r.AllClear)
	assert.Zero(t, r.IssueCount)
	assert.NotNil(t, r.Issues)
	assert.NotNil(t, r.ByStatus)
}

func TestMarshal_JSONShape(t *testing.T) {
	r := Build(sampleOutcomes()[1:3], fixedTime)
	data, err := Marshal(r, types.FormatJSON)
	require.NoError(t, err)

	s := string(data)
	assert.True(t, strings.HasSuffix(s, "\n"))
	assert.Contains(t, s, `"status": 404`)
	assert.Contains(t, s, `"status": null`)
	assert.Contains(t, s, `"error": "no such host"`)
	assert.Less(t, strings.Index(s, `"generated_at"`), strings.Index(s, `"issues"`))
}

func TestMarshal_EmptyReportIsStable(t *testing.T) {
	a, err := Marshal(Build(nil, fixedTime), types.FormatJSON)
	require.NoError(t, err)
	b, err := Marshal(Build(nil, fixedTime.Add(time.Hour)), types.FormatJSON)
	require.NoError(t, err)

	strip := func(b []byte) string {
		var out []string
		for _, line := range strings.Split(string(b), "\n") {
			if !strings.Contains(line, "generated_at") {
				out = append(out, line)
			}
		}
		return strings.Join(out, "\n")
	}
	assert.Equal(t, strip(a), strip(b))
	assert.Contains(t, string(a), `"issues": []`)
}

func TestMarshal_UnsupportedFormat(t *testing.T) {
	_, err := Marshal(types.Report{}, "xml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported report format")
}

func TestWriteRead_RoundTrip(t *testing.T) {
	dir := t.TempDir()
	r := Build(sampleOutcomes(), fixedTime)

	for _, tc := range []struct {
		name   string
		format types.ReportFormat
	}{
		{"report.json", types.FormatJSON},
		{"nested/report.yaml", types.FormatYAML},
	} {
		t.Run(tc.name, func(t *testing.T) {
			path := filepath.Join(dir, tc.name)
			require.NoError(t, Write(path, tc.format, r))

			got, err := Read(path, tc.format)
			require.NoError(t, err)
			assert.Equal(t, r.IssueCount, got.IssueCount)
			assert.True(t, r.GeneratedAt.Equal(got.GeneratedAt))
			require.Len(t, got.Issues, 4)
			assert.Nil(t, got.Issues[1].Status)
			require.NotNil(t, got.Issues[0].Status)
			assert.Equal(t, 404, *got.Issues[0].Status)
		})
	}

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	for _, e := range entries {
		assert.False(t, strings.HasPrefix(e.Name(), ".report-"), "temp file left behind: %s", e.Name())
	}
}

func TestRead_Invalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.json")
	require.NoError(t, os.WriteFile(path, []byte("{"), 0o644))
	_, err := Read(path, types.FormatJSON)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parsing report")

	_, err = Read(path, "toml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported report format")
}

func TestRead_FormatIndependentOfExtension(t *testing.T) {
	r := Build(sampleOutcomes(), fixedTime)

	tests := []struct {
		name    string
		written types.ReportFormat
		read    types.ReportFormat
	}{
		{"yaml named json", types.FormatYAML, types.FormatYAML},
		{"yaml named json detected", types.FormatYAML, ""},
		{"json detected", types.FormatJSON, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), DefaultPath)
			require.NoError(t, Write(path, tt.written, r))

			got, err := Read(path, tt.read)
			require.NoError(t, err)
			assert.Equal(t, r.IssueCount, got.IssueCount)
			assert.True(t, r.GeneratedAt.Equal(got.GeneratedAt))
			require.Len(t, got.Issues, len(r.Issues))
		})
	}
}

func TestWriteSummary(t *testing.T) {
	var buf bytes.Buffer
	WriteSummary(&buf, Build(sampleOutcomes()[:3], fixedTime))
	s := buf.String()
	assert.Contains(t, s, "Checked 3 links.")
	assert.Contains(t, s, "Found 2 links with issues:")
	assert.Contains(t, s, "- https://www.amazon.com/dp/GONE (in _posts/p.md): 404 - HTTP error: 404")
	assert.Contains(t, s, "- https://www.amazon.com/dp/DNS (in _posts/p.md): Error - no such host")

	buf.Reset()
	WriteSummary(&buf, Build(nil, fixedTime))
	assert.Contains(t, buf.String(), "All links are working correctly!")
}

func TestWriteMarkdown(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteMarkdown(&buf, Build(sampleOutcomes(), fixedTime), "Link Check Report"))
	s := buf.String()
	assert.Contains(t, s, "# Link Check Report")
	assert.Contains(t, s, "## Issues by status")
	assert.Contains(t, s, "connection error")
	assert.Contains(t, s, "https://www.amazon.com/dp/DOWN")

	buf.Reset()
	require.NoError(t, WriteMarkdown(&buf, Build(nil, fixedTime), "Link Check Report"))
	assert.Contains(t, buf.String(), "All links are working correctly.")
	assert.NotContains(t, buf.String(), "Broken links")
}

func TestWriteHTML_EscapesContent(t *testing.T) {
	outcomes := []types.CheckOutcome{outcome("https://www.amazon.com/dp/X?a=1&b=<2>", 404, "HTTP error: 404")}
	var buf bytes.Buffer
	require.NoError(t, WriteHTML(&buf, Build(outcomes, fixedTime), "Amazon Link Check Report"))
	s := buf.String()
	assert.Contains(t, s, "<h1>Amazon Link Check Report</h1>")
	assert.Contains(t, s, "<td>404</td>")
	assert.Contains(t, s, "&lt;2&gt;")
	assert.NotContains(t, s, "<2>")
}
