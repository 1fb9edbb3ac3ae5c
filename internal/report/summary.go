// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package report

import (
	"fmt"
	"html/template"
	"io"
	"strconv"

	"github.com/nao1215/markdown"

	"github.com/pdiddy/linkaudit/pkg/types"
)

// WriteSummary prints the terminal summary.
func WriteSummary(w io.Writer, r types.Report) {
	fmt.Fprintf(w, "\nChecked %d links.\n", r.Total)
	if r.AllClear {
		fmt.Fprintln(w, "✅ All links are working correctly!")
		return
	}
	fmt.Fprintf(w, "\n❌ Found %d links with issues:\n", r.IssueCount)
	for _, issue := range r.Issues {
		fmt.Fprintf(w, "- %s (in %s): %s - %s\n", issue.URL, issue.Source, issue.StatusText(), issue.Error)
	}
}

// WriteMarkdown renders the grouped summary as GitHub-flavored Markdown.
func WriteMarkdown(w io.Writer, r types.Report, title string) error {
	md := markdown.NewMarkdown(w)
	md.H1(title)
	md.PlainText("")

	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows: [][]string{
			{"Generated", r.GeneratedAt.Format("2006-01-02 15:04:05 MST")},
			{"Links checked", strconv.Itoa(r.Total)},
			{"Issues", strconv.Itoa(r.IssueCount)},
		},
	})
	md.PlainText("")

	if r.AllClear {
		md.Tip("All links are working correctly.")
		return md.Build()
	}
	md.Cautionf("%d of %d links have issues.", r.IssueCount, r.Total)
	md.PlainText("")

	md.H2("Issues by status")
	md.PlainText("")
	rows := make([][]string, 0, len(r.ByStatus))
	for _, sc := range r.ByStatus {
		rows = append(rows, []string{sc.Bucket, strconv.Itoa(sc.Count)})
	}
	md.Table(markdown.TableSet{Header: []string{"Status", "Count"}, Rows: rows})
	md.PlainText("")

	md.H2("Broken links")
	md.PlainText("")
	rows = make([][]string, 0, len(r.Issues))
	for _, issue := range r.Issues {
		rows = append(rows, []string{issue.URL, issue.Source, issue.StatusText(), issue.Error})
	}
	md.Table(markdown.TableSet{Header: []string{"URL", "Source", "Status", "Error"}, Rows: rows})
	md.PlainText("")
	md.PlainText("Please review these links and update them if necessary.")

	return md.Build()
}

var htmlTemplate = template.Must(template.New("report").Parse(`<h1>{{.Title}}</h1>
<p>Checked {{.Report.Total}} links; {{.Report.IssueCount}} have issues.</p>
<table border="1" cellpadding="5">
<tr><th>Status</th><th>Count</th></tr>
{{range .Report.ByStatus}}<tr><td>{{.Bucket}}</td><td>{{.Count}}</td></tr>
{{end}}</table>
<p>The following links have issues:</p>
<table border="1" cellpadding="5">
<tr><th>URL</th><th>Source File</th><th>Status</th><th>Error</th></tr>
{{range .Report.Issues}}<tr><td>{{.URL}}</td><td>{{.Source}}</td><td>{{.StatusText}}</td><td>{{.Error}}</td></tr>
{{end}}</table>
<p>Please review these links and update them if necessary.</p>
`))

// WriteHTML renders the notification body.
func WriteHTML(w io.Writer, r types.Report, title string) error {
	return htmlTemplate.Execute(w, struct {
		Title  string
		Report types.Report
	}{title, r})
}
