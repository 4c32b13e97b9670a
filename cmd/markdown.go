package cmd

import (
	"bytes"
	"fmt"

	"github.com/etnz/finasync"
	md "github.com/nao1215/markdown"
)

// runMarkdown renders the outcome of a pipeline run.
func runMarkdown(h *finasync.Handoff) string {
	var buf bytes.Buffer
	doc := md.NewMarkdown(&buf)
	doc.H1(fmt.Sprintf("Run %s", h.RunID))

	table := md.TableSet{
		Alignment: []md.TableAlignment{md.AlignLeft, md.AlignLeft, md.AlignLeft},
		Header:    []string{"Stage", "Status", "Message"},
	}
	for _, r := range h.Reports {
		status := string(r.Status)
		if r.Status == finasync.StageFailed {
			status = md.Bold(status)
		}
		table.Rows = append(table.Rows, []string{r.Stage, status, r.Message})
	}
	doc.Table(table)
	return doc.String() + "\n" + h.String() + "\n"
}

// documentMarkdown renders a document read by an ingestor.
func documentMarkdown(title, text string, pdf bool) string {
	var buf bytes.Buffer
	doc := md.NewMarkdown(&buf)
	doc.H1(title)
	if pdf {
		doc.CodeBlocks(md.SyntaxHighlightText, text)
	} else {
		doc.PlainText(text)
	}
	return doc.String()
}
