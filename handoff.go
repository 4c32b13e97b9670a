package finasync

import (
	"fmt"
	"regexp"
	"strings"
)

// StageStatus is the outcome of a pipeline stage. A skipped stage found
// nothing to do for the file, for instance a PDF handed to the expense stage.
type StageStatus string

const (
	StageComplete StageStatus = "complete"
	StageSkipped  StageStatus = "skipped"
	StageFailed   StageStatus = "failed"
)

// StageReport is what a stage leaves in the handoff once done.
type StageReport struct {
	Stage   string      `json:"stage"`
	Status  StageStatus `json:"status"`
	Message string      `json:"message,omitempty"`
}

// Handoff is the record passed from stage to stage during a run. File is the
// document the run was started for; Transcript collects free text produced by
// stages, in order.
type Handoff struct {
	RunID      string        `json:"run_id"`
	File       string        `json:"file"`
	Reports    []StageReport `json:"reports"`
	Transcript []string      `json:"transcript,omitempty"`
}

// NewHandoff starts a handoff for file.
func NewHandoff(runID, file string) *Handoff {
	return &Handoff{RunID: runID, File: file}
}

// Record appends a stage report.
func (h *Handoff) Record(r StageReport) {
	h.Reports = append(h.Reports, r)
}

// Say appends text to the transcript.
func (h *Handoff) Say(text string) {
	if text = strings.TrimSpace(text); text != "" {
		h.Transcript = append(h.Transcript, text)
	}
}

// Token renders the textual handoff marker of the given step, the form stages
// exchanging prose rely on. A path holding blanks is backquoted.
func (h *Handoff) Token(step int) string {
	file := h.File
	if strings.ContainsAny(file, " \t") {
		file = "`" + file + "`"
	}
	return fmt.Sprintf("Step %d Complete. Passing file: %s", step, file)
}

// String returns the transcript as a single text.
func (h *Handoff) String() string {
	return strings.Join(h.Transcript, "\n\n")
}

var tokenRe = regexp.MustCompile(`Passing file:[ \t]*(.*)`)

// closers maps the quotes a path may be wrapped in to their closing rune.
var closers = map[byte]byte{'`': '`', '\'': '\'', '"': '"', '<': '>'}

// ParseHandoffToken extracts the file path from the last "Passing file: <path>"
// marker found in text. The path ends at the first blank unless quoted, and
// trailing punctuation is dropped.
func ParseHandoffToken(text string) (string, bool) {
	m := tokenRe.FindAllStringSubmatch(text, -1)
	if len(m) == 0 {
		return "", false
	}
	rest := strings.TrimSpace(m[len(m)-1][1])
	var file string
	if rest != "" {
		if c, ok := closers[rest[0]]; ok {
			if i := strings.IndexByte(rest[1:], c); i >= 0 {
				file = rest[1 : 1+i]
			}
		}
	}
	if file == "" {
		if f := strings.Fields(rest); len(f) > 0 {
			file = f[0]
		}
		file = strings.Trim(file, "`'\"<>*")
		file = strings.TrimRight(file, ".,;:")
	}
	file = strings.TrimSpace(file)
	if file == "" {
		return "", false
	}
	return file, true
}
