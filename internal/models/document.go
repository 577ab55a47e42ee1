package models

import (
	"encoding/json"
	"fmt"
	"strings"
)

// DocType is the kind of document the assistant produces.
type DocType int

const (
	DocTypeDocument DocType = iota
	DocTypeResearchReport
	DocTypeAcademicPaper
	DocTypeCreativeWriting
)

var docTypeNames = [...]string{
	DocTypeDocument:        "Document",
	DocTypeResearchReport:  "Research Report",
	DocTypeAcademicPaper:   "Academic Paper",
	DocTypeCreativeWriting: "Creative Writing",
}

// DocTypes lists every document type in display order.
func DocTypes() []DocType {
	return []DocType{DocTypeDocument, DocTypeResearchReport, DocTypeAcademicPaper, DocTypeCreativeWriting}
}

func (t DocType) String() string {
	if t < 0 || int(t) >= len(docTypeNames) {
		return fmt.Sprintf("DocType(%d)", int(t))
	}
	return docTypeNames[t]
}

// ParseDocType accepts a display name ("Research Report") or a compact form
// ("research_report", "research-report", "ResearchReport"), case-insensitive.
func ParseDocType(s string) (DocType, error) {
	key := normalizeDocType(s)
	for _, t := range DocTypes() {
		if normalizeDocType(t.String()) == key {
			return t, nil
		}
	}
	return 0, fmt.Errorf("unknown document type %q", s)
}

func normalizeDocType(s string) string {
	r := strings.NewReplacer(" ", "", "_", "", "-", "")
	return strings.ToLower(r.Replace(strings.TrimSpace(s)))
}

// MarshalJSON encodes the display name.
func (t DocType) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.String())
}

func (t *DocType) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParseDocType(s)
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// TaskSpec is one planned unit of document content. Index is 1-based and
// dense over the parsed list.
type TaskSpec struct {
	Index       int    `json:"index"       bson:"index"`
	Title       string `json:"title"       bson:"title"`
	Description string `json:"description" bson:"description"`
}

// DocumentSection is the generated content for one TaskSpec.
type DocumentSection struct {
	Title string `json:"title" bson:"title"`
	Body  string `json:"body"  bson:"body"`
}

// Document is the assembled output of one run. Sections follow task order.
type Document struct {
	DocType   DocType           `json:"doc_type"`
	Objective string            `json:"objective"`
	Sections  []DocumentSection `json:"sections"`
}

// Render returns the document as Markdown: the type and objective once at the
// top, then each section under its own heading in assembly order.
func (d *Document) Render() string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", d.DocType)
	fmt.Fprintf(&b, "## Objective: %s\n\n", d.Objective)
	for _, s := range d.Sections {
		fmt.Fprintf(&b, "### %s\n\n", s.Title)
		b.WriteString(strings.TrimSpace(s.Body))
		b.WriteString("\n\n")
	}
	return b.String()
}
