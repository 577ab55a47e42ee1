package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDocType(t *testing.T) {
	cases := map[string]DocType{
		"Document":          DocTypeDocument,
		"research report":   DocTypeResearchReport,
		"Research_Report":   DocTypeResearchReport,
		"academic-paper":    DocTypeAcademicPaper,
		"CreativeWriting":   DocTypeCreativeWriting,
		" Creative Writing": DocTypeCreativeWriting,
	}
	for in, want := range cases {
		got, err := ParseDocType(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := ParseDocType("Limerick")
	assert.Error(t, err)
}

func TestDocType_JSON(t *testing.T) {
	var req CreateDocumentRequest
	require.NoError(t, json.Unmarshal([]byte(`{"doc_type":"Academic Paper","objective":"x"}`), &req))
	assert.Equal(t, DocTypeAcademicPaper, req.DocType)

	out, err := json.Marshal(DocTypeResearchReport)
	require.NoError(t, err)
	assert.JSONEq(t, `"Research Report"`, string(out))

	assert.Error(t, json.Unmarshal([]byte(`{"doc_type":"Poem"}`), &req))
}

func TestDocument_Render(t *testing.T) {
	doc := &Document{
		DocType:   DocTypeResearchReport,
		Objective: "explain tides",
		Sections: []DocumentSection{
			{Title: "Introduction", Body: "Tides rise.\n"},
			{Title: "Causes", Body: "The moon."},
		},
	}

	assert.Equal(t, "# Research Report\n\n"+
		"## Objective: explain tides\n\n"+
		"### Introduction\n\nTides rise.\n\n"+
		"### Causes\n\nThe moon.\n\n", doc.Render())
}
