package schemas

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidate_ClassificationResponse_Valid(t *testing.T) {
	doc := `{
		"category": "project",
		"subcategory": "bug_report",
		"confidence": 0.92,
		"rationale": "Describes a defect with reproduction steps."
	}`
	assert.NoError(t, Validate(ClassificationResponse, doc))
}

func TestValidate_ClassificationResponse_BadCategory(t *testing.T) {
	doc := `{"category": "memo", "subcategory": "planning", "confidence": 0.8, "rationale": "x"}`
	err := Validate(ClassificationResponse, doc)
	require.Error(t, err)

	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	assert.NotEmpty(t, ve.Errors)
}

func TestValidate_ClassificationResponse_ConfidenceOutOfRange(t *testing.T) {
	doc := `{"category": "project", "subcategory": "planning", "confidence": 1.4, "rationale": "x"}`
	var ve *ValidationError
	assert.ErrorAs(t, Validate(ClassificationResponse, doc), &ve)
}

func TestValidate_ClassificationResponse_MissingField(t *testing.T) {
	doc := `{"category": "project", "subcategory": "planning", "confidence": 0.9}`
	var ve *ValidationError
	assert.ErrorAs(t, Validate(ClassificationResponse, doc), &ve)
}

func TestValidate_SummaryResponse_Valid(t *testing.T) {
	doc := `{"summary_text": "A busy week.", "key_insights": ["More planning docs than usual"]}`
	assert.NoError(t, Validate(SummaryResponse, doc))
}

func TestValidate_SummaryResponse_EmptyText(t *testing.T) {
	doc := `{"summary_text": "", "key_insights": []}`
	var ve *ValidationError
	assert.ErrorAs(t, Validate(SummaryResponse, doc), &ve)
}

func TestValidate_NotJSON(t *testing.T) {
	err := Validate(ClassificationResponse, "not json at all")
	assert.Error(t, err)
}

func TestValidate_UnknownSchema(t *testing.T) {
	var le *SchemaLoadError
	assert.ErrorAs(t, Validate("missing.schema.json", "{}"), &le)
}
