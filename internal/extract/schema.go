package extract

import "github.com/sashabaranov/go-openai/jsonschema"

// SchemaName identifies the response schema in the extraction request.
const SchemaName = "document_extraction"

// Schema returns the JSON Schema the extraction backend must satisfy. It is
// the machine-readable half of the contract; the instruction prompt carries
// the half that cannot be expressed structurally (chunk boundaries,
// self-containment, field coordination rules).
func Schema() *jsonschema.Definition {
	return &jsonschema.Definition{
		Type: jsonschema.Object,
		Properties: map[string]jsonschema.Definition{
			"document_metadata": documentSchema(),
			"chunk_metadata": {
				Type:        jsonschema.Array,
				Description: "Extracted text segments, one entry per chunk.",
				Items:       ptr(chunkSchema()),
			},
		},
		Required: []string{"document_metadata", "chunk_metadata"},
	}
}

func documentSchema() jsonschema.Definition {
	return jsonschema.Definition{
		Type: jsonschema.Object,
		Properties: map[string]jsonschema.Definition{
			"doc_id":    str("Unique identifier for the document. Leave null; assigned by the pipeline."),
			"file_name": str("Name of the source file, exactly as provided."),
			"title":     str("Official title of the document."),
			"doc_type":  str("Document kind: decision, regulation, notice, guideline."),
			"issue_number": str(
				"Official reference number of the document."),
			"issuing_authority": str(
				"Authority or office holder that issued the document (rector, university council)."),
			"issuing_dept": str(
				"Department responsible for the document (academic affairs, student affairs)."),
			"issue_date": str("Official issue date, YYYY-MM-DD. Null when absent."),
			"effective_date": str(
				"Date the document takes effect: YYYY-MM-DD, or a free-form effectivity such as " +
					"'from signing date'."),
			"expiration_date": str("Date the document expires, YYYY-MM-DD. Null when absent."),
			"major_topic": str(
				"Main topic: academic affairs, finance, admissions, dormitory, student activities."),
		},
		Required: []string{"file_name", "title"},
	}
}

func chunkSchema() jsonschema.Definition {
	return jsonschema.Definition{
		Type: jsonschema.Object,
		Properties: map[string]jsonschema.Definition{
			"chunk_id":      str("Unique identifier for the chunk. Leave null; assigned by the pipeline."),
			"page_number":   {Type: jsonschema.Integer, Description: "Page containing this chunk."},
			"section_title": str("Title of the article/section/clause, taken verbatim from the text."),
			"chunk_topic": str(
				"Short distinguishing topic of the chunk, 3-7 words. Must not restate content_type."),
			"content_type": str(
				"Program or service category (standard, high quality, international, part-time). " +
					"Only for tuition/program documents; null otherwise."),
			"specific_target": str(
				"The concrete subject the chunk applies to, one level more specific than content_type " +
					"(a named course module, major, or enrollment form)."),
			"applicable_cohort": str(
				"Cohort or intake the chunk applies to, written in full " +
					"('cohort 2024', 'cohort 2023 and earlier', 'all cohorts')."),
			"value": {
				Description: "Pure numeric magnitude (450000, 90, 30) without separators or units, " +
					"or a special label such as 'free of charge'.",
			},
			"unit": str(
				"Unit of value (per credit, per month, points, days). Only when value is numeric."),
			"keywords": {
				Type:        jsonschema.Array,
				Description: "3-8 short lowercase keywords, no duplicates.",
				Items:       &jsonschema.Definition{Type: jsonschema.String},
			},
			"chunk_text": str(
				"The full, self-contained text of the chunk. Must be interpretable without any " +
					"other chunk or metadata field. This is the only field used for embedding."),
		},
		Required: []string{"chunk_text", "keywords"},
	}
}

func str(desc string) jsonschema.Definition {
	return jsonschema.Definition{Type: jsonschema.String, Description: desc}
}

func ptr(d jsonschema.Definition) *jsonschema.Definition { return &d }
