package extract

import "fmt"

// SystemPrompt frames the extraction backend as a schema-bound data
// extraction system.
const SystemPrompt = "You are a data extraction system for administrative documents. " +
	"You analyze the provided document text and return exactly one valid JSON object " +
	"matching the given schema. No explanations, no markdown."

// BuildPrompt renders the extraction instructions for one document.
// The rules encode the chunk-boundary policy and the self-containment
// requirement on chunk_text; the schema enforces the shape, the prompt
// enforces the semantics.
func BuildPrompt(fileName string) string {
	return fmt.Sprintf(`Analyze the document from the file named %q and extract its metadata and chunks.

## CHUNKING
* Tables: ONE ROW = ONE CHUNK.
* Prose: one article/section/logical clause = one chunk.
* Very short notices: the entire notice may be a single chunk.
The purpose of these boundaries is to maximize each chunk's standalone interpretability.

## FIELD RULES
* file_name MUST be %q.
* Use JSON null for anything not found. NEVER the string "null", never an empty string.
* issue_date and expiration_date: YYYY-MM-DD only. effective_date: YYYY-MM-DD or the
  document's own effectivity wording (for example "from signing date").
* chunk_topic identifies what distinguishes this chunk from its siblings, in 3-7 words.
  It must NOT repeat information already captured in content_type.
* applicable_cohort is written in full: "cohort 2024", "cohort 2024 and cohort 2025",
  "cohort 2023 and earlier", "all cohorts". No abbreviations, no semicolons.
* value holds the pure number (450000, not "450.000" or "450000 VND"). unit holds its
  unit (per credit, per month, points, days). If value is null, unit must be null.
  If value is a label like "free of charge", unit may be null.
* keywords: 3 to 8 of the most important terms, all lowercase, each 1-4 words,
  no duplicates. Prefer proper nouns, figures, and domain terms over generic words.

## chunk_text - THE MOST IMPORTANT FIELD
chunk_text is the raw material for vector embedding. A reader must understand it fully
WITHOUT seeing any other field or chunk:
* complete sentences with explicit subject, predicate, and all needed context;
* spell out the program, cohort, amount, and conditions the chunk talks about;
* never a bare value ("450,000 per credit"), never unresolved pronouns, never abbreviations;
* for legal citations and clauses, copy the wording verbatim.

Return one JSON object with top-level keys "document_metadata" and "chunk_metadata".`,
		fileName, fileName)
}
