package pipeline

import (
	"fmt"
	"strings"
)

// maxContextChars caps the document-level context embedded in each chunk
// prompt so the instruction text stays small relative to the PDF payload.
const maxContextChars = 4000

// buildChunkPrompt frames a chunk-scoped generation request. The page-range
// instruction is advisory only; the executor still post-filters returned
// pages to the descriptor's range.
func buildChunkPrompt(desc ChunkDescriptor, documentTitle, contextText string) string {
	var b strings.Builder

	fmt.Fprintf(&b, "You are generating a study guide for the document %q.\n\n", documentTitle)
	fmt.Fprintf(&b, "Process ONLY pages %d through %d of the attached PDF (chunk %d of %d).\n",
		desc.StartPage, desc.EndPage, desc.Index+1, desc.TotalChunks)
	b.WriteString("For each page in that range, produce a page record with the page number, a short title, a summary, and the key concepts introduced on that page.\n")
	b.WriteString("Do not include pages outside the range. Number pages by their position in the document, starting at 1.\n")
	b.WriteString("Also produce an overall summary of the page range and, if the material suggests one, an ordered list of learning path steps.\n")

	if context := strings.TrimSpace(contextText); context != "" {
		if len(context) > maxContextChars {
			context = context[:maxContextChars]
		}
		fmt.Fprintf(&b, "\nDocument context (opening pages, for orientation only):\n%s\n", context)
	}

	return b.String()
}
