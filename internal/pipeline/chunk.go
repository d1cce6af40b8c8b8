// Package pipeline implements the chunked large-document processing
// pipeline: planning page-range chunks, executing them against a generation
// provider under bounded concurrency with retry, reporting progress, and
// merging out-of-order chunk results into one ordered artifact.
package pipeline

// ChunkDescriptor identifies one contiguous page range of the source
// document, processed as a single unit of work. Descriptors are immutable
// once planned.
type ChunkDescriptor struct {
	StartPage   int `json:"start_page"`
	EndPage     int `json:"end_page"`
	Index       int `json:"index"`
	TotalChunks int `json:"total_chunks"`
}

// PlanChunks partitions [1, totalPages] into contiguous, non-overlapping
// chunks of up to chunkSize pages. chunkSize must be positive; callers
// obtain it from SelectChunkSize.
func PlanChunks(totalPages, chunkSize int) []ChunkDescriptor {
	totalChunks := (totalPages + chunkSize - 1) / chunkSize

	chunks := make([]ChunkDescriptor, 0, totalChunks)
	for i := 0; i < totalChunks; i++ {
		end := (i + 1) * chunkSize
		if end > totalPages {
			end = totalPages
		}
		chunks = append(chunks, ChunkDescriptor{
			StartPage:   i*chunkSize + 1,
			EndPage:     end,
			Index:       i,
			TotalChunks: totalChunks,
		})
	}
	return chunks
}

// SelectChunkSize picks a chunk's page span from the document's page count
// and byte size. Bigger documents get more pages per chunk (fewer API
// calls); bigger files get fewer pages per chunk (smaller payloads, less
// truncation risk). The result never exceeds totalPages.
func SelectChunkSize(totalPages int, fileSizeBytes int64) int {
	var base int
	switch {
	case totalPages > 200:
		base = 25
	case totalPages > 100:
		base = 20
	case totalPages > 50:
		base = 15
	case totalPages > 20:
		base = 10
	default:
		return totalPages
	}

	sizeMB := float64(fileSizeBytes) / (1 << 20)
	switch {
	case sizeMB > 50:
		base -= 5
		if base < 10 {
			base = 10
		}
	case sizeMB < 20:
		base += 5
		if base > 30 {
			base = 30
		}
	}

	if base > totalPages {
		base = totalPages
	}
	return base
}
