package usecase

// maxMessageLength is the transport's hard cap on a single outgoing message.
const maxMessageLength = 2000

// chunkMessage splits text into segments of at most size characters on
// arbitrary boundaries. The split is rune-safe but not word-aware.
func chunkMessage(text string, size int) []string {
	if text == "" || size <= 0 {
		return nil
	}
	runes := []rune(text)
	chunks := make([]string, 0, (len(runes)+size-1)/size)
	for start := 0; start < len(runes); start += size {
		end := start + size
		if end > len(runes) {
			end = len(runes)
		}
		chunks = append(chunks, string(runes[start:end]))
	}
	return chunks
}
