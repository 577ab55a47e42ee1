package analyze

// Chunk is a window of the source text. Start is a character (rune) offset.
type Chunk struct {
	Start int
	Text  string
}

// Split cuts text into windows of size characters, each starting
// size-overlap characters after the previous one, and stops after the window
// that reaches the end of the text. Neighbouring windows share exactly
// overlap characters; the last one may be shorter. Empty text has no chunks.
func Split(text string, size, overlap int) []Chunk {
	runes := []rune(text)
	if len(runes) == 0 || size <= 0 || overlap < 0 || overlap >= size {
		return nil
	}

	step := size - overlap
	var chunks []Chunk
	for start := 0; ; start += step {
		end := min(start+size, len(runes))
		chunks = append(chunks, Chunk{Start: start, Text: string(runes[start:end])})
		if end == len(runes) {
			return chunks
		}
	}
}
