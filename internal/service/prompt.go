package service

import "fmt"

// DefaultSummaryPrompt instructs the model to produce sectioned Markdown whose
// headings reuse the speaker's wording, which is what the timestamp matcher
// scores against.
const DefaultSummaryPrompt = `You write study notes from video transcripts.

Summarize the transcript you are given as Markdown:
- Split it into sections that follow the order of the video.
- Start every section with a "## " heading of a few words taken from what the speaker actually says.
- Under each heading write concise bullet points with the key ideas, definitions and examples.
- Do not add an introduction, a conclusion or a title for the whole note.
- Do not invent content that is not in the transcript.`

// chunkPrompt tells the model where a chunk sits in a multi-part transcript.
func chunkPrompt(base string, part, total int) string {
	if total <= 1 {
		return base
	}
	return fmt.Sprintf("%s\n\nThis is part %d of %d of the transcript. Summarize only this part.", base, part, total)
}
