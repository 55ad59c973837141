package service

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_transcript_source.go -package=mocks videonotes/internal/service TranscriptSource
//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_summarizer_provider.go -package=mocks videonotes/internal/service SummarizerProvider
//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_note_writer.go -package=mocks videonotes/internal/service NoteWriter
//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_summarizer.go -package=mocks videonotes/internal/llm Summarizer
//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_note_service.go -package=mocks -mock_names=NoteService=MockNoteService videonotes/internal/service NoteService

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"videonotes/internal/chunker"
	"videonotes/internal/contextutil"
	"videonotes/internal/llm"
	"videonotes/internal/markdown"
	"videonotes/internal/retry"
	"videonotes/internal/storage"
	"videonotes/internal/timestamps"
	"videonotes/internal/transcript"
	"videonotes/internal/vault"
)

// TranscriptSource fetches the cue sequence of a video.
// This interface is defined from the service layer's perspective (consumer-first).
type TranscriptSource interface {
	FetchTranscript(ctx context.Context, videoID string) (*transcript.Transcript, error)
}

// SummarizerProvider resolves a summarization backend by name. An empty name
// selects the configured default.
type SummarizerProvider interface {
	Select(name string) (llm.Summarizer, error)
}

// NoteWriter places a rendered note in the vault and returns its relative path.
type NoteWriter interface {
	WriteNote(ctx context.Context, note vault.Note) (string, error)
}

// GenerateRequest asks for a note for one video.
type GenerateRequest struct {
	URL      string
	Title    string // Overrides the video title
	Prompt   string // Overrides the summary prompt
	Provider string // LLM backend name, empty for the default
}

// GenerateResult describes a written note.
type GenerateResult struct {
	ID       string
	VideoID  string
	Title    string
	Path     string // Relative to the vault root
	Provider string
	Chunks   int
	Outcomes timestamps.Summary
}

// Headings returns the number of headings found in the summary.
func (r *GenerateResult) Headings() int {
	return r.Outcomes.Linked + r.Outcomes.NoMatch + r.Outcomes.Suppressed + r.Outcomes.Malformed
}

// NoteDetail is a stored note with its heading resolutions.
type NoteDetail struct {
	Note     storage.NoteRecord
	Headings []storage.HeadingRecord
}

// NoteService generates video notes and exposes their history.
type NoteService interface {
	// Generate fetches the transcript, summarizes it, links headings to
	// timestamps and writes the note into the vault.
	Generate(ctx context.Context, req GenerateRequest) (*GenerateResult, error)
	// List returns the most recent notes, newest first.
	List(ctx context.Context, limit int) ([]storage.NoteRecord, error)
	// Get returns one note by ID.
	Get(ctx context.Context, id string) (*NoteDetail, error)
}

// Options tunes note generation.
type Options struct {
	Chunk             chunker.Options
	Match             timestamps.Config
	Retry             retry.Config
	Concurrency       int    // Max chunk summaries in flight per note
	RequestsPerMinute int    // Shared across all jobs, 0 disables limiting
	Prompt            string // Empty selects DefaultSummaryPrompt
	Tags              []string
}

// noteService implements NoteService.
type noteService struct {
	source      TranscriptSource
	summarizers SummarizerProvider
	writer      NoteWriter
	notes       storage.NoteStore
	headings    storage.HeadingStore
	matcher     *timestamps.Matcher
	parser      *markdown.Parser
	limiter     *rate.Limiter
	opts        Options
}

// NewNoteService creates a new NoteService.
func NewNoteService(
	source TranscriptSource,
	summarizers SummarizerProvider,
	writer NoteWriter,
	notes storage.NoteStore,
	headings storage.HeadingStore,
	opts Options,
) NoteService {
	if opts.Concurrency <= 0 {
		opts.Concurrency = 1
	}
	if opts.Prompt == "" {
		opts.Prompt = DefaultSummaryPrompt
	}

	var limiter *rate.Limiter
	if opts.RequestsPerMinute > 0 {
		limiter = rate.NewLimiter(rate.Every(time.Minute/time.Duration(opts.RequestsPerMinute)), opts.Concurrency)
	}

	return &noteService{
		source:      source,
		summarizers: summarizers,
		writer:      writer,
		notes:       notes,
		headings:    headings,
		matcher:     timestamps.NewMatcher(opts.Match),
		parser:      markdown.NewParser(),
		limiter:     limiter,
		opts:        opts,
	}
}

// Generate implements NoteService.
func (s *noteService) Generate(ctx context.Context, req GenerateRequest) (*GenerateResult, error) {
	logger := contextutil.LoggerFromContext(ctx)
	started := time.Now()

	if strings.TrimSpace(req.URL) == "" {
		return nil, &ValidationError{Field: "url", Message: "cannot be empty"}
	}
	videoID, err := transcript.ParseVideoID(req.URL)
	if err != nil {
		logger.WarnContext(ctx, "invalid video url", "url", req.URL, "error", err)
		return nil, &ValidationError{Field: "url", Message: "not a YouTube video URL or ID"}
	}
	summarizer, err := s.summarizers.Select(req.Provider)
	if err != nil {
		return nil, &ValidationError{Field: "provider", Message: err.Error()}
	}
	ctx = contextutil.WithAttrs(ctx, "video_id", videoID, "provider", summarizer.Name())
	logger = contextutil.LoggerFromContext(ctx)

	tr, err := s.source.FetchTranscript(ctx, videoID)
	if err != nil {
		switch {
		case ctx.Err() != nil:
			return nil, ctx.Err()
		case errors.Is(err, transcript.ErrNoCaptions), errors.Is(err, transcript.ErrUnavailable):
			logger.WarnContext(ctx, "no transcript available", "error", err)
			return nil, notFoundError("no transcript for video %s: %v", videoID, err)
		default:
			logger.ErrorContext(ctx, "failed to fetch transcript", "error", err)
			return nil, externalError(err, "failed to fetch transcript")
		}
	}
	if len(tr.Cues) == 0 {
		return nil, notFoundError("transcript for video %s is empty", videoID)
	}

	chunks := chunker.Split(tr.Cues, s.opts.Chunk)
	logger.InfoContext(ctx, "summarizing transcript", "cues", len(tr.Cues), "chunks", len(chunks))

	prompt := s.opts.Prompt
	if req.Prompt != "" {
		prompt = req.Prompt
	}
	summaries, err := s.summarizeChunks(ctx, summarizer, tr.Cues, chunks, prompt)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		logger.ErrorContext(ctx, "failed to summarize transcript", "error", err)
		return nil, externalError(err, "failed to summarize transcript")
	}

	watchURL := transcript.WatchURL(videoID)
	body, records, outcomes := s.linkHeadings(tr.Cues, chunks, summaries, watchURL)

	title := strings.TrimSpace(req.Title)
	if title == "" {
		title = tr.Title
	}
	if title == "" {
		title = videoID
	}

	relPath, err := s.writer.WriteNote(ctx, vault.Note{
		Title:     title,
		URL:       watchURL,
		VideoID:   videoID,
		Author:    tr.Author,
		Duration:  tr.Duration,
		Provider:  summarizer.Name(),
		Tags:      s.opts.Tags,
		Body:      body,
		CreatedAt: started,
	})
	if err != nil {
		logger.ErrorContext(ctx, "failed to write note", "error", err)
		return nil, WrapError(err, "failed to write note")
	}

	record := &storage.NoteRecord{
		VideoID:      videoID,
		URL:          watchURL,
		Title:        title,
		RelPath:      relPath,
		Provider:     summarizer.Name(),
		ChunkCount:   len(chunks),
		HeadingCount: len(records),
		LinkedCount:  outcomes.Linked,
	}
	if err := s.record(ctx, record, records); err != nil {
		logger.ErrorContext(ctx, "failed to record note", "path", relPath, "error", err)
		return nil, WrapError(err, "note written to "+relPath+" but not recorded")
	}

	logger.InfoContext(ctx, "note generated",
		"note_id", record.ID,
		"path", relPath,
		"headings", len(records),
		"linked", outcomes.Linked,
		"no_match", outcomes.NoMatch,
		"suppressed", outcomes.Suppressed,
		"duration", time.Since(started))

	return &GenerateResult{
		ID:       record.ID,
		VideoID:  videoID,
		Title:    title,
		Path:     relPath,
		Provider: summarizer.Name(),
		Chunks:   len(chunks),
		Outcomes: outcomes,
	}, nil
}

// summarizeChunks summarizes every chunk with bounded concurrency. Results
// are returned in chunk order; the first failure cancels the rest.
func (s *noteService) summarizeChunks(ctx context.Context, summarizer llm.Summarizer, cues []transcript.Cue, chunks []chunker.Chunk, prompt string) ([]string, error) {
	summaries := make([]string, len(chunks))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.opts.Concurrency)

	for i, chunk := range chunks {
		i, chunk := i, chunk
		g.Go(func() error {
			cctx := contextutil.WithAttrs(gctx, "chunk", chunk.ID)
			text := chunk.Text(cues)
			partPrompt := chunkPrompt(prompt, i+1, len(chunks))

			summary, err := retry.Do(cctx, s.opts.Retry, func() (string, error) {
				if s.limiter != nil {
					if err := s.limiter.Wait(cctx); err != nil {
						return "", err
					}
				}
				return summarizer.Summarize(cctx, text, partPrompt)
			})
			if err != nil {
				return fmt.Errorf("chunk %d: %w", chunk.ID, err)
			}
			summaries[i] = summary
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return summaries, nil
}

// linkHeadings resolves the headings of all chunk summaries against the
// transcript in one ordered pass and splices a watch link after every linked
// heading. It returns the assembled body, one record per heading and the
// outcome counts.
func (s *noteService) linkHeadings(cues []transcript.Cue, chunks []chunker.Chunk, summaries []string, watchURL string) (string, []storage.HeadingRecord, timestamps.Summary) {
	type located struct {
		section int
		heading markdown.Heading
	}

	var (
		found    []located
		headings []timestamps.Heading
	)
	for i, summary := range summaries {
		for _, h := range s.parser.Headings([]byte(summary)) {
			found = append(found, located{section: i, heading: h})
			headings = append(headings, timestamps.Heading{Text: h.Text, ChunkID: chunks[i].ID})
		}
	}

	resolutions := s.matcher.Resolve(cues, chunks, headings)
	links := timestamps.LinkTexts(watchURL, resolutions)

	insertions := make([][]markdown.Insertion, len(summaries))
	records := make([]storage.HeadingRecord, len(found))
	for i, f := range found {
		res := resolutions[i]
		records[i] = storage.HeadingRecord{
			Position: i,
			Level:    f.heading.Level,
			Text:     f.heading.Text,
			ChunkID:  res.Heading.ChunkID,
			Outcome:  res.Outcome.String(),
		}
		if res.Outcome == timestamps.Linked {
			offset := res.Link.Offset
			records[i].Offset = &offset
			records[i].Confidence = res.Link.Confidence
		}
		if link, ok := links[i]; ok {
			insertions[f.section] = append(insertions[f.section], markdown.Insertion{Pos: f.heading.Pos, Text: " " + link})
		}
	}

	sections := make([]string, 0, len(summaries))
	for i, summary := range summaries {
		linked := markdown.Insert([]byte(summary), insertions[i])
		if section := strings.TrimSpace(string(linked)); section != "" {
			sections = append(sections, section)
		}
	}

	return strings.Join(sections, "\n\n"), records, timestamps.Summarize(resolutions)
}

// record stores the note and its headings. The note row is removed again if
// the headings cannot be stored.
func (s *noteService) record(ctx context.Context, note *storage.NoteRecord, headings []storage.HeadingRecord) error {
	if err := s.notes.Insert(ctx, note); err != nil {
		return fmt.Errorf("failed to insert note: %w", err)
	}
	for i := range headings {
		headings[i].NoteID = note.ID
	}
	if err := s.headings.InsertAll(ctx, headings); err != nil {
		if delErr := s.notes.Delete(context.WithoutCancel(ctx), note.ID); delErr != nil {
			contextutil.LoggerFromContext(ctx).ErrorContext(ctx, "failed to remove note after heading insert failure", "note_id", note.ID, "error", delErr)
		}
		return fmt.Errorf("failed to insert headings: %w", err)
	}
	return nil
}

// List implements NoteService.
func (s *noteService) List(ctx context.Context, limit int) ([]storage.NoteRecord, error) {
	if limit < 0 || limit > 500 {
		return nil, &ValidationError{Field: "limit", Message: "must be between 0 and 500"}
	}
	notes, err := s.notes.List(ctx, limit)
	if err != nil {
		return nil, WrapError(err, "failed to list notes")
	}
	return notes, nil
}

// Get implements NoteService.
func (s *noteService) Get(ctx context.Context, id string) (*NoteDetail, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, &ValidationError{Field: "id", Message: "must be a UUID"}
	}

	note, err := s.notes.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, notFoundError("note %s", id)
		}
		return nil, WrapError(err, "failed to get note")
	}

	headings, err := s.headings.ListByNote(ctx, id)
	if err != nil {
		return nil, WrapError(err, "failed to get note headings")
	}
	return &NoteDetail{Note: *note, Headings: headings}, nil
}
