package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"runtime/debug"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/dskvich/networker-bot/pkg/domain"
	"github.com/dskvich/networker-bot/pkg/logger"
)

const (
	voiceTempDirPerm  = 0o755
	voiceTempFilePerm = 0o600

	stagedTimeLayout = "20060102_150405"
)

type Transcriber interface {
	Transcribe(ctx context.Context, audio []byte) (string, error)
}

type Extractor interface {
	Extract(ctx context.Context, transcript string) (domain.ExtractedRecord, error)
}

type Ledger interface {
	Append(ctx context.Context, row domain.LedgerRow) bool
}

// StatusReporter delivers the progress and result messages of a submission.
type StatusReporter interface {
	SendStatus(ctx context.Context, chatID int64, text string) (int, error)
	EditStatus(ctx context.Context, chatID int64, messageID int, text string) error
}

type OutcomeRecorder interface {
	Begin()
	Record(status domain.OutcomeStatus)
}

type IngestionConfig struct {
	EventName string
	TempDir   string

	// ProviderTimeout bounds every download and provider call. Zero means
	// no bound beyond the caller's context.
	ProviderTimeout time.Duration
}

type ingestionService struct {
	cfg         IngestionConfig
	transcriber Transcriber
	extractor   Extractor
	ledger      Ledger
	reporter    StatusReporter
	recorder    OutcomeRecorder
	now         func() time.Time
}

func NewIngestionService(
	cfg IngestionConfig,
	transcriber Transcriber,
	extractor Extractor,
	ledger Ledger,
	reporter StatusReporter,
	recorder OutcomeRecorder,
) (*ingestionService, error) {
	if cfg.TempDir == "" {
		return nil, fmt.Errorf("voice temp directory is empty")
	}
	if err := os.MkdirAll(cfg.TempDir, voiceTempDirPerm); err != nil {
		return nil, fmt.Errorf("creating voice temp directory: %w", err)
	}

	return &ingestionService{
		cfg:         cfg,
		transcriber: transcriber,
		extractor:   extractor,
		ledger:      ledger,
		reporter:    reporter,
		recorder:    recorder,
		now:         time.Now,
	}, nil
}

// Process runs one voice note through staging, transcription, extraction
// and the ledger append. It always ends with exactly one result message in
// the submission chat and leaves no staged file behind.
func (s *ingestionService) Process(ctx context.Context, sub domain.Submission) (outcome domain.Outcome) {
	if sub.ID == "" {
		sub.ID = uuid.NewString()
	}
	if sub.ReceivedAt.IsZero() {
		sub.ReceivedAt = s.now()
	}
	ctx = logger.ContextWithSubmissionID(ctx, sub.ID)

	r := &run{svc: s, sub: sub}
	start := time.Now()
	s.recorder.Begin()

	defer func() {
		if p := recover(); p != nil {
			slog.ErrorContext(ctx, "Recovered from panic", "stage", r.stage, "panic", p, "stack", string(debug.Stack()))
			outcome = domain.Outcome{
				SubmissionID: sub.ID,
				Status:       domain.OutcomeFailed,
				Err:          fmt.Errorf("panic at stage %s: %v", r.stage, p),
			}
		}

		r.cleanup(ctx)
		r.finish(ctx, domain.OutcomeMessage(outcome))
		s.recorder.Record(outcome.Status)

		slog.InfoContext(ctx, "Voice note processed",
			"status", outcome.Status,
			"userID", sub.UserID,
			"duration", time.Since(start).Round(time.Millisecond),
		)
	}()

	r.begin(ctx)
	return r.execute(ctx)
}

// run holds the per-submission state of Process.
type run struct {
	svc *ingestionService
	sub domain.Submission

	stage      domain.Stage
	statusID   int
	stagedPath string
}

func (r *run) execute(ctx context.Context) domain.Outcome {
	s := r.svc
	outcome := domain.Outcome{SubmissionID: r.sub.ID}

	audio, err := r.stageAudio(ctx)
	if err != nil {
		return r.failed(ctx, outcome, err)
	}
	r.advance(ctx, domain.StageDownloaded)
	slog.InfoContext(ctx, "Voice note staged", "path", r.stagedPath, "bytes", len(audio))

	r.advance(ctx, domain.StageTranscribing)
	transcript, err := withTimeout(ctx, s.cfg.ProviderTimeout, func(ctx context.Context) (string, error) {
		return s.transcriber.Transcribe(ctx, audio)
	})
	if err != nil {
		return r.failed(ctx, outcome, fmt.Errorf("transcribing audio: %w", err))
	}
	outcome.Transcript = transcript
	if strings.TrimSpace(transcript) == "" {
		slog.WarnContext(ctx, "Empty transcript")
		outcome.Status = domain.OutcomeUnclearAudio
		return outcome
	}
	r.advance(ctx, domain.StageTranscribed)
	slog.InfoContext(ctx, "Transcription completed", "chars", len(transcript))

	r.advance(ctx, domain.StageExtracting)
	record, err := withTimeout(ctx, s.cfg.ProviderTimeout, func(ctx context.Context) (domain.ExtractedRecord, error) {
		return s.extractor.Extract(ctx, transcript)
	})
	if err != nil {
		return r.failed(ctx, outcome, fmt.Errorf("extracting record: %w", err))
	}
	if record.IsEmpty() {
		slog.WarnContext(ctx, "Empty extraction")
		outcome.Status = domain.OutcomeNoExtraction
		return outcome
	}
	outcome.Record = record
	slog.InfoContext(ctx, "Record extracted", "fields", len(record))

	r.advance(ctx, domain.StageSaving)
	row := domain.NewLedgerRow(record, domain.RowMetadata{
		WhereMet:  s.cfg.EventName,
		Timestamp: s.now(),
		Handle:    r.sub.Username,
		UserID:    r.sub.UserID,
	})
	if !r.appendRow(ctx, row) {
		outcome.Status = domain.OutcomeSaveFailed
		return outcome
	}

	outcome.Status = domain.OutcomeSaved
	return outcome
}

func (r *run) failed(ctx context.Context, outcome domain.Outcome, err error) domain.Outcome {
	outcome.Err = err
	outcome.Status = domain.OutcomeFailed
	if errors.Is(err, context.DeadlineExceeded) {
		outcome.Status = domain.OutcomeTimedOut
	}

	slog.ErrorContext(ctx, "Processing voice note", "stage", r.stage, "status", outcome.Status, logger.Err(err))
	return outcome
}

// stageAudio downloads the voice note into a file of its own in the temp
// directory and returns its bytes.
func (r *run) stageAudio(ctx context.Context) ([]byte, error) {
	if r.sub.Audio == nil {
		return nil, fmt.Errorf("submission has no audio")
	}

	dir := r.svc.cfg.TempDir
	if err := os.MkdirAll(dir, voiceTempDirPerm); err != nil {
		return nil, fmt.Errorf("creating voice temp directory: %w", err)
	}

	path := filepath.Join(dir, StagedFileName(r.sub))
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, voiceTempFilePerm)
	if err != nil {
		return nil, fmt.Errorf("creating staged file: %w", err)
	}
	r.stagedPath = path

	audio, err := withTimeout(ctx, r.svc.cfg.ProviderTimeout, func(ctx context.Context) ([]byte, error) {
		src, err := r.sub.Audio.Open(ctx)
		if err != nil {
			return nil, fmt.Errorf("opening audio: %w", err)
		}
		defer func(src io.ReadCloser) {
			if closeErr := src.Close(); closeErr != nil {
				slog.WarnContext(ctx, "Closing audio source", logger.Err(closeErr))
			}
		}(src)

		var buf bytes.Buffer
		if _, err := io.Copy(io.MultiWriter(f, &buf), src); err != nil {
			return nil, fmt.Errorf("downloading audio: %w", err)
		}
		return buf.Bytes(), nil
	})
	if closeErr := f.Close(); closeErr != nil && err == nil {
		err = fmt.Errorf("closing staged file: %w", closeErr)
	}
	if err != nil {
		return nil, err
	}

	return audio, nil
}

// StagedFileName names the temp file of a submission after its user,
// reception time and id.
func StagedFileName(sub domain.Submission) string {
	return fmt.Sprintf("voice_%d_%s_%s.ogg", sub.UserID, sub.ReceivedAt.Format(stagedTimeLayout), sub.ID)
}

func (r *run) cleanup(ctx context.Context) {
	if r.stagedPath == "" {
		return
	}

	if err := os.Remove(r.stagedPath); err != nil && !errors.Is(err, fs.ErrNotExist) {
		slog.ErrorContext(ctx, "Removing staged file", "path", r.stagedPath, logger.Err(err))
		return
	}
	slog.DebugContext(ctx, "Staged file removed", "path", r.stagedPath)
	r.stagedPath = ""
}

func (r *run) begin(ctx context.Context) {
	id, err := r.svc.reporter.SendStatus(ctx, r.sub.ChatID, domain.ProgressText(domain.StageReceived))
	if err != nil {
		slog.WarnContext(ctx, "Sending status message", logger.Err(err))
		return
	}
	r.statusID = id
}

// advance moves the status message forward. Stages never go back.
func (r *run) advance(ctx context.Context, stage domain.Stage) {
	if stage <= r.stage {
		return
	}
	r.stage = stage

	if r.statusID == 0 {
		return
	}
	if err := r.svc.reporter.EditStatus(ctx, r.sub.ChatID, r.statusID, domain.ProgressText(stage)); err != nil {
		slog.WarnContext(ctx, "Updating status message", "stage", stage, logger.Err(err))
	}
}

// finish replaces the status message with the result, or sends the result
// as a new message when there is no status message to edit.
func (r *run) finish(ctx context.Context, text string) {
	if r.statusID != 0 {
		err := r.svc.reporter.EditStatus(ctx, r.sub.ChatID, r.statusID, text)
		if err == nil {
			return
		}
		slog.WarnContext(ctx, "Editing status message with result", logger.Err(err))
	}

	if _, err := r.svc.reporter.SendStatus(ctx, r.sub.ChatID, text); err != nil {
		slog.ErrorContext(ctx, "Sending result message", logger.Err(err))
	}
}

// appendRow reports a ledger timeout as a failed append.
func (r *run) appendRow(ctx context.Context, row domain.LedgerRow) bool {
	callCtx, cancel := callContext(ctx, r.svc.cfg.ProviderTimeout)
	defer cancel()

	return r.svc.ledger.Append(callCtx, row)
}

func callContext(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if timeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, timeout)
}

func withTimeout[T any](ctx context.Context, timeout time.Duration, fn func(context.Context) (T, error)) (T, error) {
	callCtx, cancel := callContext(ctx, timeout)
	defer cancel()

	v, err := fn(callCtx)
	if err != nil && callCtx.Err() != nil && ctx.Err() == nil && !errors.Is(err, context.DeadlineExceeded) {
		err = fmt.Errorf("%w: %w", context.DeadlineExceeded, err)
	}
	return v, err
}
