package workflow

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"scanpi/internal/config"
	"scanpi/internal/logging"
	"scanpi/internal/paperless"
	"scanpi/internal/prompt"
	"scanpi/internal/remote"
	"scanpi/internal/scanner"
	"scanpi/internal/services"
	"scanpi/internal/session"
)

// Uploader sends a finished document to the document archive.
type Uploader interface {
	Upload(ctx context.Context, filePath, title string) error
}

// Recorder persists the session summary on every status transition.
type Recorder interface {
	Record(ctx context.Context, sess *session.Session) error
}

// Cleaner removes remote batch artifacts after a session.
type Cleaner interface {
	RemovePages(ctx context.Context, dir string, pages int) error
	RemoveBatchDir(ctx context.Context, dir string) error
}

// Merger combines page files into the final document.
type Merger interface {
	Merge(ctx context.Context, inputs []string, outputPath, paperSize string) error
}

// PageScanner drives the remote scanner.
type PageScanner interface {
	CheckConnection(ctx context.Context) error
	Probe(ctx context.Context) error
	EnsureBatchDir(ctx context.Context, dir string) error
	ScanPage(ctx context.Context, dir string, page int, format scanner.Format, resolution int) (string, error)
}

// Params collects the collaborators a Controller needs. Uploader and
// Recorder may be nil, which disables the corresponding behaviour.
type Params struct {
	Config     *config.Config
	Scanner    PageScanner
	Cleaner    Cleaner
	Downloader remote.Downloader
	Merger     Merger
	Uploader   Uploader
	Recorder   Recorder
	Prompter   prompt.Prompter
	Logger     *slog.Logger

	// Format and Resolution come from the CLI flags.
	Format     string
	Resolution int
	// OutputDir is where the merged document lands; empty means the
	// current directory.
	OutputDir string
}

// Controller walks one session through checking, scanning, transferring,
// merging, naming, and uploading.
type Controller struct {
	cfg        *config.Config
	scanner    PageScanner
	cleaner    Cleaner
	downloader remote.Downloader
	merger     Merger
	uploader   Uploader
	recorder   Recorder
	prompter   prompt.Prompter
	logger     *slog.Logger

	format     string
	resolution int
	outputDir  string
}

// DefaultOutputName is offered when the operator does not name the document.
const DefaultOutputName = "scan"

// New constructs a Controller.
func New(params Params) *Controller {
	logger := params.Logger
	if logger == nil {
		logger = logging.NewNop()
	}
	outputDir := params.OutputDir
	if outputDir == "" {
		outputDir = "."
	}
	return &Controller{
		cfg:        params.Config,
		scanner:    params.Scanner,
		cleaner:    params.Cleaner,
		downloader: params.Downloader,
		merger:     params.Merger,
		uploader:   params.Uploader,
		recorder:   params.Recorder,
		prompter:   params.Prompter,
		logger:     logger,
		format:     params.Format,
		resolution: params.Resolution,
		outputDir:  outputDir,
	}
}

// Run executes one scan session end to end. The returned session always
// carries a terminal status; the error is non-nil only for fatal failures.
func (c *Controller) Run(ctx context.Context) (*session.Session, error) {
	format, err := scanner.LookupFormat(c.format)
	if err != nil {
		return nil, err
	}
	if err := scanner.ValidateResolution(c.resolution); err != nil {
		return nil, err
	}

	sess := session.New(format.Name, c.resolution)
	ctx = services.WithSessionID(ctx, sess.ID)
	logger := c.logger.With(logging.String(logging.FieldSessionID, sess.ID))

	if c.cfg.BatchDirIsTemporary() {
		sess.BatchDir = scanner.TemporaryBatchDir()
		sess.TempBatchDir = true
	} else {
		sess.BatchDir = c.cfg.BatchDir
	}

	if err := c.execute(ctx, logger, sess, format); err != nil {
		c.cleanupRemote(ctx, logger, sess)
		sess.SetFailed(err.Error())
		c.record(ctx, logger, sess)
		return sess, err
	}

	sess.SetCompleted()
	c.record(ctx, logger, sess)
	logger.Info("session completed",
		logging.Int("pages", sess.PageCount()),
		logging.String("output", sess.OutputPath),
		logging.Bool("uploaded", sess.Uploaded),
		logging.Duration("duration", sess.FinishedAt.Sub(sess.StartedAt)),
	)
	return sess, nil
}

func (c *Controller) execute(ctx context.Context, logger *slog.Logger, sess *session.Session, format scanner.Format) error {
	if err := c.runStage(ctx, logger, sess, session.StatusChecking, func(ctx context.Context) error {
		return c.checkScanner(ctx, sess)
	}); err != nil {
		return err
	}

	pages, err := c.prompter.PageCount(ctx)
	if err != nil {
		return err
	}

	if err := c.runStage(ctx, logger, sess, session.StatusScanning, func(ctx context.Context) error {
		return c.scanPages(ctx, logger, sess, format, pages)
	}); err != nil {
		return err
	}

	staging, err := os.MkdirTemp("", "scanpi-pages-*")
	if err != nil {
		return services.Wrap(services.ErrTransfer, "transferring", "create staging dir", "", err)
	}
	defer os.RemoveAll(staging)

	if err := c.runStage(ctx, logger, sess, session.StatusTransferring, func(ctx context.Context) error {
		return c.transferPages(ctx, logger, sess, staging)
	}); err != nil {
		return err
	}

	merged := filepath.Join(staging, "merged.pdf")
	if err := c.runStage(ctx, logger, sess, session.StatusMerging, func(ctx context.Context) error {
		return c.merger.Merge(ctx, sess.LocalPaths(), merged, format.Name)
	}); err != nil {
		return err
	}

	if err := c.runStage(ctx, logger, sess, session.StatusNaming, func(ctx context.Context) error {
		return c.nameOutput(ctx, sess, merged)
	}); err != nil {
		return err
	}

	if c.uploader != nil {
		if err := c.runStage(ctx, logger, sess, session.StatusUploading, func(ctx context.Context) error {
			return c.uploadDocument(ctx, logger, sess)
		}); err != nil {
			return err
		}
	}

	c.cleanupRemote(ctx, logger, sess)
	return nil
}

func (c *Controller) runStage(ctx context.Context, logger *slog.Logger, sess *session.Session, status session.Status, fn func(context.Context) error) error {
	sess.Status = status
	c.record(ctx, logger, sess)
	stageCtx := services.WithStage(ctx, string(status))
	stageLogger := logger.With(logging.String(logging.FieldStage, string(status)))

	start := time.Now()
	stageLogger.Debug("stage started")
	if err := fn(stageCtx); err != nil {
		stageLogger.Error("stage failed",
			logging.Error(err),
			logging.Duration("stage_duration", time.Since(start)),
		)
		return err
	}
	stageLogger.Debug("stage completed", logging.Duration("stage_duration", time.Since(start)))
	return nil
}

func (c *Controller) checkScanner(ctx context.Context, sess *session.Session) error {
	if err := c.scanner.CheckConnection(ctx); err != nil {
		return err
	}
	if err := c.scanner.Probe(ctx); err != nil {
		return err
	}
	return c.scanner.EnsureBatchDir(ctx, sess.BatchDir)
}

// scanPages drives the per-page loop. A failed scanimage run is retried as
// long as the operator agrees and the attempt budget allows; anything else
// fails the session.
func (c *Controller) scanPages(ctx context.Context, logger *slog.Logger, sess *session.Session, format scanner.Format, pages int) error {
	maxAttempts := c.cfg.Scanner.MaxRetries
	for number := 1; number <= pages; number++ {
		if err := c.prompter.ConfirmPageReady(ctx, number); err != nil {
			return err
		}

		page := sess.AddPage(scanner.PagePath(sess.BatchDir, number))
		pageCtx := services.WithPage(ctx, number)
		for {
			page.Attempts++
			remotePath, err := c.scanner.ScanPage(pageCtx, sess.BatchDir, number, format, sess.Resolution)
			if err == nil {
				page.RemotePath = remotePath
				page.Status = session.PageScanned
				break
			}

			if !services.Retryable(err) {
				page.Status = session.PageFailed
				return err
			}
			if page.Attempts >= maxAttempts {
				page.Status = session.PageFailed
				return services.Wrap(services.ErrCommand, "scanning", "scan page",
					fmt.Sprintf("page %d failed after %d attempts", number, page.Attempts), err)
			}

			logger.Warn("page scan failed",
				logging.Int(logging.FieldPage, number),
				logging.Int("attempt", page.Attempts),
				logging.Error(err),
			)
			retry, promptErr := c.prompter.RetryPage(ctx, number, err.Error())
			if promptErr != nil {
				page.Status = session.PageFailed
				return promptErr
			}
			if !retry {
				page.Status = session.PageFailed
				return err
			}
		}
	}
	return nil
}

func (c *Controller) transferPages(ctx context.Context, logger *slog.Logger, sess *session.Session, staging string) error {
	for i := range sess.Pages {
		page := &sess.Pages[i]
		localPath := filepath.Join(staging, scanner.PageFileName(page.Number))
		pageCtx := services.WithPage(ctx, page.Number)
		if err := c.downloader.Download(pageCtx, page.RemotePath, localPath); err != nil {
			page.Status = session.PageFailed
			return err
		}
		page.LocalPath = localPath
		page.Status = session.PageTransferred
		logger.Debug("page transferred", logging.Int(logging.FieldPage, page.Number))
	}
	return nil
}

func (c *Controller) nameOutput(ctx context.Context, sess *session.Session, mergedPath string) error {
	name, err := c.prompter.OutputName(ctx, DefaultOutputName)
	if err != nil {
		return err
	}
	name = strings.TrimSpace(name)
	if name == "" {
		name = DefaultOutputName
	}
	if !strings.HasSuffix(strings.ToLower(name), ".pdf") {
		name += ".pdf"
	}

	outputPath := filepath.Join(c.outputDir, name)
	if err := os.MkdirAll(c.outputDir, 0o755); err != nil {
		return services.Wrap(services.ErrMerge, "naming", "create output dir", c.outputDir, err)
	}
	if err := moveFile(mergedPath, outputPath); err != nil {
		return services.Wrap(services.ErrMerge, "naming", "move document", outputPath, err)
	}
	sess.OutputPath = outputPath
	return nil
}

// uploadDocument asks the operator and posts the document. Upload failures
// are reported but never fail the session.
func (c *Controller) uploadDocument(ctx context.Context, logger *slog.Logger, sess *session.Session) error {
	confirmed, err := c.prompter.ConfirmUpload(ctx)
	if err != nil {
		return err
	}
	if !confirmed {
		return nil
	}

	title := paperless.TitleFromFilename(sess.OutputPath)
	if err := c.uploader.Upload(ctx, sess.OutputPath, title); err != nil {
		if services.Fatal(err) {
			return err
		}
		logger.Warn("upload failed, document kept locally",
			logging.String("output", sess.OutputPath),
			logging.Error(err),
		)
		return nil
	}
	sess.Uploaded = true
	return nil
}

// cleanupRemote is best effort: the document is already safe locally, so
// remote failures only warrant a warning.
func (c *Controller) cleanupRemote(ctx context.Context, logger *slog.Logger, sess *session.Session) {
	if c.cleaner == nil {
		return
	}
	var err error
	if sess.TempBatchDir {
		err = c.cleaner.RemoveBatchDir(ctx, sess.BatchDir)
	} else {
		err = c.cleaner.RemovePages(ctx, sess.BatchDir, sess.PageCount())
	}
	if err != nil {
		logger.Warn("remote cleanup failed",
			logging.String("batch_dir", sess.BatchDir),
			logging.Error(err),
		)
	}
}

func (c *Controller) record(ctx context.Context, logger *slog.Logger, sess *session.Session) {
	if c.recorder == nil {
		return
	}
	if err := c.recorder.Record(ctx, sess); err != nil {
		logger.Warn("failed to record session history", logging.Error(err))
	}
}

func moveFile(source, target string) error {
	if err := os.Rename(source, target); err == nil {
		return nil
	}
	// Rename fails across filesystems; fall back to copy and remove.
	data, err := os.ReadFile(source)
	if err != nil {
		return err
	}
	if err := os.WriteFile(target, data, 0o644); err != nil {
		return err
	}
	return os.Remove(source)
}

