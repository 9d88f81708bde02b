package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/sharpframes/sharpframes-processing-service/internal/analysis"
	"github.com/sharpframes/sharpframes-processing-service/internal/detect360"
	"github.com/sharpframes/sharpframes-processing-service/internal/domain/entity"
	"github.com/sharpframes/sharpframes-processing-service/internal/domain/port"
	"github.com/sharpframes/sharpframes-processing-service/internal/export"
	"github.com/sharpframes/sharpframes-processing-service/internal/infra/metrics"
	"github.com/sharpframes/sharpframes-processing-service/internal/infra/ziparchive"
	"github.com/sharpframes/sharpframes-processing-service/internal/selection"
)

type ProcessVideoUseCase struct {
	repo      port.JobRepository
	storage   port.VideoStorage
	opener    port.VideoSourceOpener
	masker    port.MaskGenerator
	publisher port.StatusPublisher
	dlq       port.DLQPublisher
	notifier  port.FailureNotifier
	logger    *zap.Logger
	cfg       ProcessVideoConfig
}

type ProcessVideoConfig struct {
	TempDir         string
	MaxRetries      int
	SampleFPS       int
	AnalysisViewPx  int
	AnalysisMaxEdge int
	ExportFacePx    int
	JPEGQuality     int
}

func NewProcessVideoUseCase(
	repo port.JobRepository,
	storage port.VideoStorage,
	opener port.VideoSourceOpener,
	masker port.MaskGenerator,
	publisher port.StatusPublisher,
	dlq port.DLQPublisher,
	notifier port.FailureNotifier,
	logger *zap.Logger,
	cfg ProcessVideoConfig,
) *ProcessVideoUseCase {
	return &ProcessVideoUseCase{
		repo:      repo,
		storage:   storage,
		opener:    opener,
		masker:    masker,
		publisher: publisher,
		dlq:       dlq,
		notifier:  notifier,
		logger:    logger,
		cfg:       cfg,
	}
}

func (uc *ProcessVideoUseCase) Execute(ctx context.Context, rawMsg []byte) error {
	tracer := otel.Tracer("usecase")
	ctx, span := tracer.Start(ctx, "ProcessVideoUseCase.Execute")
	defer span.End()

	totalTimer := time.Now()

	var msg entity.ProcessingRequestMessage
	if err := json.Unmarshal(rawMsg, &msg); err != nil {
		uc.logger.Error("failed to unmarshal message", zap.Error(err), zap.ByteString("body", rawMsg))
		_ = uc.dlq.PublishToDLQ(ctx, rawMsg, "unmarshal_error: "+err.Error())
		return nil
	}

	span.SetAttributes(
		attribute.String("job.id", msg.JobID.String()),
		attribute.String("job.video_key", msg.VideoKey),
	)

	log := uc.logger.With(zap.String("job_id", msg.JobID.String()), zap.String("video_key", msg.VideoKey))

	job, err := uc.repo.FindByID(ctx, msg.JobID)
	if err != nil {
		job = entity.NewJob(msg.UserID, msg.VideoKey, msg.FileSize, uc.cfg.MaxRetries)
		job.ID = msg.JobID
		if err := uc.repo.Create(ctx, job); err != nil {
			log.Error("failed to create job record", zap.Error(err))
			return fmt.Errorf("create job: %w", err)
		}
	}

	if !job.CanRetry() {
		log.Warn("job exhausted retries, sending to DLQ")
		_ = uc.handlePermanentFailure(ctx, job, msg, rawMsg, "max retries exceeded")
		return nil
	}

	job.MarkProcessing()
	if err := uc.repo.Update(ctx, job); err != nil {
		log.Error("failed to update job to PROCESSING", zap.Error(err))
		return fmt.Errorf("update job: %w", err)
	}

	metrics.ActiveWorkers.Inc()
	defer metrics.ActiveWorkers.Dec()

	if err := uc.processPipeline(ctx, job, msg, rawMsg, log); err != nil {
		return err
	}

	metrics.JobsProcessedTotal.WithLabelValues("completed").Inc()
	metrics.JobStageDuration.WithLabelValues("total").Observe(time.Since(totalTimer).Seconds())

	return nil
}

func (uc *ProcessVideoUseCase) processPipeline(
	ctx context.Context,
	job *entity.Job,
	msg entity.ProcessingRequestMessage,
	rawMsg []byte,
	log *zap.Logger,
) error {
	tracer := otel.Tracer("usecase")

	workDir := filepath.Join(uc.cfg.TempDir, job.ID.String())
	if err := os.MkdirAll(workDir, 0755); err != nil {
		return fmt.Errorf("create workdir: %w", err)
	}
	defer os.RemoveAll(workDir)

	// Download video from MinIO
	dlStart := time.Now()
	ctxDl, spanDl := tracer.Start(ctx, "download_video")
	videoPath := filepath.Join(workDir, "input.mp4")
	if err := uc.storage.DownloadVideo(ctxDl, msg.VideoKey, videoPath); err != nil {
		spanDl.End()
		log.Error("failed to download video", zap.Error(err))
		return uc.handleRetryableFailure(ctx, job, msg, rawMsg, "download_video: "+err.Error(), log)
	}
	spanDl.End()
	metrics.JobStageDuration.WithLabelValues("download").Observe(time.Since(dlStart).Seconds())

	// Open the decoded source and build the session
	src, err := uc.opener.Open(ctx, videoPath)
	if err != nil {
		log.Error("failed to open video", zap.Error(err))
		return uc.handleRetryableFailure(ctx, job, msg, rawMsg, "open_video: "+err.Error(), log)
	}
	defer src.Close()

	sess, err := uc.buildSession(msg, src)
	if err != nil {
		// A rejected configuration never becomes valid on retry.
		log.Error("invalid session configuration", zap.Error(err))
		return uc.handlePermanentFailure(ctx, job, msg, rawMsg, "configuration: "+err.Error())
	}

	job.RecordVideo(src.Duration(), src.Width(), src.Height(), sess.Spherical, sess.Mode)
	_ = uc.repo.Update(ctx, job)

	log.Info("session ready",
		zap.Bool("spherical", sess.Spherical),
		zap.String("mode", string(sess.Mode)),
		zap.Int("views", len(sess.Views)),
		zap.String("detection", sess.Detection.Reason),
	)

	// Analysis pass
	sampleFPS := msg.SampleFPS
	if sampleFPS == 0 {
		sampleFPS = uc.cfg.SampleFPS
	}
	anStart := time.Now()
	ctxAn, spanAn := tracer.Start(ctx, "analyze_frames")
	driver := analysis.NewDriver(src, log)
	err = driver.Run(ctxAn, sess.Views, analysis.Options{
		SampleFPS:     sampleFPS,
		Spherical:     sess.Spherical,
		ViewSize:      uc.cfg.AnalysisViewPx,
		MaxPlanarEdge: uc.cfg.AnalysisMaxEdge,
	}, func(processed, total int) {
		sess.Progress = float64(processed) / float64(total)
	})
	if err != nil {
		spanAn.End()
		log.Error("analysis failed", zap.Error(err))
		return uc.handleRetryableFailure(ctx, job, msg, rawMsg, "analyze_frames: "+err.Error(), log)
	}
	spanAn.End()
	metrics.JobStageDuration.WithLabelValues("analyze").Observe(time.Since(anStart).Seconds())

	sampleCount := 0
	for _, v := range sess.Views {
		sampleCount += len(v.Samples)
		for _, s := range v.Samples {
			metrics.SharpnessVariance.Observe(s.Variance)
		}
	}
	metrics.FramesAnalyzedTotal.Add(float64(sampleCount))
	eligibleCount := selection.CountEligible(sess.Views)

	// Export pass
	exStart := time.Now()
	ctxEx, spanEx := tracer.Start(ctx, "export_frames")
	archivePath := filepath.Join(workDir, "frames.zip")
	archiveFile, err := os.Create(archivePath)
	if err != nil {
		spanEx.End()
		return uc.handleRetryableFailure(ctx, job, msg, rawMsg, "create_archive: "+err.Error(), log)
	}
	archive := ziparchive.NewWriter(archiveFile)

	assembler := export.NewAssembler(src, archive, uc.masker, log, export.Options{
		FaceSize:    uc.cfg.ExportFacePx,
		JPEGQuality: uc.cfg.JPEGQuality,
	})
	exported := 0
	if err := assembler.Run(ctxEx, sess, func(processed, total int) {
		exported = processed
	}); err != nil {
		archiveFile.Close()
		spanEx.End()
		log.Error("export failed", zap.Error(err))
		return uc.handleRetryableFailure(ctx, job, msg, rawMsg, "export_frames: "+err.Error(), log)
	}
	if err := archive.Finalize(); err != nil {
		archiveFile.Close()
		spanEx.End()
		return uc.handleRetryableFailure(ctx, job, msg, rawMsg, "finalize_archive: "+err.Error(), log)
	}
	archiveFile.Close()
	spanEx.End()
	metrics.JobStageDuration.WithLabelValues("export").Observe(time.Since(exStart).Seconds())
	metrics.FramesExportedTotal.Add(float64(exported))

	// Upload archive to MinIO
	upStart := time.Now()
	ctxUp, spanUp := tracer.Start(ctx, "upload_archive")
	archiveKey := fmt.Sprintf("%s/frames_%s.zip", msg.UserID, job.ID.String())
	zipFile, err := os.Open(archivePath)
	if err != nil {
		spanUp.End()
		return uc.handleRetryableFailure(ctx, job, msg, rawMsg, "open_archive: "+err.Error(), log)
	}
	zipStat, _ := zipFile.Stat()
	if err := uc.storage.UploadArchive(ctxUp, archiveKey, zipFile, zipStat.Size()); err != nil {
		zipFile.Close()
		spanUp.End()
		log.Error("archive upload failed", zap.Error(err))
		return uc.handleRetryableFailure(ctx, job, msg, rawMsg, "upload_archive: "+err.Error(), log)
	}
	zipFile.Close()
	spanUp.End()
	metrics.JobStageDuration.WithLabelValues("upload").Observe(time.Since(upStart).Seconds())

	// Mark completed
	job.MarkCompleted(archiveKey, sampleCount, eligibleCount)
	if err := uc.repo.Update(ctx, job); err != nil {
		log.Error("failed to update job to COMPLETED", zap.Error(err))
		return fmt.Errorf("update job completed: %w", err)
	}

	uc.publishStatus(ctx, job, log)

	log.Info("job completed successfully",
		zap.Int("sample_count", sampleCount),
		zap.Int("eligible_count", eligibleCount),
		zap.String("archive_key", archiveKey),
	)

	return nil
}

// buildSession resolves the session shape from the request: 360 detection
// (with an optional explicit override), mode, rig configuration, threshold
// and timeline ranges.
func (uc *ProcessVideoUseCase) buildSession(msg entity.ProcessingRequestMessage, src port.VideoSource) (*entity.Session, error) {
	detection := detect360.Detect(src.Width(), src.Height())
	spherical := detection.Is360
	if msg.Force360 != nil {
		spherical = *msg.Force360
	}

	sess := entity.NewSession(msg.VideoKey, src.Duration(), src.Width(), src.Height(), detection, spherical)

	if spherical && msg.Mode != "" {
		if err := sess.SetMode(msg.Mode); err != nil {
			return nil, err
		}
		if msg.Mode == entity.ModeCustom && msg.Custom != (entity.CustomConfig{}) {
			if err := sess.ApplyCustomConfig(msg.Custom); err != nil {
				return nil, err
			}
		}
	}

	sess.ApplyThreshold(msg.Threshold)

	for _, v := range sess.Views {
		for _, r := range msg.Ranges {
			committed, ok := v.CommitRange(r.Start, r.End)
			if !ok {
				continue
			}
			v.UpdateRange(committed.ID, r.Start, r.End, r.Action, r.Prompt)
		}
		v.ClearSelection()
	}

	return sess, nil
}

func (uc *ProcessVideoUseCase) handleRetryableFailure(
	ctx context.Context,
	job *entity.Job,
	msg entity.ProcessingRequestMessage,
	rawMsg []byte,
	errMsg string,
	log *zap.Logger,
) error {
	job.MarkFailed(errMsg)
	_ = uc.repo.Update(ctx, job)

	if !job.CanRetry() {
		return uc.handlePermanentFailure(ctx, job, msg, rawMsg, errMsg)
	}

	metrics.RetryTotal.WithLabelValues(strconv.Itoa(job.Attempt)).Inc()
	uc.publishStatus(ctx, job, log)

	return fmt.Errorf("retryable failure (attempt %d/%d): %s", job.Attempt, job.MaxAttempts, errMsg)
}

func (uc *ProcessVideoUseCase) handlePermanentFailure(
	ctx context.Context,
	job *entity.Job,
	msg entity.ProcessingRequestMessage,
	rawMsg []byte,
	errMsg string,
) error {
	job.MarkFailed(errMsg)
	_ = uc.repo.Update(ctx, job)

	_ = uc.dlq.PublishToDLQ(ctx, rawMsg, errMsg)

	uc.publishStatus(ctx, job, uc.logger)

	metrics.JobsProcessedTotal.WithLabelValues("dlq").Inc()

	if msg.UserEmail != "" {
		_ = uc.notifier.NotifyFailure(ctx, msg.UserEmail, job.ID.String(), msg.VideoKey, errMsg)
	}

	return nil
}

func (uc *ProcessVideoUseCase) publishStatus(ctx context.Context, job *entity.Job, log *zap.Logger) {
	statusMsg := entity.ProcessingStatusMessage{
		JobID:         job.ID,
		UserID:        job.UserID,
		Status:        job.Status,
		VideoKey:      job.VideoKey,
		ArchiveKey:    job.ArchiveKey,
		Spherical:     job.Spherical,
		Mode:          job.Mode,
		SampleCount:   job.SampleCount,
		EligibleCount: job.EligibleCount,
		Duration:      job.VideoDuration,
		ErrorMessage:  job.ErrorMessage,
		Attempt:       job.Attempt,
		MaxAttempts:   job.MaxAttempts,
	}
	data, _ := json.Marshal(statusMsg)
	if err := uc.publisher.PublishStatus(ctx, data); err != nil {
		log.Error("failed to publish status", zap.Error(err))
	}
}
