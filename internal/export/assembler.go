// Package export materializes the eligible frames of a session into an
// archive: full frames in planar mode, six faces per timestamp in skybox
// mode, one folder per view in custom mode.
package export

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	"math"
	"strings"

	"go.uber.org/zap"

	"github.com/sharpframes/sharpframes-processing-service/internal/domain/entity"
	"github.com/sharpframes/sharpframes-processing-service/internal/domain/port"
	"github.com/sharpframes/sharpframes-processing-service/internal/projection"
	"github.com/sharpframes/sharpframes-processing-service/internal/selection"
)

// Options configures one export run. FaceSize is deliberately independent
// of the analysis resolution: export quality must not be limited by
// analysis downscaling.
type Options struct {
	FaceSize    int
	JPEGQuality int
}

// DefaultOptions exports faces and perspectives at 1024px.
func DefaultOptions() Options {
	return Options{FaceSize: 1024, JPEGQuality: 90}
}

// Progress is invoked after every archived frame. The counter is
// independent of the analysis progress counter.
type Progress func(processed, total int)

// Assembler re-decodes and re-projects eligible frames at export
// resolution and writes them through the archive port.
type Assembler struct {
	src     port.VideoSource
	archive port.ArchiveWriter
	masker  port.MaskGenerator
	log     *zap.Logger
	opts    Options
}

func NewAssembler(src port.VideoSource, archive port.ArchiveWriter, masker port.MaskGenerator, log *zap.Logger, opts Options) *Assembler {
	return &Assembler{src: src, archive: archive, masker: masker, log: log, opts: opts}
}

// Run writes the archive for the session's current selection. Exported
// images always use the views' current geometry; samples collected before
// a later angle edit are knowingly stale until the next analysis run.
func (a *Assembler) Run(ctx context.Context, sess *entity.Session, progress Progress) error {
	origin := a.src.Position()
	a.src.Pause()
	defer func() {
		if err := a.src.Seek(context.WithoutCancel(ctx), origin); err != nil {
			a.log.Warn("failed to restore playback position", zap.Error(err))
		}
		a.src.Resume()
	}()

	if !sess.Spherical {
		return a.runPlanar(ctx, sess, progress)
	}
	if sess.Mode == entity.ModeCustom {
		return a.runCustom(ctx, sess, progress)
	}
	return a.runSkybox(ctx, sess, progress)
}

func (a *Assembler) runPlanar(ctx context.Context, sess *entity.Session, progress Progress) error {
	view := sess.Views[0]
	eligible := selection.Eligible(view)
	total := len(eligible)

	for i, s := range eligible {
		frame, err := a.decodeAt(ctx, s.Time)
		if err != nil {
			return err
		}

		data, err := a.encodeJPEG(frame)
		if err != nil {
			return fmt.Errorf("encode frame %.3fs: %w", s.Time, err)
		}

		name := frameFileName(s.Time, s.Variance)
		if err := a.archive.AddFile(name, data); err != nil {
			return fmt.Errorf("archive %s: %w", name, err)
		}

		a.maybeGenerateMask(ctx, view, s.Time, data, strings.TrimSuffix(name, ".jpg"))

		if progress != nil {
			progress(i+1, total)
		}
	}
	return nil
}

func (a *Assembler) runSkybox(ctx context.Context, sess *entity.Session, progress Progress) error {
	times := selection.EligibleTimes(sess.Views)
	total := len(times)

	for i, t := range times {
		frame, err := a.decodeAt(ctx, t)
		if err != nil {
			return err
		}

		folder := fmt.Sprintf("frame_%s", formatTimestamp(t))
		if err := a.archive.CreateFolder(folder); err != nil {
			return fmt.Errorf("create folder %s: %w", folder, err)
		}

		for _, face := range projection.CubemapFaces {
			img, err := projection.ExtractCubemapFace(frame, face.Tag, a.opts.FaceSize)
			if err != nil {
				if a.skippableGeometry(err, folder, face.Name) {
					continue
				}
				return err
			}
			data, err := a.encodeJPEG(img)
			if err != nil {
				return fmt.Errorf("encode face %s: %w", face.Name, err)
			}
			path := fmt.Sprintf("%s/%s.jpg", folder, face.Name)
			if err := a.archive.AddFile(path, data); err != nil {
				return fmt.Errorf("archive %s: %w", path, err)
			}
		}

		if progress != nil {
			progress(i+1, total)
		}
	}
	return nil
}

func (a *Assembler) runCustom(ctx context.Context, sess *entity.Session, progress Progress) error {
	total := selection.CountEligible(sess.Views)
	processed := 0

	for _, view := range sess.Views {
		eligible := selection.Eligible(view)
		if len(eligible) == 0 {
			continue
		}

		folder := sanitizeName(view.Name)
		if err := a.archive.CreateFolder(folder); err != nil {
			return fmt.Errorf("create folder %s: %w", folder, err)
		}

		for _, s := range eligible {
			frame, err := a.decodeAt(ctx, s.Time)
			if err != nil {
				return err
			}

			img, err := projection.ExtractPerspective(
				frame, view.Yaw, view.Pitch, view.FOV, a.opts.FaceSize, a.opts.FaceSize)
			if err != nil {
				if a.skippableGeometry(err, folder, formatTimestamp(s.Time)) {
					processed++
					continue
				}
				return err
			}

			data, err := a.encodeJPEG(img)
			if err != nil {
				return fmt.Errorf("encode view %s at %.3fs: %w", view.Name, s.Time, err)
			}
			path := fmt.Sprintf("%s/%s", folder, frameFileName(s.Time, s.Variance))
			if err := a.archive.AddFile(path, data); err != nil {
				return fmt.Errorf("archive %s: %w", path, err)
			}

			a.maybeGenerateMask(ctx, view, s.Time, data, strings.TrimSuffix(path, ".jpg"))

			processed++
			if progress != nil {
				progress(processed, total)
			}
		}
	}
	return nil
}

func (a *Assembler) decodeAt(ctx context.Context, t float64) (*image.RGBA, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := a.src.Seek(ctx, t); err != nil {
		return nil, &port.DecodeError{Op: fmt.Sprintf("seek %.3fs", t), Err: err}
	}
	frame, err := a.src.Frame()
	if err != nil {
		return nil, &port.DecodeError{Op: fmt.Sprintf("read frame %.3fs", t), Err: err}
	}
	return frame, nil
}

// maybeGenerateMask runs the external masking collaborator for frames
// covered by a mask_generation range. Failures are logged and isolated;
// they never abort the export of the base image or of other frames.
func (a *Assembler) maybeGenerateMask(ctx context.Context, view *entity.View, t float64, frame []byte, basePath string) {
	if a.masker == nil {
		return
	}
	prompt, ok := selection.PromptFor(view, t)
	if !ok {
		return
	}

	mask, err := a.masker.GenerateMask(ctx, frame, prompt)
	if err != nil {
		a.log.Warn("mask generation failed",
			zap.Float64("time", t),
			zap.String("prompt", prompt),
			zap.Error(err),
		)
		return
	}
	if err := a.archive.AddFile(basePath+"_mask.png", mask); err != nil {
		a.log.Warn("failed to archive mask", zap.String("path", basePath), zap.Error(err))
	}
}

// skippableGeometry logs and skips a per-frame geometry failure during
// export; analysis treats the same failure as fatal.
func (a *Assembler) skippableGeometry(err error, folder, item string) bool {
	var geomErr *projection.GeometryError
	if errors.As(err, &geomErr) {
		a.log.Warn("skipping frame with degenerate geometry",
			zap.String("folder", folder),
			zap.String("item", item),
			zap.Error(err),
		)
		return true
	}
	return false
}

func (a *Assembler) encodeJPEG(img *image.RGBA) ([]byte, error) {
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: a.opts.JPEGQuality}); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// formatTimestamp renders seconds as a fixed-width, lexically sortable
// token, e.g. 12.5 -> "00012.500".
func formatTimestamp(t float64) string {
	return fmt.Sprintf("%09.3f", t)
}

func frameFileName(t, variance float64) string {
	return fmt.Sprintf("frame_%s_%d.jpg", formatTimestamp(t), int(math.Round(variance)))
}

// sanitizeName makes a view's display name safe as an archive folder.
func sanitizeName(name string) string {
	replacer := strings.NewReplacer("/", "_", "\\", "_", "..", "_", " ", "_")
	cleaned := replacer.Replace(strings.TrimSpace(name))
	if cleaned == "" {
		return "view"
	}
	return cleaned
}
