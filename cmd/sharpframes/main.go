// Command sharpframes extracts sharp frames from a local video into a zip
// archive, without the queue/storage plumbing the worker uses. 360 sources
// are detected automatically and exported as skybox faces or custom
// perspective views.
package main

import (
	"context"
	"flag"
	"fmt"
	"net/url"
	"os"
	"os/signal"
	"syscall"

	"github.com/schollz/progressbar/v3"
	"go.uber.org/zap"

	"github.com/sharpframes/sharpframes-processing-service/internal/analysis"
	"github.com/sharpframes/sharpframes-processing-service/internal/detect360"
	"github.com/sharpframes/sharpframes-processing-service/internal/domain/entity"
	"github.com/sharpframes/sharpframes-processing-service/internal/export"
	"github.com/sharpframes/sharpframes-processing-service/internal/infra/ffmpeg"
	"github.com/sharpframes/sharpframes-processing-service/internal/infra/ziparchive"
	"github.com/sharpframes/sharpframes-processing-service/internal/selection"
	"github.com/sharpframes/sharpframes-processing-service/pkg/logger"
)

func main() {
	var (
		input     = flag.String("i", "", "input video file (required)")
		output    = flag.String("o", "frames.zip", "output zip archive")
		fps       = flag.Int("fps", 3, "sampling rate: 3, 6 or 12 samples per second")
		threshold = flag.Float64("threshold", 100, "blur cutoff (Laplacian variance)")
		params    = flag.String("params", "", "editor parameters as a query string, e.g. \"mode=custom&frames=4&pitch=0&angle=0&fov=90\"")
		force360  = flag.Bool("force-360", false, "treat the video as equirectangular regardless of detection")
		forceFlat = flag.Bool("force-flat", false, "treat the video as planar regardless of detection")
		logLevel  = flag.String("log-level", "warn", "log level")
	)
	flag.Parse()

	if *input == "" {
		flag.Usage()
		os.Exit(2)
	}
	if *force360 && *forceFlat {
		fmt.Fprintln(os.Stderr, "cannot combine -force-360 and -force-flat")
		os.Exit(2)
	}

	log, err := logger.New(*logLevel)
	exitOnErr(err)
	defer log.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	exitOnErr(run(ctx, log, *input, *output, *fps, *threshold, *params, *force360, *forceFlat))
}

func run(ctx context.Context, log *zap.Logger, input, output string, fps int, threshold float64, rawParams string, force360, forceFlat bool) error {
	opener := &ffmpeg.Opener{Logger: log}
	src, err := opener.Open(ctx, input)
	if err != nil {
		return err
	}
	defer src.Close()

	detection := detect360.Detect(src.Width(), src.Height())
	spherical := detection.Is360
	if force360 {
		spherical = true
	}
	if forceFlat {
		spherical = false
	}

	fmt.Printf("%s: %dx%d, %.1fs — %s\n", input, src.Width(), src.Height(), src.Duration(), detection.Reason)

	sess := entity.NewSession(input, src.Duration(), src.Width(), src.Height(), detection, spherical)
	if spherical && rawParams != "" {
		q, err := url.ParseQuery(rawParams)
		if err != nil {
			return fmt.Errorf("parse -params: %w", err)
		}
		p := entity.ParseEditorParams(q)
		if err := sess.SetMode(p.Mode); err != nil {
			return err
		}
		if p.Mode == entity.ModeCustom {
			if err := sess.ApplyCustomConfig(p.Custom); err != nil {
				return err
			}
		}
	}
	sess.ApplyThreshold(threshold)

	bar := progressbar.NewOptions(-1,
		progressbar.OptionSetDescription("analyzing"),
		progressbar.OptionShowCount(),
		progressbar.OptionClearOnFinish(),
	)
	driver := analysis.NewDriver(src, log)
	err = driver.Run(ctx, sess.Views, analysis.Options{
		SampleFPS:     fps,
		Spherical:     spherical,
		ViewSize:      512,
		MaxPlanarEdge: 1080,
	}, func(processed, total int) {
		bar.ChangeMax(total)
		_ = bar.Set(processed)
	})
	_ = bar.Finish()
	if err != nil {
		return err
	}

	eligible := selection.CountEligible(sess.Views)
	if eligible == 0 {
		return fmt.Errorf("no frames pass threshold %.1f; try a lower -threshold", threshold)
	}
	fmt.Printf("%d eligible frames across %d views\n", eligible, len(sess.Views))

	out, err := os.Create(output)
	if err != nil {
		return err
	}
	defer out.Close()
	archive := ziparchive.NewWriter(out)

	exportBar := progressbar.NewOptions(-1,
		progressbar.OptionSetDescription("exporting"),
		progressbar.OptionShowCount(),
		progressbar.OptionClearOnFinish(),
	)
	assembler := export.NewAssembler(src, archive, nil, log, export.DefaultOptions())
	err = assembler.Run(ctx, sess, func(processed, total int) {
		exportBar.ChangeMax(total)
		_ = exportBar.Set(processed)
	})
	_ = exportBar.Finish()
	if err != nil {
		return err
	}
	if err := archive.Finalize(); err != nil {
		return err
	}

	fmt.Printf("wrote %s\n", output)
	return nil
}

func exitOnErr(err error) {
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
