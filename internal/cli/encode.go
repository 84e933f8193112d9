package cli

import (
	"context"
	stderrors "errors"
	"os/exec"

	"github.com/spf13/cobra"

	"github.com/matzehuels/chaosgame/pkg/cache"
	"github.com/matzehuels/chaosgame/pkg/encode"
	"github.com/matzehuels/chaosgame/pkg/errors"
	"github.com/matzehuels/chaosgame/pkg/pipeline"
)

// encodeFlags holds the command-line flags for the encode command.
type encodeFlags struct {
	to      string // gif or mp4
	encoder string // auto, ffmpeg, builtin
	fps     int    // 0 uses the rate recorded in run.json
}

// encodeCommand creates the encode command.
func (c *CLI) encodeCommand() *cobra.Command {
	f := encodeFlags{to: string(encode.TargetGIF), encoder: encode.EncoderAuto}

	cmd := &cobra.Command{
		Use:   "encode <run-dir>",
		Short: "Assemble a rendered run into a GIF or MP4",
		Long: `Encode reads the frames of a finished run and writes <run-dir>/animation.<ext>.

The run directory normally holds the run.json manifest written by render. Without
one, the frames found in <run-dir>/frames are encoded at --fps (default 30).
Frames are not re-rendered; a failed encode can be retried as often as needed.`,
		Example: `  chaosgame encode output/hexagon_r0.666 --to gif
  chaosgame encode output/pentagon_r0.618 --to mp4 --fps 60`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			target, err := encode.ParseTarget(f.to)
			if err != nil {
				return err
			}
			if target == encode.TargetNone {
				return errors.Invalid("--to must be gif or mp4")
			}
			return c.runEncode(cmd.Context(), args[0], target, f)
		},
	}

	cmd.Flags().StringVarP(&f.to, "to", "t", f.to, "animation format: gif, mp4")
	cmd.Flags().StringVar(&f.encoder, "encoder", f.encoder, "encoder: auto, ffmpeg, builtin")
	cmd.Flags().IntVar(&f.fps, "fps", 0, "frames per second (default: the run's frame rate)")

	return cmd
}

func (c *CLI) runEncode(ctx context.Context, runDir string, target encode.Target, f encodeFlags) error {
	runner := pipeline.NewRunner(cache.NewNullCache(), nil, c.Logger)
	defer runner.Close()

	spinner := newSpinner(ctx, "Encoding "+displayPath(runDir)+"...")
	spinner.Start()

	var output string
	err := cache.RetryWithBackoff(ctx, func() error {
		out, err := runner.EncodeRun(ctx, runDir, target, f.encoder, f.fps)
		if err != nil {
			if retryableEncode(err) {
				c.Logger.Debug("encode failed, retrying", "error", err)
				return cache.Retryable(err)
			}
			return err
		}
		output = out
		return nil
	})
	if err != nil {
		if spinner.Cancelled() {
			spinner.Stop()
			return err
		}
		spinner.StopWithError("Encoding failed")
		return err
	}
	spinner.StopWithSuccess("Encoded " + string(target))
	printFile(output)
	return nil
}

// retryableEncode reports whether running the encoder again could succeed.
// Failures without an underlying cause, such as a missing ffmpeg, are final.
func retryableEncode(err error) bool {
	if !errors.IsRetryable(err) || stderrors.Is(err, exec.ErrNotFound) {
		return false
	}
	var e *errors.Error
	return stderrors.As(err, &e) && e.Cause != nil
}
