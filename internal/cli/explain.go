package cli

import (
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/matzehuels/chaosgame/pkg/errors"
	"github.com/matzehuels/chaosgame/pkg/pipeline"
)

// explain prints the remediation for a failed run and returns err unchanged.
// result may be nil when the run never started. rerun is the command line
// that reproduces the run, see rerunCommand.
func explain(err error, result *pipeline.Result, rerun string) error {
	switch errors.GetCode(err) {
	case errors.ErrCodeInvalidConfiguration:
		printDetail("nothing was written; check the flags or the --config file")
	case errors.ErrCodeCanceled:
		if result != nil {
			printWarning("run stopped after %d/%d frames", len(result.Frames), result.Total)
			printNextStep("Resume from cache", rerun)
		}
	case errors.ErrCodeRenderFailure:
		if result != nil {
			printDetail("frames in %s are partial", displayPath(result.FramesDir))
		}
		if !strings.Contains(rerun, "--clean") {
			rerun += " --clean"
		}
		printNextStep("Start over", rerun)
	case errors.ErrCodeEncodingFailure:
		if result != nil {
			printSuccess("%d frames written", len(result.Frames))
			printFile(result.FramesDir)
			printNextStep("Retry with the built-in encoder", "chaosgame encode "+displayPath(result.Dir)+" --to gif --encoder builtin")
		}
	}
	return err
}

// rerunCommand rebuilds cmd's command line from the flags that were set.
func rerunCommand(cmd *cobra.Command) string {
	parts := []string{cmd.CommandPath()}
	cmd.Flags().Visit(func(f *pflag.Flag) {
		if f.Value.Type() == "bool" {
			if f.Value.String() == "true" {
				parts = append(parts, "--"+f.Name)
			} else {
				parts = append(parts, "--"+f.Name+"=false")
			}
			return
		}
		v := f.Value.String()
		if v == "" || strings.ContainsAny(v, " \t'\"$#*?;&|<>()") {
			v = strconv.Quote(v)
		}
		parts = append(parts, "--"+f.Name, v)
	})
	return strings.Join(parts, " ")
}
