package pipeline_test

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/chaosgame/pkg/pipeline"
)

func ExampleRunner_Execute() {
	dir, _ := os.MkdirTemp("", "chaosgame-example")
	defer os.RemoveAll(dir)

	opts := pipeline.DefaultOptions()
	opts.Vertices = 6
	opts.Duration = 2
	opts.FrameRate = 10
	opts.Width, opts.Height = 64, 64
	opts.OutputDir = dir

	runner := pipeline.NewRunner(nil, nil, log.New(io.Discard))
	result, err := runner.Execute(context.Background(), opts)
	if err != nil {
		fmt.Println(err)
		return
	}
	fmt.Println(result.State, len(result.Frames), filepath.Base(result.Dir))
	fmt.Println(filepath.Base(result.Frames[0]), filepath.Base(result.Frames[len(result.Frames)-1]))
	// Output:
	// complete 20 hexagon_r0.666
	// frame_0001.png frame_0020.png
}

func ExampleRunDirName() {
	fmt.Println(pipeline.RunDirName("pentagon", 0.6180339887))
	// Output: pentagon_r0.618
}
