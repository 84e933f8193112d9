package cli

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/matzehuels/chaosgame/pkg/errors"
	"github.com/matzehuels/chaosgame/pkg/geometry"
	"github.com/matzehuels/chaosgame/pkg/palette"
	"github.com/matzehuels/chaosgame/pkg/pipeline"
)

// polygonInfo describes one regular polygon for rate and polygons output.
type polygonInfo struct {
	Vertices     int      `json:"vertices"`
	Name         string   `json:"name"`
	Rate         float64  `json:"rate"`
	RunDir       string   `json:"run_dir"`
	VertexColors []string `json:"vertex_colors"` // palette colour at each corner, first vertex up
}

func describePolygon(n int) (polygonInfo, error) {
	name, err := geometry.Name(n)
	if err != nil {
		return polygonInfo{}, err
	}
	rate, err := geometry.OptimalRate(n)
	if err != nil {
		return polygonInfo{}, err
	}
	vertices, err := geometry.Vertices(geometry.PolygonSpec{Vertices: n, Radius: 1, Rotation: geometry.DefaultRotation})
	if err != nil {
		return polygonInfo{}, err
	}
	colors := make([]string, len(vertices))
	for i, v := range vertices {
		s, err := palette.Map(v, 1)
		if err != nil {
			return polygonInfo{}, err
		}
		colors[i] = s.Hex()
	}
	return polygonInfo{
		Vertices:     n,
		Name:         name,
		Rate:         rate,
		RunDir:       pipeline.RunDirName(name, rate),
		VertexColors: colors,
	}, nil
}

// rateCommand creates the rate command.
func (c *CLI) rateCommand() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "rate <vertices>...",
		Short: "Print the optimal contraction ratio for polygons",
		Example: `  chaosgame rate 5
  chaosgame rate 3 4 6 --json`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			infos := make([]polygonInfo, 0, len(args))
			for _, arg := range args {
				n, err := strconv.Atoi(arg)
				if err != nil {
					return errors.Invalid("vertex count must be an integer, got %q", arg)
				}
				info, err := describePolygon(n)
				if err != nil {
					return err
				}
				infos = append(infos, info)
			}

			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(infos)
			}
			for _, info := range infos {
				printKeyValue(info.Name, fmt.Sprintf("%.6f", info.Rate))
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON")
	return cmd
}

// polygonsCommand creates the polygons command.
func (c *CLI) polygonsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "polygons",
		Short: "List supported polygons with their rates and run directories",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var rows [][]string
			for _, n := range geometry.Named() {
				info, err := describePolygon(n)
				if err != nil {
					return err
				}
				rows = append(rows, []string{strconv.Itoa(n), info.Name, fmt.Sprintf("%.4f", info.Rate), info.RunDir})
			}
			printTable([]string{"n", "polygon", "rate", "run dir"}, rows)
			return nil
		},
	}
}
