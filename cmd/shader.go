package cmd

import (
	"fmt"

	"layer-manager/core/layer"
	"layer-manager/feature/voxel"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var uniformsOnly bool

// shaderCmd prints the generated shader of a voxel layer.
var shaderCmd = &cobra.Command{
	Use:   "shader <layers.yaml> <layer-id>",
	Short: "Print the generated shader and uniforms of a voxel layer",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		layers, _, err := readLayerFile(args[0])
		if err != nil {
			return err
		}

		var target layer.VoxelLayer
		found := false
		for _, l := range layers {
			if v, ok := l.(layer.VoxelLayer); ok && v.ID == args[1] {
				target, found = v, true
				break
			}
		}
		if !found {
			return fmt.Errorf("no voxel layer %q in %s", args[1], args[0])
		}

		shader, err := voxel.Generate(target)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if !uniformsOnly {
			fmt.Fprintln(out, shader.Source)
			fmt.Fprintln(out, "---")
		}
		enc := yaml.NewEncoder(out)
		enc.SetIndent(2)
		defer enc.Close()
		return enc.Encode(map[string]any{
			"keys":     shader.Keys,
			"uniforms": shader.Uniforms,
		})
	},
}

func init() {
	shaderCmd.Flags().BoolVar(&uniformsOnly, "uniforms", false, "Print only the uniforms")
	RootCmd.AddCommand(shaderCmd)
}
