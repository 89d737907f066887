package main

import (
	"fmt"

	"github.com/19829984/multires-transpose/pkg/scene"
	"github.com/spf13/cobra"
)

var infoCmd = &cobra.Command{
	Use:   "info <scene.json>",
	Short: "Summarize the objects in a scene file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		sc, err := scene.Load(args[0])
		if err != nil {
			return err
		}
		for _, o := range sc.Objects() {
			line := fmt.Sprintf("%-32s verts=%-6d faces=%-6d", o.Name, o.Data.VertCount(), o.Data.FaceCount())
			if mm := o.Multires(); mm != nil {
				line += fmt.Sprintf(" multires(level=%d/%d)", mm.Levels(), mm.TotalLevels())
			}
			if a := sc.Active(); a == o {
				line += " [active]"
			}
			if o.Selected {
				line += " [selected]"
			}
			if o.Hidden {
				line += " [hidden]"
			}
			fmt.Println(line)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(infoCmd)
}
