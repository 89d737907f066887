package main

import (
	"fmt"

	"github.com/19829984/multires-transpose/pkg/bmesh"
	"github.com/19829984/multires-transpose/pkg/scene"
	"github.com/deadsy/sdfx/render"
	"github.com/deadsy/sdfx/sdf"
	"github.com/spf13/cobra"
)

var exportCmd = &cobra.Command{
	Use:   "export <scene.json> <object> <out.stl>",
	Short: "Export an object's evaluated mesh as STL",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		sc, err := scene.Load(args[0])
		if err != nil {
			return err
		}
		obj, ok := sc.Object(args[1])
		if !ok {
			return fmt.Errorf("no object %q in scene", args[1])
		}
		m, err := sc.Evaluated(obj)
		if err != nil {
			return err
		}
		m.Transform(obj.MatrixWorld())

		tris := triangulate(m)
		if err := render.SaveSTL(args[2], tris); err != nil {
			return fmt.Errorf("write STL: %w", err)
		}
		logger.Info("exported", "object", obj.Name, "triangles", len(tris), "file", args[2])
		return nil
	},
}

// triangulate fans each n-gon around its first vertex.
func triangulate(m *bmesh.Mesh) []*sdf.Triangle3 {
	var tris []*sdf.Triangle3
	for _, f := range m.Faces {
		for i := 1; i+1 < len(f.Verts); i++ {
			tris = append(tris, &sdf.Triangle3{
				f.Verts[0].Co, f.Verts[i].Co, f.Verts[i+1].Co,
			})
		}
	}
	return tris
}

func init() {
	rootCmd.AddCommand(exportCmd)
}
