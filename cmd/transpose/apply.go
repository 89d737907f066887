package main

import (
	"fmt"

	"github.com/19829984/multires-transpose/pkg/scene"
	"github.com/19829984/multires-transpose/pkg/transpose"
	"github.com/spf13/cobra"
)

var (
	applyThreshold float64
	applyAuto      bool
	applyMaxIter   int
	applyHide      bool
)

var applyCmd = &cobra.Command{
	Use:   "apply <scene.json> [target-object]",
	Short: "Apply an edited transpose target back to its source objects",
	Args:  cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(configPath)
		if err != nil {
			return err
		}
		if !cmd.Flags().Changed("threshold") {
			applyThreshold = cfg.Convergence.Threshold
		}
		if !cmd.Flags().Changed("max-iter") {
			applyMaxIter = cfg.Convergence.MaxIterations
		}
		if !cmd.Flags().Changed("auto") {
			applyAuto = cfg.Convergence.Auto
		}

		scenePath := args[0]
		sc, err := scene.Load(scenePath)
		if err != nil {
			return err
		}

		target := sc.Active()
		if len(args) > 1 {
			o, ok := sc.Object(args[1])
			if !ok {
				return fmt.Errorf("no object %q in scene", args[1])
			}
			target = o
		}
		if target == nil {
			return fmt.Errorf("no target object named and no active object in scene")
		}

		t := transpose.New(sc, transpose.WithLogger(logger))
		if err := t.ApplyTarget(target, transpose.ApplyOptions{
			Threshold:      applyThreshold,
			AutoIterations: applyAuto,
			MaxIterations:  applyMaxIter,
			HideTarget:     applyHide,
		}); err != nil {
			return err
		}
		return scene.Save(scenePath, sc)
	},
}

func init() {
	applyCmd.Flags().Float64Var(&applyThreshold, "threshold", 0.01, "convergence error bound")
	applyCmd.Flags().BoolVar(&applyAuto, "auto", true, "iterate until the error converges instead of a fixed count")
	applyCmd.Flags().IntVar(&applyMaxIter, "max-iter", 5, "maximum reshape passes per object")
	applyCmd.Flags().BoolVar(&applyHide, "hide-target", false, "hide the target object after applying")
	rootCmd.AddCommand(applyCmd)
}
