// Package cli contains the ikrun command line: load a scene, solve it and print the result.
package cli

import (
	"io"

	"github.com/urfave/cli/v2"
)

const (
	// Flags.
	flagScene         = "scene"
	flagSolver        = "solver"
	flagThreshold     = "threshold"
	flagMaxIterations = "max-iterations"
	flagSeed          = "seed"
	flagDebug         = "debug"
)

var app = &cli.App{
	Name:            "ikrun",
	Usage:           "solve inverse kinematics for a serial chain scene",
	HideHelpCommand: true,
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:     flagScene,
			Aliases:  []string{"s"},
			Required: true,
			Usage:    "load the scene from `FILE`",
		},
		&cli.StringFlag{
			Name:  flagSolver,
			Usage: "override the scene solver (gradient, genetic or combined)",
		},
		&cli.Float64Flag{
			Name:  flagThreshold,
			Usage: "override the scene loss threshold",
		},
		&cli.IntFlag{
			Name:  flagMaxIterations,
			Usage: "override the iteration cap of the gradient stage and the generation cap of the genetic stage",
		},
		&cli.Int64Flag{
			Name:  flagSeed,
			Usage: "override the random seed",
		},
		&cli.BoolFlag{
			Name:    flagDebug,
			Aliases: []string{"vvv"},
			Usage:   "enable debug logging",
		},
	},
	Action: SolveAction,
}

// NewApp returns a new app with the ikrun CLI, Writer set to out, and ErrWriter
// set to errOut.
func NewApp(out, errOut io.Writer) *cli.App {
	app.Writer = out
	app.ErrWriter = errOut
	return app
}
