package cli

import (
	"fmt"
	"io"
	"math"

	"github.com/golang/geo/r3"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/pkg/errors"
	"github.com/urfave/cli/v2"
	goutils "go.viam.com/utils"

	"go.viam.com/chainik/config"
	"go.viam.com/chainik/logging"
	"go.viam.com/chainik/motionplan/ik"
	"go.viam.com/chainik/spatialmath"
	"go.viam.com/chainik/utils"
)

// SolveAction loads the scene named by the flags, applies the flag overrides and solves it.
func SolveAction(c *cli.Context) error {
	logger := logging.NewLogger("ikrun")
	if c.Bool(flagDebug) {
		logger = logging.NewDebugLogger("ikrun")
	}
	defer func() {
		goutils.UncheckedError(logger.Sync())
	}()

	scene, err := config.Read(c.String(flagScene), logger)
	if err != nil {
		return err
	}
	if err := applyOverrides(c, scene); err != nil {
		return err
	}

	solver, err := scene.NewSolver(logger)
	if err != nil {
		return err
	}
	res, err := solver.Solve(c.Context, scene.TargetMatrix(), scene.Threshold)
	if err != nil {
		return errors.Wrap(err, "solve failed")
	}
	report, err := inspect(scene, res.Thetas)
	if err != nil {
		return err
	}
	printResult(c.App.Writer, scene, res, report)
	return nil
}

func applyOverrides(c *cli.Context, scene *config.Scene) error {
	opts := scene.SolverOptions()
	if c.IsSet(flagSolver) {
		scene.Solver = config.SolverKind(c.String(flagSolver))
	}
	if c.IsSet(flagThreshold) {
		scene.Threshold = c.Float64(flagThreshold)
	}
	if c.IsSet(flagMaxIterations) {
		opts.MaxIterations = c.Int(flagMaxIterations)
		opts.MaxGenerations = c.Int(flagMaxIterations)
	}
	if c.IsSet(flagSeed) {
		opts.Seed = c.Int64(flagSeed)
	}
	return errors.Wrap(scene.Validate(), "invalid flags")
}

// solvedReport measures the solved arm against its scene.
type solvedReport struct {
	// clearance is the smallest distance between the arm and any obstacle.
	clearance float64
	// offset is how far the end-effector sits from the target, in the target's frame.
	offset r3.Vector
}

func inspect(scene *config.Scene, thetas []float64) (solvedReport, error) {
	chain, err := scene.Chain()
	if err != nil {
		return solvedReport{}, err
	}
	handler, err := scene.CollisionHandler()
	if err != nil {
		return solvedReport{}, err
	}
	poses, err := chain.PosesAt(thetas)
	if err != nil {
		return solvedReport{}, err
	}
	clearance, err := handler.WorldClearance(poses.Forward)
	if err != nil {
		return solvedReport{}, err
	}
	return solvedReport{
		clearance: clearance,
		offset:    spatialmath.Translation(poses.Residual(scene.TargetMatrix())),
	}, nil
}

func printResult(out io.Writer, scene *config.Scene, res *ik.Result, report solvedReport) {
	joints := table.NewWriter()
	joints.AppendHeader(table.Row{"#", "Axis", "Radius", "Theta (rad)", "Theta (deg)"})
	for i, theta := range res.Thetas {
		axis := scene.Joints[i].Axis
		joints.AppendRow(table.Row{
			i,
			fmt.Sprintf("X:%.2f, Y:%.2f, Z:%.2f", axis[0], axis[1], axis[2]),
			fmt.Sprintf("%.3f", scene.Joints[i].Radius),
			fmt.Sprintf("%.6f", theta),
			fmt.Sprintf("%.3f", utils.RadToDeg(theta)),
		})
	}
	fmt.Fprintln(out, joints.Render())

	clearanceString := "n/a"
	if !math.IsInf(report.clearance, 1) {
		clearanceString = fmt.Sprintf("%.4f", report.clearance)
	}
	summary := table.NewWriter()
	summary.AppendRows([]table.Row{
		{"Solver", scene.Solver},
		{"State", res.State},
		{"Converged", res.Converged},
		{"Loss", fmt.Sprintf("%g", res.Loss)},
		{"Iterations", res.Iterations},
		{"Elapsed", res.Elapsed},
		{"Target offset", fmt.Sprintf("X:%.4f, Y:%.4f, Z:%.4f", report.offset.X, report.offset.Y, report.offset.Z)},
		{"World clearance", clearanceString},
	})
	fmt.Fprintln(out, summary.Render())
}
