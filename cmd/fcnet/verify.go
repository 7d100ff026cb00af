package main

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/born-ml/fcnet/internal/checkpoint"
	"github.com/born-ml/fcnet/internal/nn"
)

func newVerifyCmd() *cobra.Command {
	verifyCmd := &cobra.Command{
		Use:   "verify PATH...",
		Short: "Fully load one or more checkpoints and report the result",
		Args:  cobra.MinimumNArgs(1),
		RunE:  VerifyHandler,
	}
	verifyCmd.Flags().Int("jobs", runtime.NumCPU(), "Number of checkpoints to load concurrently")
	return verifyCmd
}

// VerifyHandler loads every checkpoint through the default factory. Each load
// owns its own file; results are reported in argument order.
func VerifyHandler(cmd *cobra.Command, args []string) error {
	opts, err := readOptions(cmd)
	if err != nil {
		return err
	}
	jobs, _ := cmd.Flags().GetInt("jobs")

	results := make([]error, len(args))
	descs := make([]string, len(args))

	var g errgroup.Group
	g.SetLimit(max(jobs, 1))
	for i, path := range args {
		g.Go(func() error {
			model, err := checkpoint.Load(path, nn.NewFactory(), opts...)
			if err != nil {
				results[i] = err
				return nil
			}
			desc, err := nn.Describe(model)
			if err != nil {
				results[i] = err
				return nil
			}
			descs[i] = desc.String()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	failed := 0
	var data [][]string
	for i, path := range args {
		if results[i] != nil {
			failed++
			data = append(data, []string{path, "FAILED", results[i].Error()})
			continue
		}
		data = append(data, []string{path, "OK", descs[i]})
	}
	renderTable(cmd.OutOrStdout(), []string{"PATH", "STATUS", "DETAIL"}, data)

	if failed > 0 {
		return fmt.Errorf("%d of %d checkpoints failed verification", failed, len(args))
	}
	return nil
}
