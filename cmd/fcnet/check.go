package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/born-ml/fcnet/internal/checkpoint"
	"github.com/born-ml/fcnet/internal/nn"
)

func newCheckCmd() *cobra.Command {
	checkCmd := &cobra.Command{
		Use:   "check PATH",
		Short: "Check a checkpoint against a target architecture",
		Long: "Load a checkpoint into a network built for the given architecture and list every\n" +
			"parameter whose shape disagrees. Unset architecture flags keep the stored values.",
		Args: cobra.ExactArgs(1),
		RunE: CheckHandler,
	}
	addArchitectureFlags(checkCmd)
	return checkCmd
}

// CheckHandler loads PATH against the architecture given by the flags.
func CheckHandler(cmd *cobra.Command, args []string) error {
	path := args[0]
	opts, err := readOptions(cmd)
	if err != nil {
		return err
	}

	artifact, err := checkpoint.Open(path, opts...)
	if err != nil {
		return err
	}
	target, err := applyArchitectureFlags(cmd, artifact.Descriptor.Clone(), false)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "stored   %s\n", artifact.Descriptor)
	fmt.Fprintf(out, "target   %s\n", target)

	_, err = checkpoint.Load(path, nn.NewFactory(), append(opts, checkpoint.WithDescriptor(target))...)
	var mismatch *checkpoint.ShapeMismatchError
	if errors.As(err, &mismatch) {
		fmt.Fprintln(out)
		data := make([][]string, 0, len(mismatch.Mismatches))
		for _, m := range mismatch.Mismatches {
			data = append(data, []string{m.Name, m.Kind.String(), m.Expected.String(), m.Found.String()})
		}
		renderTable(out, []string{"PARAMETER", "KIND", "CHECKPOINT", "MODEL"}, data)
		return fmt.Errorf("%d parameter(s) do not match %s", len(mismatch.Mismatches), target)
	}
	if err != nil {
		return err
	}

	fmt.Fprintln(out, "checkpoint matches target architecture")
	return nil
}
