package main

import (
	"fmt"
	"math"

	"github.com/spf13/cobra"

	"github.com/born-ml/fcnet/internal/atomicfile"
	"github.com/born-ml/fcnet/internal/checkpoint"
	"github.com/born-ml/fcnet/internal/nn"
)

func newInitCmd() *cobra.Command {
	initCmd := &cobra.Command{
		Use:   "init PATH",
		Short: "Create a freshly initialized checkpoint",
		Args:  cobra.ExactArgs(1),
		RunE:  InitHandler,
	}

	addArchitectureFlags(initCmd)
	initCmd.Flags().Int64("seed", 0, "Seed for weight initialization (default: time based)")
	initCmd.Flags().StringToString("meta", nil, "Metadata to store, as key=value pairs")

	return initCmd
}

func addArchitectureFlags(cmd *cobra.Command) {
	cmd.Flags().Uint32("input", 784, "Input width")
	cmd.Flags().Uint32("output", 10, "Number of classes")
	cmd.Flags().UintSlice("hidden", []uint{512, 256, 128}, "Hidden layer widths")
	cmd.Flags().Float64("dropout", 0.5, "Dropout rate after each hidden layer")
}

// applyArchitectureFlags overrides the fields of d whose flags were set.
func applyArchitectureFlags(cmd *cobra.Command, d nn.Descriptor, all bool) (nn.Descriptor, error) {
	flags := cmd.Flags()
	if all || flags.Changed("input") {
		d.InputSize, _ = flags.GetUint32("input")
	}
	if all || flags.Changed("output") {
		d.OutputSize, _ = flags.GetUint32("output")
	}
	if all || flags.Changed("hidden") {
		widths, _ := flags.GetUintSlice("hidden")
		d.HiddenSizes = make([]uint32, len(widths))
		for i, w := range widths {
			if w > math.MaxUint32 {
				return nn.Descriptor{}, fmt.Errorf("hidden width %d out of range", w)
			}
			d.HiddenSizes[i] = uint32(w)
		}
	}
	if all || flags.Changed("dropout") {
		d.DropoutRate, _ = flags.GetFloat64("dropout")
	}
	return d, d.Validate()
}

// InitHandler builds a network from the architecture flags and saves it.
func InitHandler(cmd *cobra.Command, args []string) error {
	path := args[0]

	desc, err := applyArchitectureFlags(cmd, nn.Descriptor{}, true)
	if err != nil {
		return err
	}

	var factoryOpts []nn.FactoryOption
	if cmd.Flags().Changed("seed") {
		seed, _ := cmd.Flags().GetInt64("seed")
		factoryOpts = append(factoryOpts, nn.WithSeed(seed))
	}
	model, err := nn.NewFactory(factoryOpts...).Build(desc)
	if err != nil {
		return err
	}

	meta, _ := cmd.Flags().GetStringToString("meta")
	data, err := checkpoint.Marshal(model, checkpoint.WithMetadata(meta))
	if err != nil {
		return err
	}
	if err := atomicfile.WriteFile(path, data, 0o644); err != nil {
		return err
	}

	count := 0
	for _, p := range model.Parameters() {
		count += p.Tensor().NumElements()
	}
	fmt.Fprintf(cmd.OutOrStdout(), "wrote %s: %s, %d parameters\n", path, desc, count)
	return nil
}
