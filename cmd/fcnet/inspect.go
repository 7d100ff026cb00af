package main

import (
	"fmt"
	"io"
	"maps"
	"slices"
	"strconv"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/born-ml/fcnet/internal/checkpoint"
	"github.com/born-ml/fcnet/internal/tensor"
)

func newInspectCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "inspect PATH",
		Short: "Show the descriptor and tensor table of a checkpoint",
		Args:  cobra.ExactArgs(1),
		RunE:  InspectHandler,
	}
}

// InspectHandler prints a checkpoint's header without building a model.
func InspectHandler(cmd *cobra.Command, args []string) error {
	opts, err := readOptions(cmd)
	if err != nil {
		return err
	}

	artifact, err := checkpoint.Open(args[0], opts...)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	total := 0
	var data [][]string
	for _, t := range artifact.Header.Tensors {
		shape := tensor.Shape(t.Shape)
		total += shape.NumElements()
		data = append(data, []string{
			t.Name,
			shape.String(),
			t.DType,
			strconv.FormatInt(t.Offset, 10),
			strconv.FormatInt(t.Size, 10),
		})
	}

	fmt.Fprintf(out, "checkpoint   %s\n", artifact.Header.CheckpointID)
	fmt.Fprintf(out, "model        %s\n", artifact.Header.ModelType)
	fmt.Fprintf(out, "descriptor   %s\n", artifact.Descriptor)
	fmt.Fprintf(out, "parameters   %d\n", total)
	fmt.Fprintf(out, "checksum     %x\n", artifact.Checksum)
	for _, k := range slices.Sorted(maps.Keys(artifact.Header.Metadata)) {
		fmt.Fprintf(out, "meta         %s=%s\n", k, artifact.Header.Metadata[k])
	}
	fmt.Fprintln(out)

	renderTable(out, []string{"NAME", "SHAPE", "DTYPE", "OFFSET", "BYTES"}, data)
	return nil
}

func renderTable(w io.Writer, header []string, data [][]string) {
	table := tablewriter.NewWriter(w)
	table.SetHeader(header)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetAutoFormatHeaders(false)
	table.SetHeaderLine(false)
	table.SetBorder(false)
	table.SetNoWhiteSpace(true)
	table.SetTablePadding("    ")
	table.AppendBulk(data)
	table.Render()
}
