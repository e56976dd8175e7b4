package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/alignprobe/alignprobe/internal/align"
	"github.com/alignprobe/alignprobe/internal/config"
	"github.com/alignprobe/alignprobe/internal/strain"
)

var (
	classifyE0   float64
	classifyE90  float64
	classifyE180 float64
	classifyE270 float64
)

var classifyCmd = &cobra.Command{
	Use:   "classify",
	Short: "Classify a single set of four gauge readings",
	Long: `Decompose one four-gauge reading into axial and bending strain and
grade it against the configured alignment class table.

Example:
  alignprobe classify --e0 510 --e90 470 --e180 450 --e270 490`,
	Run: runClassify,
}

func init() {
	rootCmd.AddCommand(classifyCmd)

	classifyCmd.Flags().Float64Var(&classifyE0, "e0", 0, "strain at the 0 degree gauge [required]")
	classifyCmd.Flags().Float64Var(&classifyE90, "e90", 0, "strain at the 90 degree gauge [required]")
	classifyCmd.Flags().Float64Var(&classifyE180, "e180", 0, "strain at the 180 degree gauge [required]")
	classifyCmd.Flags().Float64Var(&classifyE270, "e270", 0, "strain at the 270 degree gauge [required]")

	classifyCmd.MarkFlagRequired("e0")   //nolint:errcheck
	classifyCmd.MarkFlagRequired("e90")  //nolint:errcheck
	classifyCmd.MarkFlagRequired("e180") //nolint:errcheck
	classifyCmd.MarkFlagRequired("e270") //nolint:errcheck
}

func runClassify(cmd *cobra.Command, args []string) {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	table, err := cfg.Table()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	res := strain.Decompose(classifyE0, classifyE90, classifyE180, classifyE270)
	cls := align.Classify(res, table)

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintf(w, "axial strain\t%.6g\n", res.AxialStrain)
	fmt.Fprintf(w, "bending x\t%.6g\n", res.BendingX)
	fmt.Fprintf(w, "bending y\t%.6g\n", res.BendingY)
	fmt.Fprintf(w, "|eps_b|\t%.6g\n", res.BendingMagnitude)
	fmt.Fprintf(w, "phi\t%.1f deg\n", res.BendingAngleDeg())
	fmt.Fprintf(w, "%%bending\t%.2f%%\n", res.PercentBending)
	fmt.Fprintf(w, "class\t%s\n", cls.Name)
	fmt.Fprintf(w, "color\t%s\n", cls.Color.Hex())
	if cls.OutOfClass {
		fmt.Fprintf(w, "status\tOUT OF CLASS\n")
	}
	w.Flush()
}
