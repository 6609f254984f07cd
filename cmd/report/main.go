package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	configPath string
	verbose    bool
	branchName string
	planValue  float64
)

// rootCmd is the offline reporting tool over a sales workbook.
var rootCmd = &cobra.Command{
	Use:   "salespro",
	Short: "Sales plan, forecast and inventory reports from an Excel workbook",
	Long: `salespro reads a sales workbook with a two-row "branch / channel" header
and prints plan execution, month-end forecast and inventory health per branch.

Optional "plan" and "stock" sheets are detected by name.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Config file (default: $SALESPRO_CONFIG or salespro.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
	rootCmd.PersistentFlags().StringVarP(&branchName, "branch", "b", "", "Branch name (default: all branches or the first one)")
	rootCmd.PersistentFlags().Float64Var(&planValue, "plan", 0, "Monthly plan when the workbook has none for the branch")

	rootCmd.AddCommand(branchesCmd)
	rootCmd.AddCommand(kpiCmd)
	rootCmd.AddCommand(adviseCmd)
	rootCmd.AddCommand(htmlCmd)
	rootCmd.AddCommand(chartCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
