package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/nconklindev/ttvfill/internal/config"
	"github.com/nconklindev/ttvfill/internal/logger"
	"github.com/nconklindev/ttvfill/internal/pipeline"
)

func NewAutoCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "auto",
		Short: "Fill TTV_template.xlsx from side1.txt and side2.txt in the current directory",
		Long: `auto reads side1.txt and side2.txt from the current directory, writes their
Z values to column D from row 3 of the "Side 1" and "Side 2" sheets of
TTV_template.xlsx, and saves the result as TTV_populated.xlsx.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, err := os.Getwd()
			if err != nil {
				return err
			}

			if logDir != "" {
				closer, err := logger.Setup(logDir, "info")
				if err != nil {
					return err
				}
				defer closer.Close()
			}

			return runAuto(cmd.OutOrStdout(), dir)
		},
	}
}

// runAuto fills the fixed template in dir. Point count mismatches are
// reported and the run continues.
func runAuto(out io.Writer, dir string) error {
	fmt.Fprintf(out, "Current directory: %s\n", dir)

	res, err := pipeline.Execute(config.ScriptForm(dir), func(n1, n2 int) bool {
		fmt.Fprintf(out, "Warning: Side 1 has %d points, Side 2 has %d points.\n", n1, n2)
		return true
	})
	if err != nil {
		return err
	}

	for _, side := range res.Sides {
		fmt.Fprintf(out, "%s: %d values\n", side.Sheet, side.Count)
	}
	fmt.Fprintln(out, "TTV file populated successfully.")
	return nil
}
