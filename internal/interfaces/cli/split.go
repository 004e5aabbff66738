package cli

import (
	"encoding/json"

	"github.com/spf13/cobra"

	"github.com/biocatlab/enzymeset/internal/infrastructure/monitoring/logging"
	"github.com/biocatlab/enzymeset/internal/infrastructure/store"
	"github.com/biocatlab/enzymeset/pkg/types/dataset"
)

// splitReport is the machine-readable summary printed by `enzymeset split`.
type splitReport struct {
	Strategy string                `json:"strategy"`
	Seed     int64                 `json:"seed"`
	Keys     int                   `json:"keys"`
	Counts   map[dataset.Split]int `json:"counts"`
}

// NewSplitCmd creates the `split` command.  It computes a split assignment
// over the reaction corpus and prints per-split key counts; with --out the
// full key-to-split mapping is written as JSON for downstream tooling.
func NewSplitCmd() *cobra.Command {
	var outPath string

	cmd := &cobra.Command{
		Use:   "split",
		Short: "Compute a split assignment over the reaction corpus",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cliCtx, err := GetCLIContext(cmd)
			if err != nil {
				return err
			}

			c, err := loadCorpus(cliCtx)
			if err != nil {
				return err
			}
			asn, err := computeAssignment(cliCtx, c)
			if err != nil {
				return err
			}

			if outPath != "" {
				if err := store.WriteJSON(outPath, asn.Export()); err != nil {
					return err
				}
				cliCtx.Logger.Info("split assignment written",
					logging.String("path", outPath),
					logging.Int("keys", asn.Len()),
				)
			}

			report := splitReport{
				Strategy: string(asn.Strategy()),
				Seed:     cliCtx.Config.Split.Seed,
				Keys:     asn.Len(),
				Counts:   asn.Counts(),
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(report)
		},
	}

	cmd.Flags().StringVarP(&outPath, "out", "o", "", "write the full key-to-split mapping to this JSON file")
	return cmd
}
