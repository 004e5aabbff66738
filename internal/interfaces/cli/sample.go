package cli

import (
	"encoding/json"

	"github.com/spf13/cobra"

	"github.com/biocatlab/enzymeset/internal/application/sampler"
	"github.com/biocatlab/enzymeset/internal/infrastructure/monitoring/logging"
	"github.com/biocatlab/enzymeset/pkg/types/dataset"
)

// NewSampleCmd creates the `sample` command.  It builds the dataset, wires
// the configured side cache, and draws items through the per-item sampler,
// printing each materialized item as a JSON line.  Useful as a smoke test of
// the full pipeline and of cache connectivity.
func NewSampleCmd() *cobra.Command {
	var (
		count     int
		splitName string
	)

	cmd := &cobra.Command{
		Use:   "sample",
		Short: "Draw items through the per-item sampler",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cliCtx, err := GetCLIContext(cmd)
			if err != nil {
				return err
			}

			c, err := loadCorpus(cliCtx)
			if err != nil {
				return err
			}
			b, ds, err := buildDataset(cliCtx, c)
			if err != nil {
				return err
			}

			samples := ds.Samples
			if splitName != "" {
				target, err := dataset.ParseSplit(splitName)
				if err != nil {
					return err
				}
				asn, err := computeAssignment(cliCtx, c)
				if err != nil {
					return err
				}
				if samples, err = b.FilterSplit(ds, asn, target); err != nil {
					return err
				}
			}

			sideCache, err := newSideCache(cliCtx)
			if err != nil {
				return err
			}
			s := sampler.New(cliCtx.Config.Sampler, c.index, sideCache, cliCtx.Logger, cliCtx.Metrics)

			if count <= 0 || count > len(samples) {
				count = len(samples)
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			drawn, skipped := 0, 0
			for i := 0; i < count; i++ {
				res := s.Sample(cmd.Context(), &samples[i])
				if !res.OK() {
					skipped++
					continue
				}
				if err := enc.Encode(res.Item); err != nil {
					return err
				}
				drawn++
			}

			cliCtx.Logger.Info("sampling finished",
				logging.String("build_id", ds.BuildID),
				logging.Int("drawn", drawn),
				logging.Int("skipped", skipped),
			)
			return nil
		},
	}

	cmd.Flags().IntVarP(&count, "count", "n", 0, "number of samples to draw (0 = all)")
	cmd.Flags().StringVarP(&splitName, "split", "s", "", "draw from one split (train, dev, test)")
	return cmd
}
