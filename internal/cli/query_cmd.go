package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/star/neocc/internal/tabs"
)

func addParamFlags(cmd *cobra.Command, p *tabs.Params) {
	f := cmd.Flags()
	f.StringVar(&p.OrbitalElements, "orbital-elements", "", "Orbit basis: keplerian or equinoctial")
	f.StringVar(&p.OrbitEpoch, "orbit-epoch", "", "Orbit epoch: present or middle")
	f.StringVar(&p.Observatory, "observatory", "", "Observatory code for ephemerides")
	f.StringVar(&p.Start, "start", "", "Ephemerides start, YYYY-MM-DD hh:mm")
	f.StringVar(&p.Stop, "stop", "", "Ephemerides stop, YYYY-MM-DD hh:mm")
	f.StringVar(&p.Step, "step", "", "Ephemerides step size")
	f.StringVar(&p.StepUnit, "step-unit", "", "Ephemerides step unit: days, hours or minutes")
}

func newQueryCmd(s *settings) *cobra.Command {
	var p tabs.Params

	cmd := &cobra.Command{
		Use:   "query <tab> <object>...",
		Short: "Fetch and decode one tab for one or more objects",
		Example: `  neocc query impacts 2021QM1
  neocc query orbit_properties 433 --orbital-elements keplerian --orbit-epoch present
  neocc query ephemerides 99942 --observatory 500 --start "2024-01-01 00:00" --stop "2024-01-02 00:00" --step 1 --step-unit hours`,
		Args: cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			tab, objects := args[0], args[1:]
			if err := tabs.Validate(tab, p); err != nil {
				return err
			}

			logger := s.logger(cmd.ErrOrStderr())
			client, err := s.client(logger)
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			results := make([]objectResult, len(objects))
			errs := make([]error, len(objects))

			var g errgroup.Group
			g.SetLimit(s.concurrency)
			for i, object := range objects {
				g.Go(func() error {
					sections, err := client.Query(ctx, object, tab, p)
					results[i] = objectResult{Object: object, Tab: tab, Sections: sections}
					if err != nil {
						results[i].Error = err.Error()
						errs[i] = err
					}
					return nil
				})
			}
			_ = g.Wait()

			if len(objects) == 1 && errs[0] != nil {
				return errs[0]
			}
			if err := printResults(cmd.OutOrStdout(), cmd.ErrOrStderr(), s.output, results); err != nil {
				return err
			}
			failed := 0
			for _, err := range errs {
				if err != nil {
					failed++
				}
			}
			if failed > 0 {
				return fmt.Errorf("%d of %d queries failed", failed, len(objects))
			}
			return nil
		},
	}
	addParamFlags(cmd, &p)
	return cmd
}

func newDecodeCmd(s *settings) *cobra.Command {
	var (
		p      tabs.Params
		object string
	)

	cmd := &cobra.Command{
		Use:   "decode <tab> <file>",
		Short: "Decode a report saved on disk",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			tab, path := args[0], args[1]
			if err := tabs.Validate(tab, p); err != nil {
				return err
			}
			body, err := os.ReadFile(path)
			if err != nil {
				return fmt.Errorf("read report: %w", err)
			}
			sections, err := tabs.Decode(object, tab, p, body)
			if err != nil {
				return err
			}
			return printResults(cmd.OutOrStdout(), cmd.ErrOrStderr(), s.output,
				[]objectResult{{Object: object, Tab: tab, Sections: sections}})
		},
	}
	cmd.Flags().StringVar(&object, "object", "", "Object designation, used in messages and metadata")
	addParamFlags(cmd, &p)
	return cmd
}

func newURLCmd(s *settings) *cobra.Command {
	var p tabs.Params

	cmd := &cobra.Command{
		Use:   "url <tab> <object>",
		Short: "Print the portal URL a query would fetch",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			tab, object := args[0], args[1]
			if err := tabs.Validate(tab, p); err != nil {
				return err
			}
			client := tabs.NewClient(nil, s.urls, s.logger(cmd.ErrOrStderr()))
			fmt.Fprintln(cmd.OutOrStdout(), client.RequestURL(object, tab, p))
			return nil
		},
	}
	addParamFlags(cmd, &p)
	return cmd
}
