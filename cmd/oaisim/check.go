package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/multierr"

	oaisim "github.com/zimeon/oaipmh-simulator"
)

var checkCmd = &cobra.Command{
	Use:   "check FILE",
	Short: "Validate a repository file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := oaisim.LoadConfig(args[0])
		if err != nil {
			return err
		}
		repo, err := oaisim.NewRepository(cfg)
		if err != nil {
			errs := multierr.Errors(err)
			for _, e := range errs {
				fmt.Fprintf(cmd.ErrOrStderr(), "%s: %v\n", args[0], e)
			}
			return fmt.Errorf("%d problem(s) in %s", len(errs), args[0])
		}
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "repository: %s\n", repo.Name)
		fmt.Fprintf(out, "granularity: %s\n", repo.Granularity)
		fmt.Fprintf(out, "items: %d\n", repo.Len())
		fmt.Fprintf(out, "records: %d\n", repo.NumRecords())
		if prefixes, err := repo.MetadataFormats(nil); err == nil {
			fmt.Fprintf(out, "formats: %s\n", strings.Join(prefixes, " "))
		}
		if specs, err := repo.SetSpecs(); err == nil {
			fmt.Fprintf(out, "sets: %s\n", strings.Join(specs, " "))
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(checkCmd)
}
