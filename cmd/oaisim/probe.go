package main

import (
	"encoding/json"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	oaisim "github.com/zimeon/oaipmh-simulator"
	"github.com/zimeon/oaipmh-simulator/harvest"
)

var probeCmd = &cobra.Command{
	Use:   "probe BASEURL",
	Short: "Harvest an OAI-PMH endpoint and summarize it",
	Long: `Ask an endpoint for Identify, ListSets and ListMetadataFormats in
parallel, then harvest identifiers window by window and print a JSON
summary. Works against the simulator as well as any other endpoint.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		endpoint := args[0]
		client := harvest.NewClient(logger)

		info, err := harvest.RepositoryInfo(client, endpoint, viper.GetDuration("timeout"))
		if err != nil {
			logger.Warn("repository info incomplete", zap.Error(err))
		}

		req := harvest.Request{
			Endpoint: endpoint,
			Verb:     oaisim.ListIdentifiers,
			Set:      viper.GetString("set"),
			Prefix:   viper.GetString("prefix"),
		}
		if viper.GetBool("records") {
			req.Verb = oaisim.ListRecords
		}
		if req.From, err = parseDatestamp(viper.GetString("from")); err != nil {
			return errors.Wrap(err, "from")
		}
		if req.Until, err = parseDatestamp(viper.GetString("until")); err != nil {
			return errors.Wrap(err, "until")
		}
		h := harvest.Harvester{Client: client, Window: viper.GetString("window"), Log: logger}
		summary, err := h.Harvest(req)
		if err != nil {
			return err
		}
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(struct {
			Info    harvest.Info    `json:"info"`
			Harvest harvest.Summary `json:"harvest"`
		}{info, summary})
	},
}

// parseDatestamp accepts both datestamp forms, the empty string is the zero time.
func parseDatestamp(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	d, err := oaisim.ParseDatestamp(s, "")
	if err != nil {
		return time.Time{}, err
	}
	return d.Time(), nil
}

func init() {
	f := probeCmd.Flags()
	f.String("prefix", "oai_dc", "OAI metadataPrefix")
	f.String("from", "", "OAI from, YYYY-MM-DD or YYYY-MM-DDThh:mm:ssZ (default earliest datestamp)")
	f.String("until", "", "OAI until, YYYY-MM-DD or YYYY-MM-DDThh:mm:ssZ (default now)")
	f.String("set", "", "OAI set")
	f.String("window", "monthly", "harvest window: monthly, weekly or none")
	f.Bool("records", false, "harvest with ListRecords instead of ListIdentifiers")
	f.Duration("timeout", 30*time.Second, "timeout for the repository info requests")
	bindFlags(probeCmd)
	rootCmd.AddCommand(probeCmd)
}
