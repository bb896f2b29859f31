package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ssargent/rowreader/pkg/api"
	"github.com/ssargent/rowreader/pkg/codec"
	"github.com/ssargent/rowreader/pkg/query"
)

func addLayoutFlags(cmd *cobra.Command) {
	cmd.Flags().StringP("type", "t", "", "Element type of the values (I32 or F32, default from config)")
	cmd.Flags().String("variants", "", "Comma separated variant names, one per value field (required, may be empty)")
}

func addQueryFlags(cmd *cobra.Command) {
	cmd.Flags().String("map", "", "Fold the variants of every row: sum, avg or perc-<p>")
	cmd.Flags().String("filter", "", "Keep the variants with the highest (top-<n>) or lowest (bot-<n>) sums")
	cmd.Flags().String("resolution", "", "Minimum index distance between kept rows")
	cmd.Flags().String("from", "", "First index to keep")
	cmd.Flags().String("to", "", "Last index to keep")
}

func addFormatFlag(cmd *cobra.Command) {
	cmd.Flags().StringP("format", "f", formatTable, "Output format (table, json, csv)")
}

// typeFlag returns the --type flag or the configured default type
func (a *app) typeFlag(cmd *cobra.Command) string {
	if tag, _ := cmd.Flags().GetString("type"); tag != "" {
		return tag
	}
	return a.cfg.Decoder.DefaultType
}

// variantsFlag returns nil when --variants was not given
func variantsFlag(cmd *cobra.Command) []string {
	if !cmd.Flags().Changed("variants") {
		return nil
	}
	v, _ := cmd.Flags().GetString("variants")
	return api.SplitVariants(v)
}

// layoutFlags resolves the element type and variant list of a command
func (a *app) layoutFlags(cmd *cobra.Command) (codec.ElementType, []string, error) {
	et, err := codec.ParseElementType(a.typeFlag(cmd))
	if err != nil {
		return 0, nil, err
	}
	variants := variantsFlag(cmd)
	if variants == nil {
		return 0, nil, fmt.Errorf("%w: --variants is required", codec.ErrInvalidFieldCount)
	}
	return et, variants, nil
}

func queryFlags(cmd *cobra.Command) (query.Request, error) {
	get := func(name string) string {
		v, _ := cmd.Flags().GetString(name)
		return v
	}
	return query.ParseRequest(get("map"), get("filter"), get("resolution"), get("from"), get("to"))
}

func formatFlag(cmd *cobra.Command) (string, error) {
	format, _ := cmd.Flags().GetString("format")
	return format, checkFormat(format)
}
