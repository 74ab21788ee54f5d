package helpers

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

// AddFormatFlag adds a standard --format/-o flag to a command.
func AddFormatFlag(cmd *cobra.Command, formatVar *string, defaultFormat OutputFormat, supportedFormats []OutputFormat) {
	formatNames := make([]string, len(supportedFormats))
	for i, f := range supportedFormats {
		formatNames[i] = string(f)
	}

	description := fmt.Sprintf("Output format (%s)", strings.Join(formatNames, ", "))
	cmd.Flags().StringVarP(formatVar, "format", "o", string(defaultFormat), description)

	_ = cmd.RegisterFlagCompletionFunc("format", func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		return formatNames, cobra.ShellCompDirectiveNoFileComp
	})
}

// ValidateFormat checks if the format is in the supported list.
func ValidateFormat(format string, supported []OutputFormat) error {
	for _, s := range supported {
		if format == string(s) {
			return nil
		}
	}

	supportedNames := make([]string, len(supported))
	for i, s := range supported {
		supportedNames[i] = string(s)
	}

	return fmt.Errorf("unsupported format %q, must be one of: %s",
		format, strings.Join(supportedNames, ", "))
}

// StandardFormats are the formats every listing command accepts.
var StandardFormats = []OutputFormat{FormatAuto, FormatTable, FormatJSON, FormatCSV}

// Output validates format and writes data with the resolved formatter.
// JSON receives data itself; table and CSV receive rows.
func Output(cmd *cobra.Command, format string, data, rows any) error {
	if err := ValidateFormat(format, StandardFormats); err != nil {
		return err
	}

	w := cmd.OutOrStdout()
	resolved := ResolveFormat(format, w)
	payload := data
	if resolved != FormatJSON {
		payload = rows
	}

	formatter, err := NewFormatter(resolved)
	if err != nil {
		return err
	}
	return formatter.Format(payload, w)
}
