package commands

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/dyluth/sweep/internal/printer"
	"github.com/dyluth/sweep/pkg/layout"
	"github.com/spf13/cobra"
)

var (
	checkShowLayers bool
)

var checkCmd = &cobra.Command{
	Use:   "check [LAYOUT_FILE...]",
	Short: "Validate layout files",
	Long: `Validate one or more layout files against the keymap schema and the
layout rules the optimiser relies on.

For each valid file a summary is printed: the number of layers, which digit
placement is in use, where the shift and layer keys sit and the layout
fingerprint used to identify it in run records.

With no arguments the configured starting layout is checked.

Examples:
  # Check the project's starting layout
  sweep check

  # Check an optimised layout and draw its layers
  sweep check best.json --layers`,
	RunE: runCheck,
}

func init() {
	checkCmd.Flags().BoolVar(&checkShowLayers, "layers", false, "Draw every layer as a key grid")
	rootCmd.AddCommand(checkCmd)
}

func runCheck(cmd *cobra.Command, args []string) error {
	paths := args
	if len(paths) == 0 {
		cfg, err := loadConfig(true)
		if err != nil {
			return err
		}
		paths = []string{cfg.Layout}
	}

	failed := 0
	for i, path := range paths {
		if i > 0 {
			printer.Info("\n")
		}
		if err := checkLayoutFile(path); err != nil {
			failed++
		}
	}
	if failed > 0 {
		return printer.Error(
			fmt.Sprintf("%d of %d layout files invalid", failed, len(paths)),
			"",
			nil,
		)
	}
	return nil
}

func checkLayoutFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return printer.Error(
			fmt.Sprintf("cannot read %s", path),
			err.Error(),
			nil,
		)
	}

	if err := layout.ValidateSchema(data); err != nil {
		return printer.ErrorWithContext(
			fmt.Sprintf("%s does not match the layout schema", path),
			err.Error(),
			nil,
			[]string{"Layout files need a \"keyboard\" of \"ferris/sweep\" and layers of 34 keycodes"},
		)
	}

	l, err := layout.Parse(data)
	if err != nil {
		context := map[string]string{}
		var pe *layout.ParseError
		if errors.As(err, &pe) {
			context["kind"] = pe.Kind.String()
			if pe.Field != "" {
				context["field"] = pe.Field
			}
		}
		return printer.ErrorWithContext(
			fmt.Sprintf("%s is not a valid layout", path),
			err.Error(),
			context,
			nil,
		)
	}

	al, err := layout.Annotate(l)
	if err != nil {
		return printer.Error(
			fmt.Sprintf("%s cannot be optimised", path),
			err.Error(),
			[]string{"Keep the digits in one of the standard placements on a single layer, and make every layer key point at an existing layer"},
		)
	}

	printer.Success("%s is valid\n", path)
	printer.Field("Layers", "%d", al.NumLayers())
	printer.Field("Digits", "layer %d, placement %d of %d", al.NumLayer(), al.NumLayout(), len(layout.NumLayouts))
	if pos, ok := al.ShiftIdx(); ok {
		printer.Field("Shift", "position %d", pos)
	} else {
		printer.Field("Shift", "none")
	}
	var layerKeys []string
	for n := 1; n < al.NumLayers(); n++ {
		if pos, ok := al.LayerIdx(n); ok {
			layerKeys = append(layerKeys, fmt.Sprintf("%d at %d", n, pos))
		}
	}
	if len(layerKeys) > 0 {
		printer.Field("Layer keys", "%s", strings.Join(layerKeys, ", "))
	}
	printer.Field("Fingerprint", "%s", layout.ShortFingerprint(l))

	if checkShowLayers {
		return renderLayout(printer.Writer(), l)
	}
	return nil
}
