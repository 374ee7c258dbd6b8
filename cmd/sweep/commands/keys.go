package commands

import (
	"fmt"
	"io"
	"strings"

	"github.com/dyluth/sweep/internal/printer"
	"github.com/dyluth/sweep/pkg/layout"
	"github.com/dyluth/sweep/pkg/typing"
	"github.com/spf13/cobra"
)

var (
	keysLayout string
	keysRaw    bool
	keysReplay bool
)

var keysCmd = &cobra.Command{
	Use:   "keys [TEXT...]",
	Short: "Show the key events that type a text",
	Long: `Print the sequence of key taps, holds and releases that types TEXT on a
layout, one event per line.

By default held layer and shift keys that guard a single keystroke are
collapsed into one-shot taps, as the cost models see them. Use --raw to see
the uncompressed holds and releases.

With no TEXT the text is read from standard input.

Examples:
  # Events for a short word on the starting layout
  sweep keys "Hello"

  # Uncompressed events on an optimised layout, checked by replaying them
  echo "x = 42;" | sweep keys --layout best.json --raw --replay`,
	RunE: runKeys,
}

func init() {
	keysCmd.Flags().StringVarP(&keysLayout, "layout", "l", "", "Layout file (default: the configured starting layout)")
	keysCmd.Flags().BoolVar(&keysRaw, "raw", false, "Show holds and releases without one-shot compression")
	keysCmd.Flags().BoolVar(&keysReplay, "replay", false, "Replay the events and print the text they type")
	rootCmd.AddCommand(keysCmd)
}

func runKeys(cmd *cobra.Command, args []string) error {
	path := keysLayout
	if path == "" {
		cfg, err := loadConfig(true)
		if err != nil {
			return err
		}
		path = cfg.Layout
	}

	text := strings.Join(args, " ")
	if len(args) == 0 {
		data, err := io.ReadAll(stdin)
		if err != nil {
			return fmt.Errorf("failed to read text: %w", err)
		}
		text = strings.TrimSuffix(string(data), "\n")
	}

	chars, err := layout.Encode(text)
	if err != nil {
		return printer.Error(
			"text cannot be typed",
			err.Error(),
			[]string{"Only characters in the Windows-1252 character set can be typed"},
		)
	}

	l, err := layout.ReadFile(path)
	if err != nil {
		return printer.Error(fmt.Sprintf("cannot load %s", path), err.Error(), nil)
	}
	al, err := layout.Annotate(l)
	if err != nil {
		return printer.Error(fmt.Sprintf("%s cannot be used", path), err.Error(), nil)
	}

	events := typeEvents(al, chars, keysRaw)
	w := printer.Writer()
	for _, ev := range events {
		fmt.Fprintf(w, "%-16s %s\n", ev, describeEvent(al, ev))
	}

	if keysReplay {
		typed := layout.Decode(typing.Replay(al, typing.FromSlice(events)))
		printer.Info("\n")
		printer.Field("Replayed", "%q", typed)
		if typed != text {
			printer.Warning("replay differs from the input %q\n", text)
		}
	}
	return nil
}

// typeEvents lists the events for chars, one-shot compressed unless raw.
func typeEvents(al *layout.Annotated, chars []layout.Char, raw bool) []typing.Event {
	if raw {
		return typing.Collect(typing.Keys(al, chars))
	}
	return typing.Collect(typing.Oneshot(typing.Keys(al, chars)))
}

// describeEvent names the home-layer key behind an event.
func describeEvent(al *layout.Annotated, ev typing.Event) string {
	if ev.Kind == typing.Unknown {
		return "(untypable)"
	}
	k := al.Key(layout.Slot{Layer: 0, Pos: ev.Pos})
	if ev.Kind == typing.Tap && ev.ForChar {
		return fmt.Sprintf("%s %s", layout.DigitFor(ev.Pos), fingerRow(ev.Pos))
	}
	return fmt.Sprintf("%s (%s)", k.Token(), layout.DigitFor(ev.Pos))
}

func fingerRow(pos int) string {
	if layout.IsThumb(pos) {
		return "thumb row"
	}
	return fmt.Sprintf("row %d", layout.Row(pos))
}
