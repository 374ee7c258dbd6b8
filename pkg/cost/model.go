// Package cost estimates the effort of typing a corpus on a layout.
//
// A Model scores a stream of typing events and adds a static layout-quality
// term. Cost composes the two over a whole corpus; it is the energy the
// annealer minimises.
package cost

import (
	"fmt"
	"math/bits"
	"sort"

	"github.com/dyluth/sweep/pkg/layout"
	"github.com/dyluth/sweep/pkg/typing"
)

// Model is a typing-effort cost model.
type Model interface {
	// Name identifies the model in configuration and run records.
	Name() string
	// CostOfTyping scores an event stream and returns the number of taps
	// that produced a character. Releasing a key that is not held panics.
	CostOfTyping(events typing.Stream) (cost float64, chars int)
	// LayoutCost is a static penalty for the layout itself.
	LayoutCost(al *layout.Annotated) float64
}

// StringCost scores one text: its characters are turned into events with
// one-shot compression applied.
func StringCost(m Model, al *layout.Annotated, chars []layout.Char) (float64, int) {
	return m.CostOfTyping(typing.Oneshot(typing.Keys(al, chars)))
}

// Cost is the mean cost per typed character over the corpus plus the layout
// cost. A corpus with no typable characters contributes only the layout cost.
func Cost(m Model, al *layout.Annotated, corpus [][]layout.Char) float64 {
	var total float64
	var count int
	for _, text := range corpus {
		c, n := StringCost(m, al, text)
		total += c
		count += n
	}
	typingCost := 0.0
	if count > 0 {
		typingCost = total / float64(count)
	}
	return typingCost + m.LayoutCost(al)
}

// LogNorm is floor(log2(x+1)).
func LogNorm(x int) int {
	return bits.Len(uint(x+1)) - 1
}

var models = map[string]func() Model{
	"heuristic": func() Model { return NewHeuristic() },
	"measured":  func() Model { return NewMeasured() },
	"simple":    func() Model { return NewSimple() },
}

// New constructs a model by name.
func New(name string) (Model, error) {
	ctor, ok := models[name]
	if !ok {
		return nil, fmt.Errorf("unknown cost model %q (available: %v)", name, Names())
	}
	return ctor(), nil
}

// Names lists the available model names.
func Names() []string {
	names := make([]string, 0, len(models))
	for name := range models {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// heldKeys tracks keys currently held down.
type heldKeys []int

func (h *heldKeys) push(pos int) { *h = append(*h, pos) }

func (h *heldKeys) release(pos int) {
	for i, p := range *h {
		if p == pos {
			last := len(*h) - 1
			(*h)[i] = (*h)[last]
			*h = (*h)[:last]
			return
		}
	}
	panic(fmt.Sprintf("key %d released but not held", pos))
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
