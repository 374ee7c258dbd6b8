// Package layout provides the key model for a 34-key split keyboard (the
// Ferris Sweep geometry), the JSON layout file codec, and AnnotatedLayout,
// which keeps the character, layer-key and digit-row indices consistent while
// keys are swapped by the optimiser.
//
// Characters are single bytes from the Windows-1252 code page. A Layout is an
// ordered list of 34-slot layers; layer 0 is the home layer, active whenever
// no layer key is held.
package layout
