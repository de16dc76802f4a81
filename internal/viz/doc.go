// Package viz renders solver results in the terminal: lipgloss tables for
// joint and link quantities, asciigraph plots for sweeps and a Braille canvas
// for chain postures and scatter plots.
package viz
