// Package ui renders the lcdpkt command line output with Lipgloss.
//
// These components follow a "run once and exit" pattern: they format output
// for the non-interactive commands and never read input. The interactive
// plate lives in package lcd.
//
//   - Header: command banner showing the operation and its parameters
//   - Result: success, failure and warning boxes
//   - RenderCatalog: every layer field with its template and seeded plate
//   - RenderSenders: a table of senders found on the network
//
// Printer ties them to an output stream:
//
//	p := ui.NewPrinter()
//	p.PrintHeader("Layer Catalog", "lcdpkt catalog", ui.Param{Key: "Config", Value: path})
//	out, err := ui.RenderCatalog(cat, p.Width())
//
// Logging stays silent unless LCDPKT_LOG_LEVEL is set, so the rendered output
// is all the operator sees.
package ui
