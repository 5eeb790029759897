// Package cli runs a teleprompter inside a terminal.
//
// The script is word-wrapped to the terminal width and scrolled
// continuously by a purfectscroll.Controller. Each text row is treated as
// a fixed number of virtual pixels so the scroll core keeps its sub-row
// precision while the terminal shows whole rows.
//
// # Basic Usage
//
//	import "github.com/phroun/purfectscroll/cli"
//
//	opts := cli.Options{
//	    Text:          script,
//	    Title:         "Keynote",
//	    BorderStyle:   cli.BorderRounded,
//	    ShowStatusBar: true,
//	}
//
//	p, err := cli.New(opts)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	// Enters raw mode and the alternate screen until ctx ends or q is pressed
//	if err := p.Run(ctx); err != nil {
//	    log.Fatal(err)
//	}
//
// # Keys
//
//   - Space: start, pause, or resume
//   - + / -: faster or slower
//   - Up/Down, k/j: scroll one row by hand (pauses auto-scroll)
//   - PageUp/PageDown: scroll one page by hand
//   - Home/End, g/G: jump to the top or the end
//   - [ / ]: less or more line spacing
//   - r: retry the screen wake lock
//   - s: stop
//   - q, Ctrl+C: quit
//
// # Visibility
//
// Focus reporting (DECSET 1004) is enabled while running. Terminals that
// support it report focus loss, which is treated like a hidden tab: the
// scroll pauses and resumes when focus returns.
package cli
