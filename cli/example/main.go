// Example program demonstrating the terminal prompter
//
// This scrolls a script inside your terminal with a border and status bar.
//
// Controls:
//   - Space: start, pause, resume
//   - +/-: change speed
//   - Up/Down, PageUp/PageDown: scroll by hand (pauses auto-scroll)
//   - [ and ]: line spacing
//   - q: quit
//
// Usage:
//   go run main.go                # Scroll the built-in demo text
//   go run main.go speech.txt     # Scroll a file

package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/phroun/purfectscroll/cli"
	"github.com/phroun/purfectscroll/inhibit"
)

func main() {
	text := demoText()
	title := "PurfectScroll"
	if len(os.Args) > 1 {
		data, err := os.ReadFile(os.Args[1])
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to read script: %v\n", err)
			os.Exit(1)
		}
		text = string(data)
		title = os.Args[1]
	}

	opts := cli.Options{
		Text:          text,
		Title:         title,
		BorderStyle:   cli.BorderRounded,
		Margin:        2,
		ShowStatusBar: true,
		WakeLock:      inhibit.Auto(nil),
	}

	p, err := cli.New(opts)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create prompter: %v\n", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := p.Run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Prompter failed: %v\n", err)
		os.Exit(1)
	}
}

func demoText() string {
	var b strings.Builder
	for i := 1; i <= 40; i++ {
		fmt.Fprintf(&b, "Paragraph %d. Good evening, and thank you all for coming. "+
			"The text keeps moving at a steady pace so the speaker never has to touch the keyboard.\n\n", i)
	}
	return b.String()
}
