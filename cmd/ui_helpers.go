// Copyright (c) 2025 Odoolink
// Licensed under the MIT License. See LICENSE file in the project root for details.

package cmd

import (
	"fmt"
	"os"
	"sync"
	"time"

	"odoolink/cli/internal/terminal"

	"atomicgo.dev/cursor"
	"github.com/pterm/pterm"
)

var spinnerFrames = []string{"|", "/", "-", "\\"}

// startSpinner shows text behind a rotating frame in a pterm area until the
// returned function is called. The text is read through the callback on each
// frame so callers can report progress. Nothing is drawn when stdout is not
// a terminal or when structured output is requested.
func startSpinner(text func() string) func() {
	if flagOutput != outputTable || !terminal.IsInteractive(os.Stdout) {
		return func() {}
	}
	cursor.Hide()
	area, err := pterm.DefaultArea.WithRemoveWhenDone(true).Start()
	if err != nil {
		cursor.Show()
		return func() {}
	}

	stop := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		t := time.NewTicker(120 * time.Millisecond)
		defer t.Stop()
		i := 0
		for {
			select {
			case <-t.C:
				i++
				area.Update(fmt.Sprintf("%s %s", spinnerFrames[i%len(spinnerFrames)], text()))
			case <-stop:
				return
			}
		}
	}()

	var once sync.Once
	return func() {
		once.Do(func() {
			close(stop)
			wg.Wait()
			area.Stop()
			cursor.Show()
		})
	}
}

// staticText adapts a fixed label for startSpinner.
func staticText(s string) func() string {
	return func() string { return s }
}
