// Command dubber replaces the speech of a recording with translated,
// synthesized speech while keeping every segment at its original time.
//
// Usage:
//
//	dubber dub --config dubber.yaml --audio talk.wav --out talk.fr.wav
//	dubber compose --audio talk.wav --transcript talk.json --stream speech.wav --out talk.fr.wav
//	dubber voices --config dubber.yaml
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
)

func main() {
	cmd := newRootCommand()
	if err := cmd.ExecuteContext(context.Background()); err != nil {
		if !errors.Is(err, context.Canceled) {
			fmt.Fprintf(os.Stderr, "dubber: %v\n", err)
		}
		os.Exit(1)
	}
}
