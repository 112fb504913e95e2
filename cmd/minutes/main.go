// Command minutes turns diarized speech-to-text output into speaker turns,
// attributed action items and meeting analysis, from the command line or
// as an HTTP service.
package main

import (
	"fmt"
	"os"

	_ "github.com/kbukum/minutes/llm/ollama"
	_ "github.com/kbukum/minutes/llm/openai"
	_ "github.com/kbukum/minutes/storage/local"
	_ "github.com/kbukum/minutes/storage/s3"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "minutes:", err)
		os.Exit(1)
	}
}
