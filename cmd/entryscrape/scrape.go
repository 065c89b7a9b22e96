package main

import (
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/matsen/entryscrape/internal/payload"
)

func init() {
	rootCmd.AddCommand(scrapeCmd)
}

var scrapeCmd = &cobra.Command{
	Use:   "scrape [batch.json|-]",
	Short: "Scrape a JSON batch of payloads",
	Long: `Scrape a JSON array of payload envelopes read from a file or stdin.

Each element is {"type": <tag>, "value": <value>} with tag one of
file, bibtex, paperEntity or webcontent. Unknown tags are ignored.

Examples:
  entryscrape scrape batch.json
  echo '[{"type":"file","value":"paper.pdf"}]' | entryscrape scrape -
  entryscrape scrape batch.json --format bibtex > refs.bib`,
	Args: cobra.MaximumNArgs(1),
	RunE: runScrape,
}

func runScrape(cmd *cobra.Command, args []string) error {
	data, err := readBatch(cmd.InOrStdin(), args)
	if err != nil {
		exitWithError(ExitDataError, "reading batch: %v", err)
	}

	payloads, err := payload.DecodeBatch(data)
	if err != nil {
		exitWithError(ExitDataError, "%v", err)
	}
	return runPayloads(cmd.Context(), payloads)
}

// readBatch reads the named file, or stdin for "-" or no argument.
func readBatch(stdin io.Reader, args []string) ([]byte, error) {
	if len(args) == 0 || args[0] == "-" {
		return io.ReadAll(stdin)
	}
	return os.ReadFile(args[0])
}
