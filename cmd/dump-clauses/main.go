// Debug program for clause segmentation
// Shows how a document is normalized, split into clauses, and categorized
// without running retrieval or scoring.
package main

import (
	"fmt"
	"os"
	"strings"

	"clausecheck/internal/extract"
)

func main() {
	if len(os.Args) != 2 {
		fmt.Fprintln(os.Stderr, "usage: dump-clauses <file>")
		os.Exit(1)
	}

	text, err := extract.DocumentText(os.Args[1])
	if err != nil {
		fmt.Fprintf(os.Stderr, "read document: %v\n", err)
		os.Exit(1)
	}

	segmenter := extract.NewSegmenter(extract.DefaultMinChars)
	clauses, err := segmenter.ExtractClauses(text)
	if err != nil {
		fmt.Fprintf(os.Stderr, "segment: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("%s: %d clauses\n\n", os.Args[1], len(clauses))

	for _, clause := range clauses {
		fmt.Printf("%s [%s] %s\n", clause.ClauseID, clause.Category, clause.Title)
		fmt.Println(strings.Repeat("-", 60))

		body := clause.Text
		if len(body) > 300 {
			body = body[:300] + "..."
		}
		fmt.Println(body)
		fmt.Println()
	}
}
