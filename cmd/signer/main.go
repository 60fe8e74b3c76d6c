// Package main provides the signer command-line tool for signing and
// verifying generated documents.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/google/uuid"

	"editiongen/pkg/docsig"
)

func main() {
	inputPath := flag.String("input", "", "Path to document (e.g., changelog.md)")
	verifyOnly := flag.Bool("verify", false, "Verify the existing signature instead of signing")
	flag.Parse()

	if *inputPath == "" {
		fmt.Println("Usage: signer -input <path> [-verify]")
		flag.PrintDefaults()
		os.Exit(2)
	}

	contentBytes, err := os.ReadFile(*inputPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error reading file: %v\n", err)
		os.Exit(2)
	}

	content := string(contentBytes)
	fmt.Printf("📂 Reading: %s (%d bytes)\n", *inputPath, len(content))

	if *verifyOnly {
		if _, err := docsig.Verify(content); err != nil {
			fmt.Fprintf(os.Stderr, "❌ Verification failed: %v\n", err)
			os.Exit(1)
		}

		sig, _ := docsig.Extract(content)
		fmt.Printf("✅ Signature valid (run %s, generated %s)\n", sig.RunID, sig.Generated.Format("2006-01-02 15:04:05 MST"))

		return
	}

	signed := docsig.Sign(content, uuid.NewString())

	if err := os.WriteFile(*inputPath, []byte(signed+"\n"), 0o644); err != nil {
		fmt.Fprintf(os.Stderr, "error writing file: %v\n", err)
		os.Exit(2)
	}

	fmt.Println("✅ Document signed")
}
