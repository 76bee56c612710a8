// Command fudgedump is a diagnostic tool for the Fudge binary and JSON
// wire surfaces: it decodes a stream and prints a formatted dump, converts
// between surfaces, or hashes the canonical re-encoded bytes of a stream.
package main

import (
	"fmt"
	"log/slog"
	"os"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	var err error
	switch os.Args[1] {
	case "dump":
		err = runDump(os.Args[2:], logger)
	case "convert":
		err = runConvert(os.Args[2:], logger)
	case "hash":
		err = runHash(os.Args[2:], logger)
	default:
		usage()
		os.Exit(2)
	}

	if err != nil {
		logger.Error("fudgedump failed", "error", err)
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, "usage: fudgedump <dump|convert|hash> [flags] FILE")
}
