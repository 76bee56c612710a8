package main

import (
	"bytes"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/zeebo/blake3"

	"github.com/fudgemsg/fudge"
)

// runHash prints a blake3 digest of the input stream's envelopes as
// re-encoded by this package's writer, useful for confirming two producers
// emit byte-identical streams. Re-encoding keeps field order, names and
// ordinals exactly as read (no taxonomy is applied), so streams that differ
// in field order or in taxonomy substitution hash differently.
func runHash(args []string, logger *slog.Logger) error {
	if len(args) != 1 {
		return fmt.Errorf("hash: expected exactly one FILE argument")
	}

	f, err := os.Open(args[0])
	if err != nil {
		return &fudge.IOFailure{Op: "opening input file", Err: err}
	}
	defer f.Close()

	ctx := fudge.NewContext()
	reader := fudge.NewMessageReader(f, ctx.Dictionary(), ctx.Taxonomies())
	defer reader.Close()

	h := blake3.New()
	count := 0
	for reader.HasNext() {
		env, err := reader.NextMessage()
		if err == io.EOF {
			break
		}
		if err != nil {
			return err
		}
		var buf bytes.Buffer
		writer := fudge.NewMessageWriter(&buf, ctx.Dictionary(), env.TaxonomyID, nil)
		if err := writer.WriteEnvelope(env); err != nil {
			return err
		}
		if _, err := h.Write(buf.Bytes()); err != nil {
			return &fudge.IOFailure{Op: "hashing re-encoded envelope", Err: err}
		}
		count++
	}

	logger.Debug("hashed stream", "envelopes", count)
	fmt.Printf("%x\n", h.Sum(nil))
	return nil
}
