package main

import (
	"bytes"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/fxamacker/cbor/v2"
	"github.com/klauspost/compress/gzip"
	"github.com/spf13/pflag"

	"github.com/fudgemsg/fudge"
	"github.com/fudgemsg/fudge/jsonstream"
)

func runConvert(args []string, logger *slog.Logger) error {
	fs := pflag.NewFlagSet("convert", pflag.ContinueOnError)
	from := fs.String("from", "bin", "input surface: bin or json")
	to := fs.String("to", "json", "output surface: bin, json, or cbor")
	useGzip := fs.Bool("gzip", false, "the input file is gzip-compressed")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return fmt.Errorf("convert: expected exactly one FILE argument")
	}

	f, err := os.Open(fs.Arg(0))
	if err != nil {
		return &fudge.IOFailure{Op: "opening input file", Err: err}
	}
	defer f.Close()

	var src io.Reader = f
	if *useGzip {
		gz, err := gzip.NewReader(f)
		if err != nil {
			return &fudge.IOFailure{Op: "opening gzip stream", Err: err}
		}
		defer gz.Close()
		src = gz
	}

	ctx := fudge.NewContext()

	env, err := decodeEnvelope(src, *from, ctx)
	if err != nil {
		return err
	}

	switch *to {
	case "bin":
		var buf bytes.Buffer
		writer := fudge.NewMessageWriter(&buf, ctx.Dictionary(), env.TaxonomyID, nil)
		if err := writer.WriteEnvelope(env); err != nil {
			return err
		}
		_, err = os.Stdout.Write(buf.Bytes())
		return err
	case "json":
		out, err := jsonstream.Encode(env)
		if err != nil {
			return err
		}
		_, err = os.Stdout.Write(out)
		return err
	case "cbor":
		logger.Debug("rendering decoded tree as CBOR (read-only diagnostic output)")
		out, err := cbor.Marshal(messageToMap(env.Message))
		if err != nil {
			return &fudge.IOFailure{Op: "encoding CBOR", Err: err}
		}
		_, err = os.Stdout.Write(out)
		return err
	default:
		return fmt.Errorf("convert: unknown --to surface %q", *to)
	}
}

func decodeEnvelope(src io.Reader, from string, ctx *fudge.Context) (*fudge.Envelope, error) {
	switch from {
	case "bin":
		reader := fudge.NewMessageReader(src, ctx.Dictionary(), ctx.Taxonomies())
		defer reader.Close()
		return reader.NextMessage()
	case "json":
		data, err := io.ReadAll(src)
		if err != nil {
			return nil, &fudge.IOFailure{Op: "reading JSON input", Err: err}
		}
		return jsonstream.Decode(data, jsonstream.WithDictionary(ctx.Dictionary()), jsonstream.WithTaxonomies(ctx.Taxonomies()))
	default:
		return nil, fmt.Errorf("convert: unknown --from surface %q", from)
	}
}

// messageToMap renders a message tree as a plain map for CBOR encoding,
// since cbor.Marshal has no notion of fudge.Message's name/ordinal duality.
func messageToMap(msg *fudge.Message) map[string]interface{} {
	out := make(map[string]interface{}, msg.NumFields())
	for _, f := range msg.Fields() {
		key := f.NameOrEmpty()
		if key == "" && f.HasOrdinal() {
			key = fmt.Sprintf("%d", f.OrdinalOrZero())
		}
		if sub, ok := f.Value.(*fudge.Message); ok {
			out[key] = messageToMap(sub)
			continue
		}
		out[key] = f.Value
	}
	return out
}
