package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/klauspost/compress/gzip"
	"github.com/spf13/pflag"

	"github.com/fudgemsg/fudge"
	"github.com/fudgemsg/fudge/config"
	"github.com/fudgemsg/fudge/jsonstream"
)

func runDump(args []string, logger *slog.Logger) error {
	fs := pflag.NewFlagSet("dump", pflag.ContinueOnError)
	asJSON := fs.Bool("json", false, "decode the input as the JSON surface instead of binary")
	useGzip := fs.Bool("gzip", false, "the input file is gzip-compressed")
	configPath := fs.String("config", "", "YAML settings file (see config.LoadSettings)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return fmt.Errorf("dump: expected exactly one FILE argument")
	}

	ctx := fudge.NewContext()
	var jsonOpts []jsonstream.Option
	if *configPath != "" {
		settings, err := config.Load(*configPath)
		if err != nil {
			return err
		}
		ctx = settings.BuildContext()
		jsonOpts = append(jsonOpts, jsonstream.WithEnvelopeKeys(settings.JSONKeys()))
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

	formatter := fudge.NewFormatter(os.Stdout)

	if *asJSON {
		data, err := io.ReadAll(src)
		if err != nil {
			return &fudge.IOFailure{Op: "reading JSON input", Err: err}
		}
		env, err := jsonstream.Decode(data, append(jsonOpts, jsonstream.WithDictionary(ctx.Dictionary()), jsonstream.WithTaxonomies(ctx.Taxonomies()))...)
		if err != nil {
			return err
		}
		return formatter.FormatEnvelope(env)
	}

	reader := fudge.NewMessageReader(src, ctx.Dictionary(), ctx.Taxonomies())
	defer reader.Close()
	for reader.HasNext() {
		env, err := reader.NextMessage()
		if err == io.EOF {
			break
		}
		if err != nil {
			return err
		}
		logger.Debug("decoded envelope", "fields", env.Message.NumFields())
		if err := formatter.FormatEnvelope(env); err != nil {
			return err
		}
	}
	return nil
}
