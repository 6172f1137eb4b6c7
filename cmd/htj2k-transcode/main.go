// Command htj2k-transcode converts DICOM files to and from the HTJ2K
// transfer syntaxes using the OpenJPH command-line tools.
//
// Usage:
//
//	htj2k-transcode [flags] input.dcm
//
// By default the input is compressed with the configured profile. With
// -decompress the input must already be HTJ2K and is expanded back to
// Explicit VR Little Endian.
package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/cocosip/go-dicom/pkg/dicom/dataset"
	"github.com/cocosip/go-dicom/pkg/dicom/parser"
	"github.com/cocosip/go-dicom/pkg/dicom/tag"
	"github.com/cocosip/go-dicom/pkg/dicom/transfer"
	"github.com/cocosip/go-dicom/pkg/dicom/writer"
	dicomcodec "github.com/cocosip/go-dicom/pkg/imaging/codec"
	"github.com/rs/zerolog"

	"github.com/cocosip/go-dicom-htj2k/htj2k"
	"github.com/cocosip/go-dicom-htj2k/openjph"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "htj2k-transcode: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	var (
		configPath = flag.String("config", "", "YAML config file")
		profile    = flag.String("profile", "", "compression profile: Lossless, RPCL, Lossy")
		strict     = flag.Bool("strict", false, "fail on out-of-range pixel values instead of clipping")
		qstep      = flag.Float64("qstep", 0, "lossy quantization step override")
		decompress = flag.Bool("decompress", false, "expand HTJ2K input back to uncompressed")
		outputPath = flag.String("o", "", "output file (default: derived from input)")
		verbose    = flag.Bool("v", false, "debug logging")
	)
	flag.Parse()

	if flag.NArg() != 1 {
		flag.Usage()
		return fmt.Errorf("exactly one input file is required")
	}
	inputPath := flag.Arg(0)

	cfg, err := loadConfig(*configPath)
	if err != nil {
		return err
	}
	if *profile != "" {
		cfg.Profile = *profile
	}
	if *strict {
		cfg.Strict = true
	}
	if *qstep > 0 {
		cfg.QStep = *qstep
	}
	if *verbose {
		cfg.LogLevel = "debug"
	}

	log := newLogger(cfg.LogLevel)

	tool := openjph.NewTool(
		openjph.WithCompressPath(cfg.CompressPath),
		openjph.WithExpandPath(cfg.ExpandPath),
		openjph.WithLogger(log),
	)
	transcoder := htj2k.NewTranscoder(
		htj2k.WithEncoder(tool),
		htj2k.WithDecoder(tool),
		htj2k.WithLogger(log),
		htj2k.WithTempDir(cfg.TempDir),
	)
	params := htj2k.NewHTJ2KParameters().
		WithProfile(cfg.Profile).
		WithStrict(cfg.Strict).
		WithQStep(cfg.QStep)

	registry := dicomcodec.GetGlobalRegistry()
	for _, ts := range []*transfer.Syntax{transfer.HTJ2KLossless, transfer.HTJ2KLosslessRPCL, transfer.HTJ2K} {
		registry.RegisterCodec(ts, htj2k.NewCodecWithTransferSyntax(ts).
			WithTranscoder(transcoder).
			WithDefaultParameters(params))
	}

	parseResult, err := parser.ParseFile(inputPath,
		parser.WithReadOption(parser.ReadAll),
		parser.WithLargeObjectSize(uint32(cfg.MaxObjectSize)),
	)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", inputPath, err)
	}
	ds := parseResult.Dataset
	sourceTS := parseResult.TransferSyntax

	logImageInfo(log, ds, sourceTS)

	var targetTS *transfer.Syntax
	if *decompress {
		if !htj2k.Supported(sourceTS.UID().UID()) {
			return fmt.Errorf("input is %s, not an HTJ2K transfer syntax", sourceTS.UID().UID())
		}
		targetTS = transfer.ExplicitVRLittleEndian
	} else {
		targetTS = htj2k.SelectProfile(cfg.Profile).TransferSyntax()
	}

	out := *outputPath
	if out == "" {
		out = derivedOutputPath(inputPath, *decompress, cfg.Profile)
	}

	if err := transcodeFile(ds, out, sourceTS, targetTS, registry); err != nil {
		return err
	}

	inputSize, _ := fileSize(inputPath)
	outputSize, _ := fileSize(out)
	log.Info().
		Str("output", out).
		Str("transfer_syntax", targetTS.UID().UID()).
		Int64("input_bytes", inputSize).
		Int64("output_bytes", outputSize).
		Float64("ratio", float64(inputSize)/float64(outputSize)).
		Msg("wrote transcoded file")
	return nil
}

func newLogger(level string) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		lvl = zerolog.InfoLevel
	}
	return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).
		Level(lvl).
		With().Timestamp().Logger()
}

// transcodeFile converts ds from sourceTS to targetTS and writes the result.
// A no-op conversion still rewrites the file so the meta header matches.
func transcodeFile(ds *dataset.Dataset, outputPath string, sourceTS, targetTS *transfer.Syntax, registry *dicomcodec.Registry) error {
	if sourceTS.UID().UID() == targetTS.UID().UID() {
		if err := writer.WriteFile(outputPath, ds, writer.WithTransferSyntax(sourceTS)); err != nil {
			return fmt.Errorf("failed to write file: %w", err)
		}
		return nil
	}

	transcoder := dicomcodec.NewTranscoder(sourceTS, targetTS, dicomcodec.WithCodecRegistry(registry))
	newDS, err := transcoder.Transcode(ds)
	if err != nil {
		return fmt.Errorf("transcode failed: %w", err)
	}
	if err := writer.WriteFile(outputPath, newDS, writer.WithTransferSyntax(targetTS)); err != nil {
		return fmt.Errorf("failed to write output file: %w", err)
	}
	return nil
}

func logImageInfo(log zerolog.Logger, ds *dataset.Dataset, sourceTS *transfer.Syntax) {
	e := log.Debug().
		Str("source_transfer_syntax", sourceTS.UID().UID()).
		Uint16("rows", ds.TryGetUInt16(tag.Rows, 0)).
		Uint16("columns", ds.TryGetUInt16(tag.Columns, 0)).
		Uint16("bits_stored", ds.TryGetUInt16(tag.BitsStored, 0)).
		Uint16("samples_per_pixel", ds.TryGetUInt16(tag.SamplesPerPixel, 0))
	if pi, ok := ds.GetString(tag.PhotometricInterpretation); ok {
		e = e.Str("photometric_interpretation", pi)
	}
	if modality, ok := ds.GetString(tag.Modality); ok {
		e = e.Str("modality", modality)
	}
	e.Msg("parsed input")
}

// derivedOutputPath builds a sibling output name from the input file.
func derivedOutputPath(inputPath string, decompress bool, profile string) string {
	base := strings.TrimSuffix(inputPath, filepath.Ext(inputPath))
	if decompress {
		return base + "_raw.dcm"
	}
	return fmt.Sprintf("%s_htj2k_%s.dcm", base, strings.ToLower(profile))
}

func fileSize(path string) (int64, error) {
	info, err := os.Stat(path)
	if err != nil {
		return 0, err
	}
	return info.Size(), nil
}
