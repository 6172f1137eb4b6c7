// Package openjph invokes the OpenJPH command-line tools (ojph_compress and
// ojph_expand) as the production implementation of the codec capability
// interfaces. The tools speak a flat textual protocol: named arguments in,
// "Elapsed time = <seconds>" on stdout as the sole success signal, and
// diagnostics on stderr on failure.
package openjph

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strconv"
	"strings"

	"github.com/rs/zerolog"

	"github.com/cocosip/go-dicom-htj2k/codec"
)

const elapsedPrefix = "Elapsed time = "

// commandRunner abstracts process execution for testability.
type commandRunner interface {
	Run(ctx context.Context, name string, args ...string) (stdout, stderr string, err error)
}

// execRunner executes commands via os/exec.
type execRunner struct{}

func (execRunner) Run(ctx context.Context, name string, args ...string) (string, string, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	err := cmd.Run()
	return stdout.String(), stderr.String(), err
}

// Tool shells out to the OpenJPH binaries.
type Tool struct {
	compressPath string
	expandPath   string
	runner       commandRunner
	log          zerolog.Logger
}

var (
	_ codec.Encoder = (*Tool)(nil)
	_ codec.Decoder = (*Tool)(nil)
)

// Option configures a Tool.
type Option func(*Tool)

// WithCompressPath overrides the ojph_compress binary path.
func WithCompressPath(path string) Option {
	return func(t *Tool) { t.compressPath = path }
}

// WithExpandPath overrides the ojph_expand binary path.
func WithExpandPath(path string) Option {
	return func(t *Tool) { t.expandPath = path }
}

// WithLogger sets the logger used for invocation tracing.
func WithLogger(log zerolog.Logger) Option {
	return func(t *Tool) { t.log = log }
}

// NewTool creates a Tool that resolves the OpenJPH binaries from PATH unless
// overridden.
func NewTool(opts ...Option) *Tool {
	t := &Tool{
		compressPath: "ojph_compress",
		expandPath:   "ojph_expand",
		runner:       execRunner{},
		log:          zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Encode implements codec.Encoder by invoking ojph_compress.
func (t *Tool) Encode(ctx context.Context, inputPath, outputPath string, params codec.EncodeParams) (float64, error) {
	if err := params.Validate(); err != nil {
		return 0, err
	}
	args, err := compressArgs(inputPath, outputPath, params)
	if err != nil {
		return 0, err
	}
	return t.run(ctx, t.compressPath, args)
}

// Decode implements codec.Decoder by invoking ojph_expand.
func (t *Tool) Decode(ctx context.Context, inputPath, outputPath string, params codec.DecodeParams) (float64, error) {
	if err := params.Validate(); err != nil {
		return 0, err
	}
	args := expandArgs(inputPath, outputPath, params)
	return t.run(ctx, t.expandPath, args)
}

// run executes one tool invocation and applies the success-signal convention:
// a non-empty stdout carries the elapsed time, an empty stdout means failure
// regardless of exit status.
func (t *Tool) run(ctx context.Context, name string, args []string) (float64, error) {
	t.log.Debug().Str("tool", name).Strs("args", args).Msg("invoking codec engine")

	stdout, stderr, runErr := t.runner.Run(ctx, name, args...)
	if strings.TrimSpace(stdout) == "" {
		diag := strings.TrimSpace(stderr)
		if diag == "" && runErr != nil {
			diag = runErr.Error()
		}
		return 0, fmt.Errorf("%w: %s: %s", codec.ErrCodecInvocation, name, diag)
	}

	elapsed, err := parseElapsed(stdout)
	if err != nil {
		return 0, fmt.Errorf("%w: %s: %v", codec.ErrCodecInvocation, name, err)
	}
	t.log.Debug().Str("tool", name).Float64("elapsed_seconds", elapsed).Msg("codec engine finished")
	return elapsed, nil
}

// parseElapsed extracts the elapsed-time value from the tool's stdout.
func parseElapsed(stdout string) (float64, error) {
	s := strings.TrimSpace(stdout)
	s = strings.TrimPrefix(s, elapsedPrefix)
	elapsed, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, fmt.Errorf("unparseable elapsed time output %q", stdout)
	}
	return elapsed, nil
}

// compressArgs builds the ojph_compress argument vector from the parameter
// set. Only irreversible encoding carries a qstep; optional geometry is
// emitted only when present.
func compressArgs(inputPath, outputPath string, p codec.EncodeParams) ([]string, error) {
	args := []string{
		"-i", inputPath,
		"-o", outputPath,
		"-num_decomps", strconv.Itoa(p.NumDecomps),
		"-prog_order", p.ProgOrder,
		"-block_size", formatPair(p.BlockSize),
		"-tlm_marker", formatBool(p.TLMMarker),
	}
	// The colour transform only applies to 3-component ppm input.
	if strings.HasSuffix(inputPath, ".ppm") {
		args = append(args, "-colour_trans", formatBool(p.ColorTrans))
	}
	if p.Reversible {
		args = append(args, "-reversible", "true")
	} else {
		args = append(args,
			"-qstep", strconv.FormatFloat(p.QStep, 'f', -1, 64),
			"-reversible", "false",
		)
	}
	if len(p.Precincts) > 0 {
		args = append(args, "-precincts", formatPairs(p.Precincts))
	}
	if p.TileOffset != nil {
		args = append(args, "-tile_offset", formatPair(*p.TileOffset))
	}
	if p.TileSize != nil {
		args = append(args, "-tile_size", formatPair(*p.TileSize))
	}
	if p.ImageOffset != nil {
		args = append(args, "-image_offset", formatPair(*p.ImageOffset))
	}
	if p.Tileparts != "" {
		args = append(args, "-tileparts", p.Tileparts)
	}
	return args, nil
}

// expandArgs builds the ojph_expand argument vector.
func expandArgs(inputPath, outputPath string, p codec.DecodeParams) []string {
	args := []string{
		"-i", inputPath,
		"-o", outputPath,
	}
	if len(p.SkipRes) > 0 {
		parts := make([]string, len(p.SkipRes))
		for i, v := range p.SkipRes {
			parts[i] = strconv.Itoa(v)
		}
		args = append(args, "-skip_res", strings.Join(parts, ","))
	}
	if p.Resilient {
		args = append(args, "-resilient")
	}
	return args
}

// formatPair renders one {x,y} value pair.
func formatPair(pair [2]int) string {
	return fmt.Sprintf("{%d,%d}", pair[0], pair[1])
}

// formatPairs renders a comma-separated sequence of {x,y} pairs.
func formatPairs(pairs [][2]int) string {
	parts := make([]string, len(pairs))
	for i, pair := range pairs {
		parts[i] = formatPair(pair)
	}
	return strings.Join(parts, ",")
}

// formatBool renders booleans the way the tools expect them.
func formatBool(v bool) string {
	if v {
		return "true"
	}
	return "false"
}
