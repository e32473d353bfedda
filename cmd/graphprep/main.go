// Command graphprep prepares region road networks for the route optimizer:
// it downloads OSM extracts, converts them into nodes.csv, edges.csv and
// metadata.json, and validates prepared directories.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"greenroute/internal/errors"
)

// Supported subcommands:
// - download: Download an OSM PBF extract
// - convert:  Extract the drive network into CSV files
// - prepare:  Download + convert + validate in one step
// - validate: Validate a prepared region directory

var errUnknownSubcommand = errors.New("unknown subcommand")

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if len(os.Args) < 2 {
		printUsage(os.Stdout)
		os.Exit(1)
	}

	if err := run(ctx, os.Stdout, os.Args[1], os.Args[2:]); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

type downloadFlags struct {
	cmd    *flag.FlagSet
	region *string
	output *string
}

type convertFlags struct {
	cmd    *flag.FlagSet
	input  *string
	output *string
	region *string
}

type prepareFlags struct {
	cmd    *flag.FlagSet
	region *string
	name   *string
	cache  *string
	output *string
}

type validateFlags struct {
	cmd *flag.FlagSet
	dir *string
}

func newDownloadFlags() downloadFlags {
	cmd := flag.NewFlagSet("download", flag.ContinueOnError)

	return downloadFlags{
		cmd:    cmd,
		region: cmd.String("region", defaultExtract, "Extract to download ("+extractNames()+")"),
		output: cmd.String("output", "./data/osm", "Output directory for the PBF file"),
	}
}

func newConvertFlags() convertFlags {
	cmd := flag.NewFlagSet("convert", flag.ContinueOnError)

	return convertFlags{
		cmd:    cmd,
		input:  cmd.String("input", "", "Input PBF file path"),
		output: cmd.String("output", "./data/regions/bengaluru", "Output directory for the region files"),
		region: cmd.String("region", "", "Region name recorded in metadata.json"),
	}
}

func newPrepareFlags() prepareFlags {
	cmd := flag.NewFlagSet("prepare", flag.ContinueOnError)

	return prepareFlags{
		cmd:    cmd,
		region: cmd.String("region", defaultExtract, "Extract to download ("+extractNames()+")"),
		name:   cmd.String("name", "", "Region name recorded in metadata.json (defaults to the extract name)"),
		cache:  cmd.String("cache", os.TempDir(), "Directory the PBF file is downloaded to"),
		output: cmd.String("output", "./data/regions/karnataka", "Output directory for the region files"),
	}
}

func newValidateFlags() validateFlags {
	cmd := flag.NewFlagSet("validate", flag.ContinueOnError)

	return validateFlags{
		cmd: cmd,
		dir: cmd.String("dir", "./data/regions/bengaluru", "Region directory to validate"),
	}
}

func run(ctx context.Context, out io.Writer, subcommand string, args []string) error {
	switch subcommand {
	case "download":
		flags := newDownloadFlags()
		if err := flags.cmd.Parse(args); err != nil {
			return errors.Wrap(err, "failed to parse download flags")
		}

		_, err := runDownload(ctx, out, *flags.region, *flags.output)

		return err
	case "convert":
		flags := newConvertFlags()
		if err := flags.cmd.Parse(args); err != nil {
			return errors.Wrap(err, "failed to parse convert flags")
		}
		if *flags.input == "" {
			return errors.New("--input flag is required for convert command")
		}

		return runConvert(ctx, out, *flags.input, *flags.output, *flags.region)
	case "prepare":
		flags := newPrepareFlags()
		if err := flags.cmd.Parse(args); err != nil {
			return errors.Wrap(err, "failed to parse prepare flags")
		}

		return runPrepare(ctx, out, *flags.region, *flags.name, *flags.cache, *flags.output)
	case "validate":
		flags := newValidateFlags()
		if err := flags.cmd.Parse(args); err != nil {
			return errors.Wrap(err, "failed to parse validate flags")
		}

		return runValidate(out, *flags.dir)
	default:
		printUsage(out)

		return errors.Wrap(errUnknownSubcommand, subcommand)
	}
}

func printUsage(out io.Writer) {
	fmt.Fprintln(out, "Usage: graphprep <command> [options]")
	fmt.Fprintln(out, "")
	fmt.Fprintln(out, "Commands:")
	fmt.Fprintln(out, "  download    Download an OSM PBF extract")
	fmt.Fprintln(out, "  convert     Extract the drive network into nodes.csv and edges.csv")
	fmt.Fprintln(out, "  prepare     Download, convert and validate in one step")
	fmt.Fprintln(out, "  validate    Validate a prepared region directory")
	fmt.Fprintln(out, "")
	fmt.Fprintln(out, "Use 'graphprep <command> -h' for more information about a command.")
}
