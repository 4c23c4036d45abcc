package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strconv"

	"github.com/setanarut/mediancut"
	"github.com/setanarut/mediancut/utils"
)

const progName = "mediancut"

// errUsage reports invalid command line arguments.
var errUsage = errors.New("invalid arguments")

type config struct {
	opt     utils.Options
	input   string
	output  string
	swatch  string
	layers  string
	verbose bool
}

func usage(w io.Writer, fs *flag.FlagSet) {
	fmt.Fprintf(w, "Usage: %s [-p N] INPUT OUTPUT\n\n", progName)
	fmt.Fprint(w, "Performs color quantization on the given image using a slightly modified\n")
	fmt.Fprint(w, "version of the median cut algorithm.\n\n")
	fs.SetOutput(w)
	fs.PrintDefaults()
}

func parseArgs(args []string, stdout, stderr io.Writer) (*config, error) {
	cfg := &config{opt: utils.DefaultOptions()}
	method := cfg.opt.Method.String()

	fs := flag.NewFlagSet(progName, flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	fs.IntVar(&cfg.opt.PaletteSize, "p", cfg.opt.PaletteSize,
		"Number of colors in the output image, at most "+strconv.Itoa(mediancut.MaxPalette))
	fs.StringVar(&method, "method", method,
		"Palette method: mediancut, kmeans or dominantcolor")
	fs.IntVar(&cfg.opt.MaxDimension, "maxdim", 0,
		"Shrink the image to fit MAXDIM x MAXDIM before quantizing (0 keeps the size)")
	fs.StringVar(&cfg.swatch, "swatch", "",
		"Also write the palette as a row of color tiles to this file")
	fs.StringVar(&cfg.layers, "layers", "",
		"Also write one mask per palette color into this directory (mediancut only)")
	fs.BoolVar(&cfg.verbose, "v", false, "Log the palette and quantization error")

	err := fs.Parse(args)
	if errors.Is(err, flag.ErrHelp) {
		usage(stdout, fs)
		return nil, err
	}
	if err == nil && fs.NArg() != 2 {
		err = fmt.Errorf("expected INPUT and OUTPUT, got %d arguments", fs.NArg())
	}
	if err == nil {
		cfg.opt.Method, err = utils.ParsePaletteMethod(method)
	}
	if err == nil {
		err = cfg.opt.Validate()
	}
	if err == nil && cfg.layers != "" && cfg.opt.Method != utils.PaletteMethodMedianCut {
		err = fmt.Errorf("-layers requires the mediancut method")
	}
	if err != nil {
		fmt.Fprintf(stderr, "%s: %v\n", progName, err)
		usage(stderr, fs)
		return nil, fmt.Errorf("%w: %v", errUsage, err)
	}
	cfg.input, cfg.output = fs.Arg(0), fs.Arg(1)
	return cfg, nil
}

func run(cfg *config, logger *log.Logger) error {
	img, err := utils.ReadImage(cfg.input)
	if err != nil {
		return fmt.Errorf("cannot parse image '%s': %w", cfg.input, err)
	}

	res, err := utils.QuantizeImage(img, cfg.opt)
	if err != nil {
		return err
	}

	if err := utils.SaveImage(res.Image(), cfg.output); err != nil {
		return fmt.Errorf("cannot write image '%s': %w", cfg.output, err)
	}

	if cfg.verbose {
		logger.Printf("%s: %dx%d, %d colors (%v)", cfg.input, res.Width, res.Height, len(res.Colors), cfg.opt.Method)
		for i, c := range res.Colors {
			logger.Printf("  %3d #%02x%02x%02x", i, c[mediancut.Red], c[mediancut.Green], c[mediancut.Blue])
		}
		if stats, err := utils.Measure(res.Source, res.Pixels); err == nil {
			logger.Println(stats)
		}
	}

	if cfg.swatch != "" {
		colors := utils.DistinctColors(res.Colors)
		utils.SortPaletteByBrightness(colors)
		if err := utils.SavePalette(colors, 64, cfg.swatch); err != nil {
			return fmt.Errorf("cannot write palette '%s': %w", cfg.swatch, err)
		}
	}

	if cfg.layers != "" {
		if err := os.MkdirAll(cfg.layers, 0o755); err != nil {
			return err
		}
		for i, layer := range res.Palette.RGBALayers(res.Source, res.Width, res.Height) {
			name := filepath.Join(cfg.layers, fmt.Sprintf("layer_%03d.png", i))
			if err := utils.SaveImage(layer, name); err != nil {
				return fmt.Errorf("cannot write layer '%s': %w", name, err)
			}
		}
	}
	return nil
}

func main() {
	log.SetPrefix(progName + ": ")
	log.SetFlags(0)

	cfg, err := parseArgs(os.Args[1:], os.Stdout, os.Stderr)
	if errors.Is(err, flag.ErrHelp) {
		os.Exit(0)
	}
	if err != nil {
		os.Exit(1)
	}
	if err := run(cfg, log.Default()); err != nil {
		log.Fatal(err)
	}
}
