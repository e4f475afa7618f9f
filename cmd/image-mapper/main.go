package main

import (
	"errors"
	"fmt"
	"image"
	"io"
	"log"
	"os"
	"strings"

	"github.com/jessevdk/go-flags"

	"github.com/ironsheep/image-template-mapper/internal/colorspace"
	"github.com/ironsheep/image-template-mapper/internal/engine"
	"github.com/ironsheep/image-template-mapper/internal/imaging"
	"github.com/ironsheep/image-template-mapper/internal/mapper"
	"github.com/ironsheep/image-template-mapper/internal/report"
	"github.com/ironsheep/image-template-mapper/internal/server"
)

// Version information - set by ldflags during build
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

const (
	exitOK    = 0
	exitError = 1
	exitUsage = 2
)

// Options are the command line flags.
type Options struct {
	Output     string `short:"o" long:"output" default:"out_image.png" description:"Output image; the format follows the extension"`
	Mode       string `short:"m" long:"mode" default:"RGB" description:"Color space used for averaging: RGB, HSV or LAB"`
	ColorSpace string `long:"color_space" description:"Alias for --mode; wins when both are given"`
	Strategy   string `short:"s" long:"strategy" default:"serial" description:"Execution strategy: serial or parallel"`
	Workers    int    `short:"w" long:"workers" default:"0" description:"Goroutines for the parallel strategy; 0 lets the runtime decide"`
	Filter     string `long:"filter" default:"catmullrom" description:"Filter used to resize the colors image: nearest, box, linear, catmullrom or lanczos"`
	Compare    bool   `long:"compare" description:"Time serial against parallel and verify they agree"`
	Runs       int    `long:"runs" default:"1" description:"Timed runs per strategy with --compare"`
	Report     string `long:"report" description:"Write a per-region JSON report; a .zst suffix compresses it"`
	Serve      bool   `long:"serve" description:"Run as an MCP server on stdin/stdout"`
	Version    bool   `short:"v" long:"version" description:"Print version information"`

	Args struct {
		Colors   string `positional-arg-name:"colors_image" description:"Image that supplies the colors"`
		Template string `positional-arg-name:"template_image" description:"Image whose exact colors define the regions"`
	} `positional-args:"yes"`
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	var opts Options
	parser := flags.NewParser(&opts, flags.HelpFlag|flags.PassDoubleDash)
	parser.Name = "image-mapper"

	if _, err := parser.ParseArgs(args); err != nil {
		var ferr *flags.Error
		if errors.As(err, &ferr) && ferr.Type == flags.ErrHelp {
			fmt.Fprintln(stdout, err)
			fmt.Fprintln(stdout, "Environment variables:")
			fmt.Fprintln(stdout, "  IMAGE_MAPPER_LOG_LEVEL=debug    Enable debug logging")
			return exitOK
		}
		fmt.Fprintln(stderr, err)
		return exitUsage
	}

	if opts.Version {
		fmt.Fprintf(stdout, "image-mapper %s\n", Version)
		fmt.Fprintf(stdout, "  Build time: %s\n", BuildTime)
		fmt.Fprintf(stdout, "  Git commit: %s\n", GitCommit)
		return exitOK
	}

	// Logging goes to stderr; stdout carries results or the MCP protocol.
	logger := log.New(stderr, "", log.Ldate|log.Ltime|log.Lshortfile)
	debug := strings.EqualFold(os.Getenv("IMAGE_MAPPER_LOG_LEVEL"), "debug")

	if opts.Serve {
		log.SetOutput(stderr)
		log.SetFlags(log.Ldate | log.Ltime | log.Lshortfile)
		if debug {
			logger.Printf("MCP server %s v%s (built %s, commit %s)", server.Name, Version, BuildTime, GitCommit)
		}
		if err := server.New().Serve(stdin, stdout); err != nil {
			logger.Printf("Server error: %v", err)
			return exitError
		}
		return exitOK
	}

	if opts.Args.Colors == "" || opts.Args.Template == "" {
		fmt.Fprintln(stderr, "image-mapper: colors_image and template_image are required")
		parser.WriteHelp(stderr)
		return exitUsage
	}

	mapOpts, err := opts.mapperOptions()
	if err != nil {
		fmt.Fprintf(stderr, "image-mapper: %v\n", err)
		return exitError
	}

	if err := execute(&opts, mapOpts, stdout, logger, debug); err != nil {
		fmt.Fprintf(stderr, "image-mapper: %v\n", err)
		return exitError
	}
	return exitOK
}

// mapperOptions validates the mode, strategy and filter flags.
func (o *Options) mapperOptions() (mapper.Options, error) {
	modeName := o.Mode
	if o.ColorSpace != "" {
		modeName = o.ColorSpace
	}
	mode, err := colorspace.ParseMode(modeName)
	if err != nil {
		return mapper.Options{}, err
	}
	strategy, err := engine.StrategyByName(o.Strategy, o.Workers)
	if err != nil {
		return mapper.Options{}, err
	}
	if _, err := imaging.ParseFilter(o.Filter); err != nil {
		return mapper.Options{}, err
	}
	return mapper.Options{Mode: mode, Strategy: strategy, Filter: o.Filter}, nil
}

func execute(opts *Options, mapOpts mapper.Options, stdout io.Writer, logger *log.Logger, debug bool) error {
	colors, err := imaging.Open(opts.Args.Colors)
	if err != nil {
		return err
	}
	template, err := imaging.Open(opts.Args.Template)
	if err != nil {
		return err
	}

	if debug {
		b := template.Bounds()
		logger.Printf("template %s: %d pixels, %d unique colors",
			opts.Args.Template, b.Dx()*b.Dy(), len(imaging.Keys(template).Histogram()))
	}

	var (
		result *engine.Result
		output image.Image
	)

	if opts.Compare {
		mapOpts.Strategy = engine.Parallel{Workers: opts.Workers}
		cmp, err := mapper.Compare(colors, template, mapOpts, opts.Runs)
		if cmp != nil {
			for _, tm := range cmp.Timings {
				fmt.Fprintf(stdout, "%-8s %d run(s), %.6fs average\n", tm.Strategy, tm.Runs, tm.AverageSeconds)
			}
			fmt.Fprintf(stdout, "max difference %g (tolerance %g)\n", cmp.MaxDifference, cmp.Tolerance)
		}
		if err != nil {
			return err
		}
		result = cmp.Serial
		output = imaging.FromGrid(cmp.Serial.Output)
	} else {
		res, err := mapper.Map(colors, template, mapOpts)
		if err != nil {
			return err
		}
		if debug {
			logger.Printf("%s %s mapping took %s", res.Strategy, res.Mode, res.Elapsed)
		}
		result = res.Result
		output = res.Image
	}

	if err := imaging.Save(output, opts.Output); err != nil {
		return err
	}

	if opts.Report != "" {
		rep, err := report.Build(result)
		if err != nil {
			return err
		}
		if err := report.WriteFile(opts.Report, rep); err != nil {
			return err
		}
		if debug {
			logger.Printf("wrote report %s", opts.Report)
		}
	}

	b := output.Bounds()
	fmt.Fprintf(stdout, "wrote %s (%dx%d, %d regions, %s)\n", opts.Output, b.Dx(), b.Dy(), len(result.Colors), result.Mode)
	return nil
}
