package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/tsawler/wordview/convert"
	"github.com/tsawler/wordview/diagram"
	"github.com/tsawler/wordview/format"
	"github.com/tsawler/wordview/internal/logging"
	"github.com/tsawler/wordview/mapping"
	"github.com/tsawler/wordview/model"
)

// errUsage marks command line mistakes; cobra has already printed them.
var errUsage = errors.New("usage")

// run executes the command and returns the process exit status.
func run(ctx context.Context, task string, args []string) int {
	return runWith(ctx, task, args, os.Stdin, os.Stdout, os.Stderr)
}

func runWith(ctx context.Context, task string, args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	code := 1
	cmd := newRootCmd(task, &code)
	cmd.SetArgs(args)
	cmd.SetIn(stdin)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)
	if err := cmd.ExecuteContext(ctx); err != nil {
		if !errors.Is(err, errUsage) {
			fmt.Fprintf(stderr, "%s: %v\n", task, err)
		}
		return 1
	}
	return code
}

func newRootCmd(task string, code *int) *cobra.Command {
	v := viper.New()
	cmd := &cobra.Command{
		Use:   task + " [flags] file...",
		Short: "Show the text and images of MS Word documents",
		Long: `wordview reads Word for Windows 1.x/2.0, Word 6, Word 7 (95) and
Word 97-2003 binary documents and writes their content as plain text
(the default), PostScript or DocBook XML to standard output.

Use "-" as a file name to read standard input. When several files are
given the conversion continues after a failure; the exit status is
zero when at least one file was converted.`,
		Version:       version,
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return initConfig(v, cmd)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := newProcessor(task, v, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			out := bufio.NewWriter(cmd.OutOrStdout())
			res := p.Batch(cmd.Context(), inputs(args, cmd.InOrStdin()), out)
			if err := out.Flush(); err != nil {
				return fmt.Errorf("writing output: %w", err)
			}
			*code = res.ExitCode()
			return nil
		},
	}
	cmd.SetFlagErrorFunc(func(c *cobra.Command, err error) error {
		fmt.Fprintf(c.ErrOrStderr(), "%s: %v\n%s", task, err, c.UsageString())
		return errUsage
	})

	f := cmd.Flags()
	f.BoolP("text", "t", false, "text output (default)")
	f.StringP("paper", "p", "", "PostScript output on the named paper size ("+strings.Join(model.PaperNames(), ", ")+")")
	f.StringP("xml", "x", "", "XML output with the named document type (db: DocBook)")
	f.StringP("mapping", "m", "", "character mapping: a character set name or a mapping file")
	f.IntP("width", "w", diagram.DefaultWidth, "text width in columns; 0 disables wrapping")
	f.IntP("images", "i", 0, "image level: 0 default, 1 no images, 2 PostScript level 2, 3 PostScript level 3")
	f.BoolP("landscape", "L", false, "landscape PostScript pages")
	f.BoolP("hidden", "s", false, "show hidden text")
	f.Int("jobs", 1, "number of files converted at once")
	f.Bool("trace", false, "print the decoder events instead of a rendering")
	f.String("versions", "", "YAML file replacing the built-in Word version table")
	f.String("config", "", "config file (default: ./wordview.yaml or ~/.config/wordview/wordview.yaml)")
	f.String("log-level", "info", "diagnostic level (error, warn, info, debug, trace)")

	for _, name := range []string{"text", "paper", "xml", "mapping", "width", "images", "landscape", "hidden", "jobs", "trace", "versions", "log-level"} {
		_ = v.BindPFlag(name, f.Lookup(name))
	}
	return cmd
}

func initConfig(v *viper.Viper, cmd *cobra.Command) error {
	cfgFile, _ := cmd.Flags().GetString("config")
	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.SetConfigName("wordview")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".config", "wordview"))
		}
	}
	v.SetEnvPrefix("WORDVIEW")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile != "" || !errors.As(err, &notFound) {
			return fmt.Errorf("reading config: %w", err)
		}
	}
	return nil
}

// renderOptions turns the settings into diagram options.
func renderOptions(v *viper.Viper) (diagram.RenderOptions, error) {
	opts := diagram.DefaultOptions()

	var chosen []string
	if v.GetBool("text") {
		chosen = append(chosen, "-t")
	}
	orientation := model.Portrait
	if v.GetBool("landscape") {
		orientation = model.Landscape
	}
	if paper := v.GetString("paper"); paper != "" {
		chosen = append(chosen, "-p")
		geo, err := model.NewPageGeometry(paper, orientation)
		if err != nil {
			return opts, err
		}
		opts.Conversion, opts.Geometry = diagram.ConvertPostScript, geo
	}
	if dtd := v.GetString("xml"); dtd != "" {
		chosen = append(chosen, "-x")
		if dtd != "db" {
			return opts, fmt.Errorf("unknown XML document type %q (want db)", dtd)
		}
		opts.Conversion = diagram.ConvertXML
	}
	if v.GetBool("trace") {
		chosen = append(chosen, "--trace")
		opts.Conversion = diagram.ConvertTrace
	}
	if len(chosen) > 1 {
		return opts, fmt.Errorf("conflicting output formats: %s", strings.Join(chosen, " "))
	}

	opts.Width = v.GetInt("width")
	level, err := diagram.ParseImageLevel(v.GetInt("images"))
	if err != nil {
		return opts, err
	}
	opts.ImageLevel = level
	opts.ShowHidden = v.GetBool("hidden")

	if name := v.GetString("mapping"); name != "" {
		table, err := mapping.Open(name)
		if err != nil {
			return opts, err
		}
		opts.Mapping = table
	}
	return opts, nil
}

func newProcessor(task string, v *viper.Viper, stderr io.Writer) (*convert.Processor, error) {
	log, err := logging.New(task, v.GetString("log-level"), stderr)
	if err != nil {
		return nil, err
	}
	opts, err := renderOptions(v)
	if err != nil {
		return nil, err
	}
	p := convert.New(task)
	p.Options = opts
	p.Logger = log
	p.Jobs = max(v.GetInt("jobs"), 1)

	if path := v.GetString("versions"); path != "" {
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		reg, err := format.LoadRegistry(f)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		p.Registry = reg
	}
	return p, nil
}

func inputs(args []string, stdin io.Reader) []convert.Input {
	in := make([]convert.Input, len(args))
	for i, a := range args {
		if a == convert.Stdin {
			in[i] = convert.ReaderInput(a, stdin)
			continue
		}
		in[i] = convert.FileInput(a)
	}
	return in
}
