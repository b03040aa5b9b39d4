package main

import (
	"bufio"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/tog-lang/tog/config"
	"github.com/tog-lang/tog/lang"
	"github.com/tog-lang/tog/runtime"
)

const version = "0.1.0"

const usage = `usage: tog [-config file] [-entry name] <command> [args]

commands:
  run <file> [args]   evaluate a script and call its entry function
  check <file>        parse and load a script without running it
  repl                start the interactive prompt
  version             print the interpreter version
  <file> [args]       same as run
  - [args]            read the program from standard input
`

func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

// cli carries the streams and flag values of one invocation.
type cli struct {
	stdin          io.Reader
	stdout, stderr io.Writer
	configPath     string
	entry          string
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	c := &cli{stdin: stdin, stdout: stdout, stderr: stderr}

	fs := flag.NewFlagSet("tog", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() { fmt.Fprint(stderr, usage) }
	fs.StringVar(&c.configPath, "config", "", "path to tog.yaml")
	fs.StringVar(&c.entry, "entry", "", "entry function (default from config, else main)")
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return 0
		}
		return 2
	}

	rest := fs.Args()
	if len(rest) == 0 {
		return c.repl()
	}

	var err error
	switch rest[0] {
	case "version":
		fmt.Fprintf(stdout, "tog %s\n", version)
		return 0
	case "repl":
		return c.repl()
	case "check":
		if len(rest) != 2 {
			fmt.Fprint(stderr, usage)
			return 2
		}
		err = runtime.CheckFile(rest[1])
	case "run":
		if len(rest) < 2 {
			fmt.Fprint(stderr, usage)
			return 2
		}
		err = c.runScript(rest[1:])
	default:
		err = c.runScript(rest)
	}
	if err != nil {
		fmt.Fprintf(stderr, "tog: %v\n", err)
		return 1
	}
	return 0
}

// runScript loads argv[0] (or stdin for "-") and calls its entry function.
// The whole argument list is visible to the program as argv.
func (c *cli) runScript(argv []string) error {
	script := argv[0]

	var (
		ctx *lang.Context
		err error
		dir = "."
	)
	if script == "-" {
		ctx, err = runtime.LoadReader(c.stdin)
	} else {
		dir = filepath.Dir(script)
		ctx, err = runtime.LoadFile(script)
	}
	if err != nil {
		return err
	}

	cfg, err := c.loadConfig(dir)
	if err != nil {
		return err
	}
	ev := runtime.NewEvaluator(ctx, c.options(cfg)...)
	runtime.SetArgv(ev, argv)
	_, err = ev.Run(c.entryName(cfg))
	return err
}

func (c *cli) loadConfig(dir string) (*config.Config, error) {
	if c.configPath != "" {
		return config.Load(c.configPath)
	}
	return config.Find(dir)
}

func (c *cli) entryName(cfg *config.Config) string {
	if c.entry != "" {
		return c.entry
	}
	return cfg.Entry
}

func (c *cli) options(cfg *config.Config) []runtime.Option {
	return []runtime.Option{
		runtime.WithOutput(c.stdout),
		runtime.WithBatchSize(cfg.BatchSize),
		runtime.WithAnnotationChecks(cfg.Annotations()),
	}
}

func (c *cli) repl() int {
	cfg, err := c.loadConfig(".")
	if err != nil {
		fmt.Fprintf(c.stderr, "tog: %v\n", err)
		return 1
	}
	ev := runtime.NewEvaluator(nil, c.options(cfg)...)
	ev.Context().Redefine = true
	runtime.SetArgv(ev, []string{})

	s := &session{ev: ev, out: c.stdout, errOut: c.stderr}
	if c.stdin == os.Stdin && isInteractive() {
		s.runInteractive(cfg.REPL.Prompt, cfg.REPL.History)
		return 0
	}
	s.runBuffered(bufio.NewReader(c.stdin))
	return 0
}

func isInteractive() bool {
	info, err := os.Stdin.Stat()
	if err != nil {
		return false
	}
	return (info.Mode() & os.ModeCharDevice) != 0
}
