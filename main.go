package main

import (
	"bytes"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/helvlang/helv/internal/bytecode"
	"github.com/helvlang/helv/internal/emit"
	"github.com/helvlang/helv/internal/fileinput"
	"github.com/helvlang/helv/internal/logio"
	"github.com/helvlang/helv/internal/parser"
)

const version = "0.0.0 dev"

func main() {
	log := logio.NewLogger(os.Stderr)
	cmd := command{
		stdout: os.Stdout,
		stderr: os.Stderr,
		log:    log,
	}
	log.ErrorIf(cmd.run(context.Background(), os.Args[1:]))
	os.Exit(log.ExitCode())
}

type command struct {
	stdout io.Writer
	stderr io.Writer
	log    *logio.Logger

	// flags
	code       string
	execute    bool
	target     string
	outName    string
	stackSize  int
	timeout    time.Duration
	trace      bool
	depthLimit int
	stackLimit uint
	check      bool
	configName string
	version    bool
}

var errUsage = errors.New("give either a source file or -c code")

func (cmd *command) flags(out io.Writer) *flag.FlagSet {
	defaults := defaultConfig()
	fs := flag.NewFlagSet("helv", flag.ContinueOnError)
	fs.SetOutput(out)
	fs.Usage = func() {
		fmt.Fprintf(fs.Output(), "Usage:\n  helv [options] [file]\nOptions:\n")
		fs.PrintDefaults()
	}
	fs.StringVar(&cmd.code, "c", "", "program source code, instead of a file")
	fs.BoolVar(&cmd.execute, "e", false, "execute the program instead of emitting it")
	fs.StringVar(&cmd.target, "emit", defaults.Emit.Target, "emit target: c, go, asm or image")
	fs.StringVar(&cmd.outName, "o", "", "write emitted output to the named file instead of stdout")
	fs.IntVar(&cmd.stackSize, "stack-size", defaults.Emit.StackSize, "stack array size in emitted code")
	fs.DurationVar(&cmd.timeout, "timeout", 0, "specify a time limit for execution")
	fs.BoolVar(&cmd.trace, "trace", false, "enable trace logging of executed instructions")
	fs.IntVar(&cmd.depthLimit, "depth-limit", defaults.Run.DepthLimit, "limit program call depth during execution, 0 for none")
	fs.UintVar(&cmd.stackLimit, "stack-limit", 0, "limit stack height during execution, 0 for none")
	fs.BoolVar(&cmd.check, "check", false, "execute the program and compiled emitted C, failing unless they agree")
	fs.StringVar(&cmd.configName, "config", "", "configuration file, instead of the nearest "+configName)
	fs.BoolVar(&cmd.version, "version", false, "print the version and exit")
	return fs
}

// configure loads the configuration and overrides it with any flag given
// on the command line.
func (cmd *command) configure(fs *flag.FlagSet) (cfg config, err error) {
	if cmd.configName != "" {
		cfg, err = loadConfig(cmd.configName)
	} else {
		cfg, err = findConfig(".")
	}
	if err != nil {
		return cfg, err
	}
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "emit":
			cfg.Emit.Target = cmd.target
		case "stack-size":
			cfg.Emit.StackSize = cmd.stackSize
		case "timeout":
			cfg.Run.Timeout.Duration = cmd.timeout
		case "trace":
			cfg.Run.Trace = cmd.trace
		case "depth-limit":
			cfg.Run.DepthLimit = cmd.depthLimit
		case "stack-limit":
			cfg.Run.StackLimit = cmd.stackLimit
		}
	})
	return cfg, cfg.validate()
}

func (cmd *command) run(ctx context.Context, args []string) error {
	fs := cmd.flags(cmd.stderr)
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil
		}
		return err
	}

	if cmd.version {
		fmt.Fprintf(cmd.stdout, "helv version %v\n", version)
		return nil
	}

	cfg, err := cmd.configure(fs)
	if err != nil {
		return err
	}

	table, err := cmd.load(fs.Args())
	if errors.Is(err, errUsage) && cmd.code == "" && fs.NArg() == 0 {
		fs.Usage()
		return nil
	} else if err != nil {
		return err
	}

	if timeout := cfg.Run.Timeout.Duration; timeout != 0 && (cmd.execute || cmd.check) {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	switch {
	case cmd.check:
		return cmd.runCheck(ctx, cfg, table)
	case cmd.execute:
		return cmd.runVM(ctx, cfg, table)
	default:
		return cmd.emitTable(cfg, table)
	}
}

// load parses the program source, or decodes it when it is an image.
func (cmd *command) load(args []string) (*bytecode.Table, error) {
	var src fileinput.Source
	switch {
	case cmd.code != "" && len(args) == 0:
		src = fileinput.Inline(cmd.code)
	case cmd.code == "" && len(args) == 1:
		var err error
		if src, err = fileinput.ReadFile(args[0]); err != nil {
			return nil, err
		}
	default:
		return nil, errUsage
	}
	if bytecode.IsImage(src.Text) {
		return bytecode.UnmarshalImage(src.Text)
	}
	return parser.Parse(src, parser.WithWarnf(cmd.log.Leveledf("WARN")))
}

func (cmd *command) runVM(ctx context.Context, cfg config, table *bytecode.Table) error {
	opts := append(cfg.vmOptions(), WithOutput(cmd.stdout))
	if cfg.Run.Trace {
		opts = append(opts, WithLogf(cmd.log.Leveledf("TRACE")))
	}
	vm := New(table, opts...)
	err := vm.Run(ctx)
	if err != nil && cfg.Run.Trace {
		lw := &logio.Writer{Logf: cmd.log.Leveledf("TRACE")}
		vmDumper{vm: vm, out: lw}.dump()
		lw.Close()
	}
	return err
}

func (cmd *command) runCheck(ctx context.Context, cfg config, table *bytecode.Table) error {
	res, err := checkParity(ctx, table, cfg.Emit.CC, cfg.vmOptions(), cfg.emitOptions())
	if err != nil {
		return err
	}
	if _, err := cmd.stdout.Write(res.VMOutput); err != nil {
		return err
	}
	return res.VMErr
}

func (cmd *command) emitTable(cfg config, table *bytecode.Table) (rerr error) {
	var out bytes.Buffer
	switch cfg.Emit.Target {
	case "c":
		rerr = emit.C(&out, table, cfg.emitOptions()...)
	case "go":
		rerr = emit.Go(&out, table, cfg.emitOptions()...)
	case "asm":
		rerr = bytecode.Dump(&out, table)
	case "image":
		var data []byte
		data, rerr = bytecode.MarshalImage(table)
		out.Write(data)
	}
	if rerr != nil {
		return rerr
	}

	if cmd.outName == "" {
		_, err := out.WriteTo(cmd.stdout)
		return err
	}
	return os.WriteFile(cmd.outName, out.Bytes(), 0o644)
}
