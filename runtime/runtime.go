package runtime

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"github.com/tog-lang/tog/lang"
	"github.com/tog-lang/tog/parser"
)

// Option configures an evaluator built by NewEvaluator.
type Option func(*lang.Evaluator)

// WithOutput redirects print output.
func WithOutput(w io.Writer) Option {
	return func(ev *lang.Evaluator) { ev.Out = w }
}

// WithBatchSize sets the value reported by batch_size().
func WithBatchSize(n int) Option {
	return func(ev *lang.Evaluator) {
		if n > 0 {
			ev.BatchSize = n
		}
	}
}

// WithAnnotationChecks turns run-time type annotation checks on or off.
func WithAnnotationChecks(on bool) Option {
	return func(ev *lang.Evaluator) { ev.CheckAnnotations = on }
}

// NewEvaluator constructs an evaluator for ctx with the standard builtins and
// library installed. A nil ctx starts from an empty program.
func NewEvaluator(ctx *lang.Context, opts ...Option) *lang.Evaluator {
	ev := lang.NewEvaluator(ctx)
	installPrimitives(ev)
	if err := installLibrary(ev); err != nil {
		panic(fmt.Errorf("runtime bootstrap failed: %w", err))
	}
	for _, opt := range opts {
		opt(ev)
	}
	return ev
}

// SetArgv stores the command-line arguments as an array of strings named argv.
func SetArgv(ev *lang.Evaluator, args []string) {
	values := make([]lang.Value, len(args))
	for i, arg := range args {
		values[i] = lang.StringValue(arg)
	}
	ev.Global.Define("argv", lang.ArrayValue(values))
}

func installLibrary(ev *lang.Evaluator) error {
	prog, err := parser.Parse(preludeSource)
	if err != nil {
		return err
	}
	lib, err := lang.Load(prog)
	if err != nil {
		return err
	}
	// Library functions resolve names in their own scope and then the
	// builtins, never in the program's globals.
	scope := lang.NewEnv(nil)
	for name, fn := range lib.Functions {
		fn.Env = scope
		scope.Define(name, lang.FunctionValue(fn))
		ev.Global.Define(name, lang.FunctionValue(fn))
	}
	return nil
}

func readFileSkippingShebang(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return skipShebang(data), nil
}

// skipShebang blanks a leading #! line, keeping the newline so positions
// still match the file.
func skipShebang(data []byte) []byte {
	if !bytes.HasPrefix(data, []byte("#!")) {
		return data
	}
	if idx := bytes.IndexByte(data, '\n'); idx >= 0 {
		return data[idx:]
	}
	return []byte{}
}

// LoadString parses and loads TOG source.
func LoadString(src string) (*lang.Context, error) {
	prog, err := parser.Parse(string(skipShebang([]byte(src))))
	if err != nil {
		return nil, err
	}
	return lang.Load(prog)
}

// LoadReader parses and loads TOG source from r.
func LoadReader(r io.Reader) (*lang.Context, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	return LoadString(string(data))
}

// LoadFile parses and loads a TOG script, allowing a #! first line.
func LoadFile(path string) (*lang.Context, error) {
	data, err := readFileSkippingShebang(path)
	if err != nil {
		return nil, err
	}
	prog, err := parser.Parse(string(data))
	if err != nil {
		return nil, fmt.Errorf("%s:%w", path, err)
	}
	ctx, err := lang.Load(prog)
	if err != nil {
		return nil, fmt.Errorf("%s:%w", path, err)
	}
	return ctx, nil
}

// CheckString reports lexical, syntax and definition errors in src without
// running it.
func CheckString(src string) error {
	_, err := LoadString(src)
	return err
}

// CheckFile is CheckString for the script at path.
func CheckFile(path string) error {
	_, err := LoadFile(path)
	return err
}

// Run evaluates a loaded program: top-level statements first, then entry.
func Run(ctx *lang.Context, entry string, opts ...Option) (lang.Value, error) {
	return NewEvaluator(ctx, opts...).Run(entry)
}

// RunFile loads and runs the script at path.
func RunFile(path, entry string, opts ...Option) (lang.Value, error) {
	ctx, err := LoadFile(path)
	if err != nil {
		return lang.Value{}, err
	}
	return Run(ctx, entry, opts...)
}

// EvaluateString adds src to the evaluator's program and runs its top-level
// statements, returning the value of the last one.
func EvaluateString(ev *lang.Evaluator, src string) (lang.Value, error) {
	prog, err := parser.Parse(src)
	if err != nil {
		return lang.Value{}, err
	}
	return ev.Exec(prog)
}

// EvaluateReader is EvaluateString for a reader.
func EvaluateReader(ev *lang.Evaluator, r io.Reader) (lang.Value, error) {
	prog, err := parser.ParseReader(r)
	if err != nil {
		return lang.Value{}, err
	}
	return ev.Exec(prog)
}
