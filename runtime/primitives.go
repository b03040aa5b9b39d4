package runtime

import (
	"fmt"
	"math"
	"os"
	"sort"
	"strings"

	"github.com/tog-lang/tog/lang"
)

func installPrimitives(ev *lang.Evaluator) {
	define := ev.DefineBuiltin

	define("print", 0, -1, primPrint)
	define("to_string", 1, 1, primToString)
	define("len", 1, 1, primLen)
	define("range", 1, 2, primRange)

	define("first", 1, 1, primFirst)
	define("last", 1, 1, primLast)
	define("slice", 3, 3, primSlice)
	define("flatten", 1, 1, primFlatten)
	define("unique", 1, 1, primUnique)
	define("sort", 1, 1, primSort)
	define("push", 2, 2, primPush)
	define("append", 2, 2, primPush)
	define("pop", 1, 1, primPop)
	define("reverse", 1, 1, primReverse)
	define("contains", 2, 2, primContains)

	define("split", 2, 2, primSplit)
	define("join", 2, 2, primJoin)
	define("substring", 3, 3, primSubstring)

	define("min", 1, -1, primMin)
	define("max", 1, -1, primMax)
	define("abs", 1, 1, primAbs)
	define("sqrt", 1, 1, primSqrt)
	define("pow", 2, 2, primPow)

	define("map", 2, 2, primMap)
	define("filter", 2, 2, primFilter)
	define("reduce", 3, 3, primReduce)

	define("unwrap", 1, 1, primUnwrap)
	define("unwrap_or", 2, 2, primUnwrapOr)
	define("expect", 2, 2, primExpect)
	define("is_ok", 1, 1, variantPredicate("is_ok", "Result", "Ok"))
	define("is_err", 1, 1, variantPredicate("is_err", "Result", "Err"))
	define("is_some", 1, 1, variantPredicate("is_some", "Option", "Some"))
	define("is_none", 1, 1, variantPredicate("is_none", "Option", "None"))

	define("gpu_sum", 1, 1, primGPUSum)
	define("gpu_product", 1, 1, primGPUProduct)
	define("gpu_mean", 1, 1, primGPUMean)
	define("parallel_sum", 1, 1, primParallelSum)
	define("batch_size", 0, 0, primBatchSize)

	define("read_file", 1, 1, primReadFile)
	define("write_file", 2, 2, primWriteFile)
}

func primPrint(ev *lang.Evaluator, args []lang.Value) (lang.Value, error) {
	var b strings.Builder
	for _, arg := range args {
		b.WriteString(arg.String())
	}
	b.WriteByte('\n')
	if _, err := fmt.Fprint(ev.Out, b.String()); err != nil {
		return lang.Value{}, err
	}
	return lang.Unit, nil
}

func primToString(ev *lang.Evaluator, args []lang.Value) (lang.Value, error) {
	return lang.StringValue(args[0].String()), nil
}

func primLen(ev *lang.Evaluator, args []lang.Value) (lang.Value, error) {
	v := args[0]
	switch v.Type {
	case lang.TypeString:
		return lang.IntValue(int64(len(v.Str()))), nil
	case lang.TypeArray:
		return lang.IntValue(int64(len(v.Elems()))), nil
	case lang.TypeRange:
		return lang.IntValue(v.Range().Len()), nil
	}
	return lang.Value{}, typeError("len", "string, array or range", v)
}

func primRange(ev *lang.Evaluator, args []lang.Value) (lang.Value, error) {
	for _, arg := range args {
		if arg.Type != lang.TypeInt {
			return lang.Value{}, typeError("range", "int", arg)
		}
	}
	start, end := int64(0), args[0].Int()
	if len(args) == 2 {
		start, end = args[0].Int(), args[1].Int()
	}
	if end > start && end-start < 0 {
		return lang.Value{}, lang.Errorf(lang.ArithmeticError, "range(%d, %d) has more elements than an int can count", start, end)
	}
	return lang.RangeValue(start, end), nil
}

func primFirst(ev *lang.Evaluator, args []lang.Value) (lang.Value, error) {
	if args[0].Type == lang.TypeRange {
		r := args[0].Range()
		if r.Len() == 0 {
			return lang.Value{}, lang.Errorf(lang.IndexError, "first called on an empty range")
		}
		return lang.IntValue(r.Start), nil
	}
	elems, err := sequence("first", args[0])
	if err != nil {
		return lang.Value{}, err
	}
	if len(elems) == 0 {
		return lang.Value{}, lang.Errorf(lang.IndexError, "first called on an empty array")
	}
	return elems[0], nil
}

func primLast(ev *lang.Evaluator, args []lang.Value) (lang.Value, error) {
	if args[0].Type == lang.TypeRange {
		r := args[0].Range()
		if r.Len() == 0 {
			return lang.Value{}, lang.Errorf(lang.IndexError, "last called on an empty range")
		}
		return lang.IntValue(r.End - 1), nil
	}
	elems, err := sequence("last", args[0])
	if err != nil {
		return lang.Value{}, err
	}
	if len(elems) == 0 {
		return lang.Value{}, lang.Errorf(lang.IndexError, "last called on an empty array")
	}
	return elems[len(elems)-1], nil
}

func primSlice(ev *lang.Evaluator, args []lang.Value) (lang.Value, error) {
	elems, err := sequence("slice", args[0])
	if err != nil {
		return lang.Value{}, err
	}
	start, end, err := bounds("slice", args[1], args[2], len(elems))
	if err != nil {
		return lang.Value{}, err
	}
	return newArray(elems[start:end]), nil
}

func primFlatten(ev *lang.Evaluator, args []lang.Value) (lang.Value, error) {
	elems, err := sequence("flatten", args[0])
	if err != nil {
		return lang.Value{}, err
	}
	out := make([]lang.Value, 0, len(elems))
	for _, elem := range elems {
		if elem.Type == lang.TypeArray {
			out = append(out, elem.Elems()...)
			continue
		}
		out = append(out, elem)
	}
	return lang.ArrayValue(out), nil
}

func primUnique(ev *lang.Evaluator, args []lang.Value) (lang.Value, error) {
	elems, err := sequence("unique", args[0])
	if err != nil {
		return lang.Value{}, err
	}
	var out []lang.Value
	for _, elem := range elems {
		seen := false
		for _, kept := range out {
			if lang.Equal(elem, kept) {
				seen = true
				break
			}
		}
		if !seen {
			out = append(out, elem)
		}
	}
	return lang.ArrayValue(out), nil
}

func primSort(ev *lang.Evaluator, args []lang.Value) (lang.Value, error) {
	elems, err := sequence("sort", args[0])
	if err != nil {
		return lang.Value{}, err
	}
	sorted := newArray(elems)
	out := sorted.Elems()
	var cmpErr error
	sort.SliceStable(out, func(i, j int) bool {
		c, err := lang.Compare(out[i], out[j])
		if err != nil && cmpErr == nil {
			cmpErr = err
		}
		return c < 0
	})
	if cmpErr != nil {
		return lang.Value{}, lang.Errorf(lang.TypeError, "sort expects numbers or strings: %s", message(cmpErr))
	}
	return sorted, nil
}

func primPush(ev *lang.Evaluator, args []lang.Value) (lang.Value, error) {
	if args[0].Type != lang.TypeArray {
		return lang.Value{}, typeError("push", "array", args[0])
	}
	elems := args[0].Elems()
	out := make([]lang.Value, len(elems), len(elems)+1)
	copy(out, elems)
	return lang.ArrayValue(append(out, args[1])), nil
}

func primPop(ev *lang.Evaluator, args []lang.Value) (lang.Value, error) {
	if args[0].Type != lang.TypeArray {
		return lang.Value{}, typeError("pop", "array", args[0])
	}
	elems := args[0].Elems()
	if len(elems) == 0 {
		return lang.Value{}, lang.Errorf(lang.IndexError, "pop called on an empty array")
	}
	return newArray(elems[:len(elems)-1]), nil
}

func primReverse(ev *lang.Evaluator, args []lang.Value) (lang.Value, error) {
	elems, err := sequence("reverse", args[0])
	if err != nil {
		return lang.Value{}, err
	}
	out := make([]lang.Value, len(elems))
	for i, elem := range elems {
		out[len(elems)-1-i] = elem
	}
	return lang.ArrayValue(out), nil
}

func primContains(ev *lang.Evaluator, args []lang.Value) (lang.Value, error) {
	haystack, needle := args[0], args[1]
	switch haystack.Type {
	case lang.TypeString:
		if needle.Type != lang.TypeString {
			return lang.Value{}, typeError("contains", "string", needle)
		}
		return lang.BoolValue(strings.Contains(haystack.Str(), needle.Str())), nil
	case lang.TypeRange:
		return lang.BoolValue(rangeContains(haystack.Range(), needle)), nil
	case lang.TypeArray:
		for _, elem := range haystack.Elems() {
			if lang.Equal(elem, needle) {
				return lang.BoolValue(true), nil
			}
		}
		return lang.BoolValue(false), nil
	}
	return lang.Value{}, typeError("contains", "string or array", haystack)
}

// rangeContains matches contains on the materialized range: a float equal
// to a member counts.
func rangeContains(r lang.Range, needle lang.Value) bool {
	switch needle.Type {
	case lang.TypeInt:
		return r.Contains(needle.Int())
	case lang.TypeFloat:
		f := needle.Float()
		if f != math.Trunc(f) || f < math.MinInt64 || f >= math.MaxInt64 {
			return false
		}
		return r.Contains(int64(f))
	}
	return false
}

func primSplit(ev *lang.Evaluator, args []lang.Value) (lang.Value, error) {
	for _, arg := range args {
		if arg.Type != lang.TypeString {
			return lang.Value{}, typeError("split", "string", arg)
		}
	}
	parts := strings.Split(args[0].Str(), args[1].Str())
	out := make([]lang.Value, len(parts))
	for i, part := range parts {
		out[i] = lang.StringValue(part)
	}
	return lang.ArrayValue(out), nil
}

func primJoin(ev *lang.Evaluator, args []lang.Value) (lang.Value, error) {
	elems, err := sequence("join", args[0])
	if err != nil {
		return lang.Value{}, err
	}
	if args[1].Type != lang.TypeString {
		return lang.Value{}, typeError("join", "string separator", args[1])
	}
	parts := make([]string, len(elems))
	for i, elem := range elems {
		parts[i] = elem.String()
	}
	return lang.StringValue(strings.Join(parts, args[1].Str())), nil
}

func primSubstring(ev *lang.Evaluator, args []lang.Value) (lang.Value, error) {
	if args[0].Type != lang.TypeString {
		return lang.Value{}, typeError("substring", "string", args[0])
	}
	s := args[0].Str()
	if args[1].Type != lang.TypeInt || args[2].Type != lang.TypeInt {
		return lang.Value{}, lang.Errorf(lang.TypeError, "substring expects int indices, got %s and %s",
			args[1].TypeName(), args[2].TypeName())
	}
	start, end := args[1].Int(), args[2].Int()
	if start < 0 || end < start || end > int64(len(s)) {
		return lang.Value{}, lang.Errorf(lang.IndexError, "substring indices %d..%d out of bounds for length %d", start, end, len(s))
	}
	return lang.StringValue(s[start:end]), nil
}

func primMin(ev *lang.Evaluator, args []lang.Value) (lang.Value, error) {
	return extremum("min", args, func(c int) bool { return c < 0 })
}

func primMax(ev *lang.Evaluator, args []lang.Value) (lang.Value, error) {
	return extremum("max", args, func(c int) bool { return c > 0 })
}

// extremum accepts either several numbers or a single array of numbers.
func extremum(name string, args []lang.Value, better func(int) bool) (lang.Value, error) {
	values := args
	if len(args) == 1 && args[0].Type == lang.TypeRange {
		r := args[0].Range()
		if r.Len() == 0 {
			return lang.Value{}, lang.Errorf(lang.IndexError, "%s of an empty range", name)
		}
		lo, hi := lang.IntValue(r.Start), lang.IntValue(r.End-1)
		if c, _ := lang.Compare(hi, lo); better(c) {
			return hi, nil
		}
		return lo, nil
	}
	if len(args) == 1 && args[0].Type == lang.TypeArray {
		values = args[0].Elems()
	}
	if len(values) == 0 {
		return lang.Value{}, lang.Errorf(lang.IndexError, "%s of an empty array", name)
	}
	best := values[0]
	if !best.IsNumber() {
		return lang.Value{}, typeError(name, "numbers", best)
	}
	for _, v := range values[1:] {
		if !v.IsNumber() {
			return lang.Value{}, typeError(name, "numbers", v)
		}
		c, _ := lang.Compare(v, best)
		if better(c) {
			best = v
		}
	}
	return best, nil
}

func primAbs(ev *lang.Evaluator, args []lang.Value) (lang.Value, error) {
	v := args[0]
	switch v.Type {
	case lang.TypeInt:
		if v.Int() < 0 {
			return lang.IntValue(-v.Int()), nil
		}
		return v, nil
	case lang.TypeFloat:
		return lang.FloatValue(math.Abs(v.Float())), nil
	}
	return lang.Value{}, typeError("abs", "a number", v)
}

func primSqrt(ev *lang.Evaluator, args []lang.Value) (lang.Value, error) {
	v := args[0]
	if !v.IsNumber() {
		return lang.Value{}, typeError("sqrt", "a number", v)
	}
	if v.Number() < 0 {
		return lang.Value{}, lang.Errorf(lang.ArithmeticError, "sqrt of negative number %s", v)
	}
	return lang.FloatValue(math.Sqrt(v.Number())), nil
}

func primPow(ev *lang.Evaluator, args []lang.Value) (lang.Value, error) {
	base, exp := args[0], args[1]
	if !base.IsNumber() {
		return lang.Value{}, typeError("pow", "a number", base)
	}
	if !exp.IsNumber() {
		return lang.Value{}, typeError("pow", "a number", exp)
	}
	if base.Type == lang.TypeInt && exp.Type == lang.TypeInt && exp.Int() >= 0 {
		result := int64(1)
		b := base.Int()
		for n := exp.Int(); n > 0; n >>= 1 {
			if n&1 == 1 {
				result *= b
			}
			b *= b
		}
		return lang.IntValue(result), nil
	}
	return lang.FloatValue(math.Pow(base.Number(), exp.Number())), nil
}

func primMap(ev *lang.Evaluator, args []lang.Value) (lang.Value, error) {
	elems, err := sequence("map", args[0])
	if err != nil {
		return lang.Value{}, err
	}
	fn, err := callable("map", args[1])
	if err != nil {
		return lang.Value{}, err
	}
	out := make([]lang.Value, len(elems))
	for i, elem := range elems {
		val, err := ev.Apply(fn, []lang.Value{elem})
		if err != nil {
			return lang.Value{}, err
		}
		out[i] = val
	}
	return lang.ArrayValue(out), nil
}

func primFilter(ev *lang.Evaluator, args []lang.Value) (lang.Value, error) {
	elems, err := sequence("filter", args[0])
	if err != nil {
		return lang.Value{}, err
	}
	fn, err := callable("filter", args[1])
	if err != nil {
		return lang.Value{}, err
	}
	out := make([]lang.Value, 0, len(elems))
	for _, elem := range elems {
		keep, err := ev.Apply(fn, []lang.Value{elem})
		if err != nil {
			return lang.Value{}, err
		}
		if lang.IsTruthy(keep) {
			out = append(out, elem)
		}
	}
	return lang.ArrayValue(out), nil
}

func primReduce(ev *lang.Evaluator, args []lang.Value) (lang.Value, error) {
	elems, err := sequence("reduce", args[0])
	if err != nil {
		return lang.Value{}, err
	}
	fn, err := callable("reduce", args[2])
	if err != nil {
		return lang.Value{}, err
	}
	acc := args[1]
	for _, elem := range elems {
		acc, err = ev.Apply(fn, []lang.Value{acc, elem})
		if err != nil {
			return lang.Value{}, err
		}
	}
	return acc, nil
}

func primUnwrap(ev *lang.Evaluator, args []lang.Value) (lang.Value, error) {
	v := args[0]
	payload, ok, err := success("unwrap", v)
	if err != nil {
		return lang.Value{}, err
	}
	if !ok {
		return lang.Value{}, lang.Errorf(lang.PanicError, "called unwrap on %s", v)
	}
	return payload, nil
}

func primUnwrapOr(ev *lang.Evaluator, args []lang.Value) (lang.Value, error) {
	payload, ok, err := success("unwrap_or", args[0])
	if err != nil {
		return lang.Value{}, err
	}
	if !ok {
		return args[1], nil
	}
	return payload, nil
}

func primExpect(ev *lang.Evaluator, args []lang.Value) (lang.Value, error) {
	if args[1].Type != lang.TypeString {
		return lang.Value{}, typeError("expect", "a string message", args[1])
	}
	payload, ok, err := success("expect", args[0])
	if err != nil {
		return lang.Value{}, err
	}
	if !ok {
		return lang.Value{}, lang.Errorf(lang.PanicError, "%s", args[1].Str())
	}
	return payload, nil
}

// success unpacks Result::Ok and Option::Some. ok is false for Err and None.
func success(name string, v lang.Value) (lang.Value, bool, error) {
	e := v.Enum()
	if e == nil || (e.Def.Name != "Result" && e.Def.Name != "Option") {
		return lang.Value{}, false, typeError(name, "Result or Option", v)
	}
	switch e.VariantName() {
	case "Ok", "Some":
		return e.Payload, true, nil
	}
	return lang.Value{}, false, nil
}

func variantPredicate(name, enum, variant string) lang.Primitive {
	return func(ev *lang.Evaluator, args []lang.Value) (lang.Value, error) {
		e := args[0].Enum()
		if e == nil || e.Def.Name != enum {
			return lang.Value{}, typeError(name, enum, args[0])
		}
		return lang.BoolValue(e.VariantName() == variant), nil
	}
}

func primGPUSum(ev *lang.Evaluator, args []lang.Value) (lang.Value, error) {
	nums, err := numbers("gpu_sum", args[0])
	if err != nil {
		return lang.Value{}, err
	}
	return lang.FloatValue(sum(nums)), nil
}

func primGPUProduct(ev *lang.Evaluator, args []lang.Value) (lang.Value, error) {
	nums, err := numbers("gpu_product", args[0])
	if err != nil {
		return lang.Value{}, err
	}
	product := 1.0
	for _, n := range nums {
		product *= n
	}
	return lang.FloatValue(product), nil
}

func primGPUMean(ev *lang.Evaluator, args []lang.Value) (lang.Value, error) {
	nums, err := numbers("gpu_mean", args[0])
	if err != nil {
		return lang.Value{}, err
	}
	if len(nums) == 0 {
		return lang.Value{}, lang.Errorf(lang.ArithmeticError, "gpu_mean of an empty array")
	}
	return lang.FloatValue(sum(nums) / float64(len(nums))), nil
}

// primParallelSum adds the array in batch_size chunks, then adds the
// partial sums.
func primParallelSum(ev *lang.Evaluator, args []lang.Value) (lang.Value, error) {
	nums, err := numbers("parallel_sum", args[0])
	if err != nil {
		return lang.Value{}, err
	}
	chunk := ev.BatchSize
	if chunk <= 0 {
		chunk = lang.DefaultBatchSize
	}
	total := 0.0
	for start := 0; start < len(nums); start += chunk {
		end := start + chunk
		if end > len(nums) {
			end = len(nums)
		}
		total += sum(nums[start:end])
	}
	return lang.FloatValue(total), nil
}

func primBatchSize(ev *lang.Evaluator, args []lang.Value) (lang.Value, error) {
	return lang.IntValue(int64(ev.BatchSize)), nil
}

// primReadFile returns Result::Ok(contents) or Result::Err(message).
func primReadFile(ev *lang.Evaluator, args []lang.Value) (lang.Value, error) {
	if args[0].Type != lang.TypeString {
		return lang.Value{}, typeError("read_file", "a string path", args[0])
	}
	data, err := os.ReadFile(args[0].Str())
	if err != nil {
		return ev.Context().NewVariant("Result", "Err", lang.StringValue(err.Error()))
	}
	return ev.Context().NewVariant("Result", "Ok", lang.StringValue(string(data)))
}

func primWriteFile(ev *lang.Evaluator, args []lang.Value) (lang.Value, error) {
	if args[0].Type != lang.TypeString {
		return lang.Value{}, typeError("write_file", "a string path", args[0])
	}
	if args[1].Type != lang.TypeString {
		return lang.Value{}, typeError("write_file", "string contents", args[1])
	}
	if err := os.WriteFile(args[0].Str(), []byte(args[1].Str()), 0o644); err != nil {
		return ev.Context().NewVariant("Result", "Err", lang.StringValue(err.Error()))
	}
	return ev.Context().NewVariant("Result", "Ok", lang.Unit)
}

func typeError(name, expected string, got lang.Value) error {
	return lang.Errorf(lang.TypeError, "%s expects %s, got %s", name, expected, got.TypeName())
}

// maxMaterialized bounds the number of elements a range may expand to when
// a builtin needs an array.
const maxMaterialized = 1 << 24

// sequence returns the elements of an array, or materializes a range.
func sequence(name string, v lang.Value) ([]lang.Value, error) {
	switch v.Type {
	case lang.TypeArray:
		return v.Elems(), nil
	case lang.TypeRange:
		r := v.Range()
		if r.Len() > maxMaterialized {
			return nil, lang.Errorf(lang.IndexError, "%s: range of %d elements is too large to expand (limit %d)", name, r.Len(), maxMaterialized)
		}
		out := make([]lang.Value, 0, r.Len())
		for i := int64(0); i < r.Len(); i++ {
			out = append(out, lang.IntValue(r.Start+i))
		}
		return out, nil
	}
	return nil, typeError(name, "an array", v)
}

func newArray(elems []lang.Value) lang.Value {
	out := make([]lang.Value, len(elems))
	copy(out, elems)
	return lang.ArrayValue(out)
}

// bounds clamps start and end to [0, length] for slice.
func bounds(name string, startVal, endVal lang.Value, length int) (int, int, error) {
	if startVal.Type != lang.TypeInt {
		return 0, 0, typeError(name, "int indices", startVal)
	}
	if endVal.Type != lang.TypeInt {
		return 0, 0, typeError(name, "int indices", endVal)
	}
	clamp := func(i int64) int {
		switch {
		case i < 0:
			return 0
		case i > int64(length):
			return length
		}
		return int(i)
	}
	start, end := clamp(startVal.Int()), clamp(endVal.Int())
	if end < start {
		end = start
	}
	return start, end, nil
}

func callable(name string, v lang.Value) (lang.Value, error) {
	if !v.IsCallable() {
		return lang.Value{}, typeError(name, "a function", v)
	}
	return v, nil
}

func numbers(name string, v lang.Value) ([]float64, error) {
	elems, err := sequence(name, v)
	if err != nil {
		return nil, err
	}
	out := make([]float64, len(elems))
	for i, elem := range elems {
		if !elem.IsNumber() {
			return nil, lang.Errorf(lang.TypeError, "%s expects numeric elements, got %s at index %d", name, elem.TypeName(), i)
		}
		out[i] = elem.Number()
	}
	return out, nil
}

func sum(nums []float64) float64 {
	total := 0.0
	for _, n := range nums {
		total += n
	}
	return total
}

// message strips the kind prefix from a lang error.
func message(err error) string {
	if lerr, ok := err.(*lang.Error); ok {
		return lerr.Msg
	}
	return err.Error()
}
