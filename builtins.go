package exin

// builtinFunc is the signature every built-in function fulfils.
type builtinFunc func(pos Pos, args []*Value) (*Value, error)

// builtinArity records each built-in's required argument count, consulted
// by the parser (to tag call nodes builtin=true) and the checker (to
// validate arity) by name only, case-sensitive and exact.
var builtinArity = map[string]int{
	"type": 1,
	"chr":  1,
	"ord":  1,
}

var builtinFuncs = map[string]builtinFunc{
	"type": builtinType,
	"chr":  builtinChr,
	"ord":  builtinOrd,
}

func isBuiltinName(name string) bool {
	_, ok := builtinArity[name]
	return ok
}

func callBuiltin(pos Pos, name string, args []*Value) (*Value, error) {
	fn, ok := builtinFuncs[name]
	if !ok {
		return nil, raise(DesignError, pos, "unknown builtin %q reached evaluation", name)
	}
	return fn(pos, args)
}

func builtinType(pos Pos, args []*Value) (*Value, error) {
	return NewStr(args[0].TypeName()), nil
}

func builtinChr(pos Pos, args []*Value) (*Value, error) {
	if !args[0].IsNumber() {
		return nil, raise(TypeError, pos, "chr() requires a numeric argument")
	}
	return NewStr(string([]byte{byte(args[0].Int64() & 0xFF)})), nil
}

func builtinOrd(pos Pos, args []*Value) (*Value, error) {
	if !args[0].IsStr() {
		return nil, raise(TypeError, pos, "ord() requires a str argument")
	}
	s := args[0].Str()
	if len(s) == 0 {
		return nil, raise(ValueError, pos, "ord() of empty string")
	}
	return NewInt(int64(s[0])), nil
}
