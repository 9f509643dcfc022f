// Package mockloader is the deterministic, in-memory reference
// implementation of internal/loader.Implementation: no interpreter, no
// native library, just a tiny expression language good enough to define
// functions like "mul(left, right) = left * right" and call them through
// the ordinary discovery/call pipeline. It exists to exercise the loader
// manager's initialization-order and affinity machinery without paying
// for a real embedded engine (SPEC_FULL §4.5's "mock" tag).
//
// Grounded on the teacher's built-in plugin kinds in
// internal/plugins/registry.go (a handful of compiled-in, always-available
// plugin implementations registered by Kind rather than discovered from a
// shared object) — mockloader is the loader-manager equivalent of a
// built-in plugin.
package mockloader

import (
	"strconv"
	"strings"
	"sync"

	"github.com/gometacall/gometacall/internal/apperr"
	"github.com/gometacall/gometacall/internal/loader"
	"github.com/gometacall/gometacall/internal/reflect"
)

// Loader implements loader.Implementation. Safe for concurrent use; it
// declares loader.FreeThreaded affinity since its evaluator holds no
// shared mutable engine state across calls.
type Loader struct {
	mu       sync.Mutex
	initOnce bool
	paths    []string
}

// New creates an uninitialized mock loader instance, the Factory the
// loader manager's RegisterFactory expects.
func New() loader.Implementation { return &Loader{} }

func (l *Loader) Initialize(config *reflect.Value) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.initOnce = true
	return nil
}

func (l *Loader) ExecutionPath(path string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.paths = append(l.paths, path)
	return nil
}

// state is what LoadFromFile/LoadFromMemory/LoadFromPackage hand back for
// Discover to turn into a Context: the parsed function definitions.
type state struct {
	name  string
	decls []decl
}

type decl struct {
	name   string
	params []string
	expr   expr
}

func (l *Loader) LoadFromMemory(name, buffer string) (interface{}, error) {
	decls, err := parse(buffer)
	if err != nil {
		return nil, err
	}
	return &state{name: name, decls: decls}, nil
}

func (l *Loader) LoadFromFile(paths []string) (interface{}, error) {
	if len(paths) == 0 {
		return nil, apperr.Missing("paths")
	}
	// The reference loader does no file I/O: each path is taken as a line
	// of inline source, the lines are joined and parsed as one script
	// named after paths[0], so tests can exercise the file-loading entry
	// point without a real filesystem dependency.
	joined := strings.Join(paths, "\n")
	decls, err := parse(joined)
	if err != nil {
		return nil, err
	}
	return &state{name: paths[0], decls: decls}, nil
}

func (l *Loader) LoadFromPackage(path string) (interface{}, error) {
	return nil, apperr.New(apperr.LoadFailed, "mockloader: package loading is not supported by the reference loader")
}

func (l *Loader) Clear(s interface{}) error {
	return nil
}

func (l *Loader) Discover(s interface{}) (*reflect.Context, error) {
	st, ok := s.(*state)
	if !ok {
		return nil, apperr.New(apperr.BadArgument, "mockloader: Discover called with foreign state")
	}
	ctx := reflect.NewContext(st.name)
	for _, d := range st.decls {
		d := d
		sig := reflect.NewSignature(len(d.params))
		for i, p := range d.params {
			sig.Set(i, p, nil)
		}
		sig.SetReturn(reflect.Primitive(reflect.Long))

		fn := reflect.NewFunction(d.name, sig, func(args []*reflect.Value) (*reflect.Value, error) {
			if len(args) != len(d.params) {
				return nil, apperr.Arity(d.name, len(d.params), len(args))
			}
			env := make(map[string]int64, len(d.params))
			for i, p := range d.params {
				env[p] = toInt64(args[i])
			}
			v, err := d.expr.eval(env)
			if err != nil {
				return nil, err
			}
			return reflect.ValueLong(v), nil
		})
		ctx.Scope().Define(d.name, reflect.ValueFunction(fn))
	}
	return ctx, nil
}

func (l *Loader) Destroy() error {
	return nil
}

func (l *Loader) Affinity() loader.Affinity { return loader.FreeThreaded }

func toInt64(v *reflect.Value) int64 {
	switch {
	case v.IsLong():
		return v.Long()
	case v.IsInt():
		return int64(v.Int())
	case v.IsShort():
		return int64(v.Short())
	case v.IsChar():
		return int64(v.Char())
	default:
		return 0
	}
}

// --- a tiny expression language -------------------------------------------
//
// One declaration per non-blank line: `name(p1, p2, ...) = expr`, where
// expr is a left-to-right sequence of identifiers/integer literals
// combined with + - * /. No precedence climbing, no parentheses: this is
// deliberately the simplest possible thing that lets scenario 2's
// `mul(left, right)` and similar fixtures be expressed directly in Go test
// source without embedding a real parser generator.

type expr interface {
	eval(env map[string]int64) (int64, error)
}

type literal int64

func (e literal) eval(map[string]int64) (int64, error) { return int64(e), nil }

type ident string

func (e ident) eval(env map[string]int64) (int64, error) {
	v, ok := env[string(e)]
	if !ok {
		return 0, apperr.Missing(string(e))
	}
	return v, nil
}

type binop struct {
	op    byte
	left  expr
	right expr
}

func (e binop) eval(env map[string]int64) (int64, error) {
	l, err := e.left.eval(env)
	if err != nil {
		return 0, err
	}
	r, err := e.right.eval(env)
	if err != nil {
		return 0, err
	}
	switch e.op {
	case '+':
		return l + r, nil
	case '-':
		return l - r, nil
	case '*':
		return l * r, nil
	case '/':
		if r == 0 {
			return 0, apperr.New(apperr.BackEndError, "mockloader: division by zero")
		}
		return l / r, nil
	default:
		return 0, apperr.New(apperr.BadArgument, "mockloader: unknown operator %q", string(e.op))
	}
}

func parse(src string) ([]decl, error) {
	var out []decl
	for _, line := range strings.Split(src, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		d, err := parseLine(line)
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, nil
}

func parseLine(line string) (decl, error) {
	open := strings.IndexByte(line, '(')
	shut := strings.IndexByte(line, ')')
	eq := strings.IndexByte(line, '=')
	if open < 0 || shut < open || eq < shut {
		return decl{}, apperr.New(apperr.BadArgument, "mockloader: malformed declaration %q", line)
	}
	name := strings.TrimSpace(line[:open])
	paramList := strings.TrimSpace(line[open+1 : shut])
	var params []string
	if paramList != "" {
		for _, p := range strings.Split(paramList, ",") {
			params = append(params, strings.TrimSpace(p))
		}
	}
	body := strings.TrimSpace(line[eq+1:])
	e, err := parseExpr(body)
	if err != nil {
		return decl{}, err
	}
	return decl{name: name, params: params, expr: e}, nil
}

func parseExpr(body string) (expr, error) {
	tokens := tokenize(body)
	if len(tokens) == 0 {
		return nil, apperr.New(apperr.BadArgument, "mockloader: empty expression")
	}
	cur, err := atom(tokens[0])
	if err != nil {
		return nil, err
	}
	i := 1
	for i < len(tokens) {
		op := tokens[i]
		if len(op) != 1 || strings.IndexByte("+-*/", op[0]) < 0 {
			return nil, apperr.New(apperr.BadArgument, "mockloader: expected operator, got %q", op)
		}
		if i+1 >= len(tokens) {
			return nil, apperr.New(apperr.BadArgument, "mockloader: dangling operator %q", op)
		}
		rhs, err := atom(tokens[i+1])
		if err != nil {
			return nil, err
		}
		cur = binop{op: op[0], left: cur, right: rhs}
		i += 2
	}
	return cur, nil
}

func atom(tok string) (expr, error) {
	if n, err := strconv.ParseInt(tok, 10, 64); err == nil {
		return literal(n), nil
	}
	if tok == "" {
		return nil, apperr.New(apperr.BadArgument, "mockloader: empty token")
	}
	return ident(tok), nil
}

func tokenize(body string) []string {
	var out []string
	var cur strings.Builder
	flush := func() {
		if cur.Len() > 0 {
			out = append(out, cur.String())
			cur.Reset()
		}
	}
	for _, r := range body {
		switch {
		case r == ' ' || r == '\t':
			flush()
		case strings.ContainsRune("+-*/", r):
			flush()
			out = append(out, string(r))
		default:
			cur.WriteRune(r)
		}
	}
	flush()
	return out
}
