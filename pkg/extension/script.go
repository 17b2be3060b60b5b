package extension

import (
	"fmt"
	"reflect"
)

// scriptExtension adapts an interpreted source file. The file declares Name (a string constant,
// variable or func() string) and optionally Version, Description, Configure, Initialize and Destroy.
type scriptExtension struct {
	name        string
	version     string
	description string
	configure   reflect.Value
	initialize  reflect.Value
	destroy     reflect.Value
}

func newScriptExtension(m *module, manifest *Manifest) (*scriptExtension, error) {
	s := &scriptExtension{}

	var err error
	if s.name, err = lookupString(m, "Name"); err != nil {
		return nil, err
	}
	if s.version, err = lookupString(m, "Version"); err != nil {
		return nil, err
	}
	if s.description, err = lookupString(m, "Description"); err != nil {
		return nil, err
	}
	if manifest != nil {
		if s.name == "" {
			s.name = manifest.Name
		}
		if s.version == "" {
			s.version = manifest.Version
		}
		if s.description == "" {
			s.description = manifest.Description
		}
	}
	if s.name == "" {
		return nil, fmt.Errorf("%w: %s declares no Name", ErrInvalidExtension, m.path)
	}

	s.configure = lookup(m, "Configure")
	s.initialize = lookup(m, "Initialize")
	s.destroy = lookup(m, "Destroy")
	for symbol, fn := range map[string]reflect.Value{"Configure": s.configure, "Initialize": s.initialize, "Destroy": s.destroy} {
		if fn.IsValid() && fn.Kind() != reflect.Func {
			return nil, fmt.Errorf("%w: %s: %s is not a function", ErrBadSignature, m.path, symbol)
		}
	}
	return s, nil
}

func (s *scriptExtension) Name() string        { return s.name }
func (s *scriptExtension) Version() string     { return s.version }
func (s *scriptExtension) Description() string { return s.description }

func (s *scriptExtension) Configure(settings map[string]interface{}) error {
	return call(s.configure, "Configure", reflect.ValueOf(settings))
}

func (s *scriptExtension) Initialize(h *Handle) error {
	return call(s.initialize, "Initialize", reflect.ValueOf(h))
}

func (s *scriptExtension) Destroy() error {
	return call(s.destroy, "Destroy")
}

// lookup returns the value of symbol, or an invalid value when the source does not declare it.
func lookup(m *module, symbol string) reflect.Value {
	v, err := m.interp.Eval(symbol)
	if err != nil {
		return reflect.Value{}
	}
	return v
}

func lookupString(m *module, symbol string) (string, error) {
	v := lookup(m, symbol)
	if !v.IsValid() {
		return "", nil
	}
	switch v.Kind() {
	case reflect.String:
		return v.String(), nil
	case reflect.Func:
		if v.Type().NumIn() != 0 || v.Type().NumOut() != 1 || v.Type().Out(0).Kind() != reflect.String {
			return "", fmt.Errorf("%w: %s must be func() string", ErrBadSignature, symbol)
		}
		var out string
		if err := guard(symbol, func() { out = v.Call(nil)[0].String() }); err != nil {
			return "", err
		}
		return out, nil
	default:
		return "", fmt.Errorf("%w: %s must be a string or func() string", ErrBadSignature, symbol)
	}
}

// call invokes an optional script function. Missing functions are a no-op. The function may
// return nothing or a single error.
func call(fn reflect.Value, symbol string, args ...reflect.Value) error {
	if !fn.IsValid() {
		return nil
	}
	t := fn.Type()
	if t.NumIn() != len(args) || t.NumOut() > 1 {
		return fmt.Errorf("%w: %s", ErrBadSignature, symbol)
	}
	for i, arg := range args {
		if !arg.Type().AssignableTo(t.In(i)) {
			return fmt.Errorf("%w: %s argument %d must be %s", ErrBadSignature, symbol, i, arg.Type())
		}
	}

	var results []reflect.Value
	if err := guard(symbol, func() { results = fn.Call(args) }); err != nil {
		return err
	}
	if len(results) == 0 {
		return nil
	}
	out := results[0]
	if out.Kind() == reflect.Interface && out.IsNil() {
		return nil
	}
	err, ok := out.Interface().(error)
	if !ok {
		return fmt.Errorf("%w: %s must return error", ErrBadSignature, symbol)
	}
	return err
}

func guard(symbol string, fn func()) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %s: %v", ErrScriptPanic, symbol, r)
		}
	}()
	fn()
	return nil
}
