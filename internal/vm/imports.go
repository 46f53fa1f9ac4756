package vm

import (
	"path/filepath"

	"vellum/internal/compiler"
	"vellum/internal/module"
	"vellum/internal/value"
)

// loadNativeModule materializes an ObjModule from a registered Go package
// (spec section 6, "Native module registration record shape"): fields and
// functions become plain Values in the module's table, classes are
// registered as-is so a native module can export exception subtypes.
func (vm *VM) loadNativeModule(path string) (*value.ObjModule, error) {
	return vm.loader.Once(path, func() (*value.ObjModule, error) {
		reg, ok := module.Lookup(path)
		if !ok {
			return nil, &module.NotFoundError{Path: path}
		}
		mod := value.NewModule(reg.Name, path)
		mod.Imported = true
		for _, f := range reg.Fields {
			mod.Values.Set(vm.gc.InternStringValue(f.Name), f.Value)
		}
		for _, fn := range reg.Functions {
			n := value.NewNative(fn.Name, value.NativeFunction, fn.Fn)
			vm.gc.Track(n)
			mod.Values.Set(vm.gc.InternStringValue(fn.Name), value.FromObj(n))
		}
		for _, cd := range reg.Classes {
			vm.gc.Track(cd.Class)
			mod.Values.Set(vm.gc.InternStringValue(cd.Name), value.FromObj(cd.Class))
		}
		if reg.Preloader != nil {
			n := value.NewNative(reg.Name, value.NativeFunction, reg.Preloader)
			vm.gc.Track(n)
			mod.Preloader = n
		}
		if reg.Unloader != nil {
			n := value.NewNative(reg.Name, value.NativeFunction, reg.Unloader)
			vm.gc.Track(n)
			mod.Unloader = n
		}
		vm.gc.Track(mod)
		if mod.Preloader != nil {
			mod.Preloader.Fn(vm, nil)
		}
		return mod, nil
	})
}

// loadScriptModule compiles and runs a `.b` source file's top-level
// function exactly once, caching the resulting module by resolved path
// (spec section 4.4: "Modules are compiled independently into their own
// functions").
func (vm *VM) loadScriptModule(path string) (*value.ObjModule, error) {
	absPath, source, err := vm.loader.Resolve(path)
	if err != nil {
		return nil, err
	}
	if cached, ok := vm.loader.Cached(absPath); ok {
		return cached, nil
	}
	return vm.loader.Once(absPath, func() (*value.ObjModule, error) {
		mod := value.NewModule(lastSegment(path), absPath)
		mod.Imported = true
		vm.gc.Track(mod)

		prevDir := filepath.Dir(absPath)
		vm.loader.SetImportingDir(prevDir)

		fn, cerr := compiler.Compile(string(source), absPath, mod, vm.gc)
		if cerr != nil {
			return nil, cerr
		}
		closure := value.NewClosure(fn)
		vm.gc.Track(closure)

		if !vm.runToCompletion(closure) {
			return nil, &errors_moduleRunFailed{path: path}
		}
		return mod, nil
	})
}

type errors_moduleRunFailed struct{ path string }

func (e *errors_moduleRunFailed) Error() string { return "failed to import module: " + e.path }

func lastSegment(path string) string {
	seg := path
	for i := len(path) - 1; i >= 0; i-- {
		if path[i] == '.' {
			seg = path[i+1:]
			break
		}
	}
	return seg
}

// runToCompletion pushes closure as a fresh top-level call and drives the
// dispatch loop until its frame returns, used both for the entry script and
// for every imported module (spec section 4.4: "VM wraps the top-level
// ObjFunction in an ObjClosure, pushes it on the call stack, and
// interprets").
func (vm *VM) runToCompletion(closure *value.ObjClosure) bool {
	targetDepth := vm.frameCount
	vm.push(value.FromObj(closure))
	if !vm.callClosure(closure, 0) {
		return false
	}
	return vm.run(targetDepth)
}

// execCallImport implements OP_CALL_IMPORT: load (or fetch the cached) the
// script module at path and push it whole, for the importer's following
// OP_DEFINE_GLOBAL to bind.
func (vm *VM) execCallImport(path string) bool {
	mod, err := vm.loadScriptModule(path)
	if err != nil {
		vm.Throw("Exception", err.Error())
		return false
	}
	vm.push(value.FromObj(mod))
	return true
}

func (vm *VM) execNativeModule(path string) bool {
	mod, err := vm.loadNativeModule(path)
	if err != nil {
		vm.Throw("Exception", err.Error())
		return false
	}
	vm.push(value.FromObj(mod))
	return true
}

func (vm *VM) execSelectImport(path string, name value.Value) bool {
	mod, err := vm.loadScriptModule(path)
	if err != nil {
		vm.Throw("Exception", err.Error())
		return false
	}
	v, ok := mod.Values.Get(name)
	if !ok {
		vm.Throw("Exception", "module '"+mod.Name+"' has no export '"+value.ToString(name)+"'")
		return false
	}
	vm.push(v)
	return true
}

func (vm *VM) execSelectNativeImport(path string, name value.Value) bool {
	mod, err := vm.loadNativeModule(path)
	if err != nil {
		vm.Throw("Exception", err.Error())
		return false
	}
	v, ok := mod.Values.Get(name)
	if !ok {
		vm.Throw("Exception", "module '"+mod.Name+"' has no export '"+value.ToString(name)+"'")
		return false
	}
	vm.push(v)
	return true
}

// execImportAll/execImportAllNative implement `import * path`: every
// exported binding is merged directly into the importer's own module
// globals, with no trailing OP_DEFINE_GLOBAL (the compiler emits none for
// this form).
func (vm *VM) execImportAll(path string) bool {
	mod, err := vm.loadScriptModule(path)
	if err != nil {
		vm.Throw("Exception", err.Error())
		return false
	}
	dest := vm.frameGlobals()
	mod.Values.Each(func(k, v value.Value) { dest.Set(k, v) })
	return true
}

func (vm *VM) execImportAllNative(path string) bool {
	mod, err := vm.loadNativeModule(path)
	if err != nil {
		vm.Throw("Exception", err.Error())
		return false
	}
	dest := vm.frameGlobals()
	mod.Values.Each(func(k, v value.Value) { dest.Set(k, v) })
	return true
}

// execEjectImport/execEjectNativeImport implement OP_EJECT_IMPORT/
// OP_EJECT_NATIVE_IMPORT. The current grammar never emits them, but the
// opcode set is part of the documented encoding (spec section 6), so they
// still do the minimal real thing: invoke the module's Unloader, if any.
// The module stays in the loader's cache, so a later import reuses it.
func (vm *VM) execEjectImport(path string) bool {
	if mod, ok := vm.loader.Cached(path); ok && mod.Unloader != nil {
		mod.Unloader.Fn(vm, nil)
	}
	return true
}

func (vm *VM) execEjectNativeImport(path string) bool {
	return vm.execEjectImport(path)
}
