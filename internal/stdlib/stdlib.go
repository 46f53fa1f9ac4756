// Package stdlib registers the native modules spec section 1 lists as
// out-of-core standard-library collaborators and section 6 describes only
// by registration-record shape: math, os, io, array, reflect, base64,
// json, struct and process. (`_hash`, `_date`, `_db` and `_socket` have
// their own packages under internal/modules because they wrap a
// third-party library rather than pure stdlib; see DESIGN.md.)
package stdlib

import (
	"vellum/internal/module"
)

func init() {
	registerMath()
	registerOS()
	registerIO()
	registerArray()
	registerReflect()
	registerBase64()
	registerJSON()
	registerStruct()
	registerProcess()
}

func reg(name string, fns ...module.FuncDesc) {
	module.Register(module.Registration{Name: name, Functions: fns})
}
