// Package cryptomod implements the native `_hash` module: SHA-256 digests
// via crypto/sha256 and password hashing via golang.org/x/crypto/bcrypt,
// an out-of-core collaborator per spec section 1.
package cryptomod

import (
	"crypto/sha256"
	"encoding/hex"

	"golang.org/x/crypto/bcrypt"

	"vellum/internal/module"
	"vellum/internal/value"
	"vellum/internal/vm"
)

func init() {
	module.Register(module.Registration{
		Name: "_hash",
		Functions: []module.FuncDesc{
			{Name: "sha256", Fn: hashSHA256},
			{Name: "bcrypt", Fn: hashBcrypt},
			{Name: "bcrypt_verify", Fn: hashBcryptVerify},
		},
	})
}

func asCaller(c interface{}) vm.Caller { return c.(vm.Caller) }

func hashSHA256(caller interface{}, args []value.Value) (value.Value, bool) {
	c := asCaller(caller)
	if len(args) != 1 {
		return value.Nil, c.Throw("Exception", "hash.sha256(s) expects 1 argument")
	}
	sum := sha256.Sum256([]byte(value.ToString(args[0])))
	return c.GC().InternStringValue(hex.EncodeToString(sum[:])), true
}

func hashBcrypt(caller interface{}, args []value.Value) (value.Value, bool) {
	c := asCaller(caller)
	if len(args) != 1 {
		return value.Nil, c.Throw("Exception", "hash.bcrypt(s) expects 1 argument")
	}
	out, err := bcrypt.GenerateFromPassword([]byte(value.ToString(args[0])), bcrypt.DefaultCost)
	if err != nil {
		return value.Nil, c.Throw("Exception", "hash.bcrypt: "+err.Error())
	}
	return c.GC().InternStringValue(string(out)), true
}

func hashBcryptVerify(caller interface{}, args []value.Value) (value.Value, bool) {
	c := asCaller(caller)
	if len(args) != 2 {
		return value.Nil, c.Throw("Exception", "hash.bcrypt_verify(hash, s) expects 2 arguments")
	}
	err := bcrypt.CompareHashAndPassword([]byte(value.ToString(args[0])), []byte(value.ToString(args[1])))
	return value.Bool(err == nil), true
}
