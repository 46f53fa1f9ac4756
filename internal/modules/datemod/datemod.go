// Package datemod implements the native `_date` module: current time,
// strftime-style formatting via ncruces/go-strftime, and humanized relative
// durations via dustin/go-humanize -- an out-of-core collaborator per spec
// section 1.
package datemod

import (
	"time"

	"github.com/dustin/go-humanize"
	"github.com/ncruces/go-strftime"

	"vellum/internal/module"
	"vellum/internal/value"
	"vellum/internal/vm"
)

func init() {
	module.Register(module.Registration{
		Name: "_date",
		Functions: []module.FuncDesc{
			{Name: "now", Fn: dateNow},
			{Name: "strftime", Fn: dateStrftime},
			{Name: "ago", Fn: dateAgo},
		},
	})
}

func asCaller(c interface{}) vm.Caller { return c.(vm.Caller) }

func dateNow(caller interface{}, args []value.Value) (value.Value, bool) {
	return value.Number(float64(time.Now().Unix())), true
}

func dateStrftime(caller interface{}, args []value.Value) (value.Value, bool) {
	c := asCaller(caller)
	if len(args) != 2 {
		return value.Nil, c.Throw("Exception", "date.strftime(unixSeconds, format) expects 2 arguments")
	}
	sec, ok := numericArg(args[0])
	if !ok {
		return value.Nil, c.Throw("Exception", "date.strftime: first argument must be a number")
	}
	t := time.Unix(int64(sec), 0).UTC()
	out, err := strftime.Format(value.ToString(args[1]), t)
	if err != nil {
		return value.Nil, c.Throw("Exception", "date.strftime: "+err.Error())
	}
	return c.GC().InternStringValue(out), true
}

func dateAgo(caller interface{}, args []value.Value) (value.Value, bool) {
	c := asCaller(caller)
	if len(args) != 1 {
		return value.Nil, c.Throw("Exception", "date.ago(unixSeconds) expects 1 argument")
	}
	sec, ok := numericArg(args[0])
	if !ok {
		return value.Nil, c.Throw("Exception", "date.ago: argument must be a number")
	}
	return c.GC().InternStringValue(humanize.Time(time.Unix(int64(sec), 0))), true
}

func numericArg(v value.Value) (float64, bool) {
	if v.IsNumber() {
		return v.AsNumber(), true
	}
	return 0, false
}
