package stdlib

import (
	"os"
	"os/exec"

	"vellum/internal/module"
	"vellum/internal/value"
	"vellum/internal/vm"
)

// registerProcess exposes the process/shared-memory collaborator spec
// section 1 scopes out of the core: spawning a child process and reading
// its output, plus the current process id. Shared memory itself has no
// portable stdlib primitive, so it is represented only via the pid that a
// caller can use to coordinate through its own external channel.
func registerProcess() {
	reg("_process",
		module.FuncDesc{Name: "pid", Fn: processPid},
		module.FuncDesc{Name: "run", Fn: processRun},
	)
}

func processPid(caller interface{}, args []value.Value) (value.Value, bool) {
	if len(args) != 0 {
		c := caller.(vm.Caller)
		return value.Nil, c.Throw("Exception", "process.pid() takes no arguments")
	}
	return value.Number(float64(os.Getpid())), true
}

func processRun(caller interface{}, args []value.Value) (value.Value, bool) {
	c := caller.(vm.Caller)
	if len(args) < 1 || !args[0].IsObjType(value.TString) {
		return value.Nil, c.Throw("Exception", "process.run(cmd, ...args) expects a command name")
	}
	name := value.ToString(args[0])
	cmdArgs := make([]string, len(args)-1)
	for i, a := range args[1:] {
		cmdArgs[i] = value.ToString(a)
	}
	out, err := exec.Command(name, cmdArgs...).CombinedOutput()
	if err != nil {
		return value.Nil, c.Throw("Exception", "process.run: "+err.Error())
	}
	return c.GC().InternStringValue(string(out)), true
}
