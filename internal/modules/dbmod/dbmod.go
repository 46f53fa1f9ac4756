// Package dbmod implements the native `_db` module: a thin wrapper over
// database/sql that opens connections through the driver named by the
// first argument of db.open (see driverName), exposed to script code as a
// Pointer-wrapped *sql.DB (spec
// section 1's out-of-scope "standard-library modules", registered through
// the native-module registration record shape of spec section 6).
package dbmod

import (
	"database/sql"

	_ "github.com/denisenkom/go-mssqldb"
	_ "github.com/go-sql-driver/mysql"
	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"

	"vellum/internal/module"
	"vellum/internal/value"
	"vellum/internal/vm"
)

func init() {
	module.Register(module.Registration{
		Name: "_db",
		Functions: []module.FuncDesc{
			{Name: "open", Fn: dbOpen},
			{Name: "query", Fn: dbQuery},
			{Name: "exec", Fn: dbExec},
			{Name: "close", Fn: dbClose},
		},
	})
}

func asCaller(c interface{}) vm.Caller { return c.(vm.Caller) }

// driverName maps the friendly driver names script code uses to the Go
// driver registered by each blank import above.
func driverName(name string) (string, bool) {
	switch name {
	case "mysql":
		return "mysql", true
	case "postgres", "postgresql":
		return "postgres", true
	case "mssql", "sqlserver":
		return "sqlserver", true
	case "sqlite", "sqlite3":
		return "sqlite", true
	}
	return "", false
}

func dbOpen(caller interface{}, args []value.Value) (value.Value, bool) {
	c := asCaller(caller)
	if len(args) != 2 {
		return value.Nil, c.Throw("Exception", "db.open(driver, dsn) expects 2 arguments")
	}
	driver, ok := driverName(value.ToString(args[0]))
	if !ok {
		return value.Nil, c.Throw("Exception", "unknown database driver '"+value.ToString(args[0])+"'")
	}
	dsn := value.ToString(args[1])

	db, err := sql.Open(driver, dsn)
	if err != nil {
		return value.Nil, c.Throw("Exception", "db.open: "+err.Error())
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return value.Nil, c.Throw("Exception", "db.open: "+err.Error())
	}

	ptr := value.NewPointer(db, "db:"+driver, func(p interface{}) { p.(*sql.DB).Close() })
	c.GC().Track(ptr)
	return value.FromObj(ptr), true
}

func handleOf(c vm.Caller, v value.Value) (*sql.DB, bool) {
	if !v.IsObjType(value.TPointer) {
		c.Throw("Exception", "expected a database handle")
		return nil, false
	}
	ptr := v.AsObj().(*value.ObjPointer)
	db, ok := ptr.Pointer.(*sql.DB)
	if !ok {
		c.Throw("Exception", "expected a database handle")
		return nil, false
	}
	return db, true
}

func dbQuery(caller interface{}, args []value.Value) (value.Value, bool) {
	c := asCaller(caller)
	if len(args) < 2 {
		return value.Nil, c.Throw("Exception", "db.query(handle, sql, ...) expects at least 2 arguments")
	}
	db, ok := handleOf(c, args[0])
	if !ok {
		return value.Nil, false
	}

	params := make([]interface{}, len(args)-2)
	for i, a := range args[2:] {
		params[i] = toGo(a)
	}

	rows, err := db.Query(value.ToString(args[1]), params...)
	if err != nil {
		return value.Nil, c.Throw("Exception", "db.query: "+err.Error())
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return value.Nil, c.Throw("Exception", "db.query: "+err.Error())
	}

	var results []value.Value
	for rows.Next() {
		scanTargets := make([]interface{}, len(cols))
		scanValues := make([]interface{}, len(cols))
		for i := range scanValues {
			scanTargets[i] = &scanValues[i]
		}
		if err := rows.Scan(scanTargets...); err != nil {
			return value.Nil, c.Throw("Exception", "db.query: "+err.Error())
		}
		row := c.GC().NewDict()
		for i, col := range cols {
			row.Set(c.GC().InternStringValue(col), fromGo(c, scanValues[i]))
		}
		results = append(results, value.FromObj(row))
	}
	return value.FromObj(c.GC().NewList(results)), true
}

func dbExec(caller interface{}, args []value.Value) (value.Value, bool) {
	c := asCaller(caller)
	if len(args) < 2 {
		return value.Nil, c.Throw("Exception", "db.exec(handle, sql, ...) expects at least 2 arguments")
	}
	db, ok := handleOf(c, args[0])
	if !ok {
		return value.Nil, false
	}
	params := make([]interface{}, len(args)-2)
	for i, a := range args[2:] {
		params[i] = toGo(a)
	}
	res, err := db.Exec(value.ToString(args[1]), params...)
	if err != nil {
		return value.Nil, c.Throw("Exception", "db.exec: "+err.Error())
	}
	affected, _ := res.RowsAffected()
	return value.Number(float64(affected)), true
}

func dbClose(caller interface{}, args []value.Value) (value.Value, bool) {
	c := asCaller(caller)
	if len(args) != 1 {
		return value.Nil, c.Throw("Exception", "db.close(handle) expects 1 argument")
	}
	db, ok := handleOf(c, args[0])
	if !ok {
		return value.Nil, false
	}
	if err := db.Close(); err != nil {
		return value.Nil, c.Throw("Exception", "db.close: "+err.Error())
	}
	return value.Nil, true
}

func toGo(v value.Value) interface{} {
	switch {
	case v.IsNil():
		return nil
	case v.IsBool():
		return v.AsBool()
	case v.IsNumber():
		return v.AsNumber()
	case v.IsObjType(value.TString):
		return value.ToString(v)
	default:
		return value.ToString(v)
	}
}

func fromGo(c vm.Caller, v interface{}) value.Value {
	switch t := v.(type) {
	case nil:
		return value.Nil
	case bool:
		return value.Bool(t)
	case int64:
		return value.Number(float64(t))
	case float64:
		return value.Number(t)
	case []byte:
		return c.GC().InternStringValue(string(t))
	case string:
		return c.GC().InternStringValue(t)
	default:
		return c.GC().InternStringValue(value.ToString(value.Nil))
	}
}
