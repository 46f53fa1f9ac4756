package stdlib

import (
	"encoding/json"

	"vellum/internal/module"
	"vellum/internal/value"
	"vellum/internal/vm"
)

func registerJSON() {
	reg("_json",
		module.FuncDesc{Name: "encode", Fn: jsonEncode},
		module.FuncDesc{Name: "decode", Fn: jsonDecode},
	)
}

func jsonEncode(caller interface{}, args []value.Value) (value.Value, bool) {
	c := caller.(vm.Caller)
	if len(args) != 1 {
		return value.Nil, c.Throw("Exception", "json.encode(v) expects 1 argument")
	}
	out, err := json.Marshal(toJSONable(args[0]))
	if err != nil {
		return value.Nil, c.Throw("Exception", "json.encode: "+err.Error())
	}
	return c.GC().InternStringValue(string(out)), true
}

func jsonDecode(caller interface{}, args []value.Value) (value.Value, bool) {
	c := caller.(vm.Caller)
	if len(args) != 1 {
		return value.Nil, c.Throw("Exception", "json.decode(s) expects 1 argument")
	}
	var decoded interface{}
	if err := json.Unmarshal([]byte(value.ToString(args[0])), &decoded); err != nil {
		return value.Nil, c.Throw("Exception", "json.decode: "+err.Error())
	}
	return fromJSONable(c, decoded), true
}

func toJSONable(v value.Value) interface{} {
	switch {
	case v.IsNil():
		return nil
	case v.IsBool():
		return v.AsBool()
	case v.IsNumber():
		return v.AsNumber()
	case v.IsObjType(value.TString):
		return value.ToString(v)
	case v.IsObjType(value.TList):
		l := v.AsObj().(*value.ObjList)
		out := make([]interface{}, len(l.Items))
		for i, item := range l.Items {
			out[i] = toJSONable(item)
		}
		return out
	case v.IsObjType(value.TDict):
		d := v.AsObj().(*value.ObjDict)
		out := make(map[string]interface{}, d.Len())
		for _, k := range d.Keys {
			val, _ := d.Get(k)
			out[value.ToString(k)] = toJSONable(val)
		}
		return out
	default:
		return value.ToString(v)
	}
}

func fromJSONable(c vm.Caller, v interface{}) value.Value {
	switch t := v.(type) {
	case nil:
		return value.Nil
	case bool:
		return value.Bool(t)
	case float64:
		return value.Number(t)
	case string:
		return c.GC().InternStringValue(t)
	case []interface{}:
		items := make([]value.Value, len(t))
		for i, item := range t {
			items[i] = fromJSONable(c, item)
		}
		return value.FromObj(c.GC().NewList(items))
	case map[string]interface{}:
		d := c.GC().NewDict()
		for k, val := range t {
			d.Set(c.GC().InternStringValue(k), fromJSONable(c, val))
		}
		return value.FromObj(d)
	default:
		return value.Nil
	}
}
