package builtins

// ============================================================================
// 栈回溯显示名
// ============================================================================

// nameForStackTrace 少数内部内置在栈回溯里的人类可读名字
// 暴露给脚本的内置从引用它们的对象取名，不在这里
var nameForStackTrace = map[Builtin]string{
	BuiltinStringIndexOf:  "String.indexOf",
	BuiltinNumberToString: "Number.toString",

	BuiltinDataViewGetInt8:      "DataView.getInt8",
	BuiltinDataViewGetUint8:     "DataView.getUint8",
	BuiltinDataViewGetInt16:     "DataView.getInt16",
	BuiltinDataViewGetUint16:    "DataView.getUint16",
	BuiltinDataViewGetInt32:     "DataView.getInt32",
	BuiltinDataViewGetUint32:    "DataView.getUint32",
	BuiltinDataViewGetFloat32:   "DataView.getFloat32",
	BuiltinDataViewGetFloat64:   "DataView.getFloat64",
	BuiltinDataViewGetBigInt64:  "DataView.getBigInt64",
	BuiltinDataViewGetBigUint64: "DataView.getBigUint64",

	BuiltinDataViewSetInt8:      "DataView.setInt8",
	BuiltinDataViewSetUint8:     "DataView.setUint8",
	BuiltinDataViewSetInt16:     "DataView.setInt16",
	BuiltinDataViewSetUint16:    "DataView.setUint16",
	BuiltinDataViewSetInt32:     "DataView.setInt32",
	BuiltinDataViewSetUint32:    "DataView.setUint32",
	BuiltinDataViewSetFloat32:   "DataView.setFloat32",
	BuiltinDataViewSetFloat64:   "DataView.setFloat64",
	BuiltinDataViewSetBigInt64:  "DataView.setBigInt64",
	BuiltinDataViewSetBigUint64: "DataView.setBigUint64",
}

// NameForStackTrace 返回内置在栈回溯里的显示名
// 不在允许清单里的内置返回空串，调用方可以把空串当作"没有名字"来判断
func NameForStackTrace(b Builtin) string {
	checkID(b)
	return nameForStackTrace[b]
}
