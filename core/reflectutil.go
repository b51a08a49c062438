package core

import "reflect"

// This file isolates the small amount of reflection go-ethereum's ABI
// codec requires: tuple parameters are packed/unpacked as anonymous Go
// structs generated at runtime from the parsed abi.Type, and arrays are
// packed as slices of that struct's element type. Everywhere else in
// core, reflection is avoided.

func reflectMakeSlice(elemType reflect.Type, n int) reflect.Value {
	return reflect.MakeSlice(reflect.SliceOf(elemType), n, n)
}

func reflectSetIndex(slice reflect.Value, i int, v any) {
	slice.Index(i).Set(reflect.ValueOf(v))
}

func reflectInterface(v reflect.Value) any {
	return v.Interface()
}

func reflectNewStruct(structType reflect.Type) reflect.Value {
	return reflect.New(structType)
}

func reflectSetField(structPtr reflect.Value, i int, v any) error {
	field := structPtr.Elem().Field(i)
	field.Set(reflect.ValueOf(v))
	return nil
}

func reflectElem(v reflect.Value) any {
	return v.Elem().Interface()
}

func reflectValueOf(v any) reflect.Value {
	return reflect.ValueOf(v)
}

func reflectLen(v reflect.Value) int {
	return v.Len()
}

func reflectIndexInterface(v reflect.Value, i int) any {
	return v.Index(i).Interface()
}

func reflectFieldInterface(v reflect.Value, i int) any {
	return v.Field(i).Interface()
}
