package main

import "reflect"

func testName(test Test) string {
	return reflect.TypeOf(test).Elem().Name()
}

type Test interface {
	Run(ctx *Context) error
}
