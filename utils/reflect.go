package utils

import "reflect"

func TypeOf[T any]() reflect.Type {
	return reflect.TypeOf((*T)(nil)).Elem()
}

func Zero[T any]() T {
	var zero T
	return zero
}
