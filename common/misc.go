package common

import (
	"io"
	"reflect"
)

const DefaultUserAgent = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/135.0.0.0 Safari/537.36"

func TryToClose(v any) error {
	if closer, ok := v.(io.Closer); ok {
		value := reflect.ValueOf(closer)
		switch value.Kind() {
		case reflect.Chan, reflect.Func, reflect.Interface,
			reflect.Map, reflect.Ptr, reflect.Slice, reflect.UnsafePointer:
			if !value.IsNil() {
				return closer.Close()
			}
		default:
			return closer.Close()
		}
	}
	return nil
}
