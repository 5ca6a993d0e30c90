// Package enforce provides the panic-on-failure invariant helper used
// throughout this module in place of returned "should never happen" errors.
package enforce

import (
	"fmt"
	"log"
	"math"
)

func init() {
	checkCompiler()
}

// ENFORCE halts the program if query is a false bool, a non-nil error, or
// any string (a string is always a fault, used for unconditional "should
// never happen" branches). A nil query is allowed to pass, so callers can
// write enforce.ENFORCE(err, "...") to assert no error occurred.
func ENFORCE(query interface{}, args ...interface{}) {
	switch t := query.(type) {
	case bool:
		if !t {
			log.Println("ENFORCE:", args)
			panic(0)
		}
	case error:
		if t != nil {
			log.Println("ENFORCE:", args)
			panic(t)
		}
	case string:
		log.Println("ENFORCE:", t, args)
		panic(t)
	case nil:
		// Allow nil to pass through.
	default:
		log.Println("ENFORCE: incorrect usage of enforce with type:", fmt.Sprintf("%T", t), "-", t, "-", args)
		panic(t)
	}
}

// checkCompiler enforces a 64-bit machine, since the SPM word layout in
// package spm assumes sizeof(int) == 8.
func checkCompiler() {
	myint := int(math.MaxInt64)
	myint64 := int64(math.MaxInt64)
	ENFORCE(uint64(myint) == uint64(myint64), "must be on a 64 bit system")
}
