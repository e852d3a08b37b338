// Package tracelog backs the `-d` debug bitmask's token-trace (bit 0) and
// alloc-trace (bit 1) output. Each trace category is gated independently
// and backed by its own leveled logger from juju/loggo, rather than one
// global on/off switch.
package tracelog

import (
	"os"

	"github.com/juju/loggo"
)

// Bit names the trace category a call into this package is gated on,
// matching the debug bitmask's bit layout.
type Bit int

const (
	Tokens Bit = 1 << iota
	AllocBit
)

var (
	tokenLogger = loggo.GetLogger("exin.tokens")
	allocLogger = loggo.GetLogger("exin.alloc")
)

func init() {
	loggo.RemoveWriter("default")
	writer := loggo.NewSimpleWriter(os.Stderr, func(e loggo.Entry) string {
		return e.Level.String() + ": " + e.Message
	})
	loggo.RegisterWriter("exin", writer)
}

// Configure enables the loggers selected by mask, a debug bitmask, and
// silences the rest.
func Configure(mask int) {
	if mask&int(Tokens) != 0 {
		tokenLogger.SetLogLevel(loggo.TRACE)
	} else {
		tokenLogger.SetLogLevel(loggo.UNSPECIFIED)
	}
	if mask&int(AllocBit) != 0 {
		allocLogger.SetLogLevel(loggo.TRACE)
	} else {
		allocLogger.SetLogLevel(loggo.UNSPECIFIED)
	}
}

// Token logs one scanned token, called from the lexer when bit 0 is set.
func Token(kind, val string) {
	if tokenLogger.IsLevelEnabled(loggo.TRACE) {
		tokenLogger.Tracef("%s %q", kind, val)
	}
}

// Alloc logs one value allocation or release event, called from the value
// model when bit 1 is set.
func Alloc(action string, kind string, refs int) {
	if allocLogger.IsLevelEnabled(loggo.TRACE) {
		allocLogger.Tracef("%s %s refs=%d", action, kind, refs)
	}
}
