// Package mainboilerplate contains shared scaffolding for this module's
// command-line entrypoints: logging configuration (see logging.go), flag
// and INI config parsing (see config.go), a metrics endpoint, and panic
// reporting. The intent is a selection of narrowly scoped helpers a
// command opts into individually, rather than one do-everything
// Initialize call.
package mainboilerplate

import (
	"net/http"
	_ "net/http/pprof"
	"runtime"
	"strings"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"
)

// maxStackTraceSize bounds the stack trace LogPanic captures.
const maxStackTraceSize = 32768

// Version and BuildDate are overridden at link time via -ldflags.
var (
	Version   = "development"
	BuildDate = "unknown"
)

// ServeMetrics registers the Prometheus handler at path on the default
// mux (alongside net/http/pprof's own handlers, registered by this
// file's blank import) and begins serving it on addr in the background.
func ServeMetrics(addr, path string) {
	http.Handle(path, promhttp.Handler())
	go func() {
		if err := http.ListenAndServe(addr, nil); err != nil {
			log.WithField("err", err).Fatal("metrics server failed")
		}
	}()
}

// LogPanic is intended to be deferred at the top of main, to log a
// recovered panic with a stack trace before letting it propagate.
func LogPanic() {
	if r := recover(); r != nil {
		var stack = make([]byte, maxStackTraceSize)
		stack = stack[:runtime.Stack(stack, true)]
		log.WithFields(log.Fields{
			"err":   r,
			"stack": strings.Split(string(stack), "\n"),
		}).Error("panic")
		panic(r)
	}
}

// Must exits the process with a fatal log entry if err is non-nil.
func Must(err error, message string, args ...interface{}) {
	if err == nil {
		return
	}
	log.WithField("err", err).Fatalf(message, args...)
}
