//go:build tinygo

package main

import "fmt"

// consoleLogger prints controller messages on the serial console.
type consoleLogger struct {
	debug bool
}

func (l consoleLogger) Debugf(format string, args ...interface{}) {
	if l.debug {
		println("DEBUG", fmt.Sprintf(format, args...))
	}
}

func (consoleLogger) Infof(format string, args ...interface{}) {
	println("INFO", fmt.Sprintf(format, args...))
}

func (consoleLogger) Warnf(format string, args ...interface{}) {
	println("WARN", fmt.Sprintf(format, args...))
}

func (consoleLogger) Errorf(format string, args ...interface{}) {
	println("ERROR", fmt.Sprintf(format, args...))
}
