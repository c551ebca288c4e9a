// Package synclog provides a small dependency-free leveled logger for the
// syncer core and its demo harness.
//
// Time/date are left out of the default output because a supervising process
// (systemd, a test runner capturing stdout) usually stamps lines itself; set
// SetLogDateTime(true) to include them. Level prefixes follow the sd-daemon
// convention: https://www.freedesktop.org/software/systemd/man/sd-daemon.html
package synclog

import (
	"fmt"
	"io"
	"log"
	"os"
)

var logDateTime bool

var (
	DebugWriter io.Writer = os.Stderr
	InfoWriter  io.Writer = os.Stderr
	WarnWriter  io.Writer = os.Stderr
	ErrWriter   io.Writer = os.Stderr
)

var (
	DebugPrefix string = "<7>[DEBUG]   "
	InfoPrefix  string = "<6>[INFO]    "
	WarnPrefix  string = "<4>[WARNING] "
	ErrPrefix   string = "<3>[ERROR]   "
)

var (
	debugLog *log.Logger = log.New(DebugWriter, DebugPrefix, 0)
	infoLog  *log.Logger = log.New(InfoWriter, InfoPrefix, 0)
	warnLog  *log.Logger = log.New(WarnWriter, WarnPrefix, log.Lshortfile)
	errLog   *log.Logger = log.New(ErrWriter, ErrPrefix, log.Llongfile)

	debugTimeLog *log.Logger = log.New(DebugWriter, DebugPrefix, log.LstdFlags)
	infoTimeLog  *log.Logger = log.New(InfoWriter, InfoPrefix, log.LstdFlags)
	warnTimeLog  *log.Logger = log.New(WarnWriter, WarnPrefix, log.LstdFlags|log.Lshortfile)
	errTimeLog   *log.Logger = log.New(ErrWriter, ErrPrefix, log.LstdFlags|log.Llongfile)
)

// SetLevel silences writers below the given level ("debug", "info", "warn", "err").
func SetLevel(lvl string) {
	switch lvl {
	case "err", "fatal":
		WarnWriter = io.Discard
		fallthrough
	case "warn":
		InfoWriter = io.Discard
		fallthrough
	case "info":
		DebugWriter = io.Discard
	case "debug":
		// nothing discarded
	default:
		fmt.Printf("synclog: invalid level %q, using \"debug\"\n", lvl)
		SetLevel("debug")
	}
}

// SetLogDateTime toggles date/time prefixing on every subsequent log line.
func SetLogDateTime(v bool) {
	logDateTime = v
}

func Debug(v ...interface{}) {
	if DebugWriter == io.Discard {
		return
	}
	if logDateTime {
		debugTimeLog.Output(2, fmt.Sprint(v...))
	} else {
		debugLog.Output(2, fmt.Sprint(v...))
	}
}

func Info(v ...interface{}) {
	if InfoWriter == io.Discard {
		return
	}
	if logDateTime {
		infoTimeLog.Output(2, fmt.Sprint(v...))
	} else {
		infoLog.Output(2, fmt.Sprint(v...))
	}
}

func Warn(v ...interface{}) {
	if WarnWriter == io.Discard {
		return
	}
	if logDateTime {
		warnTimeLog.Output(2, fmt.Sprint(v...))
	} else {
		warnLog.Output(2, fmt.Sprint(v...))
	}
}

func Error(v ...interface{}) {
	if ErrWriter == io.Discard {
		return
	}
	if logDateTime {
		errTimeLog.Output(2, fmt.Sprint(v...))
	} else {
		errLog.Output(2, fmt.Sprint(v...))
	}
}

func Debugf(format string, v ...interface{}) { Debug(fmt.Sprintf(format, v...)) }
func Infof(format string, v ...interface{})  { Info(fmt.Sprintf(format, v...)) }
func Warnf(format string, v ...interface{})  { Warn(fmt.Sprintf(format, v...)) }
func Errorf(format string, v ...interface{}) { Error(fmt.Sprintf(format, v...)) }
