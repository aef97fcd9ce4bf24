package logger

import (
	"bytes"
	"github.com/stretchr/testify/assert"
	"testing"
)

func TestStringToLogLevel(t *testing.T) {
	a := assert.New(t)

	a.Equal(ERROR, StringToLogLevel("error"))
	a.Equal(WARN, StringToLogLevel("WARN"))
	a.Equal(WARN, StringToLogLevel("warning"))
	a.Equal(INFO, StringToLogLevel(" Info "))
	a.Equal(DEBUG, StringToLogLevel("debug"))
	a.Equal(TRACE, StringToLogLevel("trace"))
	a.Equal(INFO, StringToLogLevel("foo"))
}

func TestInitializeWithWriters(t *testing.T) {
	a := assert.New(t)
	errOut := &bytes.Buffer{}
	out := &bytes.Buffer{}

	InitializeWithWriters(WARN, errOut, out)
	defer InitializeWithWriters(ERROR, &NullWriter{}, &NullWriter{})

	Error.Print("error message")
	Warn.Print("warn message")
	Info.Print("info message")
	Debug.Print("debug message")

	a.Contains(errOut.String(), "error message")
	a.Contains(out.String(), "warn message")
	a.NotContains(out.String(), "info message")
	a.NotContains(out.String(), "debug message")
	a.True(IsLogLevel(WARN))
	a.False(IsLogLevel(INFO))
}
