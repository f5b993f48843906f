// Package logging is the structured logging facade used by every pipeline
// component. Production code logs through logrus; tests swap in MockLogger and
// assert on the recorded entries.
package logging

// Logger is a leveled, field-carrying logger. The With* methods return a
// derived logger and leave the receiver untouched.
type Logger interface {
	Debug(msg string, fields ...Field)
	Info(msg string, fields ...Field)
	Warn(msg string, fields ...Field)
	Error(msg string, fields ...Field)

	// Fatal and Fatalf log and then terminate the process.
	Fatal(msg string, fields ...Field)
	Fatalf(msg string, args ...interface{})

	WithError(err error) Logger
	WithField(key string, value interface{}) Logger
	WithFields(fields ...Field) Logger
}

// Field is one structured key/value attached to an entry. Keys should come
// from the Field* constants so the batch, document and stage keys stay
// consistent across components.
type Field struct {
	Key   string
	Value interface{}
}
