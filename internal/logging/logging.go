// Package logging builds the process-wide logrus logger.
package logging

import (
	"os"
	"strings"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// Field keys shared by every component.
const (
	FieldComponent = "component"
	FieldLocation  = "location"
	FieldProvider  = "provider"
)

// New returns a logger writing to stderr. format is "text" or "json".
func New(level, format string) (*logrus.Logger, error) {
	lvl, err := logrus.ParseLevel(strings.TrimSpace(level))
	if err != nil {
		return nil, errors.Wrapf(err, "invalid log level %q", level)
	}

	l := logrus.New()
	l.SetOutput(os.Stderr)
	l.SetLevel(lvl)

	switch strings.ToLower(format) {
	case "json":
		l.SetFormatter(&logrus.JSONFormatter{})
	case "", "text":
		l.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	default:
		return nil, errors.Errorf("invalid log format %q", format)
	}

	return l, nil
}
