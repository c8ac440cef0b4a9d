package log

import (
	"go.uber.org/zap/zapcore"
	"gopkg.in/alecthomas/kingpin.v2"
)

func EncodingFlag(s kingpin.Settings, defaultEncoding Encoding) *Encoding {
	e := defaultEncoding
	s.SetValue(&e)

	return &e
}

func LevelFlag(s kingpin.Settings, defaultLevel zapcore.Level) *zapcore.Level {
	l := defaultLevel
	s.SetValue(&l)

	return &l
}
