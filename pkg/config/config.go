package config

import "github.com/sirupsen/logrus"

type Config interface {
	// Sink is the panel backend: log, json or fbdev.
	Sink() string
	// SinkTarget is the device or file the sink writes to.
	SinkTarget() string
	VersionMajor() int
	VersionMinor() int
	AllowNonRootAccess() bool
	// ReapplySchedule is a cron expression for periodic re-apply. Empty
	// disables it.
	ReapplySchedule() string
	ApplyOnStart() bool

	SetSink(string)
	SetFBDevice(string)
	SetDumpPath(string)
	SetAllowNonRootAccess(bool)
	SetReapplySchedule(string)
	SetApplyOnStart(bool)

	LogrusFields() logrus.Fields

	// Load reads the configuration from the source.
	Load() error
	// Save saves the configuration to the source.
	Save() error
}
