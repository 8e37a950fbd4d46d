package constants

import "time"

const (
	DefaultTargetScore = 10
	StartingLevel      = 1
)

// TargetScoreOptions is the closed set of accepted target scores.
var TargetScoreOptions = []int{10, 11}

const (
	DatabaseTimeout = 5 * time.Second
	RequestTimeout  = 30 * time.Second
)

const (
	DBMaxOpenConns    = 25
	DBMaxIdleConns    = 5
	DBConnMaxLifetime = 1 * time.Hour
	DBMaxIdleTime     = 10 * time.Minute
)

const (
	ShutdownTimeout = 5 * time.Second
)

const (
	HistoryDefaultLimit = 10
	HistoryMaxLimit     = 100
)

const (
	StoreEventBuffer = 64
	WSSendBuffer     = 16
	WSWriteTimeout   = 5 * time.Second
)

const (
	QRCodeSize = 256
)
