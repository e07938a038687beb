package adminauth

import (
	"io"

	"github.com/rs/zerolog"

	"github.com/norventa/adminauth/internal/audit"
)

// Audit surface, re-exported so sink implementations and consumers work
// with adminauth types without importing internal packages.
type (
	AuditEvent = audit.Event
	AuditSink  = audit.Sink

	NoOpSink       = audit.NoOpSink
	ChannelSink    = audit.ChannelSink
	JSONWriterSink = audit.JSONWriterSink
	ZerologSink    = audit.ZerologSink
)

// NewChannelSink returns a sink whose events can be consumed from
// AuditSink-typed code; handy for tests and custom pipelines.
func NewChannelSink(buffer int) *ChannelSink {
	return audit.NewChannelSink(buffer)
}

// NewJSONWriterSink writes one JSON event per line to w.
func NewJSONWriterSink(w io.Writer) *JSONWriterSink {
	return audit.NewJSONWriterSink(w)
}

// NewZerologSink logs events through the given zerolog logger.
func NewZerologSink(log zerolog.Logger) *ZerologSink {
	return audit.NewZerologSink(log)
}
