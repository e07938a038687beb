package audit

import (
	"context"

	"github.com/rs/zerolog"
)

// ZerologSink logs events through a zerolog logger. Failed events log
// at warn level, successful ones at info.
type ZerologSink struct {
	log zerolog.Logger
}

func NewZerologSink(log zerolog.Logger) *ZerologSink {
	return &ZerologSink{log: log}
}

func (s *ZerologSink) Emit(_ context.Context, event Event) {
	entry := s.log.Info()
	if !event.Success {
		entry = s.log.Warn()
	}

	entry = entry.
		Time("event_time", event.Time).
		Str("event", event.Type).
		Bool("success", event.Success)
	if event.AdminID != "" {
		entry = entry.Str("admin_id", event.AdminID)
	}
	if event.Email != "" {
		entry = entry.Str("email", event.Email)
	}
	if event.IP != "" {
		entry = entry.Str("ip", event.IP)
	}
	if event.UserAgent != "" {
		entry = entry.Str("user_agent", event.UserAgent)
	}
	if event.Reason != "" {
		entry = entry.Str("reason", event.Reason)
	}
	for k, v := range event.Metadata {
		entry = entry.Str("meta_"+k, v)
	}
	entry.Msg("audit event")
}
