package internaldefs

import (
	"github.com/norventa/adminauth"
)

// CounterDef ties one engine counter to its exported name and help text.
type CounterDef struct {
	ID   adminauth.MetricID
	Name string
	Help string
}

// HistogramDef ties one engine histogram to its exported name and help
// text.
type HistogramDef struct {
	ID   adminauth.MetricID
	Name string
	Help string
}

// CounterDefs lists every exported counter in a fixed order, so both
// exporters render identical series.
var CounterDefs = []CounterDef{
	{ID: adminauth.MetricLoginSuccess, Name: "adminauth_login_success_total", Help: "Successful password logins."},
	{ID: adminauth.MetricLoginFailure, Name: "adminauth_login_failure_total", Help: "Rejected password logins."},
	{ID: adminauth.MetricLogin2FARequired, Name: "adminauth_login_2fa_required_total", Help: "Logins paused for a second factor."},
	{ID: adminauth.MetricTwoFactorSuccess, Name: "adminauth_2fa_success_total", Help: "Successful second-factor verifications."},
	{ID: adminauth.MetricTwoFactorFailure, Name: "adminauth_2fa_failure_total", Help: "Failed second-factor verifications."},
	{ID: adminauth.MetricRefreshSuccess, Name: "adminauth_refresh_success_total", Help: "Successful refresh rotations."},
	{ID: adminauth.MetricRefreshFailure, Name: "adminauth_refresh_failure_total", Help: "Failed refresh attempts."},
	{ID: adminauth.MetricRefreshReuseDetected, Name: "adminauth_refresh_reuse_detected_total", Help: "Revoked refresh tokens presented again."},
	{ID: adminauth.MetricLogout, Name: "adminauth_logout_total", Help: "Single-session logouts."},
	{ID: adminauth.MetricLogoutAll, Name: "adminauth_logout_all_total", Help: "Logout-all sweeps."},
	{ID: adminauth.MetricPasswordChanged, Name: "adminauth_password_changed_total", Help: "Completed password changes."},
	{ID: adminauth.MetricBackupCodeUsed, Name: "adminauth_backup_code_used_total", Help: "Second factors satisfied by a backup code."},
	{ID: adminauth.MetricTwoFactorEnabled, Name: "adminauth_2fa_enabled_total", Help: "Confirmed second-factor enrollments."},
	{ID: adminauth.MetricTwoFactorDisabled, Name: "adminauth_2fa_disabled_total", Help: "Removed second-factor enrollments."},
	{ID: adminauth.MetricAuthorizeDenied, Name: "adminauth_authorize_denied_total", Help: "Permission checks that denied the caller."},
}

// HistogramDefs lists every exported histogram.
var HistogramDefs = []HistogramDef{
	{ID: adminauth.MetricVerifyLatency, Name: "adminauth_verify_latency_seconds", Help: "Access token verification latency."},
}

// HistogramBounds are the upper bucket bounds in seconds, matching the
// engine's fixed verification latency buckets.
var HistogramBounds = []string{
	"0.005",
	"0.01",
	"0.025",
	"0.05",
	"0.1",
	"0.25",
	"0.5",
	"+Inf",
}

// HistogramBoundSuffix gives each bound a name-safe form for exporters
// that encode the bound into the metric name.
var HistogramBoundSuffix = []string{
	"0_005",
	"0_01",
	"0_025",
	"0_05",
	"0_1",
	"0_25",
	"0_5",
	"inf",
}

// NormalizeBuckets pads or truncates a raw bucket slice to the fixed
// bucket count. Snapshots from a disabled histogram come back nil.
func NormalizeBuckets(raw []uint64) [8]uint64 {
	var out [8]uint64
	for i := 0; i < len(out) && i < len(raw); i++ {
		out[i] = raw[i]
	}
	return out
}

// CumulativeBuckets converts per-bucket counts into the cumulative form
// Prometheus histograms use.
func CumulativeBuckets(raw [8]uint64) [8]uint64 {
	var out [8]uint64
	var running uint64
	for i := 0; i < len(raw); i++ {
		running += raw[i]
		out[i] = running
	}
	return out
}
