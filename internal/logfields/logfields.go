package logfields

import "log/slog"

// Canonical log field name constants to avoid drift across packages.
const (
	KeyShipmentID = "shipment_id"
	KeyCycleID    = "cycle_id"
	KeyState      = "state"
	KeyFromState  = "from_state"
	KeyToState    = "to_state"
	KeyTagID      = "tag_id"
	KeyTagCount   = "tag_count"
	KeyRemaining  = "timer_remaining"
	KeyKind       = "kind"
	KeySubject    = "subject"
	KeyMethod     = "method"
	KeyPath       = "path"
	KeyStatus     = "status"
	KeyUserAgent  = "user_agent"
	KeyRemoteAddr = "remote_addr"
	KeyError      = "error"
)

// Simple helpers returning slog.Attr. Keeping each granular means callers can compose.
func ShipmentID(id string) slog.Attr { return slog.String(KeyShipmentID, id) }
func CycleID(id string) slog.Attr    { return slog.String(KeyCycleID, id) }
func State(s string) slog.Attr       { return slog.String(KeyState, s) }
func FromState(s string) slog.Attr   { return slog.String(KeyFromState, s) }
func ToState(s string) slog.Attr     { return slog.String(KeyToState, s) }
func TagID(id string) slog.Attr      { return slog.String(KeyTagID, id) }
func TagCount(n int) slog.Attr       { return slog.Int(KeyTagCount, n) }
func Remaining(s int64) slog.Attr    { return slog.Int64(KeyRemaining, s) }
func Kind(k string) slog.Attr        { return slog.String(KeyKind, k) }
func Subject(s string) slog.Attr     { return slog.String(KeySubject, s) }
func Method(m string) slog.Attr      { return slog.String(KeyMethod, m) }
func Path(p string) slog.Attr        { return slog.String(KeyPath, p) }
func Status(code int) slog.Attr      { return slog.Int(KeyStatus, code) }
func UserAgent(ua string) slog.Attr  { return slog.String(KeyUserAgent, ua) }
func RemoteAddr(a string) slog.Attr  { return slog.String(KeyRemoteAddr, a) }

func Error(err error) slog.Attr {
	if err == nil {
		return slog.String(KeyError, "")
	}
	return slog.String(KeyError, err.Error())
}
