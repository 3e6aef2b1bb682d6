package monitor

// Evaluate computes which state currently applies to a snapshot. Pure
// function; it never mutates the snapshot and never performs I/O. The
// expected tag set is resolved once at manifest installation, so the
// completeness check here is an exact set comparison, not a count threshold.
//
// Timeout takes priority over partial completeness: an expired countdown
// yields MissingTags regardless of read-set content.
func Evaluate(s Snapshot) State {
	switch {
	case s.Manifest == nil && s.TagIDs.Len() == 0:
		return StateIdle
	case s.Manifest == nil:
		return StateExtraTags
	case s.Timer.Expired():
		return StateMissingTags
	case s.TagIDs.Equal(s.Expected):
		return StateShipmentComplete
	default:
		return StateTruckDeparting
	}
}
