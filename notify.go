package patchbay

// notifyLocked re-resolves every subscription affected by a change to rec.
// Each affected slot gets the complete current match set rather than an
// incremental delta, so adds and removals share one code path and a scalar
// slot whose export vanished moves to the next eligible export on its own.
func (b *Board) notifyLocked(rec *export) {
	touched := 0
	for _, sub := range b.subs {
		if !subscriptionMatches(sub, rec) {
			continue
		}
		b.applyLocked(sub)
		touched++
	}
	b.rec.NotifyPass(touched)
	if touched > 0 {
		b.logger.Debug("Notification pass reassigned import slots.",
			"type", rec.declaredType.String(), "key", rec.key, "slots", touched)
	}
}

// subscriptionMatches reports whether a subscription could be affected by a
// change to rec, using the resolution predicate. Collection slots match on
// their element type.
func subscriptionMatches(sub *subscription, rec *export) bool {
	if sub.slot.Key != "" {
		return rec.key == sub.slot.Key
	}
	return rec.key == "" && matchesType(rec.declaredType, sub.slot.Type)
}
