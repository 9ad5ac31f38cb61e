package sync

import "time"

// SetClock replaces the time source used for backup names.
func (s *Synchronizer) SetClock(now func() time.Time) {
	s.now = now
}
