package world

// Sink receives hive lifecycle events. Calls may arrive from several
// goroutines during the replacement phase, so implementations must be safe
// for concurrent use.
type Sink interface {
	ColonyCreated(domestic bool)
	DiedOfOldAge(domestic bool)
	FailedWinter(domestic bool)
	MatingFlightFailed(domestic bool)
	SwarmAttempted(domestic bool)
	SwarmFoundSite(domestic bool)
	SwarmFoundNoSite(domestic bool)
	ColonyRequeened()
}

// NopSink discards every event.
type NopSink struct{}

func (NopSink) ColonyCreated(bool)      {}
func (NopSink) DiedOfOldAge(bool)       {}
func (NopSink) FailedWinter(bool)       {}
func (NopSink) MatingFlightFailed(bool) {}
func (NopSink) SwarmAttempted(bool)     {}
func (NopSink) SwarmFoundSite(bool)     {}
func (NopSink) SwarmFoundNoSite(bool)   {}
func (NopSink) ColonyRequeened()        {}
