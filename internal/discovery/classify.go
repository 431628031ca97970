package discovery

// Classifier decides whether a resolved SAN address represents a host outside
// the original scan set. Membership is exact string comparison: equivalent
// addresses in different textual forms are different members on purpose,
// since normalizing would change the discovery contract.
type Classifier struct {
	targets map[string]struct{}
}

// NewClassifier builds a classifier over the static original target set.
func NewClassifier(targets []string) *Classifier {
	set := make(map[string]struct{}, len(targets))
	for _, t := range targets {
		set[t] = struct{}{}
	}
	return &Classifier{targets: set}
}

// Classify builds the record for one (source, SAN) pair. A SAN without a
// concrete address is never reported as new; a resolved address counts as
// new only when absent from the original target set.
func (c *Classifier) Classify(source, san, resolved string) DiscoveryRecord {
	rec := DiscoveryRecord{
		Source:     source,
		SAN:        san,
		ResolvedIP: resolved,
	}
	if resolved == UnresolvedAddr {
		return rec
	}
	if _, known := c.targets[resolved]; !known {
		rec.NewHost = true
	}
	return rec
}
