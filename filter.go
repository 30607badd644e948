package blewatch

// ScanFilter holds the discovery criteria passed to Watcher.Start. Services
// is treated as a set: order does not matter and duplicates are ignored. An
// empty filter matches every advertisement.
type ScanFilter struct {
	Services []UUID
}

// NewScanFilter returns a filter for the given service UUIDs, with duplicates
// removed.
func NewScanFilter(services ...UUID) ScanFilter {
	return ScanFilter{Services: services}.normalized()
}

// normalized returns a copy of the filter with duplicate services removed,
// keeping the first occurrence of each.
func (f ScanFilter) normalized() ScanFilter {
	if len(f.Services) == 0 {
		return ScanFilter{}
	}
	seen := make(map[UUID]struct{}, len(f.Services))
	services := make([]UUID, 0, len(f.Services))
	for _, uuid := range f.Services {
		if _, ok := seen[uuid]; ok {
			continue
		}
		seen[uuid] = struct{}{}
		services = append(services, uuid)
	}
	return ScanFilter{Services: services}
}

// IsEmpty reports whether the filter matches all advertisements.
func (f ScanFilter) IsEmpty() bool {
	return len(f.Services) == 0
}

// Matches reports whether an advertisement passes the filter: it must
// advertise at least one of the filter's services. This mirrors what the
// native stacks do with a service filter.
func (f ScanFilter) Matches(ev *AdvertisementEvent) bool {
	if f.IsEmpty() {
		return true
	}
	for _, uuid := range f.Services {
		if ev.HasServiceUUID(uuid) {
			return true
		}
	}
	return false
}

// Strings returns the services in canonical string form, for logging.
func (f ScanFilter) Strings() []string {
	s := make([]string, len(f.Services))
	for i, uuid := range f.Services {
		s[i] = uuid.String()
	}
	return s
}
