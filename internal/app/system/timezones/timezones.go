// internal/app/system/timezones/timezones.go
package timezones

import (
	"fmt"
	"sort"
	"sync"
	"time"
)

// Zone is one entry of the curated list offered for report periods.
type Zone struct {
	ID     string `json:"id"`
	Label  string `json:"label"`
	Region string `json:"region"`
}

type ZoneGroup struct {
	Region string `json:"region"`
	Zones  []Zone `json:"zones"`
}

var zones = []Zone{
	{"America/Managua", "Nicaragua (Managua)", "Central America"},
	{"America/Costa_Rica", "Costa Rica (San José)", "Central America"},
	{"America/El_Salvador", "El Salvador", "Central America"},
	{"America/Guatemala", "Guatemala", "Central America"},
	{"America/Tegucigalpa", "Honduras (Tegucigalpa)", "Central America"},
	{"America/Panama", "Panamá", "Central America"},
	{"America/Belize", "Belize", "Central America"},
	{"America/Mexico_City", "México (Ciudad de México)", "North America"},
	{"America/Cancun", "México (Cancún)", "North America"},
	{"America/New_York", "Eastern Time (US)", "North America"},
	{"America/Chicago", "Central Time (US)", "North America"},
	{"America/Denver", "Mountain Time (US)", "North America"},
	{"America/Los_Angeles", "Pacific Time (US)", "North America"},
	{"America/Bogota", "Colombia (Bogotá)", "South America"},
	{"America/Lima", "Perú (Lima)", "South America"},
	{"America/Caracas", "Venezuela (Caracas)", "South America"},
	{"America/Santo_Domingo", "República Dominicana", "Caribbean"},
	{"America/Havana", "Cuba (La Habana)", "Caribbean"},
	{"America/Puerto_Rico", "Puerto Rico", "Caribbean"},
	{"UTC", "UTC", "Other"},
}

var (
	byID = func() map[string]Zone {
		m := make(map[string]Zone, len(zones))
		for _, z := range zones {
			m[z.ID] = z
		}
		return m
	}()

	groupsOnce sync.Once
	groups     []ZoneGroup

	locMu sync.Mutex
	locs  = map[string]*time.Location{}
)

// All returns the curated list in a stable order.
func All() []Zone {
	return zones
}

// Label returns the human-friendly label for an ID, or the ID itself if not found.
func Label(id string) string {
	if z, ok := byID[id]; ok {
		return z.Label
	}
	return id
}

// Valid reports whether the given ID exists in the curated list.
func Valid(id string) bool {
	_, ok := byID[id]
	return ok
}

// Load resolves a curated zone. Results are cached; the tz database is
// read once per zone.
func Load(id string) (*time.Location, error) {
	if !Valid(id) {
		return nil, fmt.Errorf("unsupported time zone %q", id)
	}
	locMu.Lock()
	defer locMu.Unlock()
	if loc, ok := locs[id]; ok {
		return loc, nil
	}
	loc, err := time.LoadLocation(id)
	if err != nil {
		return nil, fmt.Errorf("load time zone %q: %w", id, err)
	}
	locs[id] = loc
	return loc, nil
}

// Groups returns the zones grouped by region, regions and labels sorted.
func Groups() []ZoneGroup {
	groupsOnce.Do(func() {
		byRegion := make(map[string][]Zone)
		for _, z := range zones {
			byRegion[z.Region] = append(byRegion[z.Region], z)
		}
		out := make([]ZoneGroup, 0, len(byRegion))
		for region, zs := range byRegion {
			sort.SliceStable(zs, func(i, j int) bool { return zs[i].Label < zs[j].Label })
			out = append(out, ZoneGroup{Region: region, Zones: zs})
		}
		sort.SliceStable(out, func(i, j int) bool { return out[i].Region < out[j].Region })
		groups = out
	})
	return groups
}
