package holiday

import "github.com/bonoaccess/accesscheck/business/data/access"

// Region is an ISO 3166-2 subdivision code of Ecuador. Only Pichincha adds regional holidays.
type Region string

const (
	// RegionNational observes national holidays only
	RegionNational Region = ""
	// RegionPichincha is the capital province, observes Foundation of Quito
	RegionPichincha Region = "EC-P"
)

// Regions lists the supported subdivisions
var Regions = []Region{RegionNational, RegionPichincha}

// ParseRegion validates a region code, "EC" and "" both select national holidays only
func ParseRegion(code string) (Region, error) {
	if code == RegionNational.String() {
		return RegionNational, nil
	}
	for _, r := range Regions {
		if string(r) == code {
			return r, nil
		}
	}
	return RegionNational, &access.ValidationError{Field: "region", Value: code, Reason: "unsupported subdivision"}
}

func (r Region) String() string {
	if r == RegionNational {
		return "EC"
	}
	return string(r)
}
