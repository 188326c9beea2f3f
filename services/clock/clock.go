// Package clock exports the host's time service.
package clock

import (
	"fmt"
	"time"

	"github.com/vk/patchbay/boot"
)

// Clock reports the current time in a configured location.
type Clock struct {
	loc *time.Location
}

// New constructs a Clock from catalog params. The "timezone" param picks
// the location by IANA name and defaults to UTC.
func New(params map[string]any) (any, error) {
	name := "UTC"
	if v, ok := params["timezone"].(string); ok && v != "" {
		name = v
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, fmt.Errorf("unknown timezone %q: %w", name, err)
	}
	return &Clock{loc: loc}, nil
}

// Now returns the current time in the clock's location.
func (c *Clock) Now() time.Time {
	return time.Now().In(c.loc)
}

// Location returns the name of the clock's location.
func (c *Clock) Location() string {
	return c.loc.String()
}

// Def is the boot catalog entry for the time service. It takes the
// constructor path; hosts adjust the timezone through manifest params.
func Def() boot.Def {
	return boot.Def{
		Name: "clock",
		New:  New,
	}
}
