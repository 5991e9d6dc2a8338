package scanner

import (
	"fmt"
	"sort"
	"strings"

	"scanpi/internal/services"
)

// Format is a named paper size with scan area dimensions in millimetres.
type Format struct {
	Name     string
	WidthMM  int
	HeightMM int
}

var formats = map[string]Format{
	"a4":     {Name: "a4", WidthMM: 210, HeightMM: 297},
	"a5":     {Name: "a5", WidthMM: 148, HeightMM: 210},
	"a6":     {Name: "a6", WidthMM: 105, HeightMM: 148},
	"letter": {Name: "letter", WidthMM: 216, HeightMM: 279},
	"legal":  {Name: "legal", WidthMM: 216, HeightMM: 356},
}

var resolutions = map[int]struct{}{
	200: {},
	400: {},
	600: {},
}

// DefaultFormat and DefaultResolution are used when no flag is given.
const (
	DefaultFormat     = "a4"
	DefaultResolution = 400
)

// LookupFormat resolves a format name case-insensitively.
func LookupFormat(name string) (Format, error) {
	format, ok := formats[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return Format{}, services.Wrap(services.ErrConfig, "", "format",
			fmt.Sprintf("unknown format %q (valid: %s)", name, strings.Join(FormatNames(), ", ")), nil)
	}
	return format, nil
}

// ValidateResolution checks the DPI against the supported set.
func ValidateResolution(dpi int) error {
	if _, ok := resolutions[dpi]; !ok {
		return services.Wrap(services.ErrConfig, "", "resolution",
			fmt.Sprintf("unsupported resolution %d (valid: %s)", dpi, strings.Join(ResolutionNames(), ", ")), nil)
	}
	return nil
}

// FormatNames returns the supported format names sorted alphabetically.
func FormatNames() []string {
	names := make([]string, 0, len(formats))
	for name := range formats {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ResolutionNames returns the supported resolutions in ascending order.
func ResolutionNames() []string {
	values := make([]int, 0, len(resolutions))
	for dpi := range resolutions {
		values = append(values, dpi)
	}
	sort.Ints(values)
	names := make([]string, 0, len(values))
	for _, dpi := range values {
		names = append(names, fmt.Sprintf("%d", dpi))
	}
	return names
}
