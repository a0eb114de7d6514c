// Package props reads the firmware version from version.properties.
package props

import (
	"context"
	"errors"
	"fmt"

	"gopkg.in/ini.v1"
)

var (
	// ErrMissingKey is returned when neither short/long nor major/minor/build are present
	ErrMissingKey = errors.New("missing version key")
)

// Version is the firmware version record.
type Version struct {
	Short string
	Long  string
}

// SHASource supplies the commit suffix of the long version.
type SHASource interface {
	ShortSHA(ctx context.Context) (string, bool)
}

// ReadVersion parses path. Explicit short/long keys win; otherwise short is
// major.minor.build and long appends the short commit hash when available.
func ReadVersion(ctx context.Context, path string, sha SHASource) (Version, error) {
	f, err := ini.LoadSources(ini.LoadOptions{Insensitive: true}, path)
	if err != nil {
		return Version{}, fmt.Errorf("failed to read %s: %w", path, err)
	}

	values := collect(f)

	if short, ok := values["short"]; ok {
		long := values["long"]
		if long == "" {
			long = short
		}
		return Version{Short: short, Long: long}, nil
	}

	var parts [3]string
	for i, key := range []string{"major", "minor", "build"} {
		v, ok := values[key]
		if !ok || v == "" {
			return Version{}, fmt.Errorf("%w: %s in %s", ErrMissingKey, key, path)
		}
		parts[i] = v
	}

	v := Version{Short: fmt.Sprintf("%s.%s.%s", parts[0], parts[1], parts[2])}
	v.Long = v.Short
	if sha != nil {
		if s, ok := sha.ShortSHA(ctx); ok {
			v.Long = v.Short + "." + s
		}
	}
	return v, nil
}

// collect flattens all sections, letting the [version] section win over
// keys found elsewhere.
func collect(f *ini.File) map[string]string {
	values := make(map[string]string)
	for _, sec := range f.Sections() {
		if sec.Name() == "version" {
			continue
		}
		for _, k := range sec.Keys() {
			values[k.Name()] = k.String()
		}
	}
	if sec, err := f.GetSection("version"); err == nil {
		for _, k := range sec.Keys() {
			values[k.Name()] = k.String()
		}
	}
	return values
}
