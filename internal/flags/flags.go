// Package flags assembles the compiler defines injected into every
// firmware build.
package flags

import (
	"strconv"
	"time"

	"github.com/kodedot/kodebuild/internal/prefs"
	"github.com/kodedot/kodebuild/internal/props"
)

// Inputs are the values the flag list is derived from.
type Inputs struct {
	Version props.Version
	Env     string
	Repo    string
	Epoch   int64
	Prefs   prefs.Prefs
}

// Build returns the ordered define list: the five build metadata defines
// followed by one define per user preference.
func Build(in Inputs) []string {
	out := []string{
		"-DAPP_VERSION=" + in.Version.Long,
		"-DAPP_VERSION_SHORT=" + in.Version.Short,
		"-DAPP_ENV=" + in.Env,
		"-DAPP_REPO=" + in.Repo,
		"-DBUILD_EPOCH=" + strconv.FormatInt(in.Epoch, 10),
	}
	return append(out, in.Prefs.Flags()...)
}

// BuildEpoch returns the Unix time of midnight, in now's location, on now's day.
func BuildEpoch(now time.Time) int64 {
	y, m, d := now.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, now.Location()).Unix()
}
