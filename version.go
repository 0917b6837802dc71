package linguaswap

import (
	"runtime/debug"
	"strings"
)

// Version information for linguaswap. GitCommit and BuildDate may be set
// with ldflags; otherwise they are read from the module's VCS stamp.
//
//	go build -ldflags "-X github.com/ZaguanLabs/linguaswap.GitCommit=$(git rev-parse HEAD)"
const (
	Name        = "linguaswap"
	Description = "Language switch coordinator for rendered HTML documents"
	Version     = "0.3.0"
	Repository  = "https://github.com/ZaguanLabs/linguaswap"
)

var (
	GitCommit = ""
	BuildDate = ""
)

// BuildInfo describes the running binary.
type BuildInfo struct {
	Version   string
	Commit    string
	Date      string
	Modified  bool
	GoVersion string
}

// ReadBuildInfo combines the ldflags values with the VCS settings the Go
// toolchain embeds. ldflags win when both are present.
func ReadBuildInfo() BuildInfo {
	info := BuildInfo{Version: Version, Commit: GitCommit, Date: BuildDate}

	bi, ok := debug.ReadBuildInfo()
	if !ok {
		return info
	}
	info.GoVersion = bi.GoVersion
	for _, s := range bi.Settings {
		switch s.Key {
		case "vcs.revision":
			if info.Commit == "" {
				info.Commit = s.Value
			}
		case "vcs.time":
			if info.Date == "" {
				info.Date = s.Value
			}
		case "vcs.modified":
			info.Modified = s.Value == "true"
		}
	}
	return info
}

// FullVersion returns the version with a short commit suffix when known,
// e.g. "0.3.0+1a2b3c4" or "0.3.0+1a2b3c4.dirty".
func FullVersion() string {
	info := ReadBuildInfo()
	if info.Commit == "" {
		return info.Version
	}
	short := info.Commit
	if len(short) > 7 {
		short = short[:7]
	}
	v := info.Version + "+" + short
	if info.Modified {
		v += ".dirty"
	}
	return v
}

// UserAgent returns the User-Agent sent to AI providers.
func UserAgent() string {
	return Name + "/" + strings.SplitN(FullVersion(), "+", 2)[0]
}
