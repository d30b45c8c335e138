package version

import "fmt"

// Заполняются при сборке через -ldflags:
//
//	-X .../internal/version.version=v1.2.0
//	-X .../internal/version.commit=abc1234
//	-X .../internal/version.date=2026-08-29
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

// BuildInfo — сведения о сборке бинарника.
type BuildInfo struct {
	Version string
	Commit  string
	Date    string
}

// Get возвращает сведения о текущей сборке.
func Get() BuildInfo {
	return BuildInfo{Version: version, Commit: commit, Date: date}
}

// String форматирует сведения одной строкой для стартового лога.
func (b BuildInfo) String() string {
	return fmt.Sprintf("version=%s commit=%s date=%s", b.Version, b.Commit, b.Date)
}

// GetVersion возвращает только версию сборки.
func GetVersion() string { return version }
