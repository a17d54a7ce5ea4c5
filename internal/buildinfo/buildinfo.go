package buildinfo

import "strings"

const (
	devVersion = "dev"
	unknown    = "unknown"
)

// これらの変数の値は本番ビルド時に-ldflagsによって設定されるメタ情報
var (
	version   = devVersion
	commitID  = unknown
	buildTime = unknown
	goBuild   = unknown
)

// Info はビルド時に埋め込まれたメタ情報
type Info struct {
	Version   string
	CommitID  string
	BuildTime string
	GoBuild   string
}

func Current() Info {
	return Info{
		Version:   version,
		CommitID:  commitID,
		BuildTime: buildTime,
		GoBuild:   goBuild,
	}
}

func (info Info) VersionWithPrefix() string {
	if info.Version == devVersion || strings.HasPrefix(info.Version, "v") {
		return info.Version
	}
	return "v" + info.Version
}

func (info Info) ShortCommitID() string {
	const n = 7
	if info.CommitID == unknown || len(info.CommitID) <= n {
		return info.CommitID
	}
	return info.CommitID[:n]
}

// IsRelease はldflagsでバージョンが埋め込まれたビルドかどうか
func (info Info) IsRelease() bool {
	return info.Version != devVersion
}
