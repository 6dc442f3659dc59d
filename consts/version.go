package consts

const (
	AppName = "torrent-streams"

	// SpoofedUserAgent is sent to every tracker; the catalogs reject
	// unknown clients.
	SpoofedUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36"
)

// These will be injected via -ldflags at build time
var (
	gitSha string = "unknown"
	gitTag string = "unknown"
)

func GetBuildInfo() map[string]string {
	return map[string]string{
		"name":     AppName,
		"revision": gitSha,
		"version":  gitTag,
	}
}
