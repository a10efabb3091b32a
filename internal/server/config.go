package server

// Config holds the values internal/server needs to build routes and
// enforce auth, independent of how internal/app assembles them (spec §6
// "Environment").
type Config struct {
	ServiceName    string
	ServiceVersion string
	Models         []string

	// ProxyKey gates /v1/responses and /v1/chat/completions via
	// x-proxy-key. Empty disables the check entirely (spec §6).
	ProxyKey string

	// UpstreamBaseURL and UpstreamKey configure the single upstream. An
	// empty UpstreamBaseURL signals echo mode (spec §4.1).
	UpstreamBaseURL string
	UpstreamKey     string
}
