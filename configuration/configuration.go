package configuration

type Configuration struct {
	HttpAddr          string `usage:"HTTP address"`
	Pools             string `usage:"comma separated list of pools"`
	Features          string `usage:"comma separated list of features enabled on every pool"`
	EnableCompression bool   `usage:"gzip responses"`

	Version    bool   `usage:"show version and exit"`
	ShowBanner bool   `usage:"show big banner"`
	ShowConfig bool   `usage:"print config"`
}

func Default() Configuration {
	return Configuration{
		HttpAddr:   ":8080",
		Pools:      "tank",
		Features:   "bookmarks,large_blocks,embedded_data",
		ShowBanner: true,
	}
}
