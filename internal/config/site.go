package config

// SiteConfig holds per-site overrides for a single domain.
// This lets a user keep cookies or custom headers for picky hosts in
// the config file instead of repeating them on every invocation.
type SiteConfig struct {
	// Cookie is an HTTP cookie sent with every request to this site.
	// Format: "name=value" or "name1=value1; name2=value2"
	Cookie string `yaml:"cookie,omitempty"`

	// Headers are custom HTTP headers sent with requests to this site.
	Headers map[string]string `yaml:"headers,omitempty"`

	// UserAgent overrides the global User-Agent for this site.
	UserAgent string `yaml:"userAgent,omitempty"`

	// Workers overrides the global concurrency for this site.
	// Zero means use the global value.
	Workers int `yaml:"workers,omitempty"`

	// MaxImageSize overrides the global image size limit in bytes.
	// Zero means use the global value.
	MaxImageSize int64 `yaml:"maxImageSize,omitempty"`
}

// File represents the structure of the .imgrab configuration file.
type File struct {
	// Sites maps domain names (without scheme, e.g. "example.com")
	// to their overrides.
	Sites map[string]SiteConfig `yaml:"sites,omitempty"`

	// Defaults contains overrides applied to all sites unless a
	// site-specific entry overrides them again.
	Defaults SiteConfig `yaml:"defaults,omitempty"`
}

// GetSiteConfig returns the merged configuration for a domain:
// defaults first, then the site-specific entry on top.
func (cf *File) GetSiteConfig(domain string) SiteConfig {
	result := cf.Defaults

	siteConfig, ok := cf.Sites[domain]
	if !ok {
		return result
	}

	if siteConfig.Cookie != "" {
		result.Cookie = siteConfig.Cookie
	}
	if siteConfig.UserAgent != "" {
		result.UserAgent = siteConfig.UserAgent
	}
	if siteConfig.Workers > 0 {
		result.Workers = siteConfig.Workers
	}
	if siteConfig.MaxImageSize > 0 {
		result.MaxImageSize = siteConfig.MaxImageSize
	}
	if len(siteConfig.Headers) > 0 {
		if result.Headers == nil {
			result.Headers = make(map[string]string)
		}
		for k, v := range siteConfig.Headers {
			result.Headers[k] = v
		}
	}

	return result
}
