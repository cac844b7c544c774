package config

const (
	defaultConfigPath            = "~/.config/scorelib/config.toml"
	defaultProjectConfigName     = "scorelib.toml"
	defaultDataDir               = "~/.local/share/scorelib"
	defaultLogDirName            = "logs"
	defaultListingCacheName      = "listing_cache.json"
	defaultCatalogName           = "catalog.db"
	defaultDriveBaseURL          = "https://www.googleapis.com/drive/v3"
	defaultDriveMimeType         = "application/pdf"
	defaultDrivePageSize         = 100
	defaultDriveTimeoutSeconds   = 30
	defaultDriveFetchConcurrency = 4
	defaultNamingFormat          = "{title} - {section}"
	defaultNamingWorkers         = 1
	defaultLogFormat             = "console"
	defaultLogLevel              = "info"
	maxDrivePageSize             = 1000
	maxNamingWorkers             = 64
	defaultListingCacheEnabled   = true
	defaultRequireFolderMatch    = true
	defaultListingCacheMaxAgeHrs = 0
)

// Default returns a Config populated with repository defaults. Paths that
// derive from data_dir stay empty until normalization fills them in.
func Default() Config {
	return Config{
		Paths: Paths{
			DataDir: defaultDataDir,
		},
		Drive: Drive{
			BaseURL:          defaultDriveBaseURL,
			MimeType:         defaultDriveMimeType,
			PageSize:         defaultDrivePageSize,
			TimeoutSeconds:   defaultDriveTimeoutSeconds,
			FetchConcurrency: defaultDriveFetchConcurrency,
		},
		ListingCache: ListingCache{
			Enabled:     defaultListingCacheEnabled,
			MaxAgeHours: defaultListingCacheMaxAgeHrs,
		},
		Naming: Naming{
			Format:             defaultNamingFormat,
			RequireFolderMatch: defaultRequireFolderMatch,
			Workers:            defaultNamingWorkers,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
