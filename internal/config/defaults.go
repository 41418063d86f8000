package config

const (
	defaultStateDir            = "~/.local/share/appdepot"
	defaultLogDir              = "~/.local/share/appdepot/logs"
	defaultAIBaseURL           = "https://openrouter.ai/api/v1/chat/completions"
	defaultAIModel             = "google/gemini-2.5-flash"
	defaultAITimeoutSeconds    = 60
	defaultAutoAcceptThreshold = 0.9
	defaultPurgeTimeoutSeconds = 5
	defaultSchedulerCron       = "0 2 * * *"
	defaultLogFormat           = "console"
	defaultLogLevel            = "info"
)

func defaultExcludedFolders() []string {
	return []string{".DAV", ".git", ".node_modules", "_MACOSX", "#recycle", "@eaDir"}
}

func defaultExcludedGlobs() []string {
	return []string{"*.txt", "*.log", "thumbs.db", "desktop.ini", "*.nfo", "*.sfv", "*.sha1", "*.md5"}
}

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			StateDir: defaultStateDir,
			LogDir:   defaultLogDir,
		},
		Scan: Scan{
			ExcludedFolders: defaultExcludedFolders(),
			ExcludedGlobs:   defaultExcludedGlobs(),
		},
		AI: AI{
			Enabled:        true,
			BaseURL:        defaultAIBaseURL,
			Model:          defaultAIModel,
			TimeoutSeconds: defaultAITimeoutSeconds,
		},
		Matcher: Matcher{
			AutoAcceptThreshold: defaultAutoAcceptThreshold,
			PurgeTimeoutSeconds: defaultPurgeTimeoutSeconds,
		},
		Scheduler: Scheduler{
			Enabled: false,
			Cron:    defaultSchedulerCron,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
