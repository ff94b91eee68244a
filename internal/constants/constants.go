package constants

// Tool name and related constants
const (
	// ToolName is the name of this tool
	ToolName = "vibescan"

	// ConfigFileName is the default config file name
	ConfigFileName = ".vibescan.toml"

	// EnvVarPrefix is the prefix for environment variables
	EnvVarPrefix = "VIBESCAN"

	// ConfigEnvVar names a config file to use when none is discovered
	ConfigEnvVar = EnvVarPrefix + "_CONFIG"
)

// Exit codes of the CLI
const (
	ExitOK            = 0
	ExitUsageError    = 1
	ExitInternalError = 2
)

// Defect density baselines, defects per thousand code lines
const (
	DefaultBaselineDefectRate = 25.0
	DefaultAIDefectMultiplier = 1.7
)

// Feature proxies used by the complexity aggregator
const (
	FeatureProxyRoutes  = "routes"
	FeatureProxyModules = "modules"
)

// MaxFeatureExponent keeps 2^n within int64
const MaxFeatureExponent = 62
