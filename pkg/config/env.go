package config

// Environment constants
const (
	EnvDevelopment = "development"
	EnvStaging     = "staging"
	EnvProduction  = "production"
)

// IsDevelopment reports whether the given environment is development
func IsDevelopment(environment string) bool {
	return environment == EnvDevelopment
}

// IsProductionLike reports whether the given environment is staging or
// production. Use this when enforcing production-grade configuration
// requirements.
func IsProductionLike(environment string) bool {
	return environment == EnvStaging || environment == EnvProduction
}
