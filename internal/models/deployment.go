package models

// Platform is the hosting target chosen during onboarding.
type Platform string

const (
	PlatformVercel  Platform = "vercel"
	PlatformNetlify Platform = "netlify"
	PlatformOther   Platform = "other"
	PlatformNone    Platform = "none"
)

// DeploymentConfig is collected by the wizard only; nothing on the rendered site reads it.
type DeploymentConfig struct {
	Platform     Platform `json:"platform" validate:"required,oneof=vercel netlify other none"`
	CustomDomain string   `json:"customDomain,omitempty" validate:"omitempty,max=253"`
}
