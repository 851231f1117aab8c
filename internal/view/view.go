// Package view builds the small presentational props pages embed: user
// avatars, the site logo and brand icons.
package view

// AvatarProps describe a user avatar. Src is "" when the user has none.
type AvatarProps struct {
	Name string `json:"name"`
	Src  string `json:"src"`
}

// AvatarSource is anything that knows a display name and an avatar URL.
type AvatarSource interface {
	FullName() string
	AvatarURL() string
}

// Avatar returns the avatar props of p. A nil p yields empty props.
func Avatar(p AvatarSource) AvatarProps {
	if p == nil {
		return AvatarProps{}
	}
	return AvatarProps{Name: p.FullName(), Src: p.AvatarURL()}
}

// ImageProps describe a fixed-size image.
type ImageProps struct {
	Src    string `json:"src"`
	Alt    string `json:"alt"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
}

type (
	LogoProps      = ImageProps
	BrandIconProps = ImageProps
)

// Logo is the round site logo. Alt falls back to "Logo".
func Logo(siteName string) LogoProps {
	alt := siteName
	if alt == "" {
		alt = "Logo"
	}
	return LogoProps{Src: "/apple-touch-icon.png", Alt: alt, Width: 24, Height: 24}
}

// BrandIcon is the icon of a third-party brand, e.g. "google".
func BrandIcon(brand string) BrandIconProps {
	return BrandIconProps{Src: "/brands/" + brand + ".svg", Alt: brand, Width: 32, Height: 32}
}

// ProviderProps describe a sign-in button for an OAuth provider.
type ProviderProps struct {
	Provider string         `json:"provider"`
	Name     string         `json:"name"`
	Icon     BrandIconProps `json:"icon"`
}

var providerNames = map[string]string{
	"apple":    "Apple",
	"discord":  "Discord",
	"facebook": "Facebook",
	"github":   "GitHub",
	"google":   "Google",
}

// AuthProviders returns the sign-in buttons for providers, in order. An
// unknown provider is shown under its own id.
func AuthProviders(providers []string) []ProviderProps {
	if len(providers) == 0 {
		return nil
	}
	out := make([]ProviderProps, 0, len(providers))
	for _, p := range providers {
		name, ok := providerNames[p]
		if !ok {
			name = p
		}
		icon := BrandIcon(p)
		icon.Alt = name
		out = append(out, ProviderProps{Provider: p, Name: name, Icon: icon})
	}
	return out
}
