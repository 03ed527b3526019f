package domain

// DeviceFingerprint is a best-effort per-device identifier derived from
// environment signals. It is a heuristic: a user clearing local state,
// switching to a private profile or spoofing environment fields will defeat
// it. It is never treated as a security boundary.
type DeviceFingerprint struct {
	ID               string `json:"id"`
	UserAgent        string `json:"userAgent"`
	ScreenResolution string `json:"screenResolution"`
	Timezone         string `json:"timezone"`
	Language         string `json:"language"`
	Platform         string `json:"platform"`
	CookiesEnabled   bool   `json:"cookiesEnabled"`
	LocalStorage     bool   `json:"localStorage"`
	SessionStorage   bool   `json:"sessionStorage"`
	WebGL            string `json:"webGL"`
	Canvas           string `json:"canvas"`
}
