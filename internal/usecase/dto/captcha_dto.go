package dto

// CaptchaChallenge is a generated captcha image and its lookup id. The
// answer stays server-side.
type CaptchaChallenge struct {
	ID    string
	Image string
}
