package domain

// SocialLinks maps social channels to their presence for a token.
// Empty string / empty slice means the channel is absent.
type SocialLinks struct {
	Websites []string // full URLs
	Discord  string   // full URL
	Telegram string   // handle, without t.me prefix
	Twitter  string   // handle, without x.com prefix
}

// Total returns the number of tracked social channels.
func (s SocialLinks) Total() int {
	return 4
}

// AvailableCount returns the number of channels with a non-empty value.
func (s SocialLinks) AvailableCount() int {
	n := 0
	if len(s.Websites) > 0 {
		n++
	}
	if s.Discord != "" {
		n++
	}
	if s.Telegram != "" {
		n++
	}
	if s.Twitter != "" {
		n++
	}
	return n
}
