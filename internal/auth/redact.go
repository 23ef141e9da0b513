package auth

// TokenPreview returns a short, log-safe prefix of a token. At most the
// first 8 characters are exposed, followed by an ellipsis marker.
func TokenPreview(token string) string {
	if token == "" {
		return "(empty)"
	}
	if len(token) <= 8 {
		return token[:len(token)/2] + "..."
	}
	return token[:8] + "..."
}
