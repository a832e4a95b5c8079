package email

import (
	"strings"
)

// DeriveEmail builds the institutional address for a user id.
func DeriveEmail(userID, domain string) string {
	return strings.ToLower(strings.TrimSpace(userID)) + "@" + strings.TrimPrefix(strings.TrimSpace(domain), "@")
}
