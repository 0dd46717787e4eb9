package approval

import "regexp"

var confirmationURL = regexp.MustCompile(`https://[A-Za-z0-9.-]*certificates\.amazon\.com/approvals\?[A-Za-z0-9=&-]+`)

// FindConfirmationURL returns the first ACM approval link in an email body.
func FindConfirmationURL(body string) (string, bool) {
	u := confirmationURL.FindString(body)
	return u, u != ""
}
