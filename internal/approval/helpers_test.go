package approval_test

import (
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"acm-approver/internal/approval"
)

const (
	testCertificateID = "2b5e5a2c-3e7a-4b65-9d0c-7f1a2f5f1c3e"
	testConfirmURL    = "https://us-east-1.certificates.amazon.com/approvals?code=5a7c-11ef&context=3f9b1e2d"
)

var testEmail = strings.Join([]string{
	"Return-Path: <no-reply@certificates.amazon.com>",
	"Subject: Certificate approval for example.com",
	"Content-Type: text/plain; charset=UTF-8",
	"",
	"Greetings from Amazon Web Services,",
	"",
	"We received a request to issue an SSL/TLS certificate for example.com.",
	"",
	"To approve this request, go to Amazon Certificate Approvals",
	"(" + testConfirmURL + ")",
	"and follow the instructions on the page.",
}, "\r\n")

func defaultFields() map[string]string {
	return map[string]string{
		approval.LabelDomain:        "example.com",
		approval.LabelAccountID:     "1234-5678-9012",
		approval.LabelRegion:        "us-east-1",
		approval.LabelCertificateID: testCertificateID,
	}
}

const approvalForm = `
<form action="/approvals" method="post">
  <input type="hidden" name="validation_token" value="tok-123">
  <input type="hidden" name="context" value="3f9b1e2d">
  <input type="submit" name="approve" value="I Approve">
</form>`

// approvalPage renders an ACM-style approval page. Labels missing from fields
// are left out of the table.
func approvalPage(fields map[string]string, forms string) string {
	var sb strings.Builder
	sb.WriteString("<html>\n<body>\n<table>\n")
	for _, label := range []string{
		approval.LabelDomain,
		approval.LabelAccountID,
		approval.LabelRegion,
		approval.LabelCertificateID,
	} {
		v, ok := fields[label]
		if !ok {
			continue
		}
		sb.WriteString(approvalRow(label, v))
	}
	sb.WriteString("</table>\n")
	sb.WriteString(forms)
	sb.WriteString("\n</body>\n</html>\n")
	return sb.String()
}

func approvalRow(label, value string) string {
	return fmt.Sprintf("<tr>\n  <td class='left-column'><b>%s</b></td>\n  <td class='right-column'>\n      %s\n  </td>\n</tr>\n", label, value)
}

// withLeadingRow adds one more labelled row at the top of the page's table.
func withLeadingRow(page, label, value string) string {
	return strings.Replace(page, "<table>\n", "<table>\n"+approvalRow(label, value), 1)
}

// rewriteTransport sends every request to target while leaving the request
// URL seen by the client, and so by its cookie jar, untouched.
type rewriteTransport struct {
	target *url.URL
}

func (t rewriteTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	out := req.Clone(req.Context())
	out.URL.Scheme = t.target.Scheme
	out.URL.Host = t.target.Host
	out.Host = req.URL.Host

	resp, err := http.DefaultTransport.RoundTrip(out)
	if err != nil {
		return nil, err
	}
	resp.Request = req
	return resp, nil
}
