package approval_test

import (
	"testing"

	"acm-approver/internal/approval"
	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFindConfirmationURL(t *testing.T) {
	for _, tt := range []struct {
		name string
		body string
		want string
	}{
		{"plain", "go to " + testConfirmURL + " now", testConfirmURL},
		{"regional host", "https://eu-west-1.certificates.amazon.com/approvals?code=a1-B2&context=x", "https://eu-west-1.certificates.amazon.com/approvals?code=a1-B2&context=x"},
		{"first of two", testConfirmURL + "\nhttps://us-west-2.certificates.amazon.com/approvals?code=2", testConfirmURL},
		{"stops at punctuation", "<" + testConfirmURL + ">", testConfirmURL},
		{"other host", "https://example.com/approvals?code=1", ""},
		{"http scheme", "http://us-east-1.certificates.amazon.com/approvals?code=1", ""},
		{"no query", "https://us-east-1.certificates.amazon.com/approvals", ""},
	} {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := approval.FindConfirmationURL(tt.body)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.want != "", ok)
		})
	}
}

func TestExtractors(t *testing.T) {
	page := approvalPage(defaultFields(), approvalForm)

	for name, ex := range map[string]approval.FieldExtractor{
		"regex": approval.RegexExtractor{},
		"html":  approval.HTMLExtractor{},
	} {
		t.Run(name, func(t *testing.T) {
			for label, want := range defaultFields() {
				got, err := ex.ExtractField(page, label)
				require.NoError(t, err, label)
				assert.Equal(t, want, got, label)
			}

			_, err := ex.ExtractField(page, "Validation email")
			assert.True(t, errors.Is(err, approval.ErrPageParse))
		})
	}
}

func TestExtractorsRejectDuplicateLabel(t *testing.T) {
	page := withLeadingRow(approvalPage(defaultFields(), approvalForm), approval.LabelDomain, "first.example.com")

	for name, ex := range map[string]approval.FieldExtractor{
		"regex": approval.RegexExtractor{},
		"html":  approval.HTMLExtractor{},
	} {
		t.Run(name, func(t *testing.T) {
			got, err := ex.ExtractField(page, approval.LabelDomain)
			require.Error(t, err)
			assert.True(t, errors.Is(err, approval.ErrPageParse))
			assert.Contains(t, err.Error(), `field "Domain name" found 2 times`)
			assert.Empty(t, got)

			_, err = approval.ExtractFields(ex, page)
			assert.True(t, errors.Is(err, approval.ErrPageParse))

			region, err := ex.ExtractField(page, approval.LabelRegion)
			require.NoError(t, err)
			assert.Equal(t, "us-east-1", region)
		})
	}
}

func TestRegexExtractorAcrossMarkup(t *testing.T) {
	page := "<b>AWS Region</b></td>\n<td class=\"left\">ignored</td>\n<td class=\"right-column\">\n\t us-west-2 \n</td>"
	got, err := approval.RegexExtractor{}.ExtractField(page, approval.LabelRegion)
	require.NoError(t, err)
	assert.Equal(t, "us-west-2", got)
}

func TestHTMLExtractorInlineMarkup(t *testing.T) {
	page := `<table><tr><td><b> Domain name </b></td><td id="v" class="value right-column"><span>www.example.org</span> (primary)</td></tr></table>`
	got, err := approval.HTMLExtractor{}.ExtractField(page, approval.LabelDomain)
	require.NoError(t, err)
	assert.Equal(t, "www.example.org", got)
}

func TestNewFieldExtractor(t *testing.T) {
	ex, err := approval.NewFieldExtractor("html")
	require.NoError(t, err)
	assert.IsType(t, approval.HTMLExtractor{}, ex)

	ex, err = approval.NewFieldExtractor("")
	require.NoError(t, err)
	assert.IsType(t, approval.RegexExtractor{}, ex)

	_, err = approval.NewFieldExtractor("xpath")
	assert.Error(t, err)
}

func TestExtractFields(t *testing.T) {
	t.Run("account id hyphens removed", func(t *testing.T) {
		fields := defaultFields()
		fields[approval.LabelAccountID] = "123-456-789"

		f, err := approval.ExtractFields(approval.RegexExtractor{}, approvalPage(fields, ""))
		require.NoError(t, err)
		assert.Equal(t, "123456789", f.AccountID)
		assert.Equal(t, "arn:aws:acm:us-east-1:123456789:certificate/"+testCertificateID, f.CertificateARN())
	})

	t.Run("first missing field aborts", func(t *testing.T) {
		fields := defaultFields()
		delete(fields, approval.LabelAccountID)
		delete(fields, approval.LabelRegion)

		f, err := approval.ExtractFields(approval.RegexExtractor{}, approvalPage(fields, ""))
		require.Error(t, err)
		assert.True(t, errors.Is(err, approval.ErrPageParse))
		assert.Contains(t, err.Error(), approval.LabelAccountID)
		assert.Equal(t, approval.Fields{}, f)
	})

	t.Run("unusual values are kept", func(t *testing.T) {
		fields := defaultFields()
		fields[approval.LabelAccountID] = "12ab-5678"
		fields[approval.LabelCertificateID] = "abc123"

		f, err := approval.ExtractFields(approval.RegexExtractor{}, approvalPage(fields, ""))
		require.NoError(t, err)
		assert.Equal(t, "12ab5678", f.AccountID)
		assert.Equal(t, "abc123", f.CertificateID)
		assert.Equal(t, "arn:aws:acm:us-east-1:12ab5678:certificate/abc123", f.CertificateARN())
		assert.Equal(t, []string{"account id is not 12 digits", "certificate id is not a uuid"}, f.Anomalies())
	})

	t.Run("regular values have no anomalies", func(t *testing.T) {
		f, err := approval.ExtractFields(approval.HTMLExtractor{}, approvalPage(defaultFields(), ""))
		require.NoError(t, err)
		assert.Empty(t, f.Anomalies())
	})

	t.Run("region must be an aws region", func(t *testing.T) {
		for _, region := range []string{"us-east-1", "eu-central-2", "us-gov-west-1", "ap-southeast-10"} {
			fields := defaultFields()
			fields[approval.LabelRegion] = region
			f, err := approval.ExtractFields(approval.RegexExtractor{}, approvalPage(fields, ""))
			require.NoError(t, err, region)
			assert.Equal(t, region, f.Region)
		}

		for _, region := range []string{"evil.example.com", "US-EAST-1", "us-east", "localhost:8080/x"} {
			fields := defaultFields()
			fields[approval.LabelRegion] = region
			f, err := approval.ExtractFields(approval.RegexExtractor{}, approvalPage(fields, ""))
			require.Error(t, err, region)
			assert.True(t, errors.Is(err, approval.ErrPageParse), region)
			assert.Equal(t, approval.Fields{}, f)
		}
	})
}
