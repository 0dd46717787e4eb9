package approval

import (
	"regexp"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws/arn"
	"github.com/cockroachdb/errors"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

// Labels of the approval page table rows.
const (
	LabelDomain        = "Domain name"
	LabelAccountID     = "AWS account number"
	LabelRegion        = "AWS Region"
	LabelCertificateID = "Certificate identifier"
)

var fieldLabels = []string{LabelDomain, LabelAccountID, LabelRegion, LabelCertificateID}

var (
	regionPattern    = regexp.MustCompile(`^[a-z]{2}(-[a-z]+)+-\d+$`)
	accountIDPattern = regexp.MustCompile(`^\d{12}$`)
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	// The region selects the ACM endpoint, so it must look like one.
	_ = v.RegisterValidation("aws_region", func(fl validator.FieldLevel) bool {
		return regionPattern.MatchString(fl.Field().String())
	})
	return v
}

// Fields are the certificate details shown on the approval page.
type Fields struct {
	Domain        string `validate:"required"`
	AccountID     string `validate:"required"`
	Region        string `validate:"required,aws_region"`
	CertificateID string `validate:"required"`
}

// ExtractFields scrapes the four fields from page. The first missing or
// duplicated field aborts the extraction; no partial result is returned.
func ExtractFields(ex FieldExtractor, page string) (Fields, error) {
	if p, ok := ex.(pagePreparer); ok {
		prepared, err := p.prepare(page)
		if err != nil {
			return Fields{}, err
		}
		ex = prepared
	}

	values := make(map[string]string, len(fieldLabels))
	for _, label := range fieldLabels {
		v, err := ex.ExtractField(page, label)
		if err != nil {
			return Fields{}, err
		}
		values[label] = v
	}

	f := Fields{
		Domain: values[LabelDomain],
		// The page groups the account number with hyphens.
		AccountID:     strings.ReplaceAll(values[LabelAccountID], "-", ""),
		Region:        values[LabelRegion],
		CertificateID: values[LabelCertificateID],
	}
	if err := f.Validate(); err != nil {
		return Fields{}, err
	}
	return f, nil
}

// Validate checks that the fields can name a certificate.
func (f Fields) Validate() error {
	if err := validate.Struct(f); err != nil {
		return errors.Wrap(ErrPageParse, err.Error())
	}
	return nil
}

// Anomalies lists values that do not look like what ACM normally shows. They
// are not fatal: the certificate lookup is the authority.
func (f Fields) Anomalies() []string {
	var out []string
	if !accountIDPattern.MatchString(f.AccountID) {
		out = append(out, "account id is not 12 digits")
	}
	if _, err := uuid.Parse(f.CertificateID); err != nil {
		out = append(out, "certificate id is not a uuid")
	}
	return out
}

// CertificateARN returns the ARN of the certificate the page refers to.
func (f Fields) CertificateARN() string {
	return arn.ARN{
		Partition: "aws",
		Service:   "acm",
		Region:    f.Region,
		AccountID: f.AccountID,
		Resource:  "certificate/" + f.CertificateID,
	}.String()
}
