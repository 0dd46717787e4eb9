package approval

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/acm"
	"github.com/aws/aws-sdk-go-v2/service/acm/types"
	"github.com/cockroachdb/errors"
)

//go:generate mockgen -destination=../../test/mock/approval/certificate.go -package=mock_approval acm-approver/internal/approval CertificateDescriber

// CertificateDescriber is the part of the ACM API the approver uses.
type CertificateDescriber interface {
	DescribeCertificate(ctx context.Context, params *acm.DescribeCertificateInput, optFns ...func(*acm.Options)) (*acm.DescribeCertificateOutput, error)
}

var _ CertificateDescriber = (*acm.Client)(nil)

// checkPendingValidation describes the certificate named by f in f's region
// and fails unless it is awaiting validation.
func checkPendingValidation(ctx context.Context, certs CertificateDescriber, f Fields) (types.CertificateStatus, error) {
	certARN := f.CertificateARN()
	out, err := certs.DescribeCertificate(ctx, &acm.DescribeCertificateInput{
		CertificateArn: aws.String(certARN),
	}, func(o *acm.Options) {
		o.Region = f.Region
	})
	if err != nil {
		return "", errors.Wrapf(err, "failed to describe certificate %s", certARN)
	}
	if out.Certificate == nil {
		return "", errors.Wrapf(ErrNotPendingValidation, "certificate %s has no detail", certARN)
	}

	status := out.Certificate.Status
	if status != types.CertificateStatusPendingValidation {
		return status, errors.Wrapf(ErrNotPendingValidation, "certificate %s is %s", certARN, status)
	}
	return status, nil
}
