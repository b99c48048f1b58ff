package training

import (
	"time"

	"pharmtrain_backend/internal/model"
)

type CertificationState string

const (
	CertificationActive   CertificationState = "active"
	CertificationExpiring CertificationState = "expiring"
	CertificationExpired  CertificationState = "expired"
)

// CertificationStatus reports whether a certification is expired, expires within the given
// window, or is active. Certifications without an expiry date never expire.
func CertificationStatus(cert model.Certification, now time.Time, within time.Duration) CertificationState {
	if cert.ExpiresAt == nil {
		return CertificationActive
	}
	if cert.ExpiresAt.Before(now) {
		return CertificationExpired
	}
	if !cert.ExpiresAt.After(now.Add(within)) {
		return CertificationExpiring
	}
	return CertificationActive
}
