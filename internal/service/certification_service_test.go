package service

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pharmtrain_backend/internal/config"
	"pharmtrain_backend/internal/model"
	"pharmtrain_backend/internal/repository"
	"pharmtrain_backend/internal/testutil"
	"pharmtrain_backend/internal/training"
	"pharmtrain_backend/internal/util"
)

func newCertificationService(t *testing.T) *CertificationService {
	t.Helper()
	storage := &StorageService{Provider: &LocalStorageProvider{Config: &config.StorageConfig{LocalPath: t.TempDir()}}}
	svc := NewCertificationService(repository.NewCertificationRepository(testutil.NewDB(t)), storage, NewPolicyStore(training.DefaultPolicy()))
	svc.Now = func() time.Time { return fixedNow }
	return svc
}

func at(days int) *time.Time {
	t := fixedNow.AddDate(0, 0, days)
	return &t
}

func TestCertificationStatusesAndExpiringList(t *testing.T) {
	svc := newCertificationService(t)
	issued := fixedNow.AddDate(-2, 0, 0)

	expired, err := svc.Create(1, &model.Certification{Name: "CPhT", IssuedAt: issued, ExpiresAt: at(-1)})
	require.NoError(t, err)
	assert.Equal(t, training.CertificationExpired, expired.Status)

	soon, err := svc.Create(1, &model.Certification{Name: "Sterile compounding", IssuedAt: issued, ExpiresAt: at(10)})
	require.NoError(t, err)
	assert.Equal(t, training.CertificationExpiring, soon.Status)

	later, err := svc.Create(2, &model.Certification{Name: "CPR", IssuedAt: issued, ExpiresAt: at(200)})
	require.NoError(t, err)
	assert.Equal(t, training.CertificationActive, later.Status)

	_, err = svc.Create(2, &model.Certification{Name: "Lifetime", IssuedAt: issued})
	require.NoError(t, err)

	mine, err := svc.List(1)
	require.NoError(t, err)
	assert.Len(t, mine, 2)

	expiring, err := svc.Expiring(context.Background())
	require.NoError(t, err)
	names := make([]string, len(expiring))
	for i, v := range expiring {
		names[i] = v.Name
	}
	assert.ElementsMatch(t, []string{"CPhT", "Sterile compounding"}, names)
}

func TestCreateCertificationRejectsBackwardsDates(t *testing.T) {
	svc := newCertificationService(t)
	_, err := svc.Create(1, &model.Certification{Name: "CPhT", IssuedAt: fixedNow, ExpiresAt: at(-5)})
	assert.ErrorIs(t, err, util.ErrInvalidExpiry)
}

func TestUploadCertificateDocument(t *testing.T) {
	svc := newCertificationService(t)
	ctx := context.Background()
	cert, err := svc.Create(1, &model.Certification{Name: "CPhT", IssuedAt: fixedNow})
	require.NoError(t, err)

	pdf := []byte("%PDF-1.4\n1 0 obj\n<<>>\nendobj\n")
	view, err := svc.UploadDocument(ctx, 1, cert.ID, "license.pdf", bytes.NewReader(pdf), int64(len(pdf)))
	require.NoError(t, err)
	assert.Contains(t, view.DocumentURL, "/uploads/"+util.FolderCertificates+"/")
	assert.Contains(t, view.DocumentURL, ".pdf")

	_, err = svc.UploadDocument(ctx, 2, cert.ID, "license.pdf", bytes.NewReader(pdf), int64(len(pdf)))
	assert.ErrorIs(t, err, util.ErrPermissionDenied)

	text := []byte("just some notes")
	_, err = svc.UploadDocument(ctx, 1, cert.ID, "notes.txt", bytes.NewReader(text), int64(len(text)))
	assert.ErrorIs(t, err, util.ErrInvalidFileType)

	_, err = svc.UploadDocument(ctx, 1, 999, "license.pdf", bytes.NewReader(pdf), int64(len(pdf)))
	assert.ErrorIs(t, err, util.ErrCertNotFound)
}
