package storage

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReportKey(t *testing.T) {
	assert.Equal(t, "reports/7/abc.json", ReportKey("7", "abc"))
	assert.Equal(t, "reports/x/abc.json", ReportKey("../../x", "abc"), "survey ids cannot escape the prefix")
}

func TestPresignDownload(t *testing.T) {
	s, err := NewS3(context.Background(), S3Config{
		Region:          "us-east-1",
		AccessKeyID:     "AKIDEXAMPLE",
		SecretAccessKey: "secret",
		ReportsBucket:   "survey-reports",
	}, nil)
	require.NoError(t, err)
	assert.Equal(t, "survey-reports", s.Bucket())
	assert.Equal(t, 15*time.Minute, s.PresignExpire())

	url, err := s.PresignDownload(context.Background(), ReportKey("7", "abc"))
	require.NoError(t, err)
	assert.Contains(t, url, "survey-reports")
	assert.Contains(t, url, "reports/7/abc.json")
	assert.Contains(t, url, "X-Amz-Expires=900")
}
