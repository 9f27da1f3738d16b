package worker

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeS3 struct {
	calls   int
	respond func(n int, in *s3.GetObjectInput) (*s3.GetObjectOutput, error)
}

func (f *fakeS3) GetObject(_ context.Context, in *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	f.calls++
	return f.respond(f.calls, in)
}

func object(body, contentType string) *s3.GetObjectOutput {
	out := &s3.GetObjectOutput{Body: io.NopCloser(strings.NewReader(body))}
	if contentType != "" {
		out.ContentType = aws.String(contentType)
	}
	return out
}

func testSource(client *fakeS3) *S3Source {
	s := newS3Source(client, "resumes")
	s.retryBase = time.Millisecond
	return s
}

func TestS3Source_Fetch(t *testing.T) {
	client := &fakeS3{respond: func(_ int, in *s3.GetObjectInput) (*s3.GetObjectOutput, error) {
		assert.Equal(t, "resumes", aws.ToString(in.Bucket))
		assert.Equal(t, "u/1.txt", aws.ToString(in.Key))
		return object("Jane Doe\nEngineer", "text/plain; charset=utf-8"), nil
	}}

	text, err := testSource(client).Fetch(context.Background(), "u/1.txt")
	require.NoError(t, err)
	assert.Equal(t, "Jane Doe\nEngineer", text)
	assert.Equal(t, 1, client.calls)
}

func TestS3Source_RetriesTransientErrors(t *testing.T) {
	client := &fakeS3{respond: func(n int, _ *s3.GetObjectInput) (*s3.GetObjectOutput, error) {
		if n < 3 {
			return nil, errors.New("connection reset by peer")
		}
		return object("text", ""), nil
	}}

	text, err := testSource(client).Fetch(context.Background(), "k")
	require.NoError(t, err)
	assert.Equal(t, "text", text)
	assert.Equal(t, 3, client.calls)
}

func TestS3Source_PermanentFailures(t *testing.T) {
	tests := []struct {
		name    string
		respond func(int, *s3.GetObjectInput) (*s3.GetObjectOutput, error)
		wantErr string
	}{
		{
			name: "missing object",
			respond: func(int, *s3.GetObjectInput) (*s3.GetObjectOutput, error) {
				return nil, &s3types.NoSuchKey{Message: aws.String("gone")}
			},
			wantErr: "failed to get object",
		},
		{
			name: "binary content",
			respond: func(int, *s3.GetObjectInput) (*s3.GetObjectOutput, error) {
				return object("%PDF-1.7", "application/pdf"), nil
			},
			wantErr: "unsupported content type",
		},
		{
			name: "invalid utf8",
			respond: func(int, *s3.GetObjectInput) (*s3.GetObjectOutput, error) {
				return object(string([]byte{0xff, 0xfe, 0xfd}), ""), nil
			},
			wantErr: "not valid UTF-8",
		},
		{
			name: "too large",
			respond: func(int, *s3.GetObjectInput) (*s3.GetObjectOutput, error) {
				return object(strings.Repeat("a", MaxResumeBytes+1), "text/plain"), nil
			},
			wantErr: "exceeds",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := &fakeS3{respond: tt.respond}
			_, err := testSource(client).Fetch(context.Background(), "k")
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
			assert.Equal(t, 1, client.calls, "permanent failures are not retried")
		})
	}
}

func TestS3Source_GivesUpAfterMaxTries(t *testing.T) {
	client := &fakeS3{respond: func(int, *s3.GetObjectInput) (*s3.GetObjectOutput, error) {
		return nil, errors.New("503 slow down")
	}}
	_, err := testSource(client).Fetch(context.Background(), "k")
	require.Error(t, err)
	assert.Equal(t, 3, client.calls)
}

func TestNewS3Source_RequiresBucket(t *testing.T) {
	_, err := NewS3Source(context.Background(), S3Options{Region: "auto"})
	assert.EqualError(t, err, "s3 source requires a bucket")
}

func TestNewS3Source_StaticCredentials(t *testing.T) {
	src, err := NewS3Source(context.Background(), S3Options{
		Bucket:          "resumes",
		Region:          "auto",
		Endpoint:        "http://localhost:9000",
		AccessKeyID:     "minio",
		SecretAccessKey: "minio123",
		UsePathStyle:    true,
	})
	require.NoError(t, err)
	assert.Equal(t, "resumes", src.bucket)
}
