package publish

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"valuationcli/internal/config"
	apperrors "valuationcli/internal/errors"
)

type recordedPut struct {
	bucket      string
	key         string
	contentType string
	body        string
}

type fakePutter struct {
	puts   []recordedPut
	failOn string
}

func (f *fakePutter) PutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	key := aws.ToString(in.Key)
	if key == f.failOn {
		return nil, errors.New("access denied")
	}
	body, err := io.ReadAll(in.Body)
	if err != nil {
		return nil, err
	}
	f.puts = append(f.puts, recordedPut{
		bucket:      aws.ToString(in.Bucket),
		key:         key,
		contentType: aws.ToString(in.ContentType),
		body:        string(body),
	})
	return &s3.PutObjectOutput{}, nil
}

func writeArtifacts(t *testing.T) (string, string) {
	t.Helper()
	dir := t.TempDir()
	csvPath := filepath.Join(dir, "buffett_indicator.csv")
	pngPath := filepath.Join(dir, "buffett_indicator.png")
	require.NoError(t, os.WriteFile(csvPath, []byte("date,buffett_indicator\n"), 0644))
	require.NoError(t, os.WriteFile(pngPath, []byte("\x89PNG"), 0644))
	return csvPath, pngPath
}

func TestS3Publisher_Publish(t *testing.T) {
	csvPath, pngPath := writeArtifacts(t)
	putter := &fakePutter{}
	p := NewS3PublisherWithClient(putter, "valuation-artifacts", "/runs/", nil)

	keys, err := p.Publish(context.Background(), "buffett", csvPath, pngPath)
	require.NoError(t, err)

	assert.Equal(t, []string{"runs/buffett/buffett_indicator.csv", "runs/buffett/buffett_indicator.png"}, keys)
	require.Len(t, putter.puts, 2)
	assert.Equal(t, "valuation-artifacts", putter.puts[0].bucket)
	assert.Equal(t, "text/csv", putter.puts[0].contentType)
	assert.Equal(t, "date,buffett_indicator\n", putter.puts[0].body)
	assert.Equal(t, "image/png", putter.puts[1].contentType)
}

func TestS3Publisher_StopsOnFailure(t *testing.T) {
	csvPath, pngPath := writeArtifacts(t)
	putter := &fakePutter{failOn: "buffett/buffett_indicator.csv"}
	p := NewS3PublisherWithClient(putter, "b", "", nil)

	keys, err := p.Publish(context.Background(), "buffett", csvPath, pngPath)
	require.Error(t, err)
	assert.True(t, apperrors.IsType(err, apperrors.ErrTypeStorage))
	assert.Empty(t, keys)
	assert.Empty(t, putter.puts)
}

func TestS3Publisher_MissingFile(t *testing.T) {
	p := NewS3PublisherWithClient(&fakePutter{}, "b", "", nil)

	_, err := p.Publish(context.Background(), "analyze", filepath.Join(t.TempDir(), "nope.png"))
	require.Error(t, err)
	assert.True(t, apperrors.IsType(err, apperrors.ErrTypeStorage))
}

func TestNewS3Publisher_RequiresBucket(t *testing.T) {
	_, err := NewS3Publisher(context.Background(), config.PublishConfig{Enabled: true}, nil)
	require.Error(t, err)
	assert.True(t, apperrors.IsType(err, apperrors.ErrTypeConfig))
}

func TestNewS3Publisher_StaticCredentials(t *testing.T) {
	p, err := NewS3Publisher(context.Background(), config.PublishConfig{
		Enabled:         true,
		Bucket:          "b",
		Region:          "us-east-1",
		Endpoint:        "http://127.0.0.1:9000",
		PathStyle:       true,
		AccessKeyID:     "AKIDEXAMPLE",
		SecretAccessKey: "secret",
	}, nil)
	require.NoError(t, err)
	assert.Equal(t, "b", p.bucket)
}

func TestContentType(t *testing.T) {
	assert.Equal(t, "text/csv", contentType("a.CSV"))
	assert.Equal(t, "image/png", contentType("a.png"))
	assert.Equal(t, "application/octet-stream", contentType("a.json"))
}
