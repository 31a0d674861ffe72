package blob

import (
	"bytes"
	"context"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
)

// --- モック定義 ---

type mockS3Client struct {
	putObjectFn     func(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	getObjectFn     func(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	deleteObjectFn  func(ctx context.Context, params *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
	listObjectsV2Fn func(ctx context.Context, params *s3.ListObjectsV2Input, optFns ...func(*s3.Options)) (*s3.ListObjectsV2Output, error)
}

func (m *mockS3Client) PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	if m.putObjectFn != nil {
		return m.putObjectFn(ctx, params, optFns...)
	}
	return &s3.PutObjectOutput{}, nil
}

func (m *mockS3Client) GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	if m.getObjectFn != nil {
		return m.getObjectFn(ctx, params, optFns...)
	}
	return &s3.GetObjectOutput{}, nil
}

func (m *mockS3Client) DeleteObject(ctx context.Context, params *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error) {
	if m.deleteObjectFn != nil {
		return m.deleteObjectFn(ctx, params, optFns...)
	}
	return &s3.DeleteObjectOutput{}, nil
}

func (m *mockS3Client) ListObjectsV2(ctx context.Context, params *s3.ListObjectsV2Input, optFns ...func(*s3.Options)) (*s3.ListObjectsV2Output, error) {
	if m.listObjectsV2Fn != nil {
		return m.listObjectsV2Fn(ctx, params, optFns...)
	}
	return &s3.ListObjectsV2Output{}, nil
}

func newTestS3Store(client s3API) *S3Store {
	return &S3Store{
		client: client,
		bucket: "test-bucket",
		prefix: "uploads/",
		now:    time.Now,
	}
}

// --- テスト ---

func TestS3Store_Save_PutsObjectUnderPrefix(t *testing.T) {
	var gotKey, gotBucket string
	client := &mockS3Client{
		putObjectFn: func(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
			gotBucket = aws.ToString(params.Bucket)
			gotKey = aws.ToString(params.Key)
			return &s3.PutObjectOutput{}, nil
		},
	}
	store := newTestS3Store(client)
	fixed := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return fixed }

	key, err := store.Save(context.Background(), "photo.jpg", strings.NewReader("data"))
	if err != nil {
		t.Fatalf("Save returned error: %v", err)
	}

	if key != "1735689600000000000.jpg" {
		t.Errorf("key = %q, want %q", key, "1735689600000000000.jpg")
	}
	if gotBucket != "test-bucket" {
		t.Errorf("bucket = %q, want %q", gotBucket, "test-bucket")
	}
	// バケット内ではPrefix配下に置かれるが、返すキーにPrefixは含めない
	if gotKey != "uploads/"+key {
		t.Errorf("object key = %q, want %q", gotKey, "uploads/"+key)
	}
}

func TestS3Store_Open_ReturnsBody(t *testing.T) {
	client := &mockS3Client{
		getObjectFn: func(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
			if aws.ToString(params.Key) != "uploads/some-key.jpg" {
				t.Errorf("Key = %q, want %q", aws.ToString(params.Key), "uploads/some-key.jpg")
			}
			return &s3.GetObjectOutput{
				Body: io.NopCloser(bytes.NewReader([]byte("blob-content"))),
			}, nil
		},
	}
	store := newTestS3Store(client)

	rc, err := store.Open(context.Background(), "some-key.jpg")
	if err != nil {
		t.Fatalf("Open returned error: %v", err)
	}
	defer rc.Close()

	data, _ := io.ReadAll(rc)
	if string(data) != "blob-content" {
		t.Errorf("content = %q, want %q", data, "blob-content")
	}
}

func TestS3Store_List_PaginatesAndStripsPrefix(t *testing.T) {
	calls := 0
	client := &mockS3Client{
		listObjectsV2Fn: func(ctx context.Context, params *s3.ListObjectsV2Input, optFns ...func(*s3.Options)) (*s3.ListObjectsV2Output, error) {
			calls++
			switch calls {
			case 1:
				if params.ContinuationToken != nil {
					t.Error("first call should not carry a continuation token")
				}
				return &s3.ListObjectsV2Output{
					Contents: []types.Object{
						{Key: aws.String("uploads/key-1.jpg"), Size: aws.Int64(10), LastModified: aws.Time(time.Now())},
					},
					IsTruncated:           aws.Bool(true),
					NextContinuationToken: aws.String("token-1"),
				}, nil
			default:
				if aws.ToString(params.ContinuationToken) != "token-1" {
					t.Errorf("ContinuationToken = %q, want %q", aws.ToString(params.ContinuationToken), "token-1")
				}
				return &s3.ListObjectsV2Output{
					Contents: []types.Object{
						{Key: aws.String("uploads/key-2.png"), Size: aws.Int64(20), LastModified: aws.Time(time.Now())},
					},
					IsTruncated: aws.Bool(false),
				}, nil
			}
		},
	}
	store := newTestS3Store(client)

	infos, err := store.List(context.Background())
	if err != nil {
		t.Fatalf("List returned error: %v", err)
	}
	if calls != 2 {
		t.Errorf("ListObjectsV2 calls = %d, want 2", calls)
	}
	if len(infos) != 2 {
		t.Fatalf("len(infos) = %d, want 2", len(infos))
	}
	if infos[0].Key != "key-1.jpg" {
		t.Errorf("infos[0].Key = %q, want %q (prefix stripped)", infos[0].Key, "key-1.jpg")
	}
	if infos[1].Key != "key-2.png" {
		t.Errorf("infos[1].Key = %q, want %q (prefix stripped)", infos[1].Key, "key-2.png")
	}
}

func TestS3Store_Delete_UsesPrefixedKey(t *testing.T) {
	var gotKey string
	client := &mockS3Client{
		deleteObjectFn: func(ctx context.Context, params *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error) {
			gotKey = aws.ToString(params.Key)
			return &s3.DeleteObjectOutput{}, nil
		},
	}
	store := newTestS3Store(client)

	if err := store.Delete(context.Background(), "key-1.jpg"); err != nil {
		t.Fatalf("Delete returned error: %v", err)
	}
	if gotKey != "uploads/key-1.jpg" {
		t.Errorf("deleted key = %q, want %q", gotKey, "uploads/key-1.jpg")
	}
}
