package gcs

import (
	"strings"
	"testing"
)

func TestPublicURLGCSDefault(t *testing.T) {
	bs := &bucketService{
		assetBucket: bucketConfig{name: "asset-bucket"},
	}

	got := bs.PublicURL(BucketCategoryAsset, "t1/manual.pdf")
	want := "https://storage.googleapis.com/asset-bucket/t1/manual.pdf"
	if got != want {
		t.Fatalf("PublicURL: want=%q got=%q", want, got)
	}
}

func TestPublicURLUsesCDNDomain(t *testing.T) {
	bs := &bucketService{
		previewBucket: bucketConfig{
			name:      "preview-bucket",
			cdnDomain: "cdn.example.com",
		},
	}

	got := bs.PublicURL(BucketCategoryPreview, "previews/42.png")
	want := "https://cdn.example.com/previews/42.png"
	if got != want {
		t.Fatalf("PublicURL: want=%q got=%q", want, got)
	}
}

func TestPublicURLUsesPublicBaseURL(t *testing.T) {
	bs := &bucketService{
		publicBaseURL: "http://localhost:4443",
		assetBucket:   bucketConfig{name: "asset-bucket"},
	}

	got := bs.PublicURL(BucketCategoryAsset, "/t1/manual.pdf")
	want := "http://localhost:4443/asset-bucket/t1/manual.pdf"
	if got != want {
		t.Fatalf("PublicURL: want=%q got=%q", want, got)
	}
}

func TestPublicURLUsesEmulatorMediaEndpoint(t *testing.T) {
	bs := &bucketService{
		mode:          StorageModeEmulator,
		publicBaseURL: "http://localhost:4443",
		assetBucket:   bucketConfig{name: "asset-bucket"},
	}

	got := bs.PublicURL(BucketCategoryAsset, "t1/abc/manual.pdf")
	want := "http://localhost:4443/storage/v1/b/asset-bucket/o/t1%2Fabc%2Fmanual.pdf?alt=media"
	if got != want {
		t.Fatalf("PublicURL: want=%q got=%q", want, got)
	}
}

func TestPublicURLUsesEmulatorHostWhenPublicBaseMissing(t *testing.T) {
	bs := &bucketService{
		mode:         StorageModeEmulator,
		emulatorHost: "http://fake-gcs:4443",
		assetBucket:  bucketConfig{name: "asset-bucket"},
	}

	got := bs.PublicURL(BucketCategoryAsset, "/t1/manual.pdf")
	want := "http://fake-gcs:4443/storage/v1/b/asset-bucket/o/t1%2Fmanual.pdf?alt=media"
	if got != want {
		t.Fatalf("PublicURL: want=%q got=%q", want, got)
	}
}

func TestContentTypeForFilename(t *testing.T) {
	cases := []struct {
		name string
		want string
	}{
		{"manual.PDF", "application/pdf"},
		{"clip.mp4", "video/mp4"},
		{"photo.jpeg", "image/jpeg"},
		{"preview.png?x=1", "image/png"},
		{"notes.txt", "text/plain"},
		{"archive.bin", ""},
		{"", ""},
	}
	for _, tc := range cases {
		if got := ContentTypeForFilename(tc.name); got != tc.want {
			t.Fatalf("ContentTypeForFilename(%q): want=%q got=%q", tc.name, tc.want, got)
		}
	}
}

func TestPublicURLEscapesEmulatorObjectKeys(t *testing.T) {
	bs := &bucketService{
		mode:          StorageModeEmulator,
		publicBaseURL: "http://localhost:4443",
		previewBucket: bucketConfig{name: "preview-bucket"},
	}

	got := bs.PublicURL(BucketCategoryPreview, "previews/ms 1/cover.png")
	if !strings.HasPrefix(got, "http://localhost:4443/storage/v1/b/preview-bucket/o/") {
		t.Fatalf("prefix mismatch: %s", got)
	}
	if !strings.Contains(got, "alt=media") {
		t.Fatalf("media endpoint missing alt=media: %s", got)
	}
	if strings.Contains(got, " ") || !strings.Contains(got, "previews%2Fms%201%2Fcover.png") {
		t.Fatalf("object key not escaped: %s", got)
	}
}
