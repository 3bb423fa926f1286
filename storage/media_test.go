package storage

import (
	"bytes"
	"testing"

	"vidtube/domain"
	"vidtube/errs"
)

// fakeFile adapts an in-memory byte slice to multipart.File.
type fakeFile struct {
	*bytes.Reader
}

func (fakeFile) Close() error { return nil }

func newFakeFile(data []byte) fakeFile {
	return fakeFile{bytes.NewReader(data)}
}

// pngHeader is a minimal valid PNG signature, enough for content sniffing.
var pngHeader = []byte{0x89, 0x50, 0x4e, 0x47, 0x0d, 0x0a, 0x1a, 0x0a}

// mp4Header is a minimal ftyp box with an mp42 brand, sniffed as video/mp4.
var mp4Header = []byte{0x00, 0x00, 0x00, 0x10, 'f', 't', 'y', 'p', 'm', 'p', '4', '2', 0x00, 0x00, 0x00, 0x00}

// movHeader is a minimal ftyp box with the QuickTime "qt  " brand, which the
// stdlib sniffer reports as application/octet-stream.
var movHeader = []byte{0x00, 0x00, 0x00, 0x14, 'f', 't', 'y', 'p', 'q', 't', ' ', ' ', 0x20, 0x05, 0x03, 0x00, 'q', 't', ' ', ' '}

func TestUploadValidation(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name     string
		upload   domain.Upload
		wantCode string
	}{
		{
			name:     "unknown kind",
			upload:   domain.Upload{Kind: "audio", Filename: "song.mp3", File: newFakeFile(nil)},
			wantCode: errs.EINVALID,
		},
		{
			name:     "image with wrong extension",
			upload:   domain.Upload{Kind: domain.MediaKindImage, Filename: "thumb.gif", File: newFakeFile(pngHeader)},
			wantCode: errs.EINVALID,
		},
		{
			name:     "video with image extension",
			upload:   domain.Upload{Kind: domain.MediaKindVideo, Filename: "clip.png", File: newFakeFile(mp4Header)},
			wantCode: errs.EINVALID,
		},
		{
			name:     "image content behind video extension",
			upload:   domain.Upload{Kind: domain.MediaKindVideo, Filename: "clip.mp4", File: newFakeFile(pngHeader)},
			wantCode: errs.EINVALID,
		},
		{
			name:     "image content behind mov extension",
			upload:   domain.Upload{Kind: domain.MediaKindVideo, Filename: "clip.mov", File: newFakeFile(pngHeader)},
			wantCode: errs.EINVALID,
		},
	}

	validator := &mediaValidator{}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := runMediaValFns(&tc.upload,
				validator.kindValid,
				validator.extensionValid,
				validator.contentTypeValid,
				validator.belowMaxSize,
			)
			if err == nil {
				t.Fatal("expected a validation error")
			}
			if errs.ErrorCode(err) != tc.wantCode {
				t.Fatalf("expected code %q, got %q (%v)", tc.wantCode, errs.ErrorCode(err), err)
			}
		})
	}
}

func TestUploadValidationAcceptsGoodFiles(t *testing.T) {
	t.Parallel()

	validator := &mediaValidator{}

	image := domain.Upload{Kind: domain.MediaKindImage, Filename: "thumb.JPG", File: newFakeFile([]byte{0xff, 0xd8, 0xff, 0xe0, 0x00, 0x10, 'J', 'F', 'I', 'F'})}
	err := runMediaValFns(&image,
		validator.kindValid,
		validator.extensionValid,
		validator.contentTypeValid,
		validator.belowMaxSize,
	)
	if err != nil {
		t.Fatalf("expected jpeg image to validate, got %v", err)
	}
	if image.Extension != ".jpeg" {
		t.Fatalf("expected .jpg to normalize to .jpeg, got %q", image.Extension)
	}
	if image.ContentType != "image/jpeg" {
		t.Fatalf("expected sniffed content type image/jpeg, got %q", image.ContentType)
	}

	video := domain.Upload{Kind: domain.MediaKindVideo, Filename: "clip.mp4", File: newFakeFile(mp4Header)}
	err = runMediaValFns(&video,
		validator.kindValid,
		validator.extensionValid,
		validator.contentTypeValid,
		validator.belowMaxSize,
	)
	if err != nil {
		t.Fatalf("expected mp4 video to validate, got %v", err)
	}
	if video.Size != int64(len(mp4Header)) {
		t.Fatalf("expected size %d, got %d", len(mp4Header), video.Size)
	}

	mov := domain.Upload{Kind: domain.MediaKindVideo, Filename: "clip.mov", File: newFakeFile(movHeader)}
	err = runMediaValFns(&mov,
		validator.kindValid,
		validator.extensionValid,
		validator.contentTypeValid,
		validator.belowMaxSize,
	)
	if err != nil {
		t.Fatalf("expected quicktime video to validate, got %v", err)
	}
	if mov.ContentType != "video/quicktime" {
		t.Fatalf("expected content type video/quicktime, got %q", mov.ContentType)
	}
}
