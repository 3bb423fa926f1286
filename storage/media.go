package storage

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	ffmpeg "github.com/u2takey/ffmpeg-go"

	"vidtube/domain"
	"vidtube/errs"
)

// MediaService stores uploaded media with the external hosting service
// (an S3-compatible object store). It implements domain.MediaService.
type MediaService struct {
	mediaValidator
}

// mediaValidator runs validations on incoming uploads.
// On success, it passes the upload on to mediaStore.
// Otherwise, it returns the error of the validation that has failed.
type mediaValidator struct {
	mediaStore
}

// mediaStore spools validated uploads to disk, probes video duration and
// puts the file into the bucket. It assumes the upload has been validated.
type mediaStore struct {
	client  *minio.Client
	bucket  string
	baseURL string
	timeout time.Duration
}

// NewMediaService returns an instance of MediaService uploading into the
// given bucket. baseURL is the public prefix the bucket is served under.
// Each upload attempt is bounded by timeout.
func NewMediaService(client *minio.Client, bucket, baseURL string, timeout time.Duration) *MediaService {
	return &MediaService{
		mediaValidator{
			mediaStore{
				client:  client,
				bucket:  bucket,
				baseURL: strings.TrimSuffix(baseURL, "/"),
				timeout: timeout,
			},
		},
	}
}

// Ensure the MediaService struct properly implements the domain.MediaService interface.
// If it does not, then this expression becomes invalid and won't compile.
var _ domain.MediaService = &MediaService{}

// Upload runs validations needed for storing an upload with the media host.
func (mv *mediaValidator) Upload(ctx context.Context, upload *domain.Upload) (*domain.UploadResult, error) {
	err := runMediaValFns(upload,
		mv.kindValid,
		mv.extensionValid,
		mv.contentTypeValid,
		mv.belowMaxSize,
	)
	if err != nil {
		return nil, err
	}
	return mv.mediaStore.Upload(ctx, upload)
}

// runMediaValFns runs any number of functions of type mediaValFn on the passed in upload.
// If none of them returns an error, it returns nil. Otherwise, it returns the respective error.
func runMediaValFns(upload *domain.Upload, fns ...mediaValFn) error {
	for _, fn := range fns {
		if err := fn(upload); err != nil {
			return err
		}
	}
	return nil
}

// A mediaValFn is any function that takes in a pointer to a domain.Upload and returns an error.
type mediaValFn func(upload *domain.Upload) error

// kindValid makes sure the upload names a known media kind.
func (mv *mediaValidator) kindValid(upload *domain.Upload) error {
	if upload.Kind != domain.MediaKindVideo && upload.Kind != domain.MediaKindImage {
		return errs.Errorf(errs.EINVALID, "Unknown media kind %q.", upload.Kind)
	}
	return nil
}

// extensionValid checks the file extension against the allowed set per kind.
func (mv *mediaValidator) extensionValid(upload *domain.Upload) error {
	ext := strings.ToLower(filepath.Ext(upload.Filename))
	switch upload.Kind {
	case domain.MediaKindVideo:
		if ext != ".mp4" && ext != ".webm" && ext != ".mov" {
			return errs.Errorf(errs.EINVALID, "File %s invalid extension, must be .mp4, .webm or .mov.", upload.Filename)
		}
	case domain.MediaKindImage:
		if ext != ".png" && ext != ".jpg" && ext != ".jpeg" {
			return errs.Errorf(errs.EINVALID, "File %s invalid extension, must be .jpeg or .png.", upload.Filename)
		}
		if ext == ".jpg" {
			ext = ".jpeg"
		}
	}
	upload.Extension = ext
	return nil
}

// contentTypeValid sniffs the actual content type and checks it against the kind.
func (mv *mediaValidator) contentTypeValid(upload *domain.Upload) error {
	buffer := make([]byte, 512)
	n, err := upload.File.Read(buffer)
	if err != nil && err != io.EOF {
		return err
	}
	if err = resetReaderPosition(upload); err != nil {
		return err
	}
	contentType := http.DetectContentType(buffer[:n])
	switch upload.Kind {
	case domain.MediaKindVideo:
		if !strings.HasPrefix(contentType, "video/") {
			if !isQuickTime(buffer[:n]) {
				return errs.Errorf(errs.EINVALID, "File %s invalid content-type %s, expected a video.", upload.Filename, contentType)
			}
			contentType = "video/quicktime"
		}
	case domain.MediaKindImage:
		if contentType != "image/jpeg" && contentType != "image/png" {
			return errs.Errorf(errs.EINVALID, "File %s invalid content-type, must be image/jpeg or image/png.", upload.Filename)
		}
	}
	upload.ContentType = contentType
	return nil
}

// belowMaxSize enforces the per-kind upload size limit.
func (mv *mediaValidator) belowMaxSize(upload *domain.Upload) error {
	size, err := upload.File.Seek(0, io.SeekEnd)
	if err != nil {
		return err
	}
	if err = resetReaderPosition(upload); err != nil {
		return err
	}
	limit := domain.MaxImageSize
	if upload.Kind == domain.MediaKindVideo {
		limit = domain.MaxVideoSize
	}
	if size > limit {
		return errs.Errorf(errs.EINVALID,
			"File %s exceeds upload size limit of %sMB.",
			upload.Filename, strconv.FormatInt(limit/1000000, 10))
	}
	upload.Size = size
	return nil
}

// isQuickTime reports whether the sniffed bytes open a QuickTime container.
// The stdlib sniffer carries no signature for the "qt  " ftyp brand and
// reports such files as application/octet-stream. The duration probe later
// verifies the container is actually readable.
func isQuickTime(buffer []byte) bool {
	return len(buffer) >= 12 && string(buffer[4:8]) == "ftyp" && string(buffer[8:10]) == "qt"
}

// resetReaderPosition rewinds the file so subsequent reads start at the top.
func resetReaderPosition(upload *domain.Upload) error {
	_, err := upload.File.Seek(0, io.SeekStart)
	return err
}

// Upload spools the file to disk, probes the duration for videos, and puts
// the object into the bucket under a fresh name. The put is bounded by the
// configured timeout and retried once, since the media host is a network
// hop that can fail transiently.
func (ms *mediaStore) Upload(ctx context.Context, upload *domain.Upload) (*domain.UploadResult, error) {
	local, err := ms.spoolToDisk(upload)
	if err != nil {
		return nil, err
	}
	defer os.Remove(local)

	result := &domain.UploadResult{}
	if upload.Kind == domain.MediaKindVideo {
		duration, err := probeDuration(local)
		if err != nil {
			return nil, errs.Errorf(errs.EINVALID, "File %s is not a readable video.", upload.Filename)
		}
		result.Duration = duration
	}

	objectName := upload.Kind + "/" + uuid.NewString() + upload.Extension
	if err := ms.putObject(ctx, objectName, local, upload); err != nil {
		return nil, err
	}

	result.SecureURL = ms.baseURL + "/" + ms.bucket + "/" + objectName
	return result, nil
}

// spoolToDisk copies the multipart file into a temp file and returns its path.
func (ms *mediaStore) spoolToDisk(upload *domain.Upload) (string, error) {
	tmp, err := os.CreateTemp("", "vidtube-upload-*"+upload.Extension)
	if err != nil {
		return "", errors.Wrap(err, "create temp upload file")
	}
	defer tmp.Close()
	if _, err := io.Copy(tmp, upload.File); err != nil {
		os.Remove(tmp.Name())
		return "", errors.Wrap(err, "spool upload to disk")
	}
	return tmp.Name(), nil
}

// putObject uploads the spooled file, retrying once on failure.
func (ms *mediaStore) putObject(ctx context.Context, objectName, local string, upload *domain.Upload) error {
	var lastErr error
	for attempt := 1; attempt <= 2; attempt++ {
		attemptCtx, cancel := context.WithTimeout(ctx, ms.timeout)
		_, lastErr = ms.client.FPutObject(attemptCtx, ms.bucket, objectName, local, minio.PutObjectOptions{
			ContentType: upload.ContentType,
		})
		cancel()
		if lastErr == nil {
			return nil
		}
		if ctx.Err() != nil {
			break
		}
		logrus.WithFields(logrus.Fields{
			"object":  objectName,
			"attempt": attempt,
		}).WithError(lastErr).Warn("media upload attempt failed")
	}
	return errs.Errorf(errs.EUPSTREAM, "Uploading %s to the media host failed.", upload.Filename)
}

// ffprobeFormat is the slice of ffprobe's JSON output we care about.
type ffprobeFormat struct {
	Format struct {
		Duration string `json:"duration"`
	} `json:"format"`
}

// probeDuration reads the container duration in seconds from ffprobe.
func probeDuration(path string) (float64, error) {
	out, err := ffmpeg.Probe(path)
	if err != nil {
		return 0, errors.Wrap(err, "ffprobe")
	}
	var probed ffprobeFormat
	if err := json.Unmarshal([]byte(out), &probed); err != nil {
		return 0, errors.Wrap(err, "parse ffprobe output")
	}
	duration, err := strconv.ParseFloat(probed.Format.Duration, 64)
	if err != nil {
		return 0, errors.Wrap(err, "parse ffprobe duration")
	}
	return duration, nil
}
